package cli

import (
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"kanban-cli/internal/web"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board database as a JSON API",
		Long: `Serve the board database as a JSON API.

Other kanban instances can use it as their backend:
  kanban --remote http://host:8787 boards list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, closeGW, err := openGateway(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeGW()

			logger := log.New(cmd.ErrOrStderr(), "kanban-serve ", log.LstdFlags)
			srv := &http.Server{
				Addr:              addr,
				Handler:           web.NewHandler(gw, logger),
				ReadHeaderTimeout: 5 * time.Second,
			}
			logger.Printf("listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", envOr("KANBAN_ADDR", ":8787"), "Listen address")
	return cmd
}
