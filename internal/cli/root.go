package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"kanban-cli/internal/format"
	"kanban-cli/internal/gateway"
	"kanban-cli/internal/model"
	"kanban-cli/internal/store"
	"kanban-cli/internal/tui"
)

type App struct {
	DBPath     string
	Remote     string
	UserID     string
	PrettyJSON bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "kanban",
		Short:        "Kanban board CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive board TUI
  kanban

  # Scriptable commands
  kanban boards list
  kanban tasks add "Sprint 12" --title "Write release notes"

  # Share this machine's database over HTTP
  kanban serve --addr :8787

  # Point another instance at it
  kanban --remote http://host:8787 boards list
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd.Context(), app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.DBPath, "db", envOr("KANBAN_DB", ""), "Path to the SQLite database (default: ~/.kanban/kanban.db)")
	cmd.PersistentFlags().StringVar(&app.Remote, "remote", envOr("KANBAN_REMOTE", ""), "Base URL of a remote `kanban serve` backend (overrides --db)")
	cmd.PersistentFlags().StringVar(&app.UserID, "user", envOr("KANBAN_USER", "local"), "User id boards are scoped to")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newBoardsCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newDragCmd(app))
	cmd.AddCommand(newServeCmd(app))

	return cmd
}

func runTUI(ctx context.Context, app *App) error {
	st, cleanup, err := openStore(ctx, app)
	if err != nil {
		return err
	}
	defer cleanup()
	return tui.Run(ctx, st, app.UserID)
}

// openGateway picks the backend: a remote serve instance when --remote is
// set, the local SQLite file otherwise.
func openGateway(ctx context.Context, app *App) (gateway.Gateway, func(), error) {
	if app.Remote != "" {
		return gateway.NewHTTPClient(app.Remote), func() {}, nil
	}
	path := app.DBPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, err
		}
		path = filepath.Join(home, ".kanban", "kanban.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	db, err := gateway.OpenSQLite(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = db.Close() }, nil
}

// openStore opens the backend and loads the user's boards. cleanup flushes
// the persistence queue before closing the backend.
func openStore(ctx context.Context, app *App) (*store.Store, func(), error) {
	gw, closeGW, err := openGateway(ctx, app)
	if err != nil {
		return nil, nil, err
	}
	st := store.New(gw)
	if err := st.FetchBoards(ctx, app.UserID); err != nil {
		st.Close()
		closeGW()
		return nil, nil, err
	}
	cleanup := func() {
		st.Close()
		closeGW()
	}
	return st, cleanup, nil
}

// resolveBoard finds a board by id or exact name.
func resolveBoard(st *store.Store, ref string) (model.Board, error) {
	ref = strings.TrimSpace(ref)
	boards := st.Boards()
	for _, b := range boards {
		if b.ID == ref {
			return b, nil
		}
	}
	for _, b := range boards {
		if b.Name == ref {
			return b, nil
		}
	}
	return model.Board{}, errNotFound("board", ref)
}

// resolveTask locates a task by id across all boards and opens its board.
func resolveTask(ctx context.Context, st *store.Store, taskID string) (model.Board, model.Task, error) {
	taskID = strings.TrimSpace(taskID)
	for _, b := range st.Boards() {
		if ci, ti := b.FindTask(taskID); ci >= 0 {
			if err := st.SetCurrentBoard(ctx, b); err != nil {
				return model.Board{}, model.Task{}, err
			}
			cur := st.Current()
			ci, ti = cur.FindTask(taskID)
			if ci < 0 {
				return model.Board{}, model.Task{}, errNotFound("task", taskID)
			}
			return *cur, cur.Columns[ci].Tasks[ti], nil
		}
	}
	return model.Board{}, model.Task{}, errNotFound("task", taskID)
}

// flush drains the persistence queue and surfaces any queued failure as a
// command error, so scripted invocations never exit 0 on a lost write.
func flush(st *store.Store) error {
	st.Wait()
	if msg := st.Err(); msg != "" {
		return fmt.Errorf("persistence failed: %s", msg)
	}
	return nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
