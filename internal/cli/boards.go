package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"kanban-cli/internal/gateway"
	"kanban-cli/internal/model"
	"kanban-cli/internal/store"
)

func newBoardsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boards",
		Short: "Board commands (columns are edited here too)",
	}
	cmd.AddCommand(newBoardsCreateCmd(app))
	cmd.AddCommand(newBoardsListCmd(app))
	cmd.AddCommand(newBoardsShowCmd(app))
	cmd.AddCommand(newBoardsRenameCmd(app))
	cmd.AddCommand(newBoardsDeleteCmd(app))
	cmd.AddCommand(newBoardsRenameColumnCmd(app))
	cmd.AddCommand(newBoardsAddColumnCmd(app))
	cmd.AddCommand(newBoardsRemoveColumnCmd(app))
	cmd.AddCommand(newBoardsReorderCmd(app))
	cmd.AddCommand(newBoardsOrphansCmd(app))
	return cmd
}

func newBoardsCreateCmd(app *App) *cobra.Command {
	var name string
	var columns []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a board with named columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer cleanup()
			b, err := st.CreateBoard(cmd.Context(), app.UserID, name, columns)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": b})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Board name")
	cmd.Flags().StringArrayVar(&columns, "column", []string{"Todo", "Doing", "Done"}, "Column name (repeatable, ordered)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newBoardsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List boards with their tasks partitioned into columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer cleanup()
			boards := st.Boards()
			if boards == nil {
				boards = []model.Board{}
			}
			return writeOut(cmd, app, map[string]any{"data": boards})
		},
	}
}

func newBoardsShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <board>",
		Short: "Show one board (by id or name)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer cleanup()
			b, err := resolveBoard(st, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			out := map[string]any{"data": b}
			if orphans := st.Orphans(b.ID); len(orphans) > 0 {
				out["meta"] = map[string]any{"orphanedTasks": len(orphans)}
			}
			return writeOut(cmd, app, out)
		},
	}
	return cmd
}

func newBoardsRenameCmd(app *App) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "rename <board>",
		Short: "Rename a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer cleanup()
			b, err := resolveBoard(st, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := st.UpdateBoard(cmd.Context(), b.ID, gateway.BoardUpdates{Name: &name}); err != nil {
				return writeErr(cmd, err)
			}
			if err := flush(st); err != nil {
				return writeErr(cmd, err)
			}
			b, _ = resolveBoard(st, b.ID)
			return writeOut(cmd, app, map[string]any{"data": b})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New board name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newBoardsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <board>",
		Short: "Delete a board and all of its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer cleanup()
			b, err := resolveBoard(st, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := st.DeleteBoard(cmd.Context(), b.ID); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": b.ID}})
		},
	}
}

// columnEdit applies fn to the board's current column list and persists
// the result. Orphans reported by the store end up in the meta object.
func columnEdit(cmd *cobra.Command, app *App, ref string, fn func(b model.Board) ([]model.Column, error)) error {
	st, cleanup, err := openStore(cmd.Context(), app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer cleanup()
	b, err := resolveBoard(st, ref)
	if err != nil {
		return writeErr(cmd, err)
	}
	if err := st.SetCurrentBoard(cmd.Context(), b); err != nil {
		return writeErr(cmd, err)
	}
	cols, err := fn(*st.Current())
	if err != nil {
		return writeErr(cmd, err)
	}
	orphans, err := st.UpdateBoard(cmd.Context(), b.ID, gateway.BoardUpdates{Columns: cols})
	if err != nil {
		return writeErr(cmd, err)
	}
	if err := flush(st); err != nil {
		return writeErr(cmd, err)
	}
	out := map[string]any{"data": *st.Current()}
	if len(orphans) > 0 {
		out["meta"] = map[string]any{"orphanedTasks": orphans}
	}
	return writeOut(cmd, app, out)
}

func bareColumns(b model.Board) []model.Column {
	cols := make([]model.Column, len(b.Columns))
	for i, c := range b.Columns {
		cols[i] = model.Column{ID: c.ID, Name: c.Name}
	}
	return cols
}

func newBoardsRenameColumnCmd(app *App) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "rename-column <board>",
		Short: "Rename a column; its tasks follow it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return columnEdit(cmd, app, args[0], func(b model.Board) ([]model.Column, error) {
				ci := b.FindColumn(from)
				if ci < 0 {
					return nil, errUnknownColumn(b.Name, from)
				}
				cols := bareColumns(b)
				cols[ci].Name = to
				return cols, nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Current column name")
	cmd.Flags().StringVar(&to, "to", "", "New column name")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newBoardsAddColumnCmd(app *App) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "add-column <board>",
		Short: "Append an empty column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return columnEdit(cmd, app, args[0], func(b model.Board) ([]model.Column, error) {
				if b.FindColumn(name) >= 0 {
					return nil, store.ErrDuplicateColumn
				}
				return append(bareColumns(b), model.Column{Name: name}), nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Column name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newBoardsRemoveColumnCmd(app *App) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "remove-column <board>",
		Short: "Remove a column (its tasks are reported as orphaned, not deleted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return columnEdit(cmd, app, args[0], func(b model.Board) ([]model.Column, error) {
				ci := b.FindColumn(name)
				if ci < 0 {
					return nil, errUnknownColumn(b.Name, name)
				}
				cols := bareColumns(b)
				return append(cols[:ci], cols[ci+1:]...), nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Column name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newBoardsReorderCmd(app *App) *cobra.Command {
	var columns []string
	cmd := &cobra.Command{
		Use:   "reorder <board>",
		Short: "Reorder columns to the given name sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer cleanup()
			b, err := resolveBoard(st, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := st.SetCurrentBoard(cmd.Context(), b); err != nil {
				return writeErr(cmd, err)
			}
			cur := *st.Current()
			if len(columns) != len(cur.Columns) {
				return writeErr(cmd, errors.New("--column must name every column exactly once"))
			}
			perm := make([]model.Column, 0, len(columns))
			for _, name := range columns {
				ci := cur.FindColumn(strings.TrimSpace(name))
				if ci < 0 {
					return writeErr(cmd, errUnknownColumn(cur.Name, name))
				}
				perm = append(perm, cur.Columns[ci])
			}
			if err := st.ReorderColumns(b.ID, perm); err != nil {
				return writeErr(cmd, err)
			}
			if err := flush(st); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": *st.Current()})
		},
	}
	cmd.Flags().StringArrayVar(&columns, "column", nil, "Column name in the desired order (repeat for each column)")
	return cmd
}

func newBoardsOrphansCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "orphans <board>",
		Short: "List tasks whose status matches no column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer cleanup()
			b, err := resolveBoard(st, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			orphans := st.Orphans(b.ID)
			if orphans == nil {
				orphans = []model.Task{}
			}
			return writeOut(cmd, app, map[string]any{"data": orphans})
		},
	}
}
