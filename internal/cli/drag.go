package cli

import (
	"github.com/spf13/cobra"

	"kanban-cli/internal/reconcile"
)

// The drag command is the scriptable twin of the TUI's pick-up/drop keys:
// it takes the same positional identifiers ("column-1", "task-0-2") and
// resolves them through the same reconciler.
func newDragCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drag <board> <active> <over>",
		Short: "Resolve a drag gesture against a board",
		Long: `Resolve a drag gesture against a board.

Identifiers address positions, not ids:
  column-{c}    the column at index c
  task-{c}-{t}  the task at index t of column c

Examples:
  kanban drag "Sprint 12" task-0-2 task-1-0   # move a task across columns
  kanban drag "Sprint 12" column-2 column-0   # reorder columns`,
		Args: cobra.ExactArgs(3),
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

			var g reconcile.Gesture
			if err := g.Begin(args[1]); err != nil {
				return writeErr(cmd, err)
			}
			edit := g.Drop(args[2], st.Current())
			if err := reconcile.Apply(st, edit); err != nil {
				return writeErr(cmd, err)
			}
			if err := flush(st); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": *st.Current(),
				"meta": map[string]any{"applied": edit.Kind != reconcile.EditNone},
			})
		},
	}
	return cmd
}
