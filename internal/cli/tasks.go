package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"kanban-cli/internal/gateway"
	"kanban-cli/internal/model"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task commands",
	}
	cmd.AddCommand(newTasksAddCmd(app))
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksMoveCmd(app))
	cmd.AddCommand(newTasksToggleCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))
	return cmd
}

func newTasksAddCmd(app *App) *cobra.Command {
	var title, description, status string
	var subtasks []string

	cmd := &cobra.Command{
		Use:   "add <board>",
		Short: "Add a task to a board",
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
			if status == "" {
				if len(b.Columns) == 0 {
					return writeErr(cmd, errors.New("board has no columns"))
				}
				// Default into the first column.
				status = b.Columns[0].Name
			}
			subs := make([]model.Subtask, 0, len(subtasks))
			for _, s := range subtasks {
				subs = append(subs, model.Subtask{Title: s})
			}
			task, err := st.CreateTask(cmd.Context(), b.ID, app.UserID, model.Task{
				Title:       title,
				Description: description,
				Status:      status,
				Subtasks:    subs,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": task})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&description, "description", "", "Task description (markdown)")
	cmd.Flags().StringVar(&status, "status", "", "Column to file the task under (default: first column)")
	cmd.Flags().StringArrayVar(&subtasks, "subtask", nil, "Subtask title (repeatable)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list <board>",
		Short: "List a board's tasks in column order",
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
			out := []model.Task{}
			for _, c := range b.Columns {
				if status != "" && c.Name != status {
					continue
				}
				out = append(out, c.Tasks...)
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only tasks in this column")
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer cleanup()
			_, task, err := resolveTask(cmd.Context(), st, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": task})
		},
	}
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var title, description string
	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Edit a task's title or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer cleanup()
			b, task, err := resolveTask(cmd.Context(), st, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			updates := gateway.TaskUpdates{}
			if cmd.Flags().Changed("title") {
				updates.Title = &title
			}
			if cmd.Flags().Changed("description") {
				updates.Description = &description
			}
			if err := st.UpdateTask(task.ID, updates, b.ID); err != nil {
				return writeErr(cmd, err)
			}
			if err := flush(st); err != nil {
				return writeErr(cmd, err)
			}
			_, task, err = resolveTask(cmd.Context(), st, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": task})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	return cmd
}

func newTasksMoveCmd(app *App) *cobra.Command {
	var status string
	var index int
	cmd := &cobra.Command{
		Use:   "move <task-id>",
		Short: "Move a task to a column position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer cleanup()
			b, task, err := resolveTask(cmd.Context(), st, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := st.MoveTask(task.ID, status, index); err != nil {
				return writeErr(cmd, err)
			}
			if err := flush(st); err != nil {
				return writeErr(cmd, err)
			}
			board, _ := resolveBoard(st, b.ID)
			return writeOut(cmd, app, map[string]any{"data": board})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Destination column name")
	cmd.Flags().IntVar(&index, "index", 1<<30, "Position in the destination column (default: end)")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

func newTasksToggleCmd(app *App) *cobra.Command {
	var subtask int
	cmd := &cobra.Command{
		Use:   "toggle <task-id>",
		Short: "Toggle one of a task's subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer cleanup()
			b, task, err := resolveTask(cmd.Context(), st, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := st.ToggleSubtask(task.ID, b.ID, subtask); err != nil {
				return writeErr(cmd, err)
			}
			if err := flush(st); err != nil {
				return writeErr(cmd, err)
			}
			_, task, err = resolveTask(cmd.Context(), st, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": task})
		},
	}
	cmd.Flags().IntVar(&subtask, "subtask", 0, "Subtask index (0-based)")
	return cmd
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer cleanup()
			b, task, err := resolveTask(cmd.Context(), st, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := st.DeleteTask(task.ID, b.ID); err != nil {
				return writeErr(cmd, err)
			}
			if err := flush(st); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": task.ID}})
		},
	}
}
