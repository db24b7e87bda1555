package reconcile

import "kanban-cli/internal/store"

// Apply dispatches a resolved edit to its store operation. EditNone is a
// successful no-op.
func Apply(st *store.Store, e Edit) error {
	switch e.Kind {
	case EditReorderColumns:
		return st.ReorderColumns(e.BoardID, e.Columns)
	case EditReorderTasks:
		return st.ReorderTasksInColumn(e.BoardID, e.ColumnName, e.Tasks)
	case EditMoveTask:
		return st.MoveTask(e.TaskID, e.Status, e.Index)
	}
	return nil
}
