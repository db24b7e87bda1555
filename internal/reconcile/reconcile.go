// Package reconcile translates a drag gesture's source and target
// identifiers into a single structural board edit. It is pure: nothing
// here touches the store or the gateway.
package reconcile

import (
	"strconv"
	"strings"

	"kanban-cli/internal/model"
)

// Drag identifiers encode a kind tag plus positional indices:
// "column-{col}" for a column and "task-{col}-{task}" for a task.

type RefKind int

const (
	RefNone RefKind = iota
	RefColumn
	RefTask
)

// Ref is a parsed drag identifier.
type Ref struct {
	Kind RefKind
	Col  int
	Task int
}

// ParseRef decodes a drag identifier. Unrecognized shapes return ok=false.
func ParseRef(s string) (Ref, bool) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	switch {
	case len(parts) == 2 && parts[0] == "column":
		col, err := strconv.Atoi(parts[1])
		if err != nil || col < 0 {
			return Ref{}, false
		}
		return Ref{Kind: RefColumn, Col: col}, true
	case len(parts) == 3 && parts[0] == "task":
		col, err1 := strconv.Atoi(parts[1])
		task, err2 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || col < 0 || task < 0 {
			return Ref{}, false
		}
		return Ref{Kind: RefTask, Col: col, Task: task}, true
	}
	return Ref{}, false
}

// FormatColumnRef builds the drag id for a column position.
func FormatColumnRef(col int) string {
	return "column-" + strconv.Itoa(col)
}

// FormatTaskRef builds the drag id for a task position.
func FormatTaskRef(col, task int) string {
	return "task-" + strconv.Itoa(col) + "-" + strconv.Itoa(task)
}

type EditKind int

const (
	// EditNone means the drop resolves to nothing: released outside a
	// target, returned to its origin, or the ids were unparseable.
	EditNone EditKind = iota
	EditReorderColumns
	EditReorderTasks
	EditMoveTask
)

// Edit is the one store operation a drop gesture resolves to.
type Edit struct {
	Kind    EditKind
	BoardID string

	// EditReorderColumns
	Columns []model.Column

	// EditReorderTasks
	ColumnName string
	Tasks      []model.Task

	// EditMoveTask
	TaskID string
	Status string
	Index  int
}

// Reconcile resolves a drop. Evaluation order matters: column-to-column
// first, then task-to-task, then task-to-column; first match wins.
func Reconcile(activeID, overID string, board *model.Board) Edit {
	if board == nil || board.ID == "" || strings.TrimSpace(overID) == "" {
		return Edit{}
	}
	active, ok := ParseRef(activeID)
	if !ok {
		return Edit{}
	}
	over, ok := ParseRef(overID)
	if !ok {
		return Edit{}
	}

	switch {
	case active.Kind == RefColumn && over.Kind == RefColumn:
		return reconcileColumns(active, over, board)
	case active.Kind == RefTask && over.Kind == RefTask:
		return reconcileTasks(active, over, board)
	case active.Kind == RefTask && over.Kind == RefColumn:
		return reconcileTaskToColumn(active, over, board)
	}
	return Edit{}
}

func reconcileColumns(active, over Ref, board *model.Board) Edit {
	if active.Col == over.Col {
		return Edit{}
	}
	if active.Col >= len(board.Columns) || over.Col >= len(board.Columns) {
		return Edit{}
	}
	return Edit{
		Kind:    EditReorderColumns,
		BoardID: board.ID,
		Columns: moveColumn(board.Columns, active.Col, over.Col),
	}
}

func reconcileTasks(active, over Ref, board *model.Board) Edit {
	if active.Col >= len(board.Columns) {
		return Edit{}
	}
	src := board.Columns[active.Col]
	if active.Task >= len(src.Tasks) {
		return Edit{}
	}
	task := src.Tasks[active.Task]

	if active.Col == over.Col {
		if active.Task == over.Task {
			return Edit{}
		}
		return Edit{
			Kind:       EditReorderTasks,
			BoardID:    board.ID,
			ColumnName: src.Name,
			Tasks:      moveTask(src.Tasks, active.Task, over.Task),
		}
	}

	if task.ID == "" {
		// No persisted identity yet; a cross-column move could not be
		// written back, so the gesture is dropped.
		return Edit{}
	}
	if over.Col >= len(board.Columns) {
		return Edit{}
	}
	return Edit{
		Kind:    EditMoveTask,
		BoardID: board.ID,
		TaskID:  task.ID,
		Status:  board.Columns[over.Col].Name,
		Index:   over.Task,
	}
}

func reconcileTaskToColumn(active, over Ref, board *model.Board) Edit {
	// Dropping onto a column's empty area appends to its end.
	if active.Col == over.Col {
		return Edit{}
	}
	if active.Col >= len(board.Columns) || over.Col >= len(board.Columns) {
		return Edit{}
	}
	src := board.Columns[active.Col]
	if active.Task >= len(src.Tasks) {
		return Edit{}
	}
	task := src.Tasks[active.Task]
	if task.ID == "" {
		return Edit{}
	}
	target := board.Columns[over.Col]
	return Edit{
		Kind:    EditMoveTask,
		BoardID: board.ID,
		TaskID:  task.ID,
		Status:  target.Name,
		Index:   len(target.Tasks),
	}
}

// moveColumn splices the column at from out and reinserts it at to; to is
// a position in the already-shortened slice. Getting this wrong lands
// items one position off the visual drop target.
func moveColumn(cols []model.Column, from, to int) []model.Column {
	out := make([]model.Column, 0, len(cols))
	out = append(out, cols[:from]...)
	out = append(out, cols[from+1:]...)
	if to > len(out) {
		to = len(out)
	}
	rest := append([]model.Column{cols[from]}, out[to:]...)
	return append(out[:to:to], rest...)
}

// moveTask is moveColumn for a task slice.
func moveTask(tasks []model.Task, from, to int) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	out = append(out, tasks[:from]...)
	out = append(out, tasks[from+1:]...)
	if to > len(out) {
		to = len(out)
	}
	rest := append([]model.Task{tasks[from]}, out[to:]...)
	return append(out[:to:to], rest...)
}
