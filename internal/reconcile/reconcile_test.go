package reconcile

import (
	"testing"

	"kanban-cli/internal/model"
)

func demoBoard() *model.Board {
	return &model.Board{
		ID:   "b1",
		Name: "Sprint",
		Columns: []model.Column{
			{ID: "c0", Name: "Todo", Tasks: []model.Task{
				{ID: "t00", Title: "a", Status: "Todo"},
				{ID: "t01", Title: "b", Status: "Todo"},
				{ID: "t02", Title: "c", Status: "Todo"},
			}},
			{ID: "c1", Name: "Doing", Tasks: []model.Task{
				{ID: "t10", Title: "d", Status: "Doing"},
			}},
			{ID: "c2", Name: "Done", Tasks: []model.Task{}},
		},
	}
}

func TestParseRef(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want Ref
		ok   bool
	}{
		{"column-0", Ref{Kind: RefColumn, Col: 0}, true},
		{"column-12", Ref{Kind: RefColumn, Col: 12}, true},
		{"task-1-3", Ref{Kind: RefTask, Col: 1, Task: 3}, true},
		{"task-0-0", Ref{Kind: RefTask, Col: 0, Task: 0}, true},
		{"", Ref{}, false},
		{"column-", Ref{}, false},
		{"column--1", Ref{}, false},
		{"task-1", Ref{}, false},
		{"task-x-2", Ref{}, false},
		{"row-1-2", Ref{}, false},
		{"task-1-2-3", Ref{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseRef(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseRef(%q) = %+v, %v; want %+v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestFormatRefs_RoundTrip(t *testing.T) {
	t.Parallel()
	if got, ok := ParseRef(FormatColumnRef(3)); !ok || got.Col != 3 || got.Kind != RefColumn {
		t.Fatalf("column round trip: %+v, %v", got, ok)
	}
	if got, ok := ParseRef(FormatTaskRef(2, 5)); !ok || got.Col != 2 || got.Task != 5 || got.Kind != RefTask {
		t.Fatalf("task round trip: %+v, %v", got, ok)
	}
}

func TestReconcile_ColumnOverColumn(t *testing.T) {
	t.Parallel()
	b := demoBoard()

	e := Reconcile("column-2", "column-0", b)
	if e.Kind != EditReorderColumns {
		t.Fatalf("kind: %v", e.Kind)
	}
	if e.BoardID != "b1" {
		t.Fatalf("board id: %q", e.BoardID)
	}
	got := []string{e.Columns[0].Name, e.Columns[1].Name, e.Columns[2].Name}
	want := []string{"Done", "Todo", "Doing"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("column order: got %v, want %v", got, want)
		}
	}
	// Tasks must travel with their column.
	if len(e.Columns[1].Tasks) != 3 {
		t.Fatalf("Todo lost its tasks: %d", len(e.Columns[1].Tasks))
	}
}

func TestReconcile_ColumnOverItself(t *testing.T) {
	t.Parallel()
	e := Reconcile("column-1", "column-1", demoBoard())
	if e.Kind != EditNone {
		t.Fatalf("expected no edit; got %v", e.Kind)
	}
}

func TestReconcile_TaskOverTask_SameColumn(t *testing.T) {
	t.Parallel()
	e := Reconcile("task-0-2", "task-0-0", demoBoard())
	if e.Kind != EditReorderTasks {
		t.Fatalf("kind: %v", e.Kind)
	}
	if e.ColumnName != "Todo" {
		t.Fatalf("column: %q", e.ColumnName)
	}
	got := []string{e.Tasks[0].ID, e.Tasks[1].ID, e.Tasks[2].ID}
	want := []string{"t02", "t00", "t01"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("task order: got %v, want %v", got, want)
		}
	}
}

func TestReconcile_TaskOverTask_CrossColumn(t *testing.T) {
	t.Parallel()
	e := Reconcile("task-0-2", "task-1-0", demoBoard())
	if e.Kind != EditMoveTask {
		t.Fatalf("kind: %v", e.Kind)
	}
	if e.TaskID != "t02" || e.Status != "Doing" || e.Index != 0 {
		t.Fatalf("edit: %+v", e)
	}
}

func TestReconcile_TaskOverColumn_AppendsToEnd(t *testing.T) {
	t.Parallel()
	b := demoBoard()

	e := Reconcile("task-0-1", "column-2", b)
	if e.Kind != EditMoveTask {
		t.Fatalf("kind: %v", e.Kind)
	}
	if e.TaskID != "t01" || e.Status != "Done" || e.Index != 0 {
		t.Fatalf("edit into empty column: %+v", e)
	}

	e = Reconcile("task-1-0", "column-0", b)
	if e.TaskID != "t10" || e.Status != "Todo" || e.Index != 3 {
		t.Fatalf("edit into populated column: %+v", e)
	}
}

func TestReconcile_TaskOverOwnColumn(t *testing.T) {
	t.Parallel()
	e := Reconcile("task-0-1", "column-0", demoBoard())
	if e.Kind != EditNone {
		t.Fatalf("expected no edit; got %v", e.Kind)
	}
}

func TestReconcile_NoOps(t *testing.T) {
	t.Parallel()
	b := demoBoard()
	cases := []struct {
		name             string
		activeID, overID string
		board            *model.Board
	}{
		{"no target", "task-0-0", "", b},
		{"task over itself", "task-0-1", "task-0-1", b},
		{"garbage active", "blob-3", "column-0", b},
		{"garbage over", "task-0-0", "blob-3", b},
		{"column out of range", "column-9", "column-0", b},
		{"task out of range", "task-0-9", "task-1-0", b},
		{"nil board", "task-0-0", "task-1-0", nil},
		{"board without id", "task-0-0", "task-1-0", &model.Board{Name: "draft"}},
		{"column onto task", "column-0", "task-1-0", b},
	}
	for _, tc := range cases {
		if e := Reconcile(tc.activeID, tc.overID, tc.board); e.Kind != EditNone {
			t.Fatalf("%s: expected no edit, got %+v", tc.name, e)
		}
	}
}

func TestReconcile_UnsavedTaskCannotCrossColumns(t *testing.T) {
	t.Parallel()
	b := demoBoard()
	b.Columns[0].Tasks[1].ID = ""

	if e := Reconcile("task-0-1", "task-1-0", b); e.Kind != EditNone {
		t.Fatalf("cross-column move of unsaved task: %+v", e)
	}
	if e := Reconcile("task-0-1", "column-2", b); e.Kind != EditNone {
		t.Fatalf("column drop of unsaved task: %+v", e)
	}
	// Same-column reorder is structural only and stays allowed.
	if e := Reconcile("task-0-1", "task-0-0", b); e.Kind != EditReorderTasks {
		t.Fatalf("same-column reorder of unsaved task: %+v", e)
	}
}

func TestReconcile_DoesNotMutateBoard(t *testing.T) {
	t.Parallel()
	b := demoBoard()
	Reconcile("column-2", "column-0", b)
	Reconcile("task-0-2", "task-0-0", b)

	if b.Columns[0].Name != "Todo" || b.Columns[0].Tasks[0].ID != "t00" {
		t.Fatalf("board mutated by reconcile: %+v", b.Columns)
	}
}

func TestGesture(t *testing.T) {
	t.Parallel()
	b := demoBoard()
	var g Gesture

	if _, ok := g.Active(); ok {
		t.Fatalf("fresh gesture must be idle")
	}
	if err := g.Begin("task-0-2"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := g.Begin("task-0-0"); err != ErrDragInProgress {
		t.Fatalf("second Begin: %v", err)
	}
	if id, ok := g.Active(); !ok || id != "task-0-2" {
		t.Fatalf("Active: %q, %v", id, ok)
	}

	e := g.Drop("task-1-0", b)
	if e.Kind != EditMoveTask || e.TaskID != "t02" {
		t.Fatalf("Drop: %+v", e)
	}
	if _, ok := g.Active(); ok {
		t.Fatalf("gesture must return to idle after drop")
	}

	// Drop without Begin is a no-op.
	if e := g.Drop("task-1-0", b); e.Kind != EditNone {
		t.Fatalf("idle Drop: %+v", e)
	}

	if err := g.Begin("not-a-ref"); err == nil {
		t.Fatalf("Begin must reject malformed identifiers")
	}
	if err := g.Begin("column-1"); err != nil {
		t.Fatalf("Begin after rejection: %v", err)
	}
	g.Cancel()
	if _, ok := g.Active(); ok {
		t.Fatalf("Cancel must return to idle")
	}
}
