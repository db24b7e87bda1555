package gateway

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"kanban-cli/internal/model"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "kanban.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLite_BoardRoundTrip(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()

	created, err := db.CreateBoard(ctx, "user-1", model.Board{
		Name: "Sprint",
		Columns: []model.Column{
			{Name: "Todo"},
			{Name: "Doing"},
		},
	})
	if err != nil {
		t.Fatalf("CreateBoard: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("missing board id")
	}
	for _, c := range created.Columns {
		if c.ID == "" {
			t.Fatalf("column %q missing id", c.Name)
		}
	}

	boards, err := db.GetBoards(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetBoards: %v", err)
	}
	if len(boards) != 1 || boards[0].Name != "Sprint" {
		t.Fatalf("unexpected boards: %+v", boards)
	}
	if len(boards[0].Columns) != 2 || boards[0].Columns[0].ID != created.Columns[0].ID {
		t.Fatalf("column ids did not survive the round trip: %+v", boards[0].Columns)
	}

	// Boards are scoped to their user.
	other, err := db.GetBoards(ctx, "someone-else")
	if err != nil {
		t.Fatalf("GetBoards other user: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no boards for other user; got %d", len(other))
	}
}

func TestSQLite_UpdateBoardKeepsColumnIDs(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()

	created, err := db.CreateBoard(ctx, "user-1", model.Board{
		Name:    "Sprint",
		Columns: []model.Column{{Name: "Todo"}},
	})
	if err != nil {
		t.Fatalf("CreateBoard: %v", err)
	}

	name := "Sprint 2"
	updated, err := db.UpdateBoard(ctx, created.ID, BoardUpdates{
		Name: &name,
		Columns: []model.Column{
			{ID: created.Columns[0].ID, Name: "Backlog"},
			{Name: "Review"},
		},
	})
	if err != nil {
		t.Fatalf("UpdateBoard: %v", err)
	}
	if updated.Name != "Sprint 2" {
		t.Fatalf("name: %q", updated.Name)
	}
	if updated.Columns[0].ID != created.Columns[0].ID || updated.Columns[0].Name != "Backlog" {
		t.Fatalf("renamed column must keep its id: %+v", updated.Columns[0])
	}
	if updated.Columns[1].ID == "" {
		t.Fatalf("new column must get an id")
	}
}

func TestSQLite_TaskRoundTrip(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()

	b, err := db.CreateBoard(ctx, "user-1", model.Board{
		Name:    "Sprint",
		Columns: []model.Column{{Name: "Todo"}},
	})
	if err != nil {
		t.Fatalf("CreateBoard: %v", err)
	}

	created, err := db.CreateTask(ctx, b.ID, "user-1", model.Task{
		Title:       "Write docs",
		Description: "the long kind",
		Status:      "Todo",
		Rank:        "h",
		Subtasks:    []model.Subtask{{Title: "outline", IsCompleted: true}, {Title: "draft"}},
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("missing task id")
	}

	tasks, err := db.GetTasks(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetTasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task; got %d", len(tasks))
	}
	got := tasks[0]
	if got.Title != "Write docs" || got.Description != "the long kind" || got.Rank != "h" {
		t.Fatalf("unexpected task: %+v", got)
	}
	if len(got.Subtasks) != 2 || !got.Subtasks[0].IsCompleted || got.Subtasks[1].IsCompleted {
		t.Fatalf("subtasks did not survive: %+v", got.Subtasks)
	}
}

func TestSQLite_TasksOrderedByRank(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()

	b, err := db.CreateBoard(ctx, "user-1", model.Board{
		Name:    "Sprint",
		Columns: []model.Column{{Name: "Todo"}},
	})
	if err != nil {
		t.Fatalf("CreateBoard: %v", err)
	}
	for _, tc := range []struct{ title, rank string }{
		{"second", "q"},
		{"first", "h"},
		{"third", "u"},
	} {
		if _, err := db.CreateTask(ctx, b.ID, "user-1", model.Task{Title: tc.title, Status: "Todo", Rank: tc.rank}); err != nil {
			t.Fatalf("CreateTask(%s): %v", tc.title, err)
		}
	}

	tasks, err := db.GetTasks(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetTasks: %v", err)
	}
	want := []string{"first", "second", "third"}
	for i, w := range want {
		if tasks[i].Title != w {
			t.Fatalf("position %d: got %q, want %q", i, tasks[i].Title, w)
		}
	}
}

func TestSQLite_UpdateTask(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()

	b, _ := db.CreateBoard(ctx, "user-1", model.Board{Name: "Sprint", Columns: []model.Column{{Name: "Todo"}, {Name: "Doing"}}})
	created, err := db.CreateTask(ctx, b.ID, "user-1", model.Task{Title: "t", Status: "Todo"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	status := "Doing"
	rank := "h0h"
	updated, err := db.UpdateTask(ctx, created.ID, TaskUpdates{Status: &status, Rank: &rank})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.Status != "Doing" || updated.Rank != "h0h" {
		t.Fatalf("updates not applied: %+v", updated)
	}
	// Untouched fields survive.
	if updated.Title != "t" {
		t.Fatalf("title clobbered: %q", updated.Title)
	}
}

func TestSQLite_DeleteBoardCascades(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()

	b, _ := db.CreateBoard(ctx, "user-1", model.Board{Name: "Sprint", Columns: []model.Column{{Name: "Todo"}}})
	task, err := db.CreateTask(ctx, b.ID, "user-1", model.Task{Title: "t", Status: "Todo"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if err := db.DeleteBoard(ctx, b.ID); err != nil {
		t.Fatalf("DeleteBoard: %v", err)
	}
	tasks, err := db.GetTasks(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetTasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("tasks must be deleted with their board; got %d", len(tasks))
	}
	var nf NotFoundError
	if _, err := db.UpdateTask(ctx, task.ID, TaskUpdates{}); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError; got %v", err)
	}
}

func TestSQLite_NotFound(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()

	var nf NotFoundError
	if _, err := db.UpdateBoard(ctx, "nope", BoardUpdates{}); !errors.As(err, &nf) {
		t.Fatalf("UpdateBoard: %v", err)
	}
	if err := db.DeleteBoard(ctx, "nope"); !errors.As(err, &nf) {
		t.Fatalf("DeleteBoard: %v", err)
	}
	if _, err := db.CreateTask(ctx, "nope", "user-1", model.Task{Title: "t"}); !errors.As(err, &nf) {
		t.Fatalf("CreateTask: %v", err)
	}
	if err := db.DeleteTask(ctx, "nope"); !errors.As(err, &nf) {
		t.Fatalf("DeleteTask: %v", err)
	}
}
