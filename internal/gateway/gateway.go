// Package gateway defines the persistence contract the board store writes
// through, plus the shipped implementations (SQLite, HTTP, in-memory).
package gateway

import (
	"context"
	"fmt"

	"kanban-cli/internal/model"
)

// BoardUpdates is a partial board edit. Nil fields are left unchanged.
type BoardUpdates struct {
	Name    *string        `json:"name,omitempty"`
	Columns []model.Column `json:"columns,omitempty"`
}

// TaskUpdates is a partial task edit. Nil fields are left unchanged.
// Subtasks replaces the whole list when non-nil.
type TaskUpdates struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	Status      *string         `json:"status,omitempty"`
	Rank        *string         `json:"rank,omitempty"`
	Subtasks    []model.Subtask `json:"subtasks,omitempty"`
}

// Gateway is the CRUD surface boards and tasks are persisted through.
// Boards are scoped to a user, tasks to a board; both are keyed by opaque
// string ids assigned on create. GetBoards returns columns without tasks;
// callers partition GetTasks results by status themselves.
//
// Calls may fail with an error carrying a human-readable message. The
// store does not retry; it rolls back the optimistic edit instead.
type Gateway interface {
	GetBoards(ctx context.Context, userID string) ([]model.Board, error)
	GetTasks(ctx context.Context, boardID string) ([]model.Task, error)

	CreateBoard(ctx context.Context, userID string, board model.Board) (model.Board, error)
	UpdateBoard(ctx context.Context, boardID string, updates BoardUpdates) (model.Board, error)
	DeleteBoard(ctx context.Context, boardID string) error

	CreateTask(ctx context.Context, boardID, userID string, task model.Task) (model.Task, error)
	UpdateTask(ctx context.Context, taskID string, updates TaskUpdates) (model.Task, error)
	DeleteTask(ctx context.Context, taskID string) error
}

// NotFoundError is returned when a board or task id does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ApplyBoardUpdates merges updates into b.
func ApplyBoardUpdates(b model.Board, u BoardUpdates) model.Board {
	if u.Name != nil {
		b.Name = *u.Name
	}
	if u.Columns != nil {
		b.Columns = u.Columns
	}
	return b
}

// ApplyTaskUpdates merges updates into t.
func ApplyTaskUpdates(t model.Task, u TaskUpdates) model.Task {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Rank != nil {
		t.Rank = *u.Rank
	}
	if u.Subtasks != nil {
		t.Subtasks = u.Subtasks
	}
	return t
}
