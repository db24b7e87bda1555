package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"kanban-cli/internal/model"
)

// SQLite is the default local Gateway. Column lists and subtask lists are
// stored as JSON text on their owning row, matching the wire shape the
// hosted backend used; tasks live in their own table keyed by board id.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and migrates) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout avoids
	// "database is locked" flakiness when the serve command shares a file
	// with a CLI invocation.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS boards (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			columns_json TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_boards_user ON boards(user_id);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			board_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			status TEXT NOT NULL,
			rank TEXT NOT NULL DEFAULT '',
			subtasks_json TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_board ON tasks(board_id);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func nowStamp() string { return time.Now().UTC().Format(time.RFC3339Nano) }

// columnsJSON strips tasks before serializing: tasks are rows of their
// own, never part of the board record.
func columnsJSON(cols []model.Column) (string, error) {
	bare := make([]model.Column, len(cols))
	for i, c := range cols {
		bare[i] = model.Column{ID: c.ID, Name: c.Name}
	}
	b, err := json.Marshal(bare)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *SQLite) GetBoards(ctx context.Context, userID string) ([]model.Board, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, columns_json FROM boards WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Board
	for rows.Next() {
		var b model.Board
		var colsJSON string
		if err := rows.Scan(&b.ID, &b.Name, &colsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(colsJSON), &b.Columns); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *SQLite) GetTasks(ctx context.Context, boardID string) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, status, rank, subtasks_json FROM tasks WHERE board_id = ? ORDER BY rank, created_at, id`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Task
	for rows.Next() {
		var t model.Task
		var subsJSON string
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Rank, &subsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(subsJSON), &t.Subtasks); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLite) CreateBoard(ctx context.Context, userID string, board model.Board) (model.Board, error) {
	board.ID = uuid.NewString()
	for i := range board.Columns {
		if board.Columns[i].ID == "" {
			board.Columns[i].ID = uuid.NewString()
		}
		board.Columns[i].Tasks = nil
	}
	cols, err := columnsJSON(board.Columns)
	if err != nil {
		return model.Board{}, err
	}
	now := nowStamp()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO boards(id, user_id, name, columns_json, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?)`,
		board.ID, userID, board.Name, cols, now, now)
	if err != nil {
		return model.Board{}, err
	}
	return board, nil
}

func (s *SQLite) UpdateBoard(ctx context.Context, boardID string, updates BoardUpdates) (model.Board, error) {
	cur, err := s.loadBoard(ctx, boardID)
	if err != nil {
		return model.Board{}, err
	}
	next := ApplyBoardUpdates(cur, updates)
	for i := range next.Columns {
		if next.Columns[i].ID == "" {
			next.Columns[i].ID = uuid.NewString()
		}
	}
	cols, err := columnsJSON(next.Columns)
	if err != nil {
		return model.Board{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE boards SET name = ?, columns_json = ?, updated_at = ? WHERE id = ?`,
		next.Name, cols, nowStamp(), boardID)
	if err != nil {
		return model.Board{}, err
	}
	return next, nil
}

func (s *SQLite) DeleteBoard(ctx context.Context, boardID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, boardID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFoundError{Kind: "board", ID: boardID}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE board_id = ?`, boardID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLite) CreateTask(ctx context.Context, boardID, userID string, task model.Task) (model.Task, error) {
	if _, err := s.loadBoard(ctx, boardID); err != nil {
		return model.Task{}, err
	}
	task.ID = uuid.NewString()
	if task.Subtasks == nil {
		task.Subtasks = []model.Subtask{}
	}
	subs, err := json.Marshal(task.Subtasks)
	if err != nil {
		return model.Task{}, err
	}
	now := nowStamp()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tasks(id, board_id, user_id, title, description, status, rank, subtasks_json, created_at, updated_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, boardID, userID, task.Title, task.Description, task.Status, task.Rank, string(subs), now, now)
	if err != nil {
		return model.Task{}, err
	}
	return task, nil
}

func (s *SQLite) UpdateTask(ctx context.Context, taskID string, updates TaskUpdates) (model.Task, error) {
	cur, err := s.loadTask(ctx, taskID)
	if err != nil {
		return model.Task{}, err
	}
	next := ApplyTaskUpdates(cur, updates)
	subs, err := json.Marshal(next.Subtasks)
	if err != nil {
		return model.Task{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, status = ?, rank = ?, subtasks_json = ?, updated_at = ? WHERE id = ?`,
		next.Title, next.Description, next.Status, next.Rank, string(subs), nowStamp(), taskID)
	if err != nil {
		return model.Task{}, err
	}
	return next, nil
}

func (s *SQLite) DeleteTask(ctx context.Context, taskID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, taskID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFoundError{Kind: "task", ID: taskID}
	}
	return nil
}

func (s *SQLite) loadBoard(ctx context.Context, boardID string) (model.Board, error) {
	var b model.Board
	var colsJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, columns_json FROM boards WHERE id = ?`, boardID).
		Scan(&b.ID, &b.Name, &colsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Board{}, NotFoundError{Kind: "board", ID: boardID}
	}
	if err != nil {
		return model.Board{}, err
	}
	if err := json.Unmarshal([]byte(colsJSON), &b.Columns); err != nil {
		return model.Board{}, err
	}
	return b, nil
}

func (s *SQLite) loadTask(ctx context.Context, taskID string) (model.Task, error) {
	var t model.Task
	var subsJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, status, rank, subtasks_json FROM tasks WHERE id = ?`, taskID).
		Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Rank, &subsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, NotFoundError{Kind: "task", ID: taskID}
	}
	if err != nil {
		return model.Task{}, err
	}
	if err := json.Unmarshal([]byte(subsJSON), &t.Subtasks); err != nil {
		return model.Task{}, err
	}
	return t, nil
}
