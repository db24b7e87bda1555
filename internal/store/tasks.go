package store

import (
	"context"
	"errors"
	"strings"

	"kanban-cli/internal/gateway"
	"kanban-cli/internal/model"
)

var (
	ErrEmptyTaskTitle = errors.New("task title must not be empty")
	// ErrMissingTaskID guards operations that need a persisted identity:
	// a task created optimistically but not yet confirmed cannot be
	// moved, edited, or deleted.
	ErrMissingTaskID = errors.New("task has no id yet")
	ErrUnknownStatus = errors.New("no column matches the requested status")
)

// CreateTask persists a task and appends it into the matching column of
// the open board. Persistence happens first (the task needs its id), so
// the error is returned to the caller rather than flagged asynchronously.
func (s *Store) CreateTask(ctx context.Context, boardID, userID string, task model.Task) (model.Task, error) {
	if strings.TrimSpace(task.Title) == "" {
		return model.Task{}, ErrEmptyTaskTitle
	}
	if task.Subtasks == nil {
		task.Subtasks = []model.Subtask{}
	}

	// Rank after the current tail of the target column.
	s.mu.Lock()
	if s.current != nil && s.current.ID == boardID {
		if ci := s.current.FindColumn(task.Status); ci >= 0 {
			last := ""
			if n := len(s.current.Columns[ci].Tasks); n > 0 {
				last = s.current.Columns[ci].Tasks[n-1].Rank
			}
			if r, err := RankBetween(last, ""); err == nil {
				task.Rank = r
			}
		}
	}
	s.mu.Unlock()

	created, err := s.gw.CreateTask(ctx, boardID, userID, task)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err.Error()
		s.mu.Unlock()
		return model.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.ID == boardID {
		if ci := s.current.FindColumn(created.Status); ci >= 0 {
			s.current.Columns[ci].Tasks = append(s.current.Columns[ci].Tasks, model.CloneTask(created))
		} else {
			// Status matches no column; keep the task reachable.
			s.orphans[boardID] = append(s.orphans[boardID], model.CloneTask(created))
		}
		s.syncBoards()
	}
	return created, nil
}

// UpdateTask optimistically rewrites the matching task in place across
// all columns of the open board, then queues the persistence call.
//
// It never relocates the task between columns, even when updates.Status
// names a different column: changing status structurally is MoveTask's
// job, and it is the only safe way to do it.
func (s *Store) UpdateTask(taskID string, updates gateway.TaskUpdates, boardID string) error {
	if taskID == "" {
		return ErrMissingTaskID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.ID != boardID {
		return nil
	}
	ci, ti := s.current.FindTask(taskID)
	if ci < 0 {
		return nil
	}

	snapB, snapC := s.snapshot()
	cur := s.current.Columns[ci].Tasks[ti]
	next := gateway.ApplyTaskUpdates(model.CloneTask(cur), updates)
	// The structural position wins over a stray status edit: the task
	// stays in its column, so its status must keep matching it.
	next.Status = s.current.Columns[ci].Name
	s.current.Columns[ci].Tasks[ti] = next
	s.syncBoards()

	s.enqueue("update task", snapB, snapC, func(ctx context.Context) error {
		_, err := s.gw.UpdateTask(ctx, taskID, updates)
		return err
	})
	return nil
}

// ToggleSubtask flips one subtask's completion state and persists the
// task's whole subtask list.
func (s *Store) ToggleSubtask(taskID, boardID string, subtaskIndex int) error {
	if taskID == "" {
		return ErrMissingTaskID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.ID != boardID {
		return nil
	}
	ci, ti := s.current.FindTask(taskID)
	if ci < 0 {
		return nil
	}
	t := &s.current.Columns[ci].Tasks[ti]
	if subtaskIndex < 0 || subtaskIndex >= len(t.Subtasks) {
		return nil
	}

	snapB, snapC := s.snapshot()
	t.Subtasks[subtaskIndex].IsCompleted = !t.Subtasks[subtaskIndex].IsCompleted
	subs := append([]model.Subtask(nil), t.Subtasks...)
	s.syncBoards()

	s.enqueue("toggle subtask", snapB, snapC, func(ctx context.Context) error {
		_, err := s.gw.UpdateTask(ctx, taskID, gateway.TaskUpdates{Subtasks: subs})
		return err
	})
	return nil
}

// DeleteTask optimistically removes the task from every column of the
// open board, then queues the delete. Deleting a task that is not on the
// open board is a no-op.
func (s *Store) DeleteTask(taskID, boardID string) error {
	if taskID == "" {
		return ErrMissingTaskID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.ID != boardID {
		return nil
	}
	ci, ti := s.current.FindTask(taskID)
	if ci < 0 {
		return nil
	}

	snapB, snapC := s.snapshot()
	col := &s.current.Columns[ci]
	col.Tasks = append(col.Tasks[:ti], col.Tasks[ti+1:]...)
	s.syncBoards()

	s.enqueue("delete task", snapB, snapC, func(ctx context.Context) error {
		return s.gw.DeleteTask(ctx, taskID)
	})
	return nil
}

// MoveTask is the cross-column move primitive and the only operation
// allowed to change a task's column and status together. The task is
// removed from its source column, restamped with newStatus, and inserted
// at newIndex in the column of that name (index clamped to [0, len]).
func (s *Store) MoveTask(taskID, newStatus string, newIndex int) error {
	if taskID == "" {
		return ErrMissingTaskID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	srcCol, srcIdx := s.current.FindTask(taskID)
	if srcCol < 0 {
		return nil
	}
	dstCol := s.current.FindColumn(newStatus)
	if dstCol < 0 {
		// Refusing beats the alternative: removing the task with no
		// column to receive it would lose it from view entirely.
		return ErrUnknownStatus
	}

	snapB, snapC := s.snapshot()

	task := model.CloneTask(s.current.Columns[srcCol].Tasks[srcIdx])
	src := &s.current.Columns[srcCol]
	src.Tasks = append(src.Tasks[:srcIdx], src.Tasks[srcIdx+1:]...)

	task.Status = newStatus
	dst := &s.current.Columns[dstCol]
	newIndex = clampIndex(newIndex, len(dst.Tasks))

	updates := gateway.TaskUpdates{Status: &newStatus}
	if r, ok := rankForInsert(dst.Tasks, newIndex); ok {
		task.Rank = r
		rank := r
		updates.Rank = &rank
	}

	dst.Tasks = append(dst.Tasks[:newIndex], append([]model.Task{task}, dst.Tasks[newIndex:]...)...)

	var rebalanced []string
	if updates.Rank == nil {
		// Neighbor gap exhausted: rebalance the whole column and persist
		// every shifted rank alongside the move.
		rebalanced = rebalanceRanks(dst.Tasks)
		rank := dst.Tasks[newIndex].Rank
		updates.Rank = &rank
	}
	ranksByID := s.columnRanks(dstCol, rebalanced, taskID)
	s.syncBoards()

	s.enqueue("move task", snapB, snapC, func(ctx context.Context) error {
		if _, err := s.gw.UpdateTask(ctx, taskID, updates); err != nil {
			return err
		}
		for id, r := range ranksByID {
			r := r
			if _, err := s.gw.UpdateTask(ctx, id, gateway.TaskUpdates{Rank: &r}); err != nil {
				return err
			}
		}
		return nil
	})
	return nil
}

// columnRanks collects persisted-rank rewrites for ids (minus the moved
// task, whose rank travels with its own update). Callers hold mu.
func (s *Store) columnRanks(col int, ids []string, skip string) map[string]string {
	if len(ids) == 0 {
		return nil
	}
	out := map[string]string{}
	for _, t := range s.current.Columns[col].Tasks {
		for _, id := range ids {
			if t.ID == id && id != skip {
				out[id] = t.Rank
			}
		}
	}
	return out
}

// ReorderColumns replaces the open board's column order with the given
// permutation and persists the new column list. The caller is
// responsible for passing a permutation of the existing columns.
func (s *Store) ReorderColumns(boardID string, newColumns []model.Column) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.ID != boardID {
		return nil
	}

	snapB, snapC := s.snapshot()
	cols := make([]model.Column, len(newColumns))
	for i := range newColumns {
		cols[i] = model.CloneColumn(newColumns[i])
	}
	s.current.Columns = cols
	s.syncBoards()

	bare := make([]model.Column, len(cols))
	for i, c := range cols {
		bare[i] = model.Column{ID: c.ID, Name: c.Name}
	}
	s.enqueue("reorder columns", snapB, snapC, func(ctx context.Context) error {
		_, err := s.gw.UpdateBoard(ctx, boardID, gateway.BoardUpdates{Columns: bare})
		return err
	})
	return nil
}

// ReorderTasksInColumn replaces one column's task order with the given
// permutation. Only ranks that actually changed are persisted; a drag
// that lands where it started queues nothing.
func (s *Store) ReorderTasksInColumn(boardID, columnName string, newTasks []model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.ID != boardID {
		return nil
	}
	ci := s.current.FindColumn(columnName)
	if ci < 0 {
		return nil
	}

	snapB, snapC := s.snapshot()
	tasks := make([]model.Task, len(newTasks))
	for i := range newTasks {
		tasks[i] = model.CloneTask(newTasks[i])
		tasks[i].Status = columnName
	}

	changed := restitchRanks(tasks)
	s.current.Columns[ci].Tasks = tasks
	s.syncBoards()

	if len(changed) == 0 {
		return nil
	}
	updates := map[string]string{}
	for _, id := range changed {
		for _, t := range tasks {
			if t.ID == id {
				updates[id] = t.Rank
			}
		}
	}
	s.enqueue("reorder tasks", snapB, snapC, func(ctx context.Context) error {
		for id, r := range updates {
			r := r
			if _, err := s.gw.UpdateTask(ctx, id, gateway.TaskUpdates{Rank: &r}); err != nil {
				return err
			}
		}
		return nil
	})
	return nil
}

// restitchRanks repairs rank order for a freshly permuted column: tasks
// whose rank no longer fits the sequence get a new one between their
// neighbors. Falls back to a full rebalance when a gap is exhausted.
// Returns the ids whose rank changed. A not-yet-saved task (empty id)
// still gets a local rank so the column stays ordered, but that rank is
// never persisted, so its position lasts only until the next fetch.
func restitchRanks(tasks []model.Task) []string {
	var changed []string
	prev := ""
	for i := range tasks {
		r := strings.TrimSpace(tasks[i].Rank)
		if r != "" && (prev == "" || prev < r) {
			prev = r
			continue
		}
		// Find the next task with a rank that still fits above prev.
		upper := ""
		for j := i + 1; j < len(tasks); j++ {
			rj := strings.TrimSpace(tasks[j].Rank)
			if rj != "" && (prev == "" || prev < rj) {
				upper = rj
				break
			}
		}
		nr, err := RankBetween(prev, upper)
		if err != nil {
			return rebalanceRanks(tasks)
		}
		tasks[i].Rank = nr
		if tasks[i].ID != "" {
			changed = append(changed, tasks[i].ID)
		}
		prev = nr
	}
	return changed
}
