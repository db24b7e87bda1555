package store

import (
	"context"
	"errors"
	"strings"

	"kanban-cli/internal/gateway"
	"kanban-cli/internal/model"
)

var (
	ErrEmptyBoardName  = errors.New("board name must not be empty")
	ErrNoColumns       = errors.New("board needs at least one named column")
	ErrDuplicateColumn = errors.New("column names must be unique within a board")
)

// partitionBoard distributes tasks into the board's columns by matching
// task status to column name, ordering each column by rank. Tasks whose
// status matches no column are returned separately; they stay visible via
// Orphans instead of being dropped.
func partitionBoard(b model.Board, tasks []model.Task) (model.Board, []model.Task) {
	out := model.CloneBoard(b)
	for i := range out.Columns {
		out.Columns[i].Tasks = nil
	}
	var orphans []model.Task
	for _, t := range tasks {
		ci := out.FindColumn(t.Status)
		if ci < 0 {
			orphans = append(orphans, t)
			continue
		}
		out.Columns[ci].Tasks = append(out.Columns[ci].Tasks, t)
	}
	for i := range out.Columns {
		sortTasksByRank(out.Columns[i].Tasks)
	}
	return out, orphans
}

// FetchBoards loads all boards for a user, fetches their tasks, and
// partitions tasks into columns. The previously open board stays open if
// it is still present in the fetched set; otherwise the first board is
// selected (nil when the user has none).
func (s *Store) FetchBoards(ctx context.Context, userID string) error {
	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()

	fail := func(err error) error {
		s.mu.Lock()
		s.lastErr = err.Error()
		s.loading = false
		s.mu.Unlock()
		return err
	}

	raw, err := s.gw.GetBoards(ctx, userID)
	if err != nil {
		return fail(err)
	}

	boards := make([]model.Board, 0, len(raw))
	orphans := map[string][]model.Task{}
	for _, b := range raw {
		if b.ID == "" {
			boards = append(boards, b)
			continue
		}
		tasks, err := s.gw.GetTasks(ctx, b.ID)
		if err != nil {
			return fail(err)
		}
		filled, lost := partitionBoard(b, tasks)
		if len(lost) > 0 {
			orphans[b.ID] = lost
		}
		boards = append(boards, filled)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.prevCurrentID
	if s.current != nil {
		prev = s.current.ID
	}
	s.boards = boards
	s.orphans = orphans
	// Reuse the previous selection only if it survived the refetch;
	// otherwise default to the first board. Selection must never jump to
	// an unrelated board just because the list was refreshed.
	s.current = nil
	if prev != "" {
		for i := range boards {
			if boards[i].ID == prev {
				b := model.CloneBoard(boards[i])
				s.current = &b
				break
			}
		}
	}
	if s.current == nil && len(boards) > 0 {
		b := model.CloneBoard(boards[0])
		s.current = &b
	}
	if s.current != nil {
		s.prevCurrentID = s.current.ID
	}
	s.loading = false
	return nil
}

// SetCurrentBoard switches the open board and (re)loads its tasks.
func (s *Store) SetCurrentBoard(ctx context.Context, board model.Board) error {
	s.mu.Lock()
	b := model.CloneBoard(board)
	s.current = &b
	s.prevCurrentID = b.ID
	s.loading = true
	s.mu.Unlock()

	if board.ID == "" {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		return nil
	}

	tasks, err := s.gw.GetTasks(ctx, board.ID)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err.Error()
		s.loading = false
		s.mu.Unlock()
		return err
	}

	filled, lost := partitionBoard(board, tasks)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &filled
	if len(lost) > 0 {
		s.orphans[board.ID] = lost
	} else {
		delete(s.orphans, board.ID)
	}
	s.syncBoards()
	s.loading = false
	return nil
}

// CreateBoard validates, persists, and opens a new board. Columns are
// created empty. The gateway error is returned to the caller (so a form
// can stay open on failure) in addition to setting the error field.
func (s *Store) CreateBoard(ctx context.Context, userID, name string, columnNames []string) (model.Board, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Board{}, ErrEmptyBoardName
	}
	var cols []model.Column
	seen := map[string]bool{}
	for _, cn := range columnNames {
		cn = strings.TrimSpace(cn)
		if cn == "" {
			continue
		}
		if seen[cn] {
			return model.Board{}, ErrDuplicateColumn
		}
		seen[cn] = true
		cols = append(cols, model.Column{Name: cn, Tasks: []model.Task{}})
	}
	if len(cols) == 0 {
		return model.Board{}, ErrNoColumns
	}

	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()

	created, err := s.gw.CreateBoard(ctx, userID, model.Board{Name: name, Columns: cols})
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastErr = err.Error()
		return model.Board{}, err
	}
	for i := range created.Columns {
		if created.Columns[i].Tasks == nil {
			created.Columns[i].Tasks = []model.Task{}
		}
	}
	s.boards = append(s.boards, model.CloneBoard(created))
	cur := model.CloneBoard(created)
	s.current = &cur
	s.prevCurrentID = cur.ID
	return created, nil
}

// UpdateBoard merges updates into the matching board. Column changes
// migrate tasks by column id, not name: a renamed column keeps its tasks
// (statuses are rewritten to the new name), and only tasks of genuinely
// removed columns are orphaned — those are returned, never silently lost.
func (s *Store) UpdateBoard(ctx context.Context, boardID string, updates gateway.BoardUpdates) ([]model.Task, error) {
	if updates.Name != nil && strings.TrimSpace(*updates.Name) == "" {
		return nil, ErrEmptyBoardName
	}
	if updates.Columns != nil {
		named := 0
		seen := map[string]bool{}
		for _, c := range updates.Columns {
			n := strings.TrimSpace(c.Name)
			if n == "" {
				continue
			}
			if seen[n] {
				return nil, ErrDuplicateColumn
			}
			seen[n] = true
			named++
		}
		if named == 0 {
			return nil, ErrNoColumns
		}
	}

	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()

	updated, err := s.gw.UpdateBoard(ctx, boardID, updates)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastErr = err.Error()
		return nil, err
	}

	var orphans []model.Task
	merge := func(old model.Board) model.Board {
		next := model.CloneBoard(old)
		next.Name = updated.Name
		if updates.Columns == nil {
			return next
		}
		var cols []model.Column
		kept := map[string]bool{}
		for _, nc := range updated.Columns {
			col := model.Column{ID: nc.ID, Name: nc.Name, Tasks: []model.Task{}}
			if oi := old.FindColumnID(nc.ID); oi >= 0 {
				kept[nc.ID] = true
				for _, t := range old.Columns[oi].Tasks {
					t = model.CloneTask(t)
					t.Status = nc.Name
					col.Tasks = append(col.Tasks, t)
				}
			}
			cols = append(cols, col)
		}
		next.Columns = cols
		return next
	}

	if s.current != nil && s.current.ID == boardID {
		old := *s.current
		next := merge(old)
		for _, oc := range old.Columns {
			if next.FindColumnID(oc.ID) < 0 {
				orphans = append(orphans, oc.Tasks...)
			}
		}
		s.current = &next
		if len(orphans) > 0 {
			s.orphans[boardID] = append(s.orphans[boardID], orphans...)
		}
		s.syncBoards()
		// Queue status rewrites for renamed columns only after the
		// rename is applied locally. The board update is already on the
		// backend, so a failed rewrite rolls back to the renamed board,
		// never to the pre-rename column names.
		for _, oc := range old.Columns {
			ni := next.FindColumnID(oc.ID)
			if ni < 0 || next.Columns[ni].Name == oc.Name {
				continue
			}
			status := next.Columns[ni].Name
			for _, t := range next.Columns[ni].Tasks {
				if t.ID == "" {
					continue
				}
				taskID := t.ID
				snapB, snapC := s.snapshot()
				s.enqueue("migrate task status", snapB, snapC, func(ctx context.Context) error {
					_, err := s.gw.UpdateTask(ctx, taskID, gateway.TaskUpdates{Status: &status})
					return err
				})
			}
		}
	} else {
		for i := range s.boards {
			if s.boards[i].ID == boardID {
				s.boards[i] = merge(s.boards[i])
				break
			}
		}
	}
	return orphans, nil
}

// DeleteBoard removes the board. When it was the open board, the first
// remaining board is selected, or nil when none are left.
func (s *Store) DeleteBoard(ctx context.Context, boardID string) error {
	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()

	err := s.gw.DeleteBoard(ctx, boardID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastErr = err.Error()
		return err
	}

	kept := s.boards[:0]
	for _, b := range s.boards {
		if b.ID != boardID {
			kept = append(kept, b)
		}
	}
	s.boards = kept
	delete(s.orphans, boardID)
	if s.current != nil && s.current.ID == boardID {
		s.current = nil
		s.prevCurrentID = ""
		if len(s.boards) > 0 {
			b := model.CloneBoard(s.boards[0])
			s.current = &b
			s.prevCurrentID = b.ID
		}
	}
	return nil
}
