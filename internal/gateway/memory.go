package gateway

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"kanban-cli/internal/model"
)

// Memory is an in-process Gateway backed by maps. It exists for tests and
// for the TUI's throwaway scratch mode; FailNext lets tests script a
// rejection for the next n calls.
type Memory struct {
	mu        sync.Mutex
	boards    map[string]model.Board // columns stored without tasks
	owners    map[string]string      // board id -> user id
	tasks     map[string]model.Task
	taskHome  map[string]string // task id -> board id
	order     []string          // board ids in creation order
	taskOrder []string          // task ids in creation order
	failNext  int
	failMsg   string

	// Calls records gateway method names in invocation order, so tests
	// can assert that persistence fired (or did not).
	Calls []string
}

func NewMemory() *Memory {
	return &Memory{
		boards:   map[string]model.Board{},
		owners:   map[string]string{},
		tasks:    map[string]model.Task{},
		taskHome: map[string]string{},
	}
}

// FailNext makes the next n calls fail with msg.
func (m *Memory) FailNext(n int, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = n
	m.failMsg = msg
}

func (m *Memory) record(call string) error {
	m.Calls = append(m.Calls, call)
	if m.failNext > 0 {
		m.failNext--
		return errors.New(m.failMsg)
	}
	return nil
}

func (m *Memory) GetBoards(ctx context.Context, userID string) ([]model.Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetBoards"); err != nil {
		return nil, err
	}
	var out []model.Board
	for _, id := range m.order {
		if m.owners[id] != userID {
			continue
		}
		out = append(out, model.CloneBoard(m.boards[id]))
	}
	return out, nil
}

func (m *Memory) GetTasks(ctx context.Context, boardID string) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetTasks"); err != nil {
		return nil, err
	}
	var out []model.Task
	for _, id := range m.taskOrder {
		if m.taskHome[id] == boardID {
			out = append(out, model.CloneTask(m.tasks[id]))
		}
	}
	return out, nil
}

func (m *Memory) CreateBoard(ctx context.Context, userID string, board model.Board) (model.Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateBoard"); err != nil {
		return model.Board{}, err
	}
	b := model.CloneBoard(board)
	b.ID = uuid.NewString()
	for i := range b.Columns {
		if b.Columns[i].ID == "" {
			b.Columns[i].ID = uuid.NewString()
		}
		b.Columns[i].Tasks = nil
	}
	m.boards[b.ID] = b
	m.owners[b.ID] = userID
	m.order = append(m.order, b.ID)
	return model.CloneBoard(b), nil
}

func (m *Memory) UpdateBoard(ctx context.Context, boardID string, updates BoardUpdates) (model.Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UpdateBoard"); err != nil {
		return model.Board{}, err
	}
	b, ok := m.boards[boardID]
	if !ok {
		return model.Board{}, NotFoundError{Kind: "board", ID: boardID}
	}
	b = ApplyBoardUpdates(b, updates)
	for i := range b.Columns {
		if b.Columns[i].ID == "" {
			b.Columns[i].ID = uuid.NewString()
		}
		b.Columns[i].Tasks = nil
	}
	m.boards[boardID] = model.CloneBoard(b)
	return model.CloneBoard(b), nil
}

func (m *Memory) DeleteBoard(ctx context.Context, boardID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteBoard"); err != nil {
		return err
	}
	if _, ok := m.boards[boardID]; !ok {
		return NotFoundError{Kind: "board", ID: boardID}
	}
	delete(m.boards, boardID)
	delete(m.owners, boardID)
	for i, id := range m.order {
		if id == boardID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	for id, home := range m.taskHome {
		if home == boardID {
			m.dropTask(id)
		}
	}
	return nil
}

func (m *Memory) CreateTask(ctx context.Context, boardID, userID string, task model.Task) (model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateTask"); err != nil {
		return model.Task{}, err
	}
	if _, ok := m.boards[boardID]; !ok {
		return model.Task{}, NotFoundError{Kind: "board", ID: boardID}
	}
	t := model.CloneTask(task)
	t.ID = uuid.NewString()
	m.tasks[t.ID] = t
	m.taskHome[t.ID] = boardID
	m.taskOrder = append(m.taskOrder, t.ID)
	return model.CloneTask(t), nil
}

func (m *Memory) UpdateTask(ctx context.Context, taskID string, updates TaskUpdates) (model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UpdateTask"); err != nil {
		return model.Task{}, err
	}
	t, ok := m.tasks[taskID]
	if !ok {
		return model.Task{}, NotFoundError{Kind: "task", ID: taskID}
	}
	t = ApplyTaskUpdates(t, updates)
	m.tasks[taskID] = model.CloneTask(t)
	return model.CloneTask(t), nil
}

func (m *Memory) DeleteTask(ctx context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteTask"); err != nil {
		return err
	}
	if _, ok := m.tasks[taskID]; !ok {
		return NotFoundError{Kind: "task", ID: taskID}
	}
	m.dropTask(taskID)
	return nil
}

func (m *Memory) dropTask(taskID string) {
	delete(m.tasks, taskID)
	delete(m.taskHome, taskID)
	for i, id := range m.taskOrder {
		if id == taskID {
			m.taskOrder = append(m.taskOrder[:i], m.taskOrder[i+1:]...)
			break
		}
	}
}

// StoredTask returns the persisted task by id (test helper).
func (m *Memory) StoredTask(taskID string) (model.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	return t, ok
}

// StoredBoard returns the persisted board by id (test helper).
func (m *Memory) StoredBoard(boardID string) (model.Board, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.boards[boardID]
	return b, ok
}
