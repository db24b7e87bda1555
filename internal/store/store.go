// Package store holds the in-memory board collection and applies every
// mutation optimistically before handing its persistence tail to a
// single background worker. Local state is authoritative for the UI; the
// gateway is the source of truth the worker keeps in step.
package store

import (
	"context"
	"sync"
	"time"

	"kanban-cli/internal/gateway"
	"kanban-cli/internal/model"
)

const persistTimeout = 30 * time.Second

// Store is the board store. All reads and in-memory mutations are guarded
// by mu; the asynchronous persistence tail runs on one worker goroutine
// so gateway writes apply in issue order even when local mutations
// outpace the network.
type Store struct {
	mu sync.Mutex
	gw gateway.Gateway

	boards  []model.Board
	current *model.Board
	// prevCurrentID remembers the last explicit selection so a refetch
	// can restore it even when current was cleared in between.
	prevCurrentID string
	orphans       map[string][]model.Task // board id -> fetched tasks matching no column
	loading       bool
	lastErr       string

	// gen invalidates queued ops after a rollback: once an op fails and
	// its snapshot is restored, ops queued against the rolled-back state
	// are stale and must not reach the gateway.
	gen     uint64
	pending []persistOp
	cond    *sync.Cond
	wg      sync.WaitGroup
	closed  bool
}

type persistOp struct {
	gen  uint64
	name string
	call func(ctx context.Context) error

	// Pre-mutation snapshot, restored on gateway failure.
	snapBoards  []model.Board
	snapCurrent *model.Board
}

func New(gw gateway.Gateway) *Store {
	s := &Store{
		gw:      gw,
		orphans: map[string][]model.Task{},
	}
	s.cond = sync.NewCond(&s.mu)
	go s.runPersister()
	return s
}

// Close drains the persistence queue and stops the worker.
func (s *Store) Close() {
	s.wg.Wait()
	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()
}

// Wait blocks until every queued persistence call has resolved. Tests and
// the CLI use it to observe the outcome of optimistic mutations.
func (s *Store) Wait() {
	s.wg.Wait()
}

// enqueue registers a persistence call for the worker. Callers must hold
// mu and must capture the snapshot before applying their local mutation.
func (s *Store) enqueue(name string, snapBoards []model.Board, snapCurrent *model.Board, call func(ctx context.Context) error) {
	s.wg.Add(1)
	s.pending = append(s.pending, persistOp{
		gen:         s.gen,
		name:        name,
		call:        call,
		snapBoards:  snapBoards,
		snapCurrent: snapCurrent,
	})
	s.cond.Signal()
}

func (s *Store) runPersister() {
	for {
		s.mu.Lock()
		for len(s.pending) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.pending) == 0 && s.closed {
			s.mu.Unlock()
			return
		}
		op := s.pending[0]
		s.pending = s.pending[1:]
		stale := op.gen != s.gen
		s.mu.Unlock()

		if stale {
			s.wg.Done()
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		err := op.call(ctx)
		cancel()

		if err != nil {
			s.mu.Lock()
			s.boards = op.snapBoards
			s.current = op.snapCurrent
			s.lastErr = op.name + ": " + err.Error()
			s.gen++
			s.mu.Unlock()
		}
		s.wg.Done()
	}
}

// snapshot deep-copies the current state. Callers must hold mu.
func (s *Store) snapshot() ([]model.Board, *model.Board) {
	boards := model.CloneBoards(s.boards)
	var cur *model.Board
	if s.current != nil {
		b := model.CloneBoard(*s.current)
		cur = &b
	}
	return boards, cur
}

// syncBoards mirrors the current board back into the boards slice so a
// read of Boards() is never stale. Callers must hold mu.
func (s *Store) syncBoards() {
	if s.current == nil {
		return
	}
	for i := range s.boards {
		if s.boards[i].ID == s.current.ID {
			s.boards[i] = model.CloneBoard(*s.current)
			return
		}
	}
}

// Boards returns a deep copy of the known boards.
func (s *Store) Boards() []model.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneBoards(s.boards)
}

// Current returns a deep copy of the open board, or nil.
func (s *Store) Current() *model.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	b := model.CloneBoard(*s.current)
	return &b
}

// Orphans returns fetched tasks whose status matched no column name on
// the given board. They are kept visible here instead of being silently
// dropped from view.
func (s *Store) Orphans(boardID string) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, len(s.orphans[boardID]))
	for i, t := range s.orphans[boardID] {
		out[i] = model.CloneTask(t)
	}
	return out
}

// Loading reports whether a fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the last persistence or fetch error message, or "".
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ClearError resets the shared error field.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
}

// Reset drops all local state (logout / account switch).
func (s *Store) Reset() {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards = nil
	s.current = nil
	s.prevCurrentID = ""
	s.orphans = map[string][]model.Task{}
	s.lastErr = ""
	s.loading = false
}
