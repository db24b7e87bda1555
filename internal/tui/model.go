package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"kanban-cli/internal/model"
	"kanban-cli/internal/reconcile"
	"kanban-cli/internal/store"
)

type mode int

const (
	modeBoard mode = iota
	modeDetail
	modeNewTask
	modeNewBoard
)

// selection addresses a position on the board. task == -1 selects the
// column itself (used for empty columns and column drags).
type selection struct {
	col  int
	task int
}

type Model struct {
	st     *store.Store
	userID string

	mode    mode
	sel     selection
	gesture reconcile.Gesture
	input   textinput.Model

	confirmDelete bool
	width         int
	height        int
	notice        string
}

func newModel(st *store.Store, userID string) *Model {
	in := textinput.New()
	in.CharLimit = 120
	return &Model{st: st, userID: userID, input: in}
}

type tickMsg time.Time

type refreshedMsg struct{ err error }

func tick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Init() tea.Cmd {
	return tick()
}

func (m *Model) refresh() tea.Cmd {
	st, userID := m.st, m.userID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return refreshedMsg{err: st.FetchBoards(ctx, userID)}
	}
}

func (m *Model) board() *model.Board {
	return m.st.Current()
}

// clampSelection keeps the selection on the board after any mutation.
func (m *Model) clampSelection() {
	b := m.board()
	if b == nil || len(b.Columns) == 0 {
		m.sel = selection{}
		return
	}
	if m.sel.col < 0 {
		m.sel.col = 0
	}
	if m.sel.col >= len(b.Columns) {
		m.sel.col = len(b.Columns) - 1
	}
	n := len(b.Columns[m.sel.col].Tasks)
	if n == 0 {
		m.sel.task = -1
		return
	}
	if m.sel.task < 0 {
		m.sel.task = 0
	}
	if m.sel.task >= n {
		m.sel.task = n - 1
	}
}

func (m *Model) selectedTask() *model.Task {
	b := m.board()
	if b == nil || m.sel.col >= len(b.Columns) {
		return nil
	}
	col := b.Columns[m.sel.col]
	if m.sel.task < 0 || m.sel.task >= len(col.Tasks) {
		return nil
	}
	return &col.Tasks[m.sel.task]
}

// overRef translates the current selection into a drop target identifier.
func (m *Model) overRef() string {
	if m.sel.task >= 0 {
		return reconcile.FormatTaskRef(m.sel.col, m.sel.task)
	}
	return reconcile.FormatColumnRef(m.sel.col)
}
