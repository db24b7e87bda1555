package tui

import (
	"context"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"kanban-cli/internal/model"
	"kanban-cli/internal/reconcile"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		return m, tick()
	case refreshedMsg:
		m.clampSelection()
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modeNewTask, modeNewBoard:
			return m.updateInput(msg)
		case modeDetail:
			return m.updateDetail(msg)
		default:
			return m.updateBoard(msg)
		}
	}
	return m, nil
}

func (m *Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key != "x" {
		m.confirmDelete = false
	}
	m.notice = ""

	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "left", "h":
		m.sel.col--
		m.sel.task = 0
		m.clampSelection()
	case "right", "l":
		m.sel.col++
		m.sel.task = 0
		m.clampSelection()
	case "up", "k":
		if m.sel.task > 0 {
			m.sel.task--
		}
	case "down", "j":
		m.sel.task++
		m.clampSelection()

	case "tab":
		m.nextBoard()

	case "enter":
		if m.selectedTask() != nil {
			m.mode = modeDetail
		}

	case " ":
		return m, m.grabOrDrop()

	case "c":
		return m, m.grabOrDropColumn()

	case "esc":
		m.gesture.Cancel()

	case "n":
		if m.board() != nil {
			m.input.Placeholder = "task title"
			m.input.SetValue("")
			m.input.Focus()
			m.mode = modeNewTask
		}
	case "N":
		m.input.Placeholder = "board name"
		m.input.SetValue("")
		m.input.Focus()
		m.mode = modeNewBoard

	case "x":
		t := m.selectedTask()
		if t == nil {
			break
		}
		if !m.confirmDelete {
			m.confirmDelete = true
			m.notice = "press x again to delete " + strconv.Quote(t.Title)
			break
		}
		m.confirmDelete = false
		_ = m.st.DeleteTask(t.ID, m.board().ID)
		m.clampSelection()

	case "r":
		return m, m.refresh()
	}
	return m, nil
}

// grabOrDrop runs the task half of the drag gesture: first press picks up
// the selected task, second press drops it on the selection.
func (m *Model) grabOrDrop() tea.Cmd {
	b := m.board()
	if b == nil {
		return nil
	}
	if _, dragging := m.gesture.Active(); !dragging {
		if m.selectedTask() == nil {
			return nil
		}
		if err := m.gesture.Begin(reconcile.FormatTaskRef(m.sel.col, m.sel.task)); err != nil {
			m.notice = err.Error()
		}
		return nil
	}
	edit := m.gesture.Drop(m.overRef(), b)
	if err := reconcile.Apply(m.st, edit); err != nil {
		m.notice = err.Error()
		return nil
	}
	m.followEdit(edit)
	return nil
}

func (m *Model) grabOrDropColumn() tea.Cmd {
	b := m.board()
	if b == nil || len(b.Columns) == 0 {
		return nil
	}
	if _, dragging := m.gesture.Active(); !dragging {
		if err := m.gesture.Begin(reconcile.FormatColumnRef(m.sel.col)); err != nil {
			m.notice = err.Error()
		}
		return nil
	}
	edit := m.gesture.Drop(reconcile.FormatColumnRef(m.sel.col), b)
	if err := reconcile.Apply(m.st, edit); err != nil {
		m.notice = err.Error()
	}
	m.clampSelection()
	return nil
}

// followEdit moves the selection to where the dropped task landed.
func (m *Model) followEdit(edit reconcile.Edit) {
	b := m.board()
	if b == nil {
		m.clampSelection()
		return
	}
	switch edit.Kind {
	case reconcile.EditMoveTask:
		if ci, ti := b.FindTask(edit.TaskID); ci >= 0 {
			m.sel = selection{col: ci, task: ti}
		}
	case reconcile.EditReorderTasks:
		if ci := b.FindColumn(edit.ColumnName); ci >= 0 {
			m.sel.col = ci
		}
	}
	m.clampSelection()
}

func (m *Model) nextBoard() {
	boards := m.st.Boards()
	cur := m.board()
	if len(boards) < 2 || cur == nil {
		return
	}
	for i, b := range boards {
		if b.ID == cur.ID {
			next := boards[(i+1)%len(boards)]
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := m.st.SetCurrentBoard(ctx, next); err != nil {
				m.notice = err.Error()
			}
			m.sel = selection{}
			m.clampSelection()
			return
		}
	}
}

func (m *Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "q", "enter":
		m.mode = modeBoard
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		t := m.selectedTask()
		if t == nil {
			break
		}
		idx, _ := strconv.Atoi(key)
		_ = m.st.ToggleSubtask(t.ID, m.board().ID, idx-1)
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.mode = modeBoard
		m.input.Blur()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = modeBoard
		m.input.Blur()
		if value == "" {
			return m, nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if mode == modeNewBoard {
			if _, err := m.st.CreateBoard(ctx, m.userID, value, []string{"Todo", "Doing", "Done"}); err != nil {
				m.notice = err.Error()
			}
			m.sel = selection{}
			m.clampSelection()
			return m, nil
		}
		b := m.board()
		if b == nil {
			return m, nil
		}
		if len(b.Columns) == 0 {
			m.notice = "board has no columns"
			return m, nil
		}
		status := b.Columns[m.sel.col].Name
		if _, err := m.st.CreateTask(ctx, b.ID, m.userID, model.Task{Title: value, Status: status}); err != nil {
			m.notice = err.Error()
		}
		m.clampSelection()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
