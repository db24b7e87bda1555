package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"kanban-cli/internal/model"
)

const minColumnWidth = 18

func (m *Model) View() string {
	if m.mode == modeDetail {
		return m.viewDetail()
	}

	b := m.board()
	var body string
	if b == nil {
		body = styleHint.Render("no boards yet. press N to create one.")
	} else {
		body = m.viewBoard(b)
	}

	var footer []string
	if m.mode == modeNewTask || m.mode == modeNewBoard {
		footer = append(footer, m.input.View())
	}
	footer = append(footer, m.viewStatusLine(b))
	return body + "\n" + strings.Join(footer, "\n")
}

func (m *Model) viewBoard(b *model.Board) string {
	n := len(b.Columns)
	if n == 0 {
		return styleHint.Render("this board has no columns")
	}
	colWidth := m.width/n - 2
	if colWidth < minColumnWidth {
		colWidth = minColumnWidth
	}

	grabbedRef, dragging := m.gesture.Active()
	cols := make([]string, 0, n)
	for ci, col := range b.Columns {
		var lines []string
		title := styleColumnTitle.Render(xansi.Truncate(col.Name, colWidth-4, "…")) +
			" " + styleColumnCount.Render(fmt.Sprintf("(%d)", len(col.Tasks)))
		if dragging && m.sel.col == ci && m.sel.task < 0 {
			title = styleGrab.Render("▸ ") + title
		}
		lines = append(lines, title)

		for ti, task := range col.Tasks {
			lines = append(lines, m.viewCard(task, ci, ti, colWidth, grabbedRef, dragging))
		}
		if len(col.Tasks) == 0 {
			lines = append(lines, styleHint.Render("  –"))
		}
		cols = append(cols, lipgloss.NewStyle().Width(colWidth).Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m *Model) viewCard(task model.Task, ci, ti, colWidth int, grabbedRef string, dragging bool) string {
	style := styleCard
	selected := m.sel.col == ci && m.sel.task == ti
	if selected {
		style = styleCardSelected
	}
	if dragging && grabbedRef == fmt.Sprintf("task-%d-%d", ci, ti) {
		style = styleCardGrabbed
	}

	inner := colWidth - 4
	line := xansi.Truncate(task.Title, inner, "…")
	if total := len(task.Subtasks); total > 0 {
		cookie := styleCookie.Render(fmt.Sprintf("%d/%d", task.DoneSubtasks(), total))
		line = xansi.Truncate(task.Title, inner-lipgloss.Width(cookie)-1, "…") + " " + cookie
	}
	return style.Width(colWidth - 2).Render(line)
}

func (m *Model) viewDetail() string {
	t := m.selectedTask()
	if t == nil {
		return styleHint.Render("nothing selected")
	}
	width := m.width - 4
	if width < 20 {
		width = 76
	}

	var sb strings.Builder
	sb.WriteString(styleTitle.Render(t.Title))
	sb.WriteString("\n")
	sb.WriteString(styleStatus.Render("status: " + t.Status))
	sb.WriteString("\n")
	if desc := renderMarkdown(t.Description, width); desc != "" {
		sb.WriteString("\n" + desc + "\n")
	}
	if len(t.Subtasks) > 0 {
		sb.WriteString("\n")
		for i, st := range t.Subtasks {
			box := "[ ]"
			if st.IsCompleted {
				box = "[x]"
			}
			sb.WriteString(fmt.Sprintf("%d %s %s\n", i+1, box, st.Title))
		}
		sb.WriteString(styleHint.Render("press 1-9 to toggle a subtask"))
		sb.WriteString("\n")
	}
	sb.WriteString("\n" + styleHint.Render("esc to go back"))
	return sb.String()
}

func (m *Model) viewStatusLine(b *model.Board) string {
	if m.notice != "" {
		return styleError.Render(m.notice)
	}
	if msg := m.st.Err(); msg != "" {
		return styleError.Render("sync failed (rolled back): " + msg)
	}
	if _, dragging := m.gesture.Active(); dragging {
		return styleGrab.Render("dragging: move with arrows, space drops, esc cancels")
	}
	parts := []string{"space grab", "c grab column", "enter detail", "n new task", "N new board", "x delete", "tab board", "r refresh", "q quit"}
	line := styleHint.Render(strings.Join(parts, " · "))
	if b != nil {
		line = styleStatus.Render(b.Name) + "  " + line
	}
	if m.width > 0 {
		line = xansi.Truncate(line, m.width, "…")
	}
	return line
}
