// Package tui is the interactive board view: columns side by side, one
// task selected, drag driven by grab/drop keys instead of a mouse.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"kanban-cli/internal/store"
)

func Run(ctx context.Context, st *store.Store, userID string) error {
	applyColorProfilePreference()
	m := newModel(st, userID)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
