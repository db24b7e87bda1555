package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The TUI must remain readable on both light and dark terminal
// backgrounds, so everything routes through lipgloss.AdaptiveColor.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted    lipgloss.TerminalColor = ac("240", "243")
	colorAccent   lipgloss.TerminalColor = ac("27", "62") // blue
	colorDanger   lipgloss.TerminalColor = ac("124", "203")
	colorSelected lipgloss.TerminalColor = ac("232", "255")
	colorBorder   lipgloss.TerminalColor = ac("250", "243")
	colorGrabbed  lipgloss.TerminalColor = ac("130", "214") // orange

	styleColumnTitle = lipgloss.NewStyle().Bold(true)
	styleColumnCount = lipgloss.NewStyle().Foreground(colorMuted)

	styleCard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
	styleCardSelected = styleCard.
				BorderForeground(colorSelected)
	styleCardGrabbed = styleCard.
				BorderForeground(colorGrabbed)

	styleCookie = lipgloss.NewStyle().Foreground(colorMuted)
	styleStatus = lipgloss.NewStyle().Foreground(colorMuted)
	styleError  = lipgloss.NewStyle().Foreground(colorDanger)
	styleHint   = lipgloss.NewStyle().Foreground(colorMuted)
	styleGrab   = lipgloss.NewStyle().Foreground(colorGrabbed).Bold(true)
	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
)

// applyColorProfilePreference sets Lip Gloss's color profile. Only
// NO_COLOR is honored explicitly; otherwise the terminal's capabilities
// decide, with the usual env hints trusted over the probe when they claim
// stronger support.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") && (profile == termenv.Ascii || profile == termenv.ANSI) {
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}
