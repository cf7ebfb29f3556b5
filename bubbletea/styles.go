package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/lokalku/lokalku"
)

// Styles maps a Theme to lipgloss styles for TUI rendering.
type Styles struct {
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	Warning        lipgloss.Style
	Error          lipgloss.Style
	Muted          lipgloss.Style
	Accent         lipgloss.Style
	Launcher       lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t lokalku.Theme) Styles {
	return Styles{
		UserLabel:      lipgloss.NewStyle().Foreground(ansiColor(t.UserMsg)).Bold(true),
		AssistantLabel: lipgloss.NewStyle().Foreground(ansiColor(t.Assistant)).Bold(true),
		Warning:        lipgloss.NewStyle().Foreground(ansiColor(t.Warning)),
		Error:          lipgloss.NewStyle().Foreground(ansiColor(t.Error)),
		Muted:          lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
		Accent:         lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
		Launcher: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ansiColor(t.Accent)).
			Padding(0, 1),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
