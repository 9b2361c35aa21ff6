package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/gemchat"
)

// Styles maps a Theme to lipgloss styles for TUI rendering.
type Styles struct {
	UserMsg  lipgloss.Style
	ModelMsg lipgloss.Style
	Error    lipgloss.Style
	Muted    lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t gemchat.Theme) Styles {
	return Styles{
		UserMsg:  lipgloss.NewStyle().Foreground(ansiColor(t.UserMsg)).Bold(true),
		ModelMsg: lipgloss.NewStyle().Foreground(ansiColor(t.ModelMsg)),
		Error:    lipgloss.NewStyle().Foreground(ansiColor(t.Error)),
		Muted:    lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
