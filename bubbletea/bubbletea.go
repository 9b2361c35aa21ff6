// Package bubbletea provides a full-screen Bubble Tea chat interface over a
// gemchat session.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/gemchat"
)

// ExchangeFunc runs one exchange: it sends userText following transcript
// and returns the extended transcript and the reply. On failure it returns
// transcript unchanged. (*gemchat.Session).Advance satisfies it.
type ExchangeFunc func(ctx context.Context, transcript gemchat.Transcript, userText string) (gemchat.Transcript, string, error)

// Run creates and runs the Bubble Tea program. It blocks until the program
// exits and returns the final model. When ctx is cancelled the program quits.
func Run(ctx context.Context, m Model) (Model, error) {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		m = fm
	}
	return m, err
}

// ExchangeDoneMsg carries the outcome of an exchange back to the model.
type ExchangeDoneMsg struct {
	Transcript gemchat.Transcript
	Reply      string
	Err        error
}
