package bubbletea_test

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/gemchat"
	bt "github.com/fwojciec/gemchat/bubbletea"
	"github.com/stretchr/testify/require"
)

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, advance bt.ExchangeFunc) bt.Model {
	t.Helper()
	return initModelWithSize(t, advance, nil, 80, 24)
}

// initModelWithSize creates a model with a starting transcript and a custom
// terminal size.
func initModelWithSize(t *testing.T, advance bt.ExchangeFunc, transcript gemchat.Transcript, width, height int) bt.Model {
	t.Helper()
	m := bt.New(advance, transcript, gemchat.DefaultTheme())
	return updateModel(t, m, tea.WindowSizeMsg{Width: width, Height: height})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// nopExchange fails the test if called.
func nopExchange(t *testing.T) bt.ExchangeFunc {
	return func(_ context.Context, transcript gemchat.Transcript, _ string) (gemchat.Transcript, string, error) {
		t.Error("unexpected exchange")
		return transcript, "", nil
	}
}
