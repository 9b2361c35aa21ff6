package bubbletea_test

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/gemchat"
	bt "github.com/fwojciec/gemchat/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestNewStyles(t *testing.T) {
	t.Parallel()

	styles := bt.NewStyles(gemchat.DefaultTheme())

	assert.Equal(t, lipgloss.Color("4"), styles.UserMsg.GetForeground())
	assert.True(t, styles.UserMsg.GetBold())

	assert.Equal(t, lipgloss.Color("2"), styles.ModelMsg.GetForeground())

	assert.Equal(t, lipgloss.Color("1"), styles.Error.GetForeground())

	assert.Equal(t, lipgloss.Color("8"), styles.Muted.GetForeground())
	assert.True(t, styles.Muted.GetFaint())
}

func TestNewStylesNegativeIndexYieldsNoColor(t *testing.T) {
	t.Parallel()

	styles := bt.NewStyles(gemchat.Theme{UserMsg: -1})

	assert.Equal(t, lipgloss.NoColor{}, styles.UserMsg.GetForeground())
}
