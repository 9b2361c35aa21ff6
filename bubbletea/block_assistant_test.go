package bubbletea_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/gemchat"
	bt "github.com/fwojciec/gemchat/bubbletea"
	"github.com/fwojciec/gemchat/goldmark"
	"github.com/stretchr/testify/assert"
)

func TestAssistantTextBlock_View(t *testing.T) {
	t.Parallel()

	t.Run("renders markdown", func(t *testing.T) {
		t.Parallel()
		block := bt.NewAssistantTextBlock("some **bold** text", goldmark.New(gemchat.DefaultTheme()))
		view := block.View(80)
		assert.Contains(t, view, "bold")
		assert.NotContains(t, view, "**")
	})

	t.Run("no trailing newline", func(t *testing.T) {
		t.Parallel()
		block := bt.NewAssistantTextBlock("# Title\n\nbody", goldmark.New(gemchat.DefaultTheme()))
		view := block.View(80)
		assert.False(t, strings.HasSuffix(view, "\n"))
	})

	t.Run("same width gives same output", func(t *testing.T) {
		t.Parallel()
		block := bt.NewAssistantTextBlock("one two three four five six seven eight", goldmark.New(gemchat.DefaultTheme()))
		narrow := block.View(12)
		wide := block.View(80)
		assert.Equal(t, narrow, block.View(12))
		assert.Greater(t, strings.Count(narrow, "\n"), strings.Count(wide, "\n"))
	})
}

func TestAssistantTextBlock_StripsEscapes(t *testing.T) {
	t.Parallel()

	block := bt.NewAssistantTextBlock("\x1b]0;title\x07plain reply", goldmark.New(gemchat.DefaultTheme()))
	view := block.View(80)
	assert.Contains(t, view, "plain reply")
	assert.NotContains(t, view, "title")
}
