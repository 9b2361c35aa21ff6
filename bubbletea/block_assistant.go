package bubbletea

import (
	"strings"

	"github.com/fwojciec/gemchat"
	"github.com/fwojciec/gemchat/goldmark"
)

var _ MessageBlock = (*AssistantTextBlock)(nil)

// AssistantTextBlock renders a model reply as markdown. Output is cached
// per width since replies never change once received.
type AssistantTextBlock struct {
	text     string
	renderer *goldmark.Renderer
	byWidth  map[int]string
}

// NewAssistantTextBlock creates a block for reply.
func NewAssistantTextBlock(reply string, renderer *goldmark.Renderer) *AssistantTextBlock {
	return &AssistantTextBlock{
		text:     gemchat.SanitizeReply(reply),
		renderer: renderer,
		byWidth:  make(map[int]string),
	}
}

func (b *AssistantTextBlock) View(width int) string {
	if cached, ok := b.byWidth[width]; ok {
		return cached
	}
	rendered := strings.TrimRight(b.renderer.Render(b.text, width), "\n")
	b.byWidth[width] = rendered
	return rendered
}
