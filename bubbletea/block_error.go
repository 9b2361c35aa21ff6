package bubbletea

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/gemchat"
)

var _ MessageBlock = (*ErrorBlock)(nil)

// ErrorBlock renders a failed exchange. Error text may carry a server
// response body, so it is sanitized like a reply.
type ErrorBlock struct {
	err    error
	styles Styles
}

// NewErrorBlock creates an ErrorBlock.
func NewErrorBlock(err error, styles Styles) *ErrorBlock {
	return &ErrorBlock{err: err, styles: styles}
}

func (b *ErrorBlock) View(width int) string {
	content := b.styles.Error.Render("Error: " + gemchat.SanitizeReply(b.err.Error()))
	return lipgloss.NewStyle().Width(width).Render(content)
}
