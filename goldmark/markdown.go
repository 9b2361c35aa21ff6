// Package goldmark renders model replies, which are usually markdown, to
// ANSI-styled terminal output using goldmark for parsing and lipgloss for
// styling.
package goldmark

import "github.com/fwojciec/gemchat"

const defaultWidth = 80

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs and list items are word-wrapped to width. Code blocks are
// rendered at full width without reflow.
func Render(source string, width int, theme gemchat.Theme) string {
	return New(theme).Render(source, width)
}

// Renderer renders markdown with a fixed theme. It is safe to reuse across
// replies but not for concurrent use.
type Renderer struct {
	r *ansiRenderer
}

// New creates a Renderer for theme.
func New(theme gemchat.Theme) *Renderer {
	return &Renderer{r: newRenderer(theme)}
}

// Render renders source wrapped to width. A non-positive width means 80.
func (r *Renderer) Render(source string, width int) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	return r.r.render([]byte(source), width)
}
