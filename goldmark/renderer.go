package goldmark

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/gemchat"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

type ansiRenderer struct {
	parser parser.Parser

	bold      lipgloss.Style
	italic    lipgloss.Style
	accent    lipgloss.Style
	muted     lipgloss.Style
	underline lipgloss.Style
	strike    lipgloss.Style
	code      lipgloss.Style
	quote     lipgloss.Style
}

func newRenderer(theme gemchat.Theme) *ansiRenderer {
	md := goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))
	return &ansiRenderer{
		parser:    md.Parser(),
		bold:      lipgloss.NewStyle().Bold(true),
		italic:    lipgloss.NewStyle().Italic(true),
		accent:    lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
		underline: lipgloss.NewStyle().Underline(true),
		strike:    lipgloss.NewStyle().Strikethrough(true),
		code:      lipgloss.NewStyle().Background(ansiColor(theme.CodeBg)),
		quote:     lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Italic(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

func (r *ansiRenderer) render(source []byte, width int) string {
	doc := r.parser.Parse(text.NewReader(source))

	var buf bytes.Buffer
	r.walkBlock(doc, source, width, &buf)
	return strings.TrimRight(buf.String(), "\n")
}

func (r *ansiRenderer) walkBlock(node ast.Node, source []byte, width int, buf *bytes.Buffer) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.renderBlock(c, source, width, buf)
	}
}

// separate writes the blank line between sibling blocks.
func separate(n ast.Node, buf *bytes.Buffer) {
	if n.NextSibling() != nil {
		buf.WriteString("\n")
	}
}

func (r *ansiRenderer) renderBlock(node ast.Node, source []byte, width int, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		inline := r.collectInline(n, source)
		buf.WriteString(lipgloss.NewStyle().Width(width).Render(inline))
		buf.WriteString("\n")
		separate(n, buf)

	case *ast.Heading:
		styled := r.accent.Render(r.collectInline(n, source))
		buf.WriteString(lipgloss.NewStyle().Width(width).Render(styled))
		buf.WriteString("\n")
		separate(n, buf)

	case *ast.FencedCodeBlock:
		if lang := string(n.Language(source)); lang != "" {
			buf.WriteString(r.muted.Render(lang))
			buf.WriteString("\n")
		}
		r.writeCodeLines(n.Lines(), source, buf)
		separate(n, buf)

	case *ast.CodeBlock:
		r.writeCodeLines(n.Lines(), source, buf)
		separate(n, buf)

	case *ast.Blockquote:
		var inner bytes.Buffer
		r.walkBlock(n, source, max(width-2, 10), &inner)
		gutter := r.muted.Render("│") + " "
		for _, line := range strings.Split(strings.TrimRight(inner.String(), "\n"), "\n") {
			buf.WriteString(gutter + r.quote.Render(line) + "\n")
		}
		separate(n, buf)

	case *ast.List:
		r.renderList(n, source, width, buf, 0)
		separate(n, buf)

	case *east.Table:
		r.renderTable(n, source, buf)
		separate(n, buf)

	case *ast.ThematicBreak:
		buf.WriteString(r.muted.Render(strings.Repeat("─", min(width, 40))))
		buf.WriteString("\n")
		separate(n, buf)

	case *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(source))
		}

	default:
		r.walkBlock(node, source, width, buf)
	}
}

func (r *ansiRenderer) writeCodeLines(lines *text.Segments, source []byte, buf *bytes.Buffer) {
	gutter := r.muted.Render("│") + " "
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		content := strings.TrimRight(string(line.Value(source)), "\n")
		buf.WriteString(gutter + r.code.Render(content))
		buf.WriteString("\n")
	}
}

func (r *ansiRenderer) renderList(node *ast.List, source []byte, width int, buf *bytes.Buffer, depth int) {
	ordered := node.IsOrdered()
	itemNum := node.Start

	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		indent := strings.Repeat("  ", depth)
		marker := "- "
		if ordered {
			marker = fmt.Sprintf("%d. ", itemNum)
			itemNum++
		}

		var itemBuf bytes.Buffer
		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			switch in := ic.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				itemBuf.WriteString(r.collectInline(in, source))
			case *ast.List:
				if itemBuf.Len() > 0 {
					r.writeListItem(buf, indent, marker, itemBuf.String(), width)
					itemBuf.Reset()
				}
				r.renderList(in, source, width, buf, depth+1)
				marker = strings.Repeat(" ", len(marker))
			default:
				r.renderBlock(ic, source, width, &itemBuf)
			}
		}

		if itemBuf.Len() > 0 {
			r.writeListItem(buf, indent, marker, itemBuf.String(), width)
		}
	}
}

// writeListItem writes a list item with continuation lines aligned under
// the item text.
func (r *ansiRenderer) writeListItem(buf *bytes.Buffer, indent, marker, content string, width int) {
	prefix := indent + marker
	itemWidth := max(width-len(prefix), 10)
	wrapped := lipgloss.NewStyle().Width(itemWidth).Render(content)
	continuation := strings.Repeat(" ", len(prefix))
	for i, line := range strings.Split(wrapped, "\n") {
		if i == 0 {
			buf.WriteString(prefix + line + "\n")
		} else {
			buf.WriteString(continuation + line + "\n")
		}
	}
}

// renderTable writes one line per row with cells separated by a muted bar.
// Header cells are bold. Columns are not aligned.
func (r *ansiRenderer) renderTable(node *east.Table, source []byte, buf *bytes.Buffer) {
	sep := r.muted.Render(" │ ")
	for row := node.FirstChild(); row != nil; row = row.NextSibling() {
		_, header := row.(*east.TableHeader)
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			content := r.collectInline(cell, source)
			if header {
				content = r.bold.Render(content)
			}
			cells = append(cells, content)
		}
		buf.WriteString(strings.Join(cells, sep))
		buf.WriteString("\n")
	}
}

// collectInline recursively collects styled inline text from a node's children.
func (r *ansiRenderer) collectInline(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.renderInline(c, source, &buf)
	}
	return buf.String()
}

func (r *ansiRenderer) renderInline(node ast.Node, source []byte, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Text:
		buf.Write(n.Segment.Value(source))
		if n.SoftLineBreak() {
			buf.WriteByte(' ')
		}
		if n.HardLineBreak() {
			buf.WriteByte('\n')
		}

	case *ast.String:
		buf.Write(n.Value)

	case *ast.Emphasis:
		inner := r.collectInline(n, source)
		if n.Level == 1 {
			buf.WriteString(r.italic.Render(inner))
		} else {
			buf.WriteString(r.bold.Render(inner))
		}

	case *east.Strikethrough:
		buf.WriteString(r.strike.Render(r.collectInline(n, source)))

	case *ast.CodeSpan:
		buf.WriteString(r.bold.Render(r.collectInline(n, source)))

	case *ast.Link:
		buf.WriteString(r.underline.Render(r.collectInline(n, source)))
		buf.WriteString(" ")
		buf.WriteString(r.muted.Render("(" + string(n.Destination) + ")"))

	case *ast.AutoLink:
		buf.WriteString(r.underline.Render(string(n.URL(source))))

	case *ast.Image:
		buf.WriteString(r.underline.Render(r.collectInline(n, source)))
		buf.WriteString(" ")
		buf.WriteString(r.muted.Render("(" + string(n.Destination) + ")"))

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			buf.Write(seg.Value(source))
		}

	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			r.renderInline(c, source, buf)
		}
	}
}
