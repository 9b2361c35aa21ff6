package gemchat

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// SanitizeReply makes model text safe to write to a terminal. It strips
// ANSI escape sequences and control characters, keeping tabs and newlines.
// CRLF becomes LF; a lone CR becomes LF so that no text is hidden by a
// carriage-return overwrite.
func SanitizeReply(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\r':
			b.WriteByte('\n')
		case r == '\t' || r == '\n':
			b.WriteRune(r)
		case r <= 0x1F || r == 0x7F:
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
