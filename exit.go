package gemchat

import "strings"

var exitCommands = []string{"quit", "exit", "bye"}

// IsExitCommand reports whether input asks to end the chat. Matching is
// case-insensitive and ignores surrounding whitespace.
func IsExitCommand(input string) bool {
	s := strings.TrimSpace(input)
	for _, c := range exitCommands {
		if strings.EqualFold(s, c) {
			return true
		}
	}
	return false
}
