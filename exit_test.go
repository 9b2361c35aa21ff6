package gemchat_test

import (
	"testing"

	"github.com/fwojciec/gemchat"
	"github.com/stretchr/testify/assert"
)

func TestIsExitCommand(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  bool
	}{
		{"quit", true},
		{"exit", true},
		{"bye", true},
		{"QUIT", true},
		{"Exit", true},
		{"bYe", true},
		{"  bye\n", true},
		{"goodbye", false},
		{"quit now", false},
		{"", false},
		{"hello", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, gemchat.IsExitCommand(tt.input))
		})
	}
}
