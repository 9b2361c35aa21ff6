package main

import (
	"io"
	"os"

	"golang.org/x/term"
)

// environment holds everything the commands read from the process. main
// fills it from the real process; tests substitute their own values.
type environment struct {
	getenv func(string) string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// terminalWidth reports the width of stdout and whether it is a
	// terminal at all.
	terminalWidth func() (int, bool)
}

func osEnvironment() environment {
	return environment{
		getenv:        os.Getenv,
		stdin:         os.Stdin,
		stdout:        os.Stdout,
		stderr:        os.Stderr,
		terminalWidth: stdoutWidth,
	}
}

func stdoutWidth() (int, bool) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0, false
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0, true
	}
	return width, true
}
