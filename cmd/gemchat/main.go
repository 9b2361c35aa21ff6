// Command gemchat is a terminal chat client for the Gemini API.
//
// Usage:
//
//	GEMINI_API_KEY=... gemchat [chat] [flags]
//	GEMINI_API_KEY=... gemchat models [flags]
//
// Settings are read from $XDG_CONFIG_HOME/gemchat/config.toml when present
// (or the file named by --config); flags override file values.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd(osEnvironment()).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "gemchat: %v\n", err)
		os.Exit(1)
	}
}
