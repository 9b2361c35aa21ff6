package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/gemchat"
	bt "github.com/fwojciec/gemchat/bubbletea"
	"github.com/fwojciec/gemchat/config"
	"github.com/fwojciec/gemchat/goldmark"
	gemjson "github.com/fwojciec/gemchat/json"
	"github.com/fwojciec/gemchat/repl"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const chatLongDesc string = `Start an interactive chat.

Each line you type is sent to the model together with the conversation so
far. Type quit, exit or bye (or press Ctrl+D) to leave. Failed requests are
reported and the conversation continues unchanged.

The conversation starts from two example turns unless --no-seed is given or
--seed names a transcript file of the form:

  {"version": 1, "turns": [{"role": "user", "text": "..."}]}`

const chatShortDesc string = "Start an interactive chat (default command)"

// Markdown rendering modes.
const (
	markdownAuto   = "auto"
	markdownAlways = "always"
	markdownNever  = "never"
)

type chatCommander struct {
	env    environment
	global *globalOptions

	model    string
	seedPath string
	noSeed   bool
	tui      bool
	markdown string
	timeout  time.Duration
}

func newChatCmd(env environment, global *globalOptions) *cobra.Command {
	cmder := &chatCommander{env: env, global: global}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd.Flags())
		},
	}
	cmder.bindFlags(cmd.Flags())
	return cmd
}

func (c *chatCommander) bindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.model, "model", "m", "", "Model ID (default: client default)")
	fs.StringVar(&c.seedPath, "seed", "", "Path to a seed transcript (JSON)")
	fs.BoolVar(&c.noSeed, "no-seed", false, "Start with an empty conversation")
	fs.BoolVar(&c.tui, "tui", false, "Use the full-screen interface")
	fs.StringVar(&c.markdown, "markdown", markdownAuto, "Render replies as markdown: auto, always or never")
	fs.DurationVar(&c.timeout, "timeout", 0, "Per-request timeout (0 = none)")
}

func (c *chatCommander) run(ctx context.Context, flags *pflag.FlagSet) error {
	cfg, key, err := c.global.resolve(c.env, flags)
	if err != nil {
		return err
	}
	if flags.Changed("model") {
		cfg.Model = c.model
	}
	if flags.Changed("timeout") {
		cfg.Timeout.Duration = c.timeout
	}
	if flags.Changed("seed") {
		cfg.Seed = c.seedPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	useMarkdown, width, err := c.rendering()
	if err != nil {
		return err
	}

	log := c.global.logger(c.env)
	defer func() { _ = log.Sync() }()

	transcript, err := c.seed(cfg)
	if err != nil {
		return err
	}

	client, err := newClient(ctx, cfg, key)
	if err != nil {
		return err
	}
	session := gemchat.NewSession(client,
		gemchat.WithModel(cfg.Model),
		gemchat.WithGenerationConfig(cfg.GenerationConfig()),
		gemchat.WithSafetyPolicy(cfg.SafetyPolicy()),
	)

	id := uuid.NewString()
	log.Debug("chat started",
		zap.String("session", id),
		zap.String("transport", cfg.Transport),
		zap.String("model", cfg.Model),
		zap.Int("seed_turns", len(transcript)),
	)

	var final gemchat.Transcript
	if c.tui {
		m, err := bt.Run(ctx, bt.New(session.Advance, transcript, gemchat.DefaultTheme(), bt.WithTimeout(cfg.Timeout.Duration)))
		if err != nil {
			return fmt.Errorf("TUI: %w", err)
		}
		final = m.Transcript()
	} else {
		opts := []repl.Option{
			repl.WithLogger(log),
			repl.WithSessionID(id),
			repl.WithTimeout(cfg.Timeout.Duration),
		}
		if useMarkdown {
			opts = append(opts, repl.WithRenderer(goldmark.New(gemchat.DefaultTheme()), width))
		}
		final, err = repl.New(session, c.env.stdin, c.env.stdout, opts...).Run(ctx, transcript)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}

	log.Debug("chat ended", zap.String("session", id), zap.Int("turns", len(final)))
	return nil
}

// seed returns the starting transcript.
func (c *chatCommander) seed(cfg config.Config) (gemchat.Transcript, error) {
	switch {
	case c.noSeed:
		return nil, nil
	case cfg.Seed != "":
		t, err := gemjson.Load(cfg.Seed)
		if err != nil {
			return nil, fmt.Errorf("load seed: %w", err)
		}
		return t, nil
	default:
		return gemchat.DefaultSeed(), nil
	}
}

// rendering decides whether replies are rendered as markdown and at what
// width.
func (c *chatCommander) rendering() (bool, int, error) {
	width, isTerminal := c.env.terminalWidth()
	switch c.markdown {
	case markdownAlways:
		return true, width, nil
	case markdownNever:
		return false, 0, nil
	case markdownAuto:
		return isTerminal, width, nil
	default:
		return false, 0, fmt.Errorf("unknown markdown mode %q: must be %s, %s or %s: %w",
			c.markdown, markdownAuto, markdownAlways, markdownNever, gemchat.ErrValidation)
	}
}
