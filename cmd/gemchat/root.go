package main

import (
	"context"
	"fmt"

	"github.com/fwojciec/gemchat"
	"github.com/fwojciec/gemchat/config"
	"github.com/fwojciec/gemchat/gemini"
	"github.com/fwojciec/gemchat/logger"
	"github.com/fwojciec/gemchat/rest"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const rootLongDesc string = `gemchat is a terminal chat client for the Gemini API.

Without a subcommand it starts a chat. The API key is read from
GEMINI_API_KEY unless --api-key is given.

Examples:
  gemchat
  gemchat chat --tui --model gemini-2.5-flash
  gemchat models --width 100`

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	apiKey     string
	transport  string
	debug      bool
}

func newRootCmd(env environment) *cobra.Command {
	global := &globalOptions{}
	chat := &chatCommander{env: env, global: global}

	cmd := &cobra.Command{
		Use:           "gemchat",
		Short:         "Chat with Gemini from the terminal",
		Long:          rootLongDesc,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return chat.run(cmd.Context(), cmd.Flags())
		},
	}
	cmd.SetIn(env.stdin)
	cmd.SetOut(env.stdout)
	cmd.SetErr(env.stderr)

	pf := cmd.PersistentFlags()
	pf.StringVar(&global.configPath, "config", "", "Path to config file (default $XDG_CONFIG_HOME/gemchat/config.toml)")
	pf.StringVar(&global.apiKey, "api-key", "", "API key (overrides "+config.EnvAPIKey+")")
	pf.StringVar(&global.transport, "transport", config.TransportREST, "Client transport: rest or sdk")
	pf.BoolVar(&global.debug, "debug", false, "Enable debug logging on stderr")

	chat.bindFlags(cmd.Flags())

	cmd.AddCommand(newChatCmd(env, global))
	cmd.AddCommand(newModelsCmd(env, global))
	return cmd
}

// resolve loads the config file, applies flag overrides and resolves the
// credential. It runs before any input is read or client is built, so a
// missing key stops the command with nothing else done.
func (g *globalOptions) resolve(env environment, flags *pflag.FlagSet) (config.Config, string, error) {
	key, err := config.ResolveAPIKey(g.apiKey, env.getenv(config.EnvAPIKey))
	if err != nil {
		return config.Config{}, "", err
	}
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, "", err
	}
	if flags.Changed("transport") {
		cfg.Transport = g.transport
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, "", err
	}
	return cfg, key, nil
}

func (g *globalOptions) logger(env environment) *zap.Logger {
	return logger.New(env.stderr, g.debug)
}

// newClient builds the client for the configured transport.
func newClient(ctx context.Context, cfg config.Config, apiKey string) (gemchat.Client, error) {
	switch cfg.Transport {
	case config.TransportSDK:
		var opts []gemini.Option
		if cfg.Model != "" {
			opts = append(opts, gemini.WithModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, gemini.WithBaseURL(cfg.BaseURL))
		}
		client, err := gemini.New(ctx, apiKey, opts...)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		return client, nil
	case config.TransportREST:
		var opts []rest.Option
		if cfg.Model != "" {
			opts = append(opts, rest.WithModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, rest.WithBaseURL(cfg.BaseURL))
		}
		return rest.New(apiKey, opts...), nil
	default:
		return nil, fmt.Errorf("unknown transport %q: %w", cfg.Transport, gemchat.ErrValidation)
	}
}
