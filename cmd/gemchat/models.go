package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/gemchat"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const modelsLongDesc string = `List the models available to your API key.

For each model the name, display name and description are printed. Long
descriptions are truncated to --width display columns when it is set.`

const modelsShortDesc string = "List available models"

const modelSeparator = "--------------------"

type modelsCommander struct {
	env    environment
	global *globalOptions

	width int
}

func newModelsCmd(env environment, global *globalOptions) *cobra.Command {
	cmder := &modelsCommander{env: env, global: global}

	cmd := &cobra.Command{
		Use:   "models",
		Short: modelsShortDesc,
		Long:  modelsLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd.Flags())
		},
	}
	cmd.Flags().IntVarP(&cmder.width, "width", "w", 0, "Truncate lines to this display width (0 = no truncation)")
	return cmd
}

func (c *modelsCommander) run(ctx context.Context, flags *pflag.FlagSet) error {
	cfg, key, err := c.global.resolve(c.env, flags)
	if err != nil {
		return err
	}
	log := c.global.logger(c.env)
	defer func() { _ = log.Sync() }()

	client, err := newClient(ctx, cfg, key)
	if err != nil {
		return err
	}
	models, err := client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	log.Debug("models listed", zap.String("transport", cfg.Transport), zap.Int("count", len(models)))
	return writeModels(c.env.stdout, models, c.width)
}

// writeModels prints one block per model. A positive width truncates each
// line to that many display columns.
func writeModels(w io.Writer, models []gemchat.ModelInfo, width int) error {
	if len(models) == 0 {
		_, err := fmt.Fprintln(w, "No models found.")
		return err
	}
	var b strings.Builder
	line := func(label, value string) {
		s := label + value
		if width > 0 {
			s = runewidth.Truncate(s, width, "…")
		}
		b.WriteString(s)
		b.WriteByte('\n')
	}
	for _, m := range models {
		line("Model Name: ", m.Name)
		line("Display Name: ", m.DisplayName)
		line("Description: ", strings.Join(strings.Fields(m.Description), " "))
		b.WriteString(modelSeparator)
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}
