// Package config loads gemchat settings from an optional TOML file and
// resolves the API credential from flags and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fwojciec/gemchat"
)

// EnvAPIKey is the environment variable holding the API key.
const EnvAPIKey = "GEMINI_API_KEY"

// Transport names accepted by the transport setting.
const (
	TransportREST = "rest"
	TransportSDK  = "sdk"
)

// Config holds all user-configurable settings except the credential.
type Config struct {
	Model     string   `toml:"model"`     // empty = client default
	BaseURL   string   `toml:"base_url"`  // empty = public endpoint
	Transport string   `toml:"transport"` // "rest" or "sdk"
	Timeout   Duration `toml:"timeout"`   // per exchange; 0 = none
	Seed      string   `toml:"seed"`      // path to a seed transcript

	Generation Generation      `toml:"generation"`
	Safety     []SafetySetting `toml:"safety"`
}

// Generation mirrors gemchat.GenerationConfig with pointer fields so that
// values absent from the file keep their defaults.
type Generation struct {
	Temperature     *float64 `toml:"temperature"`
	TopP            *float64 `toml:"top_p"`
	TopK            *int     `toml:"top_k"`
	MaxOutputTokens *int     `toml:"max_output_tokens"`
}

// SafetySetting is one [[safety]] table.
type SafetySetting struct {
	Category  string `toml:"category"`
	Threshold string `toml:"threshold"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the settings used when no file is present.
func Default() Config {
	g := gemchat.DefaultGenerationConfig()
	cfg := Config{
		Transport: TransportREST,
		Generation: Generation{
			Temperature:     &g.Temperature,
			TopP:            &g.TopP,
			TopK:            &g.TopK,
			MaxOutputTokens: &g.MaxOutputTokens,
		},
	}
	for _, s := range gemchat.DefaultSafetyPolicy() {
		cfg.Safety = append(cfg.Safety, SafetySetting{Category: s.Category, Threshold: s.Threshold})
	}
	return cfg
}

// DefaultPath returns $XDG_CONFIG_HOME/gemchat/config.toml (or the
// platform equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gemchat", "config.toml"), nil
}

// Load reads the TOML file at path over the defaults. An empty path means
// DefaultPath, which is allowed to be missing; an explicit path must exist.
// Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && !explicit:
		return cfg, nil
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg, err = Parse(string(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML source over the defaults.
func Parse(source string) (Config, error) {
	cfg := Default()
	// A [[safety]] array in the file replaces the default policy entirely;
	// an explicit empty array disables it.
	cfg.Safety = nil
	md, err := toml.Decode(source, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("unknown config keys: %s: %w", strings.Join(keys, ", "), gemchat.ErrValidation)
	}
	if !md.IsDefined("safety") {
		cfg.Safety = Default().Safety
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings are usable.
func (c Config) Validate() error {
	switch c.Transport {
	case TransportREST, TransportSDK:
	default:
		return fmt.Errorf("unknown transport %q: must be %q or %q: %w", c.Transport, TransportREST, TransportSDK, gemchat.ErrValidation)
	}
	if c.Timeout.Duration < 0 {
		return fmt.Errorf("timeout must be non-negative, got %s: %w", c.Timeout.Duration, gemchat.ErrValidation)
	}
	if err := c.GenerationConfig().Validate(); err != nil {
		return err
	}
	for i, s := range c.Safety {
		if s.Category == "" || s.Threshold == "" {
			return fmt.Errorf("safety setting %d: category and threshold are required: %w", i, gemchat.ErrValidation)
		}
	}
	return nil
}

// GenerationConfig returns the sampling controls, filling unset fields from
// the defaults.
func (c Config) GenerationConfig() gemchat.GenerationConfig {
	g := gemchat.DefaultGenerationConfig()
	if c.Generation.Temperature != nil {
		g.Temperature = *c.Generation.Temperature
	}
	if c.Generation.TopP != nil {
		g.TopP = *c.Generation.TopP
	}
	if c.Generation.TopK != nil {
		g.TopK = *c.Generation.TopK
	}
	if c.Generation.MaxOutputTokens != nil {
		g.MaxOutputTokens = *c.Generation.MaxOutputTokens
	}
	return g
}

// SafetyPolicy returns the configured safety settings.
func (c Config) SafetyPolicy() []gemchat.SafetySetting {
	if len(c.Safety) == 0 {
		return nil
	}
	policy := make([]gemchat.SafetySetting, len(c.Safety))
	for i, s := range c.Safety {
		policy[i] = gemchat.SafetySetting{Category: s.Category, Threshold: s.Threshold}
	}
	return policy
}

// ResolveAPIKey picks the credential: the flag value overrides the
// environment value. Neither being set is a fatal startup error.
func ResolveAPIKey(flagValue, envValue string) (string, error) {
	if key := strings.TrimSpace(flagValue); key != "" {
		return key, nil
	}
	if key := strings.TrimSpace(envValue); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%s not set (use --api-key flag or environment variable): %w", EnvAPIKey, gemchat.ErrMissingCredential)
}
