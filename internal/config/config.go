// Package config loads monotint settings from defaults, a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/monotint/internal/colour"
	"github.com/jmylchreest/monotint/internal/recolor"
)

// Environment variables read by WithEnv.
const (
	EnvBaseColour = "MONOTINT_BASE_COLOUR"
	EnvStrategy   = "MONOTINT_STRATEGY"
	EnvConfigFile = "MONOTINT_CONFIG"
)

// Config holds user settings.
type Config struct {
	// Base is the base colour as a hex string.
	Base string `yaml:"base"`
	// BaseImage, when set, derives the base colour from an image instead.
	BaseImage string             `yaml:"base_image"`
	Strategy  recolor.Strategy   `yaml:"strategy"`
	Shades    colour.ShadeConfig `yaml:"shades"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Base:     colour.DefaultBase.Hex(),
		Strategy: recolor.Shaded,
		Shades:   colour.DefaultShadeConfig(),
	}
}

// Validate checks every field.
func (c Config) Validate() error {
	if c.BaseImage == "" {
		if _, err := colour.ParseHex(c.Base); err != nil {
			return fmt.Errorf("invalid base colour: %w", err)
		}
	}
	if err := c.Shades.Validate(); err != nil {
		return fmt.Errorf("invalid shades: %w", err)
	}
	return nil
}

// RecolorConfig converts the settings into a recolor.Config.
// BaseImage is not resolved here; callers that support it override Base first.
func (c Config) RecolorConfig() (recolor.Config, error) {
	base, err := colour.ParseHex(c.Base)
	if err != nil {
		return recolor.Config{}, fmt.Errorf("invalid base colour: %w", err)
	}
	return recolor.Config{Base: base, Shades: c.Shades}, nil
}

// DefaultPath returns the default config file location,
// $XDG_CONFIG_HOME/monotint/config.yaml or its platform equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "monotint", "config.yaml")
}

// Builder layers configuration sources: defaults, then file, then environment.
type Builder struct {
	config   Config
	path     string
	required bool
	useEnv   bool
	getenv   func(string) string
}

// NewBuilder creates a Builder starting from Default().
func NewBuilder() *Builder {
	return &Builder{
		config: Default(),
		getenv: os.Getenv,
	}
}

// WithFile loads path on Build. An explicit path must exist.
func (b *Builder) WithFile(path string) *Builder {
	b.path = path
	b.required = true
	return b
}

// WithDefaultFile loads DefaultPath() on Build if it exists.
func (b *Builder) WithDefaultFile() *Builder {
	if b.path == "" {
		b.path = DefaultPath()
		b.required = false
	}
	return b
}

// WithEnv applies MONOTINT_* environment variables on Build.
func (b *Builder) WithEnv() *Builder {
	b.useEnv = true
	return b
}

// WithGetenv replaces the environment lookup (useful for testing).
func (b *Builder) WithGetenv(getenv func(string) string) *Builder {
	b.getenv = getenv
	return b
}

// Build applies every configured source and validates the result.
func (b *Builder) Build() (Config, error) {
	cfg := b.config

	path := b.path
	if b.useEnv {
		if p := b.getenv(EnvConfigFile); p != "" && !b.required {
			path, b.required = p, true
		}
	}

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			if b.required || !errors.Is(err, fs.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	if b.useEnv {
		if v := b.getenv(EnvBaseColour); v != "" {
			cfg.Base = v
			cfg.BaseImage = ""
		}
		if v := b.getenv(EnvStrategy); v != "" {
			s, err := recolor.ParseStrategy(v)
			if err != nil {
				return Config{}, fmt.Errorf("%s: %w", EnvStrategy, err)
			}
			cfg.Strategy = s
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadFile decodes the YAML file at path over cfg, so absent keys keep
// their current values.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path) // #nosec G304 - User-specified config path
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}
