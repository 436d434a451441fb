// Package config reads SOLARIS_* environment variables. Command-line flags
// are merged over the parsed values before Validate runs.
package config

import (
	"fmt"
	"slices"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"
)

// Formats are the accepted output formats.
var Formats = []string{"text", "json"}

// Config is the environment-level configuration of the solaris CLI.
type Config struct {
	Format    string `env:"SOLARIS_FORMAT"     envDefault:"text"`
	LogLevel  string `env:"SOLARIS_LOG_LEVEL"  envDefault:"info"`
	JournalDB string `env:"SOLARIS_JOURNAL_DB"`
	Catalog   string `env:"SOLARIS_CATALOG"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Parse reads the environment without validating it, so callers can
// override fields first.
func Parse() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated values.
func (c Config) Validate() error {
	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", c.Format, Formats)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (zapcore.Level, error) {
	return zapcore.ParseLevel(c.LogLevel)
}
