package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envOverrides lists the environment variables that override the file.
// Unset variables leave the file value in place.
type envOverrides struct {
	Dir          string   `env:"XLFSYNC_DIR"`
	SourceLocale string   `env:"XLFSYNC_SOURCE_LOCALE"`
	Locales      []string `env:"XLFSYNC_LOCALES" envSeparator:","`
	Resource     string   `env:"XLFSYNC_RESOURCE"`
	Workers      int      `env:"XLFSYNC_WORKERS"`
	Report       string   `env:"XLFSYNC_REPORT"`
	LogLevel     string   `env:"XLFSYNC_LOG_LEVEL"`
}

// ApplyEnv overrides fields from XLFSYNC_* environment variables.
func (c *Config) ApplyEnv() error {
	var e envOverrides
	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if e.Dir != "" {
		c.Dir = e.Dir
	}
	if e.SourceLocale != "" {
		c.SourceLocale = e.SourceLocale
	}
	if len(e.Locales) > 0 {
		c.Locales = trimAll(e.Locales)
	}
	if e.Resource != "" {
		c.Resource = e.Resource
	}
	if e.Workers != 0 {
		c.Workers = e.Workers
	}
	if e.Report != "" {
		c.Report = e.Report
	}
	if e.LogLevel != "" {
		c.LogLevel = e.LogLevel
	}
	return nil
}
