package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
)

// logConfig is read from the environment before flags are parsed.
type logConfig struct {
	File  string `env:"FOCUSBOX_LOG_FILE"`
	Debug bool   `env:"FOCUSBOX_DEBUG"`
}

// setupLog sends logs to stderr, or to FOCUSBOX_LOG_FILE when set.
func setupLog() (func() error, error) {
	cfg, err := env.ParseAs[logConfig]()
	if err != nil {
		return nil, fmt.Errorf("error parsing log config: %w", err)
	}

	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(false)
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	if cfg.File == "" {
		return func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil { //nolint:gosec
		return nil, fmt.Errorf("unable to create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("unable to open log file: %w", err)
	}
	log.SetOutput(f)
	log.SetReportTimestamp(true)
	return f.Close, nil
}
