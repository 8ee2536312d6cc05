package internal

import (
	"io"
	"log/slog"
	"time"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	logger  *slog.Logger
	clock   func() time.Time
	out     io.Writer
	version string
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogger replaces the logger the run mode would otherwise build.
func WithLogger(l *slog.Logger) Option {
	return func(a *application) {
		a.logger = l
	}
}

// WithClock overrides the time source used to stamp journal and archive lines.
func WithClock(now func() time.Time) Option {
	return func(a *application) {
		a.clock = now
	}
}

// WithOutput sets where human-readable command output goes.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.out = w
	}
}

// WithVersion sets the version reported to MCP clients.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}
