package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the stdout encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config holds logger configuration.
type Config struct {
	// Output defaults to os.Stdout.
	Output io.Writer `env:"-"`
	Format Format    `env:"LOG_FORMAT" envDefault:"json"`
	Sentry SentryConfig
	Level  slog.Level `env:"LOG_LEVEL" envDefault:"info"`
}

// New creates a logger writing to cfg.Output in the configured format.
// When cfg.Sentry.DSN is set, warnings and errors are also forwarded to Sentry.
// Context extractors apply to every destination.
func New(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	h := newOutputHandler(cfg)
	if cfg.Sentry.DSN != "" {
		h = withSentry(h, cfg.Sentry)
	}
	return slog.New(NewContextHandler(h, extractors...))
}

// NewNope creates a no-op logger that discards all output.
// Use this as a default when logging is not configured.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newOutputHandler(cfg Config) slog.Handler {
	w := cfg.Output
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if Format(strings.ToLower(string(cfg.Format))) == FormatText {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}
