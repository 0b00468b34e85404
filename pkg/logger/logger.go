package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Option configures a logger built by New or NewWithSentry.
type Option func(*options)

type options struct {
	output     io.Writer
	level      slog.Level
	text       bool
	extractors []ContextExtractor
}

func defaultOptions() *options {
	return &options{
		output: os.Stdout,
		level:  slog.LevelInfo,
	}
}

// WithLevel sets the minimum level. Default: info.
func WithLevel(l slog.Level) Option {
	return func(o *options) {
		o.level = l
	}
}

// WithOutput sets the destination. Default: stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.output = w
		}
	}
}

// WithTextFormat switches from JSON to logfmt-style text output,
// which reads better in a terminal.
func WithTextFormat() Option {
	return func(o *options) {
		o.text = true
	}
}

// WithExtractors adds context extractors applied on every log call.
func WithExtractors(ex ...ContextExtractor) Option {
	return func(o *options) {
		o.extractors = append(o.extractors, ex...)
	}
}

// New creates a logger writing to the configured output.
func New(opts ...Option) *slog.Logger {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return slog.New(NewContextHandler(o.handler(), o.extractors...))
}

func (o *options) handler() slog.Handler {
	ho := &slog.HandlerOptions{Level: o.level}
	if o.text {
		return slog.NewTextHandler(o.output, ho)
	}
	return slog.NewJSONHandler(o.output, ho)
}

// ParseLevel converts "debug", "info", "warn" or "error" to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("logger: unknown level %q", s)
	}
	return l, nil
}

// NewNope creates a no-op logger that discards all output.
// Use this as a default when logging is not configured.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
