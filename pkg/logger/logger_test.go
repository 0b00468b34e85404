package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pathway/pkg/logger"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestNew_ContextAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithExtractors(logger.ContextAttrs(), nil),
	)

	ctx := logger.WithAttrs(context.Background(), slog.String("route", "blog/:slug"))
	ctx = logger.WithAttrs(ctx, slog.String("rule", "blog.show"))
	log.InfoContext(ctx, "resolved", slog.Int("status", 200))

	out := decode(t, &buf)
	require.Equal(t, "resolved", out["msg"])
	require.Equal(t, "blog/:slug", out["route"])
	require.Equal(t, "blog.show", out["rule"])
	require.InDelta(t, 200, out["status"], 0)
}

func TestNew_Level(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevel(slog.LevelWarn))

	log.Info("hidden")
	require.Zero(t, buf.Len())

	log.Warn("shown")
	require.Contains(t, buf.String(), "shown")
}

func TestNew_TextFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithTextFormat())
	log.Info("hello", slog.String("k", "v"))

	require.True(t, strings.Contains(buf.String(), "msg=hello"))
	require.True(t, strings.Contains(buf.String(), "k=v"))
}

func TestWithAttrs_NoAttrsKeepsContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	require.Equal(t, ctx, logger.WithAttrs(ctx))
	require.Empty(t, logger.AttrsFromContext(ctx))
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: " warn ", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := logger.ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNewWithSentry_NoDSNFallsBack(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithSentry(logger.SentryConfig{}, logger.WithOutput(&buf))
	log.Error("local only")

	require.Equal(t, "local only", decode(t, &buf)["msg"])
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	log := logger.NewNope()
	require.False(t, log.Enabled(context.Background(), slog.LevelError))
}
