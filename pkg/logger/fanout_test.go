package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFanout(t *testing.T) {
	t.Parallel()

	var info, warn bytes.Buffer
	h := fanout(
		slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	log := slog.New(h).With(slog.String("svc", "pathway")).WithGroup("req")

	require.True(t, log.Enabled(context.Background(), slog.LevelInfo))

	log.Info("miss", slog.String("path", "/nope"))
	require.Contains(t, info.String(), "svc=pathway")
	require.Contains(t, info.String(), "req.path=/nope")
	require.Zero(t, warn.Len())

	log.Warn("slow")
	require.Contains(t, warn.String(), "msg=slow")
}
