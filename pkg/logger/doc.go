// Package logger builds structured slog loggers for pathway services and tools.
//
// It adds three things on top of log/slog:
//   - context extractors that inject request-scoped attributes on every call
//   - attributes carried in a context.Context ([WithAttrs]), so the matched
//     route can follow a request through handlers without threading a logger
//   - optional Sentry shipping for warnings and errors
//
// # Basic Usage
//
//	log := logger.New(
//	    logger.WithLevel(slog.LevelDebug),
//	    logger.WithExtractors(logger.ContextAttrs()),
//	)
//
//	ctx = logger.WithAttrs(ctx, slog.String("route", "blog/:slug"))
//	log.InfoContext(ctx, "request resolved")
//	// {"level":"INFO","msg":"request resolved","route":"blog/:slug"}
//
// # Sentry Integration
//
//	log := logger.NewWithSentry(logger.SentryConfig{
//	    DSN:         os.Getenv("SENTRY_DSN"),
//	    Environment: "production",
//	})
//
// If the DSN is empty or Sentry fails to initialize, the logger falls back to
// stdout only, so the same code path works in development and production.
package logger
