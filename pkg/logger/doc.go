// Package logger builds configured log/slog loggers for the receiver
// and its collaborators. It supports JSON output for production log
// pipelines and text output for development, plus static attributes
// attached to every record.
//
// Usage:
//
//	log := logger.New(
//		logger.WithFormat(logger.FormatText),
//		logger.WithLevel(slog.LevelDebug),
//		logger.WithAttr(slog.String("service", "logtap")),
//	)
//
// Every component in this module accepts a *slog.Logger through its
// options and falls back to slog.Default, so embedding applications
// that already have a logger do not need this package.
package logger
