// Package log provides a concurrency-safe logging interface based on
// [log/slog], with a trace level below debug and optional colorized
// pretty printing.
//
// # Basic Usage
//
//	logger := log.Make(os.Stdout)
//	logger.Info("parser ready", slog.String("file", name))
//	logger.Error("parse failed", slog.Any("error", err))
//
// Package-level functions ([Info], [Error], and friends) write through a
// process-wide default logger, reconfigured with [Config].
//
// # Configuration
//
// Loggers are configured at creation time with functional options:
//
//	logger := log.Make(os.Stdout,
//		log.WithLevel(log.LevelTrace),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// [Logger.Wrap] derives a new logger with options layered over the
// receiver's configuration, and [Logger.With] attaches attributes to
// every subsequent message:
//
//	logger = logger.With(slog.String("component", "parser"))
//
// # Context-Aware Logging
//
// Each level has a context-aware variant ([Logger.InfoContext], etc.).
// The context-unaware variants call them with the context returned by
// [DefaultContextProvider], [context.TODO] unless replaced.
//
// # Levels and Formats
//
// Five levels are defined: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. Messages below the configured level are
// discarded. Output is [FormatJSON] (default) or [FormatText]; with
// [WithPretty] enabled, both render colorized for terminals.
//
// # Time Formatting
//
// [WithTimeLayout] accepts the named layouts from the [time] package
// ("RFC3339", "Kitchen", ...) or a custom layout string passed verbatim
// to [time.Time.Format]. An empty layout omits timestamps entirely.
package log
