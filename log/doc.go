// Package log is a small structured logging layer over [log/slog] with a
// trace level below debug, configurable timestamps and optional colorized
// output.
//
// A [Logger] is built once with functional options and then passed by
// value:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("kitchen"))
//
//	logger.Info("compiled", slog.String("file", name))
//
// Every level has a context-aware method, such as [Logger.TraceContext], and
// a variant that uses [DefaultContextProvider]. The zero Logger discards
// all records.
//
// The package-level functions, such as [Info], log through a shared logger
// that [Config] reconfigures in place.
//
// # Pretty output
//
// With [WithPretty] enabled, records are rendered with
// [github.com/charmbracelet/lipgloss] styles: keys are dimmed and values are
// colored by kind. Colors are only emitted when the output is a terminal
// that supports them, so pretty output written to a file or pipe is plain
// text.
package log
