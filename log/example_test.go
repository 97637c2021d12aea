package log_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/plc/log"
)

func Example() {
	logger := log.Make(os.Stdout,
		log.WithTimeLayout("none"),
		log.WithPretty(false))

	logger.Info("compiled", slog.String("file", "fib.plc"))
	logger.Debug("hidden below the default level")
	// Output:
	// level=INFO msg=compiled file=fib.plc
}

func Example_json() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatJSON),
		log.WithLevel(log.LevelTrace),
		log.WithTimeLayout(""),
		log.WithPretty(false))

	logger.TraceContext(context.Background(), "lex", slog.Int("token_count", 12))
	// Output:
	// {"level":"TRACE","msg":"lex","token_count":12}
}

func Example_pretty() {
	// Colors are dropped because os.Stdout is not a terminal under go test.
	logger := log.Make(os.Stdout, log.WithTimeLayout("none")).
		With(slog.String("stage", "analyze"))

	logger.Warn("unused variable", slog.String("name", "x"))
	// Output:
	// level=WARN msg=unused variable stage=analyze name=x
}
