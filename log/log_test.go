package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func decode(t *testing.T, line string) map[string]any {
	t.Helper()

	var m map[string]any
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("decode %q: %v", line, err)
	}

	return m
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf,
		WithLevel(LevelDebug),
		WithFormat(FormatJSON),
		WithPretty(false),
		WithTimeLayout("none"))

	logger.Trace("trace")
	logger.Debug("debug")
	logger.InfoContext(t.Context(), "info")
	logger.Warn("warn")
	logger.ErrorContext(t.Context(), "error")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d records, want 4:\n%s", len(lines), buf.String())
	}

	for i, want := range []string{"DEBUG", "INFO", "WARN", "ERROR"} {
		m := decode(t, lines[i])
		if m["level"] != want || m["msg"] != strings.ToLower(want) {
			t.Errorf("record %d = %v", i, m)
		}

		if _, ok := m["time"]; ok {
			t.Errorf("record %d has a timestamp", i)
		}
	}
}

func TestLogger_Caller(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatJSON), WithPretty(false), WithCaller(true))
	logger.Info("here")

	m := decode(t, buf.String())

	src, ok := m["source"].(map[string]any)
	if !ok {
		t.Fatalf("no source in %v", m)
	}

	if file, _ := src["file"].(string); !strings.HasSuffix(file, "log_test.go") {
		t.Errorf("source file = %v, want the calling test file", src["file"])
	}
}

func TestLogger_WithAndWrap(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithFormat(FormatJSON), WithPretty(false))
	tagged := base.With(slog.String("stage", "parse"))

	tagged.Info("first")

	if m := decode(t, buf.String()); m["stage"] != "parse" {
		t.Errorf("With attr missing: %v", m)
	}

	buf.Reset()

	quiet := tagged.Wrap(WithLevel(LevelError))
	quiet.Info("dropped")
	quiet.Error("kept")

	m := decode(t, buf.String())
	if m["msg"] != "kept" {
		t.Errorf("Wrap level not applied: %v", m)
	}

	if quiet.Level() != LevelError || base.Level() != DefaultLevel {
		t.Errorf("levels = %v, %v", quiet.Level(), base.Level())
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var l Logger

	l.Trace("nothing")
	l.ErrorContext(t.Context(), "nothing")

	if l.With(slog.Int("n", 1)).Logger != nil {
		t.Error("With on a zero Logger allocated a handler")
	}

	if l.Level() != DefaultLevel || l.Format() != DefaultFormat {
		t.Errorf("zero logger reports %v %v", l.Level(), l.Format())
	}

	if l.Enabled(t.Context(), LevelError) {
		t.Error("zero logger is enabled")
	}
}

func TestPrettyHandler_Text(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithTimeLayout("none"), WithLevel(LevelTrace)).
		With(slog.Group("req", slog.Int("id", 7)))

	logger.Trace("lexed source",
		slog.Bool("cached", false),
		slog.Any("err", errors.New("boom")),
		slog.Float64("ratio", 0.5))

	want := "level=TRACE msg=lexed source req.id=7 cached=false err=boom ratio=0.5\n"
	if buf.String() != want {
		t.Errorf("pretty text =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestPrettyHandler_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatJSON), WithTimeLayout("none"))
	h := logger.Handler().WithGroup("lang").WithAttrs([]slog.Attr{slog.String("stage", "emit")})

	slog.New(h).Info("done", slog.Int("lines", 3))

	if !strings.Contains(buf.String(), "\n  ") {
		t.Errorf("pretty JSON is not indented:\n%s", buf.String())
	}

	m := decode(t, buf.String())
	if m["lang.stage"] != "emit" || m["lang.lines"] != float64(3) || m["level"] != "INFO" {
		t.Errorf("pretty JSON = %v", m)
	}
}

func TestLogger_Concurrent(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithTimeLayout("none"))

	var wg sync.WaitGroup

	for i := range 16 {
		wg.Go(func() {
			logger.With(slog.Int("worker", i)).Info("tick")
		})
	}

	wg.Wait()

	if n := strings.Count(buf.String(), "\n"); n != 16 {
		t.Errorf("got %d records, want 16", n)
	}
}

func TestDefault(t *testing.T) {
	saved := Default()
	t.Cleanup(func() { SetDefault(saved) })

	var buf bytes.Buffer

	SetDefault(Make(&buf, WithFormat(FormatJSON), WithPretty(false)))
	Config(WithLevel(LevelWarn), WithTimeLayout("none"))

	Info("dropped")
	WarnContext(t.Context(), "kept", slog.String("key", "value"))

	m := decode(t, buf.String())
	if m["msg"] != "kept" || m["key"] != "value" || m["level"] != "WARN" {
		t.Errorf("default logger wrote %v", m)
	}

	if Default().Format() != FormatJSON {
		t.Error("Config reset the format")
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	for _, pretty := range []bool{false, true} {
		logger := Make(&bytes.Buffer{}, WithPretty(pretty))

		b.Run(map[bool]string{false: "plain", true: "pretty"}[pretty], func(b *testing.B) {
			for b.Loop() {
				logger.Info("benchmark", slog.Int("n", 1), slog.String("k", "v"))
			}
		})
	}
}
