package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles of the pretty handlers. Styles render plain text
// unless the output is a color-capable terminal.
type palette struct {
	key, str, num, yes, no, dur, time, null lipgloss.Style
	trace, debug, info, warn, err           lipgloss.Style
}

func newPalette(w io.Writer) *palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }

	return &palette{
		key:   fg("8"),
		str:   fg("6"),
		num:   fg("3"),
		yes:   fg("2"),
		no:    fg("1"),
		dur:   fg("5"),
		time:  fg("4"),
		null:  fg("8"),
		trace: fg("8"),
		debug: fg("4"),
		info:  fg("2"),
		warn:  fg("3").Bold(true),
		err:   fg("1").Bold(true),
	}
}

func (p *palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.err
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

// prettyHandler writes colorized records as key=value text, or as indented
// JSON objects when json is set.
type prettyHandler struct {
	w          io.Writer
	mu         *sync.Mutex
	styles     *palette
	formatTime func(time.Time) string
	level      slog.Leveler
	prefix     string
	attrs      []slog.Attr
	source     bool
	json       bool
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime func(time.Time) string,
	json bool,
) *prettyHandler {
	return &prettyHandler{
		w:          w,
		mu:         &sync.Mutex{},
		styles:     newPalette(w),
		formatTime: formatTime,
		level:      opts.Level,
		source:     opts.AddSource,
		json:       json,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], h.qualify(attrs)...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

// qualify prefixes the keys of attrs with the open groups.
func (h *prettyHandler) qualify(attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs))

	for _, a := range attrs {
		if a.Equal(slog.Attr{}) {
			continue
		}

		a.Key = h.prefix + a.Key
		out = append(out, a)
	}

	return out
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var fields []slog.Attr

	if !r.Time.IsZero() {
		if s := h.formatTime(r.Time); s != "" {
			fields = append(fields, slog.String(slog.TimeKey, s))
		}
	}

	fields = append(fields, slog.Any(slog.LevelKey, r.Level))

	if h.source {
		if src := r.Source(); src != nil && src.File != "" {
			fields = append(fields,
				slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	fields = append(fields, slog.String(slog.MessageKey, r.Message))
	fields = append(fields, h.attrs...)

	rec := make([]slog.Attr, 0, r.NumAttrs())

	r.Attrs(func(a slog.Attr) bool {
		rec = append(rec, a)

		return true
	})

	fields = append(fields, h.qualify(rec)...)

	var buf bytes.Buffer

	if h.json {
		h.writeJSON(&buf, fields)
	} else {
		h.writeText(&buf, fields)
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) writeText(buf *bytes.Buffer, fields []slog.Attr) {
	for a := range flatten(fields) {
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.styles.key.Render(a.Key))
		buf.WriteByte('=')
		buf.WriteString(h.value(a.Value, false))
	}
}

func (h *prettyHandler) writeJSON(buf *bytes.Buffer, fields []slog.Attr) {
	buf.WriteString("{")

	first := true

	for a := range flatten(fields) {
		if !first {
			buf.WriteByte(',')
		}

		first = false

		buf.WriteString("\n  ")
		buf.WriteString(h.styles.key.Render(strconv.Quote(a.Key)))
		buf.WriteString(": ")
		buf.WriteString(h.value(a.Value, true))
	}

	buf.WriteString("\n}")
}

func (h *prettyHandler) value(v slog.Value, quote bool) string {
	p := h.styles

	quoted := func(s string) string {
		if quote {
			return strconv.Quote(s)
		}

		return s
	}
	text := func(s string) string { return p.str.Render(quoted(s)) }

	switch v.Kind() {
	case slog.KindString:
		return text(v.String())
	case slog.KindInt64:
		return p.num.Render(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return p.num.Render(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return p.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		if v.Bool() {
			return p.yes.Render("true")
		}

		return p.no.Render("false")
	case slog.KindDuration:
		return p.dur.Render(quoted(v.Duration().String()))
	case slog.KindTime:
		return p.time.Render(quoted(v.Time().Format(time.RFC3339Nano)))
	}

	switch a := v.Any().(type) {
	case nil:
		return p.null.Render("null")
	case slog.Level:
		return p.level(a).Render(quoted(Level(a).label()))
	case error:
		return text(a.Error())
	default:
		return text(fmt.Sprint(a))
	}
}

// flatten resolves values and expands groups into dotted keys.
func flatten(attrs []slog.Attr) iter.Seq[slog.Attr] {
	return func(yield func(slog.Attr) bool) {
		var walk func(prefix string, attrs []slog.Attr) bool

		walk = func(prefix string, attrs []slog.Attr) bool {
			for _, a := range attrs {
				a.Value = a.Value.Resolve()

				if a.Value.Kind() != slog.KindGroup {
					a.Key = prefix + a.Key
					if !yield(a) {
						return false
					}

					continue
				}

				inner := prefix
				if a.Key != "" {
					inner += a.Key + "."
				}

				if !walk(inner, a.Value.Group()) {
					return false
				}
			}

			return true
		}

		walk("", attrs)
	}
}
