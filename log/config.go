package log

import (
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode"
)

// DefaultTimeLayout is the timestamp layout used when none is configured.
const DefaultTimeLayout = time.RFC3339

// DefaultCaller reports whether records include the calling source line by
// default.
const DefaultCaller = false

// DefaultPretty reports whether records are colorized by default.
const DefaultPretty = true

// config is the immutable state of a [Logger]. Options derive a new config
// from an old one.
type config struct {
	output     io.Writer
	formatTime func(time.Time) string
	level      Level
	format     Format
	caller     bool
	pretty     bool
}

// Option derives a new logger configuration from an existing one.
type Option func(config) config

func makeConfig(w io.Writer, opts ...Option) config {
	return WithDefaults(w)(config{}).with(opts...)
}

func (c config) with(opts ...Option) config {
	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

// handler builds the slog handler described by c.
func (c config) handler() slog.Handler {
	if c.output == io.Discard {
		return slog.DiscardHandler
	}

	opts := &slog.HandlerOptions{
		AddSource:   c.caller,
		Level:       slog.Level(c.level),
		ReplaceAttr: c.replace,
	}

	switch {
	case c.pretty && c.format == FormatJSON:
		return newPrettyHandler(c.output, opts, c.formatTime, true)
	case c.pretty:
		return newPrettyHandler(c.output, opts, c.formatTime, false)
	case c.format == FormatJSON:
		return slog.NewJSONHandler(c.output, opts)
	default:
		return slog.NewTextHandler(c.output, opts)
	}
}

// replace rewrites the built-in time and level attributes of the standard
// handlers.
func (c config) replace(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}

	switch a.Key {
	case slog.TimeKey:
		t, ok := a.Value.Any().(time.Time)
		if !ok {
			return a
		}

		s := c.formatTime(t)
		if s == "" {
			return slog.Attr{}
		}

		return slog.String(slog.TimeKey, s)

	case slog.LevelKey:
		if l, ok := a.Value.Any().(slog.Level); ok {
			return slog.String(slog.LevelKey, Level(l).label())
		}
	}

	return a
}

// WithDefaults resets every setting to its default and directs output to w.
// A nil writer discards output.
func WithDefaults(w io.Writer) Option {
	return func(config) config {
		return config{
			output:     writerOrDiscard(w),
			formatTime: makeFormatTime(DefaultTimeLayout),
			level:      DefaultLevel,
			format:     DefaultFormat,
			caller:     DefaultCaller,
			pretty:     DefaultPretty,
		}
	}
}

// WithOutput directs output to w. A nil writer discards output.
func WithOutput(w io.Writer) Option {
	return func(c config) config {
		c.output = writerOrDiscard(w)

		return c
	}
}

// WithLevel discards records below level.
func WithLevel(level Level) Option {
	return func(c config) config {
		c.level = level

		return c
	}
}

// WithFormat selects the record encoding.
func WithFormat(format Format) Option {
	return func(c config) config {
		c.format = format

		return c
	}
}

// WithTimeLayout sets the timestamp layout. The layout may name one of the
// [time] package layouts, such as "RFC3339Nano" or "Kitchen", or be a
// literal layout string. An empty layout or "none" omits timestamps.
func WithTimeLayout(layout string) Option {
	return func(c config) config {
		c.formatTime = makeFormatTime(layout)

		return c
	}
}

// WithCaller includes the source file and line of the logging call.
func WithCaller(enable bool) Option {
	return func(c config) config {
		c.caller = enable

		return c
	}
}

// WithPretty colorizes records when the output is a terminal. Pretty JSON
// is indented across multiple lines.
func WithPretty(enable bool) Option {
	return func(c config) config {
		c.pretty = enable

		return c
	}
}

func writerOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}

	return w
}

var namedLayout = map[string]string{
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"datetime":    time.DateTime,
	"ansic":       time.ANSIC,
	"unixdate":    time.UnixDate,
	"rfc822":      time.RFC822,
	"kitchen":     time.Kitchen,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"ms":          time.StampMilli,
	"stampmicro":  time.StampMicro,
	"us":          time.StampMicro,
	"stampnano":   time.StampNano,
	"ns":          time.StampNano,
	"none":        "",
}

func makeFormatTime(layout string) func(time.Time) string {
	// Names are matched ignoring case and punctuation; anything else is
	// used verbatim.
	key := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}

		return -1
	}, layout)

	if named, ok := namedLayout[key]; ok {
		layout = named
	}

	if strings.TrimSpace(layout) == "" {
		return func(time.Time) string { return "" }
	}

	return func(t time.Time) string { return t.Format(layout) }
}
