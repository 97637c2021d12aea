package lang

import (
	"io"
	"os"

	"github.com/ardnew/plc/log"
)

// options holds the configuration shared by every stage of the pipeline.
type options struct {
	logger log.Logger
	stdout io.Writer
	parent *Scope
	cache  bool
}

// Option configures lexing, parsing, analysis, interpretation or emission.
type Option func(*options)

// DefaultCache reports whether token streams are cached by default.
const DefaultCache = true

func makeOptions(opts ...Option) options {
	o := options{
		stdout: os.Stdout,
		cache:  DefaultCache,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithStdout sets the writer used by the print builtin.
// A nil writer discards program output.
func WithStdout(w io.Writer) Option {
	return func(o *options) {
		if w == nil {
			w = io.Discard
		}

		o.stdout = w
	}
}

// WithParent seeds the root scope of analysis and interpretation with a
// parent scope, such as [Library]. Analysis and interpretation should be
// given the same parent.
func WithParent(parent *Scope) Option {
	return func(o *options) { o.parent = parent }
}

// WithCache enables or disables the token cache used by [Lex],
// [ParseString] and [ParseReader].
func WithCache(enable bool) Option {
	return func(o *options) { o.cache = enable }
}
