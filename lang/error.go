package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Kind classifies an [Error] by the pipeline stage that produced it.
type Kind int

const (
	KindUnknown  Kind = iota // error
	KindLexical              // lexical error
	KindSyntax               // syntax error
	KindBinding              // binding error
	KindSemantic             // semantic error
	KindRuntime              // runtime error
	KindInput                // input error
)

func (k Kind) String() string {
	switch k {
	case KindLexical:
		return "lexical error"
	case KindSyntax:
		return "syntax error"
	case KindBinding:
		return "binding error"
	case KindSemantic:
		return "semantic error"
	case KindRuntime:
		return "runtime error"
	case KindInput:
		return "input error"
	default:
		return "error"
	}
}

// Sentinel errors, one per [Kind]. Use [errors.Is] to classify an error
// returned from any stage of the pipeline.
var (
	ErrLexical   = newError(KindLexical)
	ErrSyntax    = newError(KindSyntax)
	ErrBinding   = newError(KindBinding)
	ErrSemantic  = newError(KindSemantic)
	ErrRuntime   = newError(KindRuntime)
	ErrReadInput = newError(KindInput)
)

// Error is the error type returned by every stage of the pipeline.
// It implements [slog.LogValuer] so it can be logged with its attributes.
//
// Lexical and syntax errors carry a character offset into the source text;
// see [Error.Offset] and [Error.Caret].
type Error struct {
	err    error
	reason string
	attrs  []slog.Attr
	kind   Kind
	offset int
}

func newError(kind Kind) *Error {
	return &Error{kind: kind, offset: -1}
}

// WrapError converts err into an *Error. An err that already is (or wraps)
// an *Error is returned unchanged.
func WrapError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return &Error{err: err, offset: -1}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.kind.String())

	if e.offset >= 0 {
		b.WriteString(" at offset ")
		b.WriteString(strconv.Itoa(e.offset))
	}

	if e.reason != "" {
		b.WriteString(": ")
		b.WriteString(e.reason)
	}

	if e.err != nil {
		b.WriteString(": ")
		b.WriteString(e.err.Error())
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel of e's [Kind].
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.kind == e.kind && t.reason == "" && t.err == nil && t.offset < 0
}

// Kind returns the stage classification of e.
func (e *Error) Kind() Kind { return e.kind }

// Reason returns the human-readable description of e without its kind.
func (e *Error) Reason() string { return e.reason }

// Offset returns the 0-based character offset that e refers to, if any.
func (e *Error) Offset() (int, bool) { return e.offset, e.offset >= 0 }

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)
	attrs = append(attrs, slog.String("kind", e.kind.String()))

	if e.reason != "" {
		attrs = append(attrs, slog.String("error", e.reason))
	}

	if e.offset >= 0 {
		attrs = append(attrs, slog.Int("offset", e.offset))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

func (e *Error) clone() *Error {
	c := *e
	c.attrs = append([]slog.Attr(nil), e.attrs...)

	return &c
}

// At returns a copy of e referring to the given character offset.
func (e *Error) At(offset int) *Error {
	c := e.clone()
	c.offset = offset

	return c
}

// Because returns a copy of e with a formatted description.
func (e *Error) Because(format string, args ...any) *Error {
	c := e.clone()
	c.reason = fmt.Sprintf(format, args...)

	return c
}

// Wrap returns a copy of e wrapping err.
func (e *Error) Wrap(err error) *Error {
	c := e.clone()
	c.err = err

	return c
}

// With returns a copy of e with additional structured attributes.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := e.clone()
	c.attrs = append(c.attrs, attrs...)

	return c
}

// Attrs returns the structured attributes attached to e.
func (e *Error) Attrs() []slog.Attr { return append([]slog.Attr(nil), e.attrs...) }

// Position converts e's offset into a 1-based line and column of source.
// It reports false if e carries no offset.
func (e *Error) Position(source string) (line, column int, ok bool) {
	if e.offset < 0 {
		return 0, 0, false
	}

	line, column = 1, 1

	for i, r := range []rune(source) {
		if i >= e.offset {
			break
		}

		if r == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}

	return line, column, true
}

// Caret renders the source line that e refers to with a marker under the
// offending character, prefixed by its location. It returns the empty string
// if e carries no offset.
func (e *Error) Caret(source string) string {
	line, column, ok := e.Position(source)
	if !ok {
		return ""
	}

	lines := strings.Split(source, "\n")

	text := ""
	if line <= len(lines) {
		text = lines[line-1]
	}

	gutter := strconv.Itoa(line)

	var b strings.Builder

	b.WriteString("line ")
	b.WriteString(gutter)
	b.WriteString(", column ")
	b.WriteString(strconv.Itoa(column))
	b.WriteString(":\n  ")
	b.WriteString(gutter)
	b.WriteString(" | ")
	b.WriteString(text)
	b.WriteString("\n  ")
	b.WriteString(strings.Repeat(" ", len(gutter)))
	b.WriteString(" | ")
	b.WriteString(caretPadding(text, column-1))
	b.WriteString("^\n")

	return b.String()
}

// caretPadding returns blanks covering the first n characters of text.
// Tabs are kept so the marker lines up however the terminal expands them.
func caretPadding(text string, n int) string {
	var b strings.Builder

	for _, r := range text {
		if n == 0 {
			break
		}

		if r == '\t' {
			b.WriteRune('\t')
		} else {
			b.WriteByte(' ')
		}

		n--
	}

	b.WriteString(strings.Repeat(" ", n))

	return b.String()
}
