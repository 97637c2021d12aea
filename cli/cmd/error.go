package cmd

import (
	"log/slog"
	"strconv"
	"strings"
)

// Error is a command failure that carries structured attributes for the
// logger.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError returns an Error with the given message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

// Is matches errors derived from the same sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg == e.msg && t.err == nil && len(t.attrs) == 0
}

func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e caused by err.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs}
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	joined := make([]slog.Attr, 0, len(e.attrs)+len(attrs))
	joined = append(joined, e.attrs...)

	return &Error{msg: e.msg, err: e.err, attrs: append(joined, attrs...)}
}

var (
	ErrOpenSource  = NewError("open source")
	ErrAssertion   = NewError("assertion failed")
	ErrWriteOutput = NewError("write output")
	ErrEncode      = NewError("encode syntax tree")
)

// ExitStatus is returned by a command that ran to completion but asks for a
// nonzero process exit status.
type ExitStatus int

func (e ExitStatus) Error() string { return "exit status " + strconv.Itoa(int(e)) }
