package lang

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestError_Is(t *testing.T) {
	err := ErrSyntax.At(4).Because("expected %q", ";")

	if !errors.Is(err, ErrSyntax) {
		t.Error("syntax error does not match ErrSyntax")
	}

	if errors.Is(err, ErrLexical) {
		t.Error("syntax error matches ErrLexical")
	}

	if errors.Is(ErrSyntax, err) {
		t.Error("sentinel matches a detailed error")
	}

	wrapped := ErrReadInput.Wrap(io.ErrUnexpectedEOF)
	if !errors.Is(wrapped, io.ErrUnexpectedEOF) || !errors.Is(wrapped, ErrReadInput) {
		t.Errorf("wrapped error %v lost its chain", wrapped)
	}
}

func TestError_Message(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrLexical.At(13).Because("unterminated string literal"),
			"lexical error at offset 13: unterminated string literal"},
		{ErrRuntime.Because("integer division by zero"),
			"runtime error: integer division by zero"},
		{ErrReadInput.Wrap(io.EOF), "input error: EOF"},
		{ErrSemantic, "semantic error"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestError_Immutable(t *testing.T) {
	a := ErrBinding.With(slog.String("name", "x"))
	b := a.With(slog.Int("arity", 2))

	if len(a.Attrs()) != 1 || len(b.Attrs()) != 2 || len(ErrBinding.Attrs()) != 0 {
		t.Errorf("attrs leaked between copies: %v %v %v",
			a.Attrs(), b.Attrs(), ErrBinding.Attrs())
	}

	if _, ok := ErrSyntax.Offset(); ok {
		t.Error("sentinel carries an offset")
	}
}

func TestError_Caret(t *testing.T) {
	source := "LET x: Integer = 1;\nDEF main() DO\n    RETURN x\nEND"

	_, err := ParseString(t.Context(), source, WithCache(false))

	var serr *Error
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, want *Error", err)
	}

	line, col, ok := serr.Position(source)
	if !ok || line != 4 || col != 1 {
		t.Errorf("position = %d:%d (%v), want 4:1", line, col, ok)
	}

	caret := serr.Caret(source)

	if !strings.HasPrefix(caret, "line 4, column 1:\n") {
		t.Errorf("caret header:\n%s", caret)
	}

	if !strings.Contains(caret, "4 | END\n") || !strings.Contains(caret, "| ^") {
		t.Errorf("caret body:\n%s", caret)
	}

	if got := ErrRuntime.Because("x").Caret(source); got != "" {
		t.Errorf("caret without offset = %q", got)
	}
}

func TestError_CaretTabs(t *testing.T) {
	source := "\t\tab x"

	caret := ErrSyntax.At(5).Because("unexpected token").Caret(source)

	if !strings.HasPrefix(caret, "line 1, column 6:\n") {
		t.Errorf("caret header:\n%s", caret)
	}

	if want := "  1 | \t\tab x\n    | \t\t   ^\n"; !strings.HasSuffix(caret, want) {
		t.Errorf("caret = %q, want suffix %q", caret, want)
	}
}

func TestError_LogValue(t *testing.T) {
	err := ErrSyntax.At(3).Because("bad").With(slog.String("token", "x"))

	got := map[string]string{}
	for _, a := range err.LogValue().Group() {
		got[a.Key] = a.Value.String()
	}

	if got["token"] != "x" {
		t.Errorf("LogValue() = %v, missing token attr", got)
	}
}
