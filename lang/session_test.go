package lang

import (
	"bytes"
	"errors"
	"slices"
	"testing"
)

func TestIsStatement(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"LET x = 1;", true},
		{"LET x = 1", true},
		{"print(1);", true},
		{"print(1)", false},
		{"1 + 2", false},
		{"LETTER", false},
		{"  IF TRUE DO print(1); END  ", true},
	}

	for _, tt := range tests {
		if got := IsStatement(tt.line); got != tt.want {
			t.Errorf("IsStatement(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestSession(t *testing.T) {
	var out bytes.Buffer

	s, err := NewSession(t.Context(), nil, WithStdout(&out), WithParent(Library()))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	steps := []struct {
		line string
		want string
		typ  *Type
		err  error
	}{
		{line: "LET x = 20;", want: "20", typ: TypeInteger},
		{line: "x * 2 + 2", want: "42", typ: TypeInteger},
		{line: "LET y: Integer = x + TRUE;", err: ErrSemantic},
		{line: "y", err: ErrBinding},
		{line: "x = x + 1;", want: "null", typ: TypeNil},
		{line: "x", want: "21", typ: TypeInteger},
		{line: `LET x = "shadow";`, want: "shadow", typ: TypeString},
		{line: `print(x + "!")`, want: "null", typ: TypeNil},
		{line: "1 / 0", err: ErrRuntime},
		{line: "FOR i IN range(0, 2) DO print(i); END", want: "null", typ: TypeNil},
		{line: "RETURN 1;", err: ErrSemantic},
		{line: "LET", err: ErrSyntax},
	}

	for _, step := range steps {
		v, typ, err := s.Eval(t.Context(), step.line)

		if step.err != nil {
			if !errors.Is(err, step.err) {
				t.Errorf("Eval(%q) error = %v, want %v", step.line, err, step.err)
			}

			continue
		}

		if err != nil {
			t.Errorf("Eval(%q) error: %v", step.line, err)

			continue
		}

		if v.String() != step.want || typ != step.typ {
			t.Errorf("Eval(%q) = %s: %s, want %s: %s", step.line, v, typ, step.want, step.typ)
		}
	}

	if want := "shadow!\n0\n1\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}

	names := slices.Collect(s.Names())
	if !slices.Contains(names, "x") || !slices.Contains(names, "print") ||
		!slices.Contains(names, "range") || slices.Contains(names, "y") {
		t.Errorf("names = %v", names)
	}

	symbols := slices.Collect(s.Symbols())
	if !slices.Contains(symbols, "x: String") || slices.Contains(symbols, "x: Integer") {
		t.Errorf("symbols = %v", symbols)
	}
}

func TestSession_Program(t *testing.T) {
	src, err := ParseString(t.Context(), `
LET base: Integer = 10;
DEF twice(n: Integer): Integer DO
    RETURN n * 2;
END
DEF main(): Integer DO
    RETURN twice(base);
END`, WithCache(false))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	s, err := NewSession(t.Context(), src, WithStdout(nil))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	v, _, err := s.Eval(t.Context(), "twice(base + 1)")
	if err != nil || v.String() != "22" {
		t.Errorf("twice(base + 1) = %v, %v", v, err)
	}

	result, err := s.Run(t.Context())
	if err != nil || result.String() != "20" {
		t.Errorf("Run() = %v, %v", result, err)
	}

	var out bytes.Buffer

	s.SetStdout(&out)

	if _, _, err := s.Eval(t.Context(), "print(base)"); err != nil {
		t.Fatalf("print: %v", err)
	}

	if out.String() != "10\n" {
		t.Errorf("redirected output = %q", out.String())
	}
}
