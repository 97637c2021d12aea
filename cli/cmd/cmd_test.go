package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/plc/lang"
)

const programSource = `LET greeting: String = "hello";
DEF twice(n: Integer): Integer DO
    RETURN n * 2;
END
DEF main(): Integer DO
    print(greeting);
    print(twice(21));
    RETURN 0;
END
`

type runner interface {
	Run(ctx context.Context) error
}

// execute runs c with its streams captured and stdin reading from in.
func execute(t *testing.T, c runner, in string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errs bytes.Buffer

	ctx := WithStreams(t.Context(), Streams{
		In:  strings.NewReader(in),
		Out: &out,
		Err: &errs,
	})

	err = c.Run(ctx)

	return out.String(), errs.String(), err
}

func writeSource(t *testing.T, text string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "main.plc")
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		t.Fatalf("write source: %v", err)
	}

	return path
}

func TestRun(t *testing.T) {
	tests := []struct {
		name   string
		cmd    Run
		source string
		out    string
		err    error
	}{
		{
			name:   "output",
			cmd:    Run{Source: stdinSource, Library: true},
			source: programSource,
			out:    "hello\n42\n",
		},
		{
			name:   "quiet",
			cmd:    Run{Source: stdinSource, Library: true, Quiet: true},
			source: programSource,
		},
		{
			name:   "assert",
			cmd:    Run{Source: stdinSource, Library: true, Quiet: true, Assert: `result == 0 && lines[1] == "42"`},
			source: programSource,
		},
		{
			name:   "assert fails",
			cmd:    Run{Source: stdinSource, Library: true, Assert: `len(lines) == 1`},
			source: programSource,
			out:    "hello\n42\n",
			err:    ErrAssertion,
		},
		{
			name:   "exit status",
			cmd:    Run{Source: stdinSource},
			source: "DEF main(): Integer DO RETURN 3; END",
			err:    ExitStatus(3),
		},
		{
			name:   "semantic error",
			cmd:    Run{Source: stdinSource},
			source: "DEF main(): Integer DO RETURN TRUE; END",
			err:    lang.ErrSemantic,
		},
		{
			name:   "runtime error",
			cmd:    Run{Source: stdinSource},
			source: "DEF main(): Integer DO RETURN 1 / 0; END",
			err:    lang.ErrRuntime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, &tt.cmd, tt.source)

			switch {
			case tt.err == nil && err != nil:
				t.Fatalf("unexpected error: %v", err)
			case tt.err != nil && !errors.Is(err, tt.err):
				t.Fatalf("error = %v, want %v", err, tt.err)
			}

			if out != tt.out {
				t.Errorf("output = %q, want %q", out, tt.out)
			}
		})
	}
}

func TestRun_Diagnostic(t *testing.T) {
	path := writeSource(t, "DEF main(): Integer DO\n    RETURN 1\nEND\n")

	_, stderr, err := execute(t, &Run{Source: path}, "")
	if !errors.Is(err, lang.ErrSyntax) {
		t.Fatalf("error = %v, want syntax error", err)
	}

	for _, want := range []string{path, "syntax error", "line 3, column 1", "^"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("diagnostic missing %q:\n%s", want, stderr)
		}
	}
}

func TestExitStatus(t *testing.T) {
	tests := []struct {
		result lang.Value
		want   error
	}{
		{lang.Nil{}, nil},
		{lang.Bool(true), nil},
	}

	for _, tt := range tests {
		if got := exitStatus(tt.result); got != tt.want {
			t.Errorf("exitStatus(%v) = %v, want %v", tt.result, got, tt.want)
		}
	}

	if got := ExitStatus(7).Error(); got != "exit status 7" {
		t.Errorf("ExitStatus(7).Error() = %q", got)
	}
}

func TestGen(t *testing.T) {
	out, _, err := execute(t, &Gen{Source: stdinSource, Library: true}, programSource)
	if err != nil {
		t.Fatalf("gen: %v", err)
	}

	for _, want := range []string{"public class Main {", "twice(", "System.exit("} {
		if !strings.Contains(out, want) {
			t.Errorf("generated source missing %q:\n%s", want, out)
		}
	}

	path := filepath.Join(t.TempDir(), "Main.java")

	if _, _, err := execute(t, &Gen{Source: stdinSource, Library: true, Output: path}, programSource); err != nil {
		t.Fatalf("gen to file: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil || string(data) != out {
		t.Errorf("file output differs from stdout output (%v)", err)
	}
}

func TestCheck(t *testing.T) {
	out, _, err := execute(t, &Check{Source: stdinSource, Library: true}, programSource)
	if err != nil {
		t.Fatalf("check: %v", err)
	}

	want := "ok\n  greeting: String\n  twice(Integer): Integer\n  main(): Integer\n"
	if out != want {
		t.Errorf("check output:\n%s\nwant:\n%s", out, want)
	}

	if _, _, err := execute(t, &Check{Source: stdinSource}, "LET x = 1;"); !errors.Is(err, lang.ErrSemantic) {
		t.Errorf("check without main: %v, want semantic error", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestCheck_WriteError(t *testing.T) {
	ctx := WithStreams(t.Context(), Streams{
		In:  strings.NewReader(programSource),
		Out: failingWriter{},
		Err: new(bytes.Buffer),
	})

	c := Check{Source: stdinSource, Library: true}
	if err := c.Run(ctx); !errors.Is(err, ErrWriteOutput) {
		t.Errorf("error = %v, want %v", err, ErrWriteOutput)
	}
}

func TestTokens(t *testing.T) {
	out, _, err := execute(t, &Tokens{Source: stdinSource}, "LET x = 1;")
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}

	if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 5 ||
		!strings.Contains(lines[0], `"LET"`) || !strings.HasPrefix(strings.TrimSpace(lines[3]), "8") {
		t.Errorf("token listing:\n%s", out)
	}

	out, _, err = execute(t, &Tokens{Source: stdinSource, JSON: true}, "x")
	if err != nil {
		t.Fatalf("tokens json: %v", err)
	}

	var tok struct {
		Literal string `json:"literal"`
		Offset  int    `json:"offset"`
	}

	if err := json.Unmarshal([]byte(out), &tok); err != nil || tok.Literal != "x" {
		t.Errorf("json token = %+v, %v (%q)", tok, err, out)
	}

	if _, _, err := execute(t, &Tokens{Source: stdinSource}, `"open`); !errors.Is(err, lang.ErrLexical) {
		t.Errorf("unterminated string: %v, want lexical error", err)
	}
}

func TestAST(t *testing.T) {
	t.Run("tree", func(t *testing.T) {
		out, _, err := execute(t, &AST{Source: stdinSource, Format: "tree", Analyze: true, Library: true}, programSource)
		if err != nil {
			t.Fatalf("ast: %v", err)
		}

		if !strings.HasPrefix(out, "Source\n") || !strings.Contains(out, "Method twice(n: Integer): Integer") {
			t.Errorf("tree:\n%s", out)
		}
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := execute(t, &AST{Source: stdinSource, Format: "json", Indent: 2}, programSource)
		if err != nil {
			t.Fatalf("ast: %v", err)
		}

		var tree map[string]any
		if err := json.Unmarshal([]byte(out), &tree); err != nil || tree["node"] != "source" {
			t.Errorf("json tree = %v, %v", tree["node"], err)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		out, _, err := execute(t, &AST{Source: stdinSource, Format: "yaml", Indent: 2}, programSource)
		if err != nil {
			t.Fatalf("ast: %v", err)
		}

		var tree map[string]any
		if err := yaml.Unmarshal([]byte(out), &tree); err != nil || tree["node"] != "source" {
			t.Errorf("yaml tree = %v, %v", tree["node"], err)
		}
	})
}

func TestLocate(t *testing.T) {
	path := writeSource(t, programSource)
	dir, name := filepath.Split(path)

	ctx := WithSearchPath(t.Context(), []string{t.TempDir(), dir})

	s, err := openSource(ctx, name)
	if err != nil {
		t.Fatalf("open %s: %v", name, err)
	}

	if s.name != path || s.text != programSource {
		t.Errorf("source = %q", s.name)
	}

	if _, err := openSource(t.Context(), "missing.plc"); !errors.Is(err, ErrOpenSource) {
		t.Errorf("missing source: %v, want %v", err, ErrOpenSource)
	}
}
