package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/plc/lang"
	"github.com/ardnew/plc/log"
)

// Run analyzes and interprets a program. The process exits with the value
// returned by main.
type Run struct {
	Source  string `arg:"" default:"-" help:"Program source file, or '-' for stdin." name:"source"`
	Assert  string `help:"Fail unless EXPR holds. EXPR may refer to result, output and lines." placeholder:"EXPR"`
	Library bool   `default:"true" help:"Define the builtin library."                                       negatable:""`
	Quiet   bool   `help:"Discard program output." short:"q"`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) error {
	streams := streamsFrom(ctx)

	var (
		captured bytes.Buffer
		out      io.Writer
	)

	switch {
	case r.Quiet && r.Assert != "":
		out = &captured
	case r.Quiet:
		out = io.Discard
	case r.Assert != "":
		out = io.MultiWriter(streams.Out, &captured)
	default:
		out = streams.Out
	}

	opts := pipeline(r.Library, lang.WithStdout(out))

	p, err := load(ctx, r.Source, true, opts...)
	if err != nil {
		return err
	}

	result, err := lang.Interpret(ctx, p.tree, opts...)
	if err != nil {
		return p.fail(ctx, err)
	}

	log.DebugContext(ctx, "run complete",
		slog.String("source", p.name),
		slog.String("result", result.String()),
	)

	if r.Assert != "" {
		if err := assert(r.Assert, result, captured.String()); err != nil {
			return err
		}
	}

	return exitStatus(result)
}

// assert evaluates predicate over the outcome of a run.
func assert(predicate string, result lang.Value, output string) error {
	env := map[string]any{
		"result": native(result),
		"output": output,
		"lines":  lines(output),
	}

	program, err := expr.Compile(predicate, expr.Env(env), expr.AsBool())
	if err != nil {
		return ErrAssertion.Wrap(err).With(slog.String("assert", predicate))
	}

	ok, err := vm.Run(program, env)
	if err != nil {
		return ErrAssertion.Wrap(err).With(slog.String("assert", predicate))
	}

	if pass, _ := ok.(bool); !pass {
		return ErrAssertion.With(
			slog.String("assert", predicate),
			slog.String("result", result.String()),
		)
	}

	return nil
}

// native converts a program value to the closest Go value for expr.
func native(v lang.Value) any {
	switch v := v.(type) {
	case lang.Int:
		if b := v.Big(); b.IsInt64() {
			return int(b.Int64())
		}

		return v.String()
	case lang.Decimal:
		f, err := v.Apd().Float64()
		if err != nil {
			return v.String()
		}

		return f
	case lang.Bool:
		return bool(v)
	case lang.Str, lang.Char:
		return v.String()
	case lang.Nil, nil:
		return nil
	default:
		return v.String()
	}
}

func lines(output string) []string {
	output = strings.TrimSuffix(output, "\n")
	if output == "" {
		return []string{}
	}

	return strings.Split(output, "\n")
}

// exitStatus maps the result of main to a process exit status. Results
// that do not fit an int exit with 1.
func exitStatus(result lang.Value) error {
	n, ok := result.(lang.Int)
	if !ok {
		return nil
	}

	b := n.Big()
	if !b.IsInt64() || int64(int(b.Int64())) != b.Int64() {
		return ExitStatus(1)
	}

	if code := int(b.Int64()); code != 0 {
		return ExitStatus(code)
	}

	return nil
}
