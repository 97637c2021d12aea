package cmd

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/plc/lang"
)

// Gen analyzes a program and writes it as Java source.
type Gen struct {
	Source  string `arg:"" default:"-" help:"Program source file, or '-' for stdin." name:"source"`
	Output  string `help:"Write to FILE instead of stdout." placeholder:"FILE" short:"o" type:"path"`
	Library bool   `default:"true" help:"Define the builtin library." negatable:""`
}

// Run executes the gen command.
func (g *Gen) Run(ctx context.Context) (err error) {
	opts := pipeline(g.Library)

	p, err := load(ctx, g.Source, true, opts...)
	if err != nil {
		return err
	}

	var w io.Writer = streamsFrom(ctx).Out

	if g.Output != "" {
		f, err := os.Create(g.Output)
		if err != nil {
			return ErrWriteOutput.Wrap(err).With(slog.String("output", g.Output))
		}

		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = ErrWriteOutput.Wrap(cerr).With(slog.String("output", g.Output))
			}
		}()

		w = f
	}

	buf := bufio.NewWriter(w)

	if err := lang.Generate(ctx, buf, p.tree, opts...); err != nil {
		var lerr *lang.Error
		if errors.As(err, &lerr) {
			return p.fail(ctx, err)
		}

		return ErrWriteOutput.Wrap(err)
	}

	if err := buf.Flush(); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
