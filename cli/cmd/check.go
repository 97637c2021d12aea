package cmd

import (
	"context"
	"fmt"
)

// Check analyzes a program and lists the symbols of its module scope.
type Check struct {
	Source  string `arg:"" default:"-" help:"Program source file, or '-' for stdin." name:"source"`
	Library bool   `default:"true" help:"Define the builtin library." negatable:""`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) error {
	p, err := load(ctx, c.Source, true, pipeline(c.Library)...)
	if err != nil {
		return err
	}

	out := streamsFrom(ctx).Out

	if _, err := fmt.Fprintln(out, "ok"); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	for v := range p.scope.Variables() {
		if _, err := fmt.Fprintf(out, "  %s: %s\n", v.Name, v.Type); err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	for f := range p.scope.Functions() {
		if _, err := fmt.Fprintf(out, "  %s\n", f.Signature()); err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	return nil
}
