package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"
)

// AST parses a program and writes its syntax tree.
type AST struct {
	Source  string `arg:"" default:"-" help:"Program source file, or '-' for stdin." name:"source"`
	Format  string `default:"tree" enum:"tree,json,yaml" help:"Output format (${enum})."  short:"f"`
	Indent  int    `default:"2"    help:"Indent width of JSON and YAML output; 0 is compact." short:"i"`
	Analyze bool   `help:"Annotate expressions with their resolved types." short:"a"`
	Library bool   `default:"true" help:"Define the builtin library." negatable:""`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) error {
	p, err := load(ctx, a.Source, a.Analyze, pipeline(a.Library)...)
	if err != nil {
		return err
	}

	out := streamsFrom(ctx).Out

	var data []byte

	switch a.Format {
	case "json":
		if a.Indent > 0 {
			data, err = json.MarshalIndent(p.tree, "", strings.Repeat(" ", a.Indent))
		} else {
			data, err = json.Marshal(p.tree)
		}

		data = append(data, '\n')

	case "yaml":
		var opts []yaml.EncodeOption
		if a.Indent > 0 {
			opts = append(opts, yaml.Indent(a.Indent))
		} else {
			opts = append(opts, yaml.Flow(true))
		}

		data, err = yaml.MarshalContext(ctx, p.tree.ToMap(), opts...)

	default:
		if err := p.tree.Print(out); err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		return nil
	}

	if err != nil {
		return ErrEncode.Wrap(err).With(slog.String("format", a.Format))
	}

	if _, err := fmt.Fprint(out, string(data)); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
