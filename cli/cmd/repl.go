package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/plc/cli/cmd/repl"
	"github.com/ardnew/plc/lang"
	"github.com/ardnew/plc/log"
)

// Repl starts an interactive session, optionally seeded with the fields and
// methods of a program.
type Repl struct {
	Source  string `arg:"" help:"Program whose declarations seed the session." name:"source" optional:""`
	Library bool   `default:"true" help:"Define the builtin library." negatable:""`
	History string `default:"${cache}" help:"Directory of the history file. Empty keeps history in memory." placeholder:"DIR" type:"path"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	opts := pipeline(r.Library, lang.WithStdout(streamsFrom(ctx).Out))

	p := new(program)

	if r.Source != "" {
		var err error
		if p, err = load(ctx, r.Source, false, opts...); err != nil {
			return err
		}
	}

	session, err := lang.NewSession(ctx, p.tree, opts...)
	if err != nil {
		return p.fail(ctx, err)
	}

	log.DebugContext(ctx, "repl session",
		slog.String("source", r.Source),
		slog.String("history", r.History),
	)

	return repl.Run(ctx, session, r.History, log.Default())
}
