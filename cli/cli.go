package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/plc/cli/cmd"
	"github.com/ardnew/plc/log"
	"github.com/ardnew/plc/pkg"
)

// CLI is the top-level command-line interface for plc.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Path    []string         `help:"Directory searched for source files; may be repeated. Searched before the directories listed in ${pathEnv}." placeholder:"DIR" short:"I" type:"path"`
	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Run    cmd.Run    `cmd:"" default:"withargs" help:"Run a program and exit with the result of main."`
	Gen    cmd.Gen    `cmd:""                    help:"Translate a program to Java."`
	Check  cmd.Check  `cmd:""                    help:"Analyze a program and list its declarations."`
	Tokens cmd.Tokens `cmd:""                    help:"List the tokens of a program."`
	AST    cmd.AST    `cmd:"" name:"ast"         help:"Print the syntax tree of a program."`
	Repl   cmd.Repl   `cmd:""                    help:"Start an interactive session."`
}

// Run executes the plc CLI with the given context and arguments. The exit
// function is called for help and version output, and with the status of a
// program run by the run command.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	vars := kong.Vars{
		cmd.ConfigIdentifier: configPath(baseConfig),
		cmd.CacheIdentifier:  pkg.CacheDir(),
		"version":            pkg.Name + " " + pkg.Version,
		"pathEnv":            searchPathEnv(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configPath(baseConfig+".json")),
		kong.Configuration(resolve(ctx, baseConfig), configPath(baseConfig+".yaml")),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithSearchPath(ctx, searchPath(os.Getenv(searchPathEnv()), cli.Path))

	// Boolean and layout flags are only applied once parsing completes.
	cli.Log.start(ctx)

	stop := cli.Pprof.start(ctx)
	err = ktx.Run()

	stop()

	var status cmd.ExitStatus
	if errors.As(err, &status) {
		log.DebugContext(ctx, "exit", slog.Int("status", int(status)))
		exit(int(status))

		return nil
	}

	return err
}
