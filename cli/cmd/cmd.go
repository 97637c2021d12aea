package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/plc/lang"
	"github.com/ardnew/plc/log"
)

// Streams are the standard streams of a command.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type (
	streamsKey    struct{}
	searchPathKey struct{}
)

// WithStreams returns a context whose commands use s in place of the
// process streams. Nil members keep their defaults.
func WithStreams(ctx context.Context, s Streams) context.Context {
	return context.WithValue(ctx, streamsKey{}, s)
}

func streamsFrom(ctx context.Context) Streams {
	s, _ := ctx.Value(streamsKey{}).(Streams)

	if s.In == nil {
		s.In = os.Stdin
	}

	if s.Out == nil {
		s.Out = os.Stdout
	}

	if s.Err == nil {
		s.Err = os.Stderr
	}

	return s
}

// WithSearchPath returns a context whose commands look for relative source
// names in dirs when they are not found in the working directory.
func WithSearchPath(ctx context.Context, dirs []string) context.Context {
	return context.WithValue(ctx, searchPathKey{}, dirs)
}

func searchPathFrom(ctx context.Context) []string {
	dirs, _ := ctx.Value(searchPathKey{}).([]string)

	return dirs
}

// stdinSource names standard input as a source.
const stdinSource = "-"

// source is the text of a program and the name it was loaded from.
type source struct {
	name string
	text string
}

func openSource(ctx context.Context, name string) (source, error) {
	if name == stdinSource {
		buf, err := io.ReadAll(streamsFrom(ctx).In)
		if err != nil {
			return source{}, ErrOpenSource.Wrap(err).With(slog.String("source", "<stdin>"))
		}

		return source{name: "<stdin>", text: string(buf)}, nil
	}

	path, err := locate(name, searchPathFrom(ctx))
	if err != nil {
		return source{}, err
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return source{}, ErrOpenSource.Wrap(err).With(slog.String("source", path))
	}

	log.TraceContext(ctx, "source loaded",
		slog.String("source", path),
		slog.Int("size", len(buf)),
	)

	return source{name: path, text: string(buf)}, nil
}

// locate resolves name against the working directory and then each
// directory of the search path, in order.
func locate(name string, dirs []string) (string, error) {
	if _, err := os.Stat(name); err == nil || filepath.IsAbs(name) {
		return name, nil
	}

	for _, dir := range dirs {
		path := filepath.Join(dir, name)

		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}

	return "", ErrOpenSource.Wrap(fs.ErrNotExist).With(
		slog.String("source", name),
		slog.Any("search_path", dirs),
	)
}

// program is a parsed, and possibly analyzed, source.
type program struct {
	source

	tree  *lang.Source
	scope *lang.Scope
}

// pipeline returns the options shared by every stage of one command.
func pipeline(library bool, opts ...lang.Option) []lang.Option {
	base := []lang.Option{lang.WithLogger(log.Default())}

	if library {
		base = append(base, lang.WithParent(lang.Library()))
	}

	return append(base, opts...)
}

func load(ctx context.Context, name string, analyze bool, opts ...lang.Option) (*program, error) {
	s, err := openSource(ctx, name)
	if err != nil {
		return nil, err
	}

	p := &program{source: s}

	p.tree, err = lang.ParseString(ctx, s.text, opts...)
	if err != nil {
		return nil, p.fail(ctx, err)
	}

	if analyze {
		p.scope, err = lang.Analyze(ctx, p.tree, opts...)
		if err != nil {
			return nil, p.fail(ctx, err)
		}
	}

	return p, nil
}

// fail reports a pipeline error against the source it came from.
func (s source) fail(ctx context.Context, err error) error {
	var lerr *lang.Error
	if !errors.As(err, &lerr) {
		return err
	}

	diagnose(streamsFrom(ctx).Err, s, lerr)

	return lerr.With(slog.String("source", s.name))
}

// diagnose writes err with a caret under its position in s. Color is used
// only when w is a terminal.
func diagnose(w io.Writer, s source, err *lang.Error) {
	r := lipgloss.NewRenderer(w)
	name := r.NewStyle().Bold(true)
	kind := r.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))

	fmt.Fprintf(w, "%s: %s\n", name.Render(s.name), kind.Render(err.Error()))

	if caret := err.Caret(s.text); caret != "" {
		fmt.Fprint(w, caret)
	}
}
