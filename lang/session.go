package lang

import (
	"context"
	"io"
	"iter"
	"log/slog"
	"strconv"
	"strings"
)

// Session evaluates statements and expressions one at a time against a
// persistent scope, for interactive use. Declarations made by one call to
// [Session.Eval] are visible to the next; a line that fails leaves the
// session unchanged.
type Session struct {
	types  *Scope
	values *Scope
	opts   options
}

// NewSession returns a session whose scope holds the fields and methods of
// src, or only the builtins if src is nil. Unlike [Analyze], src need not
// define main.
func NewSession(ctx context.Context, src *Source, opts ...Option) (*Session, error) {
	o := makeOptions(opts...)
	s := &Session{opts: o}

	if src == nil {
		src = &Source{}
	}

	a := analyzer{ctx: ctx, logger: o.logger}

	types, err := a.module(src, o.parent)
	if err != nil {
		return nil, err
	}

	in := interpreter{ctx: ctx, logger: o.logger}

	values, err := in.module(src, o)
	if err != nil {
		return nil, err
	}

	s.types, s.values = types, values

	o.logger.TraceContext(ctx, "session ready",
		slog.Int("field_count", len(src.Fields)),
		slog.Int("method_count", len(src.Methods)),
	)

	return s, nil
}

var statementKeywords = []string{"LET", "IF", "FOR", "WHILE", "RETURN"}

// IsStatement reports whether line should be read as a statement rather
// than an expression.
func IsStatement(line string) bool {
	line = strings.TrimSpace(line)

	if strings.HasSuffix(line, ";") {
		return true
	}

	for _, kw := range statementKeywords {
		if line == kw || strings.HasPrefix(line, kw+" ") {
			return true
		}
	}

	return false
}

// Eval runs one line of input. An expression yields its value and type.
// A declaration yields the value it bound; any other statement yields Nil.
func (s *Session) Eval(ctx context.Context, line string) (Value, *Type, error) {
	a := analyzer{ctx: ctx, logger: s.opts.logger}
	in := interpreter{ctx: ctx, logger: s.opts.logger}

	// Each line runs in a child scope adopted only on success, so a failed
	// line cannot leave half-defined symbols behind.
	types, values := NewScope(s.types), NewScope(s.values)

	if !IsStatement(line) {
		e, err := ParseExpression(ctx, line, WithLogger(s.opts.logger), WithCache(false))
		if err != nil {
			return nil, nil, err
		}

		if err := a.expression(types, e); err != nil {
			return nil, nil, err
		}

		v, err := in.eval(values, e)
		if err != nil {
			return nil, nil, err
		}

		return v, e.Type(), nil
	}

	stmt, err := ParseStatement(ctx, line, WithLogger(s.opts.logger), WithCache(false))
	if err != nil {
		return nil, nil, err
	}

	if err := a.statement(types, nil, stmt); err != nil {
		return nil, nil, err
	}

	if _, err := in.exec(values, stmt); err != nil {
		return nil, nil, err
	}

	s.types, s.values = types, values

	if d, ok := stmt.(*Declaration); ok {
		v, err := values.LookupVariable(d.Name)
		if err != nil {
			return nil, nil, err
		}

		return v.Value, v.Type, nil
	}

	return Nil{}, TypeNil, nil
}

// Run calls main() if the session defines it.
func (s *Session) Run(ctx context.Context) (Value, error) {
	main, err := s.values.LookupFunction("main", 0)
	if err != nil {
		return nil, err
	}

	in := interpreter{ctx: ctx, logger: s.opts.logger}

	return in.invoke(main, nil)
}

// Names iterates over every variable and function name visible in the
// session, most recent first.
func (s *Session) Names() iter.Seq[string] { return s.types.Visible() }

// Symbols iterates over a description of every visible variable, as
// "name: Type", and every visible function signature, most recent first.
func (s *Session) Symbols() iter.Seq[string] {
	return func(yield func(string) bool) {
		seen := make(map[string]struct{})

		for sc := s.types; sc != nil; sc = sc.Parent() {
			for v := range sc.Variables() {
				if !visit(seen, v.Name, v.Name+": "+v.Type.String(), yield) {
					return
				}
			}
		}

		for f := range s.Functions() {
			if !yield(f.Signature()) {
				return
			}
		}
	}
}

// Functions iterates over every visible function, most recent first.
// A function shadowed by a later one of the same name and arity is
// skipped.
func (s *Session) Functions() iter.Seq[*Function] {
	return func(yield func(*Function) bool) {
		seen := make(map[string]struct{})

		for sc := s.types; sc != nil; sc = sc.Parent() {
			for f := range sc.Functions() {
				key := f.Name + "/" + strconv.Itoa(f.Arity())
				if !visit(seen, key, f, yield) {
					return
				}
			}
		}
	}
}

func visit[T any](seen map[string]struct{}, key string, v T, yield func(T) bool) bool {
	if _, ok := seen[key]; ok {
		return true
	}

	seen[key] = struct{}{}

	return yield(v)
}

// SetStdout redirects the output of print for subsequent lines.
func (s *Session) SetStdout(w io.Writer) {
	if w == nil {
		w = io.Discard
	}

	s.opts.stdout = w

	// Shadow print in a new innermost scope; earlier bindings are kept.
	s.values = NewScope(s.values)
	definePrint(s.values, w)
}
