package lang

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const indentUnit = "    "

// GenerateString renders an analyzed program as Java source text.
func GenerateString(ctx context.Context, src *Source, opts ...Option) (string, error) {
	var b strings.Builder

	if err := Generate(ctx, &b, src, opts...); err != nil {
		return "", err
	}

	return b.String(), nil
}

// Generate writes an analyzed program to w as a Java class named Main whose
// process entry point exits with the result of main().
//
// String literals are written in double quotes and Character literals in
// single quotes, since a double-quoted literal is not a Java char.
//
// Only attributes resolved by [Analyze] are used; a tree that has not been
// analyzed fails with an [ErrSemantic] error.
func Generate(ctx context.Context, w io.Writer, src *Source, opts ...Option) error {
	o := makeOptions(opts...)
	g := generator{w: w}

	g.source(src)

	if g.err != nil {
		o.logger.TraceContext(ctx, "generate failed", slog.Any("error", g.err))

		return g.err
	}

	o.logger.TraceContext(ctx, "generate complete",
		slog.Int("field_count", len(src.Fields)),
		slog.Int("method_count", len(src.Methods)),
	)

	return nil
}

// generator writes indented lines to w. The first error is kept and every
// later write is skipped.
type generator struct {
	w       io.Writer
	err     error
	methods map[*Function]struct{}
	returns *Type
	indent  int
}

func (g *generator) fail(err error) {
	if g.err == nil {
		g.err = err
	}
}

func (g *generator) line(text string) {
	if g.err != nil {
		return
	}

	if text == "" {
		_, g.err = io.WriteString(g.w, "\n")
	} else {
		_, g.err = fmt.Fprintf(g.w, "%s%s\n", strings.Repeat(indentUnit, g.indent), text)
	}

	if g.err != nil {
		g.err = ErrRuntime.Because("write generated source").Wrap(g.err)
	}
}

func notAnalyzed(what, name string) error {
	return ErrSemantic.
		Because("%s %q has not been analyzed", what, name).
		With(slog.String("name", name))
}

func (g *generator) source(src *Source) {
	g.methods = make(map[*Function]struct{}, len(src.Methods))

	for _, m := range src.Methods {
		if m.Function != nil {
			g.methods[m.Function] = struct{}{}
		}
	}

	g.line("public class Main {")
	g.line("")
	g.indent++

	for _, f := range src.Fields {
		g.field(f)
	}

	if len(src.Fields) > 0 {
		g.line("")
	}

	g.line("public static void main(String[] args) {")
	g.indent++
	g.line("System.exit(new Main().main());")
	g.indent--
	g.line("}")
	g.line("")

	for _, m := range src.Methods {
		g.method(m)
		g.line("")
	}

	g.indent--
	g.line("}")
}

func (g *generator) field(f *Field) {
	if f.Variable == nil || f.Variable.Type == nil {
		g.fail(notAnalyzed("field", f.Name))

		return
	}

	text := f.Variable.Type.Emit + " " + f.Variable.Emit

	if f.Value != nil {
		text += " = " + g.expr(f.Value)
	}

	g.line(text + ";")
}

func (g *generator) method(m *Method) {
	fn := m.Function
	if fn == nil {
		g.fail(notAnalyzed("method", m.Name))

		return
	}

	g.returns = fn.Returns
	defer func() { g.returns = nil }()

	returns := fn.Returns.Emit
	if fn.Returns == TypeNil {
		returns = "void"
	}

	params := make([]string, len(m.Params))
	for i, name := range m.Params {
		params[i] = fn.Params[i].Emit + " " + name
	}

	g.block(fmt.Sprintf("%s %s(%s) {", returns, fn.Emit, strings.Join(params, ", ")),
		m.Body, "}")
}

// block writes header, then body one level deeper, then footer. An empty
// body closes on the header line.
func (g *generator) block(header string, body []Stmt, footer string) {
	if len(body) == 0 {
		g.line(header + footer)

		return
	}

	g.line(header)
	g.indent++

	for _, s := range body {
		g.statement(s)
	}

	g.indent--
	g.line(footer)
}

func (g *generator) statement(s Stmt) {
	switch s := s.(type) {
	case *ExprStmt:
		g.line(g.expr(s.Expr) + ";")

	case *Declaration:
		if s.Variable == nil || s.Variable.Type == nil {
			g.fail(notAnalyzed("variable", s.Name))

			return
		}

		text := s.Variable.Type.Emit + " " + s.Variable.Emit

		if s.Value != nil {
			text += " = " + g.expr(s.Value)
		}

		g.line(text + ";")

	case *Assignment:
		g.line(g.expr(s.Receiver) + " = " + g.expr(s.Value) + ";")

	case *If:
		header := "if (" + g.expr(s.Cond) + ") {"

		if len(s.Else) == 0 {
			g.block(header, s.Then, "}")

			return
		}

		g.block(header, s.Then, "} else {")
		g.indent++

		for _, e := range s.Else {
			g.statement(e)
		}

		g.indent--
		g.line("}")

	case *For:
		g.block(fmt.Sprintf("for (%s %s : %s) {", TypeInteger.Emit, s.Name, g.expr(s.Iterable)),
			s.Body, "}")

	case *While:
		g.block("while ("+g.expr(s.Cond)+") {", s.Body, "}")

	case *Return:
		if g.returns != TypeNil {
			g.line("return " + g.expr(s.Value) + ";")

			return
		}

		// A void method cannot return a value. Calls are kept for their
		// side effects.
		if _, ok := s.Value.(*Call); ok {
			g.line(g.expr(s.Value) + ";")
		}

		g.line("return;")

	default:
		g.fail(ErrSemantic.Because("unsupported statement %T", s))
	}
}

func (g *generator) expr(e Expr) string {
	switch e := e.(type) {
	case *Literal:
		return literal(e.Value)

	case *Group:
		return "(" + g.expr(e.Inner) + ")"

	case *Binary:
		op := e.Op

		switch op {
		case "AND":
			op = "&&"
		case "OR":
			op = "||"
		}

		return g.expr(e.Left) + " " + op + " " + g.expr(e.Right)

	case *Access:
		if e.Variable == nil {
			g.fail(notAnalyzed("access", e.Name))

			return ""
		}

		return g.receiver(e.Receiver) + e.Variable.Emit

	case *Call:
		if e.Function == nil {
			g.fail(notAnalyzed("call", e.Name))

			return ""
		}

		args := make([]string, len(e.Args))
		for i, arg := range e.Args {
			args[i] = g.expr(arg)
		}

		call := g.receiver(e.Receiver) + e.Function.Emit + "(" + strings.Join(args, ", ") + ")"

		// Builtins yielding an IntegerIterable return a Java stream, which
		// is adapted to the Iterable<Integer> the type emits as.
		if _, ok := g.methods[e.Function]; !ok && e.Function.Returns == TypeIntegerIterable {
			return "((" + TypeIntegerIterable.Emit + ") " + call + "::iterator)"
		}

		return call

	default:
		g.fail(ErrSemantic.Because("unsupported expression %T", e))

		return ""
	}
}

func (g *generator) receiver(e Expr) string {
	if e == nil {
		return ""
	}

	return g.expr(e) + "."
}

var (
	stringEscaper = strings.NewReplacer(
		`\`, `\\`, `"`, `\"`, "\b", `\b`, "\n", `\n`, "\r", `\r`, "\t", `\t`,
	)
	charEscaper = strings.NewReplacer(
		`\`, `\\`, `'`, `\'`, "\b", `\b`, "\n", `\n`, "\r", `\r`, "\t", `\t`,
	)
)

func literal(v Value) string {
	switch v := v.(type) {
	case Str:
		return `"` + stringEscaper.Replace(string(v)) + `"`
	case Char:
		return `'` + charEscaper.Replace(string(v)) + `'`
	case Decimal:
		return v.Plain()
	case nil:
		return Nil{}.String()
	default:
		return v.String()
	}
}
