package lang

import (
	"fmt"
	"io"
	"strings"
)

// Print writes an indented outline of the tree to w, one node per line.
// Expressions are annotated with their type once analyzed.
func (s *Source) Print(w io.Writer) error {
	p := printer{w: w}
	p.source(s)

	return p.err
}

type printer struct {
	w      io.Writer
	err    error
	indent int
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}

	_, p.err = fmt.Fprintf(p.w, "%s%s\n",
		strings.Repeat("  ", p.indent), fmt.Sprintf(format, args...))
}

func (p *printer) nested(label string, fn func()) {
	p.printf("%s", label)
	p.indent++
	fn()
	p.indent--
}

func (p *printer) source(s *Source) {
	p.nested("Source", func() {
		for _, f := range s.Fields {
			p.nested(fmt.Sprintf("Field %s: %s", f.Name, f.TypeName), func() {
				if f.Value != nil {
					p.expr(f.Value)
				}
			})
		}

		for _, m := range s.Methods {
			p.method(m)
		}
	})
}

func (p *printer) method(m *Method) {
	params := make([]string, len(m.Params))
	for i, name := range m.Params {
		params[i] = name + ": " + m.ParamTypes[i]
	}

	label := fmt.Sprintf("Method %s(%s)", m.Name, strings.Join(params, ", "))
	if m.ReturnType != "" {
		label += ": " + m.ReturnType
	}

	p.nested(label, func() { p.stmts(m.Body) })
}

func (p *printer) stmts(body []Stmt) {
	for _, s := range body {
		p.stmt(s)
	}
}

func (p *printer) stmt(s Stmt) {
	switch s := s.(type) {
	case *ExprStmt:
		p.nested("Expression", func() { p.expr(s.Expr) })

	case *Declaration:
		label := "Declaration " + s.Name
		if s.TypeName != "" {
			label += ": " + s.TypeName
		}

		p.nested(label, func() {
			if s.Value != nil {
				p.expr(s.Value)
			}
		})

	case *Assignment:
		p.nested("Assignment", func() {
			p.expr(s.Receiver)
			p.expr(s.Value)
		})

	case *If:
		p.nested("If", func() {
			p.expr(s.Cond)
			p.nested("Then", func() { p.stmts(s.Then) })

			if len(s.Else) > 0 {
				p.nested("Else", func() { p.stmts(s.Else) })
			}
		})

	case *For:
		p.nested("For "+s.Name, func() {
			p.expr(s.Iterable)
			p.nested("Do", func() { p.stmts(s.Body) })
		})

	case *While:
		p.nested("While", func() {
			p.expr(s.Cond)
			p.nested("Do", func() { p.stmts(s.Body) })
		})

	case *Return:
		p.nested("Return", func() { p.expr(s.Value) })
	}
}

func (p *printer) expr(e Expr) {
	suffix := ""
	if t := e.Type(); t != nil {
		suffix = " : " + t.Name
	}

	switch e := e.(type) {
	case *Literal:
		p.printf("Literal %s%s", literal(e.Value), suffix)

	case *Group:
		p.nested("Group"+suffix, func() { p.expr(e.Inner) })

	case *Binary:
		p.nested("Binary "+e.Op+suffix, func() {
			p.expr(e.Left)
			p.expr(e.Right)
		})

	case *Access:
		if e.Receiver == nil {
			p.printf("Access %s%s", e.Name, suffix)

			return
		}

		p.nested("Access ."+e.Name+suffix, func() { p.expr(e.Receiver) })

	case *Call:
		p.nested(fmt.Sprintf("Call %s/%d%s", e.Name, len(e.Args), suffix), func() {
			if e.Receiver != nil {
				p.nested("Receiver", func() { p.expr(e.Receiver) })
			}

			for _, arg := range e.Args {
				p.expr(arg)
			}
		})
	}
}
