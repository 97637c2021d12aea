package lang

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/plc/log"
)

// Analyze resolves the types, variables and functions referenced by src,
// annotating the tree in place, and returns the module scope. It fails with
// an [ErrSemantic] or [ErrBinding] error on the first violated rule.
//
// The program must declare a method main with no parameters returning
// Integer; this is checked before any declaration is visited.
func Analyze(ctx context.Context, src *Source, opts ...Option) (*Scope, error) {
	o := makeOptions(opts...)
	a := analyzer{ctx: ctx, logger: o.logger}

	scope, err := a.source(src, o.parent)
	if err != nil {
		o.logger.TraceContext(ctx, "analyze failed", slog.Any("error", err))

		return nil, err
	}

	o.logger.TraceContext(ctx, "analyze complete",
		slog.Int("field_count", len(src.Fields)),
		slog.Int("method_count", len(src.Methods)),
	)

	return scope, nil
}

type analyzer struct {
	ctx    context.Context
	logger log.Logger
}

// frame describes the method enclosing the statements being analyzed.
// A nil frame means statements are outside any method.
type frame struct {
	returns *Type
	name    string
}

func (a *analyzer) source(src *Source, parent *Scope) (*Scope, error) {
	main, ok := src.Method("main", 0)
	if !ok {
		return nil, ErrSemantic.
			Because("program must define main() with no parameters").
			With(slog.String("name", "main"), slog.Int("arity", 0))
	}

	if main.ReturnType != TypeInteger.Name {
		return nil, ErrSemantic.
			Because("main() must return %s", TypeInteger).
			With(slog.String("returns", main.ReturnType))
	}

	return a.module(src, parent)
}

// module analyzes the fields and methods of src in a new scope nested in
// parent.
func (a *analyzer) module(src *Source, parent *Scope) (*Scope, error) {
	scope := NewScope(parent)
	definePrint(scope, io.Discard)

	for _, f := range src.Fields {
		if err := a.field(scope, f); err != nil {
			return nil, err
		}
	}

	for _, m := range src.Methods {
		if err := a.method(scope, m); err != nil {
			return nil, err
		}
	}

	return scope, nil
}

func (a *analyzer) field(scope *Scope, f *Field) error {
	declared, err := LookupType(f.TypeName)
	if err != nil {
		return err
	}

	if f.Value != nil {
		if err := a.expression(scope, f.Value); err != nil {
			return err
		}

		if err := Assignable(declared, f.Value.Type()); err != nil {
			return WrapError(err).With(slog.String("field", f.Name))
		}
	}

	f.Variable, err = scope.DefineVariable(f.Name, f.Name, declared, Nil{})

	return err
}

func (a *analyzer) method(scope *Scope, m *Method) error {
	a.logger.TraceContext(a.ctx, "analyze method",
		slog.String("name", m.Name),
		slog.Int("arity", len(m.Params)),
	)

	params := make([]*Type, len(m.ParamTypes))

	for i, name := range m.ParamTypes {
		t, err := LookupType(name)
		if err != nil {
			return WrapError(err).With(slog.String("method", m.Name))
		}

		params[i] = t
	}

	returns := TypeNil

	if m.ReturnType != "" {
		t, err := LookupType(m.ReturnType)
		if err != nil {
			return WrapError(err).With(slog.String("method", m.Name))
		}

		returns = t
	}

	var err error

	// Registered before the body so the method can call itself.
	if m.Function, err = scope.DefineFunction(m.Name, m.Name, params, returns, nil); err != nil {
		return err
	}

	body := NewScope(scope)

	for i, name := range m.Params {
		if _, err := body.DefineVariable(name, name, params[i], Nil{}); err != nil {
			return err
		}
	}

	return a.statements(body, &frame{name: m.Name, returns: returns}, m.Body)
}

func (a *analyzer) statements(scope *Scope, fr *frame, body []Stmt) error {
	for _, s := range body {
		if err := a.statement(scope, fr, s); err != nil {
			return err
		}
	}

	return nil
}

func (a *analyzer) statement(scope *Scope, fr *frame, s Stmt) error {
	switch s := s.(type) {
	case *ExprStmt:
		if _, ok := s.Expr.(*Call); !ok {
			return ErrSemantic.Because("expression statement must be a function call")
		}

		return a.expression(scope, s.Expr)

	case *Declaration:
		return a.declaration(scope, s)

	case *Assignment:
		return a.assignment(scope, s)

	case *If:
		return a.ifStatement(scope, fr, s)

	case *For:
		return a.forStatement(scope, fr, s)

	case *While:
		if err := a.expression(scope, s.Cond); err != nil {
			return err
		}

		if err := Assignable(TypeBoolean, s.Cond.Type()); err != nil {
			return WrapError(err).With(slog.String("statement", "WHILE"))
		}

		return a.statements(NewScope(scope), fr, s.Body)

	case *Return:
		if fr == nil {
			return ErrSemantic.Because("RETURN outside of a method")
		}

		if err := a.expression(scope, s.Value); err != nil {
			return err
		}

		if err := Assignable(fr.returns, s.Value.Type()); err != nil {
			return WrapError(err).With(slog.String("method", fr.name))
		}

		return nil

	default:
		return ErrSemantic.Because("unsupported statement %T", s)
	}
}

func (a *analyzer) declaration(scope *Scope, d *Declaration) error {
	if d.TypeName == "" && d.Value == nil {
		return ErrSemantic.
			Because("cannot infer type of %q without a type or initial value", d.Name).
			With(slog.String("name", d.Name))
	}

	var typ *Type

	if d.TypeName != "" {
		t, err := LookupType(d.TypeName)
		if err != nil {
			return err
		}

		typ = t
	}

	if d.Value != nil {
		if err := a.expression(scope, d.Value); err != nil {
			return err
		}

		if typ == nil {
			typ = d.Value.Type()
		}

		if err := Assignable(typ, d.Value.Type()); err != nil {
			return WrapError(err).With(slog.String("name", d.Name))
		}
	}

	var err error

	d.Variable, err = scope.DefineVariable(d.Name, d.Name, typ, Nil{})

	return err
}

func (a *analyzer) assignment(scope *Scope, s *Assignment) error {
	if _, ok := s.Receiver.(*Access); !ok {
		return ErrSemantic.Because("assignment target must be a variable or field")
	}

	if err := a.expression(scope, s.Receiver); err != nil {
		return err
	}

	if err := a.expression(scope, s.Value); err != nil {
		return err
	}

	return Assignable(s.Receiver.Type(), s.Value.Type())
}

func (a *analyzer) ifStatement(scope *Scope, fr *frame, s *If) error {
	if err := a.expression(scope, s.Cond); err != nil {
		return err
	}

	if s.Cond.Type() != TypeBoolean {
		return ErrSemantic.
			Because("IF condition must be %s, got %s", TypeBoolean, s.Cond.Type())
	}

	if len(s.Then) == 0 {
		return ErrSemantic.Because("IF must have at least one statement")
	}

	if err := a.statements(NewScope(scope), fr, s.Then); err != nil {
		return err
	}

	return a.statements(NewScope(scope), fr, s.Else)
}

func (a *analyzer) forStatement(scope *Scope, fr *frame, s *For) error {
	if err := a.expression(scope, s.Iterable); err != nil {
		return err
	}

	if s.Iterable.Type() != TypeIntegerIterable {
		return ErrSemantic.
			Because("FOR requires %s, got %s", TypeIntegerIterable, s.Iterable.Type())
	}

	if len(s.Body) == 0 {
		return ErrSemantic.Because("FOR must have at least one statement")
	}

	body := NewScope(scope)

	if _, err := body.DefineVariable(s.Name, s.Name, TypeInteger, Nil{}); err != nil {
		return err
	}

	return a.statements(body, fr, s.Body)
}

func (a *analyzer) expression(scope *Scope, e Expr) error {
	switch e := e.(type) {
	case *Literal:
		return a.literal(e)

	case *Group:
		if _, ok := e.Inner.(*Binary); !ok {
			return ErrSemantic.Because("parentheses must enclose a binary expression")
		}

		if err := a.expression(scope, e.Inner); err != nil {
			return err
		}

		e.setType(e.Inner.Type())

		return nil

	case *Binary:
		return a.binary(scope, e)

	case *Access:
		return a.access(scope, e)

	case *Call:
		return a.call(scope, e)

	default:
		return ErrSemantic.Because("unsupported expression %T", e)
	}
}

func (a *analyzer) literal(e *Literal) error {
	switch v := e.Value.(type) {
	case Int:
		if !fitsInt32(v) {
			return ErrSemantic.
				Because("integer literal %s out of 32-bit range", v).
				With(slog.String("literal", v.String()))
		}

	case Decimal:
		if !fitsFloat64(v) {
			return ErrSemantic.
				Because("decimal literal %s out of 64-bit floating-point range", v).
				With(slog.String("literal", v.String()))
		}

	case nil:
		return ErrSemantic.Because("literal has no value")
	}

	e.setType(e.Value.Type())

	return nil
}

func (a *analyzer) binary(scope *Scope, e *Binary) error {
	if err := a.expression(scope, e.Left); err != nil {
		return err
	}

	if err := a.expression(scope, e.Right); err != nil {
		return err
	}

	left, right := e.Left.Type(), e.Right.Type()

	operandError := func(err error) error {
		return WrapError(err).With(slog.String("operator", e.Op))
	}

	switch e.Op {
	case "AND", "OR":
		if err := Assignable(TypeBoolean, left); err != nil {
			return operandError(err)
		}

		if err := Assignable(TypeBoolean, right); err != nil {
			return operandError(err)
		}

		e.setType(TypeBoolean)

	case "<", "<=", ">", ">=", "==", "!=":
		for _, check := range [][2]*Type{
			{TypeComparable, left},
			{TypeComparable, right},
			{left, right},
			{right, left},
		} {
			if err := Assignable(check[0], check[1]); err != nil {
				return operandError(err)
			}
		}

		e.setType(TypeBoolean)

	case "+":
		if left == TypeString || right == TypeString {
			e.setType(TypeString)

			return nil
		}

		fallthrough

	case "-", "*", "/":
		if left != TypeInteger && left != TypeDecimal {
			return ErrSemantic.
				Because("operator %s requires %s or %s operands, got %s",
					e.Op, TypeInteger, TypeDecimal, left).
				With(slog.String("operator", e.Op))
		}

		if err := Assignable(left, right); err != nil {
			return operandError(err)
		}

		e.setType(left)

	default:
		return ErrSemantic.
			Because("unknown operator %q", e.Op).
			With(slog.String("operator", e.Op))
	}

	return nil
}

// members returns the member scope of the type of a receiver expression.
func members(receiver Expr) (*Scope, error) {
	t := receiver.Type()
	if t == nil || t.Members == nil {
		return nil, ErrSemantic.
			Because("type %s has no members", t).
			With(slog.String("type", t.String()))
	}

	return t.Members, nil
}

func (a *analyzer) access(scope *Scope, e *Access) error {
	lookup := scope

	if e.Receiver != nil {
		if err := a.expression(scope, e.Receiver); err != nil {
			return err
		}

		m, err := members(e.Receiver)
		if err != nil {
			return err
		}

		lookup = m
	}

	v, err := lookup.LookupVariable(e.Name)
	if err != nil {
		return err
	}

	e.Variable = v
	e.setType(v.Type)

	return nil
}

func (a *analyzer) call(scope *Scope, e *Call) error {
	lookup, arity, offset := scope, len(e.Args), 0

	if e.Receiver != nil {
		if err := a.expression(scope, e.Receiver); err != nil {
			return err
		}

		m, err := members(e.Receiver)
		if err != nil {
			return err
		}

		lookup, arity, offset = m, arity+1, 1
	}

	f, err := lookup.LookupFunction(e.Name, arity)
	if err != nil {
		return err
	}

	if f.Arity() != arity {
		return ErrSemantic.
			Because("%s expects %d arguments, got %d", f.Name, f.Arity()-offset, len(e.Args)).
			With(slog.String("name", f.Name), slog.Int("arity", f.Arity()))
	}

	for i, arg := range e.Args {
		if err := a.expression(scope, arg); err != nil {
			return err
		}

		if err := Assignable(f.Params[i+offset], arg.Type()); err != nil {
			return WrapError(err).
				With(slog.String("name", f.Name), slog.Int("argument", i))
		}
	}

	e.Function = f
	e.setType(f.Returns)

	return nil
}
