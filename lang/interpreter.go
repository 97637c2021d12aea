package lang

import (
	"context"
	"log/slog"

	"github.com/ardnew/plc/log"
)

// Interpret registers the fields and methods of src in a fresh module scope,
// evaluating field initializers in declaration order, and returns the result
// of calling main().
//
// Interpretation reads the variables and types resolved by [Analyze] where
// present, so src should be analyzed first with the same parent scope.
func Interpret(ctx context.Context, src *Source, opts ...Option) (Value, error) {
	o := makeOptions(opts...)
	in := interpreter{ctx: ctx, logger: o.logger}

	scope, err := in.module(src, o)
	if err != nil {
		o.logger.TraceContext(ctx, "interpret failed", slog.Any("error", err))

		return nil, err
	}

	main, err := scope.LookupFunction("main", 0)
	if err != nil {
		return nil, err
	}

	result, err := in.invoke(main, nil)
	if err != nil {
		o.logger.TraceContext(ctx, "interpret failed", slog.Any("error", err))

		return nil, err
	}

	o.logger.TraceContext(ctx, "interpret complete",
		slog.String("type", result.Type().String()),
		slog.String("result", result.String()),
	)

	return result, nil
}

type interpreter struct {
	ctx    context.Context
	logger log.Logger
}

// completion is the outcome of executing a statement. A returned
// completion unwinds to the nearest method invocation.
type completion struct {
	value    Value
	returned bool
}

func (in *interpreter) module(src *Source, o options) (*Scope, error) {
	scope := NewScope(o.parent)
	definePrint(scope, o.stdout)

	for _, f := range src.Fields {
		if err := in.field(scope, f); err != nil {
			return nil, err
		}
	}

	for _, m := range src.Methods {
		if err := in.method(scope, m); err != nil {
			return nil, err
		}
	}

	return scope, nil
}

func (in *interpreter) field(scope *Scope, f *Field) error {
	var value Value = Nil{}

	if f.Value != nil {
		v, err := in.eval(scope, f.Value)
		if err != nil {
			return err
		}

		value = v
	}

	typ := declaredType(f.Variable, f.TypeName, value)

	_, err := scope.DefineVariable(f.Name, f.Name, typ, value)

	return err
}

// declaredType prefers the analyzed type, then the named type, then the
// type of the value itself.
func declaredType(v *Variable, name string, value Value) *Type {
	if v != nil && v.Type != nil {
		return v.Type
	}

	if name != "" {
		if t, err := LookupType(name); err == nil {
			return t
		}
	}

	return value.Type()
}

func (in *interpreter) method(scope *Scope, m *Method) error {
	params := make([]*Type, len(m.Params))
	returns := TypeNil

	if m.Function != nil {
		params, returns = m.Function.Params, m.Function.Returns
	} else {
		for i := range params {
			params[i] = TypeAny
		}
	}

	_, err := scope.DefineFunction(m.Name, m.Name, params, returns,
		func(args []Value) (Value, error) {
			body := NewScope(scope)

			for i, name := range m.Params {
				if _, err := body.DefineVariable(name, name, params[i], args[i]); err != nil {
					return nil, err
				}
			}

			c, err := in.block(body, m.Body)
			if err != nil {
				return nil, err
			}

			if c.returned {
				return c.value, nil
			}

			return Nil{}, nil
		},
	)

	return err
}

func (in *interpreter) invoke(f *Function, args []Value) (Value, error) {
	in.logger.TraceContext(in.ctx, "interpret call",
		slog.String("name", f.Name),
		slog.Int("arity", f.Arity()),
	)

	if f.Invoke == nil {
		return nil, ErrRuntime.
			Because("function %s/%d has no implementation", f.Name, f.Arity()).
			With(slog.String("name", f.Name), slog.Int("arity", f.Arity()))
	}

	if len(args) != f.Arity() {
		return nil, ErrRuntime.
			Because("%s expects %d arguments, got %d", f.Name, f.Arity(), len(args)).
			With(slog.String("name", f.Name), slog.Int("arity", f.Arity()))
	}

	return f.Invoke(args)
}

// block executes body in scope, stopping at the first returned completion.
func (in *interpreter) block(scope *Scope, body []Stmt) (completion, error) {
	for _, s := range body {
		c, err := in.exec(scope, s)
		if err != nil || c.returned {
			return c, err
		}
	}

	return completion{}, nil
}

func (in *interpreter) exec(scope *Scope, s Stmt) (completion, error) {
	switch s := s.(type) {
	case *ExprStmt:
		_, err := in.eval(scope, s.Expr)

		return completion{}, err

	case *Declaration:
		var value Value = Nil{}

		if s.Value != nil {
			v, err := in.eval(scope, s.Value)
			if err != nil {
				return completion{}, err
			}

			value = v
		}

		_, err := scope.DefineVariable(s.Name, s.Name,
			declaredType(s.Variable, s.TypeName, value), value)

		return completion{}, err

	case *Assignment:
		return completion{}, in.assign(scope, s)

	case *If:
		cond, err := in.condition(scope, s.Cond, "IF")
		if err != nil {
			return completion{}, err
		}

		if cond {
			return in.block(NewScope(scope), s.Then)
		}

		return in.block(NewScope(scope), s.Else)

	case *For:
		return in.forStatement(scope, s)

	case *While:
		for {
			if err := in.canceled(); err != nil {
				return completion{}, err
			}

			cond, err := in.condition(scope, s.Cond, "WHILE")
			if err != nil || !cond {
				return completion{}, err
			}

			c, err := in.block(NewScope(scope), s.Body)
			if err != nil || c.returned {
				return c, err
			}
		}

	case *Return:
		v, err := in.eval(scope, s.Value)
		if err != nil {
			return completion{}, err
		}

		return completion{returned: true, value: v}, nil

	default:
		return completion{}, ErrRuntime.Because("unsupported statement %T", s)
	}
}

func (in *interpreter) canceled() error {
	if err := context.Cause(in.ctx); err != nil {
		return ErrRuntime.Because("interrupted").Wrap(err)
	}

	return nil
}

func (in *interpreter) forStatement(scope *Scope, s *For) (completion, error) {
	v, err := in.eval(scope, s.Iterable)
	if err != nil {
		return completion{}, err
	}

	it, ok := v.(Iterable)
	if !ok {
		return completion{}, ErrRuntime.
			Because("FOR requires %s, got %s", TypeIntegerIterable, v.Type())
	}

	for elem := range it.All() {
		if err := in.canceled(); err != nil {
			return completion{}, err
		}

		body := NewScope(scope)

		if _, err := body.DefineVariable(s.Name, s.Name, TypeInteger, elem); err != nil {
			return completion{}, err
		}

		c, err := in.block(body, s.Body)
		if err != nil || c.returned {
			return c, err
		}
	}

	return completion{}, nil
}

func (in *interpreter) condition(scope *Scope, e Expr, what string) (bool, error) {
	v, err := in.eval(scope, e)
	if err != nil {
		return false, err
	}

	b, ok := v.(Bool)
	if !ok {
		return false, ErrRuntime.
			Because("%s condition must be %s, got %s", what, TypeBoolean, v.Type())
	}

	return bool(b), nil
}

func (in *interpreter) assign(scope *Scope, s *Assignment) error {
	target, ok := s.Receiver.(*Access)
	if !ok {
		return ErrRuntime.Because("assignment target must be a variable or field")
	}

	lookup := scope

	if target.Receiver != nil {
		recv, err := in.eval(scope, target.Receiver)
		if err != nil {
			return err
		}

		if lookup = recv.Scope(); lookup == nil {
			return receiverError(target.Name, recv)
		}
	}

	v, err := lookup.LookupVariable(target.Name)
	if err != nil {
		return err
	}

	value, err := in.eval(scope, s.Value)
	if err != nil {
		return err
	}

	v.Value = value

	return nil
}

func (in *interpreter) eval(scope *Scope, e Expr) (Value, error) {
	switch e := e.(type) {
	case *Literal:
		if e.Value == nil {
			return Nil{}, nil
		}

		return e.Value, nil

	case *Group:
		return in.eval(scope, e.Inner)

	case *Binary:
		return in.binary(scope, e)

	case *Access:
		lookup := scope

		if e.Receiver != nil {
			recv, err := in.eval(scope, e.Receiver)
			if err != nil {
				return nil, err
			}

			if lookup = recv.Scope(); lookup == nil {
				return nil, receiverError(e.Name, recv)
			}
		}

		v, err := lookup.LookupVariable(e.Name)
		if err != nil {
			return nil, err
		}

		return v.Value, nil

	case *Call:
		return in.call(scope, e)

	default:
		return nil, ErrRuntime.Because("unsupported expression %T", e)
	}
}

func (in *interpreter) call(scope *Scope, e *Call) (Value, error) {
	lookup := scope
	args := make([]Value, 0, len(e.Args)+1)

	if e.Receiver != nil {
		recv, err := in.eval(scope, e.Receiver)
		if err != nil {
			return nil, err
		}

		if lookup = recv.Scope(); lookup == nil {
			return nil, receiverError(e.Name, recv)
		}

		args = append(args, recv)
	}

	f, err := lookup.LookupFunction(e.Name, len(e.Args)+len(args))
	if err != nil {
		return nil, err
	}

	for _, arg := range e.Args {
		v, err := in.eval(scope, arg)
		if err != nil {
			return nil, err
		}

		args = append(args, v)
	}

	return in.invoke(f, args)
}

func (in *interpreter) binary(scope *Scope, e *Binary) (Value, error) {
	left, err := in.eval(scope, e.Left)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case "AND", "OR":
		l, ok := left.(Bool)
		if !ok {
			return nil, logicalError(e.Op, left)
		}

		// AND stops at false, OR stops at true.
		if bool(l) == (e.Op == "OR") {
			return l, nil
		}

		right, err := in.eval(scope, e.Right)
		if err != nil {
			return nil, err
		}

		r, ok := right.(Bool)
		if !ok {
			return nil, logicalError(e.Op, right)
		}

		return r, nil
	}

	right, err := in.eval(scope, e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case "==":
		return Bool(Equal(left, right)), nil

	case "!=":
		return Bool(!Equal(left, right)), nil

	case "<", "<=", ">", ">=":
		c, err := Compare(left, right)
		if err != nil {
			return nil, WrapError(err).With(slog.String("operator", e.Op))
		}

		switch e.Op {
		case "<":
			return Bool(c < 0), nil
		case "<=":
			return Bool(c <= 0), nil
		case ">":
			return Bool(c > 0), nil
		default:
			return Bool(c >= 0), nil
		}

	case "+":
		_, ls := left.(Str)
		_, rs := right.(Str)

		if ls || rs {
			return Str(left.String() + right.String()), nil
		}

		return arithmetic(e.Op, left, right)

	default:
		return arithmetic(e.Op, left, right)
	}
}

func logicalError(op string, v Value) error {
	return ErrRuntime.
		Because("operator %s requires %s operands, got %s", op, TypeBoolean, v.Type()).
		With(slog.String("operator", op))
}
