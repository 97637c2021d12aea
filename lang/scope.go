package lang

import (
	"iter"
	"log/slog"
	"strings"
)

// Variable is a named binding. Value is only meaningful to the interpreter.
type Variable struct {
	Value Value
	Type  *Type
	Name  string
	Emit  string
}

// Invoke calls a function with its ordered arguments. For member functions
// the receiver is the first argument.
type Invoke func(args []Value) (Value, error)

// Function is a named, fixed-arity callable. Functions are distinguished by
// name and arity only.
type Function struct {
	Invoke  Invoke
	Returns *Type
	Name    string
	Emit    string
	Params  []*Type
}

// Arity returns the number of parameters f accepts.
func (f *Function) Arity() int { return len(f.Params) }

// Signature renders f as "name(T1, T2): R".
func (f *Function) Signature() string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.String()
	}

	return f.Name + "(" + strings.Join(names, ", ") + "): " + f.Returns.String()
}

type signature struct {
	name  string
	arity int
}

// Scope is a nested symbol table. Lookups walk outward through parents;
// a name may be shadowed by a nested scope but not redefined in one scope.
type Scope struct {
	parent    *Scope
	variables map[string]*Variable
	functions map[signature]*Function
	vorder    []string
	forder    []signature
}

// NewScope returns an empty scope nested in parent, which may be nil.
func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent:    parent,
		variables: make(map[string]*Variable),
		functions: make(map[signature]*Function),
	}
}

// Parent returns the enclosing scope, or nil for a root scope.
func (s *Scope) Parent() *Scope { return s.parent }

// DefineVariable adds a variable to s.
func (s *Scope) DefineVariable(
	name, emit string,
	typ *Type,
	value Value,
) (*Variable, error) {
	if _, ok := s.variables[name]; ok {
		return nil, ErrBinding.
			Because("variable %q is already defined in this scope", name).
			With(slog.String("name", name))
	}

	v := &Variable{Name: name, Emit: emit, Type: typ, Value: value}
	s.variables[name] = v
	s.vorder = append(s.vorder, name)

	return v, nil
}

// LookupVariable finds the innermost variable with the given name.
func (s *Scope) LookupVariable(name string) (*Variable, error) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.variables[name]; ok {
			return v, nil
		}
	}

	return nil, ErrBinding.
		Because("variable %q is not defined", name).
		With(slog.String("name", name))
}

// DefineFunction adds a function to s, keyed by name and len(params).
func (s *Scope) DefineFunction(
	name, emit string,
	params []*Type,
	returns *Type,
	invoke Invoke,
) (*Function, error) {
	sig := signature{name: name, arity: len(params)}

	if _, ok := s.functions[sig]; ok {
		return nil, ErrBinding.
			Because("function %s/%d is already defined in this scope", name, sig.arity).
			With(slog.String("name", name), slog.Int("arity", sig.arity))
	}

	f := &Function{
		Name:    name,
		Emit:    emit,
		Params:  params,
		Returns: returns,
		Invoke:  invoke,
	}
	s.functions[sig] = f
	s.forder = append(s.forder, sig)

	return f, nil
}

// LookupFunction finds the innermost function with the given name and arity.
func (s *Scope) LookupFunction(name string, arity int) (*Function, error) {
	sig := signature{name: name, arity: arity}

	for sc := s; sc != nil; sc = sc.parent {
		if f, ok := sc.functions[sig]; ok {
			return f, nil
		}
	}

	return nil, ErrBinding.
		Because("function %s/%d is not defined", name, arity).
		With(slog.String("name", name), slog.Int("arity", arity))
}

// Variables iterates over the variables defined directly in s, in
// definition order.
func (s *Scope) Variables() iter.Seq[*Variable] {
	return func(yield func(*Variable) bool) {
		for _, name := range s.vorder {
			if !yield(s.variables[name]) {
				return
			}
		}
	}
}

// Functions iterates over the functions defined directly in s, in
// definition order.
func (s *Scope) Functions() iter.Seq[*Function] {
	return func(yield func(*Function) bool) {
		for _, sig := range s.forder {
			if !yield(s.functions[sig]) {
				return
			}
		}
	}
}

// Visible iterates over every variable and function name reachable from s,
// innermost first, without duplicates.
func (s *Scope) Visible() iter.Seq[string] {
	return func(yield func(string) bool) {
		seen := make(map[string]struct{})

		emit := func(name string) bool {
			if _, ok := seen[name]; ok {
				return true
			}

			seen[name] = struct{}{}

			return yield(name)
		}

		for sc := s; sc != nil; sc = sc.parent {
			for _, name := range sc.vorder {
				if !emit(name) {
					return
				}
			}

			for _, sig := range sc.forder {
				if !emit(sig.name) {
					return
				}
			}
		}
	}
}
