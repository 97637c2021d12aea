package lang

import (
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sync"
)

// Type is a named, interned type descriptor. Emit is the name used by the
// generator. Members, if not nil, holds the fields and methods reachable
// through a receiver of this type; member functions take the receiver as
// their first parameter.
type Type struct {
	Members *Scope
	Name    string
	Emit    string
}

func (t *Type) String() string {
	if t == nil {
		return "<untyped>"
	}

	return t.Name
}

// MarshalText implements encoding.TextMarshaler.
func (t *Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Builtin types.
var (
	TypeNil             = &Type{Name: "Nil", Emit: "Void"}
	TypeAny             = &Type{Name: "Any", Emit: "Object"}
	TypeComparable      = &Type{Name: "Comparable", Emit: "Comparable"}
	TypeBoolean         = &Type{Name: "Boolean", Emit: "boolean"}
	TypeInteger         = &Type{Name: "Integer", Emit: "int"}
	TypeDecimal         = &Type{Name: "Decimal", Emit: "double"}
	TypeCharacter       = &Type{Name: "Character", Emit: "char"}
	TypeString          = &Type{Name: "String", Emit: "String"}
	TypeIntegerIterable = &Type{Name: "IntegerIterable", Emit: "Iterable<Integer>"}
)

var registry = struct {
	types map[string]*Type
	sync.RWMutex
}{types: make(map[string]*Type)}

func init() {
	TypeString.Members = stringMembers()

	for _, t := range []*Type{
		TypeNil, TypeAny, TypeComparable, TypeBoolean, TypeInteger,
		TypeDecimal, TypeCharacter, TypeString, TypeIntegerIterable,
	} {
		registry.types[t.Name] = t
	}
}

// LookupType returns the interned type with the given source name.
func LookupType(name string) (*Type, error) {
	registry.RLock()
	defer registry.RUnlock()

	t, ok := registry.types[name]
	if !ok {
		return nil, ErrSemantic.
			Because("unknown type %q", name).
			With(slog.String("type", name))
	}

	return t, nil
}

// RegisterType interns a user-defined object type so that source can name
// it. It fails if a type with the same name already exists.
func RegisterType(t *Type) error {
	registry.Lock()
	defer registry.Unlock()

	if _, ok := registry.types[t.Name]; ok {
		return ErrBinding.
			Because("type %q is already defined", t.Name).
			With(slog.String("type", t.Name))
	}

	registry.types[t.Name] = t

	return nil
}

// NewObjectType returns an object type whose fields and methods are defined
// in members. Field values in members are the defaults copied into every
// [Object] created by [NewObject].
func NewObjectType(name, emit string, members *Scope) *Type {
	if members == nil {
		members = NewScope(nil)
	}

	return &Type{Name: name, Emit: emit, Members: members}
}

// Assignable reports whether a value of type actual may be stored where
// target is expected. Any accepts everything, Comparable accepts the
// four comparable builtins, and every other type accepts only itself.
func Assignable(target, actual *Type) error {
	switch {
	case target == TypeAny:
		return nil

	case target == TypeComparable:
		switch actual {
		case TypeInteger, TypeDecimal, TypeCharacter, TypeString:
			return nil
		}

	case target == actual:
		return nil
	}

	return ErrSemantic.
		Because("type %s is not assignable to %s", actual, target).
		With(slog.String("target", target.String()), slog.String("actual", actual.String()))
}

// definePrint seeds scope with the print builtin writing to w.
func definePrint(scope *Scope, w io.Writer) {
	_, _ = scope.DefineFunction("print", "System.out.println",
		[]*Type{TypeAny}, TypeNil,
		func(args []Value) (Value, error) {
			if _, err := fmt.Fprintln(w, args[0].String()); err != nil {
				return nil, ErrRuntime.Because("print").Wrap(err)
			}

			return Nil{}, nil
		},
	)
}

func stringMembers() *Scope {
	members := NewScope(nil)

	_, _ = members.DefineFunction("length", "length",
		[]*Type{TypeString}, TypeInteger,
		func(args []Value) (Value, error) {
			s, ok := args[0].(Str)
			if !ok {
				return nil, receiverError("length", args[0])
			}

			return NewInt(int64(len([]rune(string(s))))), nil
		},
	)

	_, _ = members.DefineFunction("charAt", "charAt",
		[]*Type{TypeString, TypeInteger}, TypeCharacter,
		func(args []Value) (Value, error) {
			s, ok := args[0].(Str)
			if !ok {
				return nil, receiverError("charAt", args[0])
			}

			i, ok := args[1].(Int)
			if !ok {
				return nil, ErrRuntime.Because("charAt index must be an Integer")
			}

			runes := []rune(string(s))
			if i.Big().Sign() < 0 || i.Big().Cmp(big.NewInt(int64(len(runes)))) >= 0 {
				return nil, ErrRuntime.
					Because("index %s out of range for length %d", i, len(runes))
			}

			return Char(runes[i.Big().Int64()]), nil
		},
	)

	return members
}

func receiverError(name string, v Value) *Error {
	return ErrRuntime.
		Because("%s cannot be called on a value of type %s", name, v.Type()).
		With(slog.String("member", name))
}
