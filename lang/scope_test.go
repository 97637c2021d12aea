package lang

import (
	"errors"
	"slices"
	"testing"
)

func TestAssignable(t *testing.T) {
	tests := []struct {
		target *Type
		actual *Type
		ok     bool
	}{
		{TypeComparable, TypeString, true},
		{TypeComparable, TypeInteger, true},
		{TypeComparable, TypeDecimal, true},
		{TypeComparable, TypeCharacter, true},
		{TypeComparable, TypeBoolean, false},
		{TypeComparable, TypeNil, false},
		{TypeString, TypeInteger, false},
		{TypeDecimal, TypeInteger, false},
		{TypeInteger, TypeInteger, true},
		{TypeAny, TypeNil, true},
		{TypeAny, TypeIntegerIterable, true},
		{TypeAny, TypeComparable, true},
		{TypeNil, TypeAny, false},
	}

	for _, tt := range tests {
		t.Run(tt.target.Name+"<-"+tt.actual.Name, func(t *testing.T) {
			err := Assignable(tt.target, tt.actual)

			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if !tt.ok && !errors.Is(err, ErrSemantic) {
				t.Errorf("error = %v, want semantic error", err)
			}
		})
	}
}

func TestScope_Variables(t *testing.T) {
	root := NewScope(nil)

	if _, err := root.DefineVariable("x", "x", TypeInteger, NewInt(1)); err != nil {
		t.Fatalf("define: %v", err)
	}

	if _, err := root.DefineVariable("x", "x", TypeInteger, NewInt(2)); !errors.Is(err, ErrBinding) {
		t.Errorf("redefine error = %v, want binding error", err)
	}

	child := NewScope(root)

	if _, err := child.DefineVariable("x", "x", TypeString, Str("shadow")); err != nil {
		t.Fatalf("shadow: %v", err)
	}

	v, err := child.LookupVariable("x")
	if err != nil || v.Type != TypeString {
		t.Errorf("child lookup = %v, %v", v, err)
	}

	v, err = root.LookupVariable("x")
	if err != nil || v.Type != TypeInteger {
		t.Errorf("root lookup = %v, %v", v, err)
	}

	var berr *Error
	if _, err := child.LookupVariable("y"); !errors.As(err, &berr) || berr.Kind() != KindBinding {
		t.Errorf("missing lookup error = %v, want binding error", err)
	}
}

func TestScope_Functions(t *testing.T) {
	root := NewScope(nil)

	one, err := root.DefineFunction("f", "f", []*Type{TypeInteger}, TypeNil, nil)
	if err != nil {
		t.Fatalf("define f/1: %v", err)
	}

	if _, err := root.DefineFunction("f", "f", []*Type{TypeInteger, TypeAny}, TypeNil, nil); err != nil {
		t.Fatalf("define f/2: %v", err)
	}

	if _, err := root.DefineFunction("f", "f", []*Type{TypeString}, TypeNil, nil); !errors.Is(err, ErrBinding) {
		t.Errorf("redefine f/1 error = %v, want binding error", err)
	}

	got, err := NewScope(root).LookupFunction("f", 1)
	if err != nil || got != one {
		t.Errorf("lookup f/1 = %v, %v", got, err)
	}

	if _, err := root.LookupFunction("f", 3); !errors.Is(err, ErrBinding) {
		t.Errorf("lookup f/3 error = %v, want binding error", err)
	}

	if sig := one.Signature(); sig != "f(Integer): Nil" {
		t.Errorf("signature = %q", sig)
	}
}

func TestScope_Visible(t *testing.T) {
	root := NewScope(nil)
	_, _ = root.DefineVariable("a", "a", TypeInteger, nil)
	_, _ = root.DefineFunction("g", "g", nil, TypeNil, nil)

	child := NewScope(root)
	_, _ = child.DefineVariable("b", "b", TypeInteger, nil)
	_, _ = child.DefineVariable("a", "a", TypeString, nil)

	got := slices.Collect(child.Visible())
	if want := []string{"b", "a", "g"}; !slices.Equal(got, want) {
		t.Errorf("Visible() = %v, want %v", got, want)
	}
}

func TestLookupType(t *testing.T) {
	for _, name := range []string{
		"Nil", "Any", "Comparable", "Boolean", "Integer",
		"Decimal", "Character", "String", "IntegerIterable",
	} {
		typ, err := LookupType(name)
		if err != nil || typ.Name != name {
			t.Errorf("LookupType(%q) = %v, %v", name, typ, err)
		}
	}

	if _, err := LookupType("Widget"); !errors.Is(err, ErrSemantic) {
		t.Errorf("unknown type error = %v, want semantic error", err)
	}
}

func TestObjectType(t *testing.T) {
	members := NewScope(nil)
	_, _ = members.DefineVariable("count", "count", TypeInteger, NewInt(0))
	_, _ = members.DefineFunction("next", "next",
		[]*Type{TypeAny}, TypeInteger,
		func(args []Value) (Value, error) {
			v, err := args[0].Scope().LookupVariable("count")
			if err != nil {
				return nil, err
			}

			n, _ := arithmetic("+", v.Value, NewInt(1))
			v.Value = n

			return n, nil
		},
	)

	counter := NewObjectType("Counter_"+t.Name(), "Counter", members)
	if err := RegisterType(counter); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := RegisterType(counter); !errors.Is(err, ErrBinding) {
		t.Errorf("re-register error = %v, want binding error", err)
	}

	a, b := NewObject(counter), NewObject(counter)

	f, err := a.Scope().LookupFunction("next", 1)
	if err != nil {
		t.Fatalf("lookup next: %v", err)
	}

	for range 3 {
		_, _ = f.Invoke([]Value{a})
	}

	_, _ = f.Invoke([]Value{b})

	va, _ := a.Scope().LookupVariable("count")
	vb, _ := b.Scope().LookupVariable("count")

	if va.Value.String() != "3" || vb.Value.String() != "1" {
		t.Errorf("counts = %s, %s; want 3, 1", va.Value, vb.Value)
	}
}
