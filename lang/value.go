package lang

import (
	"iter"
	"log/slog"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Value is a runtime value. The set of implementations is closed:
// [Nil], [Bool], [Int], [Decimal], [Char], [Str], [Iterable] and *[Object].
//
// Scope returns the member scope through which receiver-based accesses and
// calls on the value are resolved, or nil if the value has no members.
type Value interface {
	Type() *Type
	Scope() *Scope
	String() string

	value()
}

type (
	// Nil is the single value of type Nil.
	Nil struct{}
	// Bool is a Boolean value.
	Bool bool
	// Int is an arbitrary-precision Integer value.
	Int struct{ v *big.Int }
	// Decimal is an arbitrary-precision Decimal value.
	Decimal struct{ v *apd.Decimal }
	// Char is a Character value.
	Char rune
	// Str is a String value.
	Str string
)

// NewInt returns an Int holding n.
func NewInt(n int64) Int { return Int{v: big.NewInt(n)} }

// NewBigInt returns an Int holding a copy of n.
func NewBigInt(n *big.Int) Int { return Int{v: new(big.Int).Set(n)} }

// ParseInt parses a base-10 integer with an optional sign.
func ParseInt(s string) (Int, error) {
	n, ok := new(big.Int).SetString(strings.TrimPrefix(s, "+"), 10)
	if !ok {
		return Int{}, ErrSemantic.Because("invalid integer %q", s)
	}

	return Int{v: n}, nil
}

// Big returns the underlying integer. It must not be modified.
func (i Int) Big() *big.Int {
	if i.v == nil {
		return new(big.Int)
	}

	return i.v
}

// ParseDecimal parses a decimal number with an optional sign.
func ParseDecimal(s string) (Decimal, error) {
	d, _, err := apd.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return Decimal{}, ErrSemantic.Because("invalid decimal %q", s).Wrap(err)
	}

	return Decimal{v: d}, nil
}

// Apd returns the underlying decimal. It must not be modified.
func (d Decimal) Apd() *apd.Decimal {
	if d.v == nil {
		return new(apd.Decimal)
	}

	return d.v
}

// Plain renders d in positional notation without an exponent.
func (d Decimal) Plain() string { return d.Apd().Text('f') }

func (Nil) Type() *Type     { return TypeNil }
func (Bool) Type() *Type    { return TypeBoolean }
func (Int) Type() *Type     { return TypeInteger }
func (Decimal) Type() *Type { return TypeDecimal }
func (Char) Type() *Type    { return TypeCharacter }
func (Str) Type() *Type     { return TypeString }

func (Nil) Scope() *Scope     { return TypeNil.Members }
func (Bool) Scope() *Scope    { return TypeBoolean.Members }
func (Int) Scope() *Scope     { return TypeInteger.Members }
func (Decimal) Scope() *Scope { return TypeDecimal.Members }
func (Char) Scope() *Scope    { return TypeCharacter.Members }
func (Str) Scope() *Scope     { return TypeString.Members }

func (Nil) String() string       { return "null" }
func (b Bool) String() string    { return strconv.FormatBool(bool(b)) }
func (i Int) String() string     { return i.Big().String() }
func (d Decimal) String() string { return d.Apd().String() }
func (c Char) String() string    { return string(c) }
func (s Str) String() string     { return string(s) }

func (Nil) value()     {}
func (Bool) value()    {}
func (Int) value()     {}
func (Decimal) value() {}
func (Char) value()    {}
func (Str) value()     {}

// Iterable is a sequence of Integer values.
type Iterable struct {
	seq iter.Seq[Value]
}

// NewIterable wraps seq, which must yield only [Int] values.
func NewIterable(seq iter.Seq[Value]) Iterable { return Iterable{seq: seq} }

// Range returns an Iterable over the integers in [lo, hi).
func Range(lo, hi *big.Int) Iterable {
	lo, hi = new(big.Int).Set(lo), new(big.Int).Set(hi)

	return NewIterable(func(yield func(Value) bool) {
		one := big.NewInt(1)
		for i := new(big.Int).Set(lo); i.Cmp(hi) < 0; i.Add(i, one) {
			if !yield(NewBigInt(i)) {
				return
			}
		}
	})
}

// All iterates over the elements of it.
func (it Iterable) All() iter.Seq[Value] {
	if it.seq == nil {
		return func(func(Value) bool) {}
	}

	return it.seq
}

func (Iterable) Type() *Type    { return TypeIntegerIterable }
func (Iterable) Scope() *Scope  { return TypeIntegerIterable.Members }
func (Iterable) String() string { return TypeIntegerIterable.Name }
func (Iterable) value()         {}

// Object is an instance of a user-defined object type. Its fields live in
// an instance scope nested in the type's member scope, so member functions
// resolve through the type.
type Object struct {
	typ    *Type
	fields *Scope
}

// NewObject instantiates t, copying the default value of every field
// defined in t's member scope.
func NewObject(t *Type) *Object {
	fields := NewScope(t.Members)

	if t.Members != nil {
		for v := range t.Members.Variables() {
			_, _ = fields.DefineVariable(v.Name, v.Emit, v.Type, v.Value)
		}
	}

	return &Object{typ: t, fields: fields}
}

func (o *Object) Type() *Type    { return o.typ }
func (o *Object) Scope() *Scope  { return o.fields }
func (o *Object) String() string { return o.typ.Name + "{}" }
func (o *Object) value()         {}

// Equal reports whether a and b hold equal values. Numbers compare by
// value, so 1.0 and 1.00 are equal; objects compare by identity.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case Int:
		y, ok := b.(Int)

		return ok && x.Big().Cmp(y.Big()) == 0

	case Decimal:
		y, ok := b.(Decimal)

		return ok && x.Apd().Cmp(y.Apd()) == 0

	case Iterable:
		return false

	default:
		return a == b
	}
}

// Compare orders two values of the same comparable kind.
func Compare(a, b Value) (int, error) {
	switch x := a.(type) {
	case Int:
		if y, ok := b.(Int); ok {
			return x.Big().Cmp(y.Big()), nil
		}

	case Decimal:
		if y, ok := b.(Decimal); ok {
			return x.Apd().Cmp(y.Apd()), nil
		}

	case Char:
		if y, ok := b.(Char); ok {
			return cmpOrdered(x, y), nil
		}

	case Str:
		if y, ok := b.(Str); ok {
			return strings.Compare(string(x), string(y)), nil
		}

	case Bool:
		if y, ok := b.(Bool); ok {
			return cmpOrdered(boolRank(x), boolRank(y)), nil
		}
	}

	return 0, ErrRuntime.
		Because("cannot compare %s with %s", a.Type(), b.Type()).
		With(slog.String("left", a.Type().String()), slog.String("right", b.Type().String()))
}

func boolRank(b Bool) int {
	if b {
		return 1
	}

	return 0
}

func cmpOrdered[T ~int | ~int32](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// fitsInt32 reports whether i is within the host's signed 32-bit range.
func fitsInt32(i Int) bool {
	return i.Big().IsInt64() &&
		i.Big().Int64() >= math.MinInt32 &&
		i.Big().Int64() <= math.MaxInt32
}

// fitsFloat64 reports whether d is within the host's float64 range.
func fitsFloat64(d Decimal) bool {
	f, err := d.Apd().Float64()

	return err == nil && !math.IsInf(f, 0)
}

// divisionContext rounds decimal quotients to one significant digit,
// half to even.
var divisionContext = func() *apd.Context {
	c := apd.BaseContext.WithPrecision(1)
	c.Rounding = apd.RoundHalfEven

	return c
}()

// exactContext returns a context with enough precision to represent the
// sum, difference or product of x and y without rounding.
func exactContext(x, y *apd.Decimal, product bool) *apd.Context {
	var digits int64

	if product {
		digits = x.NumDigits() + y.NumDigits()
	} else {
		hi := max(x.NumDigits()+int64(x.Exponent), y.NumDigits()+int64(y.Exponent))
		lo := min(int64(x.Exponent), int64(y.Exponent))
		digits = hi - lo + 1
	}

	return apd.BaseContext.WithPrecision(uint32(max(digits, 1)))
}

// arithmetic applies one of + - * / to two numbers of the same kind.
func arithmetic(op string, a, b Value) (Value, error) {
	switch x := a.(type) {
	case Int:
		y, ok := b.(Int)
		if !ok {
			break
		}

		return intArithmetic(op, x.Big(), y.Big())

	case Decimal:
		y, ok := b.(Decimal)
		if !ok {
			break
		}

		return decimalArithmetic(op, x.Apd(), y.Apd())
	}

	return nil, ErrRuntime.
		Because("operator %s requires two Integer or two Decimal operands, got %s and %s",
			op, a.Type(), b.Type()).
		With(slog.String("operator", op))
}

func intArithmetic(op string, x, y *big.Int) (Value, error) {
	z := new(big.Int)

	switch op {
	case "+":
		z.Add(x, y)
	case "-":
		z.Sub(x, y)
	case "*":
		z.Mul(x, y)
	case "/":
		if y.Sign() == 0 {
			return nil, ErrRuntime.Because("integer division by zero")
		}

		z.Quo(x, y)
	default:
		return nil, ErrRuntime.Because("unknown arithmetic operator %q", op)
	}

	return Int{v: z}, nil
}

func decimalArithmetic(op string, x, y *apd.Decimal) (Value, error) {
	z := new(apd.Decimal)

	var err error

	switch op {
	case "+":
		_, err = exactContext(x, y, false).Add(z, x, y)
	case "-":
		_, err = exactContext(x, y, false).Sub(z, x, y)
	case "*":
		_, err = exactContext(x, y, true).Mul(z, x, y)
	case "/":
		if y.IsZero() {
			return nil, ErrRuntime.Because("decimal division by zero")
		}

		_, err = divisionContext.Quo(z, x, y)
	default:
		return nil, ErrRuntime.Because("unknown arithmetic operator %q", op)
	}

	if err != nil {
		return nil, ErrRuntime.Because("decimal %s", op).Wrap(err)
	}

	return Decimal{v: z}, nil
}
