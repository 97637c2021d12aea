package lang

// Library returns a scope of builtins that programs may opt into with
// [WithParent]. It defines:
//
//	range(Integer, Integer): IntegerIterable
//
// which yields the integers from the first argument up to, but not
// including, the second.
func Library() *Scope {
	lib := NewScope(nil)

	_, _ = lib.DefineFunction("range", "java.util.stream.IntStream.range",
		[]*Type{TypeInteger, TypeInteger}, TypeIntegerIterable,
		func(args []Value) (Value, error) {
			lo, ok := args[0].(Int)
			if !ok {
				return nil, ErrRuntime.Because("range bounds must be %s", TypeInteger)
			}

			hi, ok := args[1].(Int)
			if !ok {
				return nil, ErrRuntime.Because("range bounds must be %s", TypeInteger)
			}

			return Range(lo.Big(), hi.Big()), nil
		},
	)

	return lib
}
