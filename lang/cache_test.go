package lang

import (
	"errors"
	"slices"
	"testing"
)

func TestLexCached(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	const source = "DEF main(): Integer DO RETURN 0; END"

	first, err := Lex(t.Context(), source)
	if err != nil {
		t.Fatalf("lex: %v", err)
	}

	second, err := Lex(t.Context(), source)
	if err != nil {
		t.Fatalf("cached lex: %v", err)
	}

	if !slices.Equal(first, second) {
		t.Errorf("cached tokens differ:\n%v\n%v", first, second)
	}

	// Callers own the returned slice.
	first[0].Literal = "changed"

	third, _ := Lex(t.Context(), source)
	if third[0].Literal != "DEF" {
		t.Errorf("cache was mutated through a returned slice: %v", third[0])
	}

	uncached, err := Lex(t.Context(), source, WithCache(false))
	if err != nil || !slices.Equal(uncached, third) {
		t.Errorf("uncached tokens = %v, %v", uncached, err)
	}
}

func TestLexCached_Error(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	for range 2 {
		if _, err := Lex(t.Context(), `"open`); !errors.Is(err, ErrLexical) {
			t.Errorf("error = %v, want lexical error", err)
		}
	}
}

func BenchmarkLex(b *testing.B) {
	source := program("LET x: Integer = 1;",
		`LET s = "a string literal"; print(s + x); WHILE x < 10 DO x = x + 1; END`)

	b.Run("cached", func(b *testing.B) {
		ClearCache()

		for b.Loop() {
			_, _ = Lex(b.Context(), source)
		}
	})

	b.Run("uncached", func(b *testing.B) {
		for b.Loop() {
			_, _ = Lex(b.Context(), source, WithCache(false))
		}
	})
}
