package lang

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestLex_SingleToken(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		kind    TokenKind
		success bool
	}{
		{"alphabetic identifier", "getName", TokenIdentifier, true},
		{"alphanumeric identifier", "thelegend27", TokenIdentifier, true},
		{"underscore identifier", "_underscore", TokenIdentifier, true},
		{"hyphenated identifier", "the-gamer", TokenIdentifier, true},
		{"leading hyphen", "-five", TokenIdentifier, false},
		{"leading digit", "1fish2fish3fishbluefish", TokenIdentifier, false},
		{"identifier with space", "the gamer", TokenIdentifier, false},

		{"single digit", "1", TokenInteger, true},
		{"positive integer", "+150", TokenInteger, true},
		{"negative integer", "-150", TokenInteger, true},
		{"large integer", "100000", TokenInteger, true},
		{"zero", "0", TokenInteger, true},
		{"decimal is not integer", "123.456", TokenInteger, false},
		{"trailing period", "1.", TokenInteger, false},
		{"leading period", ".5", TokenInteger, false},
		{"two periods", "0..5", TokenInteger, false},

		{"multiple digits decimal", "123.456", TokenDecimal, true},
		{"negative decimal", "-1.0", TokenDecimal, true},
		{"positive decimal", "+15.0", TokenDecimal, true},
		{"multiple periods", "1..0", TokenDecimal, false},
		{"integer is not decimal", "1", TokenDecimal, false},

		{"alphabetic character", "'c'", TokenCharacter, true},
		{"newline escape character", `'\n'`, TokenCharacter, true},
		{"symbol character", "'$'", TokenCharacter, true},
		{"no quotes", "a", TokenCharacter, false},
		{"no input", "", TokenCharacter, false},

		{"empty string", `""`, TokenString, true},
		{"alphabetic string", `"abc"`, TokenString, true},
		{"newline escape string", `"Hello,\nWorld"`, TokenString, true},
		{"phrase", `"Go Gators!"`, TokenString, true},
		{"multiline string", "\"one\ntwo\"", TokenString, true},
		{"no double quotes", "Go Gators!", TokenString, false},

		{"single character operator", "(", TokenOperator, true},
		{"comparison", "<=", TokenOperator, true},
		{"equals", "==", TokenOperator, true},
		{"not equals", "!=", TokenOperator, true},
		{"plus", "+", TokenOperator, true},
		{"space", " ", TokenOperator, false},
		{"tab", "\t", TokenOperator, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Lex(t.Context(), tt.input, WithCache(false))

			got := err == nil &&
				len(tokens) == 1 &&
				tokens[0] == Token{Kind: tt.kind, Literal: tt.input, Offset: 0}

			if got != tt.success {
				t.Errorf("Lex(%q) = %v, %v; want single %s token: %v",
					tt.input, tokens, err, tt.kind, tt.success)
			}
		})
	}
}

func TestLex_Sequence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "declaration",
			input: "LET x = 5;",
			want: []Token{
				{Kind: TokenIdentifier, Literal: "LET", Offset: 0},
				{Kind: TokenIdentifier, Literal: "x", Offset: 4},
				{Kind: TokenOperator, Literal: "=", Offset: 6},
				{Kind: TokenInteger, Literal: "5", Offset: 8},
				{Kind: TokenOperator, Literal: ";", Offset: 9},
			},
		},
		{
			name:  "call",
			input: `print("Hello, World!");`,
			want: []Token{
				{Kind: TokenIdentifier, Literal: "print", Offset: 0},
				{Kind: TokenOperator, Literal: "(", Offset: 5},
				{Kind: TokenString, Literal: `"Hello, World!"`, Offset: 6},
				{Kind: TokenOperator, Literal: ")", Offset: 21},
				{Kind: TokenOperator, Literal: ";", Offset: 22},
			},
		},
		{
			name:  "comparison",
			input: "return x >= 4;",
			want: []Token{
				{Kind: TokenIdentifier, Literal: "return", Offset: 0},
				{Kind: TokenIdentifier, Literal: "x", Offset: 7},
				{Kind: TokenOperator, Literal: ">=", Offset: 9},
				{Kind: TokenInteger, Literal: "4", Offset: 12},
				{Kind: TokenOperator, Literal: ";", Offset: 13},
			},
		},
		{
			name:  "assignment",
			input: "x = x + 4;",
			want: []Token{
				{Kind: TokenIdentifier, Literal: "x", Offset: 0},
				{Kind: TokenOperator, Literal: "=", Offset: 2},
				{Kind: TokenIdentifier, Literal: "x", Offset: 4},
				{Kind: TokenOperator, Literal: "+", Offset: 6},
				{Kind: TokenInteger, Literal: "4", Offset: 8},
				{Kind: TokenOperator, Literal: ";", Offset: 9},
			},
		},
		{
			name:  "character",
			input: "Char s = 's';",
			want: []Token{
				{Kind: TokenIdentifier, Literal: "Char", Offset: 0},
				{Kind: TokenIdentifier, Literal: "s", Offset: 5},
				{Kind: TokenOperator, Literal: "=", Offset: 7},
				{Kind: TokenCharacter, Literal: "'s'", Offset: 9},
				{Kind: TokenOperator, Literal: ";", Offset: 12},
			},
		},
		{
			name:  "trailing period",
			input: "1.",
			want: []Token{
				{Kind: TokenInteger, Literal: "1", Offset: 0},
				{Kind: TokenOperator, Literal: ".", Offset: 1},
			},
		},
		{
			name:  "whitespace only",
			input: " \t\r\n\b",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Lex(t.Context(), tt.input, WithCache(false))
			if err != nil {
				t.Fatalf("Lex(%q) error: %v", tt.input, err)
			}

			if !slices.Equal(got, tt.want) {
				t.Errorf("Lex(%q)\n got: %v\nwant: %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLex_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		offset int
	}{
		{"unterminated string", `"unterminated`, 13},
		{"invalid string escape", `"invalid\escape"`, 9},
		{"empty character", "''", 1},
		{"lone quote", "'", 1},
		{"invalid character escape", `'\e`, 2},
		{"multiple characters", "'abc'", 2},
		{"error after valid tokens", `LET s = "open`, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lex(t.Context(), tt.input, WithCache(false))
			if !errors.Is(err, ErrLexical) {
				t.Fatalf("Lex(%q) error = %v, want lexical error", tt.input, err)
			}

			var lerr *Error
			if !errors.As(err, &lerr) {
				t.Fatalf("error %T is not *Error", err)
			}

			if off, ok := lerr.Offset(); !ok || off != tt.offset {
				t.Errorf("offset = %d (%v), want %d", off, ok, tt.offset)
			}
		})
	}
}

func TestLex_Reconstruct(t *testing.T) {
	source := "LET x: Integer = 1;\n\nDEF main(): Integer DO\n\tprint(\"a\\tb\");\n\tRETURN x + 2;\nEND"

	tokens, err := Lex(t.Context(), source, WithCache(false))
	if err != nil {
		t.Fatalf("Lex error: %v", err)
	}

	runes := []rune(source)

	var b strings.Builder

	prev := 0
	for _, tok := range tokens {
		for _, r := range runes[prev:tok.Offset] {
			if !whitespace(r) {
				t.Fatalf("non-whitespace %q skipped before %v", r, tok)
			}
		}

		b.WriteString(string(runes[prev:tok.Offset]))
		b.WriteString(tok.Literal)

		prev = tok.end()
	}

	if got := b.String(); got != strings.TrimRight(source, " \b\n\r\t") {
		t.Errorf("reconstructed source differs:\n got: %q\nwant: %q", got, source)
	}
}
