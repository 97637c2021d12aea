package lang

import (
	"slices"
	"strconv"
)

// TokenKind identifies the lexical class of a [Token].
type TokenKind int

const (
	TokenIdentifier TokenKind = iota // IDENTIFIER
	TokenInteger                     // INTEGER
	TokenDecimal                     // DECIMAL
	TokenCharacter                   // CHARACTER
	TokenString                      // STRING
	TokenOperator                    // OPERATOR
)

var tokenKindName = [...]string{
	TokenIdentifier: "IDENTIFIER",
	TokenInteger:    "INTEGER",
	TokenDecimal:    "DECIMAL",
	TokenCharacter:  "CHARACTER",
	TokenString:     "STRING",
	TokenOperator:   "OPERATOR",
}

func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKindName) {
		return "TokenKind(" + strconv.Itoa(int(k)) + ")"
	}

	return tokenKindName[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k TokenKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Token is an immutable lexical unit. Literal is the exact source text that
// was matched, and Offset is the index of its first character in the source.
type Token struct {
	Literal string    `json:"literal" yaml:"literal"`
	Kind    TokenKind `json:"kind"    yaml:"kind"`
	Offset  int       `json:"offset"  yaml:"offset"`
}

func (t Token) String() string {
	return t.Kind.String() + " " + strconv.Quote(t.Literal) + "@" + strconv.Itoa(t.Offset)
}

// end returns the offset just past the token's literal.
func (t Token) end() int { return t.Offset + len([]rune(t.Literal)) }

var keywords = []string{
	"AND", "DEF", "DO", "ELSE", "END", "FALSE", "FOR", "IF",
	"IN", "LET", "NIL", "OR", "RETURN", "TRUE", "WHILE",
}

// Keywords returns the words the parser gives special meaning to. They
// are lexed as identifiers.
func Keywords() []string { return slices.Clone(keywords) }
