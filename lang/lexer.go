package lang

import (
	"context"
	"log/slog"
	"strings"
)

// class reports whether a rune belongs to a character class.
type class func(rune) bool

func is(want rune) class { return func(r rune) bool { return r == want } }

func in(set string) class { return func(r rune) bool { return strings.ContainsRune(set, r) } }

func not(c class) class { return func(r rune) bool { return !c(r) } }

var (
	whitespace = in(" \b\n\r\t")
	digit      = class(func(r rune) bool { return r >= '0' && r <= '9' })
	sign       = in("+-")
	escape     = in(`bnrt'"\`)
	identStart = class(func(r rune) bool {
		return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	})
	identRest = class(func(r rune) bool { return identStart(r) || digit(r) || r == '-' })
)

// charStream is a cursor over source runes. The runes between
// index-length and index form the token currently being matched.
type charStream struct {
	input  []rune
	index  int
	length int
}

func (s *charStream) has(offset int) bool { return s.index+offset < len(s.input) }

// peek reports whether the next runes satisfy classes in order, without
// moving the cursor.
func (s *charStream) peek(classes ...class) bool {
	for i, c := range classes {
		if !s.has(i) || !c(s.input[s.index+i]) {
			return false
		}
	}

	return true
}

// match is peek followed by advancing past the matched runes.
func (s *charStream) match(classes ...class) bool {
	if !s.peek(classes...) {
		return false
	}

	s.index += len(classes)
	s.length += len(classes)

	return true
}

func (s *charStream) advance() {
	s.index++
	s.length++
}

// skip discards the runes matched so far.
func (s *charStream) skip() { s.length = 0 }

func (s *charStream) emit(kind TokenKind) Token {
	start := s.index - s.length
	s.length = 0

	return Token{
		Kind:    kind,
		Literal: string(s.input[start:s.index]),
		Offset:  start,
	}
}

// Lex converts source into an ordered sequence of tokens.
// It fails with an [ErrLexical] error carrying the offset of the first
// character that no token rule accepts.
func Lex(ctx context.Context, source string, opts ...Option) ([]Token, error) {
	o := makeOptions(opts...)

	if o.cache {
		return lexCached(ctx, source, o)
	}

	return lex(ctx, source, o)
}

func lex(ctx context.Context, source string, o options) ([]Token, error) {
	l := lexer{chars: charStream{input: []rune(source)}}

	tokens, err := l.lex()
	if err != nil {
		o.logger.TraceContext(ctx, "lex failed", slog.Any("error", err))

		return nil, err
	}

	o.logger.TraceContext(ctx, "lex complete",
		slog.Int("source_runes", len(l.chars.input)),
		slog.Int("token_count", len(tokens)),
	)

	return tokens, nil
}

type lexer struct {
	chars charStream
}

func (l *lexer) lex() ([]Token, error) {
	var tokens []Token

	for l.chars.has(0) {
		if l.chars.match(whitespace) {
			l.chars.skip()

			continue
		}

		tok, err := l.token()
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, tok)
	}

	return tokens, nil
}

func (l *lexer) token() (Token, error) {
	switch {
	case l.chars.peek(identStart):
		return l.identifier(), nil

	case l.chars.peek(digit), l.chars.peek(sign, digit):
		return l.number(), nil

	case l.chars.peek(is('\'')):
		return l.character()

	case l.chars.peek(is('"')):
		return l.string()

	default:
		return l.operator(), nil
	}
}

func (l *lexer) identifier() Token {
	l.chars.match(identStart)

	for l.chars.match(identRest) {
	}

	return l.chars.emit(TokenIdentifier)
}

// number lexes [+-]?[0-9]+(\.[0-9]+)?. A '.' that is not followed by a
// digit is left for the next token.
func (l *lexer) number() Token {
	l.chars.match(sign)

	for l.chars.match(digit) {
	}

	if !l.chars.match(is('.'), digit) {
		return l.chars.emit(TokenInteger)
	}

	for l.chars.match(digit) {
	}

	return l.chars.emit(TokenDecimal)
}

func (l *lexer) character() (Token, error) {
	l.chars.match(is('\''))

	if l.chars.match(is('\\')) {
		if !l.chars.match(escape) {
			return Token{}, ErrLexical.At(l.chars.index).
				Because("invalid escape sequence in character literal")
		}
	} else if !l.chars.match(not(is('\''))) {
		return Token{}, ErrLexical.At(l.chars.index).
			Because("empty or unterminated character literal")
	}

	if !l.chars.match(is('\'')) {
		return Token{}, ErrLexical.At(l.chars.index).
			Because("unterminated character literal")
	}

	return l.chars.emit(TokenCharacter), nil
}

func (l *lexer) string() (Token, error) {
	l.chars.match(is('"'))

	for !l.chars.peek(is('"')) {
		switch {
		case !l.chars.has(0):
			return Token{}, ErrLexical.At(l.chars.index).
				Because("unterminated string literal")

		case l.chars.match(is('\\')):
			if !l.chars.match(escape) {
				return Token{}, ErrLexical.At(l.chars.index).
					Because("invalid escape sequence in string literal")
			}

		default:
			l.chars.advance()
		}
	}

	l.chars.match(is('"'))

	return l.chars.emit(TokenString), nil
}

func (l *lexer) operator() Token {
	if !l.chars.match(in("<>!="), is('=')) {
		l.chars.advance()
	}

	return l.chars.emit(TokenOperator)
}
