package lang

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/klauspost/readahead"
)

// Operator levels, lowest precedence first. Each level is a left-associative
// repetition of the next.
var (
	logicalOps        = []string{"AND", "OR"}
	equalityOps       = []string{"<", "<=", ">", ">=", "==", "!="}
	additiveOps       = []string{"+", "-"}
	multiplicativeOps = []string{"*", "/"}
)

// ParseReader reads all of r and parses it as a program.
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) (*Source, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.String("source", "reader"))
	}

	makeOptions(opts...).logger.TraceContext(ctx, "read input",
		slog.Int("source_bytes", len(data)),
	)

	return ParseString(ctx, string(data), opts...)
}

// ParseString lexes and parses source as a program.
func ParseString(ctx context.Context, source string, opts ...Option) (*Source, error) {
	tokens, err := Lex(ctx, source, opts...)
	if err != nil {
		return nil, err
	}

	return Parse(ctx, tokens, opts...)
}

// Parse builds a program from tokens. It fails with an [ErrSyntax] error
// carrying the offset of the token that was expected or unexpected.
func Parse(ctx context.Context, tokens []Token, opts ...Option) (*Source, error) {
	o := makeOptions(opts...)
	p := parser{tokens: tokenStream{tokens: tokens}}

	src, err := p.source()
	if err != nil {
		o.logger.TraceContext(ctx, "parse failed", slog.Any("error", err))

		return nil, err
	}

	o.logger.TraceContext(ctx, "parse complete",
		slog.Int("field_count", len(src.Fields)),
		slog.Int("method_count", len(src.Methods)),
	)

	return src, nil
}

// ParseExpression lexes and parses source as a single expression.
func ParseExpression(ctx context.Context, source string, opts ...Option) (Expr, error) {
	tokens, err := Lex(ctx, source, opts...)
	if err != nil {
		return nil, err
	}

	p := parser{tokens: tokenStream{tokens: tokens}}

	e, err := p.expression()
	if err != nil {
		return nil, err
	}

	if p.tokens.has(0) {
		return nil, p.fail("unexpected %q after expression", p.tokens.get(0).Literal)
	}

	return e, nil
}

// ParseStatement lexes and parses source as a single statement.
func ParseStatement(ctx context.Context, source string, opts ...Option) (Stmt, error) {
	tokens, err := Lex(ctx, source, opts...)
	if err != nil {
		return nil, err
	}

	p := parser{tokens: tokenStream{tokens: tokens}}

	s, err := p.statement()
	if err != nil {
		return nil, err
	}

	if p.tokens.has(0) {
		return nil, p.fail("unexpected %q after statement", p.tokens.get(0).Literal)
	}

	return s, nil
}

// tokenStream is a cursor over tokens. A pattern is either a [TokenKind]
// or the exact literal text of a token.
type tokenStream struct {
	tokens []Token
	index  int
}

func (s *tokenStream) has(offset int) bool { return s.index+offset < len(s.tokens) }

func (s *tokenStream) get(offset int) Token { return s.tokens[s.index+offset] }

func (s *tokenStream) peek(patterns ...any) bool {
	for i, pattern := range patterns {
		if !s.has(i) {
			return false
		}

		tok := s.get(i)

		switch pat := pattern.(type) {
		case TokenKind:
			if tok.Kind != pat {
				return false
			}

		case string:
			if tok.Literal != pat {
				return false
			}

		default:
			return false
		}
	}

	return true
}

func (s *tokenStream) match(patterns ...any) bool {
	if !s.peek(patterns...) {
		return false
	}

	s.index += len(patterns)

	return true
}

// offset is where a missing token was expected: the next token if there is
// one, else just past the last token.
func (s *tokenStream) offset() int {
	switch {
	case s.has(0):
		return s.get(0).Offset
	case len(s.tokens) > 0:
		return s.tokens[len(s.tokens)-1].end()
	default:
		return 0
	}
}

type parser struct {
	tokens tokenStream
}

func (p *parser) fail(format string, args ...any) *Error {
	return ErrSyntax.At(p.tokens.offset()).Because(format, args...)
}

func (p *parser) expect(literal string) error {
	if !p.tokens.match(literal) {
		return p.fail("expected %q", literal)
	}

	return nil
}

func (p *parser) identifier(what string) (string, error) {
	if !p.tokens.peek(TokenIdentifier) {
		return "", p.fail("expected %s", what)
	}

	name := p.tokens.get(0).Literal
	p.tokens.match(TokenIdentifier)

	return name, nil
}

// source := field* method*
func (p *parser) source() (*Source, error) {
	var src Source

	for p.tokens.peek("LET") {
		f, err := p.field()
		if err != nil {
			return nil, err
		}

		src.Fields = append(src.Fields, f)
	}

	for p.tokens.peek("DEF") {
		m, err := p.method()
		if err != nil {
			return nil, err
		}

		src.Methods = append(src.Methods, m)
	}

	if p.tokens.has(0) {
		return nil, p.fail("expected LET or DEF, found %q", p.tokens.get(0).Literal)
	}

	return &src, nil
}

// field := "LET" identifier ":" identifier ("=" expression)? ";"
func (p *parser) field() (*Field, error) {
	if err := p.expect("LET"); err != nil {
		return nil, err
	}

	var (
		f   Field
		err error
	)

	if f.Name, err = p.identifier("field name"); err != nil {
		return nil, err
	}

	if err = p.expect(":"); err != nil {
		return nil, err
	}

	if f.TypeName, err = p.identifier("field type"); err != nil {
		return nil, err
	}

	if p.tokens.match("=") {
		if f.Value, err = p.expression(); err != nil {
			return nil, err
		}
	}

	if err = p.expect(";"); err != nil {
		return nil, err
	}

	return &f, nil
}

// method := "DEF" identifier "(" parameters? ")" (":" identifier)?
//
//	"DO" statement* "END"
func (p *parser) method() (*Method, error) {
	if err := p.expect("DEF"); err != nil {
		return nil, err
	}

	var (
		m   Method
		err error
	)

	if m.Name, err = p.identifier("method name"); err != nil {
		return nil, err
	}

	if err = p.expect("("); err != nil {
		return nil, err
	}

	if !p.tokens.match(")") {
		for {
			name, err := p.identifier("parameter name")
			if err != nil {
				return nil, err
			}

			if err = p.expect(":"); err != nil {
				return nil, err
			}

			typ, err := p.identifier("parameter type")
			if err != nil {
				return nil, err
			}

			m.Params = append(m.Params, name)
			m.ParamTypes = append(m.ParamTypes, typ)

			if p.tokens.match(")") {
				break
			}

			if err = p.expect(","); err != nil {
				return nil, err
			}
		}
	}

	if p.tokens.match(":") {
		if m.ReturnType, err = p.identifier("return type"); err != nil {
			return nil, err
		}
	}

	if err = p.expect("DO"); err != nil {
		return nil, err
	}

	if m.Body, err = p.block("END"); err != nil {
		return nil, err
	}

	if err = p.expect("END"); err != nil {
		return nil, err
	}

	return &m, nil
}

// block parses statements up to, but not including, one of the terminators.
func (p *parser) block(terminators ...string) ([]Stmt, error) {
	var body []Stmt

	for !p.peekAny(terminators...) {
		if !p.tokens.has(0) {
			return nil, p.fail("expected %s", strings.Join(terminators, " or "))
		}

		s, err := p.statement()
		if err != nil {
			return nil, err
		}

		body = append(body, s)
	}

	return body, nil
}

func (p *parser) peekAny(literals ...string) bool {
	for _, lit := range literals {
		if p.tokens.peek(lit) {
			return true
		}
	}

	return false
}

func (p *parser) statement() (Stmt, error) {
	switch {
	case p.tokens.peek("LET"):
		return p.declaration()
	case p.tokens.peek("IF"):
		return p.ifStatement()
	case p.tokens.peek("FOR"):
		return p.forStatement()
	case p.tokens.peek("WHILE"):
		return p.whileStatement()
	case p.tokens.peek("RETURN"):
		return p.returnStatement()
	default:
		return p.expressionStatement()
	}
}

// declaration := "LET" identifier (":" identifier)? ("=" expression)? ";"
func (p *parser) declaration() (Stmt, error) {
	p.tokens.match("LET")

	var (
		d   Declaration
		err error
	)

	if d.Name, err = p.identifier("variable name"); err != nil {
		return nil, err
	}

	if p.tokens.match(":") {
		if d.TypeName, err = p.identifier("variable type"); err != nil {
			return nil, err
		}
	}

	if p.tokens.match("=") {
		if d.Value, err = p.expression(); err != nil {
			return nil, err
		}
	}

	if err = p.expect(";"); err != nil {
		return nil, err
	}

	return &d, nil
}

// if := "IF" expression "DO" statement* ("ELSE" statement*)? "END"
func (p *parser) ifStatement() (Stmt, error) {
	p.tokens.match("IF")

	var (
		s   If
		err error
	)

	if s.Cond, err = p.expression(); err != nil {
		return nil, err
	}

	if err = p.expect("DO"); err != nil {
		return nil, err
	}

	if s.Then, err = p.block("ELSE", "END"); err != nil {
		return nil, err
	}

	if p.tokens.match("ELSE") {
		if s.Else, err = p.block("END"); err != nil {
			return nil, err
		}
	}

	if err = p.expect("END"); err != nil {
		return nil, err
	}

	return &s, nil
}

// for := "FOR" identifier "IN" expression "DO" statement* "END"
func (p *parser) forStatement() (Stmt, error) {
	p.tokens.match("FOR")

	var (
		s   For
		err error
	)

	if s.Name, err = p.identifier("loop variable"); err != nil {
		return nil, err
	}

	if err = p.expect("IN"); err != nil {
		return nil, err
	}

	if s.Iterable, err = p.expression(); err != nil {
		return nil, err
	}

	if err = p.expect("DO"); err != nil {
		return nil, err
	}

	if s.Body, err = p.block("END"); err != nil {
		return nil, err
	}

	if err = p.expect("END"); err != nil {
		return nil, err
	}

	return &s, nil
}

// while := "WHILE" expression "DO" statement* "END"
func (p *parser) whileStatement() (Stmt, error) {
	p.tokens.match("WHILE")

	var (
		s   While
		err error
	)

	if s.Cond, err = p.expression(); err != nil {
		return nil, err
	}

	if err = p.expect("DO"); err != nil {
		return nil, err
	}

	if s.Body, err = p.block("END"); err != nil {
		return nil, err
	}

	if err = p.expect("END"); err != nil {
		return nil, err
	}

	return &s, nil
}

// return := "RETURN" expression ";"
func (p *parser) returnStatement() (Stmt, error) {
	p.tokens.match("RETURN")

	value, err := p.expression()
	if err != nil {
		return nil, err
	}

	if err = p.expect(";"); err != nil {
		return nil, err
	}

	return &Return{Value: value}, nil
}

// expressionStatement := expression ("=" expression)? ";"
func (p *parser) expressionStatement() (Stmt, error) {
	e, err := p.expression()
	if err != nil {
		return nil, err
	}

	if p.tokens.match("=") {
		value, err := p.expression()
		if err != nil {
			return nil, err
		}

		if err = p.expect(";"); err != nil {
			return nil, err
		}

		return &Assignment{Receiver: e, Value: value}, nil
	}

	if err = p.expect(";"); err != nil {
		return nil, err
	}

	return &ExprStmt{Expr: e}, nil
}

func (p *parser) expression() (Expr, error) { return p.logical() }

func (p *parser) logical() (Expr, error) {
	return p.binary(p.equality, logicalOps)
}

func (p *parser) equality() (Expr, error) {
	return p.binary(p.additive, equalityOps)
}

func (p *parser) additive() (Expr, error) {
	return p.binary(p.multiplicative, additiveOps)
}

func (p *parser) multiplicative() (Expr, error) {
	return p.binary(p.secondary, multiplicativeOps)
}

// binary folds operand (op operand)* to the left.
func (p *parser) binary(operand func() (Expr, error), ops []string) (Expr, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}

	for {
		op, ok := p.matchOperator(ops)
		if !ok {
			return left, nil
		}

		right, err := operand()
		if err != nil {
			return nil, err
		}

		left = &Binary{Op: op, Left: left, Right: right}
	}
}

func (p *parser) matchOperator(ops []string) (string, bool) {
	for _, op := range ops {
		if p.tokens.match(op) {
			return op, true
		}
	}

	return "", false
}

// secondary := primary ("." identifier ("(" arguments ")")?)*
func (p *parser) secondary() (Expr, error) {
	e, err := p.primary()
	if err != nil {
		return nil, err
	}

	for p.tokens.match(".") {
		name, err := p.identifier("member name")
		if err != nil {
			return nil, err
		}

		if !p.tokens.match("(") {
			e = &Access{Receiver: e, Name: name}

			continue
		}

		args, err := p.arguments()
		if err != nil {
			return nil, err
		}

		e = &Call{Receiver: e, Name: name, Args: args}
	}

	return e, nil
}

func (p *parser) primary() (Expr, error) {
	switch {
	case p.tokens.match("NIL"):
		return &Literal{Value: Nil{}}, nil

	case p.tokens.match("TRUE"):
		return &Literal{Value: Bool(true)}, nil

	case p.tokens.match("FALSE"):
		return &Literal{Value: Bool(false)}, nil

	case p.tokens.peek(TokenInteger):
		tok := p.tokens.get(0)

		n, err := ParseInt(tok.Literal)
		if err != nil {
			return nil, p.fail("invalid integer literal %q", tok.Literal)
		}

		p.tokens.match(TokenInteger)

		return &Literal{Value: n}, nil

	case p.tokens.peek(TokenDecimal):
		tok := p.tokens.get(0)

		d, err := ParseDecimal(tok.Literal)
		if err != nil {
			return nil, p.fail("invalid decimal literal %q", tok.Literal)
		}

		p.tokens.match(TokenDecimal)

		return &Literal{Value: d}, nil

	case p.tokens.peek(TokenCharacter):
		tok := p.tokens.get(0)
		p.tokens.match(TokenCharacter)

		return &Literal{Value: Char([]rune(unquote(tok.Literal))[0])}, nil

	case p.tokens.peek(TokenString):
		tok := p.tokens.get(0)
		p.tokens.match(TokenString)

		return &Literal{Value: Str(unquote(tok.Literal))}, nil

	case p.tokens.match("("):
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}

		if err = p.expect(")"); err != nil {
			return nil, err
		}

		return &Group{Inner: inner}, nil

	case p.tokens.peek(TokenIdentifier):
		name, _ := p.identifier("name")

		if !p.tokens.match("(") {
			return &Access{Name: name}, nil
		}

		args, err := p.arguments()
		if err != nil {
			return nil, err
		}

		return &Call{Name: name, Args: args}, nil

	default:
		return nil, p.fail("expected expression")
	}
}

// arguments := (expression ("," expression)*)? ")"
// The opening parenthesis has already been consumed.
func (p *parser) arguments() ([]Expr, error) {
	var args []Expr

	if p.tokens.match(")") {
		return args, nil
	}

	for {
		arg, err := p.expression()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		if p.tokens.match(")") {
			return args, nil
		}

		if err = p.expect(","); err != nil {
			return nil, err
		}
	}
}

var unescaper = strings.NewReplacer(
	`\b`, "\b",
	`\n`, "\n",
	`\r`, "\r",
	`\t`, "\t",
	`\'`, "'",
	`\"`, `"`,
	`\\`, `\`,
)

// unquote strips the delimiting quotes of a character or string literal
// and resolves its escapes.
func unquote(literal string) string {
	return unescaper.Replace(literal[1 : len(literal)-1])
}
