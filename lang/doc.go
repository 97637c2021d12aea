// Package lang implements a small statically typed language: a lexer, a
// recursive descent parser, a type analyzer, a tree-walking interpreter and
// a generator that emits an equivalent Java class.
//
// # Pipeline
//
//	source ─Lex→ []Token ─Parse→ *Source ─Analyze→ annotated *Source
//	                                                 ├─Interpret→ Value
//	                                                 └─Generate→ Java text
//
// Each stage fails fast with an *[Error] whose [Kind] names the stage.
// Lexical and syntax errors carry a character offset; see [Error.Caret].
//
// # Grammar
//
//	source      → field* method*
//	field       → 'LET' ident ':' ident ('=' expr)? ';'
//	method      → 'DEF' ident '(' (ident ':' ident (',' ident ':' ident)*)? ')'
//	              (':' ident)? 'DO' stmt* 'END'
//	stmt        → 'LET' ident (':' ident)? ('=' expr)? ';'
//	            | 'IF' expr 'DO' stmt* ('ELSE' stmt*)? 'END'
//	            | 'FOR' ident 'IN' expr 'DO' stmt* 'END'
//	            | 'WHILE' expr 'DO' stmt* 'END'
//	            | 'RETURN' expr ';'
//	            | expr ('=' expr)? ';'
//	expr        → equality (('AND' | 'OR') equality)*
//	equality    → additive (('<' | '<=' | '>' | '>=' | '==' | '!=') additive)*
//	additive    → multiply (('+' | '-') multiply)*
//	multiply    → secondary (('*' | '/') secondary)*
//	secondary   → primary ('.' ident ('(' args? ')')?)*
//	primary     → 'NIL' | 'TRUE' | 'FALSE' | integer | decimal | char | string
//	            | '(' expr ')' | ident ('(' args? ')')?
//
// # Example
//
//	LET greeting: String = "Hello, World!";
//
//	DEF main(): Integer DO
//	    print(greeting);
//	    RETURN 0;
//	END
//
// # Types
//
// Builtin types are Nil, Any, Comparable, Boolean, Integer, Decimal,
// Character, String and IntegerIterable. Assignment is exact except that
// Any accepts every type and Comparable accepts Integer, Decimal, Character
// and String. Integers and decimals are arbitrary precision at run time;
// literals must fit Java's int and double.
package lang
