package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	NUMBER     // decimal digits; only 0 survives parsing
	IDENTIFIER // variable or function name
	OPERATOR   // one of + - * / %

	LPAREN // (
	RPAREN // )
	COMMA  // ,
	EQUALS // =
)

var tokenNames = [...]string{
	EOF:        "EOF",
	NUMBER:     "NUMBER",
	IDENTIFIER: "IDENTIFIER",
	OPERATOR:   "OPERATOR",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	COMMA:      "COMMA",
	EQUALS:     "EQUALS",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by the Lexer. A statement is one
// line, so tokens carry no position.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %q", t.Type, t.Lexeme)
}

// is reports whether t has type tt and, for OPERATOR tokens, the given text.
func (t Token) is(tt TokenType, lexeme string) bool {
	return t.Type == tt && (lexeme == "" || t.Lexeme == lexeme)
}
