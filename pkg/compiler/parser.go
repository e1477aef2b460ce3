package compiler

import (
	"fmt"
	"strings"
)

// Parser consumes the flat token slice produced by the Lexer and builds an AST.
//
// Grammar:
//
//	assignment = IDENTIFIER "=" expr EOF
//	expr       = term (("+" | "-") term)*
//	term       = factor (("*" | "/" | "%") factor)*
//	factor     = "-" factor
//	           | IDENTIFIER ("(" arglist ")")?
//	           | "(" expr ")"
//	           | "0"
//	arglist    = expr ("," expr)?      arity fixed by the function name
type Parser struct {
	tokens []Token
	pos    int
}

func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches tt, otherwise returns an error.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.advance()
	if tok.Type != tt {
		return tok, syntaxErrorf("expected %s, got %s", tt, describe(tok))
	}
	return tok, nil
}

func describe(tok Token) string {
	if tok.Type == EOF {
		return "end of input"
	}
	return fmt.Sprintf("%s %q", tok.Type, tok.Lexeme)
}

// ParseAssignment parses a whole statement and rejects trailing tokens.
func (p *Parser) ParseAssignment() (*Assignment, error) {
	target, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(EQUALS); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != EOF {
		return nil, syntaxErrorf("unexpected %s after expression", describe(tok))
	}
	return &Assignment{Target: target.Lexeme, Value: value}, nil
}

// parseExpr handles + and -
func (p *Parser) parseExpr() (Expr, error) {
	expr, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.peek().is(OPERATOR, "+") || p.peek().is(OPERATOR, "-") {
		op := Operator(p.advance().Lexeme)
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		expr = &BinaryOp{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

// parseTerm handles *, / and %
func (p *Parser) parseTerm() (Expr, error) {
	expr, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if !tok.is(OPERATOR, "*") && !tok.is(OPERATOR, "/") && !tok.is(OPERATOR, "%") {
			break
		}
		p.advance()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		expr = &BinaryOp{Op: Operator(tok.Lexeme), Left: expr, Right: right}
	}
	return expr, nil
}

func (p *Parser) parseFactor() (Expr, error) {
	tok := p.peek()
	switch {
	case tok.is(OPERATOR, "-"):
		p.advance()
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &Negate{Operand: operand}, nil

	case tok.Type == IDENTIFIER:
		p.advance()
		if p.peek().Type == LPAREN {
			return p.parseCall(tok.Lexeme)
		}
		return &Variable{Name: tok.Lexeme}, nil

	case tok.Type == LPAREN:
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return expr, nil

	case tok.Type == NUMBER:
		p.advance()
		if strings.Trim(tok.Lexeme, "0") != "" {
			return nil, syntaxErrorf("only the constant 0 is allowed, got %s", tok.Lexeme)
		}
		return &Zero{}, nil
	}
	return nil, syntaxErrorf("unexpected %s", describe(tok))
}

// parseCall parses "(" arglist ")" after a function name. The arity comes from
// the name, so max(a) fails at the ")" and abs(a, b) fails at the ",".
func (p *Parser) parseCall(name string) (Expr, error) {
	fn := Builtin(strings.ToLower(name))
	arity, ok := builtinArity[fn]
	if !ok {
		return nil, syntaxErrorf("unknown function %q", name)
	}
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}

	args := make([]Expr, 0, arity)
	for i := 0; i < arity; i++ {
		if i > 0 {
			if tok := p.advance(); tok.Type != COMMA {
				return nil, syntaxErrorf("%s takes %d arguments, expected COMMA, got %s", fn, arity, describe(tok))
			}
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	if tok := p.advance(); tok.Type != RPAREN {
		return nil, syntaxErrorf("%s takes %d argument(s), expected RPAREN, got %s", fn, arity, describe(tok))
	}
	return &Call{Func: fn, Args: args}, nil
}

// Parse parses a full token stream into an Assignment.
func Parse(tokens []Token) (*Assignment, error) {
	return NewParser(tokens).ParseAssignment()
}
