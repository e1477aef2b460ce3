package compiler

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src []rune
	pos int // index of the next rune to consume
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src)}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) skipBlanks() {
	for l.pos < len(l.src) && (l.peek() == ' ' || l.peek() == '\t') {
		l.pos++
	}
}

func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '_' }

// scanWhile consumes the longest run of runes accepted by ok.
func (l *Lexer) scanWhile(ok func(rune) bool) string {
	start := l.pos
	for l.pos < len(l.src) && ok(l.src[l.pos]) {
		l.pos++
	}
	return string(l.src[start:l.pos])
}

// nextToken skips blanks and returns the next Token. Patterns are tried in a
// fixed order: number, identifier, operator, punctuation.
func (l *Lexer) nextToken() (Token, error) {
	l.skipBlanks()
	if l.pos >= len(l.src) {
		return Token{Type: EOF}, nil
	}

	ch := l.peek()
	switch {
	case isDigit(ch):
		return Token{NUMBER, l.scanWhile(isDigit)}, nil
	case isLetter(ch):
		lexeme := l.scanWhile(func(r rune) bool { return isLetter(r) || isDigit(r) })
		return Token{IDENTIFIER, lexeme}, nil
	}

	l.pos++
	switch ch {
	case '+', '-', '*', '/', '%':
		return Token{OPERATOR, string(ch)}, nil
	case '(':
		return Token{LPAREN, "("}, nil
	case ')':
		return Token{RPAREN, ")"}, nil
	case ',':
		return Token{COMMA, ","}, nil
	case '=':
		return Token{EQUALS, "="}, nil
	default:
		return Token{}, syntaxErrorf("unexpected character %q", ch)
	}
}

// Lex tokenises src and returns all tokens including the final EOF token.
// It stops at the first character no token pattern matches.
func Lex(src string) ([]Token, error) {
	l := newLexer(src)
	var tokens []Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}
