package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSyntax is matched by every *SyntaxError under errors.Is.
var ErrSyntax = errors.New("syntax error")

// SyntaxError reports a statement the compiler refuses: a bad character, an
// unexpected token, a wrong left-hand side, a call with the wrong arity or an
// unknown function, a non-zero literal, or references to undeclared names.
type SyntaxError struct {
	Msg   string
	Names []string // undeclared variables, in order of first use
}

func (e *SyntaxError) Error() string {
	if len(e.Names) > 0 {
		return fmt.Sprintf("syntax error: %s: %s", e.Msg, strings.Join(e.Names, ", "))
	}
	return "syntax error: " + e.Msg
}

func (e *SyntaxError) Is(target error) bool { return target == ErrSyntax }

func syntaxErrorf(format string, args ...any) error {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...)}
}
