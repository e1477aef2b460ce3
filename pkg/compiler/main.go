// Package compiler translates a single assignment statement
//
//	result = <expression>
//
// over integer variables, the literal 0, + - * / %, unary minus, parentheses
// and max/min/abs into ASUA accumulator-machine assembly.
//
// Pipeline: source → Lex → Parse → Simplify → Generate → ASUA listing
package compiler
