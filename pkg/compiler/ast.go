package compiler

import (
	"fmt"
	"strings"
)

// Expr is implemented by every expression node. The set of node types is
// closed: Variable, Zero, Negate, BinaryOp and Call. Nodes are never mutated
// after construction; passes build new trees.
type Expr interface {
	exprNode()
	String() string
}

// Operator is a binary arithmetic operator.
type Operator string

const (
	OpAdd Operator = "+"
	OpSub Operator = "-"
	OpMul Operator = "*"
	OpDiv Operator = "/"
	OpMod Operator = "%"
)

// Builtin names one of the intrinsic functions.
type Builtin string

const (
	FuncMax Builtin = "max"
	FuncMin Builtin = "min"
	FuncAbs Builtin = "abs"
)

// builtinArity is the exact argument count of each intrinsic.
var builtinArity = map[Builtin]int{
	FuncMax: 2,
	FuncMin: 2,
	FuncAbs: 1,
}

// Variable is a read of a memory cell the environment has initialised.
//
//	result = a + b
//	         ^  Variable{Name: "a"}
type Variable struct {
	Name string
}

func (*Variable) exprNode()        {}
func (v *Variable) String() string { return v.Name }

// Zero is the literal 0, the only literal the language admits.
type Zero struct{}

func (*Zero) exprNode()      {}
func (*Zero) String() string { return "0" }

// Negate is unary minus.
type Negate struct {
	Operand Expr
}

func (*Negate) exprNode()        {}
func (n *Negate) String() string { return fmt.Sprintf("(- %s)", n.Operand) }

// BinaryOp represents Left Op Right.
//
//	a * b
//	^ ^ ^
//	| | Right
//	| Op
//	Left
type BinaryOp struct {
	Op    Operator
	Left  Expr
	Right Expr
}

func (*BinaryOp) exprNode() {}
func (b *BinaryOp) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// Call is an intrinsic call; len(Args) always equals builtinArity[Func].
type Call struct {
	Func Builtin
	Args []Expr
}

func (*Call) exprNode() {}
func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Func, strings.Join(args, ", "))
}

// Assignment is the parsed statement Target = Value.
type Assignment struct {
	Target string
	Value  Expr
}

func (a *Assignment) String() string {
	return fmt.Sprintf("%s = %s", a.Target, a.Value)
}

// Equal reports whether two trees have the same shape and leaves.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case *Variable:
		y, ok := b.(*Variable)
		return ok && x.Name == y.Name
	case *Zero:
		_, ok := b.(*Zero)
		return ok
	case *Negate:
		y, ok := b.(*Negate)
		return ok && Equal(x.Operand, y.Operand)
	case *BinaryOp:
		y, ok := b.(*BinaryOp)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Call:
		y, ok := b.(*Call)
		if !ok || x.Func != y.Func || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Variables returns the distinct variable names referenced by e, in order of
// first appearance (left to right).
func Variables(e Expr) []string {
	seen := make(map[string]bool)
	var names []string
	var walk func(Expr)
	walk = func(e Expr) {
		switch n := e.(type) {
		case *Variable:
			if !seen[n.Name] {
				seen[n.Name] = true
				names = append(names, n.Name)
			}
		case *Negate:
			walk(n.Operand)
		case *BinaryOp:
			walk(n.Left)
			walk(n.Right)
		case *Call:
			for _, arg := range n.Args {
				walk(arg)
			}
		case *Zero:
			// leaf
		}
	}
	walk(e)
	return names
}
