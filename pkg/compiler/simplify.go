package compiler

// Simplify rewrites e using the identities of 0 and returns a new tree; e is
// left untouched. Children are simplified first, so one pass reaches a fixed
// point.
//
//	x * 0, 0 * x  ->  0
//	0 + x, x + 0  ->  x
//	x - 0         ->  x
//	0 - x         ->  -x
func Simplify(e Expr) Expr {
	switch n := e.(type) {
	case *Variable:
		return &Variable{Name: n.Name}
	case *Zero:
		return &Zero{}
	case *Negate:
		return &Negate{Operand: Simplify(n.Operand)}
	case *BinaryOp:
		return simplifyBinary(n.Op, Simplify(n.Left), Simplify(n.Right))
	case *Call:
		args := make([]Expr, len(n.Args))
		for i, arg := range n.Args {
			args[i] = Simplify(arg)
		}
		return &Call{Func: n.Func, Args: args}
	}
	return e
}

func simplifyBinary(op Operator, left, right Expr) Expr {
	leftZero, rightZero := isZero(left), isZero(right)
	switch op {
	case OpMul:
		if leftZero || rightZero {
			return &Zero{}
		}
	case OpAdd:
		if leftZero {
			return right
		}
		if rightZero {
			return left
		}
	case OpSub:
		if rightZero {
			return left
		}
		if leftZero {
			return &Negate{Operand: right}
		}
	}
	return &BinaryOp{Op: op, Left: left, Right: right}
}

func isZero(e Expr) bool {
	_, ok := e.(*Zero)
	return ok
}
