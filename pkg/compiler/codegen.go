package compiler

import (
	"fmt"
	"strings"

	"asuacc/pkg/cpu"
)

// Reserved memory cells.
const (
	ResultCell = cpu.ResultCell
	ErrorCell  = cpu.ErrorCell
	ZeroCell   = cpu.ZeroCell // read instead of an immediate 0 when ImmediateZero is off
)

// UpperBound is the largest value an addition, subtraction or product may
// take before the program branches to the error epilogue. Only the upper
// side is checked.
const UpperBound = 127

// CodeGen walks an expression tree and emits ASUA listing lines. Every
// operand lives in a named memory cell; registers A and B only hold values
// for the duration of one operation.
type CodeGen struct {
	syms          *SymbolTable
	code          []string
	reads         int
	writes        int
	nextTemp      int
	nextLabel     int
	errorLabel    string
	endLabel      string
	immediateZero bool
}

// newCodeGen allocates the error and end labels up front so they are always
// L1 and L2 unless the program already uses those names.
func newCodeGen(syms *SymbolTable, immediateZero bool) *CodeGen {
	cg := &CodeGen{syms: syms, immediateZero: immediateZero}
	cg.errorLabel = cg.newLabel()
	cg.endLabel = cg.newLabel()
	return cg
}

func (cg *CodeGen) newTemp() string {
	return cg.syms.Fresh("t", &cg.nextTemp, SymTemp)
}

func (cg *CodeGen) newLabel() string {
	return cg.syms.Fresh("L", &cg.nextLabel, SymLabel)
}

func (cg *CodeGen) line(format string, args ...any) {
	cg.code = append(cg.code, fmt.Sprintf(format, args...))
}

// label defines name at the next emitted instruction.
func (cg *CodeGen) label(name string) {
	cg.line("%s:", name)
}

// load reads cell into reg.
func (cg *CodeGen) load(reg, cell string) {
	cg.line("MOV %s,(%s)", reg, cell)
	cg.reads++
}

func (cg *CodeGen) loadImm(reg string, val int) {
	cg.line("MOV %s,%d", reg, val)
}

// store writes A into cell.
func (cg *CodeGen) store(cell string) {
	cg.line("MOV (%s),A", cell)
	cg.writes++
}

func (cg *CodeGen) zeroA() {
	if cg.immediateZero {
		cg.loadImm("A", 0)
	} else {
		cg.load("A", ZeroCell)
	}
}

func (cg *CodeGen) storeZero(cell string) {
	cg.zeroA()
	cg.store(cell)
}

// checkOverflow branches to the error epilogue when A exceeds UpperBound.
func (cg *CodeGen) checkOverflow() {
	cg.line("CMP A,%d", UpperBound)
	cg.line("JGT %s", cg.errorLabel)
}

// copyToTemp stores the value of cell into a fresh temporary.
func (cg *CodeGen) copyToTemp(cell string) string {
	t := cg.newTemp()
	cg.load("A", cell)
	cg.store(t)
	return t
}

// genExpr emits code for e and returns the cell that holds its value.
func (cg *CodeGen) genExpr(e Expr) (string, error) {
	switch n := e.(type) {
	case *Variable:
		cg.syms.Define(n.Name, SymVariable)
		return n.Name, nil

	case *Zero:
		t := cg.newTemp()
		cg.storeZero(t)
		return t, nil

	case *Negate:
		v, err := cg.genExpr(n.Operand)
		if err != nil {
			return "", err
		}
		t := cg.newTemp()
		cg.storeZero(t)
		cg.load("A", t)
		cg.load("B", v)
		cg.line("SUB A,B")
		cg.store(t)
		return t, nil

	case *BinaryOp:
		left, err := cg.genExpr(n.Left)
		if err != nil {
			return "", err
		}
		right, err := cg.genExpr(n.Right)
		if err != nil {
			return "", err
		}
		switch n.Op {
		case OpAdd, OpSub:
			return cg.genAddSub(n.Op, left, right), nil
		case OpMul:
			return cg.genMul(left, right), nil
		case OpDiv:
			return cg.genDivMod(left, right, true), nil
		case OpMod:
			return cg.genDivMod(left, right, false), nil
		}
		return "", fmt.Errorf("unsupported operator %q", n.Op)

	case *Call:
		if len(n.Args) != builtinArity[n.Func] {
			return "", fmt.Errorf("%s called with %d arguments", n.Func, len(n.Args))
		}
		switch n.Func {
		case FuncMax:
			return cg.genMinMax(n.Args[0], n.Args[1], "JGE")
		case FuncMin:
			return cg.genMinMax(n.Args[0], n.Args[1], "JLE")
		case FuncAbs:
			return cg.genAbs(n.Args[0])
		}
		return "", fmt.Errorf("unsupported function %q", n.Func)
	}
	return "", fmt.Errorf("unhandled expression node %T", e)
}

func (cg *CodeGen) genAddSub(op Operator, left, right string) string {
	t := cg.newTemp()
	cg.load("A", left)
	cg.load("B", right)
	if op == OpAdd {
		cg.line("ADD A,B")
	} else {
		cg.line("SUB A,B")
	}
	cg.checkOverflow()
	cg.store(t)
	return t
}

// genMul multiplies by repeated addition. The sign of the product is tracked
// as a 0/1 parity flag while both working copies are made non-negative, and
// is reapplied at the end.
func (cg *CodeGen) genMul(left, right string) string {
	a := cg.copyToTemp(left)
	b := cg.copyToTemp(right)

	sign := cg.newTemp()
	cg.storeZero(sign)
	cg.extractSign(a, sign)
	cg.extractSign(b, sign)

	acc := cg.newTemp()
	cg.storeZero(acc)

	loop := cg.newLabel()
	done := cg.newLabel()

	// while b != 0 { acc += a; b-- }
	cg.label(loop)
	cg.load("A", b)
	cg.line("CMP A,0")
	cg.line("JEQ %s", done)
	cg.load("A", acc)
	cg.load("B", a)
	cg.line("ADD A,B")
	cg.checkOverflow()
	cg.store(acc)
	cg.load("A", b)
	cg.loadImm("B", 1)
	cg.line("SUB A,B")
	cg.store(b)
	cg.line("JMP %s", loop)

	positive := cg.newLabel()
	cg.label(done)
	cg.load("A", sign)
	cg.line("CMP A,0")
	cg.line("JEQ %s", positive)
	cg.load("B", acc)
	cg.zeroA()
	cg.line("SUB A,B")
	cg.checkOverflow()
	cg.store(acc)

	res := cg.newTemp()
	cg.label(positive)
	cg.load("A", acc)
	cg.store(res)
	return res
}

// extractSign negates cell in place when it is negative and flips sign.
func (cg *CodeGen) extractSign(cell, sign string) {
	skip := cg.newLabel()
	cg.load("A", cell)
	cg.line("CMP A,0")
	cg.line("JGE %s", skip)

	// sign = 1 - sign
	cg.loadImm("A", 1)
	cg.load("B", sign)
	cg.line("SUB A,B")
	cg.store(sign)

	// cell = 0 - cell
	cg.load("B", cell)
	cg.zeroA()
	cg.line("SUB A,B")
	cg.store(cell)
	cg.label(skip)
}

// genDivMod divides by repeated subtraction. A zero divisor branches to the
// error epilogue. The quotient is kept for "/", the remaining dividend for "%".
func (cg *CodeGen) genDivMod(left, right string, quotient bool) string {
	dividend := cg.copyToTemp(left)
	divisor := cg.copyToTemp(right)

	cg.load("A", divisor)
	cg.line("CMP A,0")
	cg.line("JEQ %s", cg.errorLabel)

	var q string
	if quotient {
		q = cg.newTemp()
		cg.storeZero(q)
	}

	start := cg.newLabel()
	body := cg.newLabel()
	end := cg.newLabel()

	cg.label(start)
	cg.load("A", divisor)
	cg.load("B", dividend)
	cg.line("CMP A,B")
	cg.line("JLE %s", body)
	cg.line("JMP %s", end)

	cg.label(body)
	cg.load("A", dividend)
	cg.load("B", divisor)
	cg.line("SUB A,B")
	cg.store(dividend)
	if quotient {
		cg.load("A", q)
		cg.loadImm("B", 1)
		cg.line("ADD A,B")
		cg.store(q)
	}
	cg.line("JMP %s", start)

	res := cg.newTemp()
	cg.label(end)
	if quotient {
		cg.load("A", q)
	} else {
		cg.load("A", dividend)
	}
	cg.store(res)
	return res
}

// genMinMax keeps the first operand unless the comparison guarded by keep
// fails, so ties always favour the first operand.
func (cg *CodeGen) genMinMax(x, y Expr, keep string) (string, error) {
	a, err := cg.genExpr(x)
	if err != nil {
		return "", err
	}
	b, err := cg.genExpr(y)
	if err != nil {
		return "", err
	}
	t := cg.newTemp()
	done := cg.newLabel()

	cg.load("A", a)
	cg.load("B", b)
	cg.line("CMP A,B")
	cg.line("%s %s", keep, done)
	cg.load("A", b)
	cg.label(done)
	cg.store(t)
	return t, nil
}

func (cg *CodeGen) genAbs(x Expr) (string, error) {
	v, err := cg.genExpr(x)
	if err != nil {
		return "", err
	}
	t := cg.newTemp()
	nonNegative := cg.newLabel()

	cg.load("A", v)
	cg.line("CMP A,0")
	cg.line("JGE %s", nonNegative)
	cg.line("MOV B,A")
	cg.zeroA()
	cg.line("SUB A,B")
	cg.label(nonNegative)
	cg.store(t)
	return t, nil
}

// epilogue moves the final value into result and appends the shared error
// routine and the halt.
func (cg *CodeGen) epilogue(final string) {
	cg.load("A", final)
	cg.store(ResultCell)
	cg.line("JMP %s", cg.endLabel)

	cg.label(cg.errorLabel)
	cg.loadImm("A", 1)
	cg.store(ErrorCell)
	cg.zeroA()
	cg.store(ResultCell)
	cg.line("JMP %s", cg.endLabel)

	cg.label(cg.endLabel)
	cg.line("HLT")
}

func (cg *CodeGen) stats() Stats {
	s := Stats{Lines: len(cg.code), Reads: cg.reads, Writes: cg.writes}
	for _, l := range cg.code {
		if !strings.HasSuffix(l, ":") {
			s.Instructions++
		}
	}
	return s
}

// Generate emits the full program for an already simplified expression. syms
// must hold every name the program may use before generation starts.
func Generate(e Expr, syms *SymbolTable, immediateZero bool) (*Listing, error) {
	cg := newCodeGen(syms, immediateZero)
	final, err := cg.genExpr(e)
	if err != nil {
		return nil, err
	}
	cg.epilogue(final)
	return &Listing{Code: cg.code, Stats: cg.stats(), Symbols: syms}, nil
}
