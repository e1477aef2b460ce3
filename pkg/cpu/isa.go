package cpu

import (
	"fmt"
	"strings"
)

type Opcode uint8

const (
	OpHLT Opcode = iota
	OpMOV
	OpADD
	OpSUB
	OpCMP
	OpJMP
	OpJEQ
	OpJGT
	OpJGE
	OpJLE
)

var opNames = [...]string{
	OpHLT: "HLT",
	OpMOV: "MOV",
	OpADD: "ADD",
	OpSUB: "SUB",
	OpCMP: "CMP",
	OpJMP: "JMP",
	OpJEQ: "JEQ",
	OpJGT: "JGT",
	OpJGE: "JGE",
	OpJLE: "JLE",
}

func (op Opcode) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

// IsJump reports whether op takes a label operand.
func (op Opcode) IsJump() bool {
	return op >= OpJMP && op <= OpJLE
}

// LookupOpcode maps a mnemonic (any case) to its opcode.
func LookupOpcode(mnemonic string) (Opcode, bool) {
	m := strings.ToUpper(mnemonic)
	for op, name := range opNames {
		if name == m {
			return Opcode(op), true
		}
	}
	return 0, false
}

type Register uint8

const (
	RegA Register = iota
	RegB
)

func (r Register) String() string {
	if r == RegB {
		return "B"
	}
	return "A"
}

type OperandKind uint8

const (
	OperandNone OperandKind = iota
	OperandReg              // A or B
	OperandCell             // (name), a directly addressed memory cell
	OperandImm              // decimal immediate
)

type Operand struct {
	Kind OperandKind
	Reg  Register
	Cell string
	Imm  int16
}

func Reg(r Register) Operand   { return Operand{Kind: OperandReg, Reg: r} }
func Cell(name string) Operand { return Operand{Kind: OperandCell, Cell: name} }
func Imm(v int16) Operand      { return Operand{Kind: OperandImm, Imm: v} }

func (o Operand) IsNone() bool { return o.Kind == OperandNone }

func (o Operand) String() string {
	switch o.Kind {
	case OperandReg:
		return o.Reg.String()
	case OperandCell:
		return "(" + o.Cell + ")"
	case OperandImm:
		return fmt.Sprintf("%d", o.Imm)
	}
	return ""
}

// Instruction is one decoded ASUA instruction. Jumps carry both the label as
// written and the index of the instruction it resolves to.
type Instruction struct {
	Op     Opcode
	Dst    Operand
	Src    Operand
	Label  string
	Target int
}

func (in Instruction) String() string {
	switch {
	case in.Op.IsJump():
		return fmt.Sprintf("%s %s", in.Op, in.Label)
	case in.Dst.IsNone():
		return in.Op.String()
	}
	return fmt.Sprintf("%s %s,%s", in.Op, in.Dst, in.Src)
}

// Program is an assembled instruction sequence. Labels maps each label to the
// index of the instruction it precedes.
type Program struct {
	Instructions []Instruction
	Labels       map[string]int
}

// Len returns the number of instructions.
func (p *Program) Len() int { return len(p.Instructions) }
