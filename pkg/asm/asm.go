package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"asuacc/pkg/cpu"
)

type Assembler struct {
	labels map[string]int
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels: make(map[string]int),
	}
}

// Assemble turns ASUA listing text into a program. The returned source map
// gives, for each instruction index, the 1-based listing line it came from.
func Assemble(code string) (*cpu.Program, map[int]int, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) (*cpu.Program, map[int]int, error) {
	lines := strings.Split(code, "\n")

	if err := a.pass1(lines); err != nil {
		return nil, nil, err
	}

	return a.pass2(lines)
}

// pass1 assigns every label the index of the instruction that follows it.
func (a *Assembler) pass1(lines []string) error {
	index := 0
	var pending []string

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return err
		}

		for _, lbl := range p.labels {
			if _, exists := a.labels[lbl]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", lbl, lineNo)
			}
			a.labels[lbl] = index
			pending = append(pending, lbl)
		}

		if p.mnemonic == "" {
			continue
		}
		if _, ok := cpu.LookupOpcode(p.mnemonic); !ok {
			return fmt.Errorf("unknown instruction on line %d: %s", lineNo, p.mnemonic)
		}
		pending = pending[:0]
		index++
	}

	if len(pending) > 0 {
		return fmt.Errorf("label '%s' does not precede an instruction", pending[0])
	}
	return nil
}

func (a *Assembler) pass2(lines []string) (*cpu.Program, map[int]int, error) {
	prog := &cpu.Program{Labels: a.labels}
	sourceMap := make(map[int]int)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, nil, err
		}
		if p.mnemonic == "" {
			continue
		}

		in, err := a.encode(p)
		if err != nil {
			return nil, nil, err
		}
		sourceMap[len(prog.Instructions)] = lineNo
		prog.Instructions = append(prog.Instructions, in)
	}

	return prog, sourceMap, nil
}

func (a *Assembler) encode(p parsedLine) (cpu.Instruction, error) {
	op, _ := cpu.LookupOpcode(p.mnemonic)
	ops := p.operands
	in := cpu.Instruction{Op: op}

	switch {
	case op == cpu.OpHLT:
		if len(ops) != 0 {
			return in, fmt.Errorf("%s expects 0 operands on line %d", op, p.lineNo)
		}

	case op.IsJump():
		if len(ops) != 1 {
			return in, fmt.Errorf("%s expects 1 operand on line %d", op, p.lineNo)
		}
		target, ok := a.labels[ops[0]]
		if !ok {
			return in, fmt.Errorf("undefined label '%s' on line %d", ops[0], p.lineNo)
		}
		in.Label, in.Target = ops[0], target

	default:
		if len(ops) != 2 {
			return in, fmt.Errorf("%s expects 2 operands on line %d", op, p.lineNo)
		}
		dst, err := parseOperand(ops[0], p.lineNo)
		if err != nil {
			return in, err
		}
		src, err := parseOperand(ops[1], p.lineNo)
		if err != nil {
			return in, err
		}
		if err := checkOperands(op, dst, src, p.lineNo); err != nil {
			return in, err
		}
		in.Dst, in.Src = dst, src
	}
	return in, nil
}

// checkOperands enforces the addressing modes the machine supports:
// MOV reg,reg|(cell)|imm and MOV (cell),reg; ADD/SUB/CMP reg,reg|(cell)|imm.
func checkOperands(op cpu.Opcode, dst, src cpu.Operand, lineNo int) error {
	if dst.Kind == cpu.OperandReg {
		return nil
	}
	if op == cpu.OpMOV && dst.Kind == cpu.OperandCell && src.Kind == cpu.OperandReg {
		return nil
	}
	return fmt.Errorf("invalid operands for %s on line %d: %s,%s", op, lineNo, dst, src)
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}

		beforeColon := strings.TrimSpace(line[:colon])
		if strings.ContainsAny(beforeColon, " \t,()") {
			break
		}

		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}

		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	mnemonic, rest, _ := strings.Cut(line, " ")
	p.mnemonic = strings.ToUpper(mnemonic)
	rest = strings.TrimSpace(rest)
	if rest != "" {
		for _, op := range strings.Split(rest, ",") {
			p.operands = append(p.operands, strings.TrimSpace(op))
		}
	}
	return p, nil
}

func stripComments(line string) string {
	if semicolon := strings.Index(line, ";"); semicolon >= 0 {
		return line[:semicolon]
	}
	return line
}

func parseOperand(token string, lineNo int) (cpu.Operand, error) {
	switch strings.ToUpper(token) {
	case "A":
		return cpu.Reg(cpu.RegA), nil
	case "B":
		return cpu.Reg(cpu.RegB), nil
	}

	if strings.HasPrefix(token, "(") && strings.HasSuffix(token, ")") {
		name := strings.TrimSpace(token[1 : len(token)-1])
		if !isIdentifier(name) {
			return cpu.Operand{}, fmt.Errorf("invalid memory cell '%s' on line %d", token, lineNo)
		}
		return cpu.Cell(name), nil
	}

	value, err := strconv.ParseInt(token, 10, 16)
	if err != nil {
		return cpu.Operand{}, fmt.Errorf("invalid operand '%s' on line %d", token, lineNo)
	}
	return cpu.Imm(int16(value)), nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}
