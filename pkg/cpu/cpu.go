package cpu

import (
	"errors"
	"fmt"
	"sort"
)

// Reserved cells every program may read and write without the environment
// declaring them.
const (
	ResultCell = "result"
	ErrorCell  = "error"
	ZeroCell   = "zero"
)

// DefaultMaxSteps bounds Run so a non-terminating program reports an error
// instead of spinning forever.
const DefaultMaxSteps = 1_000_000

var (
	ErrUndefinedCell  = errors.New("read of undefined memory cell")
	ErrStepLimit      = errors.New("step limit exceeded")
	ErrBadInstruction = errors.New("invalid instruction")
	ErrPCOutOfRange   = errors.New("program counter out of range")
)

// CPU is the ASUA accumulator machine: two registers, directly addressed
// named memory cells and a compare result consumed by conditional jumps.
// Registers and cells are 16-bit and wrap on overflow; detecting overflow is
// the program's job.
type CPU struct {
	Regs [2]int16
	PC   int

	// Cmp is the sign of the last CMP: -1, 0 or 1.
	Cmp int

	Memory  map[string]int16
	Program *Program

	Halted bool

	// Run-time counters.
	Steps  int
	Reads  int
	Writes int

	// MaxSteps is the budget for Run. Zero means DefaultMaxSteps.
	MaxSteps int
}

// NewCPU creates a machine loaded with prog. The reserved cells start at 0.
func NewCPU(prog *Program) *CPU {
	c := &CPU{Program: prog}
	c.Reset()
	return c
}

// Reset clears registers, counters and memory, keeping the program.
func (c *CPU) Reset() {
	c.Regs = [2]int16{}
	c.PC = 0
	c.Cmp = 0
	c.Halted = false
	c.Steps, c.Reads, c.Writes = 0, 0, 0
	c.Memory = map[string]int16{
		ResultCell: 0,
		ErrorCell:  0,
		ZeroCell:   0,
	}
}

// Set initialises a memory cell, as the environment does for program
// variables before execution. It does not count as a write.
func (c *CPU) Set(name string, val int16) {
	c.Memory[name] = val
}

// Get returns the value of a memory cell and whether it is defined.
func (c *CPU) Get(name string) (int16, bool) {
	v, ok := c.Memory[name]
	return v, ok
}

// Cells returns the defined cell names in sorted order.
func (c *CPU) Cells() []string {
	names := make([]string, 0, len(c.Memory))
	for name := range c.Memory {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *CPU) reg(r Register) *int16 {
	return &c.Regs[r&1]
}

func (c *CPU) read(cell string) (int16, error) {
	v, ok := c.Memory[cell]
	if !ok {
		return 0, fmt.Errorf("%w %q at %d", ErrUndefinedCell, cell, c.PC)
	}
	c.Reads++
	return v, nil
}

func (c *CPU) write(cell string, val int16) {
	c.Memory[cell] = val
	c.Writes++
}

// value fetches a source operand.
func (c *CPU) value(o Operand) (int16, error) {
	switch o.Kind {
	case OperandReg:
		return *c.reg(o.Reg), nil
	case OperandCell:
		return c.read(o.Cell)
	case OperandImm:
		return o.Imm, nil
	}
	return 0, fmt.Errorf("%w: missing operand at %d", ErrBadInstruction, c.PC)
}

func compare(a, b int16) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Step executes one instruction. Stepping a halted machine is a no-op.
func (c *CPU) Step() error {
	if c.Halted {
		return nil
	}
	if c.Program == nil || c.PC < 0 || c.PC >= len(c.Program.Instructions) {
		return fmt.Errorf("%w: %d", ErrPCOutOfRange, c.PC)
	}

	in := c.Program.Instructions[c.PC]
	next := c.PC + 1
	c.Steps++

	switch in.Op {
	case OpHLT:
		c.Halted = true
		return nil

	case OpMOV:
		src, err := c.value(in.Src)
		if err != nil {
			return err
		}
		switch in.Dst.Kind {
		case OperandReg:
			*c.reg(in.Dst.Reg) = src
		case OperandCell:
			if in.Src.Kind != OperandReg {
				return fmt.Errorf("%w: %s at %d", ErrBadInstruction, in, c.PC)
			}
			c.write(in.Dst.Cell, src)
		default:
			return fmt.Errorf("%w: %s at %d", ErrBadInstruction, in, c.PC)
		}

	case OpADD, OpSUB, OpCMP:
		if in.Dst.Kind != OperandReg {
			return fmt.Errorf("%w: %s at %d", ErrBadInstruction, in, c.PC)
		}
		src, err := c.value(in.Src)
		if err != nil {
			return err
		}
		dst := c.reg(in.Dst.Reg)
		switch in.Op {
		case OpADD:
			*dst += src
		case OpSUB:
			*dst -= src
		case OpCMP:
			c.Cmp = compare(*dst, src)
		}

	case OpJMP, OpJEQ, OpJGT, OpJGE, OpJLE:
		if c.taken(in.Op) {
			next = in.Target
		}

	default:
		return fmt.Errorf("%w: opcode %d at %d", ErrBadInstruction, in.Op, c.PC)
	}

	c.PC = next
	return nil
}

func (c *CPU) taken(op Opcode) bool {
	switch op {
	case OpJEQ:
		return c.Cmp == 0
	case OpJGT:
		return c.Cmp > 0
	case OpJGE:
		return c.Cmp >= 0
	case OpJLE:
		return c.Cmp <= 0
	}
	return true
}

// Run steps until HLT, an error, or the step budget is spent.
func (c *CPU) Run() error {
	limit := c.MaxSteps
	if limit <= 0 {
		limit = DefaultMaxSteps
	}
	for !c.Halted {
		if c.Steps >= limit {
			return fmt.Errorf("%w (%d)", ErrStepLimit, limit)
		}
		if err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}
