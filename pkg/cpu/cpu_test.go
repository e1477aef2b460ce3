package cpu

import (
	"errors"
	"testing"
)

// loadProgram builds a program from instructions; labels are not needed
// because Target is set directly.
func loadProgram(ins ...Instruction) *Program {
	return &Program{Instructions: ins, Labels: map[string]int{}}
}

func mov(dst, src Operand) Instruction { return Instruction{Op: OpMOV, Dst: dst, Src: src} }
func alu(op Opcode, dst Register, src Operand) Instruction {
	return Instruction{Op: op, Dst: Reg(dst), Src: src}
}
func jump(op Opcode, target int) Instruction {
	return Instruction{Op: op, Label: "L", Target: target}
}
func hlt() Instruction { return Instruction{Op: OpHLT} }

func TestALU(t *testing.T) {
	tests := []struct {
		name string
		op   Opcode
		a, b int16
		want int16
	}{
		{"ADD", OpADD, 10, 20, 30},
		{"SUB", OpSUB, 10, 30, -20},
		{"ADD past 127", OpADD, 100, 100, 200},
		{"SUB wraps", OpSUB, -32768, 1, 32767},
	}
	for _, tt := range tests {
		c := NewCPU(loadProgram(alu(tt.op, RegA, Reg(RegB)), hlt()))
		c.Regs[RegA], c.Regs[RegB] = tt.a, tt.b
		if err := c.Run(); err != nil {
			t.Fatalf("%s: Run failed: %v", tt.name, err)
		}
		if c.Regs[RegA] != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.want, c.Regs[RegA])
		}
	}
}

func TestMemoryMoves(t *testing.T) {
	c := NewCPU(loadProgram(
		mov(Reg(RegA), Cell("x")),
		mov(Reg(RegB), Imm(5)),
		alu(OpADD, RegA, Reg(RegB)),
		mov(Cell("y"), Reg(RegA)),
		hlt(),
	))
	c.Set("x", 37)
	if err := c.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if v, ok := c.Get("y"); !ok || v != 42 {
		t.Errorf("y: expected 42, got %d (defined=%v)", v, ok)
	}
	if c.Reads != 1 || c.Writes != 1 {
		t.Errorf("counters: expected 1 read and 1 write, got %d and %d", c.Reads, c.Writes)
	}
	if c.Steps != 5 {
		t.Errorf("steps: expected 5, got %d", c.Steps)
	}
}

func TestCompareAndJumps(t *testing.T) {
	tests := []struct {
		op    Opcode
		a, b  int16
		taken bool
	}{
		{OpJEQ, 3, 3, true},
		{OpJEQ, 3, 4, false},
		{OpJGT, 5, 4, true},
		{OpJGT, 4, 4, false},
		{OpJGE, 4, 4, true},
		{OpJGE, -1, 0, false},
		{OpJLE, 4, 4, true},
		{OpJLE, -1, 0, true},
		{OpJLE, 1, 0, false},
		{OpJMP, 1, 0, true},
	}
	for _, tt := range tests {
		// A = taken ? 1 : 2
		c := NewCPU(loadProgram(
			alu(OpCMP, RegA, Reg(RegB)),
			jump(tt.op, 4),
			mov(Reg(RegA), Imm(2)),
			hlt(),
			mov(Reg(RegA), Imm(1)),
			hlt(),
		))
		c.Regs[RegA], c.Regs[RegB] = tt.a, tt.b
		if err := c.Run(); err != nil {
			t.Fatalf("%s: Run failed: %v", tt.op, err)
		}
		got := c.Regs[RegA] == 1
		if got != tt.taken {
			t.Errorf("%s after CMP %d,%d: taken=%v, want %v", tt.op, tt.a, tt.b, got, tt.taken)
		}
	}
}

func TestReservedCells(t *testing.T) {
	c := NewCPU(loadProgram(hlt()))
	for _, name := range []string{ResultCell, ErrorCell, ZeroCell} {
		if v, ok := c.Get(name); !ok || v != 0 {
			t.Errorf("%s: expected defined 0, got %d (defined=%v)", name, v, ok)
		}
	}
	want := []string{"error", "result", "zero"}
	got := c.Cells()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Cells: got %v, want %v", got, want)
		}
	}
}

func TestErrors(t *testing.T) {
	t.Run("UndefinedCell", func(t *testing.T) {
		c := NewCPU(loadProgram(mov(Reg(RegA), Cell("nope")), hlt()))
		if err := c.Run(); !errors.Is(err, ErrUndefinedCell) {
			t.Errorf("expected ErrUndefinedCell, got %v", err)
		}
	})

	t.Run("StepLimit", func(t *testing.T) {
		c := NewCPU(loadProgram(jump(OpJMP, 0)))
		c.MaxSteps = 100
		if err := c.Run(); !errors.Is(err, ErrStepLimit) {
			t.Errorf("expected ErrStepLimit, got %v", err)
		}
		if c.Steps != 100 {
			t.Errorf("expected 100 steps, got %d", c.Steps)
		}
	})

	t.Run("FallOffEnd", func(t *testing.T) {
		c := NewCPU(loadProgram(mov(Reg(RegA), Imm(1))))
		if err := c.Run(); !errors.Is(err, ErrPCOutOfRange) {
			t.Errorf("expected ErrPCOutOfRange, got %v", err)
		}
	})

	t.Run("StoreImmediate", func(t *testing.T) {
		c := NewCPU(loadProgram(mov(Cell("x"), Imm(1)), hlt()))
		if err := c.Run(); !errors.Is(err, ErrBadInstruction) {
			t.Errorf("expected ErrBadInstruction, got %v", err)
		}
	})

	t.Run("AddToCell", func(t *testing.T) {
		c := NewCPU(loadProgram(Instruction{Op: OpADD, Dst: Cell("x"), Src: Reg(RegA)}, hlt()))
		c.Set("x", 1)
		if err := c.Run(); !errors.Is(err, ErrBadInstruction) {
			t.Errorf("expected ErrBadInstruction, got %v", err)
		}
	})
}

func TestHaltedStepIsNoop(t *testing.T) {
	c := NewCPU(loadProgram(hlt()))
	if err := c.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	steps := c.Steps
	if err := c.Step(); err != nil {
		t.Errorf("Step on halted machine: %v", err)
	}
	if c.Steps != steps {
		t.Errorf("halted machine advanced from %d to %d steps", steps, c.Steps)
	}
}

func TestReset(t *testing.T) {
	c := NewCPU(loadProgram(mov(Reg(RegA), Imm(7)), mov(Cell("x"), Reg(RegA)), hlt()))
	if err := c.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	c.Reset()
	if c.Halted || c.PC != 0 || c.Steps != 0 || c.Regs[RegA] != 0 {
		t.Errorf("Reset left state behind: %+v", c)
	}
	if _, ok := c.Get("x"); ok {
		t.Errorf("Reset kept cell x")
	}
	if c.Program == nil {
		t.Errorf("Reset dropped the program")
	}
}

func TestLookupOpcode(t *testing.T) {
	for _, m := range []string{"mov", "MOV", "Jle", "HLT"} {
		if _, ok := LookupOpcode(m); !ok {
			t.Errorf("LookupOpcode(%q) failed", m)
		}
	}
	if _, ok := LookupOpcode("NOP"); ok {
		t.Errorf("LookupOpcode(NOP) should fail")
	}
}

func TestInstructionString(t *testing.T) {
	tests := []struct {
		in   Instruction
		want string
	}{
		{mov(Reg(RegA), Cell("a")), "MOV A,(a)"},
		{mov(Cell("t1"), Reg(RegA)), "MOV (t1),A"},
		{alu(OpCMP, RegA, Imm(127)), "CMP A,127"},
		{Instruction{Op: OpJGT, Label: "L1", Target: 3}, "JGT L1"},
		{hlt(), "HLT"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("String: got %q, want %q", got, tt.want)
		}
	}
}
