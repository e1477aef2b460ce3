package compiler

import (
	"fmt"
	"strings"

	"asuacc/pkg/asm"
	"asuacc/pkg/cpu"
)

// DefaultDeclared is the variable set of the classroom environment: the
// cells a through g are initialised before the program runs.
var DefaultDeclared = []string{"a", "b", "c", "d", "e", "f", "g"}

// Options configures one compilation.
type Options struct {
	// ImmediateZero loads 0 with "MOV A,0". When false the generator reads
	// the reserved zero cell instead, which costs one memory read.
	ImmediateZero bool

	// Declared, when non-nil, is the set of variables the environment
	// provides. Any other name is a SyntaxError. Reserved cells are always
	// accepted.
	Declared []string
}

func DefaultOptions() Options {
	return Options{ImmediateZero: true}
}

// Stats summarises a listing. Reads and Writes count register loads from and
// stores to memory cells in the emitted text, not at run time.
type Stats struct {
	Lines        int // listing lines, label lines included
	Instructions int
	Reads        int
	Writes       int
}

func (s Stats) MemAccesses() int { return s.Reads + s.Writes }

func (s Stats) String() string {
	return fmt.Sprintf("lines=%d instructions=%d reads=%d writes=%d mem_accesses=%d",
		s.Lines, s.Instructions, s.Reads, s.Writes, s.MemAccesses())
}

// Listing is the output of a successful compilation.
type Listing struct {
	Code    []string
	Stats   Stats
	Symbols *SymbolTable
}

// String returns the listing as assembler source, one line per instruction.
func (l *Listing) String() string {
	return strings.Join(l.Code, "\n") + "\n"
}

// Compile translates one "result = <expr>" statement into an ASUA listing.
// Syntax errors are returned as *SyntaxError and produce no listing.
//
// Pipeline: Lex -> Parse -> check target and names -> Simplify -> Generate
func Compile(src string, opts Options) (*Listing, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}

	stmt, err := Parse(tokens)
	if err != nil {
		return nil, err
	}
	if stmt.Target != ResultCell {
		return nil, syntaxErrorf("assignment must be of the form: %s = <expression>, got %s =", ResultCell, stmt.Target)
	}

	syms := NewSymbolTable()
	syms.Define(ResultCell, SymReserved)
	syms.Define(ErrorCell, SymReserved)
	if !opts.ImmediateZero {
		syms.Define(ZeroCell, SymReserved)
	}

	used := Variables(stmt.Value)
	if opts.Declared != nil {
		if unknown := undeclared(used, opts.Declared); len(unknown) > 0 {
			return nil, &SyntaxError{Msg: "undeclared variables", Names: unknown}
		}
		for _, name := range opts.Declared {
			syms.Define(name, SymVariable)
		}
	}
	for _, name := range used {
		syms.Define(name, SymVariable)
	}

	return Generate(Simplify(stmt.Value), syms, opts.ImmediateZero)
}

func undeclared(used, declared []string) []string {
	known := map[string]bool{ResultCell: true, ErrorCell: true, ZeroCell: true}
	for _, name := range declared {
		known[name] = true
	}
	var unknown []string
	for _, name := range used {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// Build compiles src and assembles the listing into a program the emulator
// can run.
func Build(src string, opts Options) (*Listing, *cpu.Program, error) {
	listing, err := Compile(src, opts)
	if err != nil {
		return nil, nil, err
	}
	prog, _, err := asm.Assemble(listing.String())
	if err != nil {
		return listing, nil, fmt.Errorf("assembly error: %w", err)
	}
	return listing, prog, nil
}
