package compiler

import (
	"fmt"
	"sort"
	"strings"
)

type SymbolKind int

const (
	SymReserved SymbolKind = iota // result, error, zero
	SymVariable                   // program variable read by the statement
	SymTemp                       // compiler temporary t1, t2, ...
	SymLabel                      // jump target L1, L2, ...
)

func (k SymbolKind) String() string {
	switch k {
	case SymReserved:
		return "reserved"
	case SymVariable:
		return "variable"
	case SymTemp:
		return "temp"
	case SymLabel:
		return "label"
	}
	return fmt.Sprintf("SymbolKind(%d)", int(k))
}

type Symbol struct {
	Name  string
	Kind  SymbolKind
	Order int // definition order within the compilation
}

// SymbolTable records every name one compilation uses: reserved cells,
// variables, temporaries and labels. Cells and labels share one namespace so
// a generated name never shadows anything the program mentions.
type SymbolTable struct {
	symbols map[string]Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]Symbol)}
}

// Define adds name with the given kind. An existing entry is returned
// unchanged together with true.
func (s *SymbolTable) Define(name string, kind SymbolKind) (Symbol, bool) {
	if sym, ok := s.symbols[name]; ok {
		return sym, true
	}
	sym := Symbol{Name: name, Kind: kind, Order: len(s.symbols)}
	s.symbols[name] = sym
	return sym, false
}

// Lookup returns the symbol and whether it was found.
func (s *SymbolTable) Lookup(name string) (Symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}

// Fresh defines and returns the first name prefix<n>, n > *counter, that is
// not already taken, advancing *counter past it.
func (s *SymbolTable) Fresh(prefix string, counter *int, kind SymbolKind) string {
	for {
		*counter++
		name := fmt.Sprintf("%s%d", prefix, *counter)
		if _, taken := s.symbols[name]; !taken {
			s.Define(name, kind)
			return name
		}
	}
}

// Names returns the names of the given kind in definition order.
func (s *SymbolTable) Names(kind SymbolKind) []string {
	var syms []Symbol
	for _, sym := range s.symbols {
		if sym.Kind == kind {
			syms = append(syms, sym)
		}
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i].Order < syms[j].Order })
	names := make([]string, len(syms))
	for i, sym := range syms {
		names[i] = sym.Name
	}
	return names
}

// String returns a deterministically ordered dump of the table.
func (s *SymbolTable) String() string {
	var sb strings.Builder
	for _, kind := range []SymbolKind{SymReserved, SymVariable, SymTemp, SymLabel} {
		names := s.Names(kind)
		if len(names) == 0 {
			fmt.Fprintf(&sb, "%-9s (none)\n", kind.String()+":")
			continue
		}
		fmt.Fprintf(&sb, "%-9s %s\n", kind.String()+":", strings.Join(names, " "))
	}
	return sb.String()
}
