package compiler

import (
	"reflect"
	"strings"
	"testing"
)

func compileOrFail(t *testing.T, src string, opts Options) *Listing {
	t.Helper()
	listing, err := Compile(src, opts)
	if err != nil {
		t.Fatalf("Compile(%q) failed: %v", src, err)
	}
	return listing
}

func TestCodegen_Addition(t *testing.T) {
	listing := compileOrFail(t, "result = a + b", DefaultOptions())

	expected := []string{
		"MOV A,(a)",
		"MOV B,(b)",
		"ADD A,B",
		"CMP A,127",
		"JGT L1",
		"MOV (t1),A",
		"MOV A,(t1)",
		"MOV (result),A",
		"JMP L2",
		"L1:",
		"MOV A,1",
		"MOV (error),A",
		"MOV A,0",
		"MOV (result),A",
		"JMP L2",
		"L2:",
		"HLT",
	}
	if !reflect.DeepEqual(listing.Code, expected) {
		t.Errorf("listing mismatch\n got:\n%s\nwant:\n%s", listing, strings.Join(expected, "\n"))
	}

	want := Stats{Lines: 17, Instructions: 15, Reads: 3, Writes: 4}
	if listing.Stats != want {
		t.Errorf("stats: got %+v, want %+v", listing.Stats, want)
	}
	if listing.Stats.MemAccesses() != 7 {
		t.Errorf("mem accesses: got %d, want 7", listing.Stats.MemAccesses())
	}
}

func TestCodegen_VariableNeedsNoCode(t *testing.T) {
	listing := compileOrFail(t, "result = a", DefaultOptions())
	if listing.Code[0] != "MOV A,(a)" || listing.Code[1] != "MOV (result),A" {
		t.Errorf("expected direct move of a into result, got:\n%s", listing)
	}
}

func TestCodegen_ZeroCell(t *testing.T) {
	opts := Options{ImmediateZero: false}
	listing := compileOrFail(t, "result = 0", opts)

	for _, l := range listing.Code {
		if l == "MOV A,0" {
			t.Errorf("immediate zero emitted with ImmediateZero off:\n%s", listing)
		}
	}
	if listing.Code[0] != "MOV A,(zero)" {
		t.Errorf("expected zero to be read from the zero cell, got %q", listing.Code[0])
	}
	if _, ok := listing.Symbols.Lookup(ZeroCell); !ok {
		t.Errorf("zero cell missing from symbol table")
	}

	imm := compileOrFail(t, "result = 0", DefaultOptions())
	if listing.Stats.Reads != imm.Stats.Reads+2 {
		t.Errorf("zero cell should cost one read per zero load: %d vs %d", listing.Stats.Reads, imm.Stats.Reads)
	}
}

func TestCodegen_DivisionChecksZero(t *testing.T) {
	listing := compileOrFail(t, "result = a / b", DefaultOptions())
	text := listing.String()
	if !strings.Contains(text, "CMP A,0\nJEQ L1\n") {
		t.Errorf("division should branch to the error label on a zero divisor:\n%s", text)
	}
}

func TestCodegen_MinMaxBranches(t *testing.T) {
	tests := []struct {
		src  string
		jump string
	}{
		{"result = max(a, b)", "JGE"},
		{"result = min(a, b)", "JLE"},
	}
	for _, tt := range tests {
		listing := compileOrFail(t, tt.src, DefaultOptions())
		found := false
		for _, l := range listing.Code {
			if strings.HasPrefix(l, tt.jump+" ") {
				found = true
			}
		}
		if !found {
			t.Errorf("%s: expected a %s instruction:\n%s", tt.src, tt.jump, listing)
		}
	}
}

func TestCodegen_AvoidsNameCollisions(t *testing.T) {
	listing := compileOrFail(t, "result = t1 + L1", DefaultOptions())

	if got := listing.Symbols.Names(SymTemp); !reflect.DeepEqual(got, []string{"t2"}) {
		t.Errorf("temps: got %v, want [t2]", got)
	}
	if got := listing.Symbols.Names(SymLabel); !reflect.DeepEqual(got, []string{"L2", "L3"}) {
		t.Errorf("labels: got %v, want [L2 L3]", got)
	}
	for _, l := range listing.Code {
		if l == "L1:" || l == "MOV (t1),A" {
			t.Errorf("generated code overwrote a program name: %q", l)
		}
	}
}

func TestCodegen_Deterministic(t *testing.T) {
	sources := []string{
		"result = a * b - c",
		"result = max(a, min(b, 0))",
		"result = abs(a / b) % -c",
	}
	for _, src := range sources {
		first := compileOrFail(t, src, DefaultOptions())
		second := compileOrFail(t, src, DefaultOptions())
		if !reflect.DeepEqual(first.Code, second.Code) {
			t.Errorf("%s: listings differ between compilations", src)
		}
		if first.Stats != second.Stats {
			t.Errorf("%s: stats differ: %+v vs %+v", src, first.Stats, second.Stats)
		}
	}
}

func TestCodegen_SingleEpilogue(t *testing.T) {
	listing := compileOrFail(t, "result = a * b / c % d", DefaultOptions())
	halts, errorStores := 0, 0
	for _, l := range listing.Code {
		if l == "HLT" {
			halts++
		}
		if l == "MOV (error),A" {
			errorStores++
		}
	}
	if halts != 1 || errorStores != 1 {
		t.Errorf("expected one HLT and one error store, got %d and %d", halts, errorStores)
	}
	if listing.Code[len(listing.Code)-1] != "HLT" {
		t.Errorf("listing must end with HLT")
	}
}

func TestCodegen_GenerateRejectsBadArity(t *testing.T) {
	bad := &Call{Func: FuncAbs, Args: []Expr{&Variable{Name: "a"}, &Variable{Name: "b"}}}
	if _, err := Generate(bad, NewSymbolTable(), true); err == nil {
		t.Errorf("expected error for abs with two arguments")
	}
}
