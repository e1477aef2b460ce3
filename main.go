//go:build !js

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"asuacc/pkg/asm"
	"asuacc/pkg/compiler"
	"asuacc/pkg/cpu"
	"asuacc/pkg/utils"
)

func main() {
	inPath := flag.String("in", "", "input file: an ASUA listing, or a statement when it ends in .expr")
	outPath := flag.String("out", "", "listing output path for .expr input (default: input with .asm extension)")
	runProgram := flag.Bool("run", false, "run the program on the emulator")
	set := flag.String("set", "", "initial variable values, e.g. a=3,b=10")
	stateIn := flag.String("state-in", "", "restore machine state from this JSON file before running")
	stateOut := flag.String("state-out", "", "write machine state to this JSON file after running")
	maxSteps := flag.Int("max-steps", cpu.DefaultMaxSteps, "step budget for -run")
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -in with a listing or a .expr statement file")
		flag.Usage()
		os.Exit(2)
	}

	source, err := os.ReadFile(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read input file %q: %v\n", *inPath, err)
		os.Exit(1)
	}

	listing := string(source)
	if strings.HasSuffix(*inPath, ".expr") {
		compiled, err := compiler.Compile(strings.TrimSpace(listing), compiler.DefaultOptions())
		if err != nil {
			fmt.Fprintf(os.Stderr, "compilation failed: %v\n", err)
			os.Exit(1)
		}
		listing = compiled.String()

		output := *outPath
		if output == "" {
			output = defaultOutputPath(*inPath)
		}
		if err := os.WriteFile(output, []byte(listing), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write listing %q: %v\n", output, err)
			os.Exit(1)
		}
		fmt.Printf("compiled %s -> %s (%s)\n", *inPath, output, compiled.Stats)
	}

	prog, _, err := asm.Assemble(listing)
	if err != nil {
		fmt.Fprintf(os.Stderr, "assembly failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("assembled %d instructions\n", prog.Len())

	if !*runProgram {
		return
	}

	vars, err := utils.ParseBindings(*set)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -set: %v\n", err)
		os.Exit(2)
	}
	if err := runListing(prog, vars, *maxSteps, *stateIn, *stateOut); err != nil {
		fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
		os.Exit(1)
	}
}

func defaultOutputPath(inPath string) string {
	ext := filepath.Ext(inPath)
	if ext == "" {
		return inPath + ".asm"
	}
	return strings.TrimSuffix(inPath, ext) + ".asm"
}

// runListing runs prog to completion. A restored state replaces the initial
// memory; -set values are applied on top of it.
func runListing(prog *cpu.Program, vars map[string]int16, maxSteps int, stateIn, stateOut string) error {
	vm := cpu.NewCPU(prog)
	vm.MaxSteps = maxSteps

	if stateIn != "" {
		f, err := os.Open(stateIn)
		if err != nil {
			return err
		}
		err = vm.RestoreState(f)
		f.Close()
		if err != nil {
			return err
		}
	}
	for name, v := range vars {
		vm.Set(name, v)
	}

	runErr := vm.Run()

	if stateOut != "" {
		f, err := os.Create(stateOut)
		if err != nil {
			return err
		}
		if err := vm.WriteState(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}

	result, _ := vm.Get(cpu.ResultCell)
	errFlag, _ := vm.Get(cpu.ErrorCell)
	fmt.Printf("run complete: result=%d error=%d A=%d B=%d steps=%d reads=%d writes=%d\n",
		result, errFlag, vm.Regs[cpu.RegA], vm.Regs[cpu.RegB], vm.Steps, vm.Reads, vm.Writes)
	return nil
}
