package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"asuacc/pkg/compiler"
	"asuacc/pkg/cpu"
	"asuacc/pkg/utils"
)

type session struct {
	opts    compiler.Options
	run     bool
	showAsm bool
	vars    map[string]int16
	out     io.Writer
}

func main() {
	set := flag.String("set", "", "variable values for -run, e.g. a=3,b=10")
	run := flag.Bool("run", false, "execute each compiled statement on the emulator")
	showAsm := flag.Bool("show-asm", true, "print the generated listing")
	strict := flag.Bool("strict", false, "only accept the declared variables a..g")
	zeroCell := flag.Bool("zero-cell", false, "read 0 from the zero cell instead of loading an immediate")
	flag.Parse()

	vars, err := utils.ParseBindings(*set)
	if err != nil {
		log.Fatalf("Invalid -set: %v", err)
	}

	s := &session{
		opts:    compiler.DefaultOptions(),
		run:     *run,
		showAsm: *showAsm,
		vars:    vars,
		out:     os.Stdout,
	}
	s.opts.ImmediateZero = !*zeroCell
	if *strict {
		s.opts.Declared = compiler.DefaultDeclared
	}

	// A file argument is compiled once instead of starting the prompt.
	if flag.NArg() > 0 {
		fullPath, _, err := utils.GetPathInfo(flag.Arg(0))
		if err != nil {
			log.Fatalf("Failed to resolve path: %v", err)
		}
		stmts, err := utils.ReadStatements(fullPath)
		if err != nil {
			log.Fatalf("Failed to read source file: %v", err)
		}
		for _, src := range stmts {
			s.eval(src)
		}
		return
	}

	s.repl(os.Stdin)
}

// repl reads one statement per line until EOF or ":q". Lines starting with
// ":set" update the variable bindings.
func (s *session) repl(in io.Reader) {
	sc := bufio.NewScanner(in)
	fmt.Fprint(s.out, "> ")
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
		case line == ":q":
			return
		case strings.HasPrefix(line, ":set"):
			vars, err := utils.ParseBindings(strings.TrimPrefix(line, ":set"))
			if err != nil {
				fmt.Fprintln(s.out, "error:", err)
				break
			}
			for name, v := range vars {
				s.vars[name] = v
			}
		default:
			s.eval(line)
		}
		fmt.Fprint(s.out, "> ")
	}
}

func (s *session) eval(src string) {
	listing, prog, err := compiler.Build(src, s.opts)
	if err != nil {
		fmt.Fprintln(s.out, "error:", err)
		return
	}
	if s.showAsm {
		fmt.Fprint(s.out, listing)
	}
	fmt.Fprintln(s.out, listing.Stats)

	if !s.run {
		return
	}
	vm := cpu.NewCPU(prog)
	for name, v := range s.vars {
		vm.Set(name, v)
	}
	if err := vm.Run(); err != nil {
		fmt.Fprintln(s.out, "run error:", err)
		return
	}
	result, _ := vm.Get(cpu.ResultCell)
	errFlag, _ := vm.Get(cpu.ErrorCell)
	fmt.Fprintf(s.out, "result=%d error=%d steps=%d reads=%d writes=%d\n",
		result, errFlag, vm.Steps, vm.Reads, vm.Writes)
}
