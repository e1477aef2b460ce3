package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/sanity-io/litter"
	"golang.org/x/sync/errgroup"

	"asuacc/pkg/compiler"
	"asuacc/pkg/utils"
)

const testSource = "result = max(a, min(b, 0)) * abs(a - b)"

func main() {
	showTokens := flag.Bool("tokens", false, "print the token stream")
	showAST := flag.Bool("ast", false, "dump the parsed and simplified trees")
	showSyms := flag.Bool("syms", false, "print the symbol table")
	strict := flag.Bool("strict", false, "only accept the declared variables a..g")
	zeroCell := flag.Bool("zero-cell", false, "read 0 from the zero cell instead of loading an immediate")
	batch := flag.String("batch", "", "compile every statement in `file`, one per line")
	jobs := flag.Int("j", runtime.NumCPU(), "parallel compilations for -batch")
	flag.Parse()

	opts := compiler.DefaultOptions()
	opts.ImmediateZero = !*zeroCell
	if *strict {
		opts.Declared = compiler.DefaultDeclared
	}

	if *batch != "" {
		if err := compileBatch(*batch, *jobs, opts); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	src := testSource
	if flag.NArg() > 0 {
		data, err := os.ReadFile(flag.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		src = strings.TrimSpace(string(data))
	}

	fmt.Printf("Source:\n%s\n\n", src)

	// Lex
	tokens, err := compiler.Lex(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lex error:", err)
		os.Exit(1)
	}

	if *showTokens {
		fmt.Printf("Tokens (%d)\n", len(tokens))
		for _, tok := range tokens {
			fmt.Println(" ", tok)
		}
		fmt.Println()
	}

	// Parse
	stmt, err := compiler.Parse(tokens)
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse error:", err)
		os.Exit(1)
	}

	if *showAST {
		fmt.Println("AST")
		litter.Dump(stmt)
		fmt.Println("Simplified:", compiler.Simplify(stmt.Value))
		fmt.Println()
	}

	// code generation
	listing, err := compiler.Compile(src, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "compile error:", err)
		os.Exit(1)
	}

	fmt.Println("Generated Assembly")
	fmt.Print(listing)
	fmt.Println()
	fmt.Println(listing.Stats)

	if *showSyms {
		fmt.Println()
		fmt.Print(listing.Symbols)
	}
}

type batchResult struct {
	listing *compiler.Listing
	err     error
}

// compileBatch compiles the statements of path concurrently and prints the
// results in input order. Syntax errors are reported per statement; the
// returned error only says whether any statement failed.
func compileBatch(path string, jobs int, opts compiler.Options) error {
	stmts, err := utils.ReadStatements(path)
	if err != nil {
		return err
	}

	results := make([]batchResult, len(stmts))
	var g errgroup.Group
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, src := range stmts {
		i, src := i, src
		g.Go(func() error {
			listing, err := compiler.Compile(src, opts)
			results[i] = batchResult{listing: listing, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for i, r := range results {
		fmt.Printf("; [%d] %s\n", i+1, stmts[i])
		if r.err != nil {
			failed++
			fmt.Printf("; %v\n\n", r.err)
			continue
		}
		fmt.Print(r.listing)
		fmt.Printf("; %s\n\n", r.listing.Stats)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d statements failed", failed, len(stmts))
	}
	return nil
}
