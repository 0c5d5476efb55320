// Command staqc is a small demo driver for the checker and SSA lowerer,
// shaped after ailang's cmd/typecheck and cmd/ailang: a flag.Parse() front
// end dispatching on flag.Arg(0), with fatih/color for pass/fail output.
package main

import (
	"flag"
	"fmt"
	"os"
	"sync"

	"github.com/fatih/color"

	"github.com/staqlang/staq/internal/ast"
	"github.com/staqlang/staq/internal/scenario"
	"github.com/staqlang/staq/internal/ssa"
	"github.com/staqlang/staq/internal/stdlib"
	"github.com/staqlang/staq/internal/types"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

func main() {
	var helpFlag = flag.Bool("help", false, "Show help")
	var workers = flag.Int("workers", 4, "number of goroutines to check scenarios with")
	flag.Parse()

	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	switch flag.Arg(0) {
	case "scenarios":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing directory argument\n", red("Error"))
			fmt.Println("Usage: staqc scenarios <dir>")
			os.Exit(1)
		}
		runScenarios(flag.Arg(1), *workers)
	case "infer":
		runInfer()
	case "ssa":
		runSSA()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("Error"), flag.Arg(0))
		printHelp()
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(bold("staqc") + " - type checker and SSA lowering driver")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  staqc scenarios <dir>   run every *.yaml scenario in dir, -workers wide")
	fmt.Println("  staqc infer             check the built-in demo programs, print their types")
	fmt.Println("  staqc ssa               lower \"1 2 +u8\" to SSA, before and after folding")
	fmt.Println("  staqc -help             show this message")
}

// runInfer checks each demoProgram in isolation (its own fresh Context, so
// one program's user-word definitions never leak into the next) and prints
// both its composed type and, after Finalize, the narrowed per-node type
// TypeOf reports for the program's last item — the same two-stage story
// scenarios_test.go asserts on, just narrated instead of checked.
func runInfer() {
	for _, prog := range demoPrograms() {
		fmt.Printf("%s %s\n", cyan("program"), prog.desc)

		ctx := types.NewContext()
		stdlib.Install(ctx)

		fn, err := types.InferSequence(prog.items, ctx)
		if err != nil {
			fmt.Printf("  %s %v\n", red("FAIL"), err)
			continue
		}
		fmt.Printf("  %s composed: %s\n", green("OK"), fn.String())

		if err := types.FinalizeItems(prog.items, ctx); err != nil {
			fmt.Printf("  %s finalize: %v\n", red("FAIL"), err)
			continue
		}
		last := prog.items[len(prog.items)-1]
		if narrowed, ok := types.TypeOf(last, ctx); ok {
			fmt.Printf("    finalized: %s\n", narrowed.String())
		}
	}
}

// runSSA lowers the "1 2 +u8" demo program to SSA and prints its single
// block's instructions twice: once as lowered, once after
// ssa.ConstantPropagate has folded the add into a single constant, so the
// two printouts make the pass's effect visible.
func runSSA() {
	desc, items := ssaDemoProgram()
	fmt.Printf("%s %s\n", cyan("program"), desc)

	ctx := types.NewContext()
	stdlib.Install(ctx)

	fn, err := types.InferSequence(items, ctx)
	if err != nil {
		fmt.Printf("  %s %v\n", red("FAIL"), err)
		return
	}
	fmt.Printf("  %s composed: %s\n", green("OK"), fn.String())

	cfg, _, err := ssa.Lower(&ast.Sequence{Items: items}, ctx, nil)
	if err != nil {
		fmt.Printf("  %s lowering: %v\n", red("FAIL"), err)
		return
	}
	fmt.Println("  before folding:")
	printCFG(cfg)

	ssa.ConstantPropagate(cfg)
	fmt.Println("  after folding:")
	printCFG(cfg)
}

func printCFG(cfg *ssa.CFG) {
	for _, b := range cfg.GraphVisit() {
		fmt.Printf("    %s (%s):\n", b.Name, b.Note)
		for _, instr := range b.Instrs {
			fmt.Printf("      %s\n", instr.String())
		}
	}
}

func runScenarios(dir string, workers int) {
	scenarios, err := scenario.LoadDir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	if workers < 1 {
		workers = 1
	}

	type outcome struct {
		lines []string
		ok    bool
	}

	results := make([]outcome, len(scenarios))
	jobs := make(chan int, len(scenarios))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				lines, ok := runOne(scenarios[i])
				results[i] = outcome{lines: lines, ok: ok}
			}
		}()
	}
	for i := range scenarios {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	failures := 0
	for _, r := range results {
		for _, line := range r.lines {
			fmt.Println(line)
		}
		if !r.ok {
			failures++
		}
	}

	fmt.Println()
	if failures == 0 {
		fmt.Printf("%s %d scenario(s) passed\n", green("OK"), len(scenarios))
		return
	}
	fmt.Printf("%s %d/%d scenario(s) failed\n", red("FAIL"), failures, len(scenarios))
	os.Exit(1)
}

// runOne checks a single scenario against its own freshly built Context —
// never shared across goroutines, since *types.Context is not safe for
// concurrent composition — and returns the lines it would have printed
// rather than printing directly, so runScenarios can emit them in original
// file order once every worker has finished instead of interleaving output
// from whichever goroutine happens to finish first.
func runOne(s *scenario.Scenario) ([]string, bool) {
	var lines []string
	emit := func(format string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}
	emit("%s %s: ", cyan("scenario"), s.ID)

	seq, err := s.Program.ToSequence()
	if err != nil {
		emit("%s (parsing tokens: %v)", red("FAIL"), err)
		return lines, false
	}

	ctx := types.NewContext()
	stdlib.Install(ctx)

	fn, err := types.InferSequence(seq.Items, ctx)
	if s.ExpectError != "" {
		if err == nil {
			emit("%s (expected error %q, got none)", red("FAIL"), s.ExpectError)
			return lines, false
		}
		emit("%s (errored as expected: %v)", green("OK"), err)
		return lines, true
	}
	if err != nil {
		emit("%s (%v)", red("FAIL"), err)
		return lines, false
	}

	emit("%s %s", green("OK"), fn.String())

	if s.LowerToSSA {
		cfg, _, err := ssa.Lower(seq, ctx, nil)
		if err != nil {
			emit("  %s lowering: %v", red("FAIL"), err)
			return lines, false
		}
		ssa.ConstantPropagate(cfg)
		for _, b := range cfg.GraphVisit() {
			emit("  %s (%s):", b.Name, b.Note)
			for _, instr := range b.Instrs {
				emit("    %s", instr.String())
			}
		}
	}

	return lines, true
}
