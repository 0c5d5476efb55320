// Command staqshell is an interactive catalog browser, grounded on
// ailang's internal/repl/repl.go: a peterh/liner Prompt loop with history,
// fatih/color output, and a small set of leading-colon commands. It never
// parses STAQ source text — there is no tokenizer anywhere in this module
// — so the only programs it can run are scenarios loaded from a catalog
// directory of YAML fixtures (the same ones internal/scenario and staqc
// scenarios drive), picked by id rather than typed in free-form.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

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
	dim   = color.New(color.Faint).SprintFunc()
)

func main() {
	dir := flag.String("scenarios", "testdata/scenarios", "directory of *.yaml scenario fixtures to browse")
	flag.Parse()

	scenarios, err := scenario.LoadDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
	start(os.Stdout, scenarios)
}

// session holds the state one :pick command establishes: the picked
// scenario, the Context its program was checked against (kept alive so
// :subs can inspect it), and, once :ssa has run, the lowered CFG plus a
// cursor into its blocks for :next to advance.
type session struct {
	picked *scenario.Scenario
	ctx    *types.Context
	fn     *types.Function

	cfg       *ssa.CFG
	cfgBlocks []*ssa.Block
	cursor    int
}

func start(out io.Writer, scenarios []*scenario.Scenario) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(false)

	historyFile := filepath.Join(os.TempDir(), ".staqshell_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	line.SetCompleter(func(in string) (c []string) {
		for _, s := range scenarios {
			if strings.HasPrefix(s.ID, in) {
				c = append(c, s.ID)
			}
		}
		sort.Strings(c)
		return
	})

	fmt.Fprintf(out, "%s\n", bold("staqshell"))
	fmt.Fprintln(out, dim("Type :help for help, :quit to exit"))
	fmt.Fprintln(out)

	sess := &session{}

	for {
		input, err := line.Prompt("staq> ")
		if err == io.EOF {
			fmt.Fprintln(out, green("Goodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if input == ":quit" || input == ":q" {
			fmt.Fprintln(out, green("Goodbye!"))
			break
		}
		handleCommand(out, sess, scenarios, input)
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

func handleCommand(out io.Writer, sess *session, scenarios []*scenario.Scenario, input string) {
	switch {
	case input == ":help":
		printHelp(out)
	case input == ":list":
		printList(out, scenarios)
	case input == ":words":
		printWords(out)
	case strings.HasPrefix(input, ":word "):
		printScheme(out, strings.TrimSpace(strings.TrimPrefix(input, ":word ")))
	case strings.HasPrefix(input, ":pick "):
		pick(out, sess, scenarios, strings.TrimSpace(strings.TrimPrefix(input, ":pick ")))
	case input == ":subs":
		printSubs(out, sess)
	case input == ":ssa":
		lowerPicked(out, sess)
	case input == ":next":
		stepSSA(out, sess)
	default:
		fmt.Fprintf(out, "%s: unknown command %q (try :help)\n", red("Error"), input)
	}
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, bold("Commands:"))
	fmt.Fprintln(out, "  :help          show this message")
	fmt.Fprintln(out, "  :quit          exit")
	fmt.Fprintln(out, "  :list          list every scenario id in the catalog")
	fmt.Fprintln(out, "  :pick <id>     check a scenario, keep its Context live")
	fmt.Fprintln(out, "  :subs          show the picked scenario's current and accumulated substitutions")
	fmt.Fprintln(out, "  :ssa           lower the picked scenario to SSA and fold constants")
	fmt.Fprintln(out, "  :next          step to the next block of the lowered CFG")
	fmt.Fprintln(out, "  :words         list every catalog word")
	fmt.Fprintln(out, "  :word <name>   show a word's type scheme")
}

func printList(out io.Writer, scenarios []*scenario.Scenario) {
	for _, s := range scenarios {
		fmt.Fprintf(out, "  %s %s\n", cyan(s.ID), dim(s.Description))
	}
}

func printWords(out io.Writer) {
	names := make([]string, 0, len(stdlib.Registry))
	for name := range stdlib.Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %s\n", cyan(name))
	}
}

func printScheme(out io.Writer, name string) {
	scheme, ok := stdlib.Registry[name]
	if !ok {
		fmt.Fprintf(out, "%s: no such word %q\n", red("Error"), name)
		return
	}
	fmt.Fprintf(out, "%s : %s\n", cyan(name), scheme.Instantiate().String())
}

// pick type-checks the named scenario's program against a fresh Context
// and keeps both alive in sess for the commands that follow, the way a
// debugger's "select frame" keeps later inspection commands scoped to
// whatever was selected.
func pick(out io.Writer, sess *session, scenarios []*scenario.Scenario, id string) {
	var found *scenario.Scenario
	for _, s := range scenarios {
		if s.ID == id {
			found = s
			break
		}
	}
	if found == nil {
		fmt.Fprintf(out, "%s: no such scenario %q (try :list)\n", red("Error"), id)
		return
	}

	seq, err := found.Program.ToSequence()
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
		return
	}

	ctx := types.NewContext()
	stdlib.Install(ctx)

	fn, err := types.InferSequence(seq.Items, ctx)
	*sess = session{picked: found, ctx: ctx}
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
		return
	}
	sess.fn = fn
	fmt.Fprintf(out, "%s %s : %s\n", green("::"), found.ID, fn.String())
}

func printSubs(out io.Writer, sess *session) {
	if sess.ctx == nil {
		fmt.Fprintf(out, "%s: no scenario picked (try :pick <id>)\n", red("Error"))
		return
	}
	fmt.Fprintln(out, bold("current:"))
	for v, t := range sess.ctx.CurrentSubstitutions() {
		fmt.Fprintf(out, "  t%d = %s\n", v, t.String())
	}
	fmt.Fprintln(out, bold("accumulated:"))
	for v, t := range sess.ctx.AccumulatedSubstitutions() {
		fmt.Fprintf(out, "  t%d = %s\n", v, t.String())
	}
}

func lowerPicked(out io.Writer, sess *session) {
	if sess.picked == nil {
		fmt.Fprintf(out, "%s: no scenario picked (try :pick <id>)\n", red("Error"))
		return
	}
	seq, err := sess.picked.Program.ToSequence()
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
		return
	}
	cfg, _, err := ssa.Lower(seq, sess.ctx, nil)
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
		return
	}
	ssa.ConstantPropagate(cfg)

	sess.cfg = cfg
	sess.cfgBlocks = cfg.GraphVisit()
	sess.cursor = 0
	fmt.Fprintf(out, "lowered %d block(s); use :next to step through them\n", len(sess.cfgBlocks))
}

func stepSSA(out io.Writer, sess *session) {
	if sess.cfg == nil {
		fmt.Fprintf(out, "%s: nothing lowered yet (try :ssa)\n", red("Error"))
		return
	}
	if sess.cursor >= len(sess.cfgBlocks) {
		fmt.Fprintln(out, dim("(end of CFG; :ssa to lower again)"))
		return
	}
	b := sess.cfgBlocks[sess.cursor]
	fmt.Fprintf(out, "%s (%s):\n", bold(b.Name), b.Note)
	for _, instr := range b.Instrs {
		fmt.Fprintf(out, "  %s\n", instr.String())
	}
	sess.cursor++
}
