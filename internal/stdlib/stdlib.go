// Package stdlib is the catalog of primitive word type schemes: the fixed
// vocabulary spec.md §6 requires every Context to be seeded with. It
// follows ailang's internal/builtins/registry.go shape — a package-level
// registry populated by several init() functions grouped by family — and
// the concrete schemes are transliterated word-for-word from forfait's
// stdlibs/basic_stdlib.py, including its naming convention for fresh
// variables ("first row generic is S, second R... first generic T, second
// U, third V").
package stdlib

import "github.com/staqlang/staq/internal/types"

// Registry maps a word's name to its type scheme. Register via an init()
// function grouped by family, mirroring ailang's Registry map pattern.
var Registry = make(map[string]*types.Scheme)

func register(name string, scheme *types.Scheme) {
	Registry[name] = scheme
}

// Install seeds ctx with every catalog entry as a builtin word.
func Install(ctx *types.Context) {
	for name, scheme := range Registry {
		ctx.RegisterBuiltin(name, scheme)
	}
}

func init() {
	registerStackShuffling()
	registerControlFlow()
	registerArithmetic()
	registerComparison()
	registerCasts()
	registerLists()
	registerMemory()
	registerMisc()
}

// registerStackShuffling covers dup, drop, swap, over, rot+, rot-.
func registerStackShuffling() {
	{
		s := types.NewRowGeneric("S")
		t := types.NewGeneric("T")
		register("dup", types.NewScheme(
			[]*types.Generic{t}, []*types.RowGeneric{s},
			types.NewFunction(s, []types.Type{t}, []types.Type{t, t}),
		))
	}
	{
		s := types.NewRowGeneric("S")
		t := types.NewGeneric("T")
		register("drop", types.NewScheme(
			[]*types.Generic{t}, []*types.RowGeneric{s},
			types.NewFunction(s, []types.Type{t}, nil),
		))
	}
	{
		s := types.NewRowGeneric("S")
		t := types.NewGeneric("T")
		u := types.NewGeneric("U")
		register("swap", types.NewScheme(
			[]*types.Generic{t, u}, []*types.RowGeneric{s},
			types.NewFunction(s, []types.Type{t, u}, []types.Type{u, t}),
		))
	}
	{
		s := types.NewRowGeneric("S")
		t := types.NewGeneric("T")
		u := types.NewGeneric("U")
		register("over", types.NewScheme(
			[]*types.Generic{t, u}, []*types.RowGeneric{s},
			types.NewFunction(s, []types.Type{t, u}, []types.Type{t, u, t}),
		))
	}
	{
		// rot+ : A B C -> C A B
		s := types.NewRowGeneric("S")
		t := types.NewGeneric("T")
		u := types.NewGeneric("U")
		v := types.NewGeneric("V")
		register("rot+", types.NewScheme(
			[]*types.Generic{t, u, v}, []*types.RowGeneric{s},
			types.NewFunction(s, []types.Type{t, u, v}, []types.Type{v, t, u}),
		))
	}
	{
		// rot- : A B C -> B C A  (inverse of rot+)
		s := types.NewRowGeneric("S")
		t := types.NewGeneric("T")
		u := types.NewGeneric("U")
		v := types.NewGeneric("V")
		register("rot-", types.NewScheme(
			[]*types.Generic{t, u, v}, []*types.RowGeneric{s},
			types.NewFunction(s, []types.Type{t, u, v}, []types.Type{u, v, t}),
		))
	}
}

// registerControlFlow covers if, indexed-iter, while.
func registerControlFlow() {
	{
		// if : S T T BOOL -> S T
		// A plain generic selector at the type level — both branches must
		// agree on a single type T. The usual call site pushes two
		// quotations, forcing T to unify to their common function type;
		// SSA lowering special-cases this pattern to execute the chosen
		// branch inline rather than leaving a function value on the stack
		// (internal/ssa's lowerIf), matching forfait's stdlibs/
		// basic_stdlib.py: ZTFunc(S, [T, T, BOOL], [T]).
		s := types.NewRowGeneric("S")
		t := types.NewGeneric("T")
		register("if", types.NewScheme(
			[]*types.Generic{t}, []*types.RowGeneric{s},
			types.NewFunction(s, []types.Type{t, t, types.TBool}, []types.Type{t}),
		))
	}
	{
		// indexed-iter : S U8 U8 (R U8 -> R) -> S
		// the iterated body's row R is independent of the outer row S
		// (spec.md §9 Open Question, resolved: R does not have to share S's
		// tail, matching forfait's basic_stdlib.py construction).
		s := types.NewRowGeneric("S")
		r := types.NewRowGeneric("R")
		body := types.NewFunction(r, []types.Type{types.TU8}, nil)
		register("indexed-iter", types.NewScheme(
			nil, []*types.RowGeneric{s, r},
			types.NewFunction(s, []types.Type{types.TU8, types.TU8, body}, nil),
		))
	}
	{
		// while : S (S -> S BOOL) (S -> S) -> S
		// condition and body both operate on the same outer row S — this
		// is the module's own contract (spec.md §6), not forfait's
		// original single-argument, independent-row version.
		s := types.NewRowGeneric("S")
		cond := types.NewFunction(s, nil, []types.Type{types.TBool})
		body := types.NewFunction(s, nil, nil)
		register("while", types.NewScheme(
			nil, []*types.RowGeneric{s},
			types.NewFunction(s, []types.Type{cond, body}, nil),
		))
	}
}

// registerArithmetic covers ++u8/--u8 and the four arithmetic ops for u8
// and u16.
func registerArithmetic() {
	registerUnary("++u8", types.TU8, types.TU8)
	registerUnary("--u8", types.TU8, types.TU8)

	for _, op := range []string{"+u8", "-u8", "*u8", "/u8"} {
		registerBinary(op, types.TU8, types.TU8, types.TU8)
	}
	for _, op := range []string{"+u16", "-u16", "*u16", "/u16"} {
		registerBinary(op, types.TU16, types.TU16, types.TU16)
	}
}

// registerComparison covers the six comparisons for u8 and u16.
func registerComparison() {
	for _, op := range []string{">u8", "<u8", ">=u8", "<=u8", "==u8", "!=u8"} {
		registerBinary(op, types.TU8, types.TU8, types.TBool)
	}
	for _, op := range []string{">u16", "<u16", ">=u16", "<=u16", "==u16", "!=u16"} {
		registerBinary(op, types.TU16, types.TU16, types.TBool)
	}
}

// registerCasts covers u16 (widening cast from u8).
func registerCasts() {
	registerUnary("u16", types.TU8, types.TU16)
}

// registerLists covers empty-list and add-to-list, the LIST<T> composite
// family (spec.md §6).
func registerLists() {
	{
		s := types.NewRowGeneric("S")
		t := types.NewGeneric("T")
		register("empty-list", types.NewScheme(
			[]*types.Generic{t}, []*types.RowGeneric{s},
			types.NewFunction(s, nil, []types.Type{types.List(t)}),
		))
	}
	{
		// add-to-list : S LIST<T> T -> S LIST<T>
		s := types.NewRowGeneric("S")
		t := types.NewGeneric("T")
		register("add-to-list", types.NewScheme(
			[]*types.Generic{t}, []*types.RowGeneric{s},
			types.NewFunction(s, []types.Type{types.List(t), t}, []types.Type{types.List(t)}),
		))
	}
}

// registerMemory covers store-at and retrieve-from, an addressable
// 16-bit-indexed memory distinct from LIST<T> — grounded directly on
// forfait's stdlibs/basic_stdlib.py: ZTFunc(S, [T, U16], []) for
// store-at, read back as the symmetric S U16 -> S T for retrieve-from.
func registerMemory() {
	{
		// store-at : S T U16 -> S
		s := types.NewRowGeneric("S")
		t := types.NewGeneric("T")
		register("store-at", types.NewScheme(
			[]*types.Generic{t}, []*types.RowGeneric{s},
			types.NewFunction(s, []types.Type{t, types.TU16}, nil),
		))
	}
	{
		// retrieve-from : S U16 -> S T
		s := types.NewRowGeneric("S")
		t := types.NewGeneric("T")
		register("retrieve-from", types.NewScheme(
			[]*types.Generic{t}, []*types.RowGeneric{s},
			types.NewFunction(s, []types.Type{types.TU16}, []types.Type{t}),
		))
	}
}

// registerMisc covers eval and identity.
func registerMisc() {
	{
		// eval : S [S -> R] -> R
		s := types.NewRowGeneric("S")
		r := types.NewRowGeneric("R")
		arg := types.NewFunctionRows(s, nil, r, nil)
		register("eval", types.NewScheme(
			nil, []*types.RowGeneric{s, r},
			types.NewFunctionRows(s, []types.Type{arg}, r, nil),
		))
	}
	{
		// identity : S T -> S T
		s := types.NewRowGeneric("S")
		t := types.NewGeneric("T")
		register("identity", types.NewScheme(
			[]*types.Generic{t}, []*types.RowGeneric{s},
			types.NewFunction(s, []types.Type{t}, []types.Type{t}),
		))
	}
}

func registerUnary(name string, in, out types.Type) {
	s := types.NewRowGeneric("S")
	register(name, types.NewScheme(
		nil, []*types.RowGeneric{s},
		types.NewFunction(s, []types.Type{in}, []types.Type{out}),
	))
}

func registerBinary(name string, in, in2, out types.Type) {
	s := types.NewRowGeneric("S")
	register(name, types.NewScheme(
		nil, []*types.RowGeneric{s},
		types.NewFunction(s, []types.Type{in, in2}, []types.Type{out}),
	))
}
