package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staqlang/staq/internal/ast"
	"github.com/staqlang/staq/internal/stdlib"
	"github.com/staqlang/staq/internal/types"
)

func seededContext() *types.Context {
	ctx := types.NewContext()
	stdlib.Install(ctx)
	return ctx
}

func u8(v int64) *ast.Literal { return &ast.Literal{Value: v, Base: ast.U8} }
func word(n string) *ast.WordRef { return &ast.WordRef{Name: n} }
func quote(items ...ast.Node) *ast.Quotation {
	return &ast.Quotation{Body: &ast.Sequence{Items: items}}
}

// Scenario 1: "1 3 5" => (''S -> ''S U8 U8 U8)
func TestScenario1ThreeLiterals(t *testing.T) {
	ctx := seededContext()
	fn, err := types.InferSequence([]ast.Node{u8(1), u8(3), u8(5)}, ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, fn.Left.Arity())
	require.Equal(t, 3, fn.Right.Arity())
	for _, ty := range fn.Right.Types {
		assert.True(t, ty.Equals(types.TU8))
	}
}

// Scenario 2: "[| 1 3 5 |]" pushes a single value of the inner sequence's
// function type.
func TestScenario2QuotedLiterals(t *testing.T) {
	ctx := seededContext()
	q := quote(u8(1), u8(3), u8(5))
	fn, err := types.InferNode(q, ctx)
	require.NoError(t, err)
	require.Equal(t, 1, fn.Right.Arity())
	inner, ok := fn.Right.Types[0].(*types.Function)
	require.True(t, ok)
	assert.Equal(t, 0, inner.Left.Arity())
	require.Equal(t, 3, inner.Right.Arity())
}

// Scenario 3: "0 5 [| dup u16 store-at |] indexed-iter" => (''S -> ''S)
func TestScenario3IndexedIter(t *testing.T) {
	ctx := seededContext()
	body := quote(word("dup"), word("u16"), word("store-at"))
	fn, err := types.InferSequence([]ast.Node{u8(0), u8(5), body, word("indexed-iter")}, ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, fn.Left.Arity())
	assert.Equal(t, 0, fn.Right.Arity())
	assert.True(t, fn.Left.Var.Equals(fn.Right.Var))
}

// Scenario 4: "[| dup dup |]" => (''NQ -> ''NQ (''S 'T -> ''S 'T 'T 'T))
func TestScenario4QuotedDupDup(t *testing.T) {
	ctx := seededContext()
	q := quote(word("dup"), word("dup"))
	fn, err := types.InferNode(q, ctx)
	require.NoError(t, err)
	require.Equal(t, 1, fn.Right.Arity())
	inner, ok := fn.Right.Types[0].(*types.Function)
	require.True(t, ok)
	require.Equal(t, 1, inner.Left.Arity())
	require.Equal(t, 3, inner.Right.Arity())
	for _, ty := range inner.Right.Types {
		assert.True(t, ty.Equals(inner.Left.Types[0]))
	}
}

// Scenario 5: "1 1 [| dup 100 <=u8 |] [| swap over +u8 |] while swap drop"
// => (''S -> ''S U8)
func TestScenario5While(t *testing.T) {
	ctx := seededContext()
	cond := quote(word("dup"), u8(100), word("<=u8"))
	body := quote(word("swap"), word("over"), word("+u8"))
	items := []ast.Node{u8(1), u8(1), cond, body, word("while"), word("swap"), word("drop")}
	fn, err := types.InferSequence(items, ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, fn.Left.Arity())
	require.Equal(t, 1, fn.Right.Arity())
	assert.True(t, fn.Right.Types[0].Equals(types.TU8))
}

// Scenario 6: "100 [| dup [| +u8 |] eval |] eval" => (''S -> ''S U8)
func TestScenario6NestedEval(t *testing.T) {
	ctx := seededContext()
	inner := quote(word("+u8"))
	outer := quote(word("dup"), inner, word("eval"))
	items := []ast.Node{u8(100), outer, word("eval")}
	fn, err := types.InferSequence(items, ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, fn.Left.Arity())
	require.Equal(t, 1, fn.Right.Arity())
	assert.True(t, fn.Right.Types[0].Equals(types.TU8))
}

// TestFinalizeMonomorphizesInnerQuotationWord checks the re-annotation
// pass itself, not just the outer composed type Scenario 6 already
// verifies: "100 [| dup [| +u8 |] eval |] eval" forces dup's own
// otherwise-generic element type down to a concrete U8, and Finalize must
// make that visible on dup's own cached node type, not just on the
// phrase's final result.
func TestFinalizeMonomorphizesInnerQuotationWord(t *testing.T) {
	ctx := seededContext()
	dupNode := word("dup")
	plusNode := word("+u8")
	inner := quote(plusNode)
	outer := quote(dupNode, inner, word("eval"))
	items := []ast.Node{u8(100), outer, word("eval")}

	fn, err := types.InferSequence(items, ctx)
	require.NoError(t, err)
	require.Equal(t, 1, fn.Right.Arity())
	assert.True(t, fn.Right.Types[0].Equals(types.TU8))

	require.NoError(t, types.FinalizeItems(items, ctx))

	dupInfo, ok := ctx.NodeType(dupNode)
	require.True(t, ok)
	assert.Equal(t, 1, dupInfo.ArityIn)
	assert.Equal(t, 2, dupInfo.ArityOut)
	require.Equal(t, 1, dupInfo.Type.Left.Arity())
	require.Equal(t, 2, dupInfo.Type.Right.Arity())
	// The row variable standing for the rest of the stack is always free;
	// what must be gone is every value-level generic.
	freeVars := types.NewVarSet()
	dupInfo.Type.FreeVars(freeVars)
	freeGenerics := 0
	freeVars.Each(func(v types.Var) {
		if v.Kind() == types.KindValue {
			freeGenerics++
		}
	})
	assert.Equal(t, 0, freeGenerics, "dup's cached type should carry no free generics once finalized")

	plusInfo, ok := ctx.NodeType(plusNode)
	require.True(t, ok)
	require.Equal(t, 2, plusInfo.Type.Left.Arity())
	require.Equal(t, 1, plusInfo.Type.Right.Arity())
	assert.True(t, plusInfo.Type.Left.Types[0].Equals(types.TU8))
	assert.True(t, plusInfo.Type.Left.Types[1].Equals(types.TU8))
	assert.True(t, plusInfo.Type.Right.Types[0].Equals(types.TU8))

	// Finalize drops the phrase-long history once it has re-annotated
	// every cached node.
	assert.Empty(t, ctx.AccumulatedSubstitutions())
}

// Composer unit cases (direct compose(f, g)).
func TestComposerUnitCase1(t *testing.T) {
	ctx := types.NewContext()
	s := types.NewRowGeneric("S")
	a := types.NewRowGeneric("A")
	f := types.NewFunction(s, []types.Type{types.TU8}, []types.Type{types.TU8, types.TU16, types.TBool})
	g := types.NewFunction(a, []types.Type{types.TBool}, []types.Type{types.TS8})

	out, err := types.Compose(f, g, ctx)
	require.NoError(t, err)
	require.Equal(t, 1, out.Left.Arity())
	assert.True(t, out.Left.Types[0].Equals(types.TU8))
	require.Equal(t, 3, out.Right.Arity())
	assert.True(t, out.Right.Types[0].Equals(types.TU8))
	assert.True(t, out.Right.Types[1].Equals(types.TU16))
	assert.True(t, out.Right.Types[2].Equals(types.TS8))
}

func TestComposerUnitCase2(t *testing.T) {
	ctx := types.NewContext()
	s := types.NewRowGeneric("S")
	tt := types.NewRowGeneric("T")
	f := types.NewFunction(s, []types.Type{types.TU8}, []types.Type{types.TU16})
	g := types.NewFunction(tt, []types.Type{types.TBool, types.TBool, types.TU16}, []types.Type{types.TS8})

	out, err := types.Compose(f, g, ctx)
	require.NoError(t, err)
	require.Equal(t, 3, out.Left.Arity())
	assert.True(t, out.Left.Types[0].Equals(types.TBool))
	assert.True(t, out.Left.Types[1].Equals(types.TBool))
	assert.True(t, out.Left.Types[2].Equals(types.TU8))
	require.Equal(t, 1, out.Right.Arity())
	assert.True(t, out.Right.Types[0].Equals(types.TS8))
}

func TestComposerUnitCase3Mismatch(t *testing.T) {
	ctx := types.NewContext()
	s := types.NewRowGeneric("S")
	a := types.NewRowGeneric("A")
	f := types.NewFunction(s, []types.Type{types.TU8}, []types.Type{types.TU16})
	g := types.NewFunction(a, []types.Type{types.TS8}, []types.Type{types.TBool})

	_, err := types.Compose(f, g, ctx)
	require.Error(t, err)
	var uerr *types.UnificationError
	require.ErrorAs(t, err, &uerr)
}
