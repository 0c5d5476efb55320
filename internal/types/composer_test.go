package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staqlang/staq/internal/ast"
)

func dupScheme() *Scheme {
	s := NewRowGeneric("S")
	t := NewGeneric("T")
	return NewScheme([]*Generic{t}, []*RowGeneric{s}, NewFunction(s, []Type{t}, []Type{t, t}))
}

func swapScheme() *Scheme {
	s := NewRowGeneric("S")
	t := NewGeneric("T")
	u := NewGeneric("U")
	return NewScheme([]*Generic{t, u}, []*RowGeneric{s}, NewFunction(s, []Type{t, u}, []Type{u, t}))
}

func addU8Scheme() *Scheme {
	s := NewRowGeneric("S")
	return NewScheme(nil, []*RowGeneric{s}, NewFunction(s, []Type{TU8, TU8}, []Type{TU8}))
}

func baseCtx() *Context {
	ctx := NewContext()
	ctx.RegisterBuiltin("dup", dupScheme())
	ctx.RegisterBuiltin("swap", swapScheme())
	ctx.RegisterBuiltin("+u8", addU8Scheme())
	return ctx
}

func TestInferLiteralPushesU8(t *testing.T) {
	ctx := baseCtx()
	lit := &ast.Literal{Value: 1, Base: ast.U8}
	fn, err := InferNode(lit, ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, fn.Left.Arity())
	assert.Equal(t, 1, fn.Right.Arity())
	assert.True(t, fn.Right.Types[0].Equals(TU8))
}

func TestComposeLiteralThenDup(t *testing.T) {
	ctx := baseCtx()
	seq := []ast.Node{
		&ast.Literal{Value: 5, Base: ast.U8},
		&ast.WordRef{Name: "dup"},
	}
	fn, err := InferSequence(seq, ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, fn.Left.Arity())
	require.Equal(t, 2, fn.Right.Arity())
	assert.True(t, fn.Right.Types[0].Equals(TU8))
	assert.True(t, fn.Right.Types[1].Equals(TU8))
}

func TestComposeTwoLiteralsThenAdd(t *testing.T) {
	ctx := baseCtx()
	seq := []ast.Node{
		&ast.Literal{Value: 1, Base: ast.U8},
		&ast.Literal{Value: 2, Base: ast.U8},
		&ast.WordRef{Name: "+u8"},
	}
	fn, err := InferSequence(seq, ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, fn.Left.Arity())
	require.Equal(t, 1, fn.Right.Arity())
	assert.True(t, fn.Right.Types[0].Equals(TU8))
}

func TestComposeSwapIsPolymorphic(t *testing.T) {
	ctx := baseCtx()
	seq := []ast.Node{
		&ast.Literal{Value: 1, Base: ast.U8},
		&ast.Boolean{Value: true},
		&ast.WordRef{Name: "swap"},
	}
	fn, err := InferSequence(seq, ctx)
	require.NoError(t, err)
	require.Equal(t, 2, fn.Right.Arity())
	assert.True(t, fn.Right.Types[0].Equals(TBool))
	assert.True(t, fn.Right.Types[1].Equals(TU8))
}

func TestComposeRejectsMismatchedTypes(t *testing.T) {
	ctx := baseCtx()
	seq := []ast.Node{
		&ast.Literal{Value: 1, Base: ast.U8},
		&ast.Boolean{Value: true},
		&ast.WordRef{Name: "+u8"},
	}
	_, err := InferSequence(seq, ctx)
	require.Error(t, err)
	var uerr *UnificationError
	require.ErrorAs(t, err, &uerr)
}

func TestInferEmptySequenceErrors(t *testing.T) {
	ctx := baseCtx()
	_, err := InferSequence(nil, ctx)
	require.ErrorIs(t, err, ErrEmptySequence)
}

func TestUnknownWordErrors(t *testing.T) {
	ctx := baseCtx()
	_, err := InferSequence([]ast.Node{&ast.WordRef{Name: "nope"}}, ctx)
	require.Error(t, err)
	var uerr *UnknownWordError
	require.ErrorAs(t, err, &uerr)
}

func TestQuotationPushesFunctionType(t *testing.T) {
	ctx := baseCtx()
	quote := &ast.Quotation{Body: &ast.Sequence{Items: []ast.Node{
		&ast.WordRef{Name: "dup"},
	}}}
	fn, err := InferNode(quote, ctx)
	require.NoError(t, err)
	require.Equal(t, 1, fn.Right.Arity())
	_, ok := fn.Right.Types[0].(*Function)
	assert.True(t, ok, "quotation should push a *Function value")
}
