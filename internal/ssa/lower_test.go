package ssa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staqlang/staq/internal/ast"
	"github.com/staqlang/staq/internal/types"
)

func TestLowerAddConstantFolds(t *testing.T) {
	seq := &ast.Sequence{Items: []ast.Node{
		&ast.Literal{Value: 1, Base: ast.U8},
		&ast.Literal{Value: 2, Base: ast.U8},
		&ast.WordRef{Name: "+u8"},
	}}

	cfg, final, err := Lower(seq, types.NewContext(), nil)
	require.NoError(t, err)
	require.Len(t, final, 1)

	ConstantPropagate(cfg)

	last := cfg.Entry.Instrs[len(cfg.Entry.Instrs)-1]
	c, ok := last.(*Const)
	require.True(t, ok, "expected final instruction to fold to a constant, got %T", last)
	assert.EqualValues(t, 3, c.Value)
}

func TestLowerDup(t *testing.T) {
	seq := &ast.Sequence{Items: []ast.Node{
		&ast.Literal{Value: 5, Base: ast.U8},
		&ast.WordRef{Name: "dup"},
	}}
	_, final, err := Lower(seq, types.NewContext(), nil)
	require.NoError(t, err)
	require.Len(t, final, 2)
	assert.NotSame(t, final[0], final[1])
}

func TestLowerIfBuildsJoinWithPhi(t *testing.T) {
	seq := &ast.Sequence{Items: []ast.Node{
		&ast.Boolean{Value: true},
		&ast.Quotation{Body: &ast.Sequence{Items: []ast.Node{
			&ast.Literal{Value: 1, Base: ast.U8},
		}}},
		&ast.Quotation{Body: &ast.Sequence{Items: []ast.Node{
			&ast.Literal{Value: 2, Base: ast.U8},
		}}},
		&ast.WordRef{Name: "if"},
	}}

	cfg, final, err := Lower(seq, types.NewContext(), nil)
	require.NoError(t, err)
	require.Len(t, final, 1)

	blocks := cfg.GraphVisit()
	assert.Len(t, blocks, 4) // preorder: entry, then, join (reached from then), else

	join := blocks[2]
	require.Equal(t, "if.join", join.Note)
	require.Len(t, join.Instrs, 1)
	_, ok := join.Instrs[0].(*Phi)
	assert.True(t, ok)
}

func TestLowerIfRejectsMismatchedArity(t *testing.T) {
	seq := &ast.Sequence{Items: []ast.Node{
		&ast.Boolean{Value: true},
		&ast.Quotation{Body: &ast.Sequence{Items: []ast.Node{
			&ast.Literal{Value: 1, Base: ast.U8},
		}}},
		&ast.Quotation{Body: &ast.Sequence{Items: []ast.Node{
			&ast.Literal{Value: 1, Base: ast.U8},
			&ast.Literal{Value: 2, Base: ast.U8},
		}}},
		&ast.WordRef{Name: "if"},
	}}

	_, _, err := Lower(seq, types.NewContext(), nil)
	require.Error(t, err)
	var perr *PhiMismatchError
	require.ErrorAs(t, err, &perr)
}

func TestLowerUnsupportedWord(t *testing.T) {
	seq := &ast.Sequence{Items: []ast.Node{
		&ast.WordRef{Name: "eval"},
	}}
	_, _, err := Lower(seq, types.NewContext(), []*Register{NewRegister(types.TU8)})
	require.Error(t, err)
	var uerr *UnsupportedWordError
	require.ErrorAs(t, err, &uerr)
}
