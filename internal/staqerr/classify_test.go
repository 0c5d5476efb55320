package staqerr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staqlang/staq/internal/ast"
	"github.com/staqlang/staq/internal/staqerr"
	"github.com/staqlang/staq/internal/stdlib"
	"github.com/staqlang/staq/internal/types"
)

func TestClassifyUnificationCarriesOffendingAndStore(t *testing.T) {
	ctx := types.NewContext()
	stdlib.Install(ctx)

	items := []ast.Node{
		&ast.Literal{Value: 1, Base: ast.U8},
		&ast.Boolean{Value: true},
		&ast.WordRef{Name: "+u8"},
	}
	_, err := types.InferSequence(items, ctx)
	require.Error(t, err)

	wrapped := staqerr.Classify(err, ctx)
	require.NotNil(t, wrapped)
	assert.Equal(t, staqerr.CodeUnification, wrapped.Code)
	assert.NotEmpty(t, wrapped.Offending)
	assert.NotNil(t, wrapped.Store)
	assert.Contains(t, wrapped.Error(), string(staqerr.CodeUnification))
}

func TestClassifyUnknownWordNamesTheWord(t *testing.T) {
	ctx := types.NewContext()
	stdlib.Install(ctx)

	_, err := types.InferNode(&ast.WordRef{Name: "no-such-word"}, ctx)
	require.Error(t, err)

	wrapped := staqerr.Classify(err, ctx)
	assert.Equal(t, staqerr.CodeUnknownWord, wrapped.Code)
	assert.Equal(t, "no-such-word", wrapped.Offending)
}

func TestClassifyPassesThroughAlreadyWrapped(t *testing.T) {
	inner := staqerr.Wrap(staqerr.CodeUnknown, assert.AnError, nil, "")
	assert.Same(t, inner, staqerr.Classify(inner, nil))
}

func TestClassifyNilIsNil(t *testing.T) {
	assert.Nil(t, staqerr.Classify(nil, nil))
}
