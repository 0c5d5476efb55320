package scenario_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staqlang/staq/internal/ast"
	"github.com/staqlang/staq/internal/scenario"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadParsesProgramTokens(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dup.yaml", `
id: dup-then-add
description: "1 dup +u8"
program:
  - {kind: int, int: 1}
  - {kind: word, word: dup}
  - {kind: word, word: "+u8"}
expect_type: "(''S -> ''S U8)"
`)

	s, err := scenario.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dup-then-add", s.ID)
	require.Len(t, s.Program, 3)

	seq, err := s.Program.ToSequence()
	require.NoError(t, err)
	require.Len(t, seq.Items, 3)

	lit, ok := seq.Items[0].(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, int64(1), lit.Value)

	word, ok := seq.Items[1].(*ast.WordRef)
	require.True(t, ok)
	assert.Equal(t, "dup", word.Name)
}

func TestLoadParsesNestedQuotation(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "quote.yaml", `
id: quoted-dup-dup
description: "[| dup dup |]"
program:
  - kind: quote
    body:
      - {kind: word, word: dup}
      - {kind: word, word: dup}
`)

	s, err := scenario.Load(path)
	require.NoError(t, err)

	seq, err := s.Program.ToSequence()
	require.NoError(t, err)
	require.Len(t, seq.Items, 1)

	q, ok := seq.Items[0].(*ast.Quotation)
	require.True(t, ok)
	require.Len(t, q.Body.Items, 2)
}

func TestLoadRejectsMissingID(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.yaml", `
program:
  - {kind: int, int: 1}
`)
	_, err := scenario.Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsEmptyProgram(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.yaml", `
id: empty
`)
	_, err := scenario.Load(path)
	assert.Error(t, err)
}

func TestLoadDirSkipsNonYAMLAndSubdirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "id: a\nprogram:\n  - {kind: int, int: 1}\n")
	writeFile(t, dir, "b.yaml", "id: b\nprogram:\n  - {kind: int, int: 2}\n")
	writeFile(t, dir, "readme.txt", "not a scenario")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	scenarios, err := scenario.LoadDir(dir)
	require.NoError(t, err)
	assert.Len(t, scenarios, 2)
}

func TestUnknownTokenKindErrors(t *testing.T) {
	tok := scenario.Token{Kind: "nonsense"}
	_, err := tok.ToNode()
	assert.Error(t, err)
}
