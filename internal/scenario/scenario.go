// Package scenario is a YAML-driven golden-test harness for whole
// infer-then-lower runs, grounded on ailang's internal/eval_harness/spec.go
// (BenchmarkSpec + LoadSpec's read-then-yaml.Unmarshal-then-validate
// shape) and its internal/parser/testutil.go golden-compare helper
// (google/go-cmp diffing against a testdata/*.golden file, gated by an
// -update flag). A Scenario describes one concatenative program as a flat
// list of tokens the harness itself turns into AST nodes — the module
// under test has no tokenizer, so the harness is also the bridge from a
// human-writable YAML fixture to ast.Node.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/staqlang/staq/internal/ast"
)

// Token is one flat entry in a scenario's program list. Exactly one of
// its fields is meaningful per Kind.
type Token struct {
	Kind string `yaml:"kind"` // "int", "bool", "word", "quote"
	Int  int64  `yaml:"int,omitempty"`
	Bool bool   `yaml:"bool,omitempty"`
	Word string `yaml:"word,omitempty"`
	Body []Token `yaml:"body,omitempty"` // for kind: quote
}

// ToNode converts a Token into the ast.Node it describes.
func (t Token) ToNode() (ast.Node, error) {
	switch t.Kind {
	case "int":
		return &ast.Literal{Value: t.Int, Base: ast.U8}, nil
	case "bool":
		return &ast.Boolean{Value: t.Bool}, nil
	case "word":
		if t.Word == "" {
			return nil, fmt.Errorf("scenario: word token missing its name")
		}
		return &ast.WordRef{Name: t.Word}, nil
	case "quote":
		body, err := Tokens(t.Body).ToSequence()
		if err != nil {
			return nil, err
		}
		return &ast.Quotation{Body: body}, nil
	default:
		return nil, fmt.Errorf("scenario: unknown token kind %q", t.Kind)
	}
}

// Tokens is a slice of Token with a ToSequence convenience method.
type Tokens []Token

// ToSequence converts every token in order into an *ast.Sequence.
func (ts Tokens) ToSequence() (*ast.Sequence, error) {
	items := make([]ast.Node, len(ts))
	for i, t := range ts {
		n, err := t.ToNode()
		if err != nil {
			return nil, err
		}
		items[i] = n
	}
	return &ast.Sequence{Items: items}, nil
}

// Scenario is a single named, YAML-described test case: a program plus
// what's expected to happen when it is type-checked (and optionally
// lowered to SSA).
type Scenario struct {
	ID            string `yaml:"id"`
	Description   string `yaml:"description"`
	Program       Tokens `yaml:"program"`
	ExpectError   string `yaml:"expect_error,omitempty"`   // a staqerr.Code, if the program should fail to check
	ExpectType    string `yaml:"expect_type,omitempty"`     // the printed type of a successful check
	LowerToSSA    bool   `yaml:"lower_to_ssa,omitempty"`
	ExpectSSAGold string `yaml:"expect_ssa_golden,omitempty"` // golden file name under testdata/ssa
}

// Load reads and validates one scenario from a YAML file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: reading %s: %w", path, err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("scenario: parsing %s: %w", path, err)
	}

	if s.ID == "" {
		return nil, fmt.Errorf("scenario: %s missing required field: id", path)
	}
	if len(s.Program) == 0 {
		return nil, fmt.Errorf("scenario: %s missing required field: program", path)
	}
	return &s, nil
}

// LoadDir loads every *.yaml file directly under dir as a Scenario.
func LoadDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scenario: reading directory %s: %w", dir, err)
	}

	var out []*Scenario
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if len(name) < 5 || name[len(name)-5:] != ".yaml" {
			continue
		}
		s, err := Load(dir + "/" + name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
