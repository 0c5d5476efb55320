package main

import "github.com/staqlang/staq/internal/ast"

// demoProgram is one of the spec.md §8 scenarios, built directly as ast
// nodes rather than read from a YAML fixture — the infer and ssa
// subcommands exist precisely to show the checker driven straight off
// Go-constructed ASTs, the way internal/types' own scenario tests do,
// with scenarios <dir> covering the YAML-driven path instead.
type demoProgram struct {
	desc  string
	items []ast.Node
}

func lit(v int64) *ast.Literal     { return &ast.Literal{Value: v, Base: ast.U8} }
func ref(name string) *ast.WordRef { return &ast.WordRef{Name: name} }
func quoted(items ...ast.Node) *ast.Quotation {
	return &ast.Quotation{Body: &ast.Sequence{Items: items}}
}

// demoPrograms is the spec.md §8 scenario table: the same six programs
// internal/types/scenarios_test.go exercises, reused here to drive a
// human-readable demo rather than an assertion.
func demoPrograms() []demoProgram {
	return []demoProgram{
		{"1 3 5", []ast.Node{lit(1), lit(3), lit(5)}},
		{"[| 1 3 5 |]", []ast.Node{quoted(lit(1), lit(3), lit(5))}},
		{"0 5 [| dup u16 store-at |] indexed-iter", []ast.Node{
			lit(0), lit(5), quoted(ref("dup"), ref("u16"), ref("store-at")), ref("indexed-iter"),
		}},
		{"[| dup dup |]", []ast.Node{quoted(ref("dup"), ref("dup"))}},
		{"1 1 [| dup 100 <=u8 |] [| swap over +u8 |] while swap drop", []ast.Node{
			lit(1), lit(1),
			quoted(ref("dup"), lit(100), ref("<=u8")),
			quoted(ref("swap"), ref("over"), ref("+u8")),
			ref("while"), ref("swap"), ref("drop"),
		}},
		{"100 [| dup [| +u8 |] eval |] eval", []ast.Node{
			lit(100),
			quoted(ref("dup"), quoted(ref("+u8")), ref("eval")),
			ref("eval"),
		}},
	}
}

// ssaDemoProgram is the spec.md §8 "1 2 +u8" scenario, the one lowered to
// SSA and constant-folded rather than merely type-checked.
func ssaDemoProgram() (string, []ast.Node) {
	return "1 2 +u8", []ast.Node{lit(1), lit(2), ref("+u8")}
}
