package ssa

import (
	"github.com/staqlang/staq/internal/ast"
	"github.com/staqlang/staq/internal/types"
)

// UnsupportedWordError reports a word with no SSA lowering rule. Lowering
// implements exactly the closed set spec.md §4.5 names: dup, drop, swap,
// the u16 cast, if, and the u8/u16 arithmetic and comparison binops. Every
// other catalog word — over, rot+/rot-, ++u8/--u8, indexed-iter, while,
// eval, the list and memory words — type-checks but has no lowering rule;
// the closed set is authoritative, not a placeholder to be filled in.
type UnsupportedWordError struct {
	Name string
}

func (e *UnsupportedWordError) Error() string {
	return "ssa: no lowering rule for word " + e.Name
}

// PhiMismatchError reports that the two branches of an if left stacks of
// different shape, so no phi merge is possible.
type PhiMismatchError struct {
	ThenLen, ElseLen int
}

func (e *PhiMismatchError) Error() string {
	return "ssa: if branches leave different stack depths"
}

var binops = map[string]BinOpKind{
	"+u8": OpAdd, "-u8": OpSub, "*u8": OpMul, "/u8": OpDiv,
	"+u16": OpAdd, "-u16": OpSub, "*u16": OpMul, "/u16": OpDiv,
	">u8": OpGt, "<u8": OpLt, ">=u8": OpGe, "<=u8": OpLe, "==u8": OpEq, "!=u8": OpNe,
	">u16": OpGt, "<u16": OpLt, ">=u16": OpGe, "<=u16": OpLe, "==u16": OpEq, "!=u16": OpNe,
}

var comparisonOps = map[BinOpKind]bool{
	OpGt: true, OpLt: true, OpGe: true, OpLe: true, OpEq: true, OpNe: true,
}

// lowerer threads the current block and context through a recursive-
// descent lowering of one Sequence's items.
type lowerer struct {
	ctx  *types.Context
	curr *Block
}

// Lower simulates running seq over vstack (topmost register last, matching
// the rest of the package's stack convention), emitting instructions into
// a fresh CFG. It returns the CFG and the final stack of registers live
// at the point where straight-line lowering stopped.
func Lower(seq *ast.Sequence, ctx *types.Context, vstack []*Register) (*CFG, []*Register, error) {
	entry := NewBlock("entry")
	lw := &lowerer{ctx: ctx, curr: entry}

	final, err := lw.lowerItems(seq.Items, vstack)
	if err != nil {
		return nil, nil, err
	}
	lw.curr.FinalStack = final
	return &CFG{Entry: entry}, final, nil
}

func (lw *lowerer) lowerItems(items []ast.Node, vstack []*Register) ([]*Register, error) {
	for _, item := range items {
		var err error
		vstack, err = lw.lowerNode(item, vstack)
		if err != nil {
			return nil, err
		}
	}
	return vstack, nil
}

func pop(vstack []*Register) (*Register, []*Register) {
	n := len(vstack)
	return vstack[n-1], vstack[:n-1]
}

func push(vstack []*Register, r *Register) []*Register {
	return append(vstack, r)
}

func (lw *lowerer) lowerNode(node ast.Node, vstack []*Register) ([]*Register, error) {
	switch n := node.(type) {
	case *ast.Literal:
		r := NewRegister(baseOf(n.Base))
		lw.curr.emit(&Const{Dst: r, Value: n.Value})
		return push(vstack, r), nil

	case *ast.Boolean:
		v := int64(0)
		if n.Value {
			v = 1
		}
		r := NewRegister(types.TBool)
		lw.curr.emit(&Const{Dst: r, Value: v})
		return push(vstack, r), nil

	case *ast.Quotation:
		// Lazy: only the body is recorded. It is lowered later, starting
		// from whatever stack is live at the point a consumer (if, eval)
		// actually runs it. The register's own type, though, comes from
		// the typed AST: lw.ctx already carries n's monomorphized
		// FunctionType from the checker's node cache (spec.md §2's
		// typed-AST-to-SSA data flow), one value pushed of that type.
		r := NewRegister(quotationType(lw.ctx, n))
		lw.curr.emit(&QuoteRef{Dst: r, Body: n.Body.Items})
		return push(vstack, r), nil

	case *ast.WordRef:
		return lw.lowerWord(n.Name, vstack)

	default:
		return nil, &UnsupportedWordError{Name: node.String()}
	}
}

// quotationType recovers a quotation's own stack-effect type from the
// checker's per-node cache. A quotation lowered without ever having been
// type-checked against ctx has nothing cached; its register falls back to
// an untyped nil rather than failing lowering outright.
func quotationType(ctx *types.Context, n *ast.Quotation) types.Type {
	info, ok := ctx.NodeType(n)
	if !ok || info.Type.Right.Arity() != 1 {
		return nil
	}
	return info.Type.Right.Types[0]
}

func baseOf(b ast.BaseType) types.Type {
	switch b {
	case ast.U8:
		return types.TU8
	case ast.S8:
		return types.TS8
	case ast.U16:
		return types.TU16
	default:
		return types.TU8
	}
}

func (lw *lowerer) lowerWord(name string, vstack []*Register) ([]*Register, error) {
	if kind, ok := binops[name]; ok {
		b, vstack := pop(vstack)
		a, vstack := pop(vstack)
		resultType := a.Type
		if comparisonOps[kind] {
			resultType = types.TBool
		}
		r := NewRegister(resultType)
		lw.curr.emit(&Binop{Dst: r, Op: kind, A: a, B: b})
		return push(vstack, r), nil
	}

	switch name {
	case "dup":
		top, rest := pop(vstack)
		r := NewRegister(top.Type)
		lw.curr.emit(&Copy{Dst: r, Src: top})
		return push(push(rest, top), r), nil

	case "drop":
		_, rest := pop(vstack)
		return rest, nil

	case "swap":
		// Three copies through a temporary, so both swapped slots are
		// fresh registers.
		top, rest := pop(vstack)
		second, rest := pop(rest)
		tmp := NewRegister(top.Type)
		lw.curr.emit(&Copy{Dst: tmp, Src: top})
		newTop := NewRegister(second.Type)
		lw.curr.emit(&Copy{Dst: newTop, Src: second})
		newSecond := NewRegister(tmp.Type)
		lw.curr.emit(&Copy{Dst: newSecond, Src: tmp})
		return push(push(rest, newSecond), newTop), nil

	case "u16":
		top, rest := pop(vstack)
		r := NewRegister(types.TU16)
		lw.curr.emit(&Cast{Dst: r, Src: top})
		return push(rest, r), nil

	case "if":
		return lw.lowerIf(vstack)

	default:
		return nil, &UnsupportedWordError{Name: name}
	}
}

// lowerIf implements forfait's 5-step if protocol: pop the else
// quotation, the then quotation, and the boolean condition; lower both
// bodies from independent copies of the stack left after popping the
// three operands, each into its own fresh block; wire a Jump testing the
// condition from the current block to both branch blocks; and build a
// join block with a Phi per paired result register, rejecting branches
// that leave different shapes.
func (lw *lowerer) lowerIf(vstack []*Register) ([]*Register, error) {
	elseRef, vstack := pop(vstack)
	thenRef, vstack := pop(vstack)
	cond, vstack := pop(vstack)

	thenQuote, ok := lw.curr.quoteFor(thenRef)
	if !ok {
		return nil, &UnsupportedWordError{Name: "if: then-branch is not a literal quotation"}
	}
	elseQuote, ok := lw.curr.quoteFor(elseRef)
	if !ok {
		return nil, &UnsupportedWordError{Name: "if: else-branch is not a literal quotation"}
	}

	thenBlock := NewBlock("if.then")
	thenFinal, err := (&lowerer{ctx: lw.ctx, curr: thenBlock}).lowerItems(
		thenQuote, append([]*Register(nil), vstack...))
	if err != nil {
		return nil, err
	}
	thenBlock.FinalStack = thenFinal

	elseBlock := NewBlock("if.else")
	elseFinal, err := (&lowerer{ctx: lw.ctx, curr: elseBlock}).lowerItems(
		elseQuote, append([]*Register(nil), vstack...))
	if err != nil {
		return nil, err
	}
	elseBlock.FinalStack = elseFinal

	if len(thenFinal) != len(elseFinal) {
		return nil, &PhiMismatchError{ThenLen: len(thenFinal), ElseLen: len(elseFinal)}
	}

	lw.curr.emit(&Jump{Test: cond, IfTrue: thenBlock, IfFalse: elseBlock})
	lw.curr.addExiting(thenBlock)
	lw.curr.addExiting(elseBlock)

	join := NewBlock("if.join")
	thenBlock.addExiting(join)
	elseBlock.addExiting(join)

	merged := make([]*Register, len(thenFinal))
	for i := range thenFinal {
		r1, r2 := thenFinal[i], elseFinal[i]
		if !r1.Type.Equals(r2.Type) {
			return nil, &PhiMismatchError{ThenLen: len(thenFinal), ElseLen: len(elseFinal)}
		}
		phi := NewRegister(r1.Type)
		join.emit(&Phi{Dst: phi, A: r1, B: r2})
		merged[i] = phi
	}

	lw.curr = join
	return merged, nil
}

// quoteFor looks up the body a QuoteRef instruction in this block recorded
// for r. Each quotation is pushed immediately before its use in practice
// (dup/swap never reorder quotations past other quotations in the
// grammar this lowers), so a direct scan of this block's own instructions
// is enough to recover it.
func (b *Block) quoteFor(r *Register) ([]ast.Node, bool) {
	for _, instr := range b.Instrs {
		if qr, ok := instr.(*QuoteRef); ok && qr.Dst == r {
			return qr.Body, true
		}
	}
	return nil, false
}
