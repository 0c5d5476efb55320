// Package ssa lowers a type-checked program into static single assignment
// form over a control-flow graph of basic blocks, simulating execution
// over a virtual stack of registers. It is the direct Go transliteration
// of forfait's ssa/ssa.py: Register/Phi/the SSA_Instr family and
// SSA_ification become Go types and a Lower function; the CFG, its
// entering/exiting edges and final_vstack become CFG/Block fields. The
// closed-union Instr interface with an unexported marker method
// (isInstr()) instead follows SeleniaProject-Orizon's internal/mir/mir.go,
// which is the idiomatic Go shape for exactly this kind of tagged
// instruction set.
package ssa

import (
	"fmt"

	"github.com/staqlang/staq/internal/ast"
	"github.com/staqlang/staq/internal/types"
)

// Register is an SSA virtual register: a single static assignment with a
// known type. Identity is by Num.
type Register struct {
	Num  uint64
	Type types.Type
}

var registerCounter uint64

// NewRegister allocates a fresh register of the given type.
func NewRegister(t types.Type) *Register {
	registerCounter++
	return &Register{Num: registerCounter, Type: t}
}

func (r *Register) String() string { return fmt.Sprintf("%%r%d", r.Num) }

// Instr is the closed union of SSA instruction kinds.
type Instr interface {
	isInstr()
	String() string
}

// Const materializes a literal value into a fresh register.
type Const struct {
	Dst   *Register
	Value int64
}

func (*Const) isInstr() {}
func (c *Const) String() string {
	return fmt.Sprintf("%s = const %d", c.Dst, c.Value)
}

// Copy aliases src into a fresh register dst (used by dup and swap, which
// rearrange the virtual stack without computing anything new).
type Copy struct {
	Dst *Register
	Src *Register
}

func (*Copy) isInstr() {}
func (c *Copy) String() string {
	return fmt.Sprintf("%s = copy %s", c.Dst, c.Src)
}

// Cast reinterprets src at a wider or narrower base type (the u16 word).
type Cast struct {
	Dst *Register
	Src *Register
}

func (*Cast) isInstr() {}
func (c *Cast) String() string {
	return fmt.Sprintf("%s = cast %s to %s", c.Dst, c.Src, c.Dst.Type)
}

// QuoteRef materializes a reference to a quotation body as a first-class
// value. Quotations are lowered lazily: pushing one only records the body
// the way forfait's Quote node carries its AST unevaluated until if/eval
// actually runs it, since the body must be lowered starting from whatever
// virtual stack is live at the point of use, not at the point it was
// pushed.
type QuoteRef struct {
	Dst  *Register
	Body []ast.Node
}

func (*QuoteRef) isInstr() {}
func (q *QuoteRef) String() string {
	return fmt.Sprintf("%s = quoteref(%d items)", q.Dst, len(q.Body))
}

// BinOpKind enumerates the arithmetic and comparison operators a Binop
// instruction may carry, named after their surface words.
type BinOpKind string

const (
	OpAdd BinOpKind = "+"
	OpSub BinOpKind = "-"
	OpMul BinOpKind = "*"
	OpDiv BinOpKind = "/"
	OpGt  BinOpKind = ">"
	OpLt  BinOpKind = "<"
	OpGe  BinOpKind = ">="
	OpLe  BinOpKind = "<="
	OpEq  BinOpKind = "=="
	OpNe  BinOpKind = "!="
)

// Binop computes Op(A, B) into Dst.
type Binop struct {
	Dst *Register
	Op  BinOpKind
	A   *Register
	B   *Register
}

func (*Binop) isInstr() {}
func (b *Binop) String() string {
	return fmt.Sprintf("%s = %s %s %s", b.Dst, b.A, b.Op, b.B)
}

// Phi merges two registers coming from different predecessor blocks into
// one value, at a block where two branches of an if rejoin.
type Phi struct {
	Dst *Register
	A   *Register
	B   *Register
}

func (*Phi) isInstr() {}
func (p *Phi) String() string {
	return fmt.Sprintf("%s = phi(%s, %s)", p.Dst, p.A, p.B)
}

// Jump is the block terminator: an unconditional jump to Next, or if Test
// is non-nil, a conditional branch to IfTrue / IfFalse.
type Jump struct {
	Test    *Register
	IfTrue  *Block
	IfFalse *Block
	Next    *Block
}

func (*Jump) isInstr() {}
func (j *Jump) String() string {
	if j.Test == nil {
		return fmt.Sprintf("jump %s", j.Next.Name)
	}
	return fmt.Sprintf("jump if %s then %s else %s", j.Test, j.IfTrue.Name, j.IfFalse.Name)
}

// Block is one basic block of the control-flow graph: a straight-line run
// of instructions, plus the stack of registers live at its end
// (FinalStack) and its predecessor/successor edges. It mirrors forfait's
// CFG class (notes/numeric_id/instructions/final_vstack/entering_cfgs/
// exiting_cfgs).
type Block struct {
	Name       string
	Note       string
	Instrs     []Instr
	FinalStack []*Register
	Entering   []*Block
	Exiting    []*Block
}

var blockCounter uint64

// NewBlock allocates a fresh, empty block.
func NewBlock(note string) *Block {
	blockCounter++
	return &Block{Name: fmt.Sprintf("bb%d", blockCounter), Note: note}
}

func (b *Block) emit(i Instr) { b.Instrs = append(b.Instrs, i) }

func (b *Block) addExiting(to *Block) {
	b.Exiting = append(b.Exiting, to)
	to.Entering = append(to.Entering, b)
}

// CFG is the whole lowered program: its entry block, and every block
// reachable from it. GraphVisit gives a stable depth-first preorder walk
// for passes like ConstantPropagate; a join block is visited right after
// the first predecessor that reaches it, before its other predecessors.
type CFG struct {
	Entry *Block
}

// GraphVisit walks every block reachable from start in preorder over
// Exiting edges, visiting each block exactly once — the direct port of
// forfait's CFG.graph_visit.
func (c *CFG) GraphVisit() []*Block {
	seen := make(map[*Block]bool)
	var order []*Block
	var walk func(b *Block)
	walk = func(b *Block) {
		if seen[b] {
			return
		}
		seen[b] = true
		order = append(order, b)
		for _, n := range b.Exiting {
			walk(n)
		}
	}
	walk(c.Entry)
	return order
}
