package types

import (
	"errors"

	"github.com/staqlang/staq/internal/ast"
)

// ErrEmptySequence is returned by InferSequence for a sequence with no
// items — the identity effect is well-defined mathematically ("S -> S")
// but spec.md treats an empty program as a checker error rather than
// silently typing it as the identity word (mirrors forfait's Sequence
// raising a ZException on zero funcs).
var ErrEmptySequence = errors.New("types: cannot infer an empty sequence")

// Compose is the row-polymorphic composer: given the effect of running f
// then g in sequence, it produces the combined effect. This is the direct
// port of forfait's type_of_application_rowpoly(t1, t2, ctx):
//
//  1. clear the context's scratch substitutions,
//  2. unify f's output row against g's input row (UnifyRows already
//     implements "unify the common suffix, then unify the shorter side's
//     row variable with the remainder of the longer"),
//  3. the composed effect consumes f's input and produces g's output,
//  4. resolve the accumulated substitutions in dependency order and fold
//     them into the candidate so intermediate rows become concrete
//     wherever possible, rather than staying needlessly polymorphic.
func Compose(f, g *Function, ctx *Context) (*Function, error) {
	ctx.Clear()

	if err := UnifyRows(f.Right, g.Left, ctx); err != nil {
		return nil, err
	}

	candidate := &Function{Left: f.Left, Right: g.Right}

	resolved, order, err := ctx.OrderedSubs()
	if err != nil {
		return nil, err
	}
	ordered := make(Subst, len(order))
	for _, id := range order {
		ordered[id] = resolved[id]
	}
	// Apply in dependency order: a binding that itself mentions another
	// generic must have that generic already resolved in ordered before
	// it is folded in, so build up the substitution incrementally.
	acc := make(Subst, len(order))
	for _, id := range order {
		acc[id] = Apply(acc, resolved[id])
	}

	// This step's folded substitutions join the phrase-long history
	// (never wiped by the ctx.Clear() above), so Finalize can later
	// re-annotate every cached node type with everything discovered
	// across the whole phrase, not just this one step (spec.md §4.3).
	ctx.mergeHistory(acc)

	return Apply(acc, candidate).(*Function), nil
}

// InferNode computes the stack effect of pushing or invoking a single AST
// node. A Literal or Boolean pushes one concrete value; a WordRef looks up
// and freshly instantiates its scheme; a Quotation's own effect is to push
// a single value of its body's inferred function type (quotations are
// first-class: eval later unifies that pushed function type against its
// own "(S -> R)" argument row).
func InferNode(node ast.Node, ctx *Context) (*Function, error) {
	if info, ok := ctx.NodeType(node); ok {
		return info.Type, nil
	}

	fn, err := inferNode(node, ctx)
	if err != nil {
		return nil, err
	}
	ctx.cacheNodeType(node, fn)
	return fn, nil
}

func inferNode(node ast.Node, ctx *Context) (*Function, error) {
	switch n := node.(type) {
	case *ast.Literal:
		return NewFunction(NewRowGeneric("S"), nil, []Type{baseOf(n.Base)}), nil

	case *ast.Boolean:
		return NewFunction(NewRowGeneric("S"), nil, []Type{TBool}), nil

	case *ast.WordRef:
		fn, ok := ctx.Lookup(n.Name)
		if !ok {
			return nil, &UnknownWordError{Name: n.Name}
		}
		return fn, nil

	case *ast.Quotation:
		body, err := InferSequence(n.Body.Items, ctx)
		if err != nil {
			return nil, err
		}
		return NewFunction(NewRowGeneric("S"), nil, []Type{body}), nil

	default:
		return nil, &UnsupportedNodeError{Node: node}
	}
}

func baseOf(b ast.BaseType) Type {
	switch b {
	case ast.U8:
		return TU8
	case ast.S8:
		return TS8
	case ast.U16:
		return TU16
	default:
		return TU8
	}
}

// InferSequence folds Compose left-to-right across items, producing the
// effect of running the whole sequence (spec.md §4.2 "Sequence typing").
// A single-item sequence passes its item's effect through unchanged; an
// empty sequence is a checker error.
func InferSequence(items []ast.Node, ctx *Context) (*Function, error) {
	if len(items) == 0 {
		return nil, ErrEmptySequence
	}

	acc, err := InferNode(items[0], ctx)
	if err != nil {
		return nil, err
	}

	for _, item := range items[1:] {
		next, err := InferNode(item, ctx)
		if err != nil {
			return nil, err
		}
		acc, err = Compose(acc, next, ctx)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// Finalize re-applies the phrase's fully accumulated substitutions to
// node's own cached type and to every node nested beneath it, then
// narrows each finalized node's left/right rows down to exactly its own
// frozen arity_in/arity_out — discarding whatever extra row elements it
// picked up from surrounding composition context. Quotations are walked
// post-order, children before the quotation's own wrapper type, mirroring
// forfait's finally_annotate_quotes family (spec.md §4.3, §4.4). Call it
// once per phrase, after the whole phrase has been inferred; it drops the
// accumulated history when done, the same as Context.Clear does for the
// per-step scratch store.
func Finalize(node ast.Node, ctx *Context) error {
	final, err := ctx.FinalSubstitution()
	if err != nil {
		return err
	}
	finalizeNode(node, ctx, final)
	ctx.dropHistory()
	return nil
}

// FinalizeItems is Finalize's counterpart for a flat item list, the shape
// InferSequence itself takes rather than a wrapped *ast.Sequence.
func FinalizeItems(items []ast.Node, ctx *Context) error {
	final, err := ctx.FinalSubstitution()
	if err != nil {
		return err
	}
	for _, item := range items {
		finalizeNode(item, ctx, final)
	}
	ctx.dropHistory()
	return nil
}

func finalizeNode(node ast.Node, ctx *Context, final Subst) {
	switch n := node.(type) {
	case *ast.Quotation:
		for _, item := range n.Body.Items {
			finalizeNode(item, ctx, final)
		}
		finalizeSelf(node, ctx, final)

	case *ast.Sequence:
		for _, item := range n.Items {
			finalizeNode(item, ctx, final)
		}

	case *ast.Definition:
		for _, item := range n.Body.Items {
			finalizeNode(item, ctx, final)
		}

	default:
		finalizeSelf(node, ctx, final)
	}
}

// finalizeSelf resolves node's own cached type against final, then
// narrows its rows down to exactly the arity frozen when the node was
// first inferred (spec.md §4.4's "narrows each child's left/right to
// exactly arity_in/arity_out"). A node InferNode never visited (e.g. a
// Sequence or Definition, which have no effect of their own) has nothing
// cached and is left alone.
func finalizeSelf(node ast.Node, ctx *Context, final Subst) {
	info, ok := ctx.innerTypes[node]
	if !ok {
		return
	}
	resolved := Apply(final, info.Type).(*Function)
	info.Type = &Function{
		Left:  resolved.Left.KeepLastN(info.ArityIn),
		Right: resolved.Right.KeepLastN(info.ArityOut),
	}
}

// TypeOf returns node's monomorphized FunctionType, the output-surface
// contract spec.md §6 names: after Finalize has run, this is node's own
// cached type with the phrase's full substitutions applied and its rows
// narrowed to its own arity. Calling it before Finalize returns the raw,
// freshly-inferred (possibly still-polymorphic) type instead.
func TypeOf(node ast.Node, ctx *Context) (*Function, bool) {
	info, ok := ctx.NodeType(node)
	if !ok {
		return nil, false
	}
	return info.Type, true
}

// UnknownWordError reports a WordRef with no matching builtin or user
// definition.
type UnknownWordError struct {
	Name string
}

func (e *UnknownWordError) Error() string {
	return "unknown word: " + e.Name
}

// UnsupportedNodeError reports an ast.Node kind InferNode does not handle
// (ast.Definition and ast.Sequence are handled by their own callers, not
// passed to InferNode directly).
type UnsupportedNodeError struct {
	Node ast.Node
}

func (e *UnsupportedNodeError) Error() string {
	return "unsupported node in inference position: " + e.Node.String()
}
