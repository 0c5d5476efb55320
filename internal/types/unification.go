package types

import "fmt"

// UnificationError reports two types that could not be made equal. It
// carries only the two offending types and an optional reason; the
// Context's substitution store is attached one layer up, when
// staqerr.Classify wraps it (the counterpart of forfait's
// UnificationError(t1, t2, ctx), which folds the whole context into the
// error message).
type UnificationError struct {
	Left, Right Type
	Reason      string
}

func (e *UnificationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot unify %s with %s: %s", e.Left, e.Right, e.Reason)
	}
	return fmt.Sprintf("cannot unify %s with %s", e.Left, e.Right)
}

// OccursCheckError reports an attempt to bind a variable to a type that
// already contains it, which would produce an infinite type.
type OccursCheckError struct {
	Var Var
	In  Type
}

func (e *OccursCheckError) Error() string {
	return fmt.Sprintf("occurs check failed: %s occurs in %s", e.Var, e.In)
}

// Unify attempts to make a and b equal, recording any new variable bindings
// into ctx's substitution store via ctx.AddSub (spec.md §4.2). It returns
// the first error encountered, if any.
func Unify(a, b Type, ctx *Context) error {
	a, b = ctx.applyCurrent(a), ctx.applyCurrent(b)

	switch av := a.(type) {
	case *Generic:
		return unifyVar(av, b, ctx)
	case *RowGeneric:
		return unifyRowVar(av, b, ctx)
	}
	switch bv := b.(type) {
	case *Generic:
		return unifyVar(bv, a, ctx)
	case *RowGeneric:
		return unifyRowVar(bv, a, ctx)
	}

	switch av := a.(type) {
	case *Base:
		bv, ok := b.(*Base)
		if !ok || bv.Tag != av.Tag {
			return &UnificationError{Left: a, Right: b}
		}
		return nil

	case *Composite:
		bv, ok := b.(*Composite)
		if !ok || bv.Name != av.Name || len(bv.Args) != len(av.Args) {
			return &UnificationError{Left: a, Right: b}
		}
		for i := range av.Args {
			if err := Unify(av.Args[i], bv.Args[i], ctx); err != nil {
				return err
			}
		}
		return nil

	case *Row:
		bv, ok := b.(*Row)
		if !ok {
			return &UnificationError{Left: a, Right: b}
		}
		return UnifyRows(av, bv, ctx)

	case *Function:
		bv, ok := b.(*Function)
		if !ok {
			return &UnificationError{Left: a, Right: b}
		}
		if err := UnifyRows(av.Left, bv.Left, ctx); err != nil {
			return err
		}
		return UnifyRows(
			ctx.applyCurrent(av.Right).(*Row),
			ctx.applyCurrent(bv.Right).(*Row),
			ctx,
		)

	default:
		return &UnificationError{Left: a, Right: b, Reason: "unrecognized type variant"}
	}
}

func unifyVar(v *Generic, t Type, ctx *Context) error {
	if ov, ok := t.(*Generic); ok && ov.ID() == v.ID() {
		return nil
	}
	if occurs(v, t) {
		return &OccursCheckError{Var: v, In: t}
	}
	return ctx.AddSub(v, t)
}

func unifyRowVar(v *RowGeneric, t Type, ctx *Context) error {
	if ov, ok := t.(*RowGeneric); ok && ov.ID() == v.ID() {
		return nil
	}
	if row, ok := t.(*Row); ok && occursInRow(v, row) {
		return &OccursCheckError{Var: v, In: t}
	}
	return ctx.AddSub(v, t)
}

func occurs(v Var, t Type) bool {
	s := NewVarSet()
	t.FreeVars(s)
	return s.Contains(v.ID())
}

func occursInRow(v *RowGeneric, r *Row) bool {
	if r.Var.ID() == v.ID() && len(r.Types) == 0 {
		return false // the trivial binding of its own tail is not an occurrence
	}
	return occurs(v, r)
}

// UnifyRows unifies two rows by pairwise unifying their topmost min(n,m)
// elements and then unifying the row variable of the shorter side with the
// remainder of the longer side (spec.md §4.2 rule 5). Topmost is the last
// element of Types. A binding made while unifying those elements can
// splice a row into the prefix of r1 or r2; what lies below the unified
// top is therefore measured afresh, and when both sides still have
// elements there they are unified the same way before any row variable
// is bound.
func UnifyRows(r1, r2 *Row, ctx *Context) error {
	r1, r2 = ctx.applyRow(r1), ctx.applyRow(r2)

	common := len(r1.Types)
	if len(r2.Types) < common {
		common = len(r2.Types)
	}

	for i := 0; i < common; i++ {
		t1 := r1.Types[len(r1.Types)-1-i]
		t2 := r2.Types[len(r2.Types)-1-i]
		if err := Unify(t1, t2, ctx); err != nil {
			return err
		}
		r1, r2 = ctx.applyRow(r1), ctx.applyRow(r2)
	}

	n1, n2 := len(r1.Types)-common, len(r2.Types)-common
	rest1 := &Row{Var: r1.Var, Types: append([]Type(nil), r1.Types[:n1]...)}
	rest2 := &Row{Var: r2.Var, Types: append([]Type(nil), r2.Types[:n2]...)}
	switch {
	case n1 > 0 && n2 > 0:
		return UnifyRows(rest1, rest2, ctx)
	case n1 == n2:
		return unifyRowVar(r1.Var, r2.Var, ctx)
	case n1 < n2:
		return unifyRowVar(r1.Var, rest2, ctx)
	default:
		return unifyRowVar(r2.Var, rest1, ctx)
	}
}
