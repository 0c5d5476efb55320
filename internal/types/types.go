package types

import (
	"fmt"
	"strings"
)

// Type is the closed union of the type universe: Base, *Generic,
// *RowGeneric, *Row, *Composite, *Function. It is a tagged union encoded as
// a Go interface with exhaustive type switches at the call sites that need
// to distinguish variants (unification, substitution display), per
// spec.md §9 "Dynamic dispatch" design note — not open inheritance.
type Type interface {
	// String renders the type using the row-polymorphic notation from
	// spec.md §8 (e.g. "(''S -> ''S U8 U8 U8)").
	String() string
	// Equals is pure structural equality, ignoring any Context — variable
	// equality is by integer identity (spec.md §4.1).
	Equals(Type) bool
	// Substitute returns the type with every occurrence of a bound
	// variable (by identity, via sub) replaced. Replacement into a row
	// variable spreads the replacement row's elements onto the containing
	// row (spec.md §4.1).
	Substitute(sub Subst) Type
	// FreeVars collects every generic (value- and row-level) reachable
	// inside the type into s.
	FreeVars(s *VarSet)
}

// Subst maps a variable's integer identity to its bound type. It is the
// in-progress most-general-unifier being built by a Context (spec.md §3).
type Subst map[uint64]Type

// Apply substitutes sub into t, short-circuiting on an empty substitution.
func Apply(sub Subst, t Type) Type {
	if len(sub) == 0 {
		return t
	}
	return t.Substitute(sub)
}

// BaseTag enumerates the scalar base types.
type BaseTag int

const (
	U8 BaseTag = iota
	S8
	U16
	Bool
)

func (b BaseTag) String() string {
	switch b {
	case U8:
		return "U8"
	case S8:
		return "S8"
	case U16:
		return "U16"
	case Bool:
		return "BOOL"
	default:
		return "?BaseTag"
	}
}

// Base is a tagged atomic type; two Base values are equal iff their tags
// match.
type Base struct {
	Tag BaseTag
}

var (
	TU8   = &Base{Tag: U8}
	TS8   = &Base{Tag: S8}
	TU16  = &Base{Tag: U16}
	TBool = &Base{Tag: Bool}
)

func (b *Base) String() string { return b.Tag.String() }

func (b *Base) Equals(other Type) bool {
	o, ok := other.(*Base)
	return ok && o.Tag == b.Tag
}

func (b *Base) Substitute(Subst) Type { return b }

func (b *Base) FreeVars(*VarSet) {}

// Composite is a named constructor with a fixed arity and an ordered
// argument list (built-ins: LIST<T>, MAYBE<T>). Two composites are equal
// only if their names and pairwise arguments match.
type Composite struct {
	Name string
	Args []Type
}

// NewComposite constructs a composite type, panicking if called with zero
// arguments — a composite with no inner types is a programmer error, not a
// representable runtime state (mirrors forfait's ZTComposite.__init__
// raising on an empty inner_types list).
func NewComposite(name string, args ...Type) *Composite {
	if len(args) == 0 {
		panic(fmt.Sprintf("types: composite %q constructed with zero arguments", name))
	}
	return &Composite{Name: name, Args: args}
}

// List builds LIST<elem>.
func List(elem Type) *Composite { return NewComposite("LIST", elem) }

// Maybe builds MAYBE<elem>.
func Maybe(elem Type) *Composite { return NewComposite("MAYBE", elem) }

func (c *Composite) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", c.Name, strings.Join(args, " "))
}

func (c *Composite) Equals(other Type) bool {
	o, ok := other.(*Composite)
	if !ok || o.Name != c.Name || len(o.Args) != len(c.Args) {
		return false
	}
	for i := range c.Args {
		if !c.Args[i].Equals(o.Args[i]) {
			return false
		}
	}
	return true
}

func (c *Composite) Substitute(sub Subst) Type {
	args := make([]Type, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.Substitute(sub)
	}
	return &Composite{Name: c.Name, Args: args}
}

func (c *Composite) FreeVars(s *VarSet) {
	for _, a := range c.Args {
		a.FreeVars(s)
	}
}

// Row is "some unknown prefix row_var followed by the listed value types,
// topmost at the right" (spec.md §3). Arity is len(Types).
type Row struct {
	Var   *RowGeneric
	Types []Type
}

// NewRow builds a row from a row variable and its fixed suffix, topmost at
// the right (index len(types)-1 is the stack top).
func NewRow(v *RowGeneric, types ...Type) *Row {
	return &Row{Var: v, Types: types}
}

// Arity is the number of concrete value types in the row's fixed suffix.
func (r *Row) Arity() int { return len(r.Types) }

// KeepLastN narrows the row to its topmost n elements, discarding any
// extra prefix accumulated from surrounding composition context. Topmost
// is the right/last end of Types, so the dropped elements are the
// earliest ones in the slice. n is clamped to the row's own arity, since
// a node can never have accumulated fewer elements than its own frozen
// arity_out requires (finalize_annotate_quotes' keep_last_n, spec.md §4.4
// — the original has no standalone definition in the retrieved corpus,
// so this narrows from first principles about the row's ordering).
func (r *Row) KeepLastN(n int) *Row {
	if n >= len(r.Types) {
		return &Row{Var: r.Var, Types: append([]Type(nil), r.Types...)}
	}
	if n < 0 {
		n = 0
	}
	kept := append([]Type(nil), r.Types[len(r.Types)-n:]...)
	return &Row{Var: r.Var, Types: kept}
}

func (r *Row) String() string {
	parts := make([]string, 0, len(r.Types)+1)
	parts = append(parts, r.Var.String())
	for _, t := range r.Types {
		parts = append(parts, t.String())
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// Equals compares row-variable identity and element-wise equality of the
// fixed suffix (spec.md §4.1).
func (r *Row) Equals(other Type) bool {
	o, ok := other.(*Row)
	if !ok || len(o.Types) != len(r.Types) || !r.Var.Equals(o.Var) {
		return false
	}
	for i := range r.Types {
		if !r.Types[i].Equals(o.Types[i]) {
			return false
		}
	}
	return true
}

// Substitute replaces every bound variable in the row. If the row
// variable itself is bound to another Row, the replacement's elements are
// spliced onto the front of this row's fixed suffix (spec.md §4.1); if
// it's bound to another RowGeneric, the variable is simply swapped.
func (r *Row) Substitute(sub Subst) Type {
	types := make([]Type, len(r.Types))
	for i, t := range r.Types {
		types[i] = t.Substitute(sub)
	}

	bound, ok := sub[r.Var.ID()]
	if !ok {
		return &Row{Var: r.Var, Types: types}
	}

	switch b := bound.(type) {
	case *Row:
		merged := make([]Type, 0, len(b.Types)+len(types))
		merged = append(merged, b.Types...)
		merged = append(merged, types...)
		return &Row{Var: b.Var, Types: merged}
	case *RowGeneric:
		return &Row{Var: b, Types: types}
	default:
		panic(fmt.Sprintf("types: row variable %s bound to non-row type %T", r.Var, bound))
	}
}

func (r *Row) FreeVars(s *VarSet) {
	for _, t := range r.Types {
		t.FreeVars(s)
	}
	s.Add(r.Var)
}

// Function is a pair of rows (left, right) representing a stack effect:
// consumes left, produces right.
type Function struct {
	Left  *Row
	Right *Row
}

// NewFunction builds a Function sharing a single row variable on both
// sides — the common "S ... -> S ..." shape used by most primitives.
func NewFunction(rowVar *RowGeneric, left, right []Type) *Function {
	return &Function{Left: NewRow(rowVar, left...), Right: NewRow(rowVar, right...)}
}

// NewFunctionRows builds a Function whose left and right rows carry
// independent row variables — needed e.g. for eval's "(S -> R)" argument.
func NewFunctionRows(leftVar *RowGeneric, left []Type, rightVar *RowGeneric, right []Type) *Function {
	return &Function{Left: NewRow(leftVar, left...), Right: NewRow(rightVar, right...)}
}

func (f *Function) String() string {
	return fmt.Sprintf("(%s -> %s)", f.Left.String(), f.Right.String())
}

func (f *Function) Equals(other Type) bool {
	o, ok := other.(*Function)
	return ok && f.Left.Equals(o.Left) && f.Right.Equals(o.Right)
}

func (f *Function) Substitute(sub Subst) Type {
	left := f.Left.Substitute(sub).(*Row)
	right := f.Right.Substitute(sub).(*Row)
	return &Function{Left: left, Right: right}
}

func (f *Function) FreeVars(s *VarSet) {
	f.Left.FreeVars(s)
	f.Right.FreeVars(s)
}

// Scheme is a function type scheme: its row variables and generics are its
// universally quantified variables. Instantiate produces a fresh variant
// with disjoint variable identities so polymorphism is never accidentally
// monomorphized across call sites (spec.md §3, §4.3).
type Scheme struct {
	Vars    []*Generic
	RowVars []*RowGeneric
	Type    *Function
}

// NewScheme quantifies fn over the given generics and row generics.
func NewScheme(vars []*Generic, rowVars []*RowGeneric, fn *Function) *Scheme {
	return &Scheme{Vars: vars, RowVars: rowVars, Type: fn}
}

// Instantiate returns a deep copy of the scheme's type with every
// quantified variable replaced by a freshly identified variable of the
// same kind and human name.
func (s *Scheme) Instantiate() *Function {
	sub := make(Subst, len(s.Vars)+len(s.RowVars))
	for _, v := range s.Vars {
		sub[v.ID()] = NewGeneric(v.HumanName())
	}
	for _, rv := range s.RowVars {
		sub[rv.ID()] = NewRowGeneric(rv.HumanName())
	}
	return s.Type.Substitute(sub).(*Function)
}

func (s *Scheme) String() string {
	return s.Type.String()
}
