package types

import "sync/atomic"

// freshCounter is the process-wide monotonic source of variable identities.
// It is atomic per spec.md §5: even though a single Context is confined to
// one goroutine, fresh identities must stay globally unique if a caller
// ever runs independent top-level phrases (separate Contexts) concurrently
// — see SPEC_FULL.md §4.3.
var freshCounter atomic.Uint64

func nextID() uint64 {
	return freshCounter.Add(1)
}

// Var is implemented by both variable kinds (Generic, RowGeneric) so that
// substitution maps and free-variable sets can be keyed uniformly by
// integer identity, per spec.md §4.1 ("Equality of variables is by integer
// identity").
type Var interface {
	Type
	ID() uint64
	Kind() VarKind
	HumanName() string
}

// Generic is a value-level type variable: fresh instantiation gives it a
// new identity so polymorphism is never accidentally monomorphized across
// call sites (spec.md §4.3 "Fresh instantiation").
type Generic struct {
	id   uint64
	name string
}

// NewGeneric creates a fresh value-level type variable with the given
// human-readable name (used only for display).
func NewGeneric(humanName string) *Generic {
	return &Generic{id: nextID(), name: humanName}
}

func (g *Generic) ID() uint64        { return g.id }
func (g *Generic) Kind() VarKind     { return KindValue }
func (g *Generic) HumanName() string { return g.name }

func (g *Generic) String() string { return "'" + g.name }

func (g *Generic) Equals(other Type) bool {
	o, ok := other.(*Generic)
	return ok && o.id == g.id
}

func (g *Generic) Substitute(sub Subst) Type {
	if t, ok := sub[g.id]; ok {
		return t
	}
	return g
}

func (g *Generic) FreeVars(s *VarSet) {
	s.Add(g)
}

// RowGeneric is a row-level (stack) type variable: it may only stand for a
// row, never for a single value.
type RowGeneric struct {
	id   uint64
	name string
}

// NewRowGeneric creates a fresh row-level type variable.
func NewRowGeneric(humanName string) *RowGeneric {
	return &RowGeneric{id: nextID(), name: humanName}
}

func (r *RowGeneric) ID() uint64        { return r.id }
func (r *RowGeneric) Kind() VarKind     { return KindRow }
func (r *RowGeneric) HumanName() string { return r.name }

func (r *RowGeneric) String() string { return "''" + r.name }

func (r *RowGeneric) Equals(other Type) bool {
	o, ok := other.(*RowGeneric)
	return ok && o.id == r.id
}

func (r *RowGeneric) Substitute(sub Subst) Type {
	if t, ok := sub[r.id]; ok {
		return t
	}
	return r
}

func (r *RowGeneric) FreeVars(s *VarSet) {
	s.Add(r)
}

// VarSet collects free variables (of either kind) keyed by identity.
type VarSet struct {
	vars map[uint64]Var
}

// NewVarSet creates an empty variable set.
func NewVarSet() *VarSet {
	return &VarSet{vars: make(map[uint64]Var)}
}

// Add inserts v into the set.
func (s *VarSet) Add(v Var) {
	s.vars[v.ID()] = v
}

// Contains reports whether a variable with the given identity is present.
func (s *VarSet) Contains(id uint64) bool {
	_, ok := s.vars[id]
	return ok
}

// Len returns the number of distinct variables collected.
func (s *VarSet) Len() int { return len(s.vars) }

// Each calls fn for every variable in the set.
func (s *VarSet) Each(fn func(Var)) {
	for _, v := range s.vars {
		fn(v)
	}
}
