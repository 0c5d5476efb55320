package types

import (
	"fmt"

	"github.com/staqlang/staq/internal/ast"
	"github.com/staqlang/staq/internal/depgraph"
)

// RecursionError reports that a user word's body refers to its own name.
// Recursive user words are out of scope (spec.md §9 Open Question,
// resolved: AddUserFunction rejects a word whose caller reports that its
// body mentions its own name, rather than looping forever trying to unify
// a word's type with itself).
type RecursionError struct {
	Name string
}

func (e *RecursionError) Error() string {
	return fmt.Sprintf("word %q refers to itself; recursive user words are not supported", e.Name)
}

// CyclicSubstitutionError reports that the accumulated substitutions could
// not be ordered because two or more generics depend on each other.
type CyclicSubstitutionError struct {
	Cause error
}

func (e *CyclicSubstitutionError) Error() string {
	return fmt.Sprintf("cyclic substitution dependency: %v", e.Cause)
}

// NodeInfo is the per-node cache entry InferNode populates the first time
// it types a node, and Finalize later resolves and narrows in place. Type
// is the node's own inferred function type, frozen at first inference,
// before any later composition with surrounding context; ArityIn/ArityOut
// are exactly that type's Left/Right arity, frozen at the same moment
// (mirrors forfait's Funcall.__init__, which freezes
// self.type.left.arity()/self.type.right.arity() before the node ever
// takes part in a composition).
type NodeInfo struct {
	Type     *Function
	ArityIn  int
	ArityOut int
}

// Context is the mutable inference session: the catalog of builtin and
// user word schemes, and the substitution store being built up as
// unification proceeds. It is confined to a single goroutine (see
// SPEC_FULL.md §4.3) — callers needing concurrent inference create one
// Context per goroutine.
type Context struct {
	builtins map[string]*Scheme
	users    map[string]*Scheme
	subs     Subst

	// history accumulates every substitution discovered across every
	// Compose call of the current phrase. Unlike subs, Clear never wipes
	// it — only Finalize's end-of-phrase dropHistory does — so it is what
	// "all accumulated substitutions" in spec.md §4.3 refers to.
	history Subst

	// innerTypes caches each AST node's own inferred type, keyed by
	// pointer identity, the first time InferNode visits it. Finalize
	// re-resolves and narrows these entries once the whole phrase's
	// substitutions are known (spec.md §4.4's "finalizing quotations").
	innerTypes map[ast.Node]*NodeInfo
}

// NewContext creates a Context with no registered words and an empty
// substitution store.
func NewContext() *Context {
	return &Context{
		builtins:   make(map[string]*Scheme),
		users:      make(map[string]*Scheme),
		subs:       make(Subst),
		history:    make(Subst),
		innerTypes: make(map[ast.Node]*NodeInfo),
	}
}

// RegisterBuiltin adds or overwrites a builtin word's type scheme.
func (ctx *Context) RegisterBuiltin(name string, scheme *Scheme) {
	ctx.builtins[name] = scheme
}

// AddUserFunction registers a user-defined word under an already-inferred
// scheme, rejecting it when the caller reports that its body mentions its
// own name (spec.md §9 "Non-recursion" decision). It does not type-check
// the body itself.
func (ctx *Context) AddUserFunction(name string, bodyMentionsSelf bool, scheme *Scheme) error {
	if bodyMentionsSelf {
		return &RecursionError{Name: name}
	}
	ctx.users[name] = scheme
	return nil
}

// Lookup resolves name against user words first, then builtins, returning
// a freshly instantiated Function type. It reports whether the name was
// found.
func (ctx *Context) Lookup(name string) (*Function, bool) {
	if s, ok := ctx.users[name]; ok {
		return s.Instantiate(), true
	}
	if s, ok := ctx.builtins[name]; ok {
		return s.Instantiate(), true
	}
	return nil, false
}

// Clear discards every accumulated substitution, starting a fresh
// unification session while keeping the word catalogs (mirrors forfait's
// Context.clear_generic_subs(), called at the start of each composition).
// It does not touch the phrase-long history Finalize consumes.
func (ctx *Context) Clear() {
	ctx.subs = make(Subst)
}

// CurrentSubstitutions snapshots the scratch substitutions discovered
// since the last Clear — exactly what the composition step in progress
// has unified so far, the same thing forfait's UnificationError folds
// into its message via the whole Context.
func (ctx *Context) CurrentSubstitutions() Subst {
	return cloneSubst(ctx.subs)
}

// AccumulatedSubstitutions snapshots the phrase-long history: every
// substitution discovered across every composition step since the last
// Finalize, independent of the per-step scratch store Clear wipes.
func (ctx *Context) AccumulatedSubstitutions() Subst {
	return cloneSubst(ctx.history)
}

func cloneSubst(s Subst) Subst {
	out := make(Subst, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// mergeHistory folds a composition step's resolved substitutions into the
// phrase-long history: every existing binding gets the step applied to
// its own right-hand side, and every new binding not already present is
// added outright. Compose calls this once per step so Finalize later sees
// the union of every step's knowledge, not just the last one.
func (ctx *Context) mergeHistory(step Subst) {
	for id, t := range ctx.history {
		ctx.history[id] = Apply(step, t)
	}
	for id, t := range step {
		if _, already := ctx.history[id]; already {
			continue
		}
		ctx.history[id] = t
	}
}

// dropHistory discards the phrase-long substitution history. Finalize
// calls this last, once it has applied every accumulated substitution to
// every cached node type (spec.md §4.3 "then drop the substitution
// store").
func (ctx *Context) dropHistory() {
	ctx.history = make(Subst)
}

// cacheNodeType records node's own inferred type the first time it is
// seen, freezing its arity alongside it. It is a no-op on a node already
// cached, mirroring forfait's "self.type is not None" early return —
// InferNode may revisit the same node only through Compose's folding, not
// through re-inference, so the first cached type is always node's true
// own effect.
func (ctx *Context) cacheNodeType(node ast.Node, fn *Function) {
	if _, ok := ctx.innerTypes[node]; ok {
		return
	}
	ctx.innerTypes[node] = &NodeInfo{
		Type:     fn,
		ArityIn:  fn.Left.Arity(),
		ArityOut: fn.Right.Arity(),
	}
}

// NodeType returns the cached inference result for node, if any. Before
// Finalize runs this is the node's raw, freshly-inferred type; afterward
// it is the fully resolved, arity-narrowed monomorphized type.
func (ctx *Context) NodeType(node ast.Node) (*NodeInfo, bool) {
	info, ok := ctx.innerTypes[node]
	return info, ok
}

// applyCurrent applies the context's accumulated substitutions to t.
func (ctx *Context) applyCurrent(t Type) Type {
	return Apply(ctx.subs, t)
}

// applyRow is applyCurrent specialized to the common *Row case.
func (ctx *Context) applyRow(r *Row) *Row {
	return ctx.applyCurrent(r).(*Row)
}

// AddSub records that v is now known to be newType, folding it into the
// existing substitution store. This is the "apply-and-extend" algorithm
// (Algorithm W style), grounded directly on forfait's
// Context.add_generic_sub:
//
//   - if v is already bound to something equal to newType, this is a
//     no-op (trivial equation elision);
//   - if v is already bound to something else, the old and new bindings
//     are unified against each other, and the resulting equations are
//     folded into every existing binding's right-hand side;
//   - otherwise v is bound directly, and every existing binding's
//     right-hand side gets newType substituted in wherever v occurs in
//     it, so the store never lags behind its own latest knowledge.
func (ctx *Context) AddSub(v Var, newType Type) error {
	newType = ctx.applyCurrent(newType)

	if existing, ok := ctx.subs[v.ID()]; ok {
		if existing.Equals(newType) {
			return nil
		}
		scratch := NewContext()
		for k, t := range ctx.subs {
			scratch.subs[k] = t
		}
		if err := Unify(existing, newType, scratch); err != nil {
			return err
		}
		for id, t := range scratch.subs {
			ctx.subs[id] = t
		}
		return nil
	}

	step := Subst{v.ID(): newType}
	for id, t := range ctx.subs {
		ctx.subs[id] = Apply(step, t)
	}
	ctx.subs[v.ID()] = newType
	return nil
}

// OrderedSubs returns the accumulated substitutions together with an order
// in which they can be safely applied one after another: a generic whose
// binding mentions another still-unresolved generic is ordered after that
// generic. This mirrors forfait's Context.ordered_subs(), which builds a
// dependency graph (an edge generic -> neigh for every free generic found
// inside its bound type) and topologically sorts it.
func (ctx *Context) OrderedSubs() (Subst, []uint64, error) {
	g := depgraph.New[uint64]()
	for id := range ctx.subs {
		g.AddNode(id)
	}
	for id, t := range ctx.subs {
		free := NewVarSet()
		t.FreeVars(free)
		free.Each(func(v Var) {
			if _, bound := ctx.subs[v.ID()]; bound {
				g.AddEdge(id, v.ID())
			}
		})
	}

	order, err := g.OrderedVisit()
	if err != nil {
		return nil, nil, &CyclicSubstitutionError{Cause: err}
	}
	return ctx.subs, order, nil
}

// FinalSubstitution orders and folds the phrase-long history the same way
// Compose resolves a single step's substitutions, producing one
// substitution safe to apply in a single Apply call. Finalize uses this
// to re-annotate every cached node type with everything the whole phrase
// discovered (spec.md §4.3).
func (ctx *Context) FinalSubstitution() (Subst, error) {
	return foldOrdered(ctx.history)
}

// foldOrdered topologically orders subs by inter-dependency (a binding
// that mentions another still-unresolved generic is ordered after it)
// and folds each binding into the ones before it, so the result can be
// applied in a single pass without applying it to itself transitively.
func foldOrdered(subs Subst) (Subst, error) {
	g := depgraph.New[uint64]()
	for id := range subs {
		g.AddNode(id)
	}
	for id, t := range subs {
		free := NewVarSet()
		t.FreeVars(free)
		free.Each(func(v Var) {
			if _, bound := subs[v.ID()]; bound {
				g.AddEdge(id, v.ID())
			}
		})
	}

	order, err := g.OrderedVisit()
	if err != nil {
		return nil, &CyclicSubstitutionError{Cause: err}
	}
	acc := make(Subst, len(order))
	for _, id := range order {
		acc[id] = Apply(acc, subs[id])
	}
	return acc, nil
}
