// Package depgraph implements a small directed graph with cycle detection
// and a dependency-ordered topological visit, transliterated from
// forfait's data_structures/graph.py. Context uses it to decide the order
// in which accumulated generic substitutions must be applied to each other
// (a substitution that mentions another unresolved generic must wait for
// that generic to resolve first).
package depgraph

import "fmt"

// CycleError reports that following edges from node revisited a node
// already on the current path, which would make ordering undefined.
type CycleError[K comparable] struct {
	Path []K
}

func (e *CycleError[K]) Error() string {
	return fmt.Sprintf("depgraph: cycle detected along path %v", e.Path)
}

// Graph is a directed graph over comparable keys. The zero value is not
// ready to use; call New.
type Graph[K comparable] struct {
	nodes map[K]struct{}
	edges map[K][]K // outer_edges: node -> the nodes it depends on
	order []K       // insertion order of nodes, for deterministic visits
}

// New creates an empty graph.
func New[K comparable]() *Graph[K] {
	return &Graph[K]{
		nodes: make(map[K]struct{}),
		edges: make(map[K][]K),
	}
}

// AddNode registers a node with no dependencies if not already present.
func (g *Graph[K]) AddNode(n K) {
	if _, ok := g.nodes[n]; ok {
		return
	}
	g.nodes[n] = struct{}{}
	g.order = append(g.order, n)
}

// AddEdge records that from depends on to: to must be ordered before from.
// Both ends are auto-registered as nodes.
func (g *Graph[K]) AddEdge(from, to K) {
	g.AddNode(from)
	g.AddNode(to)
	g.edges[from] = append(g.edges[from], to)
}

// OrderedVisit returns the graph's nodes in an order where every node
// appears after all the nodes it depends on (a reverse topological sort:
// dependencies first). It errors if the graph contains a cycle.
func (g *Graph[K]) OrderedVisit() ([]K, error) {
	visited := make(map[K]bool, len(g.nodes))
	var result []K

	var visit func(n K, path []K) error
	visit = func(n K, path []K) error {
		for _, p := range path {
			if p == n {
				return &CycleError[K]{Path: append(append([]K(nil), path...), n)}
			}
		}
		if visited[n] {
			return nil
		}
		path = append(path, n)
		for _, dep := range g.edges[n] {
			if err := visit(dep, path); err != nil {
				return err
			}
		}
		visited[n] = true
		result = append(result, n)
		return nil
	}

	for _, n := range g.order {
		if err := visit(n, nil); err != nil {
			return nil, err
		}
	}
	return result, nil
}
