package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexOf[K comparable](s []K, v K) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

func TestOrderedVisitDependenciesFirst(t *testing.T) {
	g := New[string]()
	g.AddEdge("T", "U") // T depends on U
	g.AddEdge("U", "V") // U depends on V
	g.AddNode("W")

	order, err := g.OrderedVisit()
	require.NoError(t, err)

	assert.Less(t, indexOf(order, "V"), indexOf(order, "U"))
	assert.Less(t, indexOf(order, "U"), indexOf(order, "T"))
	assert.Contains(t, order, "W")
	assert.Len(t, order, 4)
}

func TestOrderedVisitDetectsCycle(t *testing.T) {
	g := New[string]()
	g.AddEdge("A", "B")
	g.AddEdge("B", "A")

	_, err := g.OrderedVisit()
	require.Error(t, err)
	var cycleErr *CycleError[string]
	require.ErrorAs(t, err, &cycleErr)
}

func TestOrderedVisitNoEdges(t *testing.T) {
	g := New[int]()
	g.AddNode(1)
	g.AddNode(2)
	g.AddNode(3)

	order, err := g.OrderedVisit()
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2, 3}, order)
}
