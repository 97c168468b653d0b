package diagram

import (
	"fmt"
	"maps"
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Validate checks the structural invariants that chain walks rely on:
// every owner resolves to an element, element bounds are valid, and the
// ownership relation is a forest. It returns the first violation found,
// wrapping ErrUnknownOwner, ErrInvalidBounds or ErrOwnershipCycle.
//
// Dangling relationship endpoints are not reported; the engine treats them as
// transient.
func (m *Model) Validate() error {
	ids := slices.Sorted(maps.Keys(m.elements))
	index := make(map[string]int64, len(ids))
	g := simple.NewDirectedGraph()
	for i, id := range ids {
		index[id] = int64(i)
		g.AddNode(simple.Node(i))
	}

	for _, id := range ids {
		e := m.elements[id]
		if !e.Bounds.Valid() {
			return fmt.Errorf("%w: element %s", ErrInvalidBounds, id)
		}
		if e.Owner == "" {
			continue
		}
		if e.Owner == id {
			return fmt.Errorf("%w: element %s owns itself", ErrOwnershipCycle, id)
		}
		owner, ok := index[e.Owner]
		if !ok {
			return fmt.Errorf("%w: element %s owned by %s", ErrUnknownOwner, id, e.Owner)
		}
		g.SetEdge(simple.Edge{F: simple.Node(owner), T: simple.Node(index[id])})
	}

	if _, err := topo.Sort(g); err != nil {
		return fmt.Errorf("%w: %v", ErrOwnershipCycle, err)
	}

	for _, rid := range m.RelationshipIDs() {
		r := m.relationships[rid]
		if r.Owner != "" {
			if _, ok := m.elements[r.Owner]; !ok {
				return fmt.Errorf("%w: relationship %s owned by %s", ErrUnknownOwner, rid, r.Owner)
			}
		}
	}
	return nil
}

// DependencyCycles returns the cycles in the relationship-to-relationship
// reference graph, each as a list of relationship ids. Such cycles are legal;
// the engine's cascade terminates on them.
func (m *Model) DependencyCycles() [][]string {
	ids := m.RelationshipIDs()
	index := make(map[string]int64, len(ids))
	g := simple.NewDirectedGraph()
	for i, id := range ids {
		index[id] = int64(i)
		g.AddNode(simple.Node(i))
	}

	var cycles [][]string
	for _, id := range ids {
		r := m.relationships[id]
		if r.Source.Element == id || r.Target.Element == id {
			cycles = append(cycles, []string{id})
		}
		for _, ref := range []string{r.Source.Element, r.Target.Element} {
			to, ok := index[ref]
			if !ok || ref == id {
				continue
			}
			g.SetEdge(simple.Edge{F: simple.Node(index[id]), T: simple.Node(to)})
		}
	}

	for _, c := range topo.DirectedCyclesIn(g) {
		// The first node is repeated at the end of each cycle.
		cycle := make([]string, 0, len(c)-1)
		for _, n := range c[:len(c)-1] {
			cycle = append(cycle, ids[n.ID()])
		}
		cycles = append(cycles, cycle)
	}
	return cycles
}
