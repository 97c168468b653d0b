package diagram

import (
	"fmt"
	"slices"

	"github.com/matzehuels/relink/pkg/geometry"
)

// Resolved is the target of an endpoint reference: exactly one of Element or
// Relationship is set.
type Resolved struct {
	Element      *Element
	Relationship *Relationship
}

// IsRelationship reports whether the endpoint points at a relationship.
func (r Resolved) IsRelationship() bool { return r.Relationship != nil }

// ID returns the id of the resolved entity.
func (r Resolved) ID() string {
	if r.Relationship != nil {
		return r.Relationship.ID
	}
	if r.Element != nil {
		return r.Element.ID
	}
	return ""
}

// ResolveEndpoint looks up the entity an endpoint reference points at.
// The second result is false when ref names nothing in the model.
func (m *Model) ResolveEndpoint(ref string) (Resolved, bool) {
	if e, ok := m.elements[ref]; ok {
		cp := *e
		return Resolved{Element: &cp}, true
	}
	if r, ok := m.relationships[ref]; ok {
		cp := r.Clone()
		return Resolved{Relationship: &cp}, true
	}
	return Resolved{}, false
}

// AbsolutePosition returns the top-left corner of element id in diagram
// coordinates, summing bounds offsets from the root down the owner chain.
// It returns false when id or one of its owners is missing.
func (m *Model) AbsolutePosition(id string) (geometry.Point, bool) {
	chain, ok := m.ownerChain(id)
	if !ok {
		return geometry.Point{}, false
	}
	var p geometry.Point
	for i := len(chain) - 1; i >= 0; i-- {
		p = p.Add(chain[i].Bounds.X, chain[i].Bounds.Y)
	}
	return p, true
}

// AbsoluteBounds returns element id's bounds in diagram coordinates.
func (m *Model) AbsoluteBounds(id string) (geometry.Bounds, bool) {
	e, ok := m.elements[id]
	if !ok {
		return geometry.Bounds{}, false
	}
	p, ok := m.AbsolutePosition(id)
	if !ok {
		return geometry.Bounds{}, false
	}
	return geometry.Bounds{X: p.X, Y: p.Y, Width: e.Bounds.Width, Height: e.Bounds.Height}, true
}

// AnchorBounds returns the absolute box a relationship endpoint attaches to.
// Elements yield their absolute bounds; relationships yield a zero-size box at
// the midpoint of their path. It returns false if the reference does not
// resolve or the referenced geometry is unusable.
func (m *Model) AnchorBounds(ref string) (geometry.Bounds, bool) {
	if _, ok := m.elements[ref]; ok {
		b, ok := m.AbsoluteBounds(ref)
		return b, ok && b.Valid()
	}
	r, ok := m.relationships[ref]
	if !ok || !r.Path.Valid() {
		return geometry.Bounds{}, false
	}
	mid := r.Path.Midpoint()
	return geometry.Bounds{X: mid.X, Y: mid.Y}, true
}

// OwnerChainContains reports whether targetID is id itself or one of its
// ancestors. For a relationship the chain continues through its owner element.
func (m *Model) OwnerChainContains(id, targetID string) bool {
	if id == targetID {
		return true
	}
	cur := id
	if r, ok := m.relationships[id]; ok {
		cur = r.Owner
	}
	chain, _ := m.ownerChain(cur)
	for _, e := range chain {
		if e.ID == targetID {
			return true
		}
	}
	return false
}

// ownerChain returns the elements from id up to the root. The walk stops at
// the first missing owner and reports false. A chain longer than the number
// of elements can only come from an ownership cycle, which panics.
func (m *Model) ownerChain(id string) ([]*Element, bool) {
	var chain []*Element
	for cur := id; cur != ""; {
		e, ok := m.elements[cur]
		if !ok {
			return chain, false
		}
		chain = append(chain, e)
		if len(chain) > len(m.elements) {
			panic(fmt.Sprintf("diagram: ownership cycle through %q", id))
		}
		cur = e.Owner
	}
	return chain, true
}

// Descendants returns the ids of every element and relationship whose owner
// chain contains id, excluding id itself, sorted.
func (m *Model) Descendants(id string) []string {
	var out []string
	for eid := range m.elements {
		if eid != id && m.OwnerChainContains(eid, id) {
			out = append(out, eid)
		}
	}
	for rid := range m.relationships {
		if rid != id && m.OwnerChainContains(rid, id) {
			out = append(out, rid)
		}
	}
	slices.Sort(out)
	return out
}

// RelationshipsAttachedTo returns the ids of relationships whose source or
// target references one of ids, sorted.
func (m *Model) RelationshipsAttachedTo(ids map[string]bool) []string {
	var out []string
	for rid, r := range m.relationships {
		if ids[r.Source.Element] || ids[r.Target.Element] {
			out = append(out, rid)
		}
	}
	slices.Sort(out)
	return out
}

// RelationshipsOwnedBy returns the ids of relationships whose owner chain
// contains id, sorted.
func (m *Model) RelationshipsOwnedBy(id string) []string {
	var out []string
	for rid := range m.relationships {
		if m.OwnerChainContains(rid, id) {
			out = append(out, rid)
		}
	}
	slices.Sort(out)
	return out
}

// ContentBounds returns the union of all element absolute bounds and
// relationship bounds. The second result is false for an empty diagram.
func (m *Model) ContentBounds() (geometry.Bounds, bool) {
	var (
		out   geometry.Bounds
		found bool
	)
	add := func(b geometry.Bounds) {
		if !found {
			out, found = b, true
			return
		}
		out = out.Union(b)
	}
	for id := range m.elements {
		if b, ok := m.AbsoluteBounds(id); ok {
			add(b)
		}
	}
	for _, r := range m.relationships {
		if r.Path.Valid() {
			add(r.Bounds)
		}
	}
	return out, found
}
