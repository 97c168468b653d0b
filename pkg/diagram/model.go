package diagram

import (
	"errors"
	"maps"
	"slices"

	"github.com/matzehuels/relink/pkg/geometry"
)

var (
	// ErrInvalidID is returned by [Model.AddElement] and [Model.AddRelationship]
	// when the entity id is empty.
	ErrInvalidID = errors.New("entity ID must not be empty")

	// ErrDuplicateID is returned when an element or relationship with the same
	// id already exists. Ids are unique across both kinds.
	ErrDuplicateID = errors.New("duplicate entity ID")

	// ErrUnknownEntity is returned when an operation names an id that is not
	// in the model.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrUnknownOwner is returned by [Model.Validate] when an owner reference
	// does not resolve to an element.
	ErrUnknownOwner = errors.New("unknown owner")

	// ErrOwnershipCycle is returned by [Model.Validate] when the owner chain of
	// some element loops back on itself.
	ErrOwnershipCycle = errors.New("ownership contains a cycle")

	// ErrInvalidBounds is returned when bounds are non-finite or have a
	// negative size.
	ErrInvalidBounds = errors.New("invalid bounds")
)

// Element is a diagram node with a position relative to its owner.
type Element struct {
	ID     string          `json:"id" bson:"id"`
	Type   string          `json:"type" bson:"type"`
	Name   string          `json:"name,omitempty" bson:"name,omitempty"`
	Owner  string          `json:"owner,omitempty" bson:"owner,omitempty"` // empty = diagram root
	Bounds geometry.Bounds `json:"bounds" bson:"bounds"`
}

// Endpoint is one side of a relationship: the referenced element or
// relationship id plus the preferred attachment side.
type Endpoint struct {
	Element   string             `json:"element" bson:"element"`
	Direction geometry.Direction `json:"direction,omitempty" bson:"direction,omitempty"`

	// Association-end labels; cosmetic for layout purposes.
	Multiplicity string `json:"multiplicity,omitempty" bson:"multiplicity,omitempty"`
	Role         string `json:"role,omitempty" bson:"role,omitempty"`
}

// Relationship is a connector between two endpoints with an explicit path.
type Relationship struct {
	ID     string          `json:"id" bson:"id"`
	Type   string          `json:"type" bson:"type"`
	Name   string          `json:"name,omitempty" bson:"name,omitempty"`
	Owner  string          `json:"owner,omitempty" bson:"owner,omitempty"`
	Source Endpoint        `json:"source" bson:"source"`
	Target Endpoint        `json:"target" bson:"target"`
	Path   geometry.Path   `json:"path" bson:"path"`
	Bounds geometry.Bounds `json:"bounds" bson:"bounds"`

	// IsManuallyLayouted marks waypoints placed by the user. Cosmetic edits
	// must not replace them.
	IsManuallyLayouted bool `json:"isManuallyLayouted" bson:"isManuallyLayouted"`

	// LabelPosition is derived state for message links: where the message
	// label sits along the path.
	LabelPosition *geometry.Point `json:"labelPosition,omitempty" bson:"labelPosition,omitempty"`
}

// Clone returns a deep copy of r.
func (r Relationship) Clone() Relationship {
	r.Path = r.Path.Clone()
	if r.LabelPosition != nil {
		p := *r.LabelPosition
		r.LabelPosition = &p
	}
	return r
}

// IsSelfLoop reports whether both endpoints reference the same entity.
func (r Relationship) IsSelfLoop() bool { return r.Source.Element == r.Target.Element }

// Container is the diagram itself: its bounds and the ids it owns directly.
type Container struct {
	Bounds        geometry.Bounds `json:"bounds" bson:"bounds"`
	Elements      []string        `json:"ownedElements" bson:"ownedElements"`
	Relationships []string        `json:"ownedRelationships" bson:"ownedRelationships"`
}

// Model is the arena of all entities in one diagram, indexed by id.
//
// The zero value is not usable - use New to create a valid Model.
type Model struct {
	container     Container
	elements      map[string]*Element
	relationships map[string]*Relationship
}

// New creates an empty model whose container has the given bounds.
func New(bounds geometry.Bounds) *Model {
	return &Model{
		container:     Container{Bounds: bounds},
		elements:      make(map[string]*Element),
		relationships: make(map[string]*Relationship),
	}
}

// Container returns a copy of the diagram container.
func (m *Model) Container() Container {
	c := m.container
	c.Elements = slices.Clone(c.Elements)
	c.Relationships = slices.Clone(c.Relationships)
	return c
}

// SetContainerBounds replaces the container bounds.
func (m *Model) SetContainerBounds(b geometry.Bounds) { m.container.Bounds = b }

// AddElement inserts e. Root-level elements are added to the container's
// owned set. Returns ErrInvalidID, ErrDuplicateID or ErrInvalidBounds.
func (m *Model) AddElement(e Element) error {
	if err := m.checkNew(e.ID); err != nil {
		return err
	}
	if !e.Bounds.Valid() {
		return ErrInvalidBounds
	}
	m.elements[e.ID] = &e
	if e.Owner == "" {
		m.container.Elements = append(m.container.Elements, e.ID)
	}
	return nil
}

// AddRelationship inserts r. Root-level relationships are added to the
// container's owned set. Endpoints are not checked: a dangling endpoint is a
// transient state the engine tolerates.
func (m *Model) AddRelationship(r Relationship) error {
	if err := m.checkNew(r.ID); err != nil {
		return err
	}
	r = r.Clone()
	m.relationships[r.ID] = &r
	if r.Owner == "" {
		m.container.Relationships = append(m.container.Relationships, r.ID)
	}
	return nil
}

func (m *Model) checkNew(id string) error {
	if id == "" {
		return ErrInvalidID
	}
	if m.Has(id) {
		return ErrDuplicateID
	}
	return nil
}

// Has reports whether id names an element or a relationship.
func (m *Model) Has(id string) bool {
	_, e := m.elements[id]
	_, r := m.relationships[id]
	return e || r
}

// Element returns the element with the given id.
func (m *Model) Element(id string) (Element, bool) {
	e, ok := m.elements[id]
	if !ok {
		return Element{}, false
	}
	return *e, true
}

// Relationship returns a copy of the relationship with the given id.
func (m *Model) Relationship(id string) (Relationship, bool) {
	r, ok := m.relationships[id]
	if !ok {
		return Relationship{}, false
	}
	return r.Clone(), true
}

// IsRelationship reports whether id names a relationship.
func (m *Model) IsRelationship(id string) bool {
	_, ok := m.relationships[id]
	return ok
}

// SetElement replaces an existing element. Ownership changes keep the
// container's owned set in sync.
func (m *Model) SetElement(e Element) error {
	old, ok := m.elements[e.ID]
	if !ok {
		return ErrUnknownEntity
	}
	if !e.Bounds.Valid() {
		return ErrInvalidBounds
	}
	m.container.Elements = syncOwned(m.container.Elements, e.ID, old.Owner, e.Owner)
	*old = e
	return nil
}

// SetRelationship replaces an existing relationship.
func (m *Model) SetRelationship(r Relationship) error {
	old, ok := m.relationships[r.ID]
	if !ok {
		return ErrUnknownEntity
	}
	m.container.Relationships = syncOwned(m.container.Relationships, r.ID, old.Owner, r.Owner)
	*old = r.Clone()
	return nil
}

func syncOwned(owned []string, id, oldOwner, newOwner string) []string {
	switch {
	case oldOwner == "" && newOwner != "":
		return slices.DeleteFunc(owned, func(s string) bool { return s == id })
	case oldOwner != "" && newOwner == "":
		return append(owned, id)
	}
	return owned
}

// Remove deletes the entity with the given id from the arena and from the
// container's owned sets. Removing an unknown id is a no-op.
func (m *Model) Remove(id string) {
	delete(m.elements, id)
	delete(m.relationships, id)
	m.container.Elements = slices.DeleteFunc(m.container.Elements, func(s string) bool { return s == id })
	m.container.Relationships = slices.DeleteFunc(m.container.Relationships, func(s string) bool { return s == id })
}

// Elements returns all elements sorted by id.
func (m *Model) Elements() []Element {
	out := make([]Element, 0, len(m.elements))
	for _, id := range slices.Sorted(maps.Keys(m.elements)) {
		out = append(out, *m.elements[id])
	}
	return out
}

// Relationships returns copies of all relationships sorted by id.
func (m *Model) Relationships() []Relationship {
	out := make([]Relationship, 0, len(m.relationships))
	for _, id := range slices.Sorted(maps.Keys(m.relationships)) {
		out = append(out, m.relationships[id].Clone())
	}
	return out
}

// RelationshipIDs returns all relationship ids sorted.
func (m *Model) RelationshipIDs() []string {
	return slices.Sorted(maps.Keys(m.relationships))
}

// ElementCount returns the number of elements.
func (m *Model) ElementCount() int { return len(m.elements) }

// RelationshipCount returns the number of relationships.
func (m *Model) RelationshipCount() int { return len(m.relationships) }

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	c := &Model{
		container:     m.Container(),
		elements:      make(map[string]*Element, len(m.elements)),
		relationships: make(map[string]*Relationship, len(m.relationships)),
	}
	for id, e := range m.elements {
		cp := *e
		c.elements[id] = &cp
	}
	for id, r := range m.relationships {
		cp := r.Clone()
		c.relationships[id] = &cp
	}
	return c
}
