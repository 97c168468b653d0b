package document

import (
	"encoding/json"
	"slices"

	"github.com/matzehuels/relink/pkg/diagram"
	relerrors "github.com/matzehuels/relink/pkg/errors"
	"github.com/matzehuels/relink/pkg/geometry"
)

// Document is the serialization format of a diagram.
type Document struct {
	ID                 string                          `json:"id,omitempty" bson:"_id,omitempty"`
	Bounds             geometry.Bounds                 `json:"bounds" bson:"bounds"`
	OwnedElements      []string                        `json:"ownedElements" bson:"ownedElements"`
	OwnedRelationships []string                        `json:"ownedRelationships" bson:"ownedRelationships"`
	Elements           map[string]diagram.Element      `json:"elements" bson:"elements"`
	Relationships      map[string]diagram.Relationship `json:"relationships" bson:"relationships"`
}

// FromModel converts a model to its serialization format.
func FromModel(m *diagram.Model) Document {
	c := m.Container()
	doc := Document{
		Bounds:             c.Bounds,
		OwnedElements:      nonNil(c.Elements),
		OwnedRelationships: nonNil(c.Relationships),
		Elements:           make(map[string]diagram.Element, m.ElementCount()),
		Relationships:      make(map[string]diagram.Relationship, m.RelationshipCount()),
	}
	for _, e := range m.Elements() {
		doc.Elements[e.ID] = e
	}
	for _, r := range m.Relationships() {
		doc.Relationships[r.ID] = r
	}
	return doc
}

// ToModel converts a document to a validated model. Root-level entities are
// inserted in the document's owned order, the rest by id.
func ToModel(doc Document) (*diagram.Model, error) {
	m := diagram.New(doc.Bounds)

	for _, id := range insertionOrder(doc.OwnedElements, doc.Elements) {
		e := doc.Elements[id]
		if e.ID == "" {
			e.ID = id
		}
		if e.ID != id {
			return nil, relerrors.New(relerrors.ErrCodeInvalidDocument, "element key %q holds id %q", id, e.ID)
		}
		if err := m.AddElement(e); err != nil {
			return nil, relerrors.Wrap(relerrors.ErrCodeInvalidDocument, err, "element %q", id)
		}
	}
	for _, id := range insertionOrder(doc.OwnedRelationships, doc.Relationships) {
		r := doc.Relationships[id]
		if r.ID == "" {
			r.ID = id
		}
		if r.ID != id {
			return nil, relerrors.New(relerrors.ErrCodeInvalidDocument, "relationship key %q holds id %q", id, r.ID)
		}
		if err := m.AddRelationship(r); err != nil {
			return nil, relerrors.Wrap(relerrors.ErrCodeInvalidDocument, err, "relationship %q", id)
		}
	}

	if err := m.Validate(); err != nil {
		return nil, relerrors.Wrap(relerrors.ErrCodeInvalidDocument, err, "invalid diagram")
	}
	return m, nil
}

// Unmarshal decodes JSON bytes into a Document.
func Unmarshal(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, relerrors.Wrap(relerrors.ErrCodeInvalidDocument, err, "decode document")
	}
	return doc, nil
}

// insertionOrder returns the owned ids present in entities, followed by the
// remaining keys sorted.
func insertionOrder[T any](owned []string, entities map[string]T) []string {
	seen := make(map[string]bool, len(entities))
	out := make([]string, 0, len(entities))
	for _, id := range owned {
		if _, ok := entities[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	var rest []string
	for id := range entities {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
