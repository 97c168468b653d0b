// Package diagram provides the entity arena of a diagram: elements,
// relationships and the container that owns them, plus the read-only graph
// accessors used by relationship layout.
//
// # Overview
//
// A [Model] stores every [Element] and [Relationship] by id. Elements form an
// ownership tree through their Owner field; element bounds are relative to the
// owner, so [Model.AbsolutePosition] sums offsets along the owner chain.
// Relationship paths are stored in absolute diagram coordinates.
//
// A relationship endpoint refers either to an element or to another
// relationship. Relationship-to-relationship references form a second
// dependency graph on top of the ownership tree; it may contain cycles, which
// [Model.DependencyCycles] reports for diagnostics.
//
// # Basic Usage
//
//	m := diagram.New(geometry.Bounds{Width: 800, Height: 600})
//	m.AddElement(diagram.Element{ID: "A", Type: "Class", Bounds: geometry.Bounds{Width: 50, Height: 50}})
//	m.AddElement(diagram.Element{ID: "B", Type: "Class", Bounds: geometry.Bounds{X: 200, Width: 50, Height: 50}})
//	m.AddRelationship(diagram.Relationship{
//	    ID:     "R",
//	    Type:   "ClassBidirectional",
//	    Source: diagram.Endpoint{Element: "A", Direction: geometry.Down},
//	    Target: diagram.Endpoint{Element: "B", Direction: geometry.Up},
//	})
//
// Use [Model.Validate] after loading a diagram: ownership cycles are contract
// violations and the chain walks in this package panic on them.
//
// # Concurrency
//
// Model is not safe for concurrent use. The engine works on a [Model.Clone]
// taken at the start of each trigger; the store owns the live copy.
package diagram
