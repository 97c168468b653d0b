// Package layout computes relationship geometry from resolved endpoints.
//
// # Variants
//
// Every relationship is laid out by one of a closed set of variants sharing
// the [Layouter] contract (two anchors in, path and bounds out):
//
//   - [Generic]: a straight segment between the midpoints of the facing
//     sides when neither end prefers a side, an orthogonal route with stubs
//     otherwise
//   - [SelfLoop]: source and target are the same element
//   - [ToRelationship]: at least one endpoint is another relationship
//   - [Message]: communication-style links; straight, with a derived label
//     position at the path midpoint
//
// A [Registry] classifies a relationship into its variant and returns the
// layouter for it. Layouters can also be registered for a specific
// relationship type, which takes precedence over the variant default:
//
//	reg := layout.NewRegistry(layout.DefaultOptions())
//	reg.Register("ClassInheritance", myRouter)
//	res, variant, err := reg.Layout(rel, source, target)
//
// Results are validated before they are returned: a path with fewer than two
// points, non-finite coordinates or invalid bounds yields [ErrMalformed].
package layout
