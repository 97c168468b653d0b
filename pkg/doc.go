// Package pkg holds the libraries behind relink, a layout and consistency
// engine for diagram relationships.
//
// # Overview
//
// A diagram is a tree of rectangular elements (boxes) and a set of
// relationships (edges) drawn as waypoint paths between them. Relationships
// may attach to other relationships. When an editor moves, resizes, deletes
// or reconnects something, relink works out which relationships are affected,
// re-lays them out, follows the chain of relationships attached to those, and
// grows containers that no longer fit their content.
//
// # Architecture
//
//	event script / HTTP request
//	         ↓
//	    [store] (apply the mutation, emit a trigger)
//	         ↓
//	    [engine] (cascade passes over a snapshot, propose actions)
//	         ↓
//	    [layout] (route each affected relationship)
//	         ↓
//	    [store] (apply the actions)
//	         ↓
//	    [document] JSON / [render/nodelink] DOT and SVG
//
// [pipeline] strings these together for a whole event script and caches the
// outcome through [cache]. The CLI and [server] both go through a
// pipeline.Runner.
//
// # Quick Start
//
//	m, _ := document.ReadFile("diagram.json")
//	runner := pipeline.NewRunner(nil, nil, nil, nil)
//	res, _ := runner.Replay(ctx, m, pipeline.Options{
//	    Events: []pipeline.Event{
//	        {Op: pipeline.OpMove, IDs: []string{"A"}, Delta: geometry.Point{X: 10}},
//	    },
//	})
//	_ = document.WriteFile(res.Model, "diagram.json")
//
// # Main Packages
//
// ## Model
//
// [geometry] - Points, bounds, directions and waypoint paths.
//
// [diagram] - The element and relationship model with ownership, lookup
// indexes and validation.
//
// [document] - The JSON document format and conversion to and from models.
//
// ## Engine
//
// [layout] - Layouters keyed by relationship type, and the registry that
// picks one.
//
// [policy] - When a manually laid out relationship keeps its waypoints.
//
// [engine] - Triggers, cascade passes, container growth and actions.
//
// [store] - The mutable diagram an editor works on; applies mutations and
// actions.
//
// [diff] - Field-level comparison of elements and relationships.
//
// ## Infrastructure
//
// [pipeline] - Event scripts, replays and exports with caching.
//
// [cache] - File, Redis and null caches with key derivation.
//
// [storage] - Diagram persistence in memory, on disk or in MongoDB.
//
// [server] - HTTP API over pipeline and storage.
//
// [config] - TOML configuration and XDG paths.
//
// [observability] - Hooks for metrics and tracing.
//
// [errors] - Coded errors and input validation.
//
// [retry] - Retrying transient backend failures.
//
// [geometry]: https://pkg.go.dev/github.com/matzehuels/relink/pkg/geometry
// [diagram]: https://pkg.go.dev/github.com/matzehuels/relink/pkg/diagram
// [document]: https://pkg.go.dev/github.com/matzehuels/relink/pkg/document
// [layout]: https://pkg.go.dev/github.com/matzehuels/relink/pkg/layout
// [policy]: https://pkg.go.dev/github.com/matzehuels/relink/pkg/policy
// [engine]: https://pkg.go.dev/github.com/matzehuels/relink/pkg/engine
// [store]: https://pkg.go.dev/github.com/matzehuels/relink/pkg/store
// [diff]: https://pkg.go.dev/github.com/matzehuels/relink/pkg/diff
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/relink/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/relink/pkg/cache
// [storage]: https://pkg.go.dev/github.com/matzehuels/relink/pkg/storage
// [server]: https://pkg.go.dev/github.com/matzehuels/relink/pkg/server
// [config]: https://pkg.go.dev/github.com/matzehuels/relink/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/relink/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/relink/pkg/errors
// [retry]: https://pkg.go.dev/github.com/matzehuels/relink/pkg/retry
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/relink/pkg/render/nodelink
package pkg
