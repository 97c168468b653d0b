// Package engine keeps relationship geometry consistent with the elements it
// connects.
//
// The engine is driven by [Trigger] values describing mutations (create, move,
// resize, reconnect, update, delete, manual waypoint layout). For each trigger
// it determines the directly affected relationships, recomputes their paths
// through a [layout.Registry], and proposes the result as [Action] values. The
// engine never mutates shared state: it works on a private copy of the
// snapshot it is given and leaves applying the actions to the caller.
//
// # Cascade
//
// Relationships may attach to other relationships. When a pass changes the
// path of a relationship, every relationship attached to it is recalculated in
// the next pass. A relationship is recalculated at most once per trigger, so
// the cascade terminates after at most N passes for N relationships, also on
// cyclic relationship-to-relationship references.
//
// # Manual layouts
//
// Relationships flagged isManuallyLayouted keep their waypoints, shifted by
// the movement delta, when the [policy.Policy] allows it. Otherwise the path
// is recomputed from the endpoint geometry.
//
// # Failure handling
//
// Recalculation never fails from the caller's point of view. A relationship
// whose endpoint does not resolve is skipped and logged at debug level; a
// malformed layout result is rejected with a warning and the relationship
// keeps its geometry.
//
// # Dispatch
//
// [Engine.Run] consumes triggers from a channel one at a time, taking a fresh
// snapshot from a [Source] before each and handing the actions to a [Sink]
// before reading the next, so no two cascades interleave.
package engine
