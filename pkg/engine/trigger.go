package engine

import "github.com/matzehuels/relink/pkg/geometry"

// Trigger is a mutation event that has already been applied to the snapshot
// handed to [Engine.Handle]. Delete is the exception: the deleted entities are
// still present and are removed by the resulting [DeleteAction].
type Trigger interface {
	// Kind names the trigger for logs and metrics.
	Kind() string
	// TraceID correlates log lines of one trigger. Empty ids are replaced
	// with a generated one.
	TraceID() string
}

// Trace carries an optional trace id for a trigger.
type Trace struct {
	ID string `json:"trace,omitempty"`
}

// TraceID returns t.ID.
func (t Trace) TraceID() string { return t.ID }

// Create reports newly created entities.
type Create struct {
	Trace
	IDs []string `json:"ids"`
}

// Reconnect reports relationships whose source or target changed.
type Reconnect struct {
	Trace
	IDs []string `json:"ids"`
}

// Patch is a property edit applied to one entity, keyed like its JSON form.
type Patch struct {
	ID     string         `json:"id"`
	Values map[string]any `json:"values"`
}

// Update reports property edits.
type Update struct {
	Trace
	Patches []Patch `json:"patches"`
}

// Move reports elements translated by Delta.
type Move struct {
	Trace
	IDs   []string       `json:"ids"`
	Delta geometry.Point `json:"delta"`
}

// Resize reports elements whose size changed by Delta.
type Resize struct {
	Trace
	IDs   []string       `json:"ids"`
	Delta geometry.Point `json:"delta"`
}

// Delete requests removal of entities and everything depending on them.
type Delete struct {
	Trace
	IDs []string `json:"ids"`
}

// EndpointWaypointsLayout reports that the user placed the waypoints of
// relationship ID by hand.
type EndpointWaypointsLayout struct {
	Trace
	ID string `json:"id"`
}

func (Create) Kind() string                  { return "create" }
func (Reconnect) Kind() string               { return "reconnect" }
func (Update) Kind() string                  { return "update" }
func (Move) Kind() string                    { return "move" }
func (Resize) Kind() string                  { return "resize" }
func (Delete) Kind() string                  { return "delete" }
func (EndpointWaypointsLayout) Kind() string { return "layout_waypoints" }
