// Package pipeline replays editing sessions against a diagram.
//
// A replay takes a diagram document and an event script, applies each event
// through a [store.Store], lets the [engine.Engine] restore consistency after
// it, and returns the final diagram with a per-event account of what the
// engine did. The CLI's recalc command and the HTTP API both go through a
// [Runner], so they share caching and validation.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, eng, logger)
//	events, err := pipeline.ReadEventsFile("session.json")
//	if err != nil {
//	    return err
//	}
//	res, err := runner.Replay(ctx, m, pipeline.Options{Events: events})
//	if err != nil {
//	    return err
//	}
//	document.WriteFile(res.Model, "out.json")
//
// # Caching
//
// Replays are deterministic given the document, the events, the initial
// editor state and the engine configuration, so results are cached under
// [cache.Keyer.ReplayKey]. Callers that change the engine configuration must
// set [Options.ConfigHash] to keep results apart. Exports are cached under
// [cache.Keyer.ArtifactKey].
package pipeline

import (
	"time"

	"github.com/matzehuels/relink/pkg/diagram"
	"github.com/matzehuels/relink/pkg/engine"
)

// Options configures a replay.
type Options struct {
	// Events is the script to replay, in order.
	Events []Event `json:"events"`

	// Editor is the editor state before the first event.
	Editor engine.Editor `json:"editor"`

	// ConfigHash identifies the engine configuration in cache keys.
	ConfigHash string `json:"-"`

	// Refresh bypasses cached results.
	Refresh bool `json:"-"`
}

// Result is the outcome of a replay.
type Result struct {
	// Model is the diagram after the last event.
	Model *diagram.Model

	// Steps describes what the engine did for each event that produced a
	// trigger.
	Steps []Step

	Stats Stats

	// CacheHit reports whether the result came from the cache.
	CacheHit bool
}

// Step is the engine's response to one event.
type Step struct {
	Event   int             `json:"event"`
	Op      Op              `json:"op"`
	Trace   string          `json:"trace"`
	Trigger string          `json:"trigger"`
	Passes  [][]string      `json:"passes,omitempty"`
	Actions []engine.Record `json:"actions,omitempty"`
}

// Stats contains replay statistics.
type Stats struct {
	Events   int           `json:"events"`
	Triggers int           `json:"triggers"`
	Passes   int           `json:"passes"`
	Actions  int           `json:"actions"`
	Duration time.Duration `json:"duration"`
}
