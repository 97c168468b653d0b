package engine

import (
	"context"
	"fmt"

	"github.com/matzehuels/relink/pkg/diagram"
)

// Source provides the current diagram state.
type Source interface {
	// Snapshot returns a copy of the diagram and the editor state.
	Snapshot() (*diagram.Model, Editor)
}

// Sink applies actions. It is the single writer of diagram state.
type Sink interface {
	Apply(ctx context.Context, actions []Action) error
}

// Run handles triggers until the channel is closed or ctx is cancelled. Each
// trigger is handled to completion and its actions applied before the next
// one is read. If done is non-nil it receives every Result.
func (e *Engine) Run(ctx context.Context, src Source, sink Sink, triggers <-chan Trigger, done func(Result)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t, ok := <-triggers:
			if !ok {
				return nil
			}
			snapshot, ed := src.Snapshot()
			res := e.Handle(ctx, snapshot, ed, t)
			if err := sink.Apply(ctx, res.Actions); err != nil {
				return fmt.Errorf("apply %s actions: %w", t.Kind(), err)
			}
			if done != nil {
				done(res)
			}
		}
	}
}
