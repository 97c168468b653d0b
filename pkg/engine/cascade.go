package engine

import (
	"context"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relink/pkg/diagram"
	"github.com/matzehuels/relink/pkg/diff"
	"github.com/matzehuels/relink/pkg/geometry"
	"github.com/matzehuels/relink/pkg/layout"
	"github.com/matzehuels/relink/pkg/observability"
	"github.com/matzehuels/relink/pkg/policy"
)

// Recalculation outcomes reported to observability hooks.
const (
	outcomeLayout    = "layout"
	outcomeWaypoint  = "waypoint"
	outcomeUnchanged = "unchanged"
	outcomeSkipped   = "skipped"
	outcomeRejected  = "rejected"
)

// admitFunc reports whether the trigger allows preserving r's manual layout,
// and by how much preserved waypoints move.
type admitFunc func(r diagram.Relationship) (bool, geometry.Point)

// cascade is the state of one trigger's recalculation.
type cascade struct {
	ctx    context.Context
	engine *Engine
	logger *log.Logger
	work   *diagram.Model
	editor Editor
	admit  admitFunc

	processed map[string]bool
	updated   map[string]bool
	actions   []Action
	passes    [][]string
}

func (e *Engine) newCascade(ctx context.Context, work *diagram.Model, ed Editor, trace string) *cascade {
	return &cascade{
		ctx:       ctx,
		engine:    e,
		logger:    e.logger.With("trace", trace),
		work:      work,
		editor:    ed,
		admit:     func(diagram.Relationship) (bool, geometry.Point) { return false, geometry.Point{} },
		processed: make(map[string]bool),
		updated:   make(map[string]bool),
	}
}

// run recalculates seeds, then repeatedly the relationships attached to those
// whose path changed, until a pass is empty. preUpdated marks relationships
// changed outside the cascade that count as updated for attachment purposes.
func (c *cascade) run(seeds []string, preUpdated map[string]bool) {
	for id := range preUpdated {
		c.updated[id] = true
	}
	pending := c.unprocessed(seeds)
	for len(pending) > 0 {
		ready, deferred := c.order(pending)
		changed := make(map[string]bool)
		for _, id := range ready {
			c.processed[id] = true
			if c.recalc(id) {
				changed[id] = true
			}
		}
		c.passes = append(c.passes, ready)
		next := append(deferred, c.work.RelationshipsAttachedTo(changed)...)
		pending = c.unprocessed(next)
	}
}

// unprocessed returns the sorted, distinct ids not yet recalculated.
func (c *cascade) unprocessed(ids []string) []string {
	var out []string
	for _, id := range ids {
		if !c.processed[id] {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// order splits a pass so that relationships anchored on another pending
// relationship wait for it. If every pending id waits on another (a cycle),
// all of them run now.
func (c *cascade) order(pending []string) (ready, deferred []string) {
	set := make(map[string]bool, len(pending))
	for _, id := range pending {
		set[id] = true
	}
	for _, id := range pending {
		r, ok := c.work.Relationship(id)
		waits := ok && ((r.Source.Element != id && set[r.Source.Element]) ||
			(r.Target.Element != id && set[r.Target.Element]))
		if waits {
			deferred = append(deferred, id)
		} else {
			ready = append(ready, id)
		}
	}
	if len(ready) == 0 {
		return pending, nil
	}
	return ready, deferred
}

// recalc updates relationship id in the working model and reports whether its
// path changed.
func (c *cascade) recalc(id string) bool {
	rel, ok := c.work.Relationship(id)
	if !ok {
		c.report(id, "", outcomeSkipped)
		c.logger.Debug("relationship vanished", "id", id)
		return false
	}
	src, srcOK := c.anchor(rel.Source)
	tgt, tgtOK := c.anchor(rel.Target)
	if !srcOK || !tgtOK {
		c.report(id, "", outcomeSkipped)
		c.logger.Debug("endpoint unresolved", "id", id, "source", rel.Source.Element, "target", rel.Target.Element)
		return false
	}

	res, variant, err := c.engine.registry.Layout(rel, src, tgt)
	if err != nil {
		c.report(id, variant.String(), outcomeRejected)
		c.logger.Warn("layout rejected", "id", id, "variant", variant, "err", err)
		return false
	}

	admitted, delta := c.admit(rel)
	preserve := c.engine.cfg.Policy.Decide(policy.Decision{
		ManuallyLayouted:  rel.IsManuallyLayouted,
		SourceID:          rel.Source.Element,
		TargetID:          rel.Target.Element,
		Selected:          c.editor.Selected,
		ReadOnly:          c.editor.ReadOnly,
		Admitted:          admitted,
		AttachedToUpdated: c.updated[rel.Source.Element] || c.updated[rel.Target.Element],
	})

	next := rel.Clone()
	next.Path, next.Bounds = res.Path, res.Bounds
	if preserve && rel.Path.Valid() {
		next.Path = rel.Path.Translate(delta.X, delta.Y)
		next.Bounds = next.Path.Bounds()
	} else {
		preserve = false
	}
	if res.Label != nil {
		mid := next.Path.Midpoint()
		next.LabelPosition = &mid
	}

	changes := diff.Entities(rel, next)
	if changes.Empty() {
		c.report(id, variant.String(), outcomeUnchanged)
		return false
	}

	geometryChanged := changes.Has("path") || changes.Has("bounds")
	outcome := outcomeUnchanged
	if geometryChanged {
		if preserve {
			outcome = outcomeWaypoint
			c.actions = append(c.actions, WaypointLayoutAction{ID: id, Path: next.Path, Bounds: next.Bounds, Delta: delta})
		} else {
			outcome = outcomeLayout
			c.actions = append(c.actions, LayoutAction{ID: id, Path: next.Path, Bounds: next.Bounds})
		}
	}
	if derived := changes.Only("labelPosition"); !derived.Empty() {
		c.actions = append(c.actions, UpdateAction{ID: id, Values: derived.Values()})
	}
	if err := c.work.SetRelationship(next); err != nil {
		c.logger.Error("apply to working copy", "id", id, "err", err)
		return false
	}
	c.report(id, variant.String(), outcome)
	c.logger.Debug("recalculated", "id", id, "variant", variant, "outcome", outcome, "changed", changes.Fields())

	if !changes.Has("path") {
		return false
	}
	c.updated[id] = true
	return true
}

// anchor resolves an endpoint to its layout anchor in the working model.
func (c *cascade) anchor(ep diagram.Endpoint) (layout.Anchor, bool) {
	resolved, ok := c.work.ResolveEndpoint(ep.Element)
	if !ok {
		return layout.Anchor{}, false
	}
	b, ok := c.work.AnchorBounds(ep.Element)
	if !ok {
		return layout.Anchor{}, false
	}
	return layout.Anchor{
		ID:             ep.Element,
		Bounds:         b,
		Direction:      ep.Direction,
		IsRelationship: resolved.IsRelationship(),
	}, true
}

func (c *cascade) report(id, variant, outcome string) {
	observability.Engine().OnRecalc(c.ctx, id, variant, outcome)
}

// fitContainer grows the diagram bounds when content escapes them.
func (c *cascade) fitContainer(r ContainerRenderer) {
	content, ok := c.work.ContentBounds()
	if !ok {
		return
	}
	cur := c.work.Container().Bounds
	fit := r.Fit(cur, content)
	if !fit.Valid() || diff.Equal(fit, cur) {
		return
	}
	c.work.SetContainerBounds(fit)
	c.actions = append(c.actions, ResizeContainerAction{
		Bounds: fit,
		Delta:  geometry.Point{X: fit.Width - cur.Width, Y: fit.Height - cur.Height},
	})
	c.logger.Debug("container resized", "bounds", fit)
}
