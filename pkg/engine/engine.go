package engine

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/relink/pkg/diagram"
	"github.com/matzehuels/relink/pkg/geometry"
	"github.com/matzehuels/relink/pkg/layout"
	"github.com/matzehuels/relink/pkg/observability"
	"github.com/matzehuels/relink/pkg/policy"
)

// Config holds the tunables of an Engine.
type Config struct {
	Policy policy.Policy
	// ContainerMargin pads content that grows the diagram bounds.
	ContainerMargin float64
}

// DefaultConfig returns the configuration used by the editor.
func DefaultConfig() Config {
	return Config{
		Policy:          policy.Default(),
		ContainerMargin: 40,
	}
}

// Editor is the editor state the preservation policy depends on.
type Editor struct {
	Selected map[string]bool `json:"selected,omitempty"`
	ReadOnly bool            `json:"readOnly,omitempty"`
}

// Result is the outcome of handling one trigger.
type Result struct {
	Trace   string   `json:"trace"`
	Trigger string   `json:"trigger"`
	Actions []Action `json:"-"`
	// Passes lists the relationship ids recalculated in each cascade pass.
	Passes [][]string `json:"passes"`
}

// PassCount returns the number of non-empty cascade passes.
func (r Result) PassCount() int { return len(r.Passes) }

// Recalculated returns every recalculated id in processing order.
func (r Result) Recalculated() []string {
	var out []string
	for _, p := range r.Passes {
		out = append(out, p...)
	}
	return out
}

// Engine recalculates relationship geometry for triggers.
//
// An Engine holds no diagram state and may be shared; concurrent calls to
// Handle on different snapshots are safe.
type Engine struct {
	cfg       Config
	registry  *layout.Registry
	container ContainerRenderer
	logger    *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithContainerRenderer replaces the default container fitting.
func WithContainerRenderer(c ContainerRenderer) Option {
	return func(e *Engine) {
		if c != nil {
			e.container = c
		}
	}
}

// New creates an engine. A nil registry uses the built-in layouters with
// default options; a nil logger uses log.Default().
func New(cfg Config, registry *layout.Registry, logger *log.Logger, opts ...Option) *Engine {
	if registry == nil {
		registry = layout.NewRegistry(layout.DefaultOptions())
	}
	if logger == nil {
		logger = log.Default()
	}
	e := &Engine{
		cfg:       cfg,
		registry:  registry,
		container: GrowToFit{Margin: cfg.ContainerMargin},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Handle runs trigger t against snapshot to a fixpoint and returns the
// proposed actions. The snapshot is not modified.
func (e *Engine) Handle(ctx context.Context, snapshot *diagram.Model, ed Editor, t Trigger) Result {
	trace := t.TraceID()
	if trace == "" {
		trace = uuid.NewString()
	}
	start := time.Now()
	observability.Engine().OnTriggerStart(ctx, t.Kind(), trace)

	c := e.newCascade(ctx, snapshot.Clone(), ed, trace)
	c.logger.Debug("handle trigger", "kind", t.Kind())

	switch t := t.(type) {
	case Create:
		c.run(e.createSeeds(c.work, t.IDs), nil)
	case Reconnect:
		c.run(relationshipsAmong(c.work, t.IDs), nil)
	case Update:
		e.handleUpdate(c, t)
	case Move:
		moved := toSet(t.IDs)
		c.admit = func(r diagram.Relationship) (bool, geometry.Point) {
			rigid := endpointUnder(c.work, r.Source.Element, moved) && endpointUnder(c.work, r.Target.Element, moved)
			return rigid, t.Delta
		}
		c.run(attachedUnder(c.work, moved), nil)
	case Resize:
		c.run(attachedUnder(c.work, toSet(t.IDs)), nil)
	case Delete:
		e.handleDelete(c, t.IDs)
	case EndpointWaypointsLayout:
		if c.work.IsRelationship(t.ID) {
			updated := map[string]bool{t.ID: true}
			c.processed[t.ID] = true
			c.run(c.work.RelationshipsAttachedTo(updated), updated)
		}
	default:
		c.logger.Warn("unknown trigger", "type", fmt.Sprintf("%T", t))
	}

	c.fitContainer(e.container)

	res := Result{Trace: trace, Trigger: t.Kind(), Actions: c.actions, Passes: c.passes}
	observability.Engine().OnTriggerComplete(ctx, t.Kind(), trace, res.PassCount(), len(res.Actions), time.Since(start))
	c.logger.Debug("trigger handled", "kind", t.Kind(), "passes", res.PassCount(), "actions", len(res.Actions))
	return res
}

// Recalc brings relationship id up to date and cascades to relationships
// attached to it. Manual layouts are kept when the editor state allows it.
// Calling Recalc again after applying the actions yields no actions.
func (e *Engine) Recalc(ctx context.Context, snapshot *diagram.Model, ed Editor, id string) Result {
	trace := uuid.NewString()
	c := e.newCascade(ctx, snapshot.Clone(), ed, trace)
	c.admit = func(diagram.Relationship) (bool, geometry.Point) { return true, geometry.Point{} }
	c.run([]string{id}, nil)
	c.fitContainer(e.container)
	return Result{Trace: trace, Trigger: "recalc", Actions: c.actions, Passes: c.passes}
}

func (e *Engine) handleUpdate(c *cascade, t Update) {
	var (
		seeds    []string
		cosmetic = make(map[string]bool)
		moved    = make(map[string]bool)
	)
	for _, p := range t.Patches {
		switch {
		case c.work.IsRelationship(p.ID):
			seeds = append(seeds, p.ID)
			cosmetic[p.ID] = e.cfg.Policy.IsCosmetic(p.Values)
		case policy.TouchesAny(p.Values, "bounds", "owner"):
			moved[p.ID] = true
		}
	}
	if len(moved) > 0 {
		seeds = append(seeds, attachedUnder(c.work, moved)...)
	}
	c.admit = func(r diagram.Relationship) (bool, geometry.Point) {
		return cosmetic[r.ID], geometry.Point{}
	}
	c.run(seeds, nil)
}

// handleDelete grows the deleted set with descendants and attached
// relationships until nothing is added, then removes it in one action.
func (e *Engine) handleDelete(c *cascade, ids []string) {
	del := make(map[string]bool)
	for _, id := range ids {
		if c.work.Has(id) {
			del[id] = true
		}
	}
	for {
		n := len(del)
		for id := range del {
			for _, d := range c.work.Descendants(id) {
				del[d] = true
			}
		}
		for _, r := range c.work.RelationshipsAttachedTo(del) {
			del[r] = true
		}
		if len(del) == n {
			break
		}
	}
	if len(del) == 0 {
		return
	}
	out := make([]string, 0, len(del))
	for id := range del {
		out = append(out, id)
		c.work.Remove(id)
	}
	slices.Sort(out)
	c.actions = append(c.actions, DeleteAction{IDs: out})
	c.logger.Debug("delete cascade", "requested", len(ids), "removed", len(out))
}

// createSeeds returns created relationships and relationships owned by
// created elements.
func (e *Engine) createSeeds(m *diagram.Model, ids []string) []string {
	var seeds []string
	for _, id := range ids {
		if m.IsRelationship(id) {
			seeds = append(seeds, id)
			continue
		}
		seeds = append(seeds, m.RelationshipsOwnedBy(id)...)
	}
	return seeds
}

func relationshipsAmong(m *diagram.Model, ids []string) []string {
	var out []string
	for _, id := range ids {
		if m.IsRelationship(id) {
			out = append(out, id)
		}
	}
	return out
}

// endpointUnder reports whether element ref lies at or below one of ids in
// the ownership tree. Relationship endpoints never match; they are reached
// through the cascade instead.
func endpointUnder(m *diagram.Model, ref string, ids map[string]bool) bool {
	if m.IsRelationship(ref) {
		return false
	}
	for id := range ids {
		if m.OwnerChainContains(ref, id) {
			return true
		}
	}
	return false
}

// attachedUnder returns relationships with an element endpoint at or below
// one of ids.
func attachedUnder(m *diagram.Model, ids map[string]bool) []string {
	var out []string
	for _, r := range m.Relationships() {
		if endpointUnder(m, r.Source.Element, ids) || endpointUnder(m, r.Target.Element, ids) {
			out = append(out, r.ID)
		}
	}
	return out
}

func toSet(ids []string) map[string]bool {
	s := make(map[string]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}
