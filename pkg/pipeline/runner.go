package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relink/pkg/cache"
	"github.com/matzehuels/relink/pkg/diagram"
	"github.com/matzehuels/relink/pkg/document"
	"github.com/matzehuels/relink/pkg/engine"
	relerrors "github.com/matzehuels/relink/pkg/errors"
	"github.com/matzehuels/relink/pkg/observability"
	"github.com/matzehuels/relink/pkg/store"
)

// Runner executes replays and exports with caching.
// Both CLI and API use it so caching and validation live in one place.
//
// The Runner is stateless apart from its collaborators; it is safe to share
// between goroutines.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Engine *engine.Engine
	Logger *log.Logger
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If eng is nil, an engine with the default configuration is used.
func NewRunner(c cache.Cache, keyer cache.Keyer, eng *engine.Engine, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	if eng == nil {
		eng = engine.New(engine.DefaultConfig(), nil, logger)
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Engine: eng,
		Logger: logger,
	}
}

// cachedReplay is the cache representation of a Result.
type cachedReplay struct {
	Document document.Document `json:"document"`
	Steps    []Step            `json:"steps"`
	Stats    Stats             `json:"stats"`
}

// Replay applies opts.Events to a copy of m. The first event that cannot be
// applied aborts the replay; its error names the event index.
func (r *Runner) Replay(ctx context.Context, m *diagram.Model, opts Options) (res *Result, err error) {
	if err := ValidateEvents(opts.Events); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Pipeline().OnReplayStart(ctx, len(opts.Events))
	defer func() {
		actions := 0
		if res != nil {
			actions = res.Stats.Actions
		}
		observability.Pipeline().OnReplayComplete(ctx, len(opts.Events), actions, time.Since(start), err)
	}()

	key, err := r.replayKey(m, opts)
	if err != nil {
		return nil, err
	}
	if !opts.Refresh {
		if cached, ok := r.cachedReplay(ctx, key); ok {
			return cached, nil
		}
	}

	st := store.New(m.Clone(), r.Logger)
	st.Select(selectedIDs(opts.Editor)...)
	st.SetReadOnly(opts.Editor.ReadOnly)

	res = &Result{Stats: Stats{Events: len(opts.Events)}}
	for i, ev := range opts.Events {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		steps, err := r.step(ctx, st, ev)
		if err != nil {
			return nil, fmt.Errorf("event %d (%s): %w", i, ev.Op, err)
		}
		for _, s := range steps {
			s.Event = i
			res.Steps = append(res.Steps, s)
		}
	}
	res.Model = st.Model()
	res.Stats.Duration = time.Since(start)
	for _, s := range res.Steps {
		res.Stats.Triggers++
		res.Stats.Passes += len(s.Passes)
		res.Stats.Actions += len(s.Actions)
	}

	r.Logger.Debug("replayed events",
		"events", res.Stats.Events,
		"triggers", res.Stats.Triggers,
		"actions", res.Stats.Actions,
		"duration", res.Stats.Duration)

	r.storeReplay(ctx, key, res)
	return res, nil
}

// step applies one event and runs the engine on the resulting trigger.
func (r *Runner) step(ctx context.Context, st *store.Store, ev Event) ([]Step, error) {
	if ev.Op == OpRecalc {
		return r.recalc(ctx, st, ev.IDs)
	}

	trigger, err := r.mutate(st, ev)
	if err != nil || trigger == nil {
		return nil, err
	}
	snapshot, ed := st.Snapshot()
	out := r.Engine.Handle(ctx, snapshot, ed, trigger)
	if err := st.Apply(ctx, out.Actions); err != nil {
		return nil, fmt.Errorf("apply actions: %w", err)
	}
	return []Step{newStep(ev.Op, out)}, nil
}

// recalc brings the given relationships, or all of them, up to date one by
// one, applying each result before the next.
func (r *Runner) recalc(ctx context.Context, st *store.Store, ids []string) ([]Step, error) {
	if len(ids) == 0 {
		ids = st.Model().RelationshipIDs()
	}
	var steps []Step
	for _, id := range ids {
		snapshot, ed := st.Snapshot()
		if !snapshot.IsRelationship(id) {
			return nil, fmt.Errorf("recalc: %w", unknownRelationship(id))
		}
		out := r.Engine.Recalc(ctx, snapshot, ed, id)
		if err := st.Apply(ctx, out.Actions); err != nil {
			return nil, fmt.Errorf("apply actions: %w", err)
		}
		steps = append(steps, newStep(OpRecalc, out))
	}
	return steps, nil
}

// mutate applies ev to the store. Editor-state events return a nil trigger.
func (r *Runner) mutate(st *store.Store, ev Event) (engine.Trigger, error) {
	switch ev.Op {
	case OpCreate:
		if ev.Element != nil {
			return st.CreateElement(*ev.Element)
		}
		return st.CreateRelationship(*ev.Relationship)
	case OpMove:
		return st.Move(ev.IDs, ev.Delta)
	case OpResize:
		return st.Resize(ev.IDs, ev.Delta)
	case OpReconnect:
		return st.Reconnect(ev.ID, ev.Source, ev.Target)
	case OpUpdate:
		return st.Update(ev.ID, ev.Values)
	case OpDelete:
		return st.Delete(ev.IDs)
	case OpLayoutWaypoints:
		return st.LayoutWaypoints(ev.ID, ev.Path)
	case OpSelect:
		st.Select(ev.Selected...)
	case OpReadOnly:
		st.SetReadOnly(ev.ReadOnly)
	}
	return nil, nil
}

func unknownRelationship(id string) error {
	return relerrors.Wrap(relerrors.ErrCodeUnknownEntity, diagram.ErrUnknownEntity, "no relationship %q", id)
}

func newStep(op Op, res engine.Result) Step {
	return Step{
		Op:      op,
		Trace:   res.Trace,
		Trigger: res.Trigger,
		Passes:  res.Passes,
		Actions: engine.Records(res.Actions),
	}
}

// selectedIDs returns the ids marked true in ed.Selected, sorted.
func selectedIDs(ed engine.Editor) []string {
	selected := maps.Clone(ed.Selected)
	maps.DeleteFunc(selected, func(_ string, on bool) bool { return !on })
	return slices.Sorted(maps.Keys(selected))
}

func (r *Runner) replayKey(m *diagram.Model, opts Options) (string, error) {
	doc, err := document.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("hash document: %w", err)
	}
	script, err := json.Marshal(opts)
	if err != nil {
		return "", fmt.Errorf("hash events: %w", err)
	}
	return r.Keyer.ReplayKey(cache.Hash(doc), cache.ReplayKeyOpts{
		EventsHash: cache.Hash(script),
		ConfigHash: opts.ConfigHash,
	}), nil
}

func (r *Runner) cachedReplay(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "replay")
		return nil, false
	}
	var c cachedReplay
	if err := json.Unmarshal(data, &c); err != nil {
		observability.Cache().OnCacheMiss(ctx, "replay")
		return nil, false
	}
	m, err := document.ToModel(c.Document)
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, "replay")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "replay")
	r.Logger.Debug("replay cache hit", "key", key)
	return &Result{Model: m, Steps: c.Steps, Stats: c.Stats, CacheHit: true}, true
}

func (r *Runner) storeReplay(ctx context.Context, key string, res *Result) {
	data, err := json.Marshal(cachedReplay{
		Document: document.FromModel(res.Model),
		Steps:    res.Steps,
		Stats:    res.Stats,
	})
	if err != nil {
		r.Logger.Warn("encode replay for cache", "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.ReplayTTL); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "replay", len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
