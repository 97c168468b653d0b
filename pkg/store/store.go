// Package store holds the live diagram and is its single writer.
//
// User edits go through the mutation methods ([Store.Move], [Store.Update],
// ...). Each applies the edit and returns the [engine.Trigger] describing it;
// the caller hands the trigger to the engine together with a [Store.Snapshot]
// and feeds the resulting actions back through [Store.Apply]. Store satisfies
// both [engine.Source] and [engine.Sink], so it can drive [engine.Engine.Run]
// directly.
//
// All methods are safe for concurrent use.
package store

import (
	"context"
	"maps"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relink/pkg/diagram"
	"github.com/matzehuels/relink/pkg/engine"
	relerrors "github.com/matzehuels/relink/pkg/errors"
)

// Store guards a diagram model and the editor state.
type Store struct {
	mu     sync.Mutex
	model  *diagram.Model
	editor engine.Editor
	logger *log.Logger
}

// New creates a store owning m. A nil logger uses log.Default().
func New(m *diagram.Model, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		model:  m,
		editor: engine.Editor{Selected: map[string]bool{}},
		logger: logger,
	}
}

// Snapshot returns a copy of the model and editor state.
func (s *Store) Snapshot() (*diagram.Model, engine.Editor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.Clone(), engine.Editor{
		Selected: maps.Clone(s.editor.Selected),
		ReadOnly: s.editor.ReadOnly,
	}
}

// Model returns a copy of the current model.
func (s *Store) Model() *diagram.Model {
	m, _ := s.Snapshot()
	return m
}

// Select replaces the selection.
func (s *Store) Select(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.Selected = make(map[string]bool, len(ids))
	for _, id := range ids {
		s.editor.Selected[id] = true
	}
}

// SetReadOnly switches the editor mode.
func (s *Store) SetReadOnly(readOnly bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.ReadOnly = readOnly
}

// Apply writes engine actions into the model. Actions naming entities that
// no longer exist are skipped.
func (s *Store) Apply(ctx context.Context, actions []engine.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range actions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.apply(a); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) apply(a engine.Action) error {
	switch a := a.(type) {
	case engine.LayoutAction:
		s.setGeometry(a.ID, a)
	case engine.WaypointLayoutAction:
		s.setGeometry(a.ID, a)
	case engine.UpdateAction:
		if !s.model.Has(a.ID) {
			s.logger.Debug("update for vanished entity", "id", a.ID)
			return nil
		}
		return s.patch(a.ID, a.Values)
	case engine.DeleteAction:
		for _, id := range a.IDs {
			s.model.Remove(id)
		}
	case engine.ResizeContainerAction:
		if err := relerrors.ValidateBounds(a.Bounds); err != nil {
			return err
		}
		s.model.SetContainerBounds(a.Bounds)
	default:
		return relerrors.New(relerrors.ErrCodeUnsupported, "unknown action %T", a)
	}
	return nil
}

func (s *Store) setGeometry(id string, a engine.Action) {
	r, ok := s.model.Relationship(id)
	if !ok {
		s.logger.Debug("layout for vanished relationship", "id", id)
		return
	}
	switch a := a.(type) {
	case engine.LayoutAction:
		r.Path, r.Bounds = a.Path, a.Bounds
	case engine.WaypointLayoutAction:
		r.Path, r.Bounds = a.Path, a.Bounds
	}
	// Cannot fail: r exists.
	_ = s.model.SetRelationship(r)
}
