package store

import (
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/relink/pkg/diagram"
	"github.com/matzehuels/relink/pkg/engine"
	relerrors "github.com/matzehuels/relink/pkg/errors"
	"github.com/matzehuels/relink/pkg/geometry"
)

func trace() engine.Trace { return engine.Trace{ID: uuid.NewString()} }

func unknown(id string) error {
	return relerrors.Wrap(relerrors.ErrCodeUnknownEntity, diagram.ErrUnknownEntity, "no entity %q", id)
}

// CreateElement adds e to the diagram.
func (s *Store) CreateElement(e diagram.Element) (engine.Trigger, error) {
	if err := relerrors.ValidateID(e.ID); err != nil {
		return nil, err
	}
	if err := relerrors.ValidateBounds(e.Bounds); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.Owner != "" {
		if _, ok := s.model.Element(e.Owner); !ok {
			return nil, relerrors.Wrap(relerrors.ErrCodeUnknownEntity, diagram.ErrUnknownOwner, "owner %q of %q", e.Owner, e.ID)
		}
	}
	if err := s.model.AddElement(e); err != nil {
		return nil, relerrors.Wrap(relerrors.ErrCodeConflict, err, "create element %q", e.ID)
	}
	return engine.Create{Trace: trace(), IDs: []string{e.ID}}, nil
}

// CreateRelationship adds r to the diagram. Its geometry is left to the
// engine; endpoints may reference entities that do not exist yet.
func (s *Store) CreateRelationship(r diagram.Relationship) (engine.Trigger, error) {
	if err := relerrors.ValidateID(r.ID); err != nil {
		return nil, err
	}
	if err := validateEndpoints(r); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.model.AddRelationship(r); err != nil {
		return nil, relerrors.Wrap(relerrors.ErrCodeConflict, err, "create relationship %q", r.ID)
	}
	return engine.Create{Trace: trace(), IDs: []string{r.ID}}, nil
}

// Move translates elements by delta. Elements whose owner is moved along
// with them keep their relative position.
func (s *Store) Move(ids []string, delta geometry.Point) (engine.Trigger, error) {
	if !delta.IsFinite() {
		return nil, relerrors.New(relerrors.ErrCodeInvalidGeometry, "move delta %v is not finite", delta)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	roots, err := s.topmost(ids)
	if err != nil {
		return nil, err
	}
	for _, id := range roots {
		e, _ := s.model.Element(id)
		e.Bounds = e.Bounds.Translate(delta.X, delta.Y)
		if err := s.model.SetElement(e); err != nil {
			return nil, relerrors.Wrap(relerrors.ErrCodeInvalidGeometry, err, "move %q", id)
		}
	}
	return engine.Move{Trace: trace(), IDs: slices.Clone(ids), Delta: delta}, nil
}

// Resize grows elements by delta. Sizes are clamped at zero.
func (s *Store) Resize(ids []string, delta geometry.Point) (engine.Trigger, error) {
	if !delta.IsFinite() {
		return nil, relerrors.New(relerrors.ErrCodeInvalidGeometry, "resize delta %v is not finite", delta)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		e, ok := s.model.Element(id)
		if !ok {
			return nil, unknown(id)
		}
		e.Bounds = e.Bounds.Resize(delta.X, delta.Y)
		if err := s.model.SetElement(e); err != nil {
			return nil, relerrors.Wrap(relerrors.ErrCodeInvalidGeometry, err, "resize %q", id)
		}
	}
	return engine.Resize{Trace: trace(), IDs: slices.Clone(ids), Delta: delta}, nil
}

// Reconnect replaces the source and/or target of relationship id. Nil
// endpoints are left unchanged.
func (s *Store) Reconnect(id string, source, target *diagram.Endpoint) (engine.Trigger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.model.Relationship(id)
	if !ok {
		return nil, unknown(id)
	}
	if source != nil {
		r.Source = *source
	}
	if target != nil {
		r.Target = *target
	}
	if err := validateEndpoints(r); err != nil {
		return nil, err
	}
	if err := s.model.SetRelationship(r); err != nil {
		return nil, unknown(id)
	}
	return engine.Reconnect{Trace: trace(), IDs: []string{id}}, nil
}

// Update patches the properties of entity id. Values are keyed like the
// entity's JSON form; nested objects are merged.
func (s *Store) Update(id string, values map[string]any) (engine.Trigger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.model.Has(id) {
		return nil, unknown(id)
	}
	if err := s.patch(id, values); err != nil {
		return nil, err
	}
	return engine.Update{Trace: trace(), Patches: []engine.Patch{{ID: id, Values: values}}}, nil
}

// Delete checks that ids exist and returns the trigger removing them. The
// entities stay until the engine's delete action is applied, so the engine
// can still see what depends on them.
func (s *Store) Delete(ids []string) (engine.Trigger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if !s.model.Has(id) {
			return nil, unknown(id)
		}
	}
	return engine.Delete{Trace: trace(), IDs: slices.Clone(ids)}, nil
}

// LayoutWaypoints stores a path placed by the user and marks relationship id
// as manually laid out.
func (s *Store) LayoutWaypoints(id string, path geometry.Path) (engine.Trigger, error) {
	if !path.Valid() {
		return nil, relerrors.New(relerrors.ErrCodeInvalidGeometry, "waypoints for %q need at least two finite points", id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.model.Relationship(id)
	if !ok {
		return nil, unknown(id)
	}
	r.Path = path.Clone()
	r.Bounds = path.Bounds()
	r.IsManuallyLayouted = true
	if err := s.model.SetRelationship(r); err != nil {
		return nil, unknown(id)
	}
	return engine.EndpointWaypointsLayout{Trace: trace(), ID: id}, nil
}

// topmost returns the ids from ids that have no ancestor in ids.
func (s *Store) topmost(ids []string) ([]string, error) {
	var out []string
	for _, id := range ids {
		e, ok := s.model.Element(id)
		if !ok {
			return nil, unknown(id)
		}
		nested := false
		for _, other := range ids {
			if other != id && e.Owner != "" && s.model.OwnerChainContains(e.Owner, other) {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, id)
		}
	}
	return out, nil
}

func validateEndpoints(r diagram.Relationship) error {
	for _, ep := range []diagram.Endpoint{r.Source, r.Target} {
		if ep.Element == "" {
			return relerrors.New(relerrors.ErrCodeInvalidInput, "relationship %q has an empty endpoint", r.ID)
		}
		if err := relerrors.ValidateDirection(ep.Direction); err != nil {
			return err
		}
	}
	return nil
}
