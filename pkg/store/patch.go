package store

import (
	"encoding/json"

	"github.com/matzehuels/relink/pkg/diagram"
	relerrors "github.com/matzehuels/relink/pkg/errors"
)

// patch overlays values onto entity id. Callers hold the lock.
func (s *Store) patch(id string, values map[string]any) error {
	if _, ok := values["id"]; ok {
		return relerrors.New(relerrors.ErrCodeInvalidInput, "id of %q cannot be changed", id)
	}
	if e, ok := s.model.Element(id); ok {
		var next diagram.Element
		if err := overlay(e, values, &next); err != nil {
			return relerrors.Wrap(relerrors.ErrCodeInvalidInput, err, "patch %q", id)
		}
		if err := relerrors.ValidateBounds(next.Bounds); err != nil {
			return err
		}
		if next.Owner != e.Owner && next.Owner != "" {
			if _, ok := s.model.Element(next.Owner); !ok {
				return relerrors.Wrap(relerrors.ErrCodeUnknownEntity, diagram.ErrUnknownOwner, "owner %q", next.Owner)
			}
			if s.model.OwnerChainContains(next.Owner, id) {
				return relerrors.Wrap(relerrors.ErrCodeInvalidInput, diagram.ErrOwnershipCycle, "owner %q of %q", next.Owner, id)
			}
		}
		return s.model.SetElement(next)
	}

	r, ok := s.model.Relationship(id)
	if !ok {
		return unknown(id)
	}
	var next diagram.Relationship
	if err := overlay(r, values, &next); err != nil {
		return relerrors.Wrap(relerrors.ErrCodeInvalidInput, err, "patch %q", id)
	}
	if err := validateEndpoints(next); err != nil {
		return err
	}
	if len(next.Path) > 0 && !next.Path.Valid() {
		return relerrors.New(relerrors.ErrCodeInvalidGeometry, "path of %q is malformed", id)
	}
	return s.model.SetRelationship(next)
}

// overlay merges values into the JSON form of src and decodes the result
// into dst.
func overlay(src any, values map[string]any, dst any) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return err
	}
	var base map[string]any
	if err := json.Unmarshal(raw, &base); err != nil {
		return err
	}
	if values, err = normalize(values); err != nil {
		return err
	}
	merge(base, values)
	if raw, err = json.Marshal(base); err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

// normalize round-trips values through JSON so typed values (points, paths)
// become the generic maps merge understands.
func normalize(values map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	err = json.Unmarshal(raw, &out)
	return out, err
}

func merge(dst, src map[string]any) {
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if d, ok := dst[k].(map[string]any); ok {
				merge(d, sub)
				continue
			}
		}
		dst[k] = v
	}
}
