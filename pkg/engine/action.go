package engine

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/relink/pkg/geometry"
)

// ActionKind names an action type.
type ActionKind string

const (
	KindLayout          ActionKind = "layout"
	KindWaypointLayout  ActionKind = "waypoint_layout"
	KindUpdate          ActionKind = "update"
	KindDelete          ActionKind = "delete"
	KindResizeContainer ActionKind = "resize_container"
)

// Action is a state change proposed by the engine. The engine never applies
// actions itself; the caller's single writer does.
type Action interface {
	Kind() ActionKind
}

// LayoutAction replaces a relationship's geometry with a freshly computed one.
type LayoutAction struct {
	ID     string          `json:"id"`
	Path   geometry.Path   `json:"path"`
	Bounds geometry.Bounds `json:"bounds"`
}

// WaypointLayoutAction replaces a relationship's geometry with its previous
// waypoints shifted by Delta.
type WaypointLayoutAction struct {
	ID     string          `json:"id"`
	Path   geometry.Path   `json:"path"`
	Bounds geometry.Bounds `json:"bounds"`
	Delta  geometry.Point  `json:"delta"`
}

// UpdateAction patches derived properties of an entity.
type UpdateAction struct {
	ID     string         `json:"id"`
	Values map[string]any `json:"values"`
}

// DeleteAction removes entities from the arena and the container in one step.
type DeleteAction struct {
	IDs []string `json:"ids"`
}

// ResizeContainerAction sets new diagram bounds.
type ResizeContainerAction struct {
	Bounds geometry.Bounds `json:"bounds"`
	Delta  geometry.Point  `json:"delta"`
}

func (LayoutAction) Kind() ActionKind          { return KindLayout }
func (WaypointLayoutAction) Kind() ActionKind  { return KindWaypointLayout }
func (UpdateAction) Kind() ActionKind          { return KindUpdate }
func (DeleteAction) Kind() ActionKind          { return KindDelete }
func (ResizeContainerAction) Kind() ActionKind { return KindResizeContainer }

// Record is the serialized form of an action.
type Record struct {
	Kind   ActionKind `json:"kind"`
	Action Action     `json:"action"`
}

// Records wraps actions for encoding.
func Records(actions []Action) []Record {
	out := make([]Record, len(actions))
	for i, a := range actions {
		out[i] = Record{Kind: a.Kind(), Action: a}
	}
	return out
}

// UnmarshalJSON decodes the action according to its kind.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		Kind   ActionKind      `json:"kind"`
		Action json.RawMessage `json:"action"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var (
		a   Action
		err error
	)
	switch raw.Kind {
	case KindLayout:
		a, err = decodeAction[LayoutAction](raw.Action)
	case KindWaypointLayout:
		a, err = decodeAction[WaypointLayoutAction](raw.Action)
	case KindUpdate:
		a, err = decodeAction[UpdateAction](raw.Action)
	case KindDelete:
		a, err = decodeAction[DeleteAction](raw.Action)
	case KindResizeContainer:
		a, err = decodeAction[ResizeContainerAction](raw.Action)
	default:
		return fmt.Errorf("unknown action kind %q", raw.Kind)
	}
	if err != nil {
		return fmt.Errorf("decode %s action: %w", raw.Kind, err)
	}
	r.Kind, r.Action = raw.Kind, a
	return nil
}

func decodeAction[T Action](data json.RawMessage) (Action, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
