package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/relink/pkg/diagram"
	relerrors "github.com/matzehuels/relink/pkg/errors"
	"github.com/matzehuels/relink/pkg/geometry"
)

// Op names an editing operation in an event script.
type Op string

const (
	OpCreate          Op = "create"
	OpMove            Op = "move"
	OpResize          Op = "resize"
	OpReconnect       Op = "reconnect"
	OpUpdate          Op = "update"
	OpDelete          Op = "delete"
	OpLayoutWaypoints Op = "layout_waypoints"
	OpRecalc          Op = "recalc"
	OpSelect          Op = "select"
	OpReadOnly        Op = "read_only"
)

// Event is one step of an editing session. Which fields are used depends
// on Op:
//
//	create            element or relationship
//	move, resize      ids, delta
//	reconnect         id, source and/or target
//	update            id, values
//	delete            ids
//	layout_waypoints  id, path
//	recalc            ids (empty = every relationship)
//	select            selected
//	read_only         readOnly
type Event struct {
	Op           Op                    `json:"op"`
	ID           string                `json:"id,omitempty"`
	IDs          []string              `json:"ids,omitempty"`
	Delta        geometry.Point        `json:"delta"`
	Source       *diagram.Endpoint     `json:"source,omitempty"`
	Target       *diagram.Endpoint     `json:"target,omitempty"`
	Values       map[string]any        `json:"values,omitempty"`
	Path         geometry.Path         `json:"path,omitempty"`
	Element      *diagram.Element      `json:"element,omitempty"`
	Relationship *diagram.Relationship `json:"relationship,omitempty"`
	Selected     []string              `json:"selected,omitempty"`
	ReadOnly     bool                  `json:"readOnly,omitempty"`
}

// Validate checks that the fields Op needs are present. It does not look at
// the diagram; unknown ids are reported when the event is applied.
func (e Event) Validate() error {
	invalid := func(format string, args ...any) error {
		return relerrors.New(relerrors.ErrCodeInvalidEvent, "%s: %s", e.Op, fmt.Sprintf(format, args...))
	}
	switch e.Op {
	case OpCreate:
		if (e.Element == nil) == (e.Relationship == nil) {
			return invalid("exactly one of element or relationship is required")
		}
	case OpMove, OpResize:
		if len(e.IDs) == 0 {
			return invalid("ids are required")
		}
		if !e.Delta.IsFinite() {
			return invalid("delta %v is not finite", e.Delta)
		}
	case OpReconnect:
		if e.ID == "" {
			return invalid("id is required")
		}
		if e.Source == nil && e.Target == nil {
			return invalid("source or target is required")
		}
	case OpUpdate:
		if e.ID == "" {
			return invalid("id is required")
		}
		if len(e.Values) == 0 {
			return invalid("values are required")
		}
	case OpDelete:
		if len(e.IDs) == 0 {
			return invalid("ids are required")
		}
	case OpLayoutWaypoints:
		if e.ID == "" {
			return invalid("id is required")
		}
		if !e.Path.Valid() {
			return invalid("path needs at least two finite points")
		}
	case OpRecalc, OpSelect, OpReadOnly:
	case "":
		return relerrors.New(relerrors.ErrCodeInvalidEvent, "op is required")
	default:
		return relerrors.New(relerrors.ErrCodeInvalidEvent, "unknown op %q", e.Op)
	}
	return nil
}

// ValidateEvents validates every event, reporting the index of the first
// invalid one.
func ValidateEvents(events []Event) error {
	for i, e := range events {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	return nil
}

// ParseEvents decodes an event script. Both a bare array and an object with
// an "events" array are accepted. Unknown fields are rejected.
func ParseEvents(data []byte) ([]Event, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var events []Event
	if data[0] == '[' {
		if err := dec.Decode(&events); err != nil {
			return nil, relerrors.Wrap(relerrors.ErrCodeInvalidEvent, err, "decode events")
		}
	} else {
		var script struct {
			Events []Event `json:"events"`
		}
		if err := dec.Decode(&script); err != nil {
			return nil, relerrors.Wrap(relerrors.ErrCodeInvalidEvent, err, "decode events")
		}
		events = script.Events
	}
	if err := ValidateEvents(events); err != nil {
		return nil, err
	}
	return events, nil
}

// ReadEvents decodes an event script from r.
func ReadEvents(r io.Reader) ([]Event, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return ParseEvents(data)
}

// ReadEventsFile decodes the event script at path.
func ReadEventsFile(path string) ([]Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, relerrors.Wrap(relerrors.ErrCodeFileNotFound, err, "events %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseEvents(data)
}
