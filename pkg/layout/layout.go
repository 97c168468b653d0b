package layout

import (
	"errors"
	"fmt"

	"github.com/matzehuels/relink/pkg/diagram"
	"github.com/matzehuels/relink/pkg/geometry"
)

// ErrMalformed is returned when a layouter produces unusable geometry.
var ErrMalformed = errors.New("malformed layout")

// Variant is the layout family of a relationship.
type Variant int

const (
	Generic Variant = iota
	SelfLoop
	ToRelationship
	Message
)

func (v Variant) String() string {
	switch v {
	case Generic:
		return "generic"
	case SelfLoop:
		return "self-loop"
	case ToRelationship:
		return "to-relationship"
	case Message:
		return "message"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// Anchor is one resolved endpoint: its absolute bounds and preferred side.
// Relationship anchors are zero-size boxes at the referenced path midpoint.
type Anchor struct {
	ID             string
	Bounds         geometry.Bounds
	Direction      geometry.Direction
	IsRelationship bool
}

// Result is a computed relationship geometry.
type Result struct {
	Path   geometry.Path
	Bounds geometry.Bounds

	// Label is derived state for variants that position a label; nil otherwise.
	Label *geometry.Point
}

// Validate returns ErrMalformed if the result cannot be stored.
func (r Result) Validate() error {
	if !r.Path.Valid() {
		return fmt.Errorf("%w: path %v", ErrMalformed, r.Path)
	}
	if !r.Bounds.Valid() {
		return fmt.Errorf("%w: bounds %+v", ErrMalformed, r.Bounds)
	}
	if r.Label != nil && !r.Label.IsFinite() {
		return fmt.Errorf("%w: label %v", ErrMalformed, *r.Label)
	}
	return nil
}

// Layouter computes a path between two anchors.
type Layouter interface {
	Layout(source, target Anchor) (Result, error)
}

// Func adapts a plain function to the Layouter interface.
type Func func(source, target Anchor) (Result, error)

// Layout calls f.
func (f Func) Layout(source, target Anchor) (Result, error) { return f(source, target) }

// Options configures the built-in layouters.
type Options struct {
	// Margin is the length of the stub leaving a shape before the route turns.
	Margin float64
	// MessageTypes lists relationship types laid out as messages.
	MessageTypes []string
}

// DefaultOptions returns the options used by the editor.
func DefaultOptions() Options {
	return Options{
		Margin:       25,
		MessageTypes: []string{"CommunicationLink", "SequenceMessage"},
	}
}

// Registry maps relationships to layouters.
type Registry struct {
	variants     map[Variant]Layouter
	types        map[string]Layouter
	messageTypes map[string]bool
}

// NewRegistry returns a registry with the built-in layouter for every variant.
func NewRegistry(opts Options) *Registry {
	if opts.Margin < 0 {
		opts.Margin = 0
	}
	r := &Registry{
		variants: map[Variant]Layouter{
			Generic:        generic{margin: opts.Margin},
			SelfLoop:       selfLoop{margin: opts.Margin},
			ToRelationship: toRelationship{margin: opts.Margin},
			Message:        message{},
		},
		types:        make(map[string]Layouter),
		messageTypes: make(map[string]bool, len(opts.MessageTypes)),
	}
	for _, t := range opts.MessageTypes {
		r.messageTypes[t] = true
	}
	return r
}

// Register installs l for relationships of the given type, overriding the
// variant default. A nil l removes the override.
func (r *Registry) Register(relType string, l Layouter) {
	if l == nil {
		delete(r.types, relType)
		return
	}
	r.types[relType] = l
}

// RegisterVariant replaces the default layouter of a variant.
func (r *Registry) RegisterVariant(v Variant, l Layouter) {
	if l != nil {
		r.variants[v] = l
	}
}

// Classify returns the variant for rel given whether each endpoint resolved
// to a relationship.
func (r *Registry) Classify(rel diagram.Relationship, sourceIsRel, targetIsRel bool) Variant {
	switch {
	case sourceIsRel || targetIsRel:
		return ToRelationship
	case rel.IsSelfLoop():
		return SelfLoop
	case r.messageTypes[rel.Type]:
		return Message
	default:
		return Generic
	}
}

// Layout classifies rel, runs the matching layouter and validates the result.
func (r *Registry) Layout(rel diagram.Relationship, source, target Anchor) (Result, Variant, error) {
	v := r.Classify(rel, source.IsRelationship, target.IsRelationship)
	l, ok := r.types[rel.Type]
	if !ok {
		l = r.variants[v]
	}
	res, err := l.Layout(source, target)
	if err != nil {
		return Result{}, v, err
	}
	if err := res.Validate(); err != nil {
		return Result{}, v, err
	}
	return res, v, nil
}

// finish simplifies path and derives its bounds.
func finish(path geometry.Path) Result {
	path = path.Simplify()
	return Result{Path: path, Bounds: path.Bounds()}
}
