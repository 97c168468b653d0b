package layout

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/relink/pkg/diagram"
	"github.com/matzehuels/relink/pkg/geometry"
)

func box(x, y, w, h float64) geometry.Bounds {
	return geometry.Bounds{X: x, Y: y, Width: w, Height: h}
}

func TestGenericStraight(t *testing.T) {
	g := generic{margin: 25}
	res, err := g.Layout(Anchor{Bounds: box(0, 0, 50, 50)}, Anchor{Bounds: box(100, 0, 50, 50)})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	want := geometry.Path{{X: 50, Y: 25}, {X: 100, Y: 25}}
	if diff := cmp.Diff(want, res.Path); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
	if res.Bounds != box(50, 25, 50, 0) {
		t.Errorf("bounds = %+v", res.Bounds)
	}
	if res.Label != nil {
		t.Errorf("label = %v, want nil", *res.Label)
	}
}

func TestGenericStraightUsesSidePorts(t *testing.T) {
	res, err := generic{margin: 25}.Layout(Anchor{Bounds: box(0, 0, 50, 50)}, Anchor{Bounds: box(200, 100, 50, 50)})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	want := geometry.Path{{X: 50, Y: 25}, {X: 200, Y: 125}}
	if diff := cmp.Diff(want, res.Path); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestGenericOrthogonal(t *testing.T) {
	g := generic{margin: 25}
	res, err := g.Layout(
		Anchor{Bounds: box(0, 0, 50, 50), Direction: geometry.Down},
		Anchor{Bounds: box(200, 0, 50, 50), Direction: geometry.Up},
	)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	want := geometry.Path{
		{X: 25, Y: 50}, {X: 25, Y: 75}, {X: 125, Y: 75},
		{X: 125, Y: -25}, {X: 225, Y: -25}, {X: 225, Y: 0},
	}
	if diff := cmp.Diff(want, res.Path); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
	if res.Bounds != box(25, -25, 200, 100) {
		t.Errorf("bounds = %+v", res.Bounds)
	}
}

func TestGenericOneSided(t *testing.T) {
	g := generic{margin: 10}
	res, err := g.Layout(
		Anchor{Bounds: box(0, 0, 50, 50), Direction: geometry.Right},
		Anchor{Bounds: box(100, 0, 50, 50)},
	)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if got := res.Path.First(); got != (geometry.Point{X: 50, Y: 25}) {
		t.Errorf("first = %v, want (50,25)", got)
	}
	// Target side resolves to the one facing the source.
	if got := res.Path.Last(); got != (geometry.Point{X: 100, Y: 25}) {
		t.Errorf("last = %v, want (100,25)", got)
	}
	if !res.Path.Valid() {
		t.Errorf("path %v invalid", res.Path)
	}
}

func TestSelfLoop(t *testing.T) {
	l := selfLoop{margin: 25}
	b := box(0, 0, 100, 50)

	t.Run("default sides", func(t *testing.T) {
		res, err := l.Layout(Anchor{Bounds: b}, Anchor{Bounds: b})
		if err != nil {
			t.Fatalf("Layout: %v", err)
		}
		want := geometry.Path{
			{X: 100, Y: 25}, {X: 125, Y: 25}, {X: 125, Y: 75}, {X: 50, Y: 75}, {X: 50, Y: 50},
		}
		if diff := cmp.Diff(want, res.Path); diff != "" {
			t.Errorf("path mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("same side", func(t *testing.T) {
		res, err := l.Layout(
			Anchor{Bounds: b, Direction: geometry.Up},
			Anchor{Bounds: b, Direction: geometry.Up},
		)
		if err != nil {
			t.Fatalf("Layout: %v", err)
		}
		if len(res.Path) != 4 {
			t.Fatalf("len(path) = %d, want 4", len(res.Path))
		}
		if res.Path.First() == res.Path.Last() {
			t.Errorf("ports coincide at %v", res.Path.First())
		}
	})

	t.Run("opposite sides", func(t *testing.T) {
		res, err := l.Layout(
			Anchor{Bounds: b, Direction: geometry.Left},
			Anchor{Bounds: b, Direction: geometry.Right},
		)
		if err != nil {
			t.Fatalf("Layout: %v", err)
		}
		if res.Bounds.Top() >= b.Top() {
			t.Errorf("loop should pass above the shape, bounds %+v", res.Bounds)
		}
	})
}

func TestToRelationship(t *testing.T) {
	l := toRelationship{margin: 25}
	elem := Anchor{Bounds: box(0, 0, 50, 50)}
	rel := Anchor{Bounds: box(100, 100, 0, 0), IsRelationship: true}

	res, err := l.Layout(elem, rel)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	want := geometry.Path{{X: 50, Y: 50}, {X: 100, Y: 100}}
	if diff := cmp.Diff(want, res.Path); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}

	rev, err := l.Layout(rel, elem)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if rev.Path.First() != (geometry.Point{X: 100, Y: 100}) {
		t.Errorf("reversed first = %v, want (100,100)", rev.Path.First())
	}

	elem.Direction = geometry.Down
	res, err = l.Layout(elem, rel)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	want = geometry.Path{{X: 25, Y: 50}, {X: 25, Y: 100}, {X: 100, Y: 100}}
	if diff := cmp.Diff(want, res.Path); diff != "" {
		t.Errorf("directed path mismatch (-want +got):\n%s", diff)
	}
}

func TestMessageLabel(t *testing.T) {
	res, err := message{}.Layout(Anchor{Bounds: box(0, 0, 50, 50)}, Anchor{Bounds: box(100, 0, 50, 50)})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if res.Label == nil || *res.Label != (geometry.Point{X: 75, Y: 25}) {
		t.Errorf("label = %v, want (75,25)", res.Label)
	}
}

func TestClassify(t *testing.T) {
	reg := NewRegistry(DefaultOptions())
	tests := []struct {
		name         string
		rel          diagram.Relationship
		srcRel, tgtR bool
		want         Variant
	}{
		{"generic", diagram.Relationship{Type: "ClassAssociation", Source: diagram.Endpoint{Element: "a"}, Target: diagram.Endpoint{Element: "b"}}, false, false, Generic},
		{"self loop", diagram.Relationship{Source: diagram.Endpoint{Element: "a"}, Target: diagram.Endpoint{Element: "a"}}, false, false, SelfLoop},
		{"to relationship", diagram.Relationship{Source: diagram.Endpoint{Element: "a"}, Target: diagram.Endpoint{Element: "r"}}, false, true, ToRelationship},
		{"from relationship", diagram.Relationship{Source: diagram.Endpoint{Element: "r"}, Target: diagram.Endpoint{Element: "a"}}, true, false, ToRelationship},
		{"message", diagram.Relationship{Type: "CommunicationLink", Source: diagram.Endpoint{Element: "a"}, Target: diagram.Endpoint{Element: "b"}}, false, false, Message},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reg.Classify(tt.rel, tt.srcRel, tt.tgtR); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegistryOverride(t *testing.T) {
	reg := NewRegistry(DefaultOptions())
	calls := 0
	reg.Register("Custom", Func(func(s, t Anchor) (Result, error) {
		calls++
		return finish(geometry.Path{s.Bounds.Center(), t.Bounds.Center()}), nil
	}))

	rel := diagram.Relationship{Type: "Custom", Source: diagram.Endpoint{Element: "a"}, Target: diagram.Endpoint{Element: "b"}}
	res, v, err := reg.Layout(rel, Anchor{Bounds: box(0, 0, 10, 10)}, Anchor{Bounds: box(20, 0, 10, 10)})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if calls != 1 {
		t.Errorf("override called %d times, want 1", calls)
	}
	if v != Generic {
		t.Errorf("variant = %v, want generic", v)
	}
	if res.Path.First() != (geometry.Point{X: 5, Y: 5}) {
		t.Errorf("first = %v, want (5,5)", res.Path.First())
	}

	reg.Register("Custom", nil)
	if _, _, err := reg.Layout(rel, Anchor{Bounds: box(0, 0, 10, 10)}, Anchor{Bounds: box(20, 0, 10, 10)}); err != nil {
		t.Fatalf("Layout after removal: %v", err)
	}
	if calls != 1 {
		t.Errorf("override still used after removal")
	}
}

func TestRegistryRejectsMalformed(t *testing.T) {
	reg := NewRegistry(DefaultOptions())
	reg.RegisterVariant(Generic, Func(func(s, t Anchor) (Result, error) {
		return Result{Path: geometry.Path{{X: 1, Y: 1}}}, nil
	}))
	rel := diagram.Relationship{Source: diagram.Endpoint{Element: "a"}, Target: diagram.Endpoint{Element: "b"}}
	_, _, err := reg.Layout(rel, Anchor{Bounds: box(0, 0, 10, 10)}, Anchor{Bounds: box(20, 0, 10, 10)})
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
}

func TestVariantString(t *testing.T) {
	if got := SelfLoop.String(); got != "self-loop" {
		t.Errorf("String() = %q", got)
	}
	if got := Variant(9).String(); got != "variant(9)" {
		t.Errorf("String() = %q", got)
	}
}
