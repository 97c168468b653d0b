package policy

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPreserve(t *testing.T) {
	tests := []struct {
		name     string
		selected map[string]bool
		readOnly bool
		want     bool
	}{
		{"nothing selected", nil, false, false},
		{"source only", map[string]bool{"a": true}, false, false},
		{"both selected", map[string]bool{"a": true, "b": true}, false, true},
		{"read only", nil, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Preserve("a", "b", tt.selected, tt.readOnly); got != tt.want {
				t.Errorf("Preserve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecide(t *testing.T) {
	p := Default()
	base := Decision{
		ManuallyLayouted: true,
		SourceID:         "a",
		TargetID:         "b",
		Selected:         map[string]bool{"a": true, "b": true},
		Admitted:         true,
	}
	if !p.Decide(base) {
		t.Fatal("Decide(base) = false, want true")
	}

	notManual := base
	notManual.ManuallyLayouted = false
	notAdmitted := base
	notAdmitted.Admitted = false
	attached := base
	attached.AttachedToUpdated = true
	attached.ReadOnly = true

	for name, d := range map[string]Decision{
		"not manual":          notManual,
		"not admitted":        notAdmitted,
		"attached to updated": attached,
	} {
		if p.Decide(d) {
			t.Errorf("Decide(%s) = true, want false", name)
		}
	}
}

func TestIsCosmetic(t *testing.T) {
	p := Default()
	tests := []struct {
		name  string
		patch map[string]any
		want  bool
	}{
		{"empty", map[string]any{}, true},
		{"name", map[string]any{"name": "x"}, true},
		{"nested role", map[string]any{"source": map[string]any{"role": "owner"}}, true},
		{"two fields", map[string]any{"name": "x", "isManuallyLayouted": true}, true},
		{"too many", map[string]any{"name": "x", "source": map[string]any{"role": "r", "multiplicity": "1"}}, false},
		{"bounds", map[string]any{"bounds": map[string]any{"x": 1.0}}, false},
		{"direction", map[string]any{"source": map[string]any{"direction": "Up"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.IsCosmetic(tt.patch); got != tt.want {
				t.Errorf("IsCosmetic(%v) = %v, want %v", tt.patch, got, tt.want)
			}
		})
	}
}

func TestFlatten(t *testing.T) {
	got := Flatten(map[string]any{
		"name":   "x",
		"target": map[string]any{"role": "r", "direction": "Up"},
		"empty":  map[string]any{},
	})
	want := []string{"empty", "name", "target.direction", "target.role"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Flatten mismatch (-want +got):\n%s", diff)
	}
}

func TestTouchesAny(t *testing.T) {
	patch := map[string]any{"bounds": map[string]any{"x": 10.0}}
	if !TouchesAny(patch, "bounds", "owner") {
		t.Error("TouchesAny(bounds) = false, want true")
	}
	if TouchesAny(map[string]any{"name": "x"}, "bounds", "owner") {
		t.Error("TouchesAny(name) = true, want false")
	}
	if TouchesAny(map[string]any{"boundsish": 1}, "bounds") {
		t.Error("TouchesAny matched a key prefix without a dot")
	}
}
