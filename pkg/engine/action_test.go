package engine

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/relink/pkg/geometry"
)

func TestRecordRoundTrip(t *testing.T) {
	actions := []Action{
		LayoutAction{ID: "R1", Path: geometry.Path{pt(0, 0), pt(10, 0)}, Bounds: box(0, 0, 10, 0)},
		WaypointLayoutAction{ID: "R2", Path: geometry.Path{pt(5, 5), pt(5, 15)}, Bounds: box(5, 5, 0, 10), Delta: pt(5, 5)},
		DeleteAction{IDs: []string{"E", "R3"}},
		ResizeContainerAction{Bounds: box(-40, -40, 100, 100), Delta: pt(-40, -40)},
	}
	data, err := json.Marshal(Records(actions))
	if err != nil {
		t.Fatal(err)
	}
	var got []Record
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got) != len(actions) {
		t.Fatalf("decoded %d records, want %d", len(got), len(actions))
	}
	for i, r := range got {
		if r.Kind != actions[i].Kind() {
			t.Errorf("record %d kind = %s, want %s", i, r.Kind, actions[i].Kind())
		}
		if diff := cmp.Diff(actions[i], r.Action); diff != "" {
			t.Errorf("record %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestRecordUnknownKind(t *testing.T) {
	var r Record
	if err := json.Unmarshal([]byte(`{"kind":"teleport","action":{}}`), &r); err == nil {
		t.Error("expected error for unknown kind")
	}
}
