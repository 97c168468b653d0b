package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/relink/pkg/buildinfo"
	"github.com/matzehuels/relink/pkg/cache"
	"github.com/matzehuels/relink/pkg/document"
	relerrors "github.com/matzehuels/relink/pkg/errors"
	"github.com/matzehuels/relink/pkg/geometry"
	"github.com/matzehuels/relink/pkg/pipeline"
)

const twoBoxes = `{
  "bounds": {"x": -100, "y": -100, "width": 1000, "height": 1000},
  "ownedElements": ["A", "B"],
  "ownedRelationships": ["R"],
  "elements": {
    "A": {"id": "A", "type": "Class", "bounds": {"x": 0, "y": 0, "width": 50, "height": 50}},
    "B": {"id": "B", "type": "Class", "bounds": {"x": 200, "y": 0, "width": 50, "height": 50}}
  },
  "relationships": {
    "R": {
      "id": "R", "type": "ClassAssociation",
      "source": {"element": "A", "direction": "Down"},
      "target": {"element": "B", "direction": "Up"},
      "path": [{"x": 25, "y": 50}, {"x": 25, "y": 125}, {"x": 225, "y": 125}, {"x": 225, "y": 0}],
      "bounds": {"x": 25, "y": 0, "width": 200, "height": 125},
      "isManuallyLayouted": false
    }
  }
}`

// workspace isolates XDG directories and writes the fixture diagram.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	writeFile(t, filepath.Join(dir, "diagram.json"), twoBoxes)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	var got []string
	for _, cmd := range root.Commands() {
		got = append(got, cmd.Name())
	}
	want := []string{"cache", "completion", "inspect", "recalc", "serve", "validate", "visualize"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("subcommands mismatch (-want +got):\n%s", diff)
	}
	if root.Version != buildinfo.Version {
		t.Errorf("Version = %q, want %q", root.Version, buildinfo.Version)
	}
}

func TestRecalcWritesDiagram(t *testing.T) {
	dir := workspace(t)
	events := filepath.Join(dir, "events.json")
	writeFile(t, events, `[{"op": "move", "ids": ["A"], "delta": {"x": 10, "y": 0}}]`)
	out := filepath.Join(dir, "out.json")
	steps := filepath.Join(dir, "steps.json")

	if _, err := execute(t, "recalc", filepath.Join(dir, "diagram.json"), "-e", events, "-o", out, "--steps", steps); err != nil {
		t.Fatalf("recalc: %v", err)
	}

	m, err := document.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	r, _ := m.Relationship("R")
	want := geometry.Path{{X: 35, Y: 50}, {X: 35, Y: 75}, {X: 130, Y: 75}, {X: 130, Y: -25}, {X: 225, Y: -25}, {X: 225, Y: 0}}
	if diff := cmp.Diff(want, r.Path); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(steps); err != nil {
		t.Errorf("steps file: %v", err)
	}
}

func TestRecalcDefaultOutput(t *testing.T) {
	dir := workspace(t)
	if _, err := execute(t, "recalc", filepath.Join(dir, "diagram.json"), "--no-cache"); err != nil {
		t.Fatalf("recalc: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "diagram.relinked.json")); err != nil {
		t.Errorf("default output missing: %v", err)
	}
}

func TestRecalcErrors(t *testing.T) {
	dir := workspace(t)
	diagram := filepath.Join(dir, "diagram.json")
	unknown := filepath.Join(dir, "unknown.json")
	writeFile(t, unknown, `[{"op": "delete", "ids": ["Z"]}]`)
	invalid := filepath.Join(dir, "invalid.json")
	writeFile(t, invalid, `[{"op": "teleport"}]`)

	tests := []struct {
		name string
		args []string
		code relerrors.Code
	}{
		{"missing diagram", []string{"recalc", filepath.Join(dir, "nope.json")}, relerrors.ErrCodeFileNotFound},
		{"missing events", []string{"recalc", diagram, "-e", filepath.Join(dir, "nope.json")}, relerrors.ErrCodeFileNotFound},
		{"invalid event", []string{"recalc", diagram, "-e", invalid}, relerrors.ErrCodeInvalidEvent},
		{"unknown entity", []string{"validate", diagram, "-e", unknown}, relerrors.ErrCodeUnknownEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if !relerrors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	dir := workspace(t)
	if _, err := execute(t, "validate", filepath.Join(dir, "diagram.json")); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestVisualizeDOT(t *testing.T) {
	dir := workspace(t)
	out := filepath.Join(dir, "diagram.dot")
	if _, err := execute(t, "visualize", filepath.Join(dir, "diagram.json"), "-f", "dot", "-o", out, "--no-cache"); err != nil {
		t.Fatalf("visualize: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph") {
		t.Errorf("output does not look like DOT: %q", data)
	}
}

func TestVisualizeRejectsFormat(t *testing.T) {
	dir := workspace(t)
	_, err := execute(t, "visualize", filepath.Join(dir, "diagram.json"), "-f", "png")
	if !relerrors.Is(err, relerrors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestCachePathAndClear(t *testing.T) {
	dir := workspace(t)
	cacheDir := filepath.Join(dir, "replays")
	cfgPath := filepath.Join(dir, "relink.toml")
	writeFile(t, cfgPath, "[cache]\ndir = \""+filepath.ToSlash(cacheDir)+"\"\n")

	out, err := execute(t, "--config", cfgPath, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(out) != filepath.ToSlash(cacheDir) {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), cacheDir)
	}

	fc, err := cache.NewFileCache(cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := fc.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "--config", cfgPath, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if _, hit, _ := fc.Get(ctx, "k"); hit {
		t.Error("entry survived cache clear")
	}
}

func TestEditorFlags(t *testing.T) {
	ed := editorFlags{selected: []string{"A", "B"}, readOnly: true}.editor()
	if !ed.ReadOnly || !ed.Selected["A"] || !ed.Selected["B"] || len(ed.Selected) != 2 {
		t.Errorf("editor() = %+v", ed)
	}
	if got := (editorFlags{}).editor(); got.Selected != nil {
		t.Errorf("editor() without selection = %+v, want nil map", got)
	}
}

func TestStepListModel(t *testing.T) {
	steps := []pipeline.Step{
		{Event: 0, Op: pipeline.OpMove, Trace: "t1", Trigger: "move", Passes: [][]string{{"R"}}},
		{Event: 1, Op: pipeline.OpUpdate, Trace: "t2", Trigger: "update"},
	}
	var m tea.Model = newStepListModel(steps, pipeline.Stats{Events: 2, Triggers: 2})

	if view := m.View(); !strings.Contains(view, "move") || !strings.Contains(view, "trace t1") {
		t.Errorf("initial view missing first step:\n%s", view)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := m.(stepListModel).cursor; got != 1 {
		t.Errorf("cursor after down = %d, want 1", got)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := m.(stepListModel).cursor; got != 1 {
		t.Errorf("cursor past the end = %d, want 1", got)
	}
	if view := m.View(); !strings.Contains(view, "trace t2") || !strings.Contains(view, "no actions") {
		t.Errorf("view missing selected step detail:\n%s", view)
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("q did not quit")
	}
}

func TestPlural(t *testing.T) {
	tests := []struct {
		n    int
		noun string
		want string
	}{
		{1, "event", "1 event"},
		{0, "event", "0 events"},
		{3, "pass", "3 passes"},
	}
	for _, tt := range tests {
		if got := plural(tt.n, tt.noun); got != tt.want {
			t.Errorf("plural(%d, %q) = %q, want %q", tt.n, tt.noun, got, tt.want)
		}
	}
}

func TestConnectRetriesBackendErrors(t *testing.T) {
	calls := 0
	err := connect(context.Background(), newLogger(io.Discard, LogInfo), "test", func() error {
		calls++
		if calls < 2 {
			return cache.ErrBackend
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("connect() = %v after %d calls, want nil after 2", err, calls)
	}
}

func TestConnectDoesNotRetryConfigErrors(t *testing.T) {
	calls := 0
	err := connect(context.Background(), newLogger(io.Discard, LogInfo), "test", func() error {
		calls++
		return relerrors.New(relerrors.ErrCodeInvalidInput, "mongo uri is empty")
	})
	if !relerrors.Is(err, relerrors.ErrCodeInvalidInput) || calls != 1 {
		t.Errorf("connect() = %v after %d calls, want INVALID_INPUT after 1", err, calls)
	}
}
