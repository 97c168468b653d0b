package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/relink/pkg/buildinfo"
	"github.com/matzehuels/relink/pkg/cache"
	relerrors "github.com/matzehuels/relink/pkg/errors"
	"github.com/matzehuels/relink/pkg/geometry"
	"github.com/matzehuels/relink/pkg/pipeline"
	"github.com/matzehuels/relink/pkg/storage"
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

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(DefaultConfig(), nil, storage.NewMemoryStore(), log.New(io.Discard))
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody[map[string]map[string]string](t, rec)
	return body["error"]["code"]
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, buildinfo.Version, body["version"])
}

func TestRecalc(t *testing.T) {
	s := newTestServer(t)
	body := `{"document": ` + twoBoxes + `, "events": [{"op": "move", "ids": ["A"], "delta": {"x": 10, "y": 0}}]}`

	rec := do(t, s, http.MethodPost, "/v1/recalc", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[ReplayResponse](t, rec)
	assert.False(t, resp.Cached)
	assert.Equal(t, 1, resp.Stats.Events)
	require.Len(t, resp.Steps, 1)
	assert.Equal(t, "move", resp.Steps[0].Trigger)

	r, ok := resp.Document.Relationships["R"]
	require.True(t, ok)
	want := geometry.Path{{X: 35, Y: 50}, {X: 35, Y: 75}, {X: 130, Y: 75}, {X: 130, Y: -25}, {X: 225, Y: -25}, {X: 225, Y: 0}}
	assert.Equal(t, want, r.Path)
}

func TestRecalcCacheScopedByConfig(t *testing.T) {
	shared, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	logger := log.New(io.Discard)
	newServer := func(hash string) *Server {
		runner := pipeline.NewRunner(shared, nil, nil, logger)
		return New(DefaultConfig(), runner, storage.NewMemoryStore(), logger, WithConfigHash(hash))
	}
	body := `{"document": ` + twoBoxes + `, "events": [{"op": "move", "ids": ["A"], "delta": {"x": 10, "y": 0}}]}`
	cached := func(s *Server) bool {
		rec := do(t, s, http.MethodPost, "/v1/recalc", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return decodeBody[ReplayResponse](t, rec).Cached
	}

	a, b := newServer("config-a"), newServer("config-b")
	assert.False(t, cached(a))
	assert.True(t, cached(a), "same configuration should hit the cache")
	assert.False(t, cached(b), "different configuration must not reuse results")
}

func TestRecalcErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed", `{"document":`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown field", `{"document": ` + twoBoxes + `, "bogus": 1}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"invalid event", `{"document": ` + twoBoxes + `, "events": [{"op": "fly"}]}`, http.StatusBadRequest, "INVALID_EVENT"},
		{"unknown entity", `{"document": ` + twoBoxes + `, "events": [{"op": "move", "ids": ["Z"], "delta": {"x": 1, "y": 0}}]}`, http.StatusUnprocessableEntity, "UNKNOWN_ENTITY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(t), http.MethodPost, "/v1/recalc", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestRequestTooLarge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxBodyBytes = 16
	s := New(cfg, nil, nil, log.New(io.Discard))

	rec := do(t, s, http.MethodPost, "/v1/recalc", `{"document": `+twoBoxes+`}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestDiagramLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPut, "/v1/diagrams/demo", twoBoxes)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/v1/diagrams", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"demo"}, decodeBody[map[string][]string](t, rec)["ids"])

	rec = do(t, s, http.MethodGet, "/v1/diagrams/demo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	doc := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "demo", doc["id"])

	rec = do(t, s, http.MethodPost, "/v1/diagrams/demo/events", `{"events": [{"op": "move", "ids": ["A"], "delta": {"x": 10, "y": 0}}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/v1/diagrams/demo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stored struct {
		Elements map[string]struct {
			Bounds geometry.Bounds `json:"bounds"`
		} `json:"elements"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored))
	assert.Equal(t, 10.0, stored.Elements["A"].Bounds.X, "move should be persisted")

	rec = do(t, s, http.MethodDelete, "/v1/diagrams/demo", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/v1/diagrams/demo", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, rec))
}

func TestGetFormats(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPut, "/v1/diagrams/demo", twoBoxes).Code)

	rec := do(t, s, http.MethodGet, "/v1/diagrams/demo?format=dot", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/vnd.graphviz", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("digraph")), rec.Body.String())

	rec = do(t, s, http.MethodGet, "/v1/diagrams/demo?format=png", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_FORMAT", errorCode(t, rec))
}

func TestPutRejectsInvalidDocument(t *testing.T) {
	s := newTestServer(t)
	bad := `{"bounds": {"x": 0, "y": 0, "width": 100, "height": 100},
	  "ownedElements": ["A"], "ownedRelationships": [],
	  "elements": {"A": {"id": "A", "type": "Class", "owner": "nope", "bounds": {"x": 0, "y": 0, "width": 10, "height": 10}}},
	  "relationships": {}}`

	rec := do(t, s, http.MethodPut, "/v1/diagrams/demo", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, "INVALID_DOCUMENT", errorCode(t, rec))
}

func TestEventsOnMissingDiagram(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/diagrams/missing/events", `{"events": []}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{relerrors.New(relerrors.ErrCodeInvalidGeometry, "x"), http.StatusBadRequest},
		{relerrors.New(relerrors.ErrCodeNotFound, "x"), http.StatusNotFound},
		{relerrors.New(relerrors.ErrCodeUnknownEntity, "x"), http.StatusUnprocessableEntity},
		{relerrors.New(relerrors.ErrCodeConflict, "x"), http.StatusConflict},
		{relerrors.New(relerrors.ErrCodeUnsupported, "x"), http.StatusNotImplemented},
		{fmt.Errorf("replay: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), "statusFor(%v)", tt.err)
	}
}
