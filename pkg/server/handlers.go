package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/relink/pkg/buildinfo"
	"github.com/matzehuels/relink/pkg/diagram"
	"github.com/matzehuels/relink/pkg/document"
	"github.com/matzehuels/relink/pkg/engine"
	relerrors "github.com/matzehuels/relink/pkg/errors"
	"github.com/matzehuels/relink/pkg/pipeline"
	"github.com/matzehuels/relink/pkg/render/nodelink"
)

// RecalcRequest is the body of POST /v1/recalc.
type RecalcRequest struct {
	Document document.Document `json:"document"`
	Events   []pipeline.Event  `json:"events"`
	Editor   engine.Editor     `json:"editor"`
	Refresh  bool              `json:"refresh,omitempty"`
}

// EventsRequest is the body of POST /v1/diagrams/{id}/events.
type EventsRequest struct {
	Events []pipeline.Event `json:"events"`
	Editor engine.Editor    `json:"editor"`
}

// ReplayResponse reports the outcome of a replay.
type ReplayResponse struct {
	Document document.Document `json:"document"`
	Steps    []pipeline.Step   `json:"steps"`
	Stats    pipeline.Stats    `json:"stats"`
	Cached   bool              `json:"cached"`
}

func newReplayResponse(res *pipeline.Result) ReplayResponse {
	steps := res.Steps
	if steps == nil {
		steps = []pipeline.Step{}
	}
	return ReplayResponse{
		Document: document.FromModel(res.Model),
		Steps:    steps,
		Stats:    res.Stats,
		Cached:   res.CacheHit,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleRecalc(w http.ResponseWriter, r *http.Request) {
	var req RecalcRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := document.ToModel(req.Document)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Replay(r.Context(), m, s.replayOptions(req.Events, req.Editor, req.Refresh))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newReplayResponse(res))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := s.storage.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"ids": ids})
}

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatSVG:  "image/svg+xml",
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, err := s.load(r, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" || format == pipeline.FormatJSON {
		doc := document.FromModel(m)
		doc.ID = id
		writeJSON(w, http.StatusOK, doc)
		return
	}
	if err := relerrors.ValidateFormat(format, pipeline.Formats...); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := nodelink.Options{Detailed: r.URL.Query().Get("detailed") == "true"}
	out, _, err := s.runner.Export(r.Context(), m, []string{format}, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out[format])
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := relerrors.ValidateID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	var doc document.Document
	if err := s.decode(w, r, &doc); err != nil {
		s.writeError(w, r, err)
		return
	}

	unlock := s.lock(id)
	defer unlock()
	if err := s.storage.Put(r.Context(), id, doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	unlock := s.lock(id)
	defer unlock()
	if err := s.storage.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req EventsRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	unlock := s.lock(id)
	defer unlock()

	m, err := s.load(r, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Replay(r.Context(), m, s.replayOptions(req.Events, req.Editor, false))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := newReplayResponse(res)
	if err := s.storage.Put(r.Context(), id, resp.Document); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp.Document.ID = id
	s.logger.Info("diagram updated", "id", id, "events", res.Stats.Events, "actions", res.Stats.Actions)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) load(r *http.Request, id string) (*diagram.Model, error) {
	doc, err := s.storage.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	return document.ToModel(doc)
}

func (s *Server) replayOptions(events []pipeline.Event, ed engine.Editor, refresh bool) pipeline.Options {
	return pipeline.Options{
		Events:     events,
		Editor:     ed,
		Refresh:    refresh,
		ConfigHash: s.configHash,
	}
}
