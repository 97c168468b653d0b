package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	relerrors "github.com/matzehuels/relink/pkg/errors"
	"github.com/matzehuels/relink/pkg/observability"
)

// errorBody is the JSON form of an error response.
type errorBody struct {
	Error struct {
		Code    relerrors.Code `json:"code"`
		Message string         `json:"message"`
	} `json:"error"`
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return http.StatusRequestEntityTooLarge
	}
	code := relerrors.GetCode(err)
	if code == relerrors.ErrCodeUnknownEntity {
		// The request names something the diagram does not contain.
		return http.StatusUnprocessableEntity
	}
	switch code.Category() {
	case relerrors.CategoryInvalid:
		return http.StatusBadRequest
	case relerrors.CategoryMissing:
		return http.StatusNotFound
	case relerrors.CategoryConflict:
		return http.StatusConflict
	case relerrors.CategoryUnsupported:
		return http.StatusNotImplemented
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	var body errorBody
	body.Error.Code = relerrors.GetCode(err)
	if body.Error.Code == "" {
		body.Error.Code = relerrors.ErrCodeInternal
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		body.Error.Message = "internal error"
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
		body.Error.Message = err.Error()
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body bounded by the configured size. Unknown fields
// are rejected.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return relerrors.Wrap(relerrors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

// observe logs each request and reports it to the HTTP hooks under its
// route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		pattern := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			pattern = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, pattern, status, dur)
		s.logger.Debug("request",
			"method", r.Method,
			"route", pattern,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", dur,
			"request_id", middleware.GetReqID(r.Context()))
	})
}
