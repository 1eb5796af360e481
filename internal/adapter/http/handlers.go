package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/couchcryptid/ev-demand-service/internal/analysis"
	"github.com/couchcryptid/ev-demand-service/internal/domain"
)

const maxBodyBytes = 1 << 20

// countRequest is the body of the population and station update endpoints.
type countRequest struct {
	Value *int `json:"value"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var in analysis.AreaInput
	if !s.decode(w, r, &in) {
		return
	}
	snap, err := s.svc.AnalyzeArea(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var raw []json.RawMessage
	if !s.decode(w, r, &raw) {
		return
	}
	items := make([]analysis.BatchItem, len(raw))
	for i, msg := range raw {
		if err := json.Unmarshal(msg, &items[i].Input); err != nil {
			items[i].Err = fmt.Errorf("invalid batch item %d: %w", i, err)
		}
	}
	result, err := s.svc.AnalyzeBatch(r.Context(), items)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, result)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.AnalyzeFromSources(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, snap)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.GetAnalysis(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteAnalysis(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdatePopulation(w http.ResponseWriter, r *http.Request) {
	n, ok := s.decodeCount(w, r)
	if !ok {
		return
	}
	snap, err := s.svc.UpdatePopulation(r.Context(), chi.URLParam(r, "id"), n)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, snap)
}

func (s *Server) handleUpdateStations(w http.ResponseWriter, r *http.Request) {
	n, ok := s.decodeCount(w, r)
	if !ok {
		return
	}
	snap, err := s.svc.UpdateStationCount(r.Context(), chi.URLParam(r, "id"), n)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, snap)
}

func (s *Server) handleHighPriority(w http.ResponseWriter, r *http.Request) {
	areas, err := s.svc.GetHighPriorityAreas(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, areas)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	target := s.targetRatio
	if v := r.URL.Query().Get("target_ratio"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "target_ratio must be a number")
			return
		}
		target = parsed
	}

	rec, err := s.svc.GetRecommendations(r.Context(), chi.URLParam(r, "id"), target)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	a, b := r.URL.Query().Get("a"), r.URL.Query().Get("b")
	if a == "" || b == "" {
		writeMessage(w, http.StatusBadRequest, "query parameters a and b are required")
		return
	}
	cmp, err := s.svc.CompareAreas(r.Context(), a, b)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, cmp)
}

func (s *Server) handleRegionalSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.RegionalSummary(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, summary)
}

func (s *Server) handleClusters(w http.ResponseWriter, r *http.Request) {
	clusters, err := s.svc.PriorityClusters(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, clusters)
}

// decode reads a JSON body into v. On failure it writes a 400 and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		s.logger.Warn("invalid request body",
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func (s *Server) decodeCount(w http.ResponseWriter, r *http.Request) (int, bool) {
	var req countRequest
	if !s.decode(w, r, &req) {
		return 0, false
	}
	if req.Value == nil {
		writeMessage(w, http.StatusBadRequest, "value is required")
		return 0, false
	}
	return *req.Value, true
}

// writeError maps service errors onto status codes. Internal failures are
// logged and reported without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case domain.IsValidation(err):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, analysis.ErrLookupUnavailable):
		writeMessage(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
