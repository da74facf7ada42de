package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/liamcoop/quorum/body"
	"github.com/liamcoop/quorum/internal/logger"
	"github.com/liamcoop/quorum/search"
)

// Health check handler
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}

	bodies, err := s.engine.ListBodies()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list bodies", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":       "healthy",
		"bodiesLoaded": len(bodies),
	})
}

// Counters handler: the always-incremented warning/error counters plus
// the degraded-behavior counters the evaluator and search maintain
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]int64{
		"totalErrors":           logger.TotalErrors.Load(),
		"totalWarnings":         logger.TotalWarnings.Load(),
		"unknownConditionKinds": logger.UnknownConditionKinds.Load(),
		"unknownOperators":      logger.UnknownOperators.Load(),
		"unknownThresholdKinds": logger.UnknownThresholdKinds.Load(),
		"truncatedSearches":     logger.TruncatedSearches.Load(),
		"skippedDocuments":      logger.SkippedDocuments.Load(),
	})
}

// List bodies handler
func (s *Server) handleListBodies(w http.ResponseWriter, r *http.Request) {
	bodies, err := s.engine.ListBodies()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list bodies", err)
		return
	}

	type entry struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	entries := make([]entry, 0, len(bodies))
	for _, b := range bodies {
		entries = append(entries, entry{ID: b.ID, Name: b.Name})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"bodies": entries,
	})
}

// Create body handler
func (s *Server) handleCreateBody(w http.ResponseWriter, r *http.Request) {
	var b body.GoverningBody
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	if err := s.engine.AddBody(&b); err != nil {
		if strings.Contains(err.Error(), "already exists") {
			respondError(w, http.StatusConflict, "body already exists", err)
			return
		}
		respondError(w, http.StatusBadRequest, "failed to add body", err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"id":   b.ID,
		"name": b.Name,
	})
}

// Get body handler
func (s *Server) handleGetBody(w http.ResponseWriter, r *http.Request) {
	b, err := s.engine.Body(chi.URLParam(r, "bodyId"))
	if err != nil {
		respondError(w, http.StatusNotFound, "body not found", err)
		return
	}
	respondJSON(w, http.StatusOK, b)
}

// Update body handler
func (s *Server) handleUpdateBody(w http.ResponseWriter, r *http.Request) {
	var b body.GoverningBody
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	b.ID = chi.URLParam(r, "bodyId")

	if err := s.engine.UpdateBody(&b); err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(w, http.StatusNotFound, "body not found", err)
			return
		}
		respondError(w, http.StatusBadRequest, "failed to update body", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": b.ID})
}

// Delete body handler
func (s *Server) handleDeleteBody(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bodyId")
	if err := s.engine.DeleteBody(id); err != nil {
		respondError(w, http.StatusNotFound, "body not found", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id})
}

// Evaluate handler: runs every rule of the body against a selection
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Selection []string `json:"selection"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	results, err := s.engine.EvaluateAll(chi.URLParam(r, "bodyId"), req.Selection)
	if err != nil {
		respondError(w, http.StatusNotFound, "body not found", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

// Coalitions handler: minimal winning coalitions extending a baseline
func (s *Server) handleCoalitions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Baseline   []string `json:"baseline"`
		Rule       string   `json:"rule,omitempty"`
		Filter     string   `json:"filter,omitempty"`
		NodeBudget int      `json:"nodeBudget,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	b, err := s.engine.Body(chi.URLParam(r, "bodyId"))
	if err != nil {
		respondError(w, http.StatusNotFound, "body not found", err)
		return
	}

	var filter *search.Filter
	if req.Filter != "" {
		filter, err = search.CompileFilter(req.Filter)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid filter expression", err)
			return
		}
	}

	opts := s.cfg.SearchOptions()
	if req.NodeBudget > 0 && (opts.NodeBudget == 0 || req.NodeBudget < opts.NodeBudget) {
		opts.NodeBudget = req.NodeBudget
	}

	startTime := time.Now()
	result, err := search.FindMinimalWinningCoalitions(b, req.Baseline, req.Rule, opts)
	if err != nil {
		if errors.Is(err, search.ErrTooManyGroups) {
			respondError(w, http.StatusUnprocessableEntity, "search space too large", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "search failed", err)
		return
	}

	if filter != nil {
		result = filter.Apply(result)
	}
	if result.Coalitions == nil {
		result.Coalitions = []search.Coalition{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"coalitions": result.Coalitions,
		"truncated":  result.Truncated,
		"nodes":      result.Nodes,
		"searchTime": time.Since(startTime).String(),
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err.Error())
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	resp := map[string]string{"error": message}
	if err != nil {
		resp["detail"] = err.Error()
	}
	respondJSON(w, status, resp)
}
