package api

import (
	"encoding/json"
	"net/http"

	"github.com/tutu-network/focusband/internal/domain"
)

// recommendFocusRequest is the body for POST /api/recommend/focus.
type recommendFocusRequest struct {
	TaskType         string `json:"taskType"`
	EnergyLevel      string `json:"energyLevel"`
	HeuristicMinutes int    `json:"heuristicMinutes"`
	DynamicArms      []int  `json:"dynamicArms,omitempty"`
}

// handleRecommendFocus resolves a focus-duration recommendation.
// POST /api/recommend/focus
func (s *Server) handleRecommendFocus(w http.ResponseWriter, r *http.Request) {
	var req recommendFocusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c := domain.NewContext(req.TaskType, domain.EnergyLevel(req.EnergyLevel))
	rec := s.recommender.RecommendFocus(r.Context(), c, req.HeuristicMinutes, req.DynamicArms)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"minutes": rec.Minutes,
		"source":  rec.Source.String(),
	})
}

// recommendBreakRequest is the body for POST /api/recommend/break.
type recommendBreakRequest struct {
	TaskType       string `json:"taskType"`
	EnergyLevel    string `json:"energyLevel"`
	HeuristicBreak int    `json:"heuristicBreak"`
	FocusMinutes   int    `json:"focusMinutes"`
}

// handleRecommendBreak resolves a break-duration recommendation.
// POST /api/recommend/break
func (s *Server) handleRecommendBreak(w http.ResponseWriter, r *http.Request) {
	var req recommendBreakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c := domain.NewContext(req.TaskType, domain.EnergyLevel(req.EnergyLevel))
	rec := s.recommender.RecommendBreak(r.Context(), c, req.HeuristicBreak, req.FocusMinutes)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"minutes": rec.Minutes,
		"source":  rec.Source.String(),
	})
}

// outcomeRequest is the body for POST /api/sessions/outcome.
type outcomeRequest struct {
	TaskType                string `json:"taskType"`
	EnergyLevel             string `json:"energyLevel"`
	CompletionType          string `json:"completionType"`
	AcceptedRecommendation  bool   `json:"acceptedRecommendation"`
	SelectedFocusMinutes    int    `json:"selectedFocusMinutes"`
	SelectedBreakMinutes    int    `json:"selectedBreakMinutes"`
	FocusedMinutes          int    `json:"focusedMinutes"`
	RecommendedFocusMinutes int    `json:"recommendedFocusMinutes"`
	TimeOfDay               string `json:"timeOfDay,omitempty"`
}

// handleObserveOutcome records a session outcome.
// POST /api/sessions/outcome
func (s *Server) handleObserveOutcome(w http.ResponseWriter, r *http.Request) {
	var req outcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c := domain.NewContext(req.TaskType, domain.EnergyLevel(req.EnergyLevel))
	s.recommender.ObserveOutcome(r.Context(), domain.SessionOutcome{
		Context:                 c,
		CompletionType:          domain.CompletionType(req.CompletionType),
		AcceptedRecommendation:  req.AcceptedRecommendation,
		SelectedFocusMinutes:    req.SelectedFocusMinutes,
		SelectedBreakMinutes:    req.SelectedBreakMinutes,
		FocusedMinutes:          req.FocusedMinutes,
		RecommendedFocusMinutes: req.RecommendedFocusMinutes,
		TimeOfDay:               req.TimeOfDay,
	})

	w.WriteHeader(http.StatusNoContent)
}

// rejectionRequest is the body for POST /api/sessions/rejection.
type rejectionRequest struct {
	TaskType    string `json:"taskType"`
	EnergyLevel string `json:"energyLevel"`
	RejectedArm int    `json:"rejectedArm"`
}

// handleRejection records that the user dismissed the offered recommendation.
// POST /api/sessions/rejection
func (s *Server) handleRejection(w http.ResponseWriter, r *http.Request) {
	var req rejectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c := domain.NewContext(req.TaskType, domain.EnergyLevel(req.EnergyLevel))
	s.recommender.PenaliseRejection(r.Context(), c, req.RejectedArm)

	w.WriteHeader(http.StatusNoContent)
}

// handleExportState returns a full snapshot of persisted state.
// GET /api/state/export
func (s *Server) handleExportState(w http.ResponseWriter, r *http.Request) {
	snap := s.recommender.Export()
	writeJSON(w, http.StatusOK, snap)
}

// handleImportState replaces persisted state with a previously exported
// snapshot.
// POST /api/state/import
func (s *Server) handleImportState(w http.ResponseWriter, r *http.Request) {
	var snap domain.StateSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		writeError(w, http.StatusBadRequest, "invalid state snapshot")
		return
	}
	s.recommender.Import(r.Context(), snap)
	w.WriteHeader(http.StatusNoContent)
}

// handleClearState wipes all persisted state (user-invoked clear-all-data).
// POST /api/state/clear
func (s *Server) handleClearState(w http.ResponseWriter, r *http.Request) {
	if err := s.recommender.ClearAll(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
