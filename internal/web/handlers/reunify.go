package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/claimsat/internal/models"
	"github.com/claimsat/internal/service"
)

// BatchTrigger runs one batch matching pass on demand
type BatchTrigger interface {
	RunNow(ctx context.Context) (service.BatchResult, error)
}

// ReunifyHandler handles missing person, survivor and match endpoints
type ReunifyHandler struct {
	Reunify *service.ReunifyService
	Batch   BatchTrigger
	Config  *Config
}

// RegistrationResponse is a stored record with its immediate matches
type RegistrationResponse struct {
	Record  interface{}           `json:"record"`
	Matches []models.ReunifyMatch `json:"matches"`
}

// VerifyRequest is an authority's decision on a match
type VerifyRequest struct {
	Status     models.MatchStatus `json:"status"`
	VerifiedBy string             `json:"verifiedBy"`
	Notes      string             `json:"notes"`
}

// RegisterMissing stores a missing person report
func (h *ReunifyHandler) RegisterMissing(w http.ResponseWriter, r *http.Request) {
	var mp models.MissingPerson
	if err := json.NewDecoder(r.Body).Decode(&mp); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	stored, matches, err := h.Reunify.RegisterMissing(r.Context(), false, mp)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, RegistrationResponse{Record: stored, Matches: matches})
}

// RegisterSurvivor stores a survivor registration
func (h *ReunifyHandler) RegisterSurvivor(w http.ResponseWriter, r *http.Request) {
	var s models.Survivor
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	stored, matches, err := h.Reunify.RegisterSurvivor(r.Context(), false, s)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, RegistrationResponse{Record: stored, Matches: matches})
}

// ListMissing returns a page of missing person reports
func (h *ReunifyHandler) ListMissing(w http.ResponseWriter, r *http.Request) {
	missing, err := h.Reunify.ListMissing(r.Context(), models.MissingStatus(r.URL.Query().Get("status")))
	if err != nil {
		writeError(w, err)
		return
	}
	page, perPage, start, end := paginate(r, len(missing))
	writeJSON(w, http.StatusOK, ListResponse{Items: missing[start:end], Total: len(missing), Page: page, PerPage: perPage})
}

// ListSurvivors returns a page of survivors
func (h *ReunifyHandler) ListSurvivors(w http.ResponseWriter, r *http.Request) {
	survivors, err := h.Reunify.ListSurvivors(r.Context(), models.SurvivorStatus(r.URL.Query().Get("status")))
	if err != nil {
		writeError(w, err)
		return
	}
	page, perPage, start, end := paginate(r, len(survivors))
	writeJSON(w, http.StatusOK, ListResponse{Items: survivors[start:end], Total: len(survivors), Page: page, PerPage: perPage})
}

// MatchesForMissing returns the matches of one missing person
func (h *ReunifyHandler) MatchesForMissing(w http.ResponseWriter, r *http.Request) {
	matches, err := h.Reunify.MatchesForMissing(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

// MatchesForSurvivor returns the matches of one survivor
func (h *ReunifyHandler) MatchesForSurvivor(w http.ResponseWriter, r *http.Request) {
	matches, err := h.Reunify.MatchesForSurvivor(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

// ListMatches returns a page of stored matches, optionally filtered by status
func (h *ReunifyHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.Reunify.ListMatches(r.Context(), models.MatchStatus(r.URL.Query().Get("status")))
	if err != nil {
		writeError(w, err)
		return
	}
	page, perPage, start, end := paginate(r, len(matches))
	writeJSON(w, http.StatusOK, ListResponse{Items: matches[start:end], Total: len(matches), Page: page, PerPage: perPage})
}

// VerifyMatch applies an authority decision to a match
func (h *ReunifyHandler) VerifyMatch(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	m, err := h.Reunify.Verify(r.Context(), false, mux.Vars(r)["id"], req.Status, req.VerifiedBy, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// RunBatch triggers a batch matching pass
func (h *ReunifyHandler) RunBatch(w http.ResponseWriter, r *http.Request) {
	if !h.Config.Features.BatchTriggerEnabled {
		http.Error(w, "Feature disabled", http.StatusForbidden)
		return
	}

	var (
		result service.BatchResult
		err    error
	)
	if h.Batch != nil {
		result, err = h.Batch.RunNow(r.Context())
	} else {
		result, err = h.Reunify.RunBatch(r.Context(), false)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
