package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/apex/log"

	"github.com/claimsat/internal/claim"
	"github.com/claimsat/internal/disaster"
	"github.com/claimsat/internal/evidence"
	"github.com/claimsat/internal/service"
)

// Config represents the web server configuration (simplified)
type Config struct {
	Features struct {
		ReviewEnabled       bool `json:"review_enabled"`
		BatchTriggerEnabled bool `json:"batch_trigger_enabled"`
		ExportEnabled       bool `json:"export_enabled"`
	} `json:"features"`
}

// ListResponse is a page of records
type ListResponse struct {
	Items   interface{} `json:"items"`
	Total   int         `json:"total"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to encode response")
	}
}

// writeError maps service errors to HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrClaimNotFound),
		errors.Is(err, service.ErrMissingPersonNotFound),
		errors.Is(err, service.ErrSurvivorNotFound),
		errors.Is(err, service.ErrMatchNotFound),
		errors.Is(err, disaster.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrUnknownDisaster),
		errors.Is(err, claim.ErrNoDisaster),
		errors.Is(err, evidence.ErrEmpty):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, evidence.ErrTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, evidence.ErrUnsupportedType):
		status = http.StatusUnsupportedMediaType
	}

	if status == http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
		http.Error(w, "Internal error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

func parseIntParam(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return defaultVal
}

// clampInt bounds v to [lo, hi]
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// paginate returns the page bounds for total items from the page and per_page query values.
// start and end always lie in [0, total].
func paginate(r *http.Request, total int) (page, perPage, start, end int) {
	query := r.URL.Query()
	page = parseIntParam(query.Get("page"), 1)
	if page < 1 {
		page = 1
	}
	perPage = parseIntParam(query.Get("per_page"), 50)
	if perPage < 1 {
		perPage = 50
	}
	if perPage > 1000 {
		perPage = 1000
	}

	// pages past the end are empty; checked by division so huge pages cannot overflow
	if page-1 > total/perPage {
		return page, perPage, total, total
	}
	start = clampInt((page-1)*perPage, 0, total)
	end = clampInt(start+perPage, start, total)
	return page, perPage, start, end
}
