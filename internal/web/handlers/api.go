package handlers

import (
	"net/http"
	"time"

	"github.com/claimsat/internal/models"
	"github.com/claimsat/internal/service"
)

// APIHandler handles health and statistics endpoints
type APIHandler struct {
	Claims  *service.ClaimService
	Reunify *service.ReunifyService
	Started time.Time
}

// StatsResponse represents overall statistics
type StatsResponse struct {
	TotalClaims     int                           `json:"total_claims"`
	ClaimsByStatus  map[models.ClaimStatus]int    `json:"claims_by_status"`
	AverageScore    float64                       `json:"average_score"`
	ClaimEvents     map[models.ClaimEventType]int `json:"claim_events"`
	MissingByStatus map[models.MissingStatus]int  `json:"missing_by_status"`
	SurvivorsTotal  int                           `json:"survivors_total"`
	MatchesByStatus map[models.MatchStatus]int    `json:"matches_by_status"`
}

// Health reports that the server is up
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.Started).Round(time.Second).String(),
	})
}

// GetStats returns overall system statistics
func (h *APIHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats := StatsResponse{
		ClaimsByStatus:  make(map[models.ClaimStatus]int),
		MissingByStatus: make(map[models.MissingStatus]int),
		MatchesByStatus: make(map[models.MatchStatus]int),
	}

	claims, err := h.Claims.List(ctx, "")
	if err != nil {
		writeError(w, err)
		return
	}
	total := 0.0
	for _, c := range claims {
		stats.ClaimsByStatus[c.Status]++
		total += c.Score.Overall
	}
	stats.TotalClaims = len(claims)
	if len(claims) > 0 {
		stats.AverageScore = models.Round1(total / float64(len(claims)))
	}

	if stats.ClaimEvents, err = h.Claims.EventStatistics(ctx); err != nil {
		writeError(w, err)
		return
	}

	missing, err := h.Reunify.ListMissing(ctx, "")
	if err != nil {
		writeError(w, err)
		return
	}
	for _, mp := range missing {
		stats.MissingByStatus[mp.Status]++
	}

	survivors, err := h.Reunify.ListSurvivors(ctx, "")
	if err != nil {
		writeError(w, err)
		return
	}
	stats.SurvivorsTotal = len(survivors)

	matches, err := h.Reunify.ListMatches(ctx, "")
	if err != nil {
		writeError(w, err)
		return
	}
	for _, m := range matches {
		stats.MatchesByStatus[m.Status]++
	}

	writeJSON(w, http.StatusOK, stats)
}
