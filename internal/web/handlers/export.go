package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/claimsat/internal/models"
	"github.com/claimsat/internal/service"
)

// ExportHandler handles claim export for auditors
type ExportHandler struct {
	Claims *service.ClaimService
	Config *Config
}

var exportHeader = []string{
	"id", "claimant_name", "disaster_id", "property_type", "lat", "lng",
	"incident_date", "submitted_at", "evidence_count",
	"overall", "location_match", "time_proximity", "evidence_type", "visual_relevance", "metadata_integrity",
	"status", "reviewed_by", "reviewed_at",
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func exportRow(c models.Claim) []string {
	reviewedAt := ""
	if c.ReviewedAt != nil {
		reviewedAt = c.ReviewedAt.UTC().Format(time.RFC3339)
	}
	b := c.Score.Breakdown
	return []string{
		c.ID, c.ClaimantName, c.DisasterID, string(c.PropertyType),
		strconv.FormatFloat(c.Location.Lat, 'f', 6, 64), strconv.FormatFloat(c.Location.Lng, 'f', 6, 64),
		c.IncidentDate.UTC().Format("2006-01-02"), c.SubmittedAt.UTC().Format(time.RFC3339),
		strconv.Itoa(len(c.Evidence)),
		formatScore(c.Score.Overall), formatScore(b.LocationMatch), formatScore(b.TimeProximity),
		formatScore(b.EvidenceType), formatScore(b.VisualRelevance), formatScore(b.MetadataIntegrity),
		string(c.Status), c.ReviewedBy, reviewedAt,
	}
}

// ExportClaims streams claims as CSV, optionally filtered by status
func (h *ExportHandler) ExportClaims(w http.ResponseWriter, r *http.Request) {
	if !h.Config.Features.ExportEnabled {
		http.Error(w, "Export feature disabled", http.StatusForbidden)
		return
	}

	claims, err := h.Claims.List(r.Context(), models.ClaimStatus(r.URL.Query().Get("status")))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=claims-%s.csv", time.Now().UTC().Format("20060102")))

	cw := csv.NewWriter(w)
	cw.Write(exportHeader)
	for _, c := range claims {
		cw.Write(exportRow(c))
	}
	cw.Flush()
}
