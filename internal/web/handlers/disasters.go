package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/claimsat/internal/disaster"
	"github.com/claimsat/internal/models"
)

// DisastersHandler exposes the disaster registry
type DisastersHandler struct {
	Registry disaster.Registry
	Clock    models.Clock
}

func (h *DisastersHandler) now() time.Time {
	if h.Clock == nil {
		return time.Now()
	}
	return h.Clock.Now()
}

// ListDisasters returns all disasters, or only active ones with ?active=true.
// With lat, lng and optional radius_km it returns disasters near that point.
func (h *DisastersHandler) ListDisasters(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if query.Get("lat") != "" || query.Get("lng") != "" {
		lat, errLat := strconv.ParseFloat(query.Get("lat"), 64)
		lng, errLng := strconv.ParseFloat(query.Get("lng"), 64)
		if errLat != nil || errLng != nil {
			http.Error(w, "Invalid coordinates", http.StatusBadRequest)
			return
		}
		radius := float64(parseIntParam(query.Get("radius_km"), 50))
		writeJSON(w, http.StatusOK, nonNil(disaster.Near(h.Registry, models.Point{Lat: lat, Lng: lng}, radius)))
		return
	}

	if query.Get("active") == "true" {
		writeJSON(w, http.StatusOK, nonNil(h.Registry.GetActive()))
		return
	}
	writeJSON(w, http.StatusOK, nonNil(h.Registry.List()))
}

// GetDisaster returns one disaster
func (h *DisastersHandler) GetDisaster(w http.ResponseWriter, r *http.Request) {
	d, err := disaster.Lookup(h.Registry, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// ContextResponse describes which disasters may explain an incident
type ContextResponse struct {
	Related    bool              `json:"related"`
	Disasters  []models.Disaster `json:"disasters"`
	Suggested  *models.Disaster  `json:"suggested,omitempty"`
	MatchScore float64           `json:"matchScore,omitempty"`
}

// DisasterContext suggests the disaster for an incident at lat, lng on date
func (h *DisastersHandler) DisasterContext(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	incident, err := time.Parse("2006-01-02", query.Get("date"))
	if err != nil {
		http.Error(w, "Invalid date, use YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	related, disasters := disaster.VerifyContext(h.Registry, incident)
	resp := ContextResponse{Related: related, Disasters: nonNil(disasters)}

	if query.Get("lat") != "" && query.Get("lng") != "" {
		lat, errLat := strconv.ParseFloat(query.Get("lat"), 64)
		lng, errLng := strconv.ParseFloat(query.Get("lng"), 64)
		if errLat != nil || errLng != nil {
			http.Error(w, "Invalid coordinates", http.StatusBadRequest)
			return
		}
		if d, score, ok := disaster.FindMatching(h.Registry, models.Point{Lat: lat, Lng: lng}, incident, h.now()); ok {
			resp.Suggested = &d
			resp.MatchScore = score
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func nonNil(disasters []models.Disaster) []models.Disaster {
	if disasters == nil {
		return []models.Disaster{}
	}
	return disasters
}
