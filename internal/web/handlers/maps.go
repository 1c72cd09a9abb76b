package handlers

import (
	"net/http"

	geojson "github.com/paulmach/go.geojson"

	"github.com/claimsat/internal/disaster"
	"github.com/claimsat/internal/models"
	"github.com/claimsat/internal/service"
)

// MapsHandler serves map layers as GeoJSON
type MapsHandler struct {
	Registry disaster.Registry
	Claims   *service.ClaimService
}

// DisastersGeoJSON returns every disaster area as a FeatureCollection
func (h *MapsHandler) DisastersGeoJSON(w http.ResponseWriter, r *http.Request) {
	data, err := disaster.ToGeoJSON(h.Registry.List())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(data)
}

// ClaimsGeoJSON returns claim locations as points carrying score and status
func (h *MapsHandler) ClaimsGeoJSON(w http.ResponseWriter, r *http.Request) {
	claims, err := h.Claims.List(r.Context(), models.ClaimStatus(r.URL.Query().Get("status")))
	if err != nil {
		writeError(w, err)
		return
	}

	fc := geojson.NewFeatureCollection()
	for _, c := range claims {
		f := geojson.NewPointFeature([]float64{c.Location.Lng, c.Location.Lat})
		f.ID = c.ID
		f.SetProperty("disaster_id", c.DisasterID)
		f.SetProperty("status", string(c.Status))
		f.SetProperty("overall", c.Score.Overall)
		fc.AddFeature(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(data)
}
