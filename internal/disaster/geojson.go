package disaster

import (
	"fmt"
	"io"
	"time"

	geojson "github.com/paulmach/go.geojson"

	"github.com/claimsat/internal/models"
)

// LoadGeoJSON reads disasters from a FeatureCollection. Each feature must be a Polygon
// whose properties carry the disaster fields (id, name, type, severity, status,
// start_date, end_date, epicenter_lat, epicenter_lng, ...).
func LoadGeoJSON(r io.Reader) ([]models.Disaster, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read geojson: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse geojson: %w", err)
	}

	disasters := make([]models.Disaster, 0, len(fc.Features))
	for i, f := range fc.Features {
		d, err := featureToDisaster(f)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		disasters = append(disasters, d)
	}
	return disasters, nil
}

func featureToDisaster(f *geojson.Feature) (models.Disaster, error) {
	if f.Geometry == nil || !f.Geometry.IsPolygon() {
		return models.Disaster{}, fmt.Errorf("geometry must be a Polygon")
	}

	id := f.PropertyMustString("id")
	if id == "" && f.ID != nil {
		id = fmt.Sprint(f.ID)
	}
	if id == "" {
		return models.Disaster{}, fmt.Errorf("missing id")
	}

	start, err := parseDate(f.PropertyMustString("start_date"))
	if err != nil {
		return models.Disaster{}, fmt.Errorf("disaster %s start_date: %w", id, err)
	}

	d := models.Disaster{
		ID:                id,
		Name:              f.PropertyMustString("name", id),
		Type:              models.DisasterType(f.PropertyMustString("type", string(models.DisasterOther))),
		Area:              models.Polygon(f.Geometry.Polygon),
		StartDate:         start,
		Severity:          models.Severity(f.PropertyMustString("severity", string(models.SeverityMedium))),
		Status:            models.DisasterStatus(f.PropertyMustString("status", string(models.DisasterActive))),
		AffectedAreaKm2:   f.PropertyMustFloat64("affected_area_km2", 0),
		EstimatedAffected: int(f.PropertyMustFloat64("estimated_affected", 0)),
		Description:       f.PropertyMustString("description"),
	}

	if endRaw := f.PropertyMustString("end_date"); endRaw != "" {
		end, err := parseDate(endRaw)
		if err != nil {
			return models.Disaster{}, fmt.Errorf("disaster %s end_date: %w", id, err)
		}
		d.EndDate = &end
	}

	lat, latErr := f.PropertyFloat64("epicenter_lat")
	lng, lngErr := f.PropertyFloat64("epicenter_lng")
	if latErr == nil && lngErr == nil {
		d.Epicenter = &models.Point{Lat: lat, Lng: lng}
	}

	return d, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("missing date")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised date %q", s)
	}
	return t, nil
}

// ToGeoJSON renders disasters as a FeatureCollection readable by LoadGeoJSON
func ToGeoJSON(disasters []models.Disaster) ([]byte, error) {
	fc := geojson.NewFeatureCollection()

	for _, d := range disasters {
		f := geojson.NewPolygonFeature(d.Area)
		f.ID = d.ID
		f.SetProperty("id", d.ID)
		f.SetProperty("name", d.Name)
		f.SetProperty("type", string(d.Type))
		f.SetProperty("severity", string(d.Severity))
		f.SetProperty("status", string(d.Status))
		f.SetProperty("start_date", d.StartDate.UTC().Format(time.RFC3339))
		if d.EndDate != nil {
			f.SetProperty("end_date", d.EndDate.UTC().Format(time.RFC3339))
		}
		if d.Epicenter != nil {
			f.SetProperty("epicenter_lat", d.Epicenter.Lat)
			f.SetProperty("epicenter_lng", d.Epicenter.Lng)
		}
		f.SetProperty("affected_area_km2", d.AffectedAreaKm2)
		f.SetProperty("estimated_affected", d.EstimatedAffected)
		if d.Description != "" {
			f.SetProperty("description", d.Description)
		}
		fc.AddFeature(f)
	}

	return fc.MarshalJSON()
}
