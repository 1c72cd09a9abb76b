package disaster

import (
	"time"

	"github.com/claimsat/internal/curve"
	"github.com/claimsat/internal/geo"
	"github.com/claimsat/internal/models"
	"github.com/claimsat/internal/timewin"
)

const (
	// MinContextScore is the combined score a disaster must beat to be suggested for a claim
	MinContextScore = 30.0
	// ContextWindowDays bounds how far an incident may be from a disaster start
	ContextWindowDays = 30
)

// FindMatching suggests the active disaster that best explains an incident at p and t.
// The combined score is the mean of the location and time scores.
func FindMatching(reg Registry, p models.Point, incident, now time.Time) (models.Disaster, float64, bool) {
	var best models.Disaster
	bestScore := 0.0
	found := false

	for _, d := range reg.GetActive() {
		loc := curve.LocationScore(p, d)
		tm := curve.TimeScore(incident, d, now)
		score := (loc.Score + tm.Score) / 2

		if score > bestScore {
			best, bestScore, found = d, score, true
		}
	}

	if !found || bestScore <= MinContextScore {
		return models.Disaster{}, 0, false
	}
	return best, bestScore, true
}

// VerifyContext reports the active disasters that started within ContextWindowDays of
// the incident
func VerifyContext(reg Registry, incident time.Time) (bool, []models.Disaster) {
	var related []models.Disaster
	for _, d := range reg.GetActive() {
		if timewin.DaysBetween(incident, d.StartDate) <= ContextWindowDays {
			related = append(related, d)
		}
	}
	return len(related) > 0, related
}

// Near returns disasters whose affected area, widened by radiusKm, covers p. This is a
// bounding-box test meant for pre-filtering.
func Near(reg Registry, p models.Point, radiusKm float64) []models.Disaster {
	var near []models.Disaster
	for _, d := range reg.List() {
		if len(d.Area) == 0 {
			if d.Epicenter != nil && geo.Distance(p, *d.Epicenter) <= radiusKm {
				near = append(near, d)
			}
			continue
		}
		if geo.WithinRadius(geo.Bounds(d.Area), p, radiusKm) {
			near = append(near, d)
		}
	}
	return near
}
