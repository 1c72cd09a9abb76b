package curve

import (
	"fmt"
	"time"

	"github.com/claimsat/internal/geo"
	"github.com/claimsat/internal/models"
	"github.com/claimsat/internal/timewin"
)

const (
	// InsideAreaScore is given to points within the affected polygon
	InsideAreaScore = 100.0
	// NoEpicenterScore is the flat score for points outside a polygon with no epicenter
	NoEpicenterScore = 30.0
	// InsideWindowScore is given to incidents within the disaster period
	InsideWindowScore = 100.0
)

// LocationResult is a location sub-score with its rationale
type LocationResult struct {
	Score       float64
	Explanation string
	DistanceKm  *float64
}

// LocationScore scores a point against a disaster's affected area and epicenter
func LocationScore(p models.Point, d models.Disaster) LocationResult {
	if geo.PointInPolygon(p, d.Area) {
		return LocationResult{
			Score:       InsideAreaScore,
			Explanation: "Claim location is within the disaster-affected area",
		}
	}

	if d.Epicenter != nil {
		distance := geo.Distance(p, *d.Epicenter)
		return LocationResult{
			Score:       Location(distance),
			Explanation: fmt.Sprintf("Claim location is %.1fkm from disaster epicenter", distance),
			DistanceKm:  &distance,
		}
	}

	return LocationResult{
		Score:       NoEpicenterScore,
		Explanation: "Claim location is outside the primary affected area",
	}
}

// TimeResult is a time sub-score with its rationale
type TimeResult struct {
	Score       float64
	Explanation string
	Days        *int
}

// TimeScore scores an incident time against a disaster's period. Outside the period
// the distance is always measured from the disaster start.
func TimeScore(incident time.Time, d models.Disaster, now time.Time) TimeResult {
	window := timewin.Window{Start: d.StartDate, End: d.EndDate}

	if window.Contains(incident, now) {
		return TimeResult{
			Score:       InsideWindowScore,
			Explanation: "Incident date falls within the disaster period",
		}
	}

	days := timewin.DaysBetween(incident, d.StartDate)

	explanation := fmt.Sprintf("Incident date is %d days after disaster end", days)
	if window.Before(incident) {
		explanation = fmt.Sprintf("Incident date is %d days before disaster start", days)
	}

	return TimeResult{
		Score:       Time(days),
		Explanation: explanation,
		Days:        &days,
	}
}
