package disaster

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/claimsat/internal/models"
)

// ErrNotFound is returned when a disaster ID is unknown
var ErrNotFound = errors.New("disaster not found")

// Registry is the read-only source of disaster reference data
type Registry interface {
	GetByID(id string) (models.Disaster, bool)
	GetActive() []models.Disaster
	List() []models.Disaster
}

// Lookup returns the disaster with the given ID, or ErrNotFound
func Lookup(reg Registry, id string) (models.Disaster, error) {
	d, ok := reg.GetByID(id)
	if !ok {
		return models.Disaster{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return d, nil
}

// MemRegistry is an in-memory Registry safe for concurrent use
type MemRegistry struct {
	mu        sync.RWMutex
	disasters map[string]models.Disaster
}

// NewMemRegistry creates a registry holding the given disasters
func NewMemRegistry(disasters ...models.Disaster) *MemRegistry {
	r := &MemRegistry{disasters: make(map[string]models.Disaster, len(disasters))}
	for _, d := range disasters {
		r.disasters[d.ID] = d
	}
	return r
}

// Put adds or replaces a disaster
func (r *MemRegistry) Put(d models.Disaster) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disasters[d.ID] = d
}

// GetByID implements Registry
func (r *MemRegistry) GetByID(id string) (models.Disaster, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.disasters[id]
	return d, ok
}

// GetActive implements Registry; returns active and monitored disasters ordered by ID
func (r *MemRegistry) GetActive() []models.Disaster {
	var active []models.Disaster
	for _, d := range r.List() {
		if d.IsActive() {
			active = append(active, d)
		}
	}
	return active
}

// List implements Registry; returns every disaster ordered by ID
func (r *MemRegistry) List() []models.Disaster {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Disaster, 0, len(r.disasters))
	for _, d := range r.disasters {
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Samples returns the reference disasters used for demos and local development
func Samples() []models.Disaster {
	keralaEnd := day(2024, 7, 25)
	uttarakhandEnd := day(2024, 8, 5)

	return []models.Disaster{
		{
			ID:   "dis-001",
			Name: "Kerala Floods 2024",
			Type: models.DisasterFlood,
			Area: models.Polygon{{
				{76.2, 10.8}, {76.5, 10.8}, {76.5, 11.1}, {76.2, 11.1}, {76.2, 10.8},
			}},
			Epicenter:         &models.Point{Lat: 10.95, Lng: 76.35},
			StartDate:         day(2024, 7, 15),
			EndDate:           &keralaEnd,
			Severity:          models.SeverityCritical,
			Status:            models.DisasterMonitoring,
			AffectedAreaKm2:   2500,
			EstimatedAffected: 150000,
			Description:       "Severe flooding across central Kerala districts after extreme monsoon rainfall",
		},
		{
			ID:   "dis-002",
			Name: "Gujarat Earthquake 2024",
			Type: models.DisasterEarthquake,
			Area: models.Polygon{{
				{70.5, 22.5}, {71.0, 22.5}, {71.0, 23.0}, {70.5, 23.0}, {70.5, 22.5},
			}},
			Epicenter:         &models.Point{Lat: 22.75, Lng: 70.75},
			StartDate:         time.Date(2024, 6, 10, 14, 30, 0, 0, time.UTC),
			Severity:          models.SeverityHigh,
			Status:            models.DisasterMonitoring,
			AffectedAreaKm2:   1200,
			EstimatedAffected: 80000,
			Description:       "Magnitude 6.2 earthquake with structural damage in the Saurashtra region",
		},
		{
			ID:   "dis-003",
			Name: "Uttarakhand Landslides 2024",
			Type: models.DisasterLandslide,
			Area: models.Polygon{{
				{78.5, 30.2}, {79.0, 30.2}, {79.0, 30.7}, {78.5, 30.7}, {78.5, 30.2},
			}},
			Epicenter:         &models.Point{Lat: 30.45, Lng: 78.75},
			StartDate:         day(2024, 8, 1),
			EndDate:           &uttarakhandEnd,
			Severity:          models.SeverityHigh,
			Status:            models.DisasterActive,
			AffectedAreaKm2:   800,
			EstimatedAffected: 25000,
			Description:       "Multiple landslides blocking hill roads after cloudbursts",
		},
	}
}
