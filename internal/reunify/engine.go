package reunify

import (
	"sort"

	"github.com/claimsat/internal/curve"
	"github.com/claimsat/internal/debug"
	"github.com/claimsat/internal/fuzzy"
	"github.com/claimsat/internal/geo"
	"github.com/claimsat/internal/models"
)

// NeutralScore is used for factors the survivor record does not carry
const NeutralScore = 50.0

// Engine scores missing persons against survivors. It keeps no state between calls.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine with the standard configuration
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultConfig())
}

// NewEngineWithConfig creates an engine with custom weights and threshold
func NewEngineWithConfig(cfg Config) *Engine {
	if cfg.Clock == nil {
		cfg.Clock = models.SystemClock{}
	}
	if cfg.NewID == nil {
		cfg.NewID = NewMatchID
	}
	return &Engine{cfg: cfg}
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.cfg
}

type factors struct {
	name, age, gender, location, description float64
	distanceKm                               float64
}

func (e *Engine) score(mp models.MissingPerson, s models.Survivor) factors {
	f := factors{
		name:       fuzzy.NameSimilarity(mp.Person.Name, s.Person.Name),
		age:        NeutralScore,
		gender:     NeutralScore,
		distanceKm: geo.Distance(mp.LastSeenAt.Coordinates, s.FoundAt.Coordinates),
	}

	if s.Person.Age != nil && mp.Person.Age != nil {
		f.age = fuzzy.AgeScore(*mp.Person.Age - *s.Person.Age)
	}

	if s.Person.Gender != nil && mp.Person.Gender != nil {
		if *s.Person.Gender == *mp.Person.Gender {
			f.gender = 100
		} else {
			f.gender = 0
		}
	}

	f.location = curve.Proximity(f.distanceKm)

	if s.Person.PhysicalDescription != "" {
		f.description = fuzzy.DescriptionSimilarity(mp.Person.PhysicalDescription, s.Person.PhysicalDescription)
	} else {
		f.description = NeutralScore
	}

	return f
}

// CalculateMatch scores one missing person against one survivor. The match always
// starts in pending_verification.
func (e *Engine) CalculateMatch(mp models.MissingPerson, s models.Survivor) models.ReunifyMatch {
	f := e.score(mp, s)
	w := e.cfg.Weights

	confidence := f.name*w.Name/100 +
		f.age*w.Age/100 +
		f.gender*w.Gender/100 +
		f.location*w.Location/100 +
		f.description*w.Description/100
	confidence = models.Round1(models.Clamp(confidence, 0, 100))

	debug.DebugOutput(e.cfg.Debug, "Match %s/%s: name=%.1f age=%.1f gender=%.1f location=%.1f desc=%.1f => %.1f",
		mp.ID, s.ID, f.name, f.age, f.gender, f.location, f.description, confidence)

	return models.ReunifyMatch{
		ID:              e.cfg.NewID(),
		MissingPersonID: mp.ID,
		SurvivorID:      s.ID,
		ConfidenceScore: confidence,
		Breakdown: models.MatchBreakdown{
			NameSimilarity:                models.Round1(f.name),
			AgeOverlap:                    models.Round1(f.age),
			GenderMatch:                   models.Round1(f.gender),
			LocationProximity:             models.Round1(f.location),
			PhysicalDescriptionSimilarity: models.Round1(f.description),
		},
		Explanation: explain(confidence, f, mp, s),
		MatchedAt:   e.cfg.Clock.Now(),
		Status:      models.MatchPendingVerification,
	}
}

// FindMatches scores every survivor against a missing person and returns those at or
// above the confidence threshold, best first. Equal scores keep survivor order.
func (e *Engine) FindMatches(mp models.MissingPerson, survivors []models.Survivor) []models.ReunifyMatch {
	debug.DebugHeader(e.cfg.Debug)
	defer debug.DebugFooter(e.cfg.Debug)

	matches := make([]models.ReunifyMatch, 0)
	for _, s := range survivors {
		m := e.CalculateMatch(mp, s)
		if m.ConfidenceScore >= e.cfg.MinConfidence {
			matches = append(matches, m)
		}
	}

	sortMatches(matches)

	debug.DebugOutput(e.cfg.Debug, "Missing person %s: %d of %d survivors matched", mp.ID, len(matches), len(survivors))
	return matches
}

// FindMatchesForSurvivor is FindMatches from the survivor's side. Equal scores keep
// missing-person order.
func (e *Engine) FindMatchesForSurvivor(s models.Survivor, missing []models.MissingPerson) []models.ReunifyMatch {
	debug.DebugHeader(e.cfg.Debug)
	defer debug.DebugFooter(e.cfg.Debug)

	matches := make([]models.ReunifyMatch, 0)
	for _, mp := range missing {
		m := e.CalculateMatch(mp, s)
		if m.ConfidenceScore >= e.cfg.MinConfidence {
			matches = append(matches, m)
		}
	}

	sortMatches(matches)
	return matches
}

func sortMatches(matches []models.ReunifyMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].ConfidenceScore > matches[j].ConfidenceScore
	})
}
