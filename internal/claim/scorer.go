package claim

import (
	"errors"
	"fmt"

	"github.com/claimsat/internal/curve"
	"github.com/claimsat/internal/debug"
	"github.com/claimsat/internal/models"
)

var (
	// ErrNoDisaster is returned when a claim is scored without its disaster
	ErrNoDisaster = errors.New("claim has no disaster to score against")
	// ErrDisasterMismatch is returned when the disaster is not the one the claim references
	ErrDisasterMismatch = errors.New("disaster does not match claim")
)

// Scorer computes explainable confidence scores for damage claims
type Scorer struct {
	cfg Config
}

// NewScorer creates a scorer with the standard configuration
func NewScorer() *Scorer {
	return NewScorerWithConfig(DefaultConfig())
}

// NewScorerWithConfig creates a scorer with custom weights and bands
func NewScorerWithConfig(cfg Config) *Scorer {
	if cfg.Clock == nil {
		cfg.Clock = models.SystemClock{}
	}
	return &Scorer{cfg: cfg}
}

// Config returns the scorer configuration
func (s *Scorer) Config() Config {
	return s.cfg
}

// ScoreClaim scores a claim against its disaster and evidence. Missing optional data
// degrades to neutral sub-scores; only a missing or mismatched disaster is an error.
func (s *Scorer) ScoreClaim(c models.Claim, d *models.Disaster, evidence []models.Evidence) (models.ClaimScore, error) {
	localDebug := s.cfg.Debug
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	if d == nil {
		return models.ClaimScore{}, fmt.Errorf("claim %s: %w", c.ID, ErrNoDisaster)
	}
	if c.DisasterID != "" && c.DisasterID != d.ID {
		return models.ClaimScore{}, fmt.Errorf("claim %s references %s, got %s: %w", c.ID, c.DisasterID, d.ID, ErrDisasterMismatch)
	}

	now := s.cfg.Clock.Now()

	location := curve.LocationScore(c.Location.Point(), *d)
	timing := curve.TimeScore(c.IncidentDate, *d, now)
	evidenceType := EvidenceTypeScore(evidence)
	visual := VisualRelevanceScore(evidence)
	metadata := MetadataIntegrityScore(evidence)

	debug.DebugOutput(localDebug, "Claim %s sub-scores: location=%.2f time=%.2f evidence=%.2f visual=%.2f metadata=%.2f",
		c.ID, location.Score, timing.Score, evidenceType, visual, metadata)

	w := s.cfg.Weights
	overall := location.Score*w.Location/100 +
		timing.Score*w.Time/100 +
		evidenceType*w.EvidenceType/100 +
		visual*w.VisualRelevance/100 +
		metadata*w.MetadataIntegrity/100
	overall = models.Round1(models.Clamp(overall, 0, 100))

	debug.DebugOutput(localDebug, "Claim %s overall: %.1f", c.ID, overall)

	return models.ClaimScore{
		Overall: overall,
		Breakdown: models.ScoreBreakdown{
			LocationMatch:     models.Round1(location.Score),
			TimeProximity:     models.Round1(timing.Score),
			EvidenceType:      models.Round1(evidenceType),
			VisualRelevance:   models.Round1(visual),
			MetadataIntegrity: models.Round1(metadata),
		},
		Explanation: s.explain(overall, location.Explanation, timing.Explanation,
			evidenceType, visual, len(evidence)),
		CalculatedAt: now,
	}, nil
}

// DeriveStatus maps an overall score to a claim status using the configured bands
func (s *Scorer) DeriveStatus(score float64) models.ClaimStatus {
	return statusForBands(score, s.cfg.Bands)
}

// DeriveClaimStatus maps an overall score to a claim status using the standard bands
func DeriveClaimStatus(score float64) models.ClaimStatus {
	return statusForBands(score, DefaultBands())
}

func statusForBands(score float64, b Bands) models.ClaimStatus {
	switch {
	case score >= b.HighConfidence:
		return models.ClaimApproved
	case score >= b.NeedsReview:
		return models.ClaimNeedsReview
	case score >= b.LowConfidence:
		return models.ClaimPending
	default:
		return models.ClaimRejected
	}
}
