package claim

import (
	"fmt"

	"github.com/claimsat/internal/models"
)

// Weights are the percentage contributions of each sub-score (sum = 100)
type Weights struct {
	Location          float64 `yaml:"location" json:"location"`
	Time              float64 `yaml:"time" json:"time"`
	EvidenceType      float64 `yaml:"evidence_type" json:"evidenceType"`
	VisualRelevance   float64 `yaml:"visual_relevance" json:"visualRelevance"`
	MetadataIntegrity float64 `yaml:"metadata_integrity" json:"metadataIntegrity"`
}

// DefaultWeights returns the standard claim weighting
func DefaultWeights() Weights {
	return Weights{
		Location:          30,
		Time:              20,
		EvidenceType:      15,
		VisualRelevance:   20,
		MetadataIntegrity: 15,
	}
}

// Sum returns the total of all weights
func (w Weights) Sum() float64 {
	return w.Location + w.Time + w.EvidenceType + w.VisualRelevance + w.MetadataIntegrity
}

// Bands are the lower bounds of the confidence bands
type Bands struct {
	HighConfidence float64 `yaml:"high_confidence" json:"highConfidence"` // >= approved
	NeedsReview    float64 `yaml:"needs_review" json:"needsReview"`       // >= needs_review
	LowConfidence  float64 `yaml:"low_confidence" json:"lowConfidence"`   // >= pending, below is rejected
}

// DefaultBands returns the standard band thresholds
func DefaultBands() Bands {
	return Bands{
		HighConfidence: 75,
		NeedsReview:    50,
		LowConfidence:  25,
	}
}

// Validate checks the bands are strictly descending within [0,100]
func (b Bands) Validate() error {
	if b.HighConfidence > 100 || b.LowConfidence < 0 {
		return fmt.Errorf("claim bands must lie within [0,100]")
	}
	if !(b.HighConfidence > b.NeedsReview && b.NeedsReview > b.LowConfidence) {
		return fmt.Errorf("claim bands must be descending: high %.1f, review %.1f, low %.1f",
			b.HighConfidence, b.NeedsReview, b.LowConfidence)
	}
	return nil
}

// Config is the immutable configuration of a Scorer
type Config struct {
	Weights Weights
	Bands   Bands
	Clock   models.Clock
	Debug   bool
}

// DefaultConfig returns the standard weights and bands with the system clock
func DefaultConfig() Config {
	return Config{
		Weights: DefaultWeights(),
		Bands:   DefaultBands(),
		Clock:   models.SystemClock{},
	}
}
