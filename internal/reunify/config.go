package reunify

import (
	"github.com/google/uuid"

	"github.com/claimsat/internal/models"
)

// Weights are the percentage contributions of each match factor (sum = 100)
type Weights struct {
	Name        float64 `yaml:"name" json:"name"`
	Age         float64 `yaml:"age" json:"age"`
	Gender      float64 `yaml:"gender" json:"gender"`
	Location    float64 `yaml:"location" json:"location"`
	Description float64 `yaml:"description" json:"description"`
}

// DefaultWeights returns the standard match weighting
func DefaultWeights() Weights {
	return Weights{
		Name:        30,
		Age:         20,
		Gender:      10,
		Location:    25,
		Description: 15,
	}
}

// Sum returns the total of all weights
func (w Weights) Sum() float64 {
	return w.Name + w.Age + w.Gender + w.Location + w.Description
}

// DefaultMinConfidence is the lowest confidence FindMatches reports
const DefaultMinConfidence = 40.0

// Config is the immutable configuration of an Engine
type Config struct {
	Weights       Weights
	MinConfidence float64
	Clock         models.Clock
	NewID         func() string
	Debug         bool
}

// DefaultConfig returns the standard weights and threshold with the system clock
// and random match IDs
func DefaultConfig() Config {
	return Config{
		Weights:       DefaultWeights(),
		MinConfidence: DefaultMinConfidence,
		Clock:         models.SystemClock{},
		NewID:         NewMatchID,
	}
}

// NewMatchID returns a random match identifier
func NewMatchID() string {
	return "match-" + uuid.NewString()
}
