package claim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/claimsat/internal/models"
)

// Input is one claim with the records it is scored against
type Input struct {
	Claim    models.Claim
	Disaster *models.Disaster
	Evidence []models.Evidence
}

// ScoreBatch scores independent claims concurrently. Results are in input order; the
// first precondition failure cancels the rest.
func (s *Scorer) ScoreBatch(ctx context.Context, inputs []Input, workers int) ([]models.ClaimScore, error) {
	if workers <= 0 {
		workers = 1
	}

	scores := make([]models.ClaimScore, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range inputs {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			score, err := s.ScoreClaim(inputs[i].Claim, inputs[i].Disaster, inputs[i].Evidence)
			if err != nil {
				return fmt.Errorf("batch item %d: %w", i, err)
			}
			scores[i] = score
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}
