package reunify

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/claimsat/internal/models"
)

// BatchMatch runs FindMatches for many missing persons concurrently against the same
// survivor pool. Results are returned in input order, one slice per missing person.
func (e *Engine) BatchMatch(ctx context.Context, missing []models.MissingPerson, survivors []models.Survivor, workers int) ([][]models.ReunifyMatch, error) {
	if workers <= 0 {
		workers = 1
	}

	results := make([][]models.ReunifyMatch, len(missing))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range missing {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = e.FindMatches(missing[i], survivors)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Dedupe merges freshly computed matches into the persisted set keyed by
// (missingPersonId, survivorId). A pair already on record keeps its ID, status and
// verification fields and takes the fresh scores; new pairs are appended in order.
func Dedupe(existing, fresh []models.ReunifyMatch) []models.ReunifyMatch {
	merged := make([]models.ReunifyMatch, len(existing))
	copy(merged, existing)

	index := make(map[models.Pair]int, len(merged))
	for i, m := range merged {
		index[m.PairKey()] = i
	}

	for _, m := range fresh {
		i, ok := index[m.PairKey()]
		if !ok {
			index[m.PairKey()] = len(merged)
			merged = append(merged, m)
			continue
		}

		prev := merged[i]
		prev.ConfidenceScore = m.ConfidenceScore
		prev.Breakdown = m.Breakdown
		prev.Explanation = m.Explanation
		prev.MatchedAt = m.MatchedAt
		merged[i] = prev
	}

	return merged
}
