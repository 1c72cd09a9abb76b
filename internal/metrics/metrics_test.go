package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/claimsat/internal/models"
)

func TestMetricsExposition(t *testing.T) {
	m := New()
	m.ClaimScored(models.ClaimApproved, 91.5)
	m.ClaimScored(models.ClaimNeedsReview, 50)
	m.ClaimReviewed(models.ClaimRejected)
	m.MatchesFound([]models.ReunifyMatch{{ConfidenceScore: 94.4}, {ConfidenceScore: 47.5}})
	m.MatchVerified(models.MatchVerified)
	m.BatchFinished(time.Now().Add(-time.Second))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	text := string(body)

	for _, want := range []string{
		`claimsat_claims_scored_total{status="approved"} 1`,
		`claimsat_claims_scored_total{status="needs_review"} 1`,
		`claimsat_claims_reviewed_total{status="rejected"} 1`,
		`claimsat_matches_found_total 2`,
		`claimsat_match_confidence_count 2`,
		`claimsat_match_verifications_total{status="verified"} 1`,
		`claimsat_batch_duration_seconds_count 1`,
		`claimsat_claim_score_bucket{le="50"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ClaimScored(models.ClaimApproved, 80)
	m.ClaimReviewed(models.ClaimApproved)
	m.MatchesFound([]models.ReunifyMatch{{ConfidenceScore: 50}})
	m.MatchVerified(models.MatchRejected)
	m.BatchFinished(time.Now())
}
