package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/claimsat/internal/audit"
	"github.com/claimsat/internal/claim"
	"github.com/claimsat/internal/debug"
	"github.com/claimsat/internal/disaster"
	"github.com/claimsat/internal/metrics"
	"github.com/claimsat/internal/models"
	"github.com/claimsat/internal/store"
)

// Decision is a reviewer's verdict on a claim
type Decision string

const (
	Approve Decision = "approve"
	Reject  Decision = "reject"
)

// ClaimService handles claim submission, scoring and human review
type ClaimService struct {
	mu       sync.Mutex
	store    store.Store
	registry disaster.Registry
	scorer   *claim.Scorer
	tracker  *audit.Tracker
	metrics  *metrics.Metrics
	clock    models.Clock
	newID    func() string
}

// NewClaimService creates a claim service. A nil metrics is allowed.
func NewClaimService(s store.Store, reg disaster.Registry, scorer *claim.Scorer, m *metrics.Metrics, clock models.Clock) *ClaimService {
	if clock == nil {
		clock = models.SystemClock{}
	}
	return &ClaimService{
		store:    s,
		registry: reg,
		scorer:   scorer,
		tracker:  audit.NewTracker(s, clock),
		metrics:  m,
		clock:    clock,
		newID:    func() string { return "claim-" + uuid.NewString() },
	}
}

func validateClaim(c models.Claim) error {
	var problems []string
	if strings.TrimSpace(c.ClaimantName) == "" {
		problems = append(problems, "claimant name is required")
	}
	if c.Location.Lat < -90 || c.Location.Lat > 90 || c.Location.Lng < -180 || c.Location.Lng > 180 {
		problems = append(problems, "location is out of range")
	}
	if c.IncidentDate.IsZero() {
		problems = append(problems, "incident date is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

// resolveDisaster returns the claim's disaster. A claim without a disaster ID is
// attached to the best matching active disaster when one scores high enough.
func (cs *ClaimService) resolveDisaster(c models.Claim) (models.Disaster, error) {
	if c.DisasterID == "" {
		d, _, ok := disaster.FindMatching(cs.registry, c.Location.Point(), c.IncidentDate, cs.clock.Now())
		if !ok {
			return models.Disaster{}, fmt.Errorf("no active disaster matches the claim: %w", claim.ErrNoDisaster)
		}
		return d, nil
	}

	d, err := disaster.Lookup(cs.registry, c.DisasterID)
	if err != nil {
		return models.Disaster{}, fmt.Errorf("%w: %v", ErrUnknownDisaster, err)
	}
	return d, nil
}

// Preview scores a claim without persisting it
func (cs *ClaimService) Preview(c models.Claim) (models.ClaimScore, models.ClaimStatus, error) {
	if err := validateClaim(c); err != nil {
		return models.ClaimScore{}, "", err
	}
	d, err := cs.resolveDisaster(c)
	if err != nil {
		return models.ClaimScore{}, "", err
	}
	c.DisasterID = d.ID

	score, err := cs.scorer.ScoreClaim(c, &d, c.Evidence)
	if err != nil {
		return models.ClaimScore{}, "", err
	}
	return score, cs.scorer.DeriveStatus(score.Overall), nil
}

// PreviewResult is the score a claim would get
type PreviewResult struct {
	Score  models.ClaimScore  `json:"score"`
	Status models.ClaimStatus `json:"status"`
}

// PreviewBatch scores several claims concurrently without persisting them. Results are
// in input order; the first invalid claim fails the batch.
func (cs *ClaimService) PreviewBatch(ctx context.Context, claims []models.Claim, workers int) ([]PreviewResult, error) {
	inputs := make([]claim.Input, 0, len(claims))
	for i, c := range claims {
		if err := validateClaim(c); err != nil {
			return nil, fmt.Errorf("claim %d: %w", i, err)
		}
		d, err := cs.resolveDisaster(c)
		if err != nil {
			return nil, fmt.Errorf("claim %d: %w", i, err)
		}
		c.DisasterID = d.ID
		inputs = append(inputs, claim.Input{Claim: c, Disaster: &d, Evidence: c.Evidence})
	}

	scores, err := cs.scorer.ScoreBatch(ctx, inputs, workers)
	if err != nil {
		return nil, err
	}

	results := make([]PreviewResult, len(scores))
	for i, score := range scores {
		results[i] = PreviewResult{Score: score, Status: cs.scorer.DeriveStatus(score.Overall)}
	}
	return results, nil
}

// Create scores a new claim once, derives its status and persists it with its history.
// Evidence must be attached before creation; the score is never recomputed.
func (cs *ClaimService) Create(ctx context.Context, localDebug bool, c models.Claim) (models.Claim, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	if err := validateClaim(c); err != nil {
		return models.Claim{}, err
	}
	d, err := cs.resolveDisaster(c)
	if err != nil {
		return models.Claim{}, err
	}

	c.ID = cs.newID()
	c.DisasterID = d.ID
	c.DisasterName = d.Name
	c.SubmittedAt = cs.clock.Now()
	c.ReviewedBy, c.ReviewedAt, c.ReviewNotes = "", nil, ""
	c.Evidence = append([]models.Evidence(nil), c.Evidence...)
	for i := range c.Evidence {
		c.Evidence[i].ClaimID = c.ID
	}

	score, err := cs.scorer.ScoreClaim(c, &d, c.Evidence)
	if err != nil {
		return models.Claim{}, err
	}
	c.Score = score
	c.Status = cs.scorer.DeriveStatus(score.Overall)

	debug.DebugOutput(localDebug, "Claim %s for %s scored %.1f (%s)", c.ID, d.ID, score.Overall, c.Status)

	if err := cs.persist(ctx, c); err != nil {
		cs.discardOrLog(ctx, c)
		return models.Claim{}, err
	}

	entries := []audit.Entry{{
		Type:        models.EventCreated,
		Data:        map[string]interface{}{"disasterId": c.DisasterID},
		PerformedBy: c.ClaimantName,
	}}
	if len(c.Evidence) > 0 {
		entries = append(entries, audit.Entry{
			Type:        models.EventEvidenceAdded,
			Data:        map[string]interface{}{"count": len(c.Evidence)},
			PerformedBy: c.ClaimantName,
		})
	}
	entries = append(entries, audit.Entry{
		Type:        models.EventScored,
		Data:        map[string]interface{}{"overall": c.Score.Overall, "status": string(c.Status)},
		PerformedBy: "system",
	})

	// a claim is never left stored without its history
	if _, err := cs.tracker.RecordEvents(ctx, localDebug, c.ID, entries...); err != nil {
		cs.discardOrLog(ctx, c)
		return models.Claim{}, err
	}

	cs.metrics.ClaimScored(c.Status, c.Score.Overall)
	return c, nil
}

func (cs *ClaimService) persist(ctx context.Context, c models.Claim) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	claims, err := store.LoadAll[models.Claim](ctx, cs.store, store.KindClaims)
	if err != nil {
		return fmt.Errorf("failed to load claims: %w", err)
	}
	claims = append(claims, c)
	if err := cs.store.Save(ctx, store.KindClaims, claims); err != nil {
		return fmt.Errorf("failed to save claim %s: %w", c.ID, err)
	}

	if len(c.Evidence) == 0 {
		return nil
	}
	evidence, err := store.LoadAll[models.Evidence](ctx, cs.store, store.KindEvidence)
	if err != nil {
		return fmt.Errorf("failed to load evidence: %w", err)
	}
	evidence = append(evidence, c.Evidence...)
	if err := cs.store.Save(ctx, store.KindEvidence, evidence); err != nil {
		return fmt.Errorf("failed to save evidence for claim %s: %w", c.ID, err)
	}
	return nil
}

func (cs *ClaimService) discardOrLog(ctx context.Context, c models.Claim) {
	if err := cs.discard(ctx, c); err != nil {
		log.WithError(err).WithField("claim", c.ID).Error("failed to discard partially stored claim")
	}
}

// discard removes a claim and its evidence written by persist
func (cs *ClaimService) discard(ctx context.Context, c models.Claim) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	claims, err := store.LoadAll[models.Claim](ctx, cs.store, store.KindClaims)
	if err != nil {
		return fmt.Errorf("failed to load claims: %w", err)
	}
	kept := claims[:0]
	for _, stored := range claims {
		if stored.ID != c.ID {
			kept = append(kept, stored)
		}
	}
	if err := cs.store.Save(ctx, store.KindClaims, kept); err != nil {
		return fmt.Errorf("failed to remove claim %s: %w", c.ID, err)
	}

	if len(c.Evidence) == 0 {
		return nil
	}
	evidence, err := store.LoadAll[models.Evidence](ctx, cs.store, store.KindEvidence)
	if err != nil {
		return fmt.Errorf("failed to load evidence: %w", err)
	}
	keptEvidence := evidence[:0]
	for _, e := range evidence {
		if e.ClaimID != c.ID {
			keptEvidence = append(keptEvidence, e)
		}
	}
	if err := cs.store.Save(ctx, store.KindEvidence, keptEvidence); err != nil {
		return fmt.Errorf("failed to remove evidence for claim %s: %w", c.ID, err)
	}
	return nil
}

// Review records a reviewer's decision. The stored score is left untouched.
func (cs *ClaimService) Review(ctx context.Context, localDebug bool, id string, decision Decision, reviewer, notes string) (models.Claim, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	var to models.ClaimStatus
	switch decision {
	case Approve:
		to = models.ClaimApproved
	case Reject:
		to = models.ClaimRejected
	default:
		return models.Claim{}, fmt.Errorf("%w: decision must be %q or %q", ErrInvalidInput, Approve, Reject)
	}
	if strings.TrimSpace(reviewer) == "" {
		return models.Claim{}, fmt.Errorf("%w: reviewer is required", ErrInvalidInput)
	}

	cs.mu.Lock()
	claims, err := store.LoadAll[models.Claim](ctx, cs.store, store.KindClaims)
	if err != nil {
		cs.mu.Unlock()
		return models.Claim{}, fmt.Errorf("failed to load claims: %w", err)
	}

	idx := -1
	for i := range claims {
		if claims[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		cs.mu.Unlock()
		return models.Claim{}, fmt.Errorf("%s: %w", id, ErrClaimNotFound)
	}
	if claims[idx].ReviewedAt != nil {
		cs.mu.Unlock()
		return models.Claim{}, fmt.Errorf("claim %s already reviewed by %s: %w", id, claims[idx].ReviewedBy, ErrInvalidTransition)
	}

	from := claims[idx].Status
	now := cs.clock.Now()
	claims[idx].Status = to
	claims[idx].ReviewedBy = reviewer
	claims[idx].ReviewedAt = &now
	claims[idx].ReviewNotes = notes

	if err := cs.store.Save(ctx, store.KindClaims, claims); err != nil {
		cs.mu.Unlock()
		return models.Claim{}, fmt.Errorf("failed to save review of claim %s: %w", id, err)
	}
	reviewed := claims[idx]
	cs.mu.Unlock()

	if err := cs.tracker.RecordReview(ctx, localDebug, id, from, to, reviewer, notes); err != nil {
		return models.Claim{}, err
	}

	debug.DebugOutput(localDebug, "Claim %s reviewed by %s: %s -> %s", id, reviewer, from, to)
	cs.metrics.ClaimReviewed(to)
	return reviewed, nil
}

// Get returns one claim
func (cs *ClaimService) Get(ctx context.Context, id string) (models.Claim, error) {
	claims, err := store.LoadAll[models.Claim](ctx, cs.store, store.KindClaims)
	if err != nil {
		return models.Claim{}, fmt.Errorf("failed to load claims: %w", err)
	}
	for _, c := range claims {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Claim{}, fmt.Errorf("%s: %w", id, ErrClaimNotFound)
}

// List returns claims newest first, optionally filtered by status
func (cs *ClaimService) List(ctx context.Context, status models.ClaimStatus) ([]models.Claim, error) {
	claims, err := store.LoadAll[models.Claim](ctx, cs.store, store.KindClaims)
	if err != nil {
		return nil, fmt.Errorf("failed to load claims: %w", err)
	}

	result := make([]models.Claim, 0, len(claims))
	for _, c := range claims {
		if status == "" || c.Status == status {
			result = append(result, c)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].SubmittedAt.After(result[j].SubmittedAt)
	})
	return result, nil
}

// Events returns a claim's audit history
func (cs *ClaimService) Events(ctx context.Context, id string) ([]models.ClaimEvent, error) {
	if _, err := cs.Get(ctx, id); err != nil {
		return nil, err
	}
	return cs.tracker.GetHistory(ctx, false, id)
}

// EventStatistics counts recorded claim events by type
func (cs *ClaimService) EventStatistics(ctx context.Context) (map[models.ClaimEventType]int, error) {
	return cs.tracker.Statistics(ctx)
}
