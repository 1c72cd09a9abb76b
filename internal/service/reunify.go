package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/claimsat/internal/debug"
	"github.com/claimsat/internal/metrics"
	"github.com/claimsat/internal/models"
	"github.com/claimsat/internal/reunify"
	"github.com/claimsat/internal/store"
)

// BatchResult summarises one batch matching run
type BatchResult struct {
	MissingProcessed int           `json:"missingProcessed"`
	SurvivorsScanned int           `json:"survivorsScanned"`
	MatchesFound     int           `json:"matchesFound"`
	NewMatches       int           `json:"newMatches"`
	Duration         time.Duration `json:"duration"`
}

// ReunifyService registers missing persons and survivors and keeps their matches.
// Matches are suggestions; only Verify moves them past pending_verification.
type ReunifyService struct {
	mu      sync.Mutex
	store   store.Store
	engine  *reunify.Engine
	metrics *metrics.Metrics
	clock   models.Clock
	workers int
	newID   func(prefix string) string
}

// NewReunifyService creates a reunification service. A nil metrics is allowed.
func NewReunifyService(s store.Store, engine *reunify.Engine, m *metrics.Metrics, clock models.Clock, workers int) *ReunifyService {
	if clock == nil {
		clock = models.SystemClock{}
	}
	if workers <= 0 {
		workers = 1
	}
	return &ReunifyService{
		store:   s,
		engine:  engine,
		metrics: m,
		clock:   clock,
		workers: workers,
		newID:   func(prefix string) string { return prefix + uuid.NewString() },
	}
}

func validPoint(p models.Point) bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// sameDisaster reports whether two records may be matched. Records that do not
// name a disaster are compared against every disaster.
func sameDisaster(a, b string) bool {
	return a == "" || b == "" || a == b
}

func eligibleSurvivor(s models.Survivor) bool {
	return s.Status == models.SurvivorRegistered || s.Status == models.SurvivorMatched
}

func (rs *ReunifyService) candidatesFor(mp models.MissingPerson, survivors []models.Survivor) []models.Survivor {
	candidates := make([]models.Survivor, 0, len(survivors))
	for _, s := range survivors {
		if eligibleSurvivor(s) && sameDisaster(mp.DisasterID, s.DisasterID) {
			candidates = append(candidates, s)
		}
	}
	return candidates
}

// RegisterMissing stores a missing person report and returns its immediate matches
func (rs *ReunifyService) RegisterMissing(ctx context.Context, localDebug bool, mp models.MissingPerson) (models.MissingPerson, []models.ReunifyMatch, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	if strings.TrimSpace(mp.Person.Name) == "" {
		return models.MissingPerson{}, nil, fmt.Errorf("%w: missing person name is required", ErrInvalidInput)
	}
	if !validPoint(mp.LastSeenAt.Coordinates) {
		return models.MissingPerson{}, nil, fmt.Errorf("%w: last seen coordinates are out of range", ErrInvalidInput)
	}

	mp.ID = rs.newID("mp-")
	mp.ReportedAt = rs.clock.Now()
	mp.Status = models.MissingSearching

	rs.mu.Lock()
	defer rs.mu.Unlock()

	missing, err := store.LoadAll[models.MissingPerson](ctx, rs.store, store.KindMissingPersons)
	if err != nil {
		return models.MissingPerson{}, nil, fmt.Errorf("failed to load missing persons: %w", err)
	}
	if err := rs.store.Save(ctx, store.KindMissingPersons, append(missing, mp)); err != nil {
		return models.MissingPerson{}, nil, fmt.Errorf("failed to save missing person %s: %w", mp.ID, err)
	}

	survivors, err := store.LoadAll[models.Survivor](ctx, rs.store, store.KindSurvivors)
	if err != nil {
		return models.MissingPerson{}, nil, fmt.Errorf("failed to load survivors: %w", err)
	}

	fresh := rs.engine.FindMatches(mp, rs.candidatesFor(mp, survivors))
	matches, err := rs.mergeMatches(ctx, fresh, func(m models.ReunifyMatch) bool { return m.MissingPersonID == mp.ID })
	if err != nil {
		return models.MissingPerson{}, nil, err
	}

	debug.DebugOutput(localDebug, "Registered missing person %s with %d matches", mp.ID, len(matches))
	return mp, matches, nil
}

// RegisterSurvivor stores a survivor and returns the missing persons it may match
func (rs *ReunifyService) RegisterSurvivor(ctx context.Context, localDebug bool, s models.Survivor) (models.Survivor, []models.ReunifyMatch, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	if !validPoint(s.FoundAt.Coordinates) {
		return models.Survivor{}, nil, fmt.Errorf("%w: found coordinates are out of range", ErrInvalidInput)
	}

	s.ID = rs.newID("sv-")
	s.ReportedAt = rs.clock.Now()
	s.Status = models.SurvivorRegistered

	rs.mu.Lock()
	defer rs.mu.Unlock()

	survivors, err := store.LoadAll[models.Survivor](ctx, rs.store, store.KindSurvivors)
	if err != nil {
		return models.Survivor{}, nil, fmt.Errorf("failed to load survivors: %w", err)
	}
	if err := rs.store.Save(ctx, store.KindSurvivors, append(survivors, s)); err != nil {
		return models.Survivor{}, nil, fmt.Errorf("failed to save survivor %s: %w", s.ID, err)
	}

	missing, err := store.LoadAll[models.MissingPerson](ctx, rs.store, store.KindMissingPersons)
	if err != nil {
		return models.Survivor{}, nil, fmt.Errorf("failed to load missing persons: %w", err)
	}
	searching := make([]models.MissingPerson, 0, len(missing))
	for _, mp := range missing {
		if mp.Status == models.MissingSearching && sameDisaster(mp.DisasterID, s.DisasterID) {
			searching = append(searching, mp)
		}
	}

	fresh := rs.engine.FindMatchesForSurvivor(s, searching)
	matches, err := rs.mergeMatches(ctx, fresh, func(m models.ReunifyMatch) bool { return m.SurvivorID == s.ID })
	if err != nil {
		return models.Survivor{}, nil, err
	}

	debug.DebugOutput(localDebug, "Registered survivor %s with %d matches", s.ID, len(matches))
	return s, matches, nil
}

// mergeMatches folds fresh matches into the stored set and returns the stored
// matches selected by keep, highest confidence first. Callers hold rs.mu.
func (rs *ReunifyService) mergeMatches(ctx context.Context, fresh []models.ReunifyMatch, keep func(models.ReunifyMatch) bool) ([]models.ReunifyMatch, error) {
	existing, err := store.LoadAll[models.ReunifyMatch](ctx, rs.store, store.KindMatches)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches: %w", err)
	}

	merged := reunify.Dedupe(existing, fresh)
	if len(fresh) > 0 {
		if err := rs.store.Save(ctx, store.KindMatches, merged); err != nil {
			return nil, fmt.Errorf("failed to save matches: %w", err)
		}
	}
	rs.metrics.MatchesFound(fresh)

	selected := make([]models.ReunifyMatch, 0)
	for _, m := range merged {
		if keep(m) {
			selected = append(selected, m)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].ConfidenceScore > selected[j].ConfidenceScore
	})
	return selected, nil
}

// MatchesForMissing rescores a missing person against the current survivors and
// returns every stored match for them
func (rs *ReunifyService) MatchesForMissing(ctx context.Context, id string) ([]models.ReunifyMatch, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	missing, err := store.LoadAll[models.MissingPerson](ctx, rs.store, store.KindMissingPersons)
	if err != nil {
		return nil, fmt.Errorf("failed to load missing persons: %w", err)
	}
	mp, ok := findMissing(missing, id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrMissingPersonNotFound)
	}

	survivors, err := store.LoadAll[models.Survivor](ctx, rs.store, store.KindSurvivors)
	if err != nil {
		return nil, fmt.Errorf("failed to load survivors: %w", err)
	}

	var fresh []models.ReunifyMatch
	if mp.Status == models.MissingSearching {
		fresh = rs.engine.FindMatches(mp, rs.candidatesFor(mp, survivors))
	}
	return rs.mergeMatches(ctx, fresh, func(m models.ReunifyMatch) bool { return m.MissingPersonID == id })
}

// MatchesForSurvivor rescores a survivor against the searching missing persons and
// returns every stored match for them
func (rs *ReunifyService) MatchesForSurvivor(ctx context.Context, id string) ([]models.ReunifyMatch, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	survivors, err := store.LoadAll[models.Survivor](ctx, rs.store, store.KindSurvivors)
	if err != nil {
		return nil, fmt.Errorf("failed to load survivors: %w", err)
	}
	var s models.Survivor
	found := false
	for _, candidate := range survivors {
		if candidate.ID == id {
			s, found = candidate, true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", id, ErrSurvivorNotFound)
	}

	missing, err := store.LoadAll[models.MissingPerson](ctx, rs.store, store.KindMissingPersons)
	if err != nil {
		return nil, fmt.Errorf("failed to load missing persons: %w", err)
	}

	var fresh []models.ReunifyMatch
	if eligibleSurvivor(s) {
		searching := make([]models.MissingPerson, 0, len(missing))
		for _, mp := range missing {
			if mp.Status == models.MissingSearching && sameDisaster(mp.DisasterID, s.DisasterID) {
				searching = append(searching, mp)
			}
		}
		fresh = rs.engine.FindMatchesForSurvivor(s, searching)
	}
	return rs.mergeMatches(ctx, fresh, func(m models.ReunifyMatch) bool { return m.SurvivorID == id })
}

// RunBatch matches every searching missing person against the eligible survivors
// and merges the results into the stored matches
func (rs *ReunifyService) RunBatch(ctx context.Context, localDebug bool) (BatchResult, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)
	defer debug.DebugTiming(localDebug, "batch match")()

	start := time.Now()
	defer rs.metrics.BatchFinished(start)

	rs.mu.Lock()
	defer rs.mu.Unlock()

	missing, err := store.LoadAll[models.MissingPerson](ctx, rs.store, store.KindMissingPersons)
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to load missing persons: %w", err)
	}
	survivors, err := store.LoadAll[models.Survivor](ctx, rs.store, store.KindSurvivors)
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to load survivors: %w", err)
	}

	searching := make([]models.MissingPerson, 0, len(missing))
	for _, mp := range missing {
		if mp.Status == models.MissingSearching {
			searching = append(searching, mp)
		}
	}
	pool := make([]models.Survivor, 0, len(survivors))
	disasterOf := make(map[string]string, len(survivors))
	for _, s := range survivors {
		if eligibleSurvivor(s) {
			pool = append(pool, s)
			disasterOf[s.ID] = s.DisasterID
		}
	}

	results, err := rs.engine.BatchMatch(ctx, searching, pool, rs.workers)
	if err != nil {
		return BatchResult{}, fmt.Errorf("batch matching failed: %w", err)
	}

	var fresh []models.ReunifyMatch
	for i, matches := range results {
		for _, m := range matches {
			if sameDisaster(searching[i].DisasterID, disasterOf[m.SurvivorID]) {
				fresh = append(fresh, m)
			}
		}
	}

	existing, err := store.LoadAll[models.ReunifyMatch](ctx, rs.store, store.KindMatches)
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to load matches: %w", err)
	}
	merged := reunify.Dedupe(existing, fresh)
	if err := rs.store.Save(ctx, store.KindMatches, merged); err != nil {
		return BatchResult{}, fmt.Errorf("failed to save matches: %w", err)
	}
	rs.metrics.MatchesFound(fresh)

	result := BatchResult{
		MissingProcessed: len(searching),
		SurvivorsScanned: len(pool),
		MatchesFound:     len(fresh),
		NewMatches:       len(merged) - len(existing),
		Duration:         time.Since(start),
	}
	debug.DebugOutput(localDebug, "Batch run: %d missing, %d survivors, %d matches (%d new) in %v",
		result.MissingProcessed, result.SurvivorsScanned, result.MatchesFound, result.NewMatches, result.Duration)
	return result, nil
}

func allowedTransition(from, to models.MatchStatus) bool {
	switch from {
	case models.MatchPendingVerification:
		return to == models.MatchVerified || to == models.MatchRejected
	case models.MatchVerified:
		return to == models.MatchReunited
	}
	return false
}

// Verify applies an authority's decision to a match. A verified match marks the
// missing person found and the survivor matched; a reunited match closes both.
func (rs *ReunifyService) Verify(ctx context.Context, localDebug bool, matchID string, status models.MatchStatus, verifier, notes string) (models.ReunifyMatch, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	if strings.TrimSpace(verifier) == "" {
		return models.ReunifyMatch{}, fmt.Errorf("%w: verifier is required", ErrInvalidInput)
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	matches, err := store.LoadAll[models.ReunifyMatch](ctx, rs.store, store.KindMatches)
	if err != nil {
		return models.ReunifyMatch{}, fmt.Errorf("failed to load matches: %w", err)
	}

	idx := -1
	for i := range matches {
		if matches[i].ID == matchID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.ReunifyMatch{}, fmt.Errorf("%s: %w", matchID, ErrMatchNotFound)
	}

	m := matches[idx]
	if !allowedTransition(m.Status, status) {
		return models.ReunifyMatch{}, fmt.Errorf("match %s %s -> %s: %w", matchID, m.Status, status, ErrInvalidTransition)
	}

	now := rs.clock.Now()
	m.Status = status
	m.VerifiedBy = verifier
	m.VerifiedAt = &now
	if notes != "" {
		m.VerificationNotes = notes
	}
	matches[idx] = m

	if err := rs.store.Save(ctx, store.KindMatches, matches); err != nil {
		return models.ReunifyMatch{}, fmt.Errorf("failed to save match %s: %w", matchID, err)
	}

	switch status {
	case models.MatchVerified:
		err = rs.setStatuses(ctx, m, models.MissingFound, models.SurvivorMatched)
	case models.MatchReunited:
		err = rs.setStatuses(ctx, m, models.MissingReunited, models.SurvivorReunited)
	}
	if err != nil {
		return models.ReunifyMatch{}, err
	}

	debug.DebugOutput(localDebug, "Match %s set to %s by %s", matchID, status, verifier)
	rs.metrics.MatchVerified(status)
	return m, nil
}

func (rs *ReunifyService) setStatuses(ctx context.Context, m models.ReunifyMatch, mpStatus models.MissingStatus, sStatus models.SurvivorStatus) error {
	missing, err := store.LoadAll[models.MissingPerson](ctx, rs.store, store.KindMissingPersons)
	if err != nil {
		return fmt.Errorf("failed to load missing persons: %w", err)
	}
	for i := range missing {
		if missing[i].ID == m.MissingPersonID {
			missing[i].Status = mpStatus
		}
	}
	if err := rs.store.Save(ctx, store.KindMissingPersons, missing); err != nil {
		return fmt.Errorf("failed to update missing person %s: %w", m.MissingPersonID, err)
	}

	survivors, err := store.LoadAll[models.Survivor](ctx, rs.store, store.KindSurvivors)
	if err != nil {
		return fmt.Errorf("failed to load survivors: %w", err)
	}
	for i := range survivors {
		if survivors[i].ID == m.SurvivorID {
			survivors[i].Status = sStatus
		}
	}
	if err := rs.store.Save(ctx, store.KindSurvivors, survivors); err != nil {
		return fmt.Errorf("failed to update survivor %s: %w", m.SurvivorID, err)
	}
	return nil
}

// ListMissing returns missing person reports, optionally filtered by status
func (rs *ReunifyService) ListMissing(ctx context.Context, status models.MissingStatus) ([]models.MissingPerson, error) {
	missing, err := store.LoadAll[models.MissingPerson](ctx, rs.store, store.KindMissingPersons)
	if err != nil {
		return nil, fmt.Errorf("failed to load missing persons: %w", err)
	}
	result := make([]models.MissingPerson, 0, len(missing))
	for _, mp := range missing {
		if status == "" || mp.Status == status {
			result = append(result, mp)
		}
	}
	return result, nil
}

// ListSurvivors returns registered survivors, optionally filtered by status
func (rs *ReunifyService) ListSurvivors(ctx context.Context, status models.SurvivorStatus) ([]models.Survivor, error) {
	survivors, err := store.LoadAll[models.Survivor](ctx, rs.store, store.KindSurvivors)
	if err != nil {
		return nil, fmt.Errorf("failed to load survivors: %w", err)
	}
	result := make([]models.Survivor, 0, len(survivors))
	for _, s := range survivors {
		if status == "" || s.Status == status {
			result = append(result, s)
		}
	}
	return result, nil
}

// ListMatches returns stored matches highest confidence first, optionally filtered by status
func (rs *ReunifyService) ListMatches(ctx context.Context, status models.MatchStatus) ([]models.ReunifyMatch, error) {
	matches, err := store.LoadAll[models.ReunifyMatch](ctx, rs.store, store.KindMatches)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches: %w", err)
	}
	result := make([]models.ReunifyMatch, 0, len(matches))
	for _, m := range matches {
		if status == "" || m.Status == status {
			result = append(result, m)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ConfidenceScore > result[j].ConfidenceScore
	})
	return result, nil
}

func findMissing(missing []models.MissingPerson, id string) (models.MissingPerson, bool) {
	for _, mp := range missing {
		if mp.ID == id {
			return mp, true
		}
	}
	return models.MissingPerson{}, false
}
