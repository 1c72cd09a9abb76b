package audit

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/claimsat/internal/debug"
	"github.com/claimsat/internal/models"
	"github.com/claimsat/internal/store"
)

// Tracker keeps the append-only history of every claim
type Tracker struct {
	mu    sync.Mutex
	store store.Store
	clock models.Clock
	newID func() string
}

// NewTracker creates a new audit tracker over the given store
func NewTracker(s store.Store, clock models.Clock) *Tracker {
	if clock == nil {
		clock = models.SystemClock{}
	}
	return &Tracker{
		store: s,
		clock: clock,
		newID: func() string { return "evt-" + uuid.NewString() },
	}
}

// Entry is one event to record against a claim
type Entry struct {
	Type        models.ClaimEventType
	Data        map[string]interface{}
	PerformedBy string
}

// RecordEvent appends one event to a claim's history
func (t *Tracker) RecordEvent(ctx context.Context, localDebug bool, claimID string, eventType models.ClaimEventType, data map[string]interface{}, performedBy string) (models.ClaimEvent, error) {
	events, err := t.RecordEvents(ctx, localDebug, claimID, Entry{Type: eventType, Data: data, PerformedBy: performedBy})
	if err != nil {
		return models.ClaimEvent{}, err
	}
	return events[0], nil
}

// RecordEvents appends several events to a claim's history in one write. Either all
// of them are stored or none are.
func (t *Tracker) RecordEvents(ctx context.Context, localDebug bool, claimID string, entries ...Entry) ([]models.ClaimEvent, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	at := t.clock.Now()
	recorded := make([]models.ClaimEvent, 0, len(entries))
	for _, e := range entries {
		recorded = append(recorded, models.ClaimEvent{
			ID:          t.newID(),
			ClaimID:     claimID,
			EventType:   e.Type,
			Timestamp:   at,
			Data:        e.Data,
			PerformedBy: e.PerformedBy,
		})
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	events, err := store.LoadAll[models.ClaimEvent](ctx, t.store, store.KindClaimEvents)
	if err != nil {
		return nil, fmt.Errorf("failed to load claim events: %w", err)
	}

	events = append(events, recorded...)
	if err := t.store.Save(ctx, store.KindClaimEvents, events); err != nil {
		return nil, fmt.Errorf("failed to record %d events for %s: %w", len(recorded), claimID, err)
	}

	for _, e := range recorded {
		debug.DebugOutput(localDebug, "Recorded %s event %s for claim %s", e.EventType, e.ID, claimID)
	}
	return recorded, nil
}

// RecordReview records a reviewer's decision on a claim
func (t *Tracker) RecordReview(ctx context.Context, localDebug bool, claimID string, from, to models.ClaimStatus, reviewer, notes string) error {
	data := map[string]interface{}{
		"previousStatus": string(from),
		"newStatus":      string(to),
	}
	if notes != "" {
		data["notes"] = notes
	}

	if _, err := t.RecordEvent(ctx, localDebug, claimID, models.EventReviewed, data, reviewer); err != nil {
		return err
	}
	if from != to {
		if _, err := t.RecordEvent(ctx, localDebug, claimID, models.EventStatusChanged, data, reviewer); err != nil {
			return err
		}
	}
	return nil
}

// GetHistory returns a claim's events in the order they were recorded
func (t *Tracker) GetHistory(ctx context.Context, localDebug bool, claimID string) ([]models.ClaimEvent, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	events, err := store.LoadAll[models.ClaimEvent](ctx, t.store, store.KindClaimEvents)
	if err != nil {
		return nil, fmt.Errorf("failed to load claim events: %w", err)
	}

	history := make([]models.ClaimEvent, 0)
	for _, e := range events {
		if e.ClaimID == claimID {
			history = append(history, e)
		}
	}

	debug.DebugOutput(localDebug, "Claim %s has %d events", claimID, len(history))
	return history, nil
}

// Statistics counts recorded events by type
func (t *Tracker) Statistics(ctx context.Context) (map[models.ClaimEventType]int, error) {
	events, err := store.LoadAll[models.ClaimEvent](ctx, t.store, store.KindClaimEvents)
	if err != nil {
		return nil, fmt.Errorf("failed to load claim events: %w", err)
	}

	stats := make(map[models.ClaimEventType]int)
	for _, e := range events {
		stats[e.EventType]++
	}
	return stats, nil
}
