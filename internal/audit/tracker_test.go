package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/claimsat/internal/models"
	"github.com/claimsat/internal/store"
)

func TestTrackerHistory(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 7, 21, 10, 0, 0, 0, time.UTC)
	tr := NewTracker(store.NewMemStore(), models.FixedClock{T: at})

	if _, err := tr.RecordEvent(ctx, false, "claim-1", models.EventCreated, nil, "claimant"); err != nil {
		t.Fatalf("RecordEvent() error = %v", err)
	}
	if _, err := tr.RecordEvent(ctx, false, "claim-2", models.EventCreated, nil, "claimant"); err != nil {
		t.Fatalf("RecordEvent() error = %v", err)
	}
	if err := tr.RecordReview(ctx, false, "claim-1", models.ClaimNeedsReview, models.ClaimApproved, "officer-3", "site visit done"); err != nil {
		t.Fatalf("RecordReview() error = %v", err)
	}

	history, err := tr.GetHistory(ctx, false, "claim-1")
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}

	var types []models.ClaimEventType
	for _, e := range history {
		types = append(types, e.EventType)
		if !e.Timestamp.Equal(at) {
			t.Errorf("event %s timestamp = %v, want %v", e.ID, e.Timestamp, at)
		}
	}
	want := []models.ClaimEventType{models.EventCreated, models.EventReviewed, models.EventStatusChanged}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Errorf("GetHistory() mismatch (-want +got):\n%s", diff)
	}

	if got := history[1].Data["notes"]; got != "site visit done" {
		t.Errorf("review notes = %v", got)
	}
	if history[1].PerformedBy != "officer-3" {
		t.Errorf("review performed by = %q", history[1].PerformedBy)
	}

	stats, err := tr.Statistics(ctx)
	if err != nil {
		t.Fatalf("Statistics() error = %v", err)
	}
	if stats[models.EventCreated] != 2 || stats[models.EventReviewed] != 1 {
		t.Errorf("Statistics() = %v", stats)
	}
}

func TestRecordReviewSameStatus(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(store.NewMemStore(), nil)

	if err := tr.RecordReview(ctx, false, "claim-1", models.ClaimApproved, models.ClaimApproved, "officer-3", ""); err != nil {
		t.Fatalf("RecordReview() error = %v", err)
	}
	history, _ := tr.GetHistory(ctx, false, "claim-1")
	if len(history) != 1 || history[0].EventType != models.EventReviewed {
		t.Errorf("GetHistory() = %+v, want a single reviewed event", history)
	}
	if _, ok := history[0].Data["notes"]; ok {
		t.Error("empty notes were recorded")
	}
}

func TestRecordEvents(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(store.NewMemStore(), models.FixedClock{T: time.Date(2024, 7, 21, 10, 0, 0, 0, time.UTC)})

	events, err := tr.RecordEvents(ctx, false, "claim-1",
		Entry{Type: models.EventCreated, PerformedBy: "claimant"},
		Entry{Type: models.EventScored, Data: map[string]interface{}{"overall": 50.0}, PerformedBy: "system"},
	)
	if err != nil {
		t.Fatalf("RecordEvents() error = %v", err)
	}
	if len(events) != 2 || events[0].ID == events[1].ID {
		t.Fatalf("RecordEvents() = %+v, want two distinct events", events)
	}

	history, _ := tr.GetHistory(ctx, false, "claim-1")
	want := []models.ClaimEventType{models.EventCreated, models.EventScored}
	var got []models.ClaimEventType
	for _, e := range history {
		got = append(got, e.EventType)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetHistory() mismatch (-want +got):\n%s", diff)
	}
}
