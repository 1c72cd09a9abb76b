package reunify

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/claimsat/internal/models"
)

var matchedAt = time.Date(2024, 7, 22, 8, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func genderPtr(g models.Gender) *models.Gender { return &g }

func testEngine() *Engine {
	n := 0
	cfg := DefaultConfig()
	cfg.Clock = models.FixedClock{T: matchedAt}
	cfg.NewID = func() string {
		n++
		return fmt.Sprintf("match-%d", n)
	}
	return NewEngineWithConfig(cfg)
}

var aluva = models.Point{Lat: 10.95, Lng: 76.35}

func ramesh() models.MissingPerson {
	return models.MissingPerson{
		ID: "mp-1",
		Person: models.MissingPersonDetails{
			Name:                "Ramesh Kumar",
			Age:                 intPtr(35),
			Gender:              genderPtr(models.GenderMale),
			PhysicalDescription: "Medium build, black hair, wearing blue shirt",
		},
		LastSeenAt: models.Sighting{Coordinates: aluva},
		Status:     models.MissingSearching,
	}
}

func survivor(id, name string, age *int, gender *models.Gender, desc string, at models.Point) models.Survivor {
	return models.Survivor{
		ID: id,
		Person: models.SurvivorDetails{
			Name:                name,
			Age:                 age,
			Gender:              gender,
			PhysicalDescription: desc,
		},
		FoundAt: models.Sighting{Coordinates: at},
		Status:  models.SurvivorRegistered,
	}
}

func TestCalculateMatch(t *testing.T) {
	tests := []struct {
		name           string
		survivor       models.Survivor
		wantConfidence float64
		wantBreakdown  models.MatchBreakdown
		wantLines      []string
	}{
		{
			name:           "same person",
			survivor:       survivor("sv-1", "Ramesh Kumar", intPtr(35), genderPtr(models.GenderMale), "Medium build, black hair, blue clothing", aluva),
			wantConfidence: 94.4,
			wantBreakdown:  models.MatchBreakdown{NameSimilarity: 100, AgeOverlap: 100, GenderMatch: 100, LocationProximity: 100, PhysicalDescriptionSimilarity: 62.5},
			wantLines: []string{
				"HIGH MATCH CONFIDENCE",
				"Name: Very strong match (100% similar)",
				"Age: Exact match (35 years)",
				"Gender: Match",
				"Location: 0.0km apart",
			},
		},
		{
			name:           "unidentified survivor at the same spot",
			survivor:       survivor("sv-2", "", nil, nil, "", aluva),
			wantConfidence: 47.5,
			wantBreakdown:  models.MatchBreakdown{NameSimilarity: 0, AgeOverlap: 50, GenderMatch: 50, LocationProximity: 100, PhysicalDescriptionSimilarity: 50},
			wantLines: []string{
				"POSSIBLE MATCH",
				"Name: Low similarity (0% similar)",
				"Age: Survivor age not recorded",
				"Gender: Survivor gender not recorded",
			},
		},
		{
			name:           "close age, other gender",
			survivor:       survivor("sv-3", "Ramesh", intPtr(33), genderPtr(models.GenderFemale), "", aluva),
			wantConfidence: 28.5 + 18 + 0 + 25 + 7.5,
			wantBreakdown:  models.MatchBreakdown{NameSimilarity: 95, AgeOverlap: 90, GenderMatch: 0, LocationProximity: 100, PhysicalDescriptionSimilarity: 50},
			wantLines: []string{
				"Name: Very strong match (95% similar)",
				"Age: Very close (±2 years)",
				"Gender: Mismatch",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := testEngine().CalculateMatch(ramesh(), tt.survivor)

			if got.ConfidenceScore != tt.wantConfidence {
				t.Errorf("CalculateMatch() confidence = %v, want %v", got.ConfidenceScore, tt.wantConfidence)
			}
			if diff := cmp.Diff(tt.wantBreakdown, got.Breakdown); diff != "" {
				t.Errorf("CalculateMatch() breakdown mismatch (-want +got):\n%s", diff)
			}
			for _, line := range append(tt.wantLines, "Authority verification is MANDATORY before any reunion.") {
				if !strings.Contains(got.Explanation, line) {
					t.Errorf("CalculateMatch() explanation missing %q:\n%s", line, got.Explanation)
				}
			}
			if got.Status != models.MatchPendingVerification {
				t.Errorf("CalculateMatch() status = %v, want pending_verification", got.Status)
			}
			if got.MissingPersonID != "mp-1" || got.SurvivorID != tt.survivor.ID {
				t.Errorf("CalculateMatch() ids = %s/%s", got.MissingPersonID, got.SurvivorID)
			}
			if !got.MatchedAt.Equal(matchedAt) {
				t.Errorf("CalculateMatch() MatchedAt = %v, want %v", got.MatchedAt, matchedAt)
			}
		})
	}
}

func TestCalculateMatchMissingDetailsUnknown(t *testing.T) {
	mp := ramesh()
	mp.Person.Age = nil
	mp.Person.Gender = nil

	got := testEngine().CalculateMatch(mp, survivor("sv-1", "Ramesh Kumar", intPtr(35), genderPtr(models.GenderMale), "", aluva))
	if got.Breakdown.AgeOverlap != NeutralScore || got.Breakdown.GenderMatch != NeutralScore {
		t.Errorf("CalculateMatch() age/gender = %v/%v, want neutral", got.Breakdown.AgeOverlap, got.Breakdown.GenderMatch)
	}
	if !strings.Contains(got.Explanation, "Age: Missing person age not recorded") {
		t.Errorf("CalculateMatch() explanation:\n%s", got.Explanation)
	}
}

func TestFindMatches(t *testing.T) {
	delhi := models.Point{Lat: 28.61, Lng: 77.21}
	survivors := []models.Survivor{
		survivor("sv-far", "John Smith", intPtr(60), genderPtr(models.GenderFemale), "tall", delhi),
		survivor("sv-a", "", nil, nil, "", aluva),
		survivor("sv-best", "Ramesh Kumar", intPtr(35), genderPtr(models.GenderMale), "Medium build, black hair, blue clothing", aluva),
		survivor("sv-b", "", nil, nil, "", aluva),
	}

	got := testEngine().FindMatches(ramesh(), survivors)

	var ids []string
	for _, m := range got {
		ids = append(ids, m.SurvivorID)
		if m.ConfidenceScore < DefaultMinConfidence {
			t.Errorf("FindMatches() returned %s with confidence %v", m.SurvivorID, m.ConfidenceScore)
		}
	}

	want := []string{"sv-best", "sv-a", "sv-b"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("FindMatches() order mismatch (-want +got):\n%s", diff)
	}
}

func TestFindMatchesEmpty(t *testing.T) {
	got := testEngine().FindMatches(ramesh(), nil)
	if got == nil || len(got) != 0 {
		t.Errorf("FindMatches(nil) = %v, want empty slice", got)
	}
}

func TestFindMatchesCustomThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinConfidence = 90
	e := NewEngineWithConfig(cfg)

	survivors := []models.Survivor{
		survivor("sv-a", "", nil, nil, "", aluva),
		survivor("sv-best", "Ramesh Kumar", intPtr(35), genderPtr(models.GenderMale), "Medium build, black hair, blue clothing", aluva),
	}
	got := e.FindMatches(ramesh(), survivors)
	if len(got) != 1 || got[0].SurvivorID != "sv-best" {
		t.Errorf("FindMatches() = %+v, want only sv-best", got)
	}
}

func TestFindMatchesForSurvivor(t *testing.T) {
	other := ramesh()
	other.ID = "mp-2"
	other.Person.Name = "Lakshmi Nair"
	other.Person.Gender = genderPtr(models.GenderFemale)
	other.Person.Age = intPtr(70)

	s := survivor("sv-1", "Ramesh Kumar", intPtr(36), genderPtr(models.GenderMale), "", aluva)
	got := testEngine().FindMatchesForSurvivor(s, []models.MissingPerson{other, ramesh()})

	if len(got) == 0 || got[0].MissingPersonID != "mp-1" {
		t.Fatalf("FindMatchesForSurvivor() = %+v, want mp-1 first", got)
	}
	for i := 1; i < len(got); i++ {
		if got[i].ConfidenceScore > got[i-1].ConfidenceScore {
			t.Errorf("FindMatchesForSurvivor() not sorted at %d", i)
		}
	}
}

func TestBatchMatch(t *testing.T) {
	second := ramesh()
	second.ID = "mp-2"
	second.Person.Name = "Priya Sharma"
	second.Person.Gender = genderPtr(models.GenderFemale)

	survivors := []models.Survivor{
		survivor("sv-1", "Ramesh Kumar", intPtr(35), genderPtr(models.GenderMale), "", aluva),
		survivor("sv-2", "Priya", intPtr(34), genderPtr(models.GenderFemale), "", aluva),
	}

	got, err := testEngine().BatchMatch(context.Background(), []models.MissingPerson{ramesh(), second}, survivors, 2)
	if err != nil {
		t.Fatalf("BatchMatch() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("BatchMatch() returned %d result sets, want 2", len(got))
	}
	if got[0][0].SurvivorID != "sv-1" {
		t.Errorf("BatchMatch()[0] best = %s, want sv-1", got[0][0].SurvivorID)
	}
	if got[1][0].SurvivorID != "sv-2" {
		t.Errorf("BatchMatch()[1] best = %s, want sv-2", got[1][0].SurvivorID)
	}
}

func TestBatchMatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testEngine().BatchMatch(ctx, []models.MissingPerson{ramesh()}, nil, 1)
	if err == nil {
		t.Error("BatchMatch() with cancelled context returned nil error")
	}
}

func TestDedupe(t *testing.T) {
	verifiedAt := matchedAt.Add(-time.Hour)
	existing := []models.ReunifyMatch{
		{
			ID:              "match-old",
			MissingPersonID: "mp-1",
			SurvivorID:      "sv-1",
			ConfidenceScore: 70,
			Status:          models.MatchVerified,
			VerifiedBy:      "officer-7",
			VerifiedAt:      &verifiedAt,
		},
		{ID: "match-other", MissingPersonID: "mp-2", SurvivorID: "sv-1", ConfidenceScore: 41},
	}
	fresh := []models.ReunifyMatch{
		{ID: "match-new", MissingPersonID: "mp-1", SurvivorID: "sv-1", ConfidenceScore: 82.5, Explanation: "refreshed", MatchedAt: matchedAt, Status: models.MatchPendingVerification},
		{ID: "match-3", MissingPersonID: "mp-1", SurvivorID: "sv-9", ConfidenceScore: 44, Status: models.MatchPendingVerification},
	}

	got := Dedupe(existing, fresh)

	want := []models.ReunifyMatch{
		{
			ID:              "match-old",
			MissingPersonID: "mp-1",
			SurvivorID:      "sv-1",
			ConfidenceScore: 82.5,
			Explanation:     "refreshed",
			MatchedAt:       matchedAt,
			Status:          models.MatchVerified,
			VerifiedBy:      "officer-7",
			VerifiedAt:      &verifiedAt,
		},
		existing[1],
		fresh[1],
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Dedupe() mismatch (-want +got):\n%s", diff)
	}

	if existing[0].ConfidenceScore != 70 {
		t.Error("Dedupe() modified its input")
	}
}

func TestDedupeWithinFresh(t *testing.T) {
	fresh := []models.ReunifyMatch{
		{ID: "a", MissingPersonID: "mp-1", SurvivorID: "sv-1", ConfidenceScore: 50},
		{ID: "b", MissingPersonID: "mp-1", SurvivorID: "sv-1", ConfidenceScore: 60},
	}
	got := Dedupe(nil, fresh)
	if len(got) != 1 || got[0].ID != "a" || got[0].ConfidenceScore != 60 {
		t.Errorf("Dedupe() = %+v, want single pair a with latest score", got)
	}
}

func TestDedupeSeparatorInIDs(t *testing.T) {
	existing := []models.ReunifyMatch{{ID: "a", MissingPersonID: "mp|1", SurvivorID: "sv", ConfidenceScore: 50}}
	fresh := []models.ReunifyMatch{{ID: "b", MissingPersonID: "mp", SurvivorID: "1|sv", ConfidenceScore: 60}}

	got := Dedupe(existing, fresh)
	if len(got) != 2 {
		t.Fatalf("Dedupe() = %+v, want both pairs kept", got)
	}
	if got[0].ConfidenceScore != 50 || got[1].ID != "b" {
		t.Errorf("Dedupe() = %+v, want distinct pairs untouched", got)
	}
}

func TestDefaultWeightsSum(t *testing.T) {
	if got := DefaultWeights().Sum(); got != 100 {
		t.Errorf("DefaultWeights().Sum() = %v, want 100", got)
	}
}
