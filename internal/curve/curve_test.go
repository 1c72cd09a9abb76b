package curve

import (
	"math"
	"testing"
	"time"

	"github.com/claimsat/internal/models"
)

const epsilon = 1e-9

func TestLocationCurve(t *testing.T) {
	tests := []struct {
		km   float64
		want float64
	}{
		{0, 100},
		{2.5, 90},
		{5, 80},
		{10, 70},
		{20, 50},
		{35, 29},
		{50, 20},
		{100, 10},
		{150, 0},
		{400, 0},
	}

	for _, tt := range tests {
		if got := Location(tt.km); math.Abs(got-tt.want) > epsilon {
			t.Errorf("Location(%v) = %v, want %v", tt.km, got, tt.want)
		}
	}
}

func TestTimeCurve(t *testing.T) {
	tests := []struct {
		days int
		want float64
	}{
		{0, 99.99},
		{1, 96.66},
		{3, 90},
		{5, 80},
		{7, 70},
		{10, 57.16},
		{14, 40},
		{20, 28.8},
		{30, 10},
		{40, 8},
		{80, 0},
	}

	for _, tt := range tests {
		if got := Time(tt.days); math.Abs(got-tt.want) > epsilon {
			t.Errorf("Time(%v) = %v, want %v", tt.days, got, tt.want)
		}
	}
}

func TestProximityCurve(t *testing.T) {
	tests := []struct {
		km   float64
		want float64
	}{
		{0, 100},
		{5, 95},
		{10, 90},
		{30, 75},
		{50, 60},
		{75, 45},
		{100, 30},
		{150, 20},
		{200, 10},
		{500, 7},
		{1200, 0},
		{5000, 0},
	}

	for _, tt := range tests {
		if got := Proximity(tt.km); math.Abs(got-tt.want) > epsilon {
			t.Errorf("Proximity(%v) = %v, want %v", tt.km, got, tt.want)
		}
	}
}

func TestCurvesMonotonicAndBounded(t *testing.T) {
	curves := map[string]Curve{
		"location":  LocationCurve,
		"time":      TimeCurve,
		"proximity": ProximityCurve,
	}

	for name, c := range curves {
		prev := math.Inf(1)
		for x := 0.0; x <= 1500; x += 0.25 {
			got := c.Eval(x)
			if got < 0 || got > 100 {
				t.Fatalf("%s: Eval(%v) = %v out of [0,100]", name, x, got)
			}
			if got > prev+epsilon {
				t.Fatalf("%s: Eval(%v) = %v increases from %v", name, x, got, prev)
			}
			prev = got
		}
	}
}

func TestLocationScore(t *testing.T) {
	disaster := models.Disaster{
		ID: "dis-001",
		Area: models.Polygon{{
			{76.2, 10.8}, {76.5, 10.8}, {76.5, 11.1}, {76.2, 11.1}, {76.2, 10.8},
		}},
		Epicenter: &models.Point{Lat: 10.95, Lng: 76.35},
	}

	t.Run("inside polygon", func(t *testing.T) {
		got := LocationScore(models.Point{Lat: 10.9, Lng: 76.3}, disaster)
		if got.Score != 100 {
			t.Errorf("Score = %v, want 100", got.Score)
		}
		if got.DistanceKm != nil {
			t.Errorf("DistanceKm = %v, want nil", *got.DistanceKm)
		}
	})

	t.Run("outside polygon near epicenter", func(t *testing.T) {
		// ~0.9 degrees south of the epicenter, about 100km
		got := LocationScore(models.Point{Lat: 10.05, Lng: 76.35}, disaster)
		if got.DistanceKm == nil {
			t.Fatal("DistanceKm should be set")
		}
		want := Location(*got.DistanceKm)
		if got.Score != want {
			t.Errorf("Score = %v, want %v", got.Score, want)
		}
		if got.Explanation != "Claim location is 100.1km from disaster epicenter" {
			t.Errorf("Explanation = %q", got.Explanation)
		}
	})

	t.Run("no epicenter", func(t *testing.T) {
		d := disaster
		d.Epicenter = nil
		got := LocationScore(models.Point{Lat: 20, Lng: 70}, d)
		if got.Score != 30 {
			t.Errorf("Score = %v, want 30", got.Score)
		}
		if got.Explanation != "Claim location is outside the primary affected area" {
			t.Errorf("Explanation = %q", got.Explanation)
		}
	})
}

func TestTimeScore(t *testing.T) {
	start := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 7, 25, 0, 0, 0, 0, time.UTC)
	disaster := models.Disaster{StartDate: start, EndDate: &end}
	now := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		incident    time.Time
		want        float64
		explanation string
	}{
		{"equal to start", start, 100, "Incident date falls within the disaster period"},
		{"inside", start.Add(72 * time.Hour), 100, "Incident date falls within the disaster period"},
		{"two days before", start.Add(-48 * time.Hour), 90 + 3.33, "Incident date is 2 days before disaster start"},
		{"after end measured from start", end.Add(24 * time.Hour), 40 + 3*4.29, "Incident date is 11 days after disaster end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TimeScore(tt.incident, disaster, now)
			if math.Abs(got.Score-tt.want) > epsilon {
				t.Errorf("Score = %v, want %v", got.Score, tt.want)
			}
			if got.Explanation != tt.explanation {
				t.Errorf("Explanation = %q, want %q", got.Explanation, tt.explanation)
			}
		})
	}
}

func TestTimeScoreOpenWindowUsesNow(t *testing.T) {
	start := time.Date(2024, 6, 10, 14, 30, 0, 0, time.UTC)
	disaster := models.Disaster{StartDate: start}

	incident := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)
	if got := TimeScore(incident, disaster, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)); got.Score != 100 {
		t.Errorf("ongoing disaster: Score = %v, want 100", got.Score)
	}
	if got := TimeScore(incident, disaster, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)); got.Score == 100 {
		t.Error("incident after now should fall outside an open window")
	}
}
