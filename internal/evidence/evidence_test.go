package evidence

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"image"
	"image/png"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/claimsat/internal/models"
)

var testNow = time.Date(2024, 7, 20, 9, 0, 0, 0, time.UTC)

func TestHeuristicAnalyzer(t *testing.T) {
	tests := []struct {
		name      string
		meta      Metadata
		wantScore float64
		wantParts []string
	}{
		{
			name:      "plain mid-size image",
			meta:      Metadata{Type: models.EvidenceImage, Filename: "IMG_0042.jpg", Size: 500000},
			wantScore: 0.5,
			wantParts: []string{"Static image evidence."},
		},
		{
			name:      "video",
			meta:      Metadata{Type: models.EvidenceVideo, Filename: "clip.mp4", Size: 50},
			wantScore: 0.65,
			wantParts: []string{"Video evidence provides temporal context."},
		},
		{
			name:      "large flood image",
			meta:      Metadata{Type: models.EvidenceImage, Filename: "Flood_Street.JPG", Size: 3000000},
			wantScore: 0.7,
			wantParts: []string{"High resolution image detected.", "Filename suggests disaster-related content."},
		},
		{
			name:      "small stock image",
			meta:      Metadata{Type: models.EvidenceImage, Filename: "stock_photo.png", Size: 2000},
			wantScore: 0.1,
			wantParts: []string{"Low resolution image.", "Possible stock/test image."},
		},
		{
			name:      "keyword and stock cancel",
			meta:      Metadata{Type: models.EvidenceImage, Filename: "damage_sample.jpg", Size: 500000},
			wantScore: 0.3,
		},
		{
			name:      "dimensions reported",
			meta:      Metadata{Type: models.EvidenceImage, Filename: "a.png", Size: 500000, Width: 640, Height: 480},
			wantScore: 0.5,
			wantParts: []string{"Dimensions 640x480."},
		},
	}

	analyzer := NewHeuristicAnalyzer(models.FixedClock{T: testNow})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := analyzer.Analyze(tt.meta)
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			if math.Abs(got.VisualRelevanceScore-tt.wantScore) > 1e-9 {
				t.Errorf("Analyze() score = %v, want %v", got.VisualRelevanceScore, tt.wantScore)
			}
			for _, part := range tt.wantParts {
				if !strings.Contains(got.Explanation, part) {
					t.Errorf("Analyze() explanation %q missing %q", got.Explanation, part)
				}
			}
			if !strings.HasSuffix(got.Explanation, "Manual review recommended.") {
				t.Errorf("Analyze() explanation %q missing disclaimer", got.Explanation)
			}
			if !got.AnalyzedAt.Equal(testNow) {
				t.Errorf("Analyze() AnalyzedAt = %v, want %v", got.AnalyzedAt, testNow)
			}
		})
	}
}

func TestHeuristicAnalyzerBounded(t *testing.T) {
	analyzer := NewHeuristicAnalyzer(nil)
	names := []string{"x.jpg", "test_demo_sample.jpg", "flood_damage_aftermath.mp4"}
	sizes := []int64{0, 99999, 100000, 2000001}

	for _, name := range names {
		for _, size := range sizes {
			for _, typ := range []models.EvidenceType{models.EvidenceImage, models.EvidenceVideo} {
				got, _ := analyzer.Analyze(Metadata{Type: typ, Filename: name, Size: size})
				if got.VisualRelevanceScore < 0 || got.VisualRelevanceScore > 1 {
					t.Errorf("Analyze(%s, %s, %d) = %v, out of [0,1]", typ, name, size, got.VisualRelevanceScore)
				}
			}
		}
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func newTestIngestor() *Ingestor {
	in := NewIngestor(NewHeuristicAnalyzer(models.FixedClock{T: testNow}), models.FixedClock{T: testNow})
	in.NewID = func() string { return "ev-1" }
	return in
}

func TestIngestImage(t *testing.T) {
	data := pngBytes(t, 32, 24)
	sum := sha256.Sum256(data)

	ev, err := newTestIngestor().Ingest(Upload{
		ClaimID:    "claim-1",
		Filename:   "flooded_kitchen.png",
		ContentRef: "uploads/claim-1/flooded_kitchen.png",
		Content:    bytes.NewReader(data),
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if ev.ID != "ev-1" || ev.ClaimID != "claim-1" {
		t.Errorf("Ingest() ids = %q/%q", ev.ID, ev.ClaimID)
	}
	if ev.Type != models.EvidenceImage {
		t.Errorf("Ingest() type = %v, want image", ev.Type)
	}
	if ev.FileHash != hex.EncodeToString(sum[:]) {
		t.Errorf("Ingest() hash = %s", ev.FileHash)
	}
	if ev.FileSize != int64(len(data)) {
		t.Errorf("Ingest() size = %d, want %d", ev.FileSize, len(data))
	}
	if ev.CaptureMetadata != nil {
		t.Errorf("Ingest() capture metadata = %+v, want nil", ev.CaptureMetadata)
	}
	if ev.AnalysisResult == nil {
		t.Fatal("Ingest() missing analysis result")
	}
	if !strings.Contains(ev.AnalysisResult.Explanation, "Dimensions 32x24.") {
		t.Errorf("Ingest() explanation = %q, want dimensions", ev.AnalysisResult.Explanation)
	}
	// small png, flood keyword: 0.5 - 0.1 + 0.1
	if math.Abs(ev.AnalysisResult.VisualRelevanceScore-0.5) > 1e-9 {
		t.Errorf("Ingest() relevance = %v, want 0.5", ev.AnalysisResult.VisualRelevanceScore)
	}
}

func TestIngestUploaderCapture(t *testing.T) {
	captured := time.Date(2024, 7, 18, 6, 30, 0, 0, time.UTC)
	ev, err := newTestIngestor().Ingest(Upload{
		ClaimID:         "claim-1",
		Filename:        "walkthrough.mp4",
		Content:         strings.NewReader("not really a video"),
		CaptureTime:     &captured,
		CaptureLocation: &models.Point{Lat: 10.9, Lng: 76.3},
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if ev.Type != models.EvidenceVideo {
		t.Errorf("Ingest() type = %v, want video", ev.Type)
	}
	if ev.CaptureMetadata == nil || ev.CaptureMetadata.Timestamp == nil || !ev.CaptureMetadata.Timestamp.Equal(captured) {
		t.Errorf("Ingest() capture metadata = %+v", ev.CaptureMetadata)
	}
	if ev.CaptureMetadata.Location == nil {
		t.Error("Ingest() lost capture location")
	}
}

func TestIngestRejects(t *testing.T) {
	in := newTestIngestor()
	in.MaxSize = 16

	tests := []struct {
		name    string
		upload  Upload
		wantErr error
	}{
		{"unsupported extension", Upload{Filename: "notes.pdf", Content: strings.NewReader("x")}, ErrUnsupportedType},
		{"too large", Upload{Filename: "big.jpg", Content: strings.NewReader(strings.Repeat("x", 17))}, ErrTooLarge},
		{"empty", Upload{Filename: "empty.jpg", Content: strings.NewReader("")}, ErrEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := in.Ingest(tt.upload)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Ingest() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestClassifyByContentType(t *testing.T) {
	tests := []struct {
		ext, contentType string
		want             models.EvidenceType
		wantErr          bool
	}{
		{".mov", "", models.EvidenceVideo, false},
		{".webp", "", models.EvidenceImage, false},
		{"", "video/mp4", models.EvidenceVideo, false},
		{"", "image/jpeg", models.EvidenceImage, false},
		{"", "application/pdf", "", true},
	}

	for _, tt := range tests {
		got, err := classify(tt.ext, tt.contentType)
		if (err != nil) != tt.wantErr {
			t.Errorf("classify(%q, %q) error = %v, wantErr %v", tt.ext, tt.contentType, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("classify(%q, %q) = %v, want %v", tt.ext, tt.contentType, got, tt.want)
		}
	}
}
