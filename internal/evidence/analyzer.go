package evidence

import (
	"fmt"
	"strings"

	"github.com/claimsat/internal/models"
)

// Metadata is everything an analyzer may look at. Content stays with the ingestion
// pipeline; analyzers only see what was measured from it.
type Metadata struct {
	Type     models.EvidenceType
	Filename string
	Size     int64
	Width    int
	Height   int
}

// Analyzer produces a visual relevance estimate for one evidence file.
// Implementations must return a VisualRelevanceScore in [0,1].
type Analyzer interface {
	Analyze(meta Metadata) (models.AnalysisResult, error)
}

var (
	relevantKeywords = []string{"damage", "flood", "destroyed", "broken", "disaster", "aftermath"}
	stockKeywords    = []string{"sample", "test", "stock", "demo", "example"}
)

const (
	highResBytes = 2000000
	lowResBytes  = 100000
)

// HeuristicAnalyzer scores evidence from file type, size and filename alone.
// It does no image analysis and is meant to be replaced by a real backend.
type HeuristicAnalyzer struct {
	Clock models.Clock
}

// NewHeuristicAnalyzer creates a heuristic analyzer stamping results with clock
func NewHeuristicAnalyzer(clock models.Clock) *HeuristicAnalyzer {
	if clock == nil {
		clock = models.SystemClock{}
	}
	return &HeuristicAnalyzer{Clock: clock}
}

// Analyze implements Analyzer
func (h *HeuristicAnalyzer) Analyze(meta Metadata) (models.AnalysisResult, error) {
	filename := strings.ToLower(meta.Filename)
	score := 0.5

	var explanation strings.Builder

	if meta.Type == models.EvidenceVideo {
		score += 0.15
		explanation.WriteString("Video evidence provides temporal context. ")
	} else {
		explanation.WriteString("Static image evidence. ")
		if meta.Width > 0 && meta.Height > 0 {
			fmt.Fprintf(&explanation, "Dimensions %dx%d. ", meta.Width, meta.Height)
		}
	}

	if meta.Type == models.EvidenceImage {
		if meta.Size > highResBytes {
			score += 0.1
			explanation.WriteString("High resolution image detected. ")
		} else if meta.Size < lowResBytes {
			score -= 0.1
			explanation.WriteString("Low resolution image. ")
		}
	}

	if containsAny(filename, relevantKeywords) {
		score += 0.1
		explanation.WriteString("Filename suggests disaster-related content. ")
	}

	if containsAny(filename, stockKeywords) {
		score -= 0.3
		explanation.WriteString("Possible stock/test image. ")
	}

	score = models.Clamp(score, 0, 1)

	explanation.WriteString("Note: This is a lightweight heuristic analysis. Manual review recommended.")

	return models.AnalysisResult{
		VisualRelevanceScore: score,
		Explanation:          strings.TrimSpace(explanation.String()),
		AnalyzedAt:           h.Clock.Now(),
	}, nil
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
