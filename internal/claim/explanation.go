package claim

import (
	"fmt"
	"strings"
)

const (
	strongEvidenceScore   = 75.0
	moderateEvidenceScore = 50.0
	relevantVisualScore   = 70.0
	uncertainVisualScore  = 40.0
)

func (s *Scorer) explain(overall float64, location, timing string, evidenceType, visual float64, evidenceCount int) string {
	var b strings.Builder

	b.WriteString(s.bandLabel(overall))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Location: %s\n", location)
	fmt.Fprintf(&b, "Timing: %s\n", timing)

	fmt.Fprintf(&b, "Evidence: %d file(s) submitted", evidenceCount)
	switch {
	case evidenceType >= strongEvidenceScore:
		b.WriteString(" (strong evidence collection)")
	case evidenceType >= moderateEvidenceScore:
		b.WriteString(" (moderate evidence)")
	default:
		b.WriteString(" (limited evidence)")
	}
	b.WriteString("\n")

	switch {
	case visual >= relevantVisualScore:
		b.WriteString("Visual Analysis: Evidence appears relevant to disaster context\n")
	case visual >= uncertainVisualScore:
		b.WriteString("Visual Analysis: Evidence relevance is uncertain\n")
	default:
		b.WriteString("Visual Analysis: Evidence may not be disaster-related\n")
	}

	b.WriteString("\n")
	b.WriteString("Final Decision: This is a preliminary assessment. Human authority must review and make final judgment.")

	return b.String()
}

// bandLabel shares thresholds with DeriveStatus
func (s *Scorer) bandLabel(overall float64) string {
	bands := s.cfg.Bands
	switch {
	case overall >= bands.HighConfidence:
		return "HIGH CONFIDENCE: This claim shows strong indicators of validity."
	case overall >= bands.NeedsReview:
		return "NEEDS REVIEW: This claim has moderate confidence and requires manual verification."
	case overall >= bands.LowConfidence:
		return "LOW CONFIDENCE: This claim has weak indicators and needs careful review."
	default:
		return "VERY LOW CONFIDENCE: This claim has significant concerns."
	}
}
