package reunify

import (
	"fmt"
	"strings"

	"github.com/claimsat/internal/models"
)

// Explanation band thresholds
const (
	HighMatchScore     = 75.0
	GoodMatchScore     = 60.0
	PossibleMatchScore = 40.0

	strongNameScore  = 90.0
	partialNameScore = 70.0
	closeAgeYears    = 3
)

func explain(confidence float64, f factors, mp models.MissingPerson, s models.Survivor) string {
	var b strings.Builder

	switch {
	case confidence >= HighMatchScore:
		b.WriteString("HIGH MATCH CONFIDENCE: Strong indicators suggest this could be the same person.")
	case confidence >= GoodMatchScore:
		b.WriteString("GOOD MATCH: Moderate to strong indicators present.")
	case confidence >= PossibleMatchScore:
		b.WriteString("POSSIBLE MATCH: Some indicators match but verification needed.")
	default:
		b.WriteString("WEAK MATCH: Limited matching indicators.")
	}
	b.WriteString("\n\n")

	switch {
	case f.name >= strongNameScore:
		fmt.Fprintf(&b, "Name: Very strong match (%.0f%% similar)\n", f.name)
	case f.name >= partialNameScore:
		fmt.Fprintf(&b, "Name: Partial match - could be nickname or variant (%.0f%% similar)\n", f.name)
	default:
		fmt.Fprintf(&b, "Name: Low similarity (%.0f%% similar)\n", f.name)
	}

	b.WriteString(ageLine(mp.Person.Age, s.Person.Age))

	switch {
	case s.Person.Gender == nil:
		b.WriteString("Gender: Survivor gender not recorded\n")
	case mp.Person.Gender == nil:
		b.WriteString("Gender: Missing person gender not recorded\n")
	case f.gender == 100:
		b.WriteString("Gender: Match\n")
	default:
		b.WriteString("Gender: Mismatch\n")
	}

	fmt.Fprintf(&b, "Location: %.1fkm apart\n", f.distanceKm)

	b.WriteString("\n")
	b.WriteString("IMPORTANT: This is an automated matching suggestion. Authority verification is MANDATORY before any reunion.")

	return b.String()
}

func ageLine(missingAge, survivorAge *int) string {
	if survivorAge == nil {
		return "Age: Survivor age not recorded\n"
	}
	if missingAge == nil {
		return "Age: Missing person age not recorded\n"
	}

	diff := *missingAge - *survivorAge
	if diff < 0 {
		diff = -diff
	}

	switch {
	case diff == 0:
		return fmt.Sprintf("Age: Exact match (%d years)\n", *missingAge)
	case diff <= closeAgeYears:
		return fmt.Sprintf("Age: Very close (±%d years)\n", diff)
	default:
		return fmt.Sprintf("Age: Difference of %d years\n", diff)
	}
}
