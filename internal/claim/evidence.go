package claim

import (
	"github.com/claimsat/internal/models"
)

const (
	videoEvidenceScore     = 90.0
	manyImagesScore        = 75.0
	fewImagesScore         = 60.0
	manyImagesCount        = 3
	neutralRelevance       = 50.0
	metadataBase           = 70.0
	metadataTimestampBonus = 10.0
	metadataLocationBonus  = 20.0
)

// EvidenceTypeScore rates the kind of evidence collected: any video beats many images
// beats a couple of images.
func EvidenceTypeScore(evidence []models.Evidence) float64 {
	if len(evidence) == 0 {
		return 0
	}

	images := 0
	for _, ev := range evidence {
		switch ev.Type {
		case models.EvidenceVideo:
			return videoEvidenceScore
		case models.EvidenceImage:
			images++
		}
	}

	switch {
	case images >= manyImagesCount:
		return manyImagesScore
	case images >= 1:
		return fewImagesScore
	}
	return 0
}

// VisualRelevanceScore averages analyzer relevance over the analyzed evidence, scaled to
// [0,100]. Evidence without any analysis is neutral.
func VisualRelevanceScore(evidence []models.Evidence) float64 {
	if len(evidence) == 0 {
		return 0
	}

	var total float64
	analyzed := 0
	for _, ev := range evidence {
		if ev.AnalysisResult == nil {
			continue
		}
		total += models.Clamp(ev.AnalysisResult.VisualRelevanceScore, 0, 1)
		analyzed++
	}

	if analyzed == 0 {
		return neutralRelevance
	}
	return models.Clamp(total/float64(analyzed)*100, 0, 100)
}

// MetadataIntegrityScore rewards evidence that carries its own capture time and place
func MetadataIntegrityScore(evidence []models.Evidence) float64 {
	if len(evidence) == 0 {
		return 0
	}

	var hasTimestamp, hasLocation bool
	for _, ev := range evidence {
		if ev.CaptureMetadata == nil {
			continue
		}
		if ev.CaptureMetadata.Timestamp != nil {
			hasTimestamp = true
		}
		if ev.CaptureMetadata.Location != nil {
			hasLocation = true
		}
	}

	score := metadataBase
	if hasTimestamp {
		score += metadataTimestampBonus
	}
	if hasLocation {
		score += metadataLocationBonus
	}
	return models.Clamp(score, 0, 100)
}
