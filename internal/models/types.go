package models

import (
	"time"
)

// Point is a WGS84 coordinate
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Polygon holds GeoJSON-style rings of [lng, lat] vertices; rings[0] is the outer ring
type Polygon [][][]float64

// DisasterType categorises a disaster event
type DisasterType string

const (
	DisasterFlood      DisasterType = "flood"
	DisasterEarthquake DisasterType = "earthquake"
	DisasterCyclone    DisasterType = "cyclone"
	DisasterFire       DisasterType = "fire"
	DisasterLandslide  DisasterType = "landslide"
	DisasterOther      DisasterType = "other"
)

// Severity of a disaster
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// DisasterStatus is the lifecycle state of a disaster
type DisasterStatus string

const (
	DisasterActive     DisasterStatus = "active"
	DisasterMonitoring DisasterStatus = "monitoring"
	DisasterResolved   DisasterStatus = "resolved"
)

// Disaster is read-only reference data supplied by the disaster registry
type Disaster struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Type              DisasterType   `json:"type"`
	Area              Polygon        `json:"area"`
	Epicenter         *Point         `json:"epicenter,omitempty"`
	StartDate         time.Time      `json:"startDate"`
	EndDate           *time.Time     `json:"endDate,omitempty"`
	Severity          Severity       `json:"severity"`
	Status            DisasterStatus `json:"status"`
	AffectedAreaKm2   float64        `json:"affectedArea,omitempty"`
	EstimatedAffected int            `json:"estimatedAffected,omitempty"`
	Description       string         `json:"description,omitempty"`
}

// IsActive reports whether the disaster is still accepting claims and reports
func (d Disaster) IsActive() bool {
	return d.Status == DisasterActive || d.Status == DisasterMonitoring
}

// PropertyType of a damage claim
type PropertyType string

const (
	PropertyResidential  PropertyType = "residential"
	PropertyCommercial   PropertyType = "commercial"
	PropertyAgricultural PropertyType = "agricultural"
	PropertyVehicle      PropertyType = "vehicle"
	PropertyOther        PropertyType = "other"
)

// ClaimStatus is derived from the score at creation, then changed only by reviewers
type ClaimStatus string

const (
	ClaimPending     ClaimStatus = "pending"
	ClaimApproved    ClaimStatus = "approved"
	ClaimNeedsReview ClaimStatus = "needs_review"
	ClaimRejected    ClaimStatus = "rejected"
)

// ClaimLocation is where the damage occurred
type ClaimLocation struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

// Point returns the coordinate part of the location
func (l ClaimLocation) Point() Point {
	return Point{Lat: l.Lat, Lng: l.Lng}
}

// Claim is a post-disaster damage claim
type Claim struct {
	ID                string        `json:"id"`
	ClaimantName      string        `json:"claimantName"`
	ClaimantContact   string        `json:"claimantContact"`
	ClaimantAddress   string        `json:"claimantAddress,omitempty"`
	DisasterID        string        `json:"disasterId"`
	DisasterName      string        `json:"disasterName,omitempty"`
	PropertyType      PropertyType  `json:"propertyType"`
	DamageDescription string        `json:"damageDescription"`
	Location          ClaimLocation `json:"location"`
	IncidentDate      time.Time     `json:"incidentDate"`
	SubmittedAt       time.Time     `json:"submittedAt"`
	Evidence          []Evidence    `json:"evidence"`
	Score             ClaimScore    `json:"score"`
	Status            ClaimStatus   `json:"status"`
	ReviewedBy        string        `json:"reviewedBy,omitempty"`
	ReviewedAt        *time.Time    `json:"reviewedAt,omitempty"`
	ReviewNotes       string        `json:"reviewNotes,omitempty"`
}

// EvidenceType is the media kind of an uploaded file
type EvidenceType string

const (
	EvidenceImage EvidenceType = "image"
	EvidenceVideo EvidenceType = "video"
)

// CaptureMetadata is what the capturing device recorded, when available
type CaptureMetadata struct {
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Location  *Point     `json:"location,omitempty"`
	Device    string     `json:"device,omitempty"`
}

// AnalysisResult is the output contract of an evidence analyzer
type AnalysisResult struct {
	VisualRelevanceScore float64   `json:"visualRelevanceScore"` // [0,1]
	Explanation          string    `json:"explanation"`
	AnalyzedAt           time.Time `json:"analyzedAt"`
}

// Evidence is one uploaded file attached to a claim; immutable once created
type Evidence struct {
	ID              string           `json:"id"`
	ClaimID         string           `json:"claimId"`
	Type            EvidenceType     `json:"type"`
	Filename        string           `json:"filename"`
	FileURL         string           `json:"fileUrl,omitempty"`
	FileHash        string           `json:"fileHash"`
	FileSize        int64            `json:"fileSize,omitempty"`
	UploadedAt      time.Time        `json:"uploadedAt"`
	CaptureMetadata *CaptureMetadata `json:"captureMetadata,omitempty"`
	AnalysisResult  *AnalysisResult  `json:"analysisResult,omitempty"`
}

// ScoreBreakdown holds the five claim sub-scores, each in [0,100]
type ScoreBreakdown struct {
	LocationMatch     float64 `json:"locationMatch"`
	TimeProximity     float64 `json:"timeProximity"`
	EvidenceType      float64 `json:"evidenceType"`
	VisualRelevance   float64 `json:"visualRelevance"`
	MetadataIntegrity float64 `json:"metadataIntegrity"`
}

// ClaimScore is the explainable confidence score of a claim
type ClaimScore struct {
	Overall      float64        `json:"overall"`
	Breakdown    ScoreBreakdown `json:"breakdown"`
	Explanation  string         `json:"explanation"`
	CalculatedAt time.Time      `json:"calculatedAt"`
}

// ClaimEventType names an entry in a claim's history
type ClaimEventType string

const (
	EventCreated       ClaimEventType = "created"
	EventEvidenceAdded ClaimEventType = "evidence_added"
	EventScored        ClaimEventType = "scored"
	EventStatusChanged ClaimEventType = "status_changed"
	EventReviewed      ClaimEventType = "reviewed"
)

// ClaimEvent is an append-only audit entry for a claim
type ClaimEvent struct {
	ID          string                 `json:"id"`
	ClaimID     string                 `json:"claimId"`
	EventType   ClaimEventType         `json:"eventType"`
	Timestamp   time.Time              `json:"timestamp"`
	Data        map[string]interface{} `json:"data,omitempty"`
	PerformedBy string                 `json:"performedBy,omitempty"`
}
