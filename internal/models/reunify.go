package models

import (
	"time"
)

// Gender as reported for a person
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// MissingStatus is the search state of a missing person
type MissingStatus string

const (
	MissingSearching MissingStatus = "searching"
	MissingFound     MissingStatus = "found"
	MissingReunited  MissingStatus = "reunited"
	MissingClosed    MissingStatus = "closed"
)

// SurvivorStatus is the registration state of a survivor
type SurvivorStatus string

const (
	SurvivorRegistered  SurvivorStatus = "registered"
	SurvivorMatched     SurvivorStatus = "matched"
	SurvivorReunited    SurvivorStatus = "reunited"
	SurvivorTransferred SurvivorStatus = "transferred"
)

// MatchStatus is the verification state of a match. Only authorities move it
// past pending_verification.
type MatchStatus string

const (
	MatchPendingVerification MatchStatus = "pending_verification"
	MatchVerified            MatchStatus = "verified"
	MatchRejected            MatchStatus = "rejected"
	MatchReunited            MatchStatus = "reunited"
)

// MissingReporter is the family member or friend who filed the report
type MissingReporter struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	Contact      string `json:"contact"`
}

// MissingPersonDetails describes the person being searched for
type MissingPersonDetails struct {
	Name                string  `json:"name"`
	Age                 *int    `json:"age,omitempty"`
	Gender              *Gender `json:"gender,omitempty"`
	PhysicalDescription string  `json:"physicalDescription,omitempty"`
	LastKnownClothing   string  `json:"lastKnownClothing,omitempty"`
	MedicalConditions   string  `json:"medicalConditions,omitempty"`
}

// Sighting is a located, timestamped event (last seen / found)
type Sighting struct {
	Location      string    `json:"location,omitempty"`
	Coordinates   Point     `json:"coordinates"`
	Timestamp     time.Time `json:"timestamp"`
	Circumstances string    `json:"circumstances,omitempty"`
	ShelterName   string    `json:"shelterName,omitempty"`
}

// MissingPerson is a reunification request
type MissingPerson struct {
	ID         string               `json:"id"`
	ReportedBy MissingReporter      `json:"reportedBy"`
	DisasterID string               `json:"disasterId"`
	Person     MissingPersonDetails `json:"person"`
	LastSeenAt Sighting             `json:"lastSeenAt"`
	ReportedAt time.Time            `json:"reportedAt"`
	Status     MissingStatus        `json:"status"`
}

// SurvivorReporter is the organisation that registered the survivor
type SurvivorReporter struct {
	Organization string `json:"organization"`
	ReporterName string `json:"reporterName,omitempty"`
	Contact      string `json:"contact,omitempty"`
}

// SurvivorDetails may be incomplete: age, gender and description can be unknown
type SurvivorDetails struct {
	Name                string  `json:"name"`
	Age                 *int    `json:"age,omitempty"`
	Gender              *Gender `json:"gender,omitempty"`
	PhysicalDescription string  `json:"physicalDescription,omitempty"`
	MedicalStatus       string  `json:"medicalStatus,omitempty"`
}

// Survivor is a person registered at a shelter or by a relief organisation
type Survivor struct {
	ID         string           `json:"id"`
	ReportedBy SurvivorReporter `json:"reportedBy"`
	DisasterID string           `json:"disasterId"`
	Person     SurvivorDetails  `json:"person"`
	FoundAt    Sighting         `json:"foundAt"`
	ReportedAt time.Time        `json:"reportedAt"`
	Status     SurvivorStatus   `json:"status"`
}

// MatchBreakdown holds the five match sub-scores, each in [0,100]
type MatchBreakdown struct {
	NameSimilarity                float64 `json:"nameSimilarity"`
	AgeOverlap                    float64 `json:"ageOverlap"`
	GenderMatch                   float64 `json:"genderMatch"`
	LocationProximity             float64 `json:"locationProximity"`
	PhysicalDescriptionSimilarity float64 `json:"physicalDescriptionSimilarity"`
}

// ReunifyMatch is a suggested pairing awaiting authority verification
type ReunifyMatch struct {
	ID                string         `json:"id"`
	MissingPersonID   string         `json:"missingPersonId"`
	SurvivorID        string         `json:"survivorId"`
	ConfidenceScore   float64        `json:"confidenceScore"`
	Breakdown         MatchBreakdown `json:"breakdown"`
	Explanation       string         `json:"explanation"`
	MatchedAt         time.Time      `json:"matchedAt"`
	Status            MatchStatus    `json:"status"`
	VerifiedBy        string         `json:"verifiedBy,omitempty"`
	VerifiedAt        *time.Time     `json:"verifiedAt,omitempty"`
	VerificationNotes string         `json:"verificationNotes,omitempty"`
}

// Pair identifies a (missing person, survivor) pair
type Pair struct {
	MissingPersonID string
	SurvivorID      string
}

// PairKey identifies the match's pair for deduplication
func (m ReunifyMatch) PairKey() Pair {
	return Pair{MissingPersonID: m.MissingPersonID, SurvivorID: m.SurvivorID}
}
