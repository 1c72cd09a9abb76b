package handlers

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/claimsat/internal/evidence"
	"github.com/claimsat/internal/models"
	"github.com/claimsat/internal/service"
)

// MaxEvidenceFiles is the most files accepted with one claim
const MaxEvidenceFiles = 5

// ClaimsHandler handles claim submission and review endpoints
type ClaimsHandler struct {
	Claims   *service.ClaimService
	Ingestor *evidence.Ingestor
	Config   *Config
}

// ReviewRequest is a reviewer's decision on a claim
type ReviewRequest struct {
	Decision   service.Decision `json:"decision"`
	ReviewedBy string           `json:"reviewedBy"`
	Notes      string           `json:"notes"`
}

// ScoreResponse is the stateless preview of a claim score
type ScoreResponse struct {
	Score  models.ClaimScore  `json:"score"`
	Status models.ClaimStatus `json:"status"`
}

// errClientEvidence rejects evidence records written by the client. Hashes, capture
// metadata and analysis only come from ingesting uploaded files.
var errClientEvidence = fmt.Errorf("%w: evidence must be uploaded as files in the \"evidence\" form field", service.ErrInvalidInput)

// readClaim decodes a claim from a JSON body, or from a multipart form carrying the
// claim JSON in the "claim" field and files in "evidence"
func (h *ClaimsHandler) readClaim(w http.ResponseWriter, r *http.Request) (models.Claim, error) {
	var c models.Claim

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			return c, fmt.Errorf("%w: invalid JSON: %v", service.ErrInvalidInput, err)
		}
		if len(c.Evidence) > 0 {
			return c, errClientEvidence
		}
		return c, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, (MaxEvidenceFiles+1)*evidence.MaxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return c, fmt.Errorf("%w: invalid form: %v", service.ErrInvalidInput, err)
	}
	if err := json.Unmarshal([]byte(r.FormValue("claim")), &c); err != nil {
		return c, fmt.Errorf("%w: invalid claim field: %v", service.ErrInvalidInput, err)
	}
	if len(c.Evidence) > 0 {
		return c, errClientEvidence
	}

	files := r.MultipartForm.File["evidence"]
	if len(files) > MaxEvidenceFiles {
		return c, fmt.Errorf("%w: at most %d evidence files", service.ErrInvalidInput, MaxEvidenceFiles)
	}

	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return c, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
		}
		ev, err := h.Ingestor.Ingest(evidence.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     f,
		})
		f.Close()
		if err != nil {
			return c, fmt.Errorf("%s: %w", fh.Filename, err)
		}
		c.Evidence = append(c.Evidence, ev)
	}
	return c, nil
}

// CreateClaim scores and stores a new claim
func (h *ClaimsHandler) CreateClaim(w http.ResponseWriter, r *http.Request) {
	c, err := h.readClaim(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	created, err := h.Claims.Create(r.Context(), false, c)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ScoreClaim returns the score a claim would get without storing it
func (h *ClaimsHandler) ScoreClaim(w http.ResponseWriter, r *http.Request) {
	c, err := h.readClaim(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	score, status, err := h.Claims.Preview(c)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ScoreResponse{Score: score, Status: status})
}

// ListClaims returns a page of claims, optionally filtered by status
func (h *ClaimsHandler) ListClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := h.Claims.List(r.Context(), models.ClaimStatus(r.URL.Query().Get("status")))
	if err != nil {
		writeError(w, err)
		return
	}

	page, perPage, start, end := paginate(r, len(claims))
	writeJSON(w, http.StatusOK, ListResponse{
		Items:   claims[start:end],
		Total:   len(claims),
		Page:    page,
		PerPage: perPage,
	})
}

// GetClaim returns one claim
func (h *ClaimsHandler) GetClaim(w http.ResponseWriter, r *http.Request) {
	c, err := h.Claims.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ReviewClaim records a reviewer's approve or reject decision
func (h *ClaimsHandler) ReviewClaim(w http.ResponseWriter, r *http.Request) {
	if !h.Config.Features.ReviewEnabled {
		http.Error(w, "Feature disabled", http.StatusForbidden)
		return
	}

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	req.Decision = service.Decision(strings.ToLower(string(req.Decision)))

	reviewed, err := h.Claims.Review(r.Context(), false, mux.Vars(r)["id"], req.Decision, req.ReviewedBy, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviewed)
}

// GetEvents returns a claim's audit history
func (h *ClaimsHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Claims.Events(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
