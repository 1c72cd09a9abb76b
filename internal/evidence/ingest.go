package evidence

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp"

	"github.com/claimsat/internal/models"
)

// MaxUploadSize is the largest evidence file accepted (10 MiB)
const MaxUploadSize = 10 << 20

var (
	ErrTooLarge        = errors.New("evidence file exceeds upload limit")
	ErrUnsupportedType = errors.New("unsupported evidence file type")
	ErrEmpty           = errors.New("evidence file is empty")
)

var (
	imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}
	videoExtensions = map[string]bool{".mp4": true, ".mov": true, ".avi": true}
)

// Upload is one file handed over by the upload pipeline
type Upload struct {
	ClaimID     string
	Filename    string
	ContentType string
	ContentRef  string
	Content     io.Reader

	// Capture details supplied by the uploader; EXIF data wins when present
	CaptureTime     *time.Time
	CaptureLocation *models.Point
	Device          string
}

// Ingestor turns uploads into immutable Evidence records
type Ingestor struct {
	Analyzer Analyzer
	Clock    models.Clock
	NewID    func() string
	MaxSize  int64
}

// NewIngestor creates an ingestor with the given analyzer
func NewIngestor(analyzer Analyzer, clock models.Clock) *Ingestor {
	if clock == nil {
		clock = models.SystemClock{}
	}
	return &Ingestor{
		Analyzer: analyzer,
		Clock:    clock,
		NewID:    func() string { return "ev-" + uuid.NewString() },
		MaxSize:  MaxUploadSize,
	}
}

// Ingest hashes, classifies and analyzes one uploaded file
func (in *Ingestor) Ingest(up Upload) (models.Evidence, error) {
	ext := strings.ToLower(filepath.Ext(up.Filename))
	evType, err := classify(ext, up.ContentType)
	if err != nil {
		return models.Evidence{}, fmt.Errorf("%s: %w", up.Filename, err)
	}

	data, err := io.ReadAll(io.LimitReader(up.Content, in.MaxSize+1))
	if err != nil {
		return models.Evidence{}, fmt.Errorf("failed to read %s: %w", up.Filename, err)
	}
	if len(data) == 0 {
		return models.Evidence{}, fmt.Errorf("%s: %w", up.Filename, ErrEmpty)
	}
	if int64(len(data)) > in.MaxSize {
		return models.Evidence{}, fmt.Errorf("%s: %w", up.Filename, ErrTooLarge)
	}

	sum := sha256.Sum256(data)

	meta := Metadata{
		Type:     evType,
		Filename: up.Filename,
		Size:     int64(len(data)),
	}
	if evType == models.EvidenceImage {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			meta.Width, meta.Height = cfg.Width, cfg.Height
		}
	}

	ev := models.Evidence{
		ID:              in.NewID(),
		ClaimID:         up.ClaimID,
		Type:            evType,
		Filename:        up.Filename,
		FileURL:         up.ContentRef,
		FileHash:        hex.EncodeToString(sum[:]),
		FileSize:        int64(len(data)),
		UploadedAt:      in.Clock.Now(),
		CaptureMetadata: captureMetadata(data, ext, up),
	}

	if in.Analyzer != nil {
		result, err := in.Analyzer.Analyze(meta)
		if err != nil {
			return models.Evidence{}, fmt.Errorf("failed to analyze %s: %w", up.Filename, err)
		}
		result.VisualRelevanceScore = models.Clamp(result.VisualRelevanceScore, 0, 1)
		ev.AnalysisResult = &result
	}

	return ev, nil
}

func classify(ext, contentType string) (models.EvidenceType, error) {
	switch {
	case videoExtensions[ext]:
		return models.EvidenceVideo, nil
	case imageExtensions[ext]:
		return models.EvidenceImage, nil
	case ext == "" && strings.HasPrefix(contentType, "video/"):
		return models.EvidenceVideo, nil
	case ext == "" && strings.HasPrefix(contentType, "image/"):
		return models.EvidenceImage, nil
	}
	return "", ErrUnsupportedType
}

// captureMetadata merges EXIF data from JPEGs with what the uploader supplied
func captureMetadata(data []byte, ext string, up Upload) *models.CaptureMetadata {
	meta := models.CaptureMetadata{
		Timestamp: up.CaptureTime,
		Location:  up.CaptureLocation,
		Device:    up.Device,
	}

	if ext == ".jpg" || ext == ".jpeg" {
		if x, err := exif.Decode(bytes.NewReader(data)); err == nil {
			if ts, err := x.DateTime(); err == nil {
				ts = ts.UTC()
				meta.Timestamp = &ts
			}
			if lat, lng, err := x.LatLong(); err == nil {
				meta.Location = &models.Point{Lat: lat, Lng: lng}
			}
			if tag, err := x.Get(exif.Model); err == nil {
				if model, err := tag.StringVal(); err == nil && model != "" {
					meta.Device = model
				}
			}
		}
	}

	if meta.Timestamp == nil && meta.Location == nil && meta.Device == "" {
		return nil
	}
	return &meta
}
