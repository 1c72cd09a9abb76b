package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/claimsat/internal/models"
)

// Metrics holds the engine and service collectors on their own registry
type Metrics struct {
	registry *prometheus.Registry

	claimsScored    *prometheus.CounterVec
	claimScore      prometheus.Histogram
	claimsReviewed  *prometheus.CounterVec
	matchesFound    prometheus.Counter
	matchConfidence prometheus.Histogram
	matchVerified   *prometheus.CounterVec
	batchDuration   prometheus.Summary
}

// scoreBuckets align with the claim and match bands
var scoreBuckets = []float64{10, 25, 40, 50, 60, 75, 90, 100}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.claimsScored = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "claimsat",
		Name:      "claims_scored_total",
		Help:      "Claims scored at creation by derived status",
	}, []string{"status"})
	m.claimScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "claimsat",
		Name:      "claim_score",
		Help:      "Overall claim confidence scores",
		Buckets:   scoreBuckets,
	})
	m.claimsReviewed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "claimsat",
		Name:      "claims_reviewed_total",
		Help:      "Reviewer decisions by resulting status",
	}, []string{"status"})
	m.matchesFound = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "claimsat",
		Name:      "matches_found_total",
		Help:      "Reunification matches at or above the confidence threshold",
	})
	m.matchConfidence = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "claimsat",
		Name:      "match_confidence",
		Help:      "Confidence of reported reunification matches",
		Buckets:   scoreBuckets,
	})
	m.matchVerified = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "claimsat",
		Name:      "match_verifications_total",
		Help:      "Authority verification decisions by resulting status",
	}, []string{"status"})
	m.batchDuration = prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: "claimsat",
		Name:      "batch_duration_seconds",
		Help:      "Time spent in batch matching runs",
	})

	m.registry.MustRegister(
		m.claimsScored, m.claimScore, m.claimsReviewed,
		m.matchesFound, m.matchConfidence, m.matchVerified,
		m.batchDuration,
	)
	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ClaimScored records a scored claim. Safe on a nil receiver.
func (m *Metrics) ClaimScored(status models.ClaimStatus, overall float64) {
	if m == nil {
		return
	}
	m.claimsScored.WithLabelValues(string(status)).Inc()
	m.claimScore.Observe(overall)
}

// ClaimReviewed records a reviewer decision. Safe on a nil receiver.
func (m *Metrics) ClaimReviewed(status models.ClaimStatus) {
	if m == nil {
		return
	}
	m.claimsReviewed.WithLabelValues(string(status)).Inc()
}

// MatchesFound records reported matches. Safe on a nil receiver.
func (m *Metrics) MatchesFound(matches []models.ReunifyMatch) {
	if m == nil {
		return
	}
	for _, match := range matches {
		m.matchesFound.Inc()
		m.matchConfidence.Observe(match.ConfidenceScore)
	}
}

// MatchVerified records an authority decision on a match. Safe on a nil receiver.
func (m *Metrics) MatchVerified(status models.MatchStatus) {
	if m == nil {
		return
	}
	m.matchVerified.WithLabelValues(string(status)).Inc()
}

// BatchFinished records the duration of a batch run started at start. Safe on a nil receiver.
func (m *Metrics) BatchFinished(start time.Time) {
	if m == nil {
		return
	}
	m.batchDuration.Observe(time.Since(start).Seconds())
}
