package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the formation module. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	ApplicationsSubmitted prometheus.Counter
	ValidationFailures    *prometheus.CounterVec
	StatusTransitions     *prometheus.CounterVec
	ReferenceCollisions   prometheus.Counter
	SubmitDuration        prometheus.Histogram
	DraftsSaved           *prometheus.CounterVec
	DraftsCleaned         prometheus.Counter
	RecentDrafts          prometheus.Gauge
}

// New registers the formation metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ApplicationsSubmitted: f.NewCounter(prometheus.CounterOpts{
			Name: "formation_applications_submitted_total",
			Help: "Total number of company formation applications accepted",
		}),
		ValidationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "formation_validation_failures_total",
			Help: "Validation failures by top-level payload section",
		}, []string{"section"}),
		StatusTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "formation_status_transitions_total",
			Help: "Application status transitions by source and target status",
		}, []string{"from", "to"}),
		ReferenceCollisions: f.NewCounter(prometheus.CounterOpts{
			Name: "formation_reference_collisions_total",
			Help: "Generated reference numbers that were already taken",
		}),
		SubmitDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "formation_submit_duration_seconds",
			Help:    "Duration of application submission including persistence",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		DraftsSaved: f.NewCounterVec(prometheus.CounterOpts{
			Name: "formation_drafts_saved_total",
			Help: "Draft auto-saves by form step",
		}, []string{"step"}),
		DraftsCleaned: f.NewCounter(prometheus.CounterOpts{
			Name: "formation_drafts_cleaned_total",
			Help: "Stale drafts removed by cleanup",
		}),
		RecentDrafts: f.NewGauge(prometheus.GaugeOpts{
			Name: "formation_recent_drafts",
			Help: "Drafts saved within the last 24 hours, refreshed by the cleanup job",
		}),
	}
}

func (m *Metrics) IncrementSubmitted() {
	if m != nil {
		m.ApplicationsSubmitted.Inc()
	}
}

// IncrementValidationFailures counts each failing section once. Field paths
// like "shareholders.0.full_name" are reduced to "shareholders".
func (m *Metrics) IncrementValidationFailures(fields []string) {
	if m == nil {
		return
	}
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		section, _, _ := strings.Cut(f, ".")
		if _, ok := seen[section]; ok {
			continue
		}
		seen[section] = struct{}{}
		m.ValidationFailures.WithLabelValues(section).Inc()
	}
}

func (m *Metrics) IncrementTransition(from, to string) {
	if m != nil {
		m.StatusTransitions.WithLabelValues(from, to).Inc()
	}
}

func (m *Metrics) IncrementReferenceCollision() {
	if m != nil {
		m.ReferenceCollisions.Inc()
	}
}

// ObserveSubmit records the duration of a submission started at start.
func (m *Metrics) ObserveSubmit(start time.Time) {
	if m != nil {
		m.SubmitDuration.Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) IncrementDraftSaved(step int) {
	if m != nil {
		m.DraftsSaved.WithLabelValues(strconv.Itoa(step)).Inc()
	}
}

func (m *Metrics) AddDraftsCleaned(n int64) {
	if m != nil && n > 0 {
		m.DraftsCleaned.Add(float64(n))
	}
}

func (m *Metrics) SetRecentDrafts(n int64) {
	if m != nil {
		m.RecentDrafts.Set(float64(n))
	}
}
