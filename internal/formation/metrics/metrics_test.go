package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestValidationFailuresCountSectionsOnce(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementValidationFailures([]string{
		"shareholders", "shareholders.0.full_name", "shareholders.1.address", "directors.0.consent_to_act",
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationFailures.WithLabelValues("shareholders")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationFailures.WithLabelValues("directors")))
}

func TestDraftCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementDraftSaved(2)
	m.IncrementDraftSaved(2)
	m.AddDraftsCleaned(0)
	m.AddDraftsCleaned(5)
	m.SetRecentDrafts(7)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DraftsSaved.WithLabelValues("2")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.DraftsCleaned))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.RecentDrafts))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementSubmitted()
		m.IncrementValidationFailures([]string{"shareholders"})
		m.IncrementTransition("submitted", "under_review")
		m.IncrementReferenceCollision()
		m.IncrementDraftSaved(1)
		m.AddDraftsCleaned(3)
		m.SetRecentDrafts(1)
	})
}
