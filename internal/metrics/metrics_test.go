package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCounters(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.StageFallback("content")
	r.StageFallback("content")
	r.ReminderSent()
	r.ObserveStage("content", 3*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.PersonalizationFallbacks.WithLabelValues("content")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.RemindersSent))
}

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.StageFallback("content")
		r.ObserveStage("content", time.Second)
		r.ReminderSent()
		r.ObserveHTTP("GET", "/health", 200, time.Millisecond)
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := New(prometheus.NewRegistry())
	r.ReminderSent()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "learnpath_reminders_sent_total 1")
}
