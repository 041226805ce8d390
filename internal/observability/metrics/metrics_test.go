package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestWebhookMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWebhookMetrics(reg)

	m.ObserveIntent("Booking Intent", "handled")
	m.ObserveIntent("Booking Intent", "handled")
	m.ObserveDependency("airtable", nil)
	m.ObserveDependency("airtable", errors.New("boom"))
	m.ObserveLatency("Booking Intent", 0.25)
	m.ObserveBooking("group")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.intentTotal.WithLabelValues("Booking Intent", "handled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dependencyCall.WithLabelValues("airtable", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dependencyCall.WithLabelValues("airtable", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingsTotal.WithLabelValues("group")))
}

func TestWebhookMetricsNilSafe(t *testing.T) {
	var m *WebhookMetrics
	m.ObserveIntent("intent", "handled")
	m.ObserveDependency("gemini", nil)
	m.ObserveLatency("intent", 0.1)
	m.ObserveBooking("table")
}
