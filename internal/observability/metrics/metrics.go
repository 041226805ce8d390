package metrics

import "github.com/prometheus/client_golang/prometheus"

// WebhookMetrics exposes counters/histograms for fulfillment webhook traffic.
type WebhookMetrics struct {
	intentTotal    *prometheus.CounterVec
	dependencyCall *prometheus.CounterVec
	webhookLatency *prometheus.HistogramVec
	bookingsTotal  *prometheus.CounterVec
}

func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	m := &WebhookMetrics{
		intentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "venuebooking",
			Subsystem: "webhook",
			Name:      "intent_total",
			Help:      "Total fulfillment requests by intent and outcome",
		}, []string{"intent", "outcome"}),
		dependencyCall: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "venuebooking",
			Subsystem: "webhook",
			Name:      "dependency_calls_total",
			Help:      "Calls to external collaborators by dependency and status",
		}, []string{"dependency", "status"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "venuebooking",
			Subsystem: "webhook",
			Name:      "latency_seconds",
			Help:      "Latency of fulfillment request handling",
			Buckets:   prometheus.DefBuckets,
		}, []string{"intent"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "venuebooking",
			Subsystem: "bookings",
			Name:      "finalized_total",
			Help:      "Finalized bookings by type",
		}, []string{"type"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.intentTotal, m.dependencyCall, m.webhookLatency, m.bookingsTotal)
	return m
}

func (m *WebhookMetrics) ObserveIntent(intent, outcome string) {
	if m == nil {
		return
	}
	m.intentTotal.WithLabelValues(intent, outcome).Inc()
}

func (m *WebhookMetrics) ObserveDependency(dependency string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.dependencyCall.WithLabelValues(dependency, status).Inc()
}

func (m *WebhookMetrics) ObserveLatency(intent string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(intent).Observe(seconds)
}

func (m *WebhookMetrics) ObserveBooking(bookingType string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(bookingType).Inc()
}
