package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BookingMetrics exposes counters/histograms for the booking flow.
type BookingMetrics struct {
	submissionsTotal *prometheus.CounterVec
	paymentGateTotal *prometheus.CounterVec
	calendarLatency  *prometheus.HistogramVec
}

// NewBookingMetrics registers the collectors on reg, or the default registerer when nil.
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sevenbarber",
			Subsystem: "booking",
			Name:      "submissions_total",
			Help:      "Booking submissions by result",
		}, []string{"result"}),
		paymentGateTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sevenbarber",
			Subsystem: "booking",
			Name:      "payment_gate_total",
			Help:      "Payment gate events (shown, acknowledged)",
		}, []string{"event"}),
		calendarLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sevenbarber",
			Subsystem: "calendar",
			Name:      "insert_latency_seconds",
			Help:      "Latency of calendar event inserts",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.paymentGateTotal, m.calendarLatency)
	return m
}

func (m *BookingMetrics) ObserveSubmission(result string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(result).Inc()
}

func (m *BookingMetrics) ObservePaymentGate(event string) {
	if m == nil {
		return
	}
	m.paymentGateTotal.WithLabelValues(event).Inc()
}

func (m *BookingMetrics) ObserveCalendarInsert(result string, seconds float64) {
	if m == nil {
		return
	}
	m.calendarLatency.WithLabelValues(result).Observe(seconds)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
