package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestBookingMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)
	m.ObserveSubmission("created")
	m.ObserveSubmission("created")
	m.ObservePaymentGate("shown")
	m.ObserveCalendarInsert("ok", 0.25)

	if got := testutil.ToFloat64(m.submissionsTotal.WithLabelValues("created")); got != 2 {
		t.Fatalf("expected 2 created submissions, got %v", got)
	}
	if got := testutil.ToFloat64(m.paymentGateTotal.WithLabelValues("shown")); got != 1 {
		t.Fatalf("expected 1 gate shown, got %v", got)
	}
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveSubmission("invalid")
	m.ObservePaymentGate("shown")
	m.ObserveCalendarInsert("error", 0.1)
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)
	m.ObserveSubmission("payment_pending")

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "sevenbarber_booking_submissions_total") {
		t.Fatalf("expected submissions counter to be exported")
	}
}
