package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/sevenbarberclub/booking/internal/booking"
	"github.com/sevenbarberclub/booking/internal/calendar"
	"github.com/sevenbarberclub/booking/internal/catalog"
	"github.com/sevenbarberclub/booking/internal/payments"
	"github.com/sevenbarberclub/booking/internal/receipts"
	"github.com/sevenbarberclub/booking/internal/sessions"
	"github.com/sevenbarberclub/booking/pkg/logging"
)

type testEnv struct {
	handler *BookingHandler
	store   *sessions.MemoryStore
	gateway *calendar.MemoryGateway
	router  http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	qr, err := payments.LoadQR(payments.QRConfig{Payload: "https://pay.example.com/seven"})
	require.NoError(t, err)
	return newTestEnvWithQR(t, qr)
}

func newTestEnvWithQR(t *testing.T, qr *payments.QRCode) *testEnv {
	t.Helper()
	logger := logging.New("error")
	gw := calendar.NewMemoryGateway()
	flow, err := booking.NewFlow(booking.Config{
		CalendarID: "shop@example.com",
		Timezone:   "America/Guayaquil",
		ShopName:   "Seven Barber Club",
	}, catalog.Default(), gw, logger)
	require.NoError(t, err)

	store := sessions.NewMemoryStore(0)
	h := NewBookingHandler(BookingHandlerConfig{
		Flow:     flow,
		Store:    store,
		QR:       qr,
		Receipts: receipts.Renderer{ShopName: "Seven Barber Club"},
		Logger:   logger,
	})

	r := chi.NewRouter()
	r.Get("/health", h.HealthCheck)
	r.Get("/api/catalog", h.Catalog)
	r.Post("/api/sessions", h.CreateSession)
	r.Route("/api/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Put("/form", h.UpdateForm)
		r.Post("/submit", h.Submit)
		r.Post("/payment/confirm", h.ConfirmPayment)
		r.Get("/payment/qr.png", h.PaymentQR)
		r.Get("/receipt.pdf", h.Receipt)
	})

	return &testEnv{handler: h, store: store, gateway: gw, router: r}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) newSession(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var view sessionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.NotEmpty(t, view.ID)
	return view.ID
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func juanForm(barber string) booking.Request {
	return booking.Request{
		ClientName: "Juan",
		WhatsApp:   "0991234567",
		Date:       "2024-06-10",
		Time:       "10:00",
		Service:    "corte-tijera",
		Barber:     barber,
	}
}
