package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/sevenbarberclub/booking/pkg/logging"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *GoogleGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	gw, err := NewGoogleGateway(context.Background(), "", logging.New("error"),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return gw
}

func TestGoogleGatewayInsertsEvent(t *testing.T) {
	loc := time.FixedZone("ECT", -5*60*60)
	start := time.Date(2024, 6, 10, 10, 0, 0, 0, loc)

	var gotPath string
	var got gcal.Event
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":       "evt-123",
			"htmlLink": "https://calendar.google.com/event?eid=evt-123",
		})
	})

	created, err := gw.CreateEvent(context.Background(), "shop@example.com", Event{
		Title:       "Reserva: Corte con Josué - Juan",
		Description: "Cliente: Juan",
		Start:       start,
		End:         start.Add(time.Hour),
		Timezone:    "America/Guayaquil",
	})
	require.NoError(t, err)

	assert.Equal(t, "evt-123", created.ID)
	assert.Equal(t, "https://calendar.google.com/event?eid=evt-123", created.HTMLLink)
	assert.Equal(t, "/calendars/shop@example.com/events", gotPath)
	assert.Equal(t, "Reserva: Corte con Josué - Juan", got.Summary)
	assert.Equal(t, "2024-06-10T10:00:00-05:00", got.Start.DateTime)
	assert.Equal(t, "2024-06-10T11:00:00-05:00", got.End.DateTime)
	assert.Equal(t, "America/Guayaquil", got.Start.TimeZone)
}

func TestGoogleGatewaySurfacesAPIError(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"Requests quota exceeded"}}`))
	})

	_, err := gw.CreateEvent(context.Background(), "primary", Event{
		Start: time.Now(),
		End:   time.Now().Add(time.Hour),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Requests quota exceeded")
}

func TestNewGoogleGatewayRequiresCredentials(t *testing.T) {
	_, err := NewGoogleGateway(context.Background(), "", nil)
	assert.Error(t, err)
}
