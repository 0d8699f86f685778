package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/sevenbarberclub/booking/internal/config"
	"github.com/sevenbarberclub/booking/pkg/logging"
)

func TestSetupBookingMetricsExposesMetrics(t *testing.T) {
	handler, metrics := setupBookingMetrics()
	require.NotNil(t, handler)
	require.NotNil(t, metrics)

	metrics.ObserveSubmission("created")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "sevenbarber_booking_submissions_total")
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}

func testConfig() *appconfig.Config {
	return &appconfig.Config{
		Env:               "test",
		ShopName:          "Seven Barber Club",
		UseMemorySessions: true,
		UseFakeCalendar:   true,
		CalendarTimezone:  "America/Guayaquil",
		PaymentQRPayload:  "https://pay.example.com/seven",
	}
}

func TestReceiptRendererCarriesShopAddress(t *testing.T) {
	cfg := testConfig()
	cfg.ShopAddress = "Av. 9 de Octubre 123, Guayaquil"
	r := receiptRenderer(cfg)
	assert.Equal(t, "Seven Barber Club", r.ShopName)
	assert.Equal(t, "Av. 9 de Octubre 123, Guayaquil", r.Address)
}

func TestBuildHandlerServesHealth(t *testing.T) {
	handler, redisClient, err := buildHandler(context.Background(), testConfig(), logging.New("error"))
	require.NoError(t, err)
	assert.Nil(t, redisClient)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "corte-tijera"))
}

func TestBuildHandlerRejectsBadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"services":[]}`), 0o600))

	cfg := testConfig()
	cfg.CatalogFile = path
	_, _, err := buildHandler(context.Background(), cfg, logging.New("error"))
	assert.Error(t, err)
}

func TestBuildHandlerRejectsBadTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.CalendarTimezone = "Mars/Olympus"
	_, _, err := buildHandler(context.Background(), cfg, logging.New("error"))
	assert.Error(t, err)
}
