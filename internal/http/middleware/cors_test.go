package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if called != nil {
			*called = true
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSAllowsListedOrigin(t *testing.T) {
	called := false
	req := httptest.NewRequest(http.MethodGet, "/api/catalog", nil)
	req.Header.Set("Origin", "https://sevenbarber.example")
	rec := httptest.NewRecorder()

	CORS([]string{"https://sevenbarber.example"})(okHandler(&called)).ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://sevenbarber.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "X-Request-ID, Retry-After", rec.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
}

func TestCORSIgnoresTrailingSlashInAllowlist(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/catalog", nil)
	req.Header.Set("Origin", "https://sevenbarber.example")
	rec := httptest.NewRecorder()

	CORS([]string{"https://sevenbarber.example/"})(okHandler(nil)).ServeHTTP(rec, req)

	assert.Equal(t, "https://sevenbarber.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSDeniesUnknownOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/catalog", nil)
	req.Header.Set("Origin", "https://unknown.example")
	rec := httptest.NewRecorder()

	CORS([]string{"https://sevenbarber.example"})(okHandler(nil)).ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSAllowsAnyOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/catalog", nil)
	req.Header.Set("Origin", "https://random.example")
	rec := httptest.NewRecorder()

	CORS([]string{" ", "*"})(okHandler(nil)).ServeHTTP(rec, req)

	assert.Equal(t, "https://random.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSHandlesPreflight(t *testing.T) {
	called := false
	req := httptest.NewRequest(http.MethodOptions, "/api/sessions/abc/submit", nil)
	req.Header.Set("Origin", "https://sevenbarber.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()

	CORS([]string{"https://sevenbarber.example"})(okHandler(&called)).ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PUT")
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
}

func TestCORSRejectsPreflightFromUnknownOrigin(t *testing.T) {
	called := false
	req := httptest.NewRequest(http.MethodOptions, "/api/sessions/abc/submit", nil)
	req.Header.Set("Origin", "https://unknown.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()

	CORS([]string{"https://sevenbarber.example"})(okHandler(&called)).ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
