package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/ykykj/assistant/internal/google"
)

func serveHealth(t *testing.T, handler http.Handler, path string) (int, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestReadinessHandler(t *testing.T) {
	sc := newTestServerContext(t)
	h := NewHealthChecker(sc)

	code, resp := serveHealth(t, h.ReadinessHandler(), "/readyz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]string{
		"server":  healthStatusOK,
		"google":  GoogleNoCredentials,
		"maps":    integrationMissing,
		"weather": integrationConfigured,
		"search":  integrationMissing,
	}, resp.Checks)

	require.NoError(t, sc.Shutdown())

	code, resp = serveHealth(t, h.ReadinessHandler(), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, healthStatusNotReady, resp.Status)
	assert.Equal(t, healthStatusShuttingDown, resp.Checks["server"])
}

func TestReadinessHandler_MissingIntegrationsDoNotFail(t *testing.T) {
	cfg := testConfig()
	cfg.Weather.APIKey = ""
	sc, err := NewServerContext(context.Background(), Options{Config: cfg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	code, resp := serveHealth(t, NewHealthChecker(sc).ReadinessHandler(), "/readyz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, integrationMissing, resp.Checks["weather"])
}

func TestReadinessHandler_GoogleAuthState(t *testing.T) {
	store := google.NewFileTokenStore(filepath.Join(t.TempDir(), "token.json"))
	sc, err := NewServerContext(context.Background(), Options{
		Config:        testConfig(),
		Authenticator: &google.Authenticator{Config: &oauth2.Config{}, Store: store},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	h := NewHealthChecker(sc)

	_, resp := serveHealth(t, h.ReadinessHandler(), "/readyz")
	assert.Equal(t, GoogleNotAuthorized, resp.Checks["google"])

	require.NoError(t, store.Save(&oauth2.Token{AccessToken: "access", RefreshToken: "refresh"}))
	_, resp = serveHealth(t, h.ReadinessHandler(), "/readyz")
	assert.Equal(t, GoogleTokenCached, resp.Checks["google"])
}

func TestDetailedHealthHandler(t *testing.T) {
	sc := newTestServerContext(t)
	sc.Config().Search.TavilyAPIKey = "tvly-test"
	h := NewHealthChecker(sc)

	code, resp := serveHealth(t, h.DetailedHealthHandler(), "/healthz/detailed")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, healthStatusOK, resp.Status)
	assert.NotEmpty(t, resp.Uptime)
	assert.Equal(t, map[string]bool{"maps": false, "weather": true, "search": true}, resp.Integrations)
	assert.Equal(t, integrationConfigured, resp.Checks["search"])

	h.SetReady(false)
	code, resp = serveHealth(t, h.DetailedHealthHandler(), "/healthz/detailed")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, healthStatusNotReady, resp.Status)
}

func TestLivenessHandler_WithoutServerContext(t *testing.T) {
	h := NewHealthChecker(nil)
	h.SetReady(false)

	code, resp := serveHealth(t, h.LivenessHandler(), "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, healthStatusOK, resp.Status)

	_, resp = serveHealth(t, h.ReadinessHandler(), "/readyz")
	assert.Equal(t, map[string]string{"server": healthStatusNotReady}, resp.Checks)
}
