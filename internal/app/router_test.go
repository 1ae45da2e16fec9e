package app

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SIMAPRO-backend/internal/platform/config"
)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Defaults()
	cfg.Auth.JWTSecret = "test-secret"
	public := fstest.MapFS{
		"index.html":    {Data: []byte("<html>simapro</html>")},
		"assets/app.js": {Data: []byte("console.log(1)")},
	}
	// DB に触れる経路はここでは叩かない
	r, _, err := NewRouter(Deps{
		Config: cfg,
		Log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Public: public,
	})
	require.NoError(t, err)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthCheck(t *testing.T) {
	w := get(newTestEngine(t), "/health-check")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestSPAFallback(t *testing.T) {
	r := newTestEngine(t)

	w := get(r, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "simapro")

	w = get(r, "/assets/app.js")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Cache-Control"), "max-age")

	w = get(r, "/some/client/route")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "simapro")

	w = get(r, "/portal/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestGuardedRoutesRequireToken(t *testing.T) {
	r := newTestEngine(t)
	for _, p := range []string{"/dashboard", "/staff/borrow-requests", "/staff/assets/labels.csv", "/staff/maintenance-reports"} {
		assert.Equal(t, http.StatusUnauthorized, get(r, p).Code, p)
	}
}

func TestIsAPIPath(t *testing.T) {
	assert.True(t, isAPIPath("/portal/assets"))
	assert.True(t, isAPIPath("/dashboard"))
	assert.False(t, isAPIPath("/about"))
}
