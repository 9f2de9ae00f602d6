package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("down") }

func serve(h *Checker, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthAllConnected(t *testing.T) {
	h := NewProbeChecker(ok, ok, ok, func() int { return 3 })

	w := serve(h, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	var status Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, Status{NATS: "connected", Redis: "connected", Database: "connected", Games: 3}, status)

	w = serve(h, "/ready")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestHealthDegraded(t *testing.T) {
	h := NewProbeChecker(ok, down, ok, nil)

	w := serve(h, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var status Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "disconnected", status.Redis)

	assert.Equal(t, http.StatusServiceUnavailable, serve(h, "/ready").Code)
}
