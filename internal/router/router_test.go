package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sudooom.im.mahjong/internal/game"
	"sudooom.im.mahjong/internal/game/mahjong/core"
	"sudooom.im.mahjong/internal/handler"
	"sudooom.im.mahjong/internal/health"
	"sudooom.im.mahjong/internal/middleware"
)

type noopScheduler struct{}

func (noopScheduler) Schedule(string, time.Duration, func(context.Context)) (string, error) {
	return "task", nil
}

func (noopScheduler) Cancel(string) bool { return true }

type noopNotifier struct{}

func (noopNotifier) Notify([]core.Event) {}

func up(context.Context) error { return nil }

func TestSetupRouter(t *testing.T) {
	m := game.NewGameManager(game.ManagerConfig{EvictInterval: time.Hour, EvictTimeout: time.Hour},
		noopScheduler{}, noopNotifier{}, nil)
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })
	_, err := m.GetOrCreate("room-a", nil)
	require.NoError(t, err)

	tokens := middleware.NewTokenService("secret", "sudooom.im")
	r := SetupRouter(gin.TestMode, tokens,
		health.NewProbeChecker(up, up, up, m.Count),
		handler.NewAdminHandler(m, nil))

	admin, err := tokens.Generate("ops", middleware.RoleAdmin, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"health is public", http.MethodGet, "/health", "", http.StatusOK},
		{"ready is public", http.MethodGet, "/ready", "", http.StatusOK},
		{"rooms need a token", http.MethodGet, "/admin/rooms", "", http.StatusUnauthorized},
		{"rooms with token", http.MethodGet, "/admin/rooms", admin, http.StatusOK},
		{"room snapshot", http.MethodGet, "/admin/rooms/room-a", admin, http.StatusOK},
		{"unknown route", http.MethodGet, "/admin/nothing", admin, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
