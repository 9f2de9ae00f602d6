package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sudooom.im.mahjong/internal/game"
	"sudooom.im.mahjong/internal/game/mahjong/core"
	"sudooom.im.mahjong/internal/repository"
	"sudooom.im.mahjong/pkg/response"
)

type noopScheduler struct{}

func (noopScheduler) Schedule(string, time.Duration, func(context.Context)) (string, error) {
	return "task", nil
}

func (noopScheduler) Cancel(string) bool { return true }

type noopNotifier struct{}

func (noopNotifier) Notify([]core.Event) {}

type stubRecords struct {
	records []*repository.GameRecord
	err     error
	room    string
	limit   int
}

func (s *stubRecords) ListByRoom(_ context.Context, roomID string, limit int) ([]*repository.GameRecord, error) {
	s.room, s.limit = roomID, limit
	return s.records, s.err
}

// APIResponse 用于解析响应体
type APIResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupAdmin(t *testing.T, records RecordFinder) (*gin.Engine, *game.GameManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m := game.NewGameManager(game.ManagerConfig{EvictInterval: time.Hour, EvictTimeout: time.Hour},
		noopScheduler{}, noopNotifier{}, nil)
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })

	h := NewAdminHandler(m, records)
	r := gin.New()
	r.GET("/admin/rooms", h.ListRooms)
	r.GET("/admin/rooms/:id", h.GetRoom)
	r.DELETE("/admin/rooms/:id", h.CloseRoom)
	r.GET("/admin/rooms/:id/records", h.ListRecords)
	return r, m
}

func do(r *gin.Engine, method, path string) (*httptest.ResponseRecorder, APIResponse) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	var resp APIResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestAdminListAndGetRooms(t *testing.T) {
	r, m := setupAdmin(t, nil)
	session, err := m.GetOrCreate("room-b", nil)
	require.NoError(t, err)
	for _, p := range []string{"p0", "p1", "p2", "p3"} {
		_, err := session.Join(p)
		require.NoError(t, err)
	}
	require.NoError(t, session.Start("p0"))
	_, err = m.GetOrCreate("room-a", nil)
	require.NoError(t, err)

	w, resp := do(r, http.MethodGet, "/admin/rooms")
	require.Equal(t, http.StatusOK, w.Code)
	var rooms []RoomSummary
	require.NoError(t, json.Unmarshal(resp.Data, &rooms))
	require.Len(t, rooms, 2)
	assert.Equal(t, "room-a", rooms[0].RoomId)
	assert.Equal(t, "waiting", rooms[0].Phase)
	assert.Equal(t, "room-b", rooms[1].RoomId)
	assert.Equal(t, "awaiting_discard", rooms[1].Phase)
	assert.Len(t, rooms[1].Players, 4)

	w, resp = do(r, http.MethodGet, "/admin/rooms/room-b")
	require.Equal(t, http.StatusOK, w.Code)
	var snap core.StateSnapshot
	require.NoError(t, json.Unmarshal(resp.Data, &snap))
	assert.Equal(t, -1, snap.Seat)
	assert.Empty(t, snap.Hand, "spectator view never contains a hand")
	assert.Len(t, snap.Others, 4)
	assert.Equal(t, 83, snap.WallRemaining)
}

func TestAdminRoomNotFound(t *testing.T) {
	r, _ := setupAdmin(t, nil)

	w, resp := do(r, http.MethodGet, "/admin/rooms/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, response.CodeRoomNotFound, resp.Code)

	w, _ = do(r, http.MethodDelete, "/admin/rooms/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminCloseRoom(t *testing.T) {
	r, m := setupAdmin(t, nil)
	_, err := m.GetOrCreate("room-a", nil)
	require.NoError(t, err)

	w, _ := do(r, http.MethodDelete, "/admin/rooms/room-a")
	assert.Equal(t, http.StatusOK, w.Code)
	_, ok := m.Get("room-a")
	assert.False(t, ok)
}

func TestAdminListRecords(t *testing.T) {
	records := &stubRecords{records: []*repository.GameRecord{{Id: 42, RoomId: "room-a", Policy: "first_valid"}}}
	r, _ := setupAdmin(t, records)

	w, resp := do(r, http.MethodGet, "/admin/rooms/room-a/records?limit=5")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "room-a", records.room)
	assert.Equal(t, 5, records.limit)
	var got []repository.GameRecord
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, int64(42), got[0].Id)

	w, _ = do(r, http.MethodGet, "/admin/rooms/room-a/records?limit=abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	records.err = errors.New("db down")
	w, resp = do(r, http.MethodGet, "/admin/rooms/room-a/records")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, response.CodeDBError, resp.Code)
	assert.Equal(t, 20, records.limit)
}

func TestAdminListRecordsWithoutStore(t *testing.T) {
	r, _ := setupAdmin(t, nil)
	w, _ := do(r, http.MethodGet, "/admin/rooms/room-a/records")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
