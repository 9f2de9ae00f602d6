package handler

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"

	"sudooom.im.mahjong/internal/game"
	"sudooom.im.mahjong/internal/repository"
	"sudooom.im.mahjong/pkg/response"
)

// RoomDirectory 运行中的牌局
type RoomDirectory interface {
	Rooms() []string
	Get(roomID string) (*game.Session, bool)
	Close(ctx context.Context, roomID string) error
}

// RecordFinder 已保存的牌局
type RecordFinder interface {
	ListByRoom(ctx context.Context, roomID string, limit int) ([]*repository.GameRecord, error)
}

// RoomSummary 房间列表项
type RoomSummary struct {
	RoomId   string   `json:"roomId"`
	Phase    string   `json:"phase"`
	Players  []string `json:"players"`
	Finished bool     `json:"finished"`
	Faulted  bool     `json:"faulted"`
}

// AdminHandler 运维接口
type AdminHandler struct {
	rooms   RoomDirectory
	records RecordFinder
	logger  *slog.Logger
}

// NewAdminHandler 创建运维接口处理器，records 可以为 nil
func NewAdminHandler(rooms RoomDirectory, records RecordFinder) *AdminHandler {
	return &AdminHandler{
		rooms:   rooms,
		records: records,
		logger:  slog.Default().With("component", "AdminHandler"),
	}
}

// ListRooms GET /admin/rooms
func (h *AdminHandler) ListRooms(c *gin.Context) {
	ids := h.rooms.Rooms()
	slices.Sort(ids)

	rooms := make([]RoomSummary, 0, len(ids))
	for _, id := range ids {
		session, ok := h.rooms.Get(id)
		if !ok {
			continue
		}
		view := session.Overview()
		rooms = append(rooms, RoomSummary{
			RoomId:   id,
			Phase:    view.Phase,
			Players:  session.Players(),
			Finished: session.IsFinished(),
			Faulted:  session.Faulted(),
		})
	}
	response.Success(c, rooms)
}

// GetRoom GET /admin/rooms/:id 旁观视角，不含任何手牌
func (h *AdminHandler) GetRoom(c *gin.Context) {
	session, ok := h.rooms.Get(c.Param("id"))
	if !ok {
		response.Error(c, response.CodeRoomNotFound)
		return
	}
	response.Success(c, session.Overview())
}

// CloseRoom DELETE /admin/rooms/:id 已结束的牌局先保存记录
func (h *AdminHandler) CloseRoom(c *gin.Context) {
	roomID := c.Param("id")
	if err := h.rooms.Close(c.Request.Context(), roomID); err != nil {
		if errors.Is(err, game.ErrGameNotFound) {
			response.Error(c, response.CodeRoomNotFound)
			return
		}
		h.logger.Error("Failed to close room", "roomId", roomID, "error", err)
		response.Error(c, response.CodeDBError)
		return
	}
	h.logger.Info("Room closed by admin", "roomId", roomID, "admin", c.GetString("subject"))
	response.Success(c, nil)
}

// ListRecords GET /admin/rooms/:id/records?limit=20
func (h *AdminHandler) ListRecords(c *gin.Context) {
	if h.records == nil {
		response.Error(c, response.CodeDBError)
		return
	}
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.Error(c, response.CodeInvalidParams)
			return
		}
		limit = n
	}

	records, err := h.records.ListByRoom(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		h.logger.Error("Failed to list game records", "roomId", c.Param("id"), "error", err)
		response.Error(c, response.CodeDBError)
		return
	}
	response.Success(c, records)
}
