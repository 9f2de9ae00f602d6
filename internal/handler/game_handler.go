package handler

import (
	"context"
	"log/slog"
	"time"

	"sudooom.im.mahjong/pkg/proto"
)

// GameService 牌局请求的处理方
type GameService interface {
	Handle(ctx context.Context, req *proto.GameRequest) error
}

// GameHandler 游戏请求处理器，实现 nats.GameRequestHandler
type GameHandler struct {
	gameService GameService
	timeout     time.Duration
	logger      *slog.Logger
}

// NewGameHandler 创建游戏请求处理器
func NewGameHandler(gameService GameService) *GameHandler {
	return &GameHandler{
		gameService: gameService,
		timeout:     5 * time.Second,
		logger:      slog.Default().With("component", "GameHandler"),
	}
}

// HandleGameRequest 处理一个牌局请求，拒绝原因已由服务层推送给玩家
func (h *GameHandler) HandleGameRequest(ctx context.Context, req *proto.GameRequest, accessNodeId string) {
	h.logger.Debug("Game request received",
		"userId", req.UserId,
		"reqId", req.ReqId,
		"roomId", req.RoomId,
		"action", req.Action,
		"accessNodeId", accessNodeId)

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	if err := h.gameService.Handle(ctx, req); err != nil {
		h.logger.Debug("Game request failed",
			"userId", req.UserId,
			"roomId", req.RoomId,
			"action", req.Action,
			"error", err)
		return
	}
	h.logger.Debug("Game request handled",
		"roomId", req.RoomId,
		"action", req.Action,
		"elapsed", time.Since(start))
}
