package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"sudooom.im.mahjong/internal/game/mahjong/core"
	"sudooom.im.mahjong/pkg/proto"
)

// 玩家请求的动作
const (
	ActionJoin      = "join"
	ActionStart     = "start"
	ActionDiscard   = "discard"
	ActionClaimWin  = "claim_win"
	ActionClaimKong = "claim_kong"
	ActionClaimPung = "claim_pung"
	ActionClaimChow = "claim_chow"
	ActionPass      = "pass"
	ActionSelfKong  = "self_kong"
	ActionSelfWin   = "self_win"
	ActionSnapshot  = "snapshot"
)

var claimActions = map[string]core.ClaimAction{
	ActionClaimWin:  core.ClaimWin,
	ActionClaimKong: core.ClaimKong,
	ActionClaimPung: core.ClaimPung,
	ActionClaimChow: core.ClaimChow,
	ActionPass:      core.ClaimPass,
}

// GameService 游戏服务: 把玩家请求分发到对应房间的牌局
type GameService struct {
	gameManager *GameManager
	notifier    Notifier
	logger      *slog.Logger
}

// NewGameService 创建游戏服务
func NewGameService(gameManager *GameManager, notifier Notifier) *GameService {
	return &GameService{
		gameManager: gameManager,
		notifier:    notifier,
		logger:      slog.Default().With("component", "GameService"),
	}
}

// Handle 处理一个玩家请求
// 牌局规则拒绝由 Session 通知玩家，这里只通知请求本身无效的情况
func (s *GameService) Handle(ctx context.Context, req *proto.GameRequest) error {
	err := s.dispatch(req)
	if err == nil {
		return nil
	}
	var ge *core.GameError
	if !errors.As(err, &ge) && !errors.Is(err, ErrSessionFaulted) {
		s.reject(req, err)
	}
	return err
}

func (s *GameService) dispatch(req *proto.GameRequest) error {
	if req.UserId == "" || req.RoomId == "" {
		return fmt.Errorf("%w: userId and roomId are required", ErrInvalidAction)
	}

	if req.Action == ActionJoin {
		session, err := s.gameManager.GetOrCreate(req.RoomId, req.SpecialHands)
		if err != nil {
			return err
		}
		_, err = session.Join(req.UserId)
		return err
	}

	session, ok := s.gameManager.Get(req.RoomId)
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, req.RoomId)
	}

	switch req.Action {
	case ActionStart:
		return session.Start(req.UserId)
	case ActionDiscard:
		tile, err := core.ParseTile(req.Tile)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAction, err)
		}
		return session.Discard(req.UserId, tile)
	case ActionClaimWin, ActionClaimKong, ActionClaimPung, ActionClaimChow, ActionPass:
		claim := core.ClaimRequest{Action: claimActions[req.Action]}
		for _, code := range req.Tiles {
			tile, err := core.ParseTile(code)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidAction, err)
			}
			claim.Tiles = append(claim.Tiles, tile)
		}
		return session.SubmitClaim(req.UserId, claim)
	case ActionSelfKong:
		kind, ok := core.ParseSelfKongKind(req.Kind)
		if !ok {
			return fmt.Errorf("%w: unknown kong kind %q", ErrInvalidAction, req.Kind)
		}
		return session.DeclareSelfKong(req.UserId, kind)
	case ActionSelfWin:
		return session.DeclareSelfDrawnWin(req.UserId)
	case ActionSnapshot:
		_, err := session.Snapshot(req.UserId)
		return err
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAction, req.Action)
	}
}

// reject 通知请求者请求无效
func (s *GameService) reject(req *proto.GameRequest, err error) {
	if req.UserId == "" {
		return
	}
	code := "INVALID_REQUEST"
	switch {
	case errors.Is(err, ErrGameNotFound):
		code = "GAME_NOT_FOUND"
	case errors.Is(err, ErrTooManyGames):
		code = "TOO_MANY_GAMES"
	}
	s.logger.Info("Request rejected", "roomId", req.RoomId, "userId", req.UserId, "action", req.Action, "error", err)
	s.notifier.Notify([]core.Event{{
		Type:    core.EventActionRejected,
		Room:    req.RoomId,
		To:      []string{req.UserId},
		Payload: core.RejectedPayload{Action: req.Action, Code: code, Message: err.Error()},
	}})
}
