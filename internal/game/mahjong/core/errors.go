package core

import (
	"errors"
	"fmt"
)

// GameError 游戏错误类型
type GameError struct {
	Code    string         // 错误代码
	Message string         // 错误消息
	Cause   error          // 原因错误
	Context map[string]any // 错误上下文
}

func (e *GameError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *GameError) Unwrap() error {
	return e.Cause
}

// Is 按错误代码比较，使 errors.Is 能识别带上下文的副本
func (e *GameError) Is(target error) bool {
	t, ok := target.(*GameError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewGameError 创建游戏错误
func NewGameError(code, message string) *GameError {
	return &GameError{
		Code:    code,
		Message: message,
	}
}

// clone 复制错误，预定义错误是共享的，不能原地修改
func (e *GameError) clone() *GameError {
	ctx := make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		ctx[k] = v
	}
	return &GameError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   e.Cause,
		Context: ctx,
	}
}

// WithCause 添加原因错误
func (e *GameError) WithCause(cause error) *GameError {
	c := e.clone()
	c.Cause = cause
	return c
}

// WithContext 添加上下文信息
func (e *GameError) WithContext(key string, value any) *GameError {
	c := e.clone()
	c.Context[key] = value
	return c
}

// 牌相关错误
var (
	ErrInvalidTile   = NewGameError("INVALID_TILE", "无效的牌")
	ErrTileNotInHand = NewGameError("TILE_NOT_IN_HAND", "手牌中没有指定的牌")
	ErrInvalidWall   = NewGameError("INVALID_WALL", "预设牌墙不合法")
)

// 牌桌相关错误
var (
	ErrTableFull          = NewGameError("TABLE_FULL", "牌桌已满")
	ErrPlayerExists       = NewGameError("PLAYER_EXISTS", "玩家已在牌桌中")
	ErrPlayerNotInGame    = NewGameError("PLAYER_NOT_IN_GAME", "玩家不在牌桌中")
	ErrNotEnoughPlayers   = NewGameError("NOT_ENOUGH_PLAYERS", "玩家数量不足")
	ErrGameAlreadyStarted = NewGameError("GAME_ALREADY_STARTED", "游戏已经开始")
	ErrGameNotStarted     = NewGameError("GAME_NOT_STARTED", "游戏尚未开始")
	ErrGameFinished       = NewGameError("GAME_FINISHED", "游戏已经结束")
	ErrInvalidGamePhase   = NewGameError("INVALID_GAME_PHASE", "当前游戏阶段不允许此操作")
)

// 游戏规则相关错误
var (
	ErrNotYourTurn      = NewGameError("NOT_YOUR_TURN", "不是当前玩家")
	ErrNoClaimWindow    = NewGameError("NO_CLAIM_WINDOW", "当前没有可认领的牌")
	ErrActionNotOffered = NewGameError("ACTION_NOT_OFFERED", "该操作不在可选操作中")
	ErrInvalidChow      = NewGameError("INVALID_CHOW", "无效的吃牌组合")
	ErrCannotKong       = NewGameError("CANNOT_KONG", "不能杠")
	ErrCannotWin        = NewGameError("CANNOT_WIN", "不能胡牌")
	ErrUnknownAction    = NewGameError("UNKNOWN_ACTION", "未知的操作")
)

// ErrInvariantViolated 牌数守恒被破坏，牌局不可继续
var ErrInvariantViolated = NewGameError("INVARIANT_VIOLATED", "牌数不守恒，牌局已冻结")

// IsIllegalMove 是否是可由玩家重试的非法操作
func IsIllegalMove(err error) bool {
	var ge *GameError
	if !errors.As(err, &ge) {
		return false
	}
	return ge.Code != ErrInvariantViolated.Code
}
