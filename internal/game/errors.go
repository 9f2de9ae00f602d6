package game

import "errors"

// 游戏服务相关错误定义

var (
	// ErrGameNotFound 游戏不存在
	ErrGameNotFound = errors.New("game not found")

	// ErrTooManyGames 超过单节点最大游戏数
	ErrTooManyGames = errors.New("too many games on this node")

	// ErrSessionFaulted 牌局数据损坏，已冻结
	ErrSessionFaulted = errors.New("session faulted")

	// ErrInvalidAction 无效的游戏操作
	ErrInvalidAction = errors.New("invalid action")
)
