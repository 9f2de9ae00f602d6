package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"sudooom.im.mahjong/internal/game/mahjong/core"
)

// Notifier 把引擎事件投递给玩家，实现不得阻塞调用方
type Notifier interface {
	Notify(events []core.Event)
}

// Scheduler 可取消的延迟任务
type Scheduler interface {
	Schedule(target string, delay time.Duration, fn func(ctx context.Context)) (string, error)
	Cancel(taskID string) bool
}

// SessionConfig 创建牌局的参数
type SessionConfig struct {
	ClaimTimeout time.Duration
	Policy       core.ClaimPolicy
	SpecialHands map[string]bool
	Engine       core.Options // 测试用: 指定牌墙或随机源
}

// Session 一个房间的一局牌
// 所有修改都在 mu 下串行执行，不同房间互不影响
type Session struct {
	mu sync.Mutex

	room         string
	engine       *core.Engine
	scheduler    Scheduler
	notifier     Notifier
	claimTimeout time.Duration

	timerWindow uint64 // 已调度超时任务对应的窗口号
	timerID     string

	createdAt  time.Time
	startedAt  time.Time
	lastActive time.Time
	persisted  bool

	logger *slog.Logger
}

// NewSession 创建牌局
func NewSession(room string, cfg SessionConfig, scheduler Scheduler, notifier Notifier) *Session {
	opts := cfg.Engine
	opts.Policy = cfg.Policy
	opts.SpecialHands = cfg.SpecialHands
	now := time.Now()
	return &Session{
		room:         room,
		engine:       core.NewEngine(room, opts),
		scheduler:    scheduler,
		notifier:     notifier,
		claimTimeout: cfg.ClaimTimeout,
		createdAt:    now,
		lastActive:   now,
		logger:       slog.Default().With("component", "Session", "roomId", room),
	}
}

// Room 房间ID
func (s *Session) Room() string { return s.room }

// Join 加入牌局
func (s *Session) Join(player string) (int, error) {
	var seat int
	err := s.apply(player, "join", func() error {
		var err error
		seat, err = s.engine.AddPlayer(player)
		return err
	})
	return seat, err
}

// Start 开局
func (s *Session) Start(player string) error {
	return s.apply(player, "start", func() error {
		if err := s.engine.Start(); err != nil {
			return err
		}
		s.startedAt = time.Now()
		return nil
	})
}

// Discard 出牌
func (s *Session) Discard(player string, tile core.Tile) error {
	return s.apply(player, "discard", func() error {
		return s.engine.Discard(player, tile)
	})
}

// SubmitClaim 认领打出的牌
func (s *Session) SubmitClaim(player string, req core.ClaimRequest) error {
	return s.apply(player, "claim_"+req.Action.Code(), func() error {
		return s.engine.SubmitClaim(player, req)
	})
}

// DeclareSelfKong 暗杠或加杠
func (s *Session) DeclareSelfKong(player string, kind core.SelfKongKind) error {
	return s.apply(player, "self_kong", func() error {
		return s.engine.DeclareSelfKong(player, kind)
	})
}

// DeclareSelfDrawnWin 自摸
func (s *Session) DeclareSelfDrawnWin(player string) error {
	return s.apply(player, "self_win", func() error {
		return s.engine.DeclareSelfDrawnWin(player)
	})
}

// Snapshot 返回玩家视角的状态，同时推送给该玩家
func (s *Session) Snapshot(player string) (core.StateSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.engine.Snapshot(player)
	if err != nil {
		s.notifier.Notify([]core.Event{s.rejection(player, "snapshot", err)})
		return core.StateSnapshot{}, err
	}
	s.notifier.Notify([]core.Event{{
		Type:    core.EventStateSnapshot,
		Room:    s.room,
		To:      []string{player},
		Payload: snap,
	}})
	return snap, nil
}

// Overview 旁观视角 (管理接口使用)
func (s *Session) Overview() core.StateSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.SpectatorSnapshot()
}

// apply 在锁内执行一次修改，随后同步超时任务并投递事件
func (s *Session) apply(player, action string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := fn()
	s.lastActive = time.Now()
	events := s.engine.DrainEvents()

	if err != nil {
		events = append(events, s.rejection(player, action, err))
		if core.IsIllegalMove(err) {
			s.logger.Info("Illegal move rejected", "player", player, "action", action, "error", err)
		} else {
			s.logger.Error("Session faulted", "player", player, "action", action, "error", err)
			err = fmt.Errorf("%w: %w", ErrSessionFaulted, err)
		}
	}

	s.syncTimer()
	s.notifier.Notify(events)
	return err
}

// expire 超时任务回调，窗口已裁决时不做任何事
func (s *Session) expire(number uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timerWindow == number {
		s.timerID = ""
	}
	fired, err := s.engine.ExpireClaimWindow(number)
	if err != nil {
		s.logger.Error("Claim window expiry failed", "window", number, "error", err)
	}
	if !fired {
		return
	}
	s.logger.Debug("Claim window expired", "window", number)
	s.lastActive = time.Now()
	s.syncTimer()
	s.notifier.Notify(s.engine.DrainEvents())
}

// syncTimer 让超时任务与引擎当前的认领窗口保持一致
func (s *Session) syncTimer() {
	number, open := s.engine.ClaimWindow()
	if open && s.timerID != "" && s.timerWindow == number {
		return
	}
	if s.timerID != "" {
		s.scheduler.Cancel(s.timerID)
		s.timerID = ""
	}
	if !open {
		return
	}

	id, err := s.scheduler.Schedule(s.room, s.claimTimeout, func(context.Context) {
		s.expire(number)
	})
	if err != nil {
		s.logger.Warn("Failed to schedule claim timeout", "window", number, "error", err)
		return
	}
	s.timerID = id
	s.timerWindow = number
}

func (s *Session) rejection(player, action string, err error) core.Event {
	payload := core.RejectedPayload{Action: action, Message: err.Error()}
	var ge *core.GameError
	if errors.As(err, &ge) {
		payload.Code = ge.Code
		payload.Message = ge.Message
	}
	return core.Event{
		Type:    core.EventActionRejected,
		Room:    s.room,
		To:      []string{player},
		Payload: payload,
	}
}

// Players 按座位顺序的玩家
func (s *Session) Players() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Players()
}

// IsFinished 牌局是否结束
func (s *Session) IsFinished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Phase() == core.PhaseFinished
}

// Faulted 牌局是否因数据损坏被冻结
func (s *Session) Faulted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Fault() != nil
}

// LastActiveTime 最后活跃时间
func (s *Session) LastActiveTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Record 结束后的牌局记录，未结束或已保存时返回 false
func (s *Session) Record() (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.engine.Result()
	if result == nil || s.persisted {
		return Record{}, false
	}
	return Record{
		RoomID:       s.room,
		Players:      s.engine.Players(),
		Result:       *result,
		History:      s.engine.History(),
		SpecialHands: s.engine.SpecialHands(),
		Policy:       s.engine.Policy().String(),
		StartedAt:    s.startedAt,
		FinishedAt:   s.lastActive,
	}, true
}

// MarkPersisted 标记为已保存
func (s *Session) MarkPersisted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persisted = true
}

// Close 取消未触发的超时任务
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timerID != "" {
		s.scheduler.Cancel(s.timerID)
		s.timerID = ""
	}
}

// Record 牌局记录
type Record struct {
	RoomID       string
	Players      []string
	Result       core.Result
	History      []core.HistoryEntry
	SpecialHands map[string]bool
	Policy       string
	StartedAt    time.Time
	FinishedAt   time.Time
}
