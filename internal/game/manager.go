package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"sudooom.im.mahjong/internal/game/mahjong/core"
)

// RecordStore 保存结束的牌局
type RecordStore interface {
	SaveRecord(ctx context.Context, rec *Record) error
}

// ManagerConfig 管理器配置
type ManagerConfig struct {
	MaxGames      int
	EvictTimeout  time.Duration
	EvictInterval time.Duration
	ClaimTimeout  time.Duration
	Policy        core.ClaimPolicy
	SpecialHands  map[string]bool // 默认番种开关
}

// GameManager 游戏管理器，一个房间一个 Session
type GameManager struct {
	games sync.Map // roomId -> *Session

	cfg       ManagerConfig
	scheduler Scheduler
	notifier  Notifier
	store     RecordStore

	evictTicker *time.Ticker
	stopChan    chan struct{}
	stopOnce    sync.Once
	createMu    sync.Mutex

	logger *slog.Logger
}

// NewGameManager 创建游戏管理器
func NewGameManager(cfg ManagerConfig, scheduler Scheduler, notifier Notifier, store RecordStore) *GameManager {
	if cfg.EvictInterval <= 0 {
		cfg.EvictInterval = 60 * time.Second
	}
	m := &GameManager{
		cfg:         cfg,
		scheduler:   scheduler,
		notifier:    notifier,
		store:       store,
		evictTicker: time.NewTicker(cfg.EvictInterval),
		stopChan:    make(chan struct{}),
		logger:      slog.Default().With("component", "GameManager"),
	}

	go m.evictLoop()

	return m
}

// GetOrCreate 获取或创建房间的牌局
// specialHands 为空时使用默认配置，只在创建时生效
func (m *GameManager) GetOrCreate(roomID string, specialHands map[string]bool) (*Session, error) {
	if val, ok := m.games.Load(roomID); ok {
		return val.(*Session), nil
	}

	m.createMu.Lock()
	defer m.createMu.Unlock()

	if val, ok := m.games.Load(roomID); ok {
		return val.(*Session), nil
	}
	if m.cfg.MaxGames > 0 && m.Count() >= m.cfg.MaxGames {
		return nil, ErrTooManyGames
	}

	hands := m.cfg.SpecialHands
	if len(specialHands) > 0 {
		hands = specialHands
	}
	session := NewSession(roomID, SessionConfig{
		ClaimTimeout: m.cfg.ClaimTimeout,
		Policy:       m.cfg.Policy,
		SpecialHands: hands,
	}, m.scheduler, m.notifier)
	m.games.Store(roomID, session)
	m.logger.Info("Created game", "roomId", roomID, "policy", m.cfg.Policy.String())
	return session, nil
}

// Get 获取牌局
func (m *GameManager) Get(roomID string) (*Session, bool) {
	val, ok := m.games.Load(roomID)
	if !ok {
		return nil, false
	}
	return val.(*Session), true
}

// Remove 移除牌局
func (m *GameManager) Remove(roomID string) {
	if val, ok := m.games.LoadAndDelete(roomID); ok {
		val.(*Session).Close()
	}
	m.logger.Info("Removed game", "roomId", roomID)
}

// Close 保存已结束的牌局后移除，保存失败时保留牌局
func (m *GameManager) Close(ctx context.Context, roomID string) error {
	session, ok := m.Get(roomID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, roomID)
	}
	if err := m.persist(ctx, session); err != nil {
		return fmt.Errorf("save %s before close: %w", roomID, err)
	}
	m.Remove(roomID)
	return nil
}

// Count 返回当前牌局数
func (m *GameManager) Count() int {
	count := 0
	m.games.Range(func(key, value any) bool {
		count++
		return true
	})
	return count
}

// Rooms 当前所有房间ID
func (m *GameManager) Rooms() []string {
	var rooms []string
	m.games.Range(func(key, value any) bool {
		rooms = append(rooms, key.(string))
		return true
	})
	return rooms
}

// evictLoop 淘汰循环
func (m *GameManager) evictLoop() {
	for {
		select {
		case <-m.evictTicker.C:
			m.evictInactive(context.Background())
		case <-m.stopChan:
			m.logger.Info("Evict loop stopped")
			return
		}
	}
}

// evictInactive 保存已结束的牌局，淘汰已结束或长时间不活跃的牌局
func (m *GameManager) evictInactive(ctx context.Context) {
	now := time.Now()
	var toEvict []string

	m.games.Range(func(key, value any) bool {
		session := value.(*Session)
		if session.IsFinished() || now.Sub(session.LastActiveTime()) > m.cfg.EvictTimeout {
			toEvict = append(toEvict, key.(string))
		}
		return true
	})

	for _, roomID := range toEvict {
		session, ok := m.Get(roomID)
		if !ok {
			continue
		}
		if err := m.persist(ctx, session); err != nil {
			// 保存失败时保留，下一轮重试
			m.logger.Warn("Failed to save game before eviction", "roomId", roomID, "error", err)
			continue
		}
		m.Remove(roomID)
		m.logger.Info("Evicted game", "roomId", roomID)
	}
}

// persist 保存已结束且尚未保存的牌局
func (m *GameManager) persist(ctx context.Context, session *Session) error {
	rec, ok := session.Record()
	if !ok || m.store == nil {
		return nil
	}
	if err := m.store.SaveRecord(ctx, &rec); err != nil {
		return err
	}
	session.MarkPersisted()
	m.logger.Info("Saved game record", "roomId", rec.RoomID, "winner", rec.Result.Winner)
	return nil
}

// Shutdown 关闭管理器，保存所有已结束的牌局
func (m *GameManager) Shutdown(ctx context.Context) error {
	m.logger.Info("Shutting down GameManager")

	m.stopOnce.Do(func() {
		close(m.stopChan)
		m.evictTicker.Stop()
	})

	var firstErr error
	m.games.Range(func(key, value any) bool {
		session := value.(*Session)
		session.Close()
		if err := m.persist(ctx, session); err != nil {
			m.logger.Error("Failed to save game on shutdown", "roomId", key, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
		return true
	})

	m.logger.Info("GameManager shutdown complete")
	return firstErr
}
