package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"sudooom.im.mahjong/internal/game/mahjong/core"
	"sudooom.im.mahjong/pkg/proto"
)

// Resolver 查询玩家连接位置
type Resolver interface {
	Resolve(ctx context.Context, userId string) ([]Location, error)
}

// Publisher 发布下行消息
type Publisher interface {
	PublishToAccess(accessNodeId string, message *proto.DownstreamMessage) error
}

// DispatcherConfig 分发配置
type DispatcherConfig struct {
	WorkerCount    int           // 分片数，同一房间固定落在一个分片
	BufferSize     int           // 每个分片的缓冲
	ResolveTimeout time.Duration // 单次位置查询超时
}

// DispatcherService 把牌局事件推送到玩家所在的 Access 节点
// 按房间哈希分片，保证同一房间的事件按产生顺序投递
type DispatcherService struct {
	resolver  Resolver
	publisher Publisher
	config    DispatcherConfig
	shards    []chan []core.Event
	wg        sync.WaitGroup
	mu        sync.RWMutex // 保护 closed，防止向已关闭的分片发送
	closed    bool
	logger    *slog.Logger
}

// NewDispatcherService 创建分发服务
func NewDispatcherService(resolver Resolver, publisher Publisher, config DispatcherConfig) *DispatcherService {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 16
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 1024
	}
	if config.ResolveTimeout <= 0 {
		config.ResolveTimeout = 2 * time.Second
	}
	shards := make([]chan []core.Event, config.WorkerCount)
	for i := range shards {
		shards[i] = make(chan []core.Event, config.BufferSize)
	}
	return &DispatcherService{
		resolver:  resolver,
		publisher: publisher,
		config:    config,
		shards:    shards,
		logger:    slog.Default().With("component", "Dispatcher"),
	}
}

// Start 启动分片协程
func (s *DispatcherService) Start() {
	for i, ch := range s.shards {
		s.wg.Add(1)
		go s.worker(i, ch)
	}
	s.logger.Info("Dispatcher started", "workerCount", s.config.WorkerCount, "bufferSize", s.config.BufferSize)
}

// Stop 投递完已入队的事件后退出
func (s *DispatcherService) Stop() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		for _, ch := range s.shards {
			close(ch)
		}
	}
	s.mu.Unlock()
	s.wg.Wait()
	s.logger.Info("Dispatcher stopped")
}

// Notify 实现 game.Notifier，只入队不阻塞
func (s *DispatcherService) Notify(events []core.Event) {
	if len(events) == 0 {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.logger.Warn("Dispatcher stopped, dropping events", "roomId", events[0].Room, "count", len(events))
		return
	}
	shard := s.shards[s.shardOf(events[0].Room)]
	select {
	case shard <- events:
	default:
		s.logger.Warn("Dispatch buffer full, dropping events",
			"roomId", events[0].Room,
			"count", len(events))
	}
}

func (s *DispatcherService) shardOf(room string) int {
	return int(xxhash.Sum64String(room) % uint64(len(s.shards)))
}

func (s *DispatcherService) worker(id int, ch <-chan []core.Event) {
	defer s.wg.Done()
	for events := range ch {
		for _, ev := range events {
			s.dispatch(ev)
		}
	}
	s.logger.Debug("Dispatch worker stopped", "workerId", id)
}

// dispatch 推送一个事件给它的所有接收者
func (s *DispatcherService) dispatch(ev core.Event) {
	data, err := json.Marshal(ev.Payload)
	if err != nil {
		s.logger.Error("Failed to marshal game event", "roomId", ev.Room, "event", ev.Type, "error", err)
		return
	}

	for _, userId := range ev.To {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.ResolveTimeout)
		locations, err := s.resolver.Resolve(ctx, userId)
		cancel()
		if err != nil {
			s.logger.Warn("Failed to resolve user location", "userId", userId, "error", err)
			continue
		}
		if len(locations) == 0 {
			s.logger.Debug("User offline, event skipped", "userId", userId, "event", ev.Type)
			continue
		}

		for _, loc := range locations {
			msg := &proto.DownstreamMessage{
				UserId:   userId,
				ConnId:   loc.ConnId,
				Platform: loc.Platform,
				Payload: proto.DownstreamPayload{
					GamePush: &proto.GamePush{
						RoomId:   ev.Room,
						Event:    string(ev.Type),
						Data:     data,
						ToUserId: userId,
					},
				},
			}
			if err := s.publisher.PublishToAccess(loc.AccessNodeId, msg); err != nil {
				// 继续推送到其他设备，不中断
				s.logger.Warn("Failed to dispatch game push",
					"userId", userId,
					"platform", loc.Platform,
					"accessNodeId", loc.AccessNodeId,
					"error", err)
			}
		}
	}
}
