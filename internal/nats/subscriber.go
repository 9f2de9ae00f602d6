package nats

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/nats-io/nats.go"
	"sudooom.im.mahjong/pkg/proto"
)

// GameRequestHandler 牌局请求处理器
type GameRequestHandler interface {
	HandleGameRequest(ctx context.Context, req *proto.GameRequest, accessNodeId string)
}

// SubscriberConfig 订阅协程配置
type SubscriberConfig struct {
	WorkerCount int // 分片数量
	BufferSize  int // 所有分片的缓冲总量
}

// inbound 解码后的上行请求
type inbound struct {
	accessNodeId string
	req          *proto.GameRequest
}

// MessageSubscriber 上行请求订阅器
// 请求按房间分片，同一房间的请求按到达顺序处理
type MessageSubscriber struct {
	nc           *nats.Conn
	handler      GameRequestHandler
	logger       *slog.Logger
	subscription *nats.Subscription
	config       SubscriberConfig
	shards       []chan inbound
	wg           sync.WaitGroup
	ctx          context.Context
	cancelFunc   context.CancelFunc
}

// NewMessageSubscriber 创建订阅器
func NewMessageSubscriber(nc *nats.Conn, handler GameRequestHandler, config SubscriberConfig) *MessageSubscriber {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 64
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 10000
	}

	return &MessageSubscriber{
		nc:      nc,
		handler: handler,
		logger:  slog.Default().With("component", "Subscriber"),
		config:  config,
	}
}

// Start 启动分片协程并加入队列组
func (s *MessageSubscriber) Start(ctx context.Context) error {
	s.startWorkers(ctx)

	sub, err := s.nc.QueueSubscribe(proto.SubjectMahjongUpstream, proto.QueueGroupMahjong, func(msg *nats.Msg) {
		s.enqueue(msg.Data)
	})
	if err != nil {
		s.cancelFunc()
		return err
	}

	s.subscription = sub
	s.logger.Info("NATS subscriber started",
		"subject", proto.SubjectMahjongUpstream,
		"queue", proto.QueueGroupMahjong,
		"shards", len(s.shards))
	return nil
}

func (s *MessageSubscriber) startWorkers(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	s.ctx = workerCtx
	s.cancelFunc = cancel

	perShard := max(s.config.BufferSize/s.config.WorkerCount, 16)
	s.shards = make([]chan inbound, s.config.WorkerCount)
	for i := range s.shards {
		s.shards[i] = make(chan inbound, perShard)
		s.wg.Add(1)
		go s.worker(workerCtx, s.shards[i])
	}
}

// enqueue 解码后投递到房间所在分片
// 分片已满时阻塞 NATS 回调，积压留在客户端的待处理队列里，只有停止时才丢弃
func (s *MessageSubscriber) enqueue(data []byte) {
	in, ok := s.decode(data)
	if !ok {
		return
	}
	shard := s.shards[xxhash.Sum64String(in.req.RoomId)%uint64(len(s.shards))]
	select {
	case shard <- in:
		return
	default:
	}

	s.logger.Warn("Shard buffer full, waiting", "roomId", in.req.RoomId, "bufferSize", cap(shard))
	select {
	case shard <- in:
	case <-s.ctx.Done():
		s.logger.Warn("Subscriber stopped, dropping request",
			"roomId", in.req.RoomId,
			"userId", in.req.UserId,
			"action", in.req.Action)
	}
}

func (s *MessageSubscriber) worker(ctx context.Context, shard <-chan inbound) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case in := <-shard:
			s.handler.HandleGameRequest(ctx, in.req, in.accessNodeId)
		}
	}
}

// decode 解析上行消息，只接受牌局请求
func (s *MessageSubscriber) decode(data []byte) (inbound, bool) {
	var message proto.UpstreamMessage
	if err := json.Unmarshal(data, &message); err != nil {
		s.logger.Error("Failed to unmarshal message", "error", err)
		return inbound{}, false
	}
	if message.Payload.GameRequest == nil {
		s.logger.Warn("Unknown upstream payload", "accessNodeId", message.AccessNodeId)
		return inbound{}, false
	}
	return inbound{accessNodeId: message.AccessNodeId, req: message.Payload.GameRequest}, true
}

// Stop 退订并等待分片协程退出
func (s *MessageSubscriber) Stop() {
	if s.subscription != nil {
		if err := s.subscription.Unsubscribe(); err != nil {
			s.logger.Warn("Failed to unsubscribe", "error", err)
		}
	}
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.wg.Wait()
	s.logger.Info("NATS subscriber stopped")
}
