package nats

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"sudooom.im.mahjong/pkg/proto"
)

// MessagePublisher 把牌局推送发往接入节点
type MessagePublisher struct {
	nc     *nats.Conn
	logger *slog.Logger
}

// NewMessagePublisher 创建消息发布器
func NewMessagePublisher(nc *nats.Conn) *MessagePublisher {
	return &MessagePublisher{
		nc:     nc,
		logger: slog.Default().With("component", "Publisher"),
	}
}

// PublishToAccess 推送到用户连接所在的接入节点
func (p *MessagePublisher) PublishToAccess(accessNodeId string, message *proto.DownstreamMessage) error {
	if accessNodeId == "" {
		return fmt.Errorf("publish to user %s: empty access node", message.UserId)
	}
	subject := proto.BuildAccessDownstreamSubject(accessNodeId)
	if err := p.publishJSON(subject, message); err != nil {
		return err
	}

	if push := message.Payload.GamePush; push != nil {
		p.logger.Debug("Game push sent",
			"subject", subject,
			"userId", message.UserId,
			"roomId", push.RoomId,
			"event", push.Event)
	}
	return nil
}

func (p *MessagePublisher) publishJSON(subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", subject, err)
	}
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}
