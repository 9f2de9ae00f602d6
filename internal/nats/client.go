package nats

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"sudooom.im.mahjong/internal/config"
)

// ErrNotConnected 连接不可用
var ErrNotConnected = errors.New("nats: not connected")

// Client NATS 连接，断线自动重连
type Client struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// NewClient 连接 NATS
func NewClient(cfg config.NATSConfig) (*Client, error) {
	c := &Client{logger: slog.Default().With("component", "NATS")}

	conn, err := nats.Connect(cfg.URL,
		nats.Name("mahjong"),
		nats.Timeout(10*time.Second),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(c.onDisconnect),
		nats.ReconnectHandler(c.onReconnect),
		nats.ClosedHandler(c.onClosed),
	)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func (c *Client) onDisconnect(_ *nats.Conn, err error) {
	c.logger.Warn("Disconnected from NATS, claim pushes are lost until reconnect", "error", err)
}

func (c *Client) onReconnect(nc *nats.Conn) {
	c.logger.Info("Reconnected to NATS", "url", nc.ConnectedUrl())
}

func (c *Client) onClosed(*nats.Conn) {
	c.logger.Info("NATS connection closed")
}

// Conn 底层连接
func (c *Client) Conn() *nats.Conn {
	return c.conn
}

// Ping 与服务端往返一次
func (c *Client) Ping(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return c.conn.FlushWithContext(ctx)
}

// IsConnected 检查连接状态
func (c *Client) IsConnected() bool {
	return c.conn != nil && c.conn.IsConnected()
}

// Close 排空订阅与待发消息后关闭
func (c *Client) Close() {
	if c.conn == nil {
		return
	}
	if err := c.conn.Drain(); err != nil {
		c.logger.Warn("NATS drain failed", "error", err)
		c.conn.Close()
	}
}
