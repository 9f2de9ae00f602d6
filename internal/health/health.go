package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	connected    = "connected"
	disconnected = "disconnected"
)

// Status 健康状态
type Status struct {
	NATS     string `json:"nats"`
	Redis    string `json:"redis"`
	Database string `json:"database"`
	Games    int    `json:"games"`
}

// Healthy 所有依赖是否可用
func (s *Status) Healthy() bool {
	return s.NATS == connected && s.Redis == connected && s.Database == connected
}

// Probe 依赖检测
type Probe func(ctx context.Context) error

// Checker 健康检查器
type Checker struct {
	nats     Probe
	redis    Probe
	database Probe
	games    func() int
}

// NewChecker 创建健康检查器
func NewChecker(natsProbe Probe, redisClient *redis.Client, db *pgxpool.Pool, games func() int) *Checker {
	redisProbe := func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	}
	return NewProbeChecker(natsProbe, redisProbe, db.Ping, games)
}

// NewProbeChecker 用自定义检测创建检查器
func NewProbeChecker(natsProbe, redisProbe, databaseProbe Probe, games func() int) *Checker {
	return &Checker{
		nats:     natsProbe,
		redis:    redisProbe,
		database: databaseProbe,
		games:    games,
	}
}

// Check 执行健康检查
func (h *Checker) Check(ctx context.Context) *Status {
	status := &Status{
		NATS:     probe(ctx, h.nats),
		Redis:    probe(ctx, h.redis),
		Database: probe(ctx, h.database),
	}
	if h.games != nil {
		status.Games = h.games()
	}
	return status
}

func probe(ctx context.Context, p Probe) string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := p(ctx); err != nil {
		return disconnected
	}
	return connected
}

// Health GET /health
func (h *Checker) Health(c *gin.Context) {
	status := h.Check(c.Request.Context())
	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

// Ready GET /ready
func (h *Checker) Ready(c *gin.Context) {
	if h.Check(c.Request.Context()).Healthy() {
		c.String(http.StatusOK, "OK")
		return
	}
	c.String(http.StatusServiceUnavailable, "Not Ready")
}
