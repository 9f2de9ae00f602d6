package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/redis/go-redis/v9"
)

// AllPlatforms 支持的所有平台列表
var AllPlatforms = []string{"android", "ios", "web", "desktop", "wechat"}

// 用户位置 key，由 Access 服务在连接建立时写入
const userLocationKeyPrefix = "im:user:location:"

// BuildUserLocationKey im:user:location:{userId}:{platform}
func BuildUserLocationKey(userId, platform string) string {
	return userLocationKeyPrefix + userId + ":" + platform
}

// Location 玩家某个平台的连接位置
type Location struct {
	AccessNodeId string    `json:"accessNodeId"`
	ConnId       int64     `json:"connId"`
	DeviceId     string    `json:"deviceId"`
	Platform     string    `json:"platform"`
	LoginTime    time.Time `json:"loginTime"`
}

// LocationConfig 本地缓存配置
type LocationConfig struct {
	MaxCost int64         // 缓存条目上限 (每个玩家成本为 1)
	TTL     time.Duration // 位置缓存过期时间
}

// LocationService 玩家位置查询，Redis 之前加一层本地缓存
type LocationService struct {
	redisClient *redis.Client
	cache       *ristretto.Cache
	ttl         time.Duration
	logger      *slog.Logger
}

// NewLocationService 创建位置服务
func NewLocationService(redisClient *redis.Client, cfg LocationConfig) (*LocationService, error) {
	if cfg.MaxCost <= 0 {
		cfg.MaxCost = 100000
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Second
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.MaxCost * 10,
		MaxCost:     cfg.MaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create location cache: %w", err)
	}
	return &LocationService{
		redisClient: redisClient,
		cache:       cache,
		ttl:         cfg.TTL,
		logger:      slog.Default().With("component", "LocationService"),
	}, nil
}

// Resolve 查询玩家所有在线的连接
func (s *LocationService) Resolve(ctx context.Context, userId string) ([]Location, error) {
	if cached, ok := s.cache.Get(userId); ok {
		return cached.([]Location), nil
	}

	locations, err := s.fromRedis(ctx, userId, AllPlatforms)
	if err != nil {
		return nil, err
	}

	// 离线玩家不缓存，重连后可以立即收到推送
	if len(locations) > 0 {
		s.cache.SetWithTTL(userId, locations, 1, s.ttl)
	}
	return locations, nil
}

func (s *LocationService) fromRedis(ctx context.Context, userId string, platforms []string) ([]Location, error) {
	keys := make([]string, len(platforms))
	for i, platform := range platforms {
		keys[i] = BuildUserLocationKey(userId, platform)
	}

	results, err := s.redisClient.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	locations := make([]Location, 0, len(platforms))
	for i, result := range results {
		jsonStr, ok := result.(string)
		if !ok || jsonStr == "" {
			continue
		}
		var loc Location
		if err := json.Unmarshal([]byte(jsonStr), &loc); err != nil {
			s.logger.Warn("Failed to unmarshal user location",
				"userId", userId,
				"platform", platforms[i],
				"error", err)
			continue
		}
		if loc.Platform == "" {
			loc.Platform = platforms[i]
		}
		locations = append(locations, loc)
	}
	return locations, nil
}

// Invalidate 失效玩家缓存
func (s *LocationService) Invalidate(userId string) {
	s.cache.Del(userId)
}

// Close 关闭本地缓存
func (s *LocationService) Close() {
	s.cache.Close()
}
