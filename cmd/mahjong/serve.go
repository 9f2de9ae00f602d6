package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"sudooom.im.mahjong/internal/config"
	"sudooom.im.mahjong/internal/game"
	"sudooom.im.mahjong/internal/game/mahjong/core"
	"sudooom.im.mahjong/internal/handler"
	"sudooom.im.mahjong/internal/health"
	"sudooom.im.mahjong/internal/metrics"
	"sudooom.im.mahjong/internal/middleware"
	imNats "sudooom.im.mahjong/internal/nats"
	"sudooom.im.mahjong/internal/repository"
	"sudooom.im.mahjong/internal/router"
	"sudooom.im.mahjong/internal/service"
	"sudooom.im.mahjong/internal/task"
	"sudooom.im.mahjong/pkg/snowflake"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动牌局服务",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := slog.Default()

	policy, err := core.ParseClaimPolicy(cfg.Game.ClaimPolicy)
	if err != nil {
		return err
	}
	specialHands, err := config.LoadSpecialHands(cfg.Game.SpecialHandsFile)
	if err != nil {
		return fmt.Errorf("load special hands: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 连接 NATS
	natsClient, err := imNats.NewClient(cfg.NATS)
	if err != nil {
		return fmt.Errorf("connect nats: %w", err)
	}
	defer natsClient.Close()
	logger.Info("Connected to NATS", "url", cfg.NATS.URL)

	// 连接 Redis
	redisClient := connectRedis(cfg.Redis)
	defer redisClient.Close()
	logger.Info("Connected to Redis", "host", cfg.Redis.Host)

	// 连接数据库
	db, err := connectDatabase(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL", "host", cfg.Database.Host)

	sf, err := snowflake.NewNode(cfg.App.NodeID)
	if err != nil {
		return fmt.Errorf("node id %d: %w", cfg.App.NodeID, err)
	}
	records := repository.NewGameRecordRepository(db, sf)
	if err := records.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("prepare game record table: %w", err)
	}

	// 抢牌窗口超时调度
	scheduler := task.NewScheduler(cfg.Game.SchedulerWorkers, cfg.Game.SchedulerTick)
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer scheduler.Stop()

	// 事件推送
	locations, err := service.NewLocationService(redisClient, service.LocationConfig{
		MaxCost: cfg.LocationCache.MaxCost,
		TTL:     cfg.LocationCache.TTL,
	})
	if err != nil {
		return err
	}
	defer locations.Close()
	dispatcher := service.NewDispatcherService(locations, imNats.NewMessagePublisher(natsClient.Conn()), service.DispatcherConfig{
		WorkerCount: cfg.Dispatcher.WorkerCount,
		BufferSize:  cfg.Dispatcher.BufferSize,
	})
	dispatcher.Start()
	defer dispatcher.Stop()

	// 牌局
	gameManager := game.NewGameManager(game.ManagerConfig{
		MaxGames:      cfg.Game.MaxGames,
		EvictTimeout:  cfg.Game.EvictTimeout,
		EvictInterval: cfg.Game.EvictInterval,
		ClaimTimeout:  cfg.Game.ClaimTimeout,
		Policy:        policy,
		SpecialHands:  specialHands,
	}, scheduler, dispatcher, records)
	gameHandler := handler.NewGameHandler(game.NewGameService(gameManager, dispatcher))

	subscriber := imNats.NewMessageSubscriber(natsClient.Conn(), gameHandler, imNats.SubscriberConfig{
		WorkerCount: cfg.Subscriber.WorkerCount,
		BufferSize:  cfg.Subscriber.BufferSize,
	})
	if err := subscriber.Start(ctx); err != nil {
		return fmt.Errorf("start subscriber: %w", err)
	}

	// 运维接口
	engine := router.SetupRouter(cfg.HTTP.Mode,
		middleware.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer),
		health.NewChecker(natsClient.Ping, redisClient, db, gameManager.Count),
		handler.NewAdminHandler(gameManager, records))
	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Admin server started", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Admin server failed", "error", err)
		}
	}()

	metricsServer, err := metrics.Serve(cfg.Metrics.Addr)
	if err != nil {
		logger.Warn("Metrics server disabled", "error", err)
	}

	logger.Info("Mahjong service started",
		"claimPolicy", policy.String(),
		"claimTimeout", cfg.Game.ClaimTimeout)

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	// 先停止接收请求，保存牌局后再停超时任务，最后投递完剩余事件
	subscriber.Stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Admin server shutdown failed", "error", err)
	}
	if metricsServer != nil {
		metricsServer.Shutdown(shutdownCtx)
	}
	if err := gameManager.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Some games were not saved", "error", err)
	}
	scheduler.Stop()
	dispatcher.Stop()
	logger.Info("Mahjong service stopped", "scheduler", scheduler.Stats())
	return nil
}

// connectRedis 连接 Redis
func connectRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// connectDatabase 连接 PostgreSQL
func connectDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	}
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = 10 * time.Minute

	return pgxpool.NewWithConfig(ctx, poolConfig)
}
