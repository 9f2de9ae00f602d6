package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App           AppConfig           `mapstructure:"app"`
	NATS          NATSConfig          `mapstructure:"nats"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	HTTP          HTTPConfig          `mapstructure:"http"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Game          GameConfig          `mapstructure:"game"`
	Subscriber    SubscriberConfig    `mapstructure:"subscriber"`
	Dispatcher    DispatcherConfig    `mapstructure:"dispatcher"`
	LocationCache LocationCacheConfig `mapstructure:"location_cache"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	NodeID   int64  `mapstructure:"node_id"` // 雪花ID节点号
	LogLevel string `mapstructure:"log_level"`
}

type NATSConfig struct {
	URL           string        `mapstructure:"url"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// HTTPConfig 管理接口
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"` // gin: debug / release / test
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// GameConfig 牌局参数
type GameConfig struct {
	ClaimTimeout     time.Duration `mapstructure:"claim_timeout"`
	ClaimPolicy      string        `mapstructure:"claim_policy"` // first_valid / priority
	SchedulerWorkers int           `mapstructure:"scheduler_workers"`
	SchedulerTick    time.Duration `mapstructure:"scheduler_tick"`
	MaxGames         int           `mapstructure:"max_games"`
	EvictTimeout     time.Duration `mapstructure:"evict_timeout"`
	EvictInterval    time.Duration `mapstructure:"evict_interval"`
	SpecialHandsFile string        `mapstructure:"special_hands_file"`
}

type SubscriberConfig struct {
	WorkerCount int `mapstructure:"worker_count"`
	BufferSize  int `mapstructure:"buffer_size"`
}

type DispatcherConfig struct {
	WorkerCount int `mapstructure:"worker_count"`
	BufferSize  int `mapstructure:"buffer_size"`
}

type LocationCacheConfig struct {
	MaxCost int64         `mapstructure:"max_cost"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// MetricsConfig 运行时监控，地址为空时关闭
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "mahjong")
	v.SetDefault("app.node_id", 1)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("http.addr", ":8082")
	v.SetDefault("http.mode", "release")
	v.SetDefault("jwt.issuer", "sudooom.im")
	v.SetDefault("game.claim_timeout", 10*time.Second)
	v.SetDefault("game.claim_policy", "first_valid")
	v.SetDefault("game.scheduler_workers", 8)
	v.SetDefault("game.scheduler_tick", 100*time.Millisecond)
	v.SetDefault("game.max_games", 10000)
	v.SetDefault("game.evict_timeout", 30*time.Minute)
	v.SetDefault("game.evict_interval", time.Minute)
	v.SetDefault("subscriber.worker_count", 64)
	v.SetDefault("subscriber.buffer_size", 10000)
	v.SetDefault("dispatcher.worker_count", 16)
	v.SetDefault("dispatcher.buffer_size", 1024)
	v.SetDefault("location_cache.max_cost", 100000)
	v.SetDefault("location_cache.ttl", 5*time.Second)
}

// Load 从指定路径加载配置，未配置的项使用默认值
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
