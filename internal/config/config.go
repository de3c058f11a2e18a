package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
	Redis         RedisConfig         `mapstructure:"redis"`
	MySQL         MySQLConfig         `mapstructure:"mysql"`
	LiveKit       LiveKitConfig       `mapstructure:"livekit"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Leader        LeaderConfig        `mapstructure:"leader"`
	Scheduler     SchedulerConfig     `mapstructure:"scheduler"`
	Instance      InstanceConfig      `mapstructure:"instance"`
}

type ServerConfig struct {
	Port        int      `mapstructure:"port"`
	Host        string   `mapstructure:"host"`
	MainPrefix  string   `mapstructure:"main_prefix"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MySQLConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type LiveKitConfig struct {
	URL       string        `mapstructure:"url"`
	APIKey    string        `mapstructure:"api_key"`
	APISecret string        `mapstructure:"api_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// StorageConfig selects where products, users, bids and rooms live.
// "memory" keeps them in process and is meant for local development.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

// NotificationsConfig selects the topic bus backing bid notifications.
// "redis" fans out across processes; "memory" only within this process.
type NotificationsConfig struct {
	Bus string `mapstructure:"bus"`
}

type LeaderConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
	Key string        `mapstructure:"key"`
}

type SchedulerConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	WinningBidsSpec string `mapstructure:"winning_bids_spec"`
}

type InstanceConfig struct {
	ID string `mapstructure:"id"`
}

const (
	BusRedis  = "redis"
	BusMemory = "memory"

	StorageMySQL  = "mysql"
	StorageMemory = "memory"
)

var envBindings = map[string]string{
	"server.port":                 "SERVER_PORT",
	"server.host":                 "SERVER_HOST",
	"server.main_prefix":          "MAIN_PREFIX",
	"server.cors_origins":         "CORS_ORIGINS",
	"log.level":                   "LOG_LEVEL",
	"redis.address":               "REDIS_ADDRESS",
	"redis.password":              "REDIS_PASSWORD",
	"redis.db":                    "REDIS_DB",
	"mysql.dsn":                   "MYSQL_DSN",
	"mysql.max_open_conns":        "MYSQL_MAX_OPEN_CONNS",
	"mysql.max_idle_conns":        "MYSQL_MAX_IDLE_CONNS",
	"mysql.conn_max_lifetime":     "MYSQL_CONN_MAX_LIFETIME",
	"livekit.url":                 "LIVEKIT_URL",
	"livekit.api_key":             "LIVEKIT_API_KEY",
	"livekit.api_secret":          "LIVEKIT_API_SECRET",
	"livekit.token_ttl":           "LIVEKIT_TOKEN_TTL",
	"storage.driver":              "STORAGE_DRIVER",
	"notifications.bus":           "NOTIFICATIONS_BUS",
	"leader.ttl":                  "LEADER_TTL",
	"leader.key":                  "LEADER_KEY",
	"scheduler.enabled":           "SCHEDULER_ENABLED",
	"scheduler.winning_bids_spec": "SCHEDULER_WINNING_BIDS_SPEC",
	"instance.id":                 "INSTANCE_ID",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.main_prefix", "/api")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000", "http://localhost:8080"})
	v.SetDefault("log.level", "info")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("mysql.dsn", "bidding_user:bidding_pass@tcp(localhost:3306)/bidding_db?parseTime=true")
	v.SetDefault("mysql.max_open_conns", 25)
	v.SetDefault("mysql.max_idle_conns", 10)
	v.SetDefault("mysql.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("livekit.url", "ws://localhost:7880")
	v.SetDefault("livekit.api_key", "")
	v.SetDefault("livekit.api_secret", "")
	v.SetDefault("livekit.token_ttl", 6*time.Hour)
	v.SetDefault("storage.driver", StorageMySQL)
	v.SetDefault("notifications.bus", BusRedis)
	v.SetDefault("leader.ttl", 30*time.Second)
	v.SetDefault("leader.key", "bidding_winner_leader")
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.winning_bids_spec", "@every 1m")
	v.SetDefault("instance.id", "")
}

func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Configuration file settings
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/bidding-system/")

	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	// Read configuration file (optional - will use defaults/env vars if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	return decode(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Notifications.Bus {
	case BusRedis, BusMemory:
	default:
		return fmt.Errorf("unknown notifications bus %q", c.Notifications.Bus)
	}
	switch c.Storage.Driver {
	case StorageMySQL, StorageMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// GetConfigString returns a formatted string representation of the config
func (c *Config) GetConfigString() string {
	return fmt.Sprintf(
		"Server: %s:%d%s, Redis: %s, Storage: %s, Bus: %s, LiveKit: %s, Instance: %s",
		c.Server.Host,
		c.Server.Port,
		c.Server.MainPrefix,
		c.Redis.Address,
		c.Storage.Driver,
		c.Notifications.Bus,
		c.LiveKit.URL,
		c.Instance.ID,
	)
}
