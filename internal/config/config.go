package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port" validate:"required,numeric"`
	Env             string        `mapstructure:"env"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0s"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// StorageConfig selects the backend. Database and Collection only apply to mongo.
type StorageConfig struct {
	Driver     string `mapstructure:"driver" validate:"oneof=sqlite mongo"`
	DSN        string `mapstructure:"dsn" validate:"required"`
	Database   string `mapstructure:"database" validate:"required_if=Driver mongo"`
	Collection string `mapstructure:"collection" validate:"required_if=Driver mongo"`
}

// CacheConfig controls the result cache. Size bounds the in-process cache only.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl" validate:"gte=0s"`
	Size    int           `mapstructure:"size" validate:"gte=0"`
}

// RedisConfig backs the result cache. An empty Addr selects the in-process cache.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// RateLimitConfig is per client IP. Zero requests per second disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int     `mapstructure:"burst" validate:"gte=0"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig() (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	v := viper.New()

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// names used by the original node deployment
	_ = v.BindEnv("server.port", "SERVER_PORT", "PORT")
	_ = v.BindEnv("storage.dsn", "STORAGE_DSN", "MONGO_URL")
	_ = v.BindEnv("storage.database", "STORAGE_DATABASE", "MONGO_DB")
	_ = v.BindEnv("storage.collection", "STORAGE_COLLECTION", "MONGO_COLLECTION")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8081")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.dsn", "file:netstats.db?_journal_mode=WAL&_busy_timeout=5000")
	v.SetDefault("storage.database", "netstats")
	v.SetDefault("storage.collection", "usage_records")

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.ttl", 30*time.Second)
	v.SetDefault("cache.size", 1024)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("rate_limit.requests_per_second", 0.0)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "netstats")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}
