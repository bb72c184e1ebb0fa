// Package config provides application configuration management using Viper.
// Configuration is loaded from YAML files, .env files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"drama-platform-client/internal/validator"
)

// EnvPrefix prefixes every environment override, e.g. DRAMA_API_BASE_URL.
const EnvPrefix = "DRAMA"

// Config holds all application configuration.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Home    HomeConfig    `mapstructure:"home"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logger  LoggerConfig  `mapstructure:"logger"`
	Sentry  SentryConfig  `mapstructure:"sentry"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name  string `mapstructure:"name"`
	Env   string `mapstructure:"env" validate:"oneof=development staging production test"`
	Port  int    `mapstructure:"port" validate:"min=1,max=65535"`
	Debug bool   `mapstructure:"debug"`
	// CORSOrigins lists the browser origins allowed to call the web server.
	CORSOrigins []string `mapstructure:"cors_origins" validate:"min=1,dive,required"`
}

// APIConfig holds backend transport settings.
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url" validate:"required,url"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
	UserAgent string        `mapstructure:"user_agent"`
	CB        CBConfig      `mapstructure:"circuit_breaker"`
}

// CBConfig holds circuit breaker settings.
type CBConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio" validate:"min=0,max=1"`
}

// Session drivers.
const (
	SessionDriverMemory = "memory"
	SessionDriverFile   = "file"
	SessionDriverRedis  = "redis"
)

// SessionConfig selects and configures the session store.
type SessionConfig struct {
	Driver       string        `mapstructure:"driver" validate:"oneof=memory file redis"`
	FilePath     string        `mapstructure:"file_path" validate:"required_if=Driver file"`
	Key          string        `mapstructure:"key" validate:"required_if=Driver redis"`
	LockTTL      time.Duration `mapstructure:"lock_ttl"`
	ReapInterval time.Duration `mapstructure:"reap_interval"` // 0 disables the reaper
}

// HomeConfig caps the home feed collections.
type HomeConfig struct {
	HotLimit      int `mapstructure:"hot_limit" validate:"min=0"`
	NewLimit      int `mapstructure:"new_limit" validate:"min=0"`
	TrendingLimit int `mapstructure:"trending_limit" validate:"min=0"`
	PopularLimit  int `mapstructure:"popular_limit" validate:"min=0"`
}

// CacheConfig controls the web server's read caches. A zero TTL disables a cache.
type CacheConfig struct {
	HomeTTL    time.Duration `mapstructure:"home_ttl" validate:"min=0"`
	SearchTTL  time.Duration `mapstructure:"search_ttl" validate:"min=0"`
	SearchSize int           `mapstructure:"search_size" validate:"min=0"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, file path
}

// SentryConfig holds Sentry error tracking settings.
type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// RedisConfig holds Redis connection settings for the shared session store.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns host:port.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from file and environment variables.
// Priority: env vars > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found, continue with defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validator.New().Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// DefaultSessionPath is where the CLI keeps its session between runs.
func DefaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".dramactl", "session.json")
	}
	return filepath.Join(home, ".dramactl", "session.json")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "drama-web")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 3000)
	v.SetDefault("app.debug", true)
	v.SetDefault("app.cors_origins", []string{"http://localhost:3000"})

	// Backend defaults
	v.SetDefault("api.base_url", "http://localhost:3001/api/v1")
	v.SetDefault("api.timeout", "10s")
	v.SetDefault("api.user_agent", "drama-platform-client")
	v.SetDefault("api.circuit_breaker.enabled", false)
	v.SetDefault("api.circuit_breaker.max_requests", 3)
	v.SetDefault("api.circuit_breaker.interval", "60s")
	v.SetDefault("api.circuit_breaker.timeout", "30s")
	v.SetDefault("api.circuit_breaker.failure_ratio", 0.5)

	// Session defaults
	v.SetDefault("session.driver", SessionDriverFile)
	v.SetDefault("session.file_path", DefaultSessionPath())
	v.SetDefault("session.key", "drama-client:session")
	v.SetDefault("session.lock_ttl", "5s")
	v.SetDefault("session.reap_interval", "1m")

	// Home feed defaults
	v.SetDefault("home.hot_limit", 8)
	v.SetDefault("home.new_limit", 8)
	v.SetDefault("home.trending_limit", 8)
	v.SetDefault("home.popular_limit", 10)

	// Cache defaults
	v.SetDefault("cache.home_ttl", "0s")
	v.SetDefault("cache.search_ttl", "0s")
	v.SetDefault("cache.search_size", 256)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stdout")

	// Sentry defaults
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.sample_rate", 1.0)

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}
