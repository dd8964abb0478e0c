package config

import (
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	PokeAPI  PokeAPIConfig  `mapstructure:"pokeapi"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
}

// PokeAPIConfig holds remote API configuration
type PokeAPIConfig struct {
	BaseURL              string `mapstructure:"base_url"`
	Timeout              int    `mapstructure:"timeout"` // seconds
	MaxRetries           int    `mapstructure:"max_retries"`
	MaxRequestsPerSecond int    `mapstructure:"max_requests_per_second"` // 0 = unlimited
	UserAgent            string `mapstructure:"user_agent"`
	CircuitBreakerDelay  int    `mapstructure:"circuit_breaker_delay"` // seconds
}

// FeedConfig holds list sizes and scroll thresholds for the feed and story carousel
type FeedConfig struct {
	PostPageSize   int    `mapstructure:"post_page_size"`
	StoryPageSize  int    `mapstructure:"story_page_size"`
	PostThreshold  int    `mapstructure:"post_threshold"`  // px from content end
	StoryThreshold int    `mapstructure:"story_threshold"` // px from content end
	SearchLimit    int    `mapstructure:"search_limit"`
	SearchQuery    string `mapstructure:"search_query"`
}

// StorageConfig selects the durable key-value backend
type StorageConfig struct {
	Driver    string `mapstructure:"driver"` // memory, redis or postgres
	RecentKey string `mapstructure:"recent_key"`
}

// CacheConfig controls the detail query cache
type CacheConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	DetailTTL int  `mapstructure:"detail_ttl"` // seconds
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// DSN returns the pgx connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from config.yaml with environment variable overrides.
// A missing file is not an error; defaults apply.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Info("config.yaml not found, using defaults and environment")
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "memory", "redis", "postgres":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.PokeAPI.Timeout <= 0 {
		return fmt.Errorf("pokeapi.timeout must be positive, got %d", c.PokeAPI.Timeout)
	}
	if c.Feed.PostPageSize <= 0 || c.Feed.StoryPageSize <= 0 {
		return fmt.Errorf("feed page sizes must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pokeapi.base_url", "https://pokeapi.co/api/v2")
	v.SetDefault("pokeapi.timeout", 10)
	v.SetDefault("pokeapi.max_retries", 0)
	v.SetDefault("pokeapi.max_requests_per_second", 0)
	v.SetDefault("pokeapi.user_agent", "pokegram-feed/1.0")
	v.SetDefault("pokeapi.circuit_breaker_delay", 60)

	v.SetDefault("feed.post_page_size", 20)
	v.SetDefault("feed.story_page_size", 20)
	v.SetDefault("feed.post_threshold", 1000)
	v.SetDefault("feed.story_threshold", 100)
	v.SetDefault("feed.search_limit", 10)
	v.SetDefault("feed.search_query", "")

	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.recent_key", "recentSearches")

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.detail_ttl", 300)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "pokegram")
	v.SetDefault("database.user", "pokegram_user")
	v.SetDefault("database.password", "pokegram_pass")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)

	v.SetDefault("log.level", "info")
}
