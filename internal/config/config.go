package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string           `mapstructure:"environment"`
	LogLevel    string           `mapstructure:"log_level"`
	Analytics   AnalyticsConfig  `mapstructure:"analytics"`
	MarketData  MarketDataConfig `mapstructure:"market_data"`
	Redis       RedisConfig      `mapstructure:"redis"`
}

type AnalyticsConfig struct {
	ATRPeriod          int `mapstructure:"atr_period"`
	EMAPeriod          int `mapstructure:"ema_period"`
	LookbackBufferDays int `mapstructure:"lookback_buffer_days"`
	MinClusters        int `mapstructure:"min_clusters"`
	MaxClusters        int `mapstructure:"max_clusters"`
	KMeansInits        int `mapstructure:"kmeans_inits"`
}

type MarketDataConfig struct {
	ProviderURL  string `mapstructure:"provider_url"`
	Timeout      int    `mapstructure:"timeout"`
	CacheBackend string `mapstructure:"cache_backend"`
	CacheTTL     string `mapstructure:"cache_ttl"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the value ranges the engine depends on.
func (c *Config) Validate() error {
	if c.Analytics.ATRPeriod < 1 {
		return fmt.Errorf("analytics.atr_period must be positive, got %d", c.Analytics.ATRPeriod)
	}
	if c.Analytics.EMAPeriod < 1 {
		return fmt.Errorf("analytics.ema_period must be positive, got %d", c.Analytics.EMAPeriod)
	}
	if c.Analytics.MinClusters < 2 || c.Analytics.MaxClusters > 20 || c.Analytics.MinClusters > c.Analytics.MaxClusters {
		return fmt.Errorf("analytics cluster bounds must satisfy 2 <= min <= max <= 20, got [%d, %d]",
			c.Analytics.MinClusters, c.Analytics.MaxClusters)
	}
	if c.Analytics.KMeansInits < 1 {
		return fmt.Errorf("analytics.kmeans_inits must be positive, got %d", c.Analytics.KMeansInits)
	}
	if _, err := time.ParseDuration(c.MarketData.CacheTTL); err != nil {
		return fmt.Errorf("invalid market_data.cache_ttl: %w", err)
	}
	switch c.MarketData.CacheBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("market_data.cache_backend must be memory or redis, got %q", c.MarketData.CacheBackend)
	}
	return nil
}

// CacheTTLDuration returns the parsed series cache TTL.
func (c *MarketDataConfig) CacheTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("analytics.atr_period", 14)
	viper.SetDefault("analytics.ema_period", 21)
	viper.SetDefault("analytics.lookback_buffer_days", 60)
	viper.SetDefault("analytics.min_clusters", 2)
	viper.SetDefault("analytics.max_clusters", 20)
	viper.SetDefault("analytics.kmeans_inits", 10)

	viper.SetDefault("market_data.provider_url", "https://query1.finance.yahoo.com")
	viper.SetDefault("market_data.timeout", 30)
	viper.SetDefault("market_data.cache_backend", "memory")
	viper.SetDefault("market_data.cache_ttl", "24h")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
}
