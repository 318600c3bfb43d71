// Package config loads and validates the application configuration from a
// YAML file with environment-variable overrides (prefix BIDSCOPE).
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	G2B      G2BConfig      `mapstructure:"g2b"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Export   ExportConfig   `mapstructure:"export"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// G2BConfig holds the procurement data service (data.go.kr) configuration.
type G2BConfig struct {
	ServiceKey     string        `mapstructure:"service_key"`
	BidInfoURL     string        `mapstructure:"bid_info_url"`
	ScsbidInfoURL  string        `mapstructure:"scsbid_info_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// AnalysisConfig holds the rate-analysis tuning parameters.
type AnalysisConfig struct {
	// HotZoneWidth is the fixed width (in rate percentage points) of the
	// sliding window used to locate the densest winning-rate cluster.
	HotZoneWidth float64 `mapstructure:"hot_zone_width"`
	// HotZoneStep is the window advance per iteration.
	HotZoneStep float64 `mapstructure:"hot_zone_step"`
	// BinWidth is the blue-ocean histogram bin width. 0.0005 is the
	// density-vs-supply default; 0.1 gives the coarse variant.
	BinWidth float64 `mapstructure:"bin_width"`
	// BandMin/BandMax bound the rates kept in the comparison table.
	BandMin float64 `mapstructure:"band_min"`
	BandMax float64 `mapstructure:"band_max"`
}

// CacheConfig holds the sqlite lookup-cache configuration.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	DBPath  string        `mapstructure:"db_path"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// TelegramConfig holds the batch-summary notification configuration.
type TelegramConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// ExportConfig holds the comparison-table export configuration.
type ExportConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	OutputDir string `mapstructure:"output_dir"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	v.SetEnvPrefix("BIDSCOPE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options.
func setDefaults(v *viper.Viper) {
	v.SetDefault("g2b.bid_info_url", "http://apis.data.go.kr/1230000/ad/BidPublicInfoService")
	v.SetDefault("g2b.scsbid_info_url", "http://apis.data.go.kr/1230000/as/ScsbidInfoService")
	v.SetDefault("g2b.timeout", "10s")
	v.SetDefault("g2b.max_retries", 3)
	v.SetDefault("g2b.retry_delay_base", "1s")

	v.SetDefault("analysis.hot_zone_width", 0.3)
	v.SetDefault("analysis.hot_zone_step", 0.05)
	v.SetDefault("analysis.bin_width", 0.0005)
	v.SetDefault("analysis.band_min", 90.0)
	v.SetDefault("analysis.band_max", 110.0)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.db_path", "./data/bidscope-cache.db")
	v.SetDefault("cache.ttl", "24h")

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	v.SetDefault("export.enabled", true)
	v.SetDefault("export.output_dir", ".")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid.
func (c *Config) Validate() error {
	if c.G2B.ServiceKey == "" {
		return fmt.Errorf("g2b.service_key is required")
	}
	if c.G2B.BidInfoURL == "" {
		return fmt.Errorf("g2b.bid_info_url is required")
	}
	if c.G2B.ScsbidInfoURL == "" {
		return fmt.Errorf("g2b.scsbid_info_url is required")
	}
	if c.G2B.Timeout < 1*time.Second {
		return fmt.Errorf("g2b.timeout must be at least 1 second")
	}
	if c.G2B.MaxRetries < 1 {
		return fmt.Errorf("g2b.max_retries must be at least 1")
	}

	if c.Analysis.HotZoneWidth <= 0 {
		return fmt.Errorf("analysis.hot_zone_width must be positive")
	}
	if c.Analysis.HotZoneStep <= 0 {
		return fmt.Errorf("analysis.hot_zone_step must be positive")
	}
	if c.Analysis.BinWidth <= 0 {
		return fmt.Errorf("analysis.bin_width must be positive")
	}
	if c.Analysis.BandMin >= c.Analysis.BandMax {
		return fmt.Errorf("analysis.band_min must be below analysis.band_max")
	}

	if c.Cache.Enabled {
		if c.Cache.DBPath == "" {
			return fmt.Errorf("cache.db_path is required when cache is enabled")
		}
		if c.Cache.TTL < 1*time.Minute {
			return fmt.Errorf("cache.ttl must be at least 1 minute")
		}
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	if c.Export.Enabled && c.Export.OutputDir == "" {
		return fmt.Errorf("export.output_dir is required when export is enabled")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
