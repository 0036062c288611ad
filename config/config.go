package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Perpdash PerpdashConfig `yaml:"perpdash"`
	Server   ServerConfig   `yaml:"server"`
	Venue    VenueConfig    `yaml:"venue"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`

	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
}

// LeaderboardConfig lists the account ids the leaderboard tracks. An empty
// list disables the endpoint.
type LeaderboardConfig struct {
	Accounts []int64 `yaml:"accounts"`
}

type PerpdashConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type ServerConfig struct {
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type VenueConfig struct {
	DataBaseURL    string          `yaml:"data_base_url"`
	GatewayBaseURL string          `yaml:"gateway_base_url"`
	UserAgent      string          `yaml:"user_agent"`
	Timeout        time.Duration   `yaml:"timeout"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
	PageLimit      int             `yaml:"page_limit"`
	MaxPages       int             `yaml:"max_pages"`
}

type RateLimitConfig struct {
	RequestsPerSecond int `yaml:"requests_per_second"`
	BurstSize         int `yaml:"burst_size"`
}

type CacheConfig struct {
	VolumeTTL  time.Duration `yaml:"volume_ttl"`
	SymbolsTTL time.Duration `yaml:"symbols_ttl"`
	PricesTTL  time.Duration `yaml:"prices_ttl"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
	// CloudWatch shipping is optional; an empty region disables it.
	CloudWatchRegion    string `yaml:"cloudwatch_region"`
	CloudWatchNamespace string `yaml:"cloudwatch_namespace"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LoadConfig reads, defaults and validates the yaml configuration at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Config{
		Server: ServerConfig{
			Address:      "0.0.0.0:8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Venue: VenueConfig{
			Timeout:   15 * time.Second,
			RateLimit: RateLimitConfig{RequestsPerSecond: 5, BurstSize: 2},
			PageLimit: 1000,
			MaxPages:  10,
		},
		Cache: CacheConfig{
			VolumeTTL:  6 * time.Hour,
			SymbolsTTL: time.Hour,
			PricesTTL:  time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{Enabled: true},
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override deploy-time settings from environment variables if available
	if v := os.Getenv("PERPDASH_ADDRESS"); v != "" {
		config.Server.Address = strings.TrimSpace(v)
	}
	if v := os.Getenv("PERPDASH_DATA_URL"); v != "" {
		config.Venue.DataBaseURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("PERPDASH_GATEWAY_URL"); v != "" {
		config.Venue.GatewayBaseURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		config.Logging.CloudWatchRegion = strings.TrimSpace(v)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Perpdash.Name == "" {
		return fmt.Errorf("perpdash.name is required")
	}

	if cfg.Perpdash.Version == "" {
		return fmt.Errorf("perpdash.version is required")
	}

	if cfg.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}

	if cfg.Venue.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("venue.rate_limit.requests_per_second must be greater than 0")
	}

	if cfg.Venue.RateLimit.BurstSize <= 0 {
		return fmt.Errorf("venue.rate_limit.burst_size must be greater than 0")
	}

	if cfg.Venue.PageLimit <= 0 {
		return fmt.Errorf("venue.page_limit must be greater than 0")
	}

	if cfg.Venue.MaxPages <= 0 || cfg.Venue.MaxPages > 10 {
		return fmt.Errorf("venue.max_pages must be between 1 and 10")
	}

	if cfg.Cache.VolumeTTL < 0 || cfg.Cache.SymbolsTTL < 0 || cfg.Cache.PricesTTL < 0 {
		return fmt.Errorf("cache ttl values must not be negative")
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text")
	}

	return nil
}
