// internal/config/config.go
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
	HTTPAddr           string        `mapstructure:"HTTP_ADDR"`
	GithubToken        string        `mapstructure:"GITHUB_TOKEN"`
	GithubAPIURL       string        `mapstructure:"GITHUB_API_URL"`
	DefaultGithubUser  string        `mapstructure:"DEFAULT_GITHUB_USER"`
	TrendingTimeout    time.Duration `mapstructure:"TRENDING_TIMEOUT"`
	CacheTTL           time.Duration `mapstructure:"CACHE_TTL"`
	RedisURL           string        `mapstructure:"REDIS_URL"`
	NotificationWindow time.Duration `mapstructure:"NOTIFICATION_WINDOW"`
	WarmInterval       time.Duration `mapstructure:"WARM_INTERVAL"`
}

var defaults = map[string]any{
	"LOG_LEVEL":           "info",
	"HTTP_ADDR":           ":8080",
	"GITHUB_TOKEN":        "",
	"GITHUB_API_URL":      "",
	"DEFAULT_GITHUB_USER": "leerob",
	"TRENDING_TIMEOUT":    "15s",
	"CACHE_TTL":           "1h",
	"REDIS_URL":           "",
	"NOTIFICATION_WINDOW": "24h",
	"WARM_INTERVAL":       "0s",
}

// LoadConfig reads configuration from a .env file in dir (if present) and environment variables.
func LoadConfig(dir string) (*Config, error) {
	v := viper.New()

	// Set default values; they also register every key for AutomaticEnv.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// Load from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(dir)
	_ = v.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate fields
	if cfg.HTTPAddr == "" {
		return nil, errors.New("HTTP_ADDR must not be empty")
	}
	if cfg.TrendingTimeout <= 0 {
		return nil, errors.New("TRENDING_TIMEOUT must be a positive duration (e.g. 15s)")
	}
	if cfg.CacheTTL <= 0 {
		return nil, errors.New("CACHE_TTL must be a positive duration (e.g. 1h)")
	}
	if cfg.NotificationWindow <= 0 {
		return nil, errors.New("NOTIFICATION_WINDOW must be a positive duration (e.g. 24h)")
	}
	if cfg.WarmInterval < 0 {
		return nil, errors.New("WARM_INTERVAL must not be negative (0 disables the cache warmer)")
	}
	if cfg.RedisURL != "" && !strings.HasPrefix(cfg.RedisURL, "redis://") && !strings.HasPrefix(cfg.RedisURL, "rediss://") {
		return nil, errors.New("REDIS_URL must start with redis:// or rediss://")
	}

	return &cfg, nil
}
