// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string  `yaml:"token"`
	Workers  int     `yaml:"workers"` // polling workers
	AdminIDs []int64 `yaml:"admin_ids"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // conversation state TTL
}

type GiftsBattleConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"` // per remote call
}

type ActivationConfig struct {
	ConcurrentLimit int           `yaml:"concurrent_limit"` // max in-flight activations per batch
	RefreshInterval time.Duration `yaml:"refresh_interval"` // periodic balance refresh; 0 disables
}

type AdminConfig struct {
	Port       int           `yaml:"port"` // 0 disables the admin HTTP API
	APIKey     string        `yaml:"api_key"`
	JWTSecret  string        `yaml:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type Config struct {
	Bot         BotConfig         `yaml:"bot"`
	Log         LogConfig         `yaml:"log"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	GiftsBattle GiftsBattleConfig `yaml:"giftsbattle"`
	Activation  ActivationConfig  `yaml:"activation"`
	Admin       AdminConfig       `yaml:"admin"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.GiftsBattle.BaseURL == "" {
		cfg.GiftsBattle.BaseURL = "https://giftsbattle.com/api/v1"
	}
	if cfg.GiftsBattle.Timeout <= 0 {
		cfg.GiftsBattle.Timeout = 10 * time.Second
	}
	if cfg.Activation.ConcurrentLimit <= 0 {
		cfg.Activation.ConcurrentLimit = 16
	}
	if cfg.Admin.SessionTTL <= 0 {
		cfg.Admin.SessionTTL = 30 * time.Minute
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if len(cfg.Bot.AdminIDs) == 0 {
		return nil, errors.New("bot.admin_ids is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Admin.Port != 0 && cfg.Admin.APIKey == "" {
		return nil, errors.New("admin.api_key is required when admin.port is set")
	}
	if cfg.Admin.Port != 0 && cfg.Admin.JWTSecret == "" {
		return nil, errors.New("admin.jwt_secret is required when admin.port is set")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return 15 * time.Minute
	}
	return d
}
