// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BackendConfig struct {
	BaseURL string        `yaml:"base_url"` // e.g. http://localhost:8000
	Timeout time.Duration `yaml:"timeout"`  // 0 = transport default (none)
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HTTPConfig struct {
	Addr string `yaml:"addr"` // local dashboard API, e.g. :8080
}

type RedisConfig struct {
	URL      string        `yaml:"url"` // empty = keep token in memory
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AuthConfig struct {
	Token   string `yaml:"token"`   // seeds the token store on start
	Profile string `yaml:"profile"` // token store namespace
}

type SecurityConfig struct {
	EncryptionKey string `yaml:"encryption_key"` // seals the token at rest; 16/24/32 bytes
}

type AIConfig struct {
	ConcurrentLimit int `yaml:"concurrent_limit"` // max concurrent backend calls, 0 = unlimited
}

type StoreConfig struct {
	JobCap int `yaml:"job_cap"`
}

type RefreshConfig struct {
	JobsInterval time.Duration `yaml:"jobs_interval"`
}

type NotifyConfig struct {
	Keep int `yaml:"keep"` // how many toasts stay visible
}

type Config struct {
	Backend  BackendConfig  `yaml:"backend"`
	Log      LogConfig      `yaml:"log"`
	HTTP     HTTPConfig     `yaml:"http"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Security SecurityConfig `yaml:"security"`
	AI       AIConfig       `yaml:"ai"`
	Store    StoreConfig    `yaml:"store"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	Notify   NotifyConfig   `yaml:"notify"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path. A missing file is only tolerated in
// dev mode, where defaults plus the noop backend are enough to run.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && dev:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg.Runtime.Dev = dev
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Parse is LoadConfig for an in-memory document.
func Parse(b []byte, dev bool) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Runtime.Dev = dev
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) normalize() error {
	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.Store.JobCap <= 0 {
		cfg.Store.JobCap = 20
	}
	if cfg.Refresh.JobsInterval <= 0 {
		cfg.Refresh.JobsInterval = 5 * time.Second
	}
	if cfg.Notify.Keep <= 0 {
		cfg.Notify.Keep = 5
	}
	if cfg.AI.ConcurrentLimit < 0 {
		cfg.AI.ConcurrentLimit = 0
	}
	if cfg.Auth.Profile == "" {
		cfg.Auth.Profile = "default"
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	// Minimal validation
	if cfg.Backend.BaseURL == "" {
		if !cfg.Runtime.Dev {
			return errors.New("backend.base_url is required")
		}
		return nil
	}
	u, err := url.Parse(cfg.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url %q is not an absolute url", cfg.Backend.BaseURL)
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return 30 * 24 * time.Hour
	}
	return d
}
