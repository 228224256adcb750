// Package config loads the client configuration from YAML with ${ENV_VAR}
// placeholder support.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API struct {
		BaseURL        string  `yaml:"base_url"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		RateLimit      float64 `yaml:"rate_limit"`
		RateBurst      int     `yaml:"rate_burst"`
	} `yaml:"api"`

	Kakao struct {
		RESTAPIKey  string `yaml:"rest_api_key"`
		RedirectURI string `yaml:"redirect_uri"`
	} `yaml:"kakao"`

	Session struct {
		Backend    string `yaml:"backend"` // "redis", "sqlite" or "memory"
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"session"`

	Redis struct {
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Session.Backend == "" {
		cfg.Session.Backend = "sqlite"
	}
	if cfg.Session.SQLitePath == "" {
		cfg.Session.SQLitePath = "data/somgil.db"
	}
	if cfg.Session.Backend == "sqlite" {
		if err = os.MkdirAll(filepath.Dir(cfg.Session.SQLitePath), 0o755); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

// APITimeout returns the bounded per-request timeout.
func (c *Config) APITimeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// CacheTTL returns the catalog cache TTL, zero when caching is disabled.
func (c *Config) CacheTTL() time.Duration {
	if c.Redis.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}
