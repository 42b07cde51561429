package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Automation AutomationConfig `yaml:"automation"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	Enabled    bool   `yaml:"enabled"`
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// AutomationConfig holds the periodic tick configuration. The vibe tick
// runs more frequently than the busyness tick: vibes change on schedule
// boundaries while busyness is a slower-moving simulated signal.
type AutomationConfig struct {
	Enabled                 bool          `yaml:"enabled"`
	VibeIntervalSeconds     int           `yaml:"vibe_interval_seconds"`
	BusynessIntervalSeconds int           `yaml:"busyness_interval_seconds"`
	VibeInterval            time.Duration `yaml:"-"`
	BusynessInterval        time.Duration `yaml:"-"`
	DefaultTimezone         string        `yaml:"default_timezone"`
	SeedDemoData            bool          `yaml:"seed_demo_data"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Automation.VibeIntervalSeconds <= 0 {
		cfg.Automation.VibeIntervalSeconds = 300
	}
	if cfg.Automation.BusynessIntervalSeconds <= 0 {
		cfg.Automation.BusynessIntervalSeconds = 1800
	}
	cfg.Automation.VibeInterval = time.Duration(cfg.Automation.VibeIntervalSeconds) * time.Second
	cfg.Automation.BusynessInterval = time.Duration(cfg.Automation.BusynessIntervalSeconds) * time.Second

	if cfg.Automation.DefaultTimezone == "" {
		cfg.Automation.DefaultTimezone = "Europe/London"
	}

	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 60
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}
