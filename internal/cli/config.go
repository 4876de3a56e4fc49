package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Cache backend names accepted in the config file.
const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
	CacheBackendNone  = "none"
)

// History backend names accepted in the config file.
const (
	HistoryBackendFile  = "file"
	HistoryBackendMongo = "mongo"
)

// Config holds user configuration loaded from config.toml.
//
// Example:
//
//	[analysis]
//	identical_threshold = 0.95
//	variation_threshold = 0.70
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[history]
//	backend = "file"
type Config struct {
	Analysis AnalysisConfig `toml:"analysis"`
	Cache    CacheConfig    `toml:"cache"`
	History  HistoryConfig  `toml:"history"`
}

// AnalysisConfig overrides pipeline defaults.
type AnalysisConfig struct {
	IdenticalThreshold float64 `toml:"identical_threshold"`
	VariationThreshold float64 `toml:"variation_threshold"`
	MaxPaths           int     `toml:"max_paths"`
	MaxDepth           int     `toml:"max_depth"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// HistoryConfig selects and configures the run history backend.
type HistoryConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Cache:   CacheConfig{Backend: CacheBackendFile},
		History: HistoryConfig{Backend: HistoryBackendFile},
	}
}

// ConfigPath returns the default config file path (~/.config/qaeval/config.toml).
func ConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// LoadConfig reads the config file at path, or the default location when path
// is empty. A missing file yields the default config, not an error.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return DefaultConfig(), nil
		}
	}

	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case "", CacheBackendFile, CacheBackendRedis, CacheBackendNone:
	default:
		return fmt.Errorf("invalid cache backend: %q (must be file, redis, or none)", c.Cache.Backend)
	}
	switch c.History.Backend {
	case "", HistoryBackendFile, HistoryBackendMongo:
	default:
		return fmt.Errorf("invalid history backend: %q (must be file or mongo)", c.History.Backend)
	}
	if c.History.Backend == HistoryBackendMongo && c.History.MongoURI == "" {
		return fmt.Errorf("history backend mongo requires mongo_uri")
	}
	return nil
}
