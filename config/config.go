// Package config loads application configuration from defaults, an optional
// TOML file, and NOHRS_-prefixed environment variables, in increasing order
// of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Roots  RootsConfig
	Index  IndexConfig
	Watch  WatchConfig
	Cache  CacheConfig
	Server ServerConfig
	Log    LogConfig

	// Remotes maps a mount name to an S3-compatible endpoint.
	Remotes map[string]RemoteConfig
}

// RootsConfig holds the local directories the explorer serves.
type RootsConfig struct {
	// Home is the user's content root, indexed for search.
	Home string
}

// IndexConfig holds search index settings.
type IndexConfig struct {
	Path        string
	MaxFileSize int64 `mapstructure:"max_file_size"`
}

// WatchConfig holds filesystem watcher settings.
type WatchConfig struct {
	Debounce time.Duration
}

// CacheConfig holds remote read cache settings.
type CacheConfig struct {
	Dir      string
	MaxBytes int64 `mapstructure:"max_bytes"`
}

// RemoteConfig holds one S3-compatible remote.
type RemoteConfig struct {
	Endpoint  string
	Bucket    string
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Prefix    string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr        string
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text or json
}

// Load reads configuration from file and env. Env var overrides use prefix
// NOHRS_, with dots replaced by underscores (NOHRS_SERVER_ADDR). The config
// file is ~/.config/nohrs/config.toml, overridable with NOHRS_CONFIG.
func Load() (Config, error) {
	v := viper.New()

	home := os.Getenv("HOME")
	dataDir := filepath.Join(home, ".local", "share", "nohrs")

	// default values
	v.SetDefault("roots.home", home)
	v.SetDefault("index.path", filepath.Join(dataDir, "index.db"))
	v.SetDefault("index.max_file_size", int64(10<<20))
	v.SetDefault("watch.debounce", 2*time.Second)
	v.SetDefault("cache.dir", filepath.Join(dataDir, "cache"))
	v.SetDefault("cache.max_bytes", int64(512<<20))
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.metrics_addr", ":9102")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("NOHRS_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "nohrs"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("NOHRS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
