// Package config loads cinematch configuration from defaults, an optional
// YAML file and CINEMATCH_* environment variables, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/robfig/cron/v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CINEMATCH_"

// ErrInvalidConfig indicates a configuration value out of range.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Store    StoreConfig    `koanf:"store"`
	Index    IndexConfig    `koanf:"index"`
	Embedder EmbedderConfig `koanf:"embedder"`
	TMDB     TMDBConfig     `koanf:"tmdb"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

type StoreConfig struct {
	// Dir holds movie_index.bin and catalog.db.
	Dir string `koanf:"dir"`
}

type IndexConfig struct {
	Kind string `koanf:"kind"`
}

type EmbedderConfig struct {
	Provider  string `koanf:"provider"`
	Model     string `koanf:"model"`
	CacheDir  string `koanf:"cache_dir"`
	BaseURL   string `koanf:"base_url"`
	Dimension int    `koanf:"dimension"`
}

type TMDBConfig struct {
	APIKey            string  `koanf:"api_key"`
	BaseURL           string  `koanf:"base_url"`
	Limit             int     `koanf:"limit"`
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	// Schedule is a cron expression for the background update; empty disables it.
	Schedule string `koanf:"schedule"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Load reads path (skipped when empty or missing), applies environment
// overrides, fills defaults and validates.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
		}
	}

	// CINEMATCH_SERVER_PORT -> server.port, CINEMATCH_TMDB_API_KEY -> tmdb.api_key
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Store.Dir == "" {
		cfg.Store.Dir = "models"
	}
	if cfg.Index.Kind == "" {
		cfg.Index.Kind = "flat"
	}
	if cfg.Embedder.Provider == "" {
		cfg.Embedder.Provider = "fastembed"
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = "sentence-transformers/all-MiniLM-L6-v2"
	}
	if cfg.Embedder.Dimension == 0 {
		cfg.Embedder.Dimension = 384
	}
	if cfg.TMDB.BaseURL == "" {
		cfg.TMDB.BaseURL = "https://api.themoviedb.org/3"
	}
	if cfg.TMDB.Limit == 0 {
		cfg.TMDB.Limit = 1000
	}
	if cfg.TMDB.RequestsPerSecond == 0 {
		cfg.TMDB.RequestsPerSecond = 20
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	switch c.Index.Kind {
	case "flat", "cover", "chromem":
	default:
		return fmt.Errorf("%w: index.kind %q (want flat, cover or chromem)", ErrInvalidConfig, c.Index.Kind)
	}
	switch c.Embedder.Provider {
	case "fastembed", "hashing":
	case "tei":
		if c.Embedder.BaseURL == "" {
			return fmt.Errorf("%w: embedder.base_url required for tei", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: embedder.provider %q", ErrInvalidConfig, c.Embedder.Provider)
	}
	if c.Embedder.Dimension <= 0 {
		return fmt.Errorf("%w: embedder.dimension must be positive", ErrInvalidConfig)
	}
	if c.TMDB.Limit < 0 || c.TMDB.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: tmdb limit and requests_per_second must be non-negative", ErrInvalidConfig)
	}
	if c.TMDB.Schedule != "" {
		if _, err := cron.ParseStandard(c.TMDB.Schedule); err != nil {
			return fmt.Errorf("%w: tmdb.schedule: %v", ErrInvalidConfig, err)
		}
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}
