// Package config handles redisgraphio configuration via YAML files and
// environment variables.
//
// Configuration is built in three layers, later layers winning:
//
//  1. Defaults (Default)
//  2. An optional YAML file (LoadFile)
//  3. REDISGRAPHIO_* environment variables
//
// LoadFromEnvOrFile applies all three. The result can be checked with
// Validate() before use.
//
// Example Usage:
//
//	cfg, err := config.LoadFromEnvOrFile("./redisgraphio.yaml")
//	if err != nil {
//		log.Fatalf("Invalid config: %v", err)
//	}
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("Invalid config: %v", err)
//	}
//
//	fmt.Printf("Redis: %s, graph: %s\n", cfg.Redis.Address, cfg.Graph.Name)
//
// Environment Variables:
//
// Connection:
//   - REDISGRAPHIO_ADDR="localhost:6379"
//   - REDISGRAPHIO_USERNAME, REDISGRAPHIO_PASSWORD
//   - REDISGRAPHIO_DB=0
//   - REDISGRAPHIO_TLS=false
//   - REDISGRAPHIO_CONNECT_TIMEOUT=5s, REDISGRAPHIO_READ_TIMEOUT=30s, REDISGRAPHIO_WRITE_TIMEOUT=5s
//
// Pool:
//   - REDISGRAPHIO_POOL_MAX_IDLE=8, REDISGRAPHIO_POOL_MAX_ACTIVE=0 (unlimited)
//   - REDISGRAPHIO_POOL_IDLE_TIMEOUT=5m, REDISGRAPHIO_POOL_WAIT=true
//
// Graph:
//   - REDISGRAPHIO_GRAPH="default"
//   - REDISGRAPHIO_READ_ONLY=false
//   - REDISGRAPHIO_SCHEMA_CACHE_SIZE=64, REDISGRAPHIO_SCHEMA_CACHE_TTL=10m
//
// Logging and replay:
//   - REDISGRAPHIO_LOG_LEVEL=info, REDISGRAPHIO_LOG_FORMAT=json|console
//   - REDISGRAPHIO_REPLAY_MODE=off|record|replay, REDISGRAPHIO_REPLAY_DIR=./replay
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by this package.
const EnvPrefix = "REDISGRAPHIO_"

// Replay modes.
const (
	ReplayOff    = "off"
	ReplayRecord = "record"
	ReplayReplay = "replay"
)

// Config holds all redisgraphio configuration.
//
// Configuration is organized into logical sections:
//   - Redis: Server address, credentials and socket timeouts
//   - Pool: Connection pool sizing
//   - Graph: Default graph and schema cache
//   - Logging: Log level and encoding
//   - Replay: Record/replay of command replies
type Config struct {
	Redis   RedisConfig   `yaml:"redis"`
	Pool    PoolConfig    `yaml:"pool"`
	Graph   GraphConfig   `yaml:"graph"`
	Logging LoggingConfig `yaml:"logging"`
	Replay  ReplayConfig  `yaml:"replay"`
}

// RedisConfig holds connection settings.
type RedisConfig struct {
	// Address in host:port form
	Address  string `yaml:"address"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// Database index selected after connecting
	Database   int    `yaml:"database"`
	TLS        bool   `yaml:"tls"`
	ClientName string `yaml:"client_name"`

	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	// ReadTimeout bounds how long a single query may run on the server
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// PoolConfig holds connection pool settings.
type PoolConfig struct {
	MaxIdle int `yaml:"max_idle"`
	// MaxActive of 0 means unlimited
	MaxActive       int           `yaml:"max_active"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	// Wait blocks Get when MaxActive is reached instead of failing
	Wait bool `yaml:"wait"`
}

// GraphConfig holds graph defaults.
type GraphConfig struct {
	Name     string `yaml:"name"`
	ReadOnly bool   `yaml:"read_only"`
	// SchemaCacheSize is the number of graphs whose schema catalogs are kept
	SchemaCacheSize int           `yaml:"schema_cache_size"`
	SchemaCacheTTL  time.Duration `yaml:"schema_cache_ttl"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level (debug, info, warn, error)
	Level string `yaml:"level"`
	// Format (json, console)
	Format string `yaml:"format"`
	// Output path (stdout, stderr, or file path)
	Output string `yaml:"output"`
}

// ReplayConfig holds record/replay settings.
type ReplayConfig struct {
	Mode string `yaml:"mode"`
	Dir  string `yaml:"dir"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Redis: RedisConfig{
			Address:        "localhost:6379",
			ConnectTimeout: 5 * time.Second,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   5 * time.Second,
			ClientName:     "redisgraphio",
		},
		Pool: PoolConfig{
			MaxIdle:     8,
			IdleTimeout: 5 * time.Minute,
			Wait:        true,
		},
		Graph: GraphConfig{
			Name:            "default",
			SchemaCacheSize: 64,
			SchemaCacheTTL:  10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
		Replay: ReplayConfig{
			Mode: ReplayOff,
			Dir:  "./replay",
		},
	}
}

// LoadFromEnv returns the defaults overridden by environment variables.
func LoadFromEnv() *Config {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

// LoadFile reads a YAML file over the defaults. Keys missing from the file
// keep their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromEnvOrFile loads path (when not empty) and then applies environment
// overrides.
func LoadFromEnvOrFile(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Redis.Address = getEnv("ADDR", c.Redis.Address)
	c.Redis.Username = getEnv("USERNAME", c.Redis.Username)
	c.Redis.Password = getEnv("PASSWORD", c.Redis.Password)
	c.Redis.Database = getEnvInt("DB", c.Redis.Database)
	c.Redis.TLS = getEnvBool("TLS", c.Redis.TLS)
	c.Redis.ClientName = getEnv("CLIENT_NAME", c.Redis.ClientName)
	c.Redis.ConnectTimeout = getEnvDuration("CONNECT_TIMEOUT", c.Redis.ConnectTimeout)
	c.Redis.ReadTimeout = getEnvDuration("READ_TIMEOUT", c.Redis.ReadTimeout)
	c.Redis.WriteTimeout = getEnvDuration("WRITE_TIMEOUT", c.Redis.WriteTimeout)

	c.Pool.MaxIdle = getEnvInt("POOL_MAX_IDLE", c.Pool.MaxIdle)
	c.Pool.MaxActive = getEnvInt("POOL_MAX_ACTIVE", c.Pool.MaxActive)
	c.Pool.IdleTimeout = getEnvDuration("POOL_IDLE_TIMEOUT", c.Pool.IdleTimeout)
	c.Pool.MaxConnLifetime = getEnvDuration("POOL_MAX_CONN_LIFETIME", c.Pool.MaxConnLifetime)
	c.Pool.Wait = getEnvBool("POOL_WAIT", c.Pool.Wait)

	c.Graph.Name = getEnv("GRAPH", c.Graph.Name)
	c.Graph.ReadOnly = getEnvBool("READ_ONLY", c.Graph.ReadOnly)
	c.Graph.SchemaCacheSize = getEnvInt("SCHEMA_CACHE_SIZE", c.Graph.SchemaCacheSize)
	c.Graph.SchemaCacheTTL = getEnvDuration("SCHEMA_CACHE_TTL", c.Graph.SchemaCacheTTL)

	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("LOG_FORMAT", c.Logging.Format)
	c.Logging.Output = getEnv("LOG_OUTPUT", c.Logging.Output)

	c.Replay.Mode = getEnv("REPLAY_MODE", c.Replay.Mode)
	c.Replay.Dir = getEnv("REPLAY_DIR", c.Replay.Dir)
}

// Validate checks that all settings are usable.
//
// Returns nil if configuration is valid, or an error describing the problem.
func (c *Config) Validate() error {
	if c.Redis.Address == "" {
		return fmt.Errorf("redis address is required")
	}
	if c.Redis.Database < 0 {
		return fmt.Errorf("invalid redis database: %d", c.Redis.Database)
	}
	if c.Redis.ConnectTimeout < 0 || c.Redis.ReadTimeout < 0 || c.Redis.WriteTimeout < 0 {
		return fmt.Errorf("redis timeouts must not be negative")
	}
	if c.Pool.MaxIdle < 0 || c.Pool.MaxActive < 0 {
		return fmt.Errorf("invalid pool size: max_idle=%d max_active=%d", c.Pool.MaxIdle, c.Pool.MaxActive)
	}
	if c.Pool.MaxActive > 0 && c.Pool.MaxIdle > c.Pool.MaxActive {
		return fmt.Errorf("pool max_idle (%d) exceeds max_active (%d)", c.Pool.MaxIdle, c.Pool.MaxActive)
	}
	if c.Graph.Name == "" {
		return fmt.Errorf("graph name is required")
	}
	if c.Graph.SchemaCacheTTL < 0 {
		return fmt.Errorf("invalid schema cache ttl: %s", c.Graph.SchemaCacheTTL)
	}
	if c.Graph.SchemaCacheSize < 0 {
		return fmt.Errorf("invalid schema cache size: %d", c.Graph.SchemaCacheSize)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %q", c.Logging.Format)
	}

	switch c.Replay.Mode {
	case ReplayOff:
	case ReplayRecord, ReplayReplay:
		if c.Replay.Dir == "" {
			return fmt.Errorf("replay mode %q requires a directory", c.Replay.Mode)
		}
	default:
		return fmt.Errorf("invalid replay mode: %q", c.Replay.Mode)
	}
	return nil
}

// String returns a safe string representation of the Config.
//
// The password is never included, making this safe for logging.
//
// Example:
//
//	cfg := config.LoadFromEnv()
//	logger.Info("starting", zap.Stringer("config", cfg))
//	// Config{Redis: localhost:6379/0, Auth: false, TLS: false, Graph: default, Replay: off}
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Redis: %s/%d, Auth: %v, TLS: %v, Graph: %s, Replay: %s}",
		c.Redis.Address, c.Redis.Database,
		c.Redis.Password != "",
		c.Redis.TLS,
		c.Graph.Name,
		c.Replay.Mode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		val = strings.ToLower(val)
		return val == "true" || val == "1" || val == "yes" || val == "on"
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		// Try parsing as seconds
		if secs, err := strconv.Atoi(val); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultVal
}
