package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, 30*time.Second, cfg.Redis.ReadTimeout)
	assert.Equal(t, 8, cfg.Pool.MaxIdle)
	assert.True(t, cfg.Pool.Wait)
	assert.Equal(t, "default", cfg.Graph.Name)
	assert.Equal(t, ReplayOff, cfg.Replay.Mode)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("REDISGRAPHIO_ADDR", "redis.internal:6380")
	t.Setenv("REDISGRAPHIO_PASSWORD", "hunter2")
	t.Setenv("REDISGRAPHIO_DB", "3")
	t.Setenv("REDISGRAPHIO_TLS", "yes")
	t.Setenv("REDISGRAPHIO_READ_TIMEOUT", "90")
	t.Setenv("REDISGRAPHIO_POOL_IDLE_TIMEOUT", "1m30s")
	t.Setenv("REDISGRAPHIO_GRAPH", "motogp")
	t.Setenv("REDISGRAPHIO_READ_ONLY", "1")
	t.Setenv("REDISGRAPHIO_LOG_LEVEL", "debug")
	t.Setenv("REDISGRAPHIO_POOL_MAX_IDLE", "not-a-number")

	cfg := LoadFromEnv()

	assert.Equal(t, "redis.internal:6380", cfg.Redis.Address)
	assert.Equal(t, "hunter2", cfg.Redis.Password)
	assert.Equal(t, 3, cfg.Redis.Database)
	assert.True(t, cfg.Redis.TLS)
	assert.Equal(t, 90*time.Second, cfg.Redis.ReadTimeout, "bare number is seconds")
	assert.Equal(t, 90*time.Second, cfg.Pool.IdleTimeout)
	assert.Equal(t, "motogp", cfg.Graph.Name)
	assert.True(t, cfg.Graph.ReadOnly)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 8, cfg.Pool.MaxIdle, "unparsable value keeps default")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redisgraphio.yaml")
	yml := `
redis:
  address: graph.example:6379
  read_timeout: 2m
pool:
  max_active: 16
graph:
  name: motogp
  schema_cache_ttl: 30s
replay:
  mode: record
  dir: /tmp/replies
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "graph.example:6379", cfg.Redis.Address)
	assert.Equal(t, 2*time.Minute, cfg.Redis.ReadTimeout)
	assert.Equal(t, 5*time.Second, cfg.Redis.WriteTimeout, "missing keys keep defaults")
	assert.Equal(t, 16, cfg.Pool.MaxActive)
	assert.Equal(t, "motogp", cfg.Graph.Name)
	assert.Equal(t, 30*time.Second, cfg.Graph.SchemaCacheTTL)
	assert.Equal(t, ReplayRecord, cfg.Replay.Mode)
	require.NoError(t, cfg.Validate())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("redis: [unclosed"), 0o600))
	_, err = LoadFile(bad)
	assert.ErrorContains(t, err, "parse config")
}

func TestLoadFromEnvOrFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redisgraphio.yaml")
	require.NoError(t, os.WriteFile(path, []byte("graph:\n  name: fromfile\nredis:\n  database: 2\n"), 0o600))
	t.Setenv("REDISGRAPHIO_GRAPH", "fromenv")

	cfg, err := LoadFromEnvOrFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fromenv", cfg.Graph.Name, "env wins over file")
	assert.Equal(t, 2, cfg.Redis.Database)

	cfg, err = LoadFromEnvOrFile("")
	require.NoError(t, err)
	assert.Equal(t, "fromenv", cfg.Graph.Name)
	assert.Equal(t, 0, cfg.Redis.Database)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"missing address", func(c *Config) { c.Redis.Address = "" }, "address is required"},
		{"missing graph", func(c *Config) { c.Graph.Name = "" }, "graph name is required"},
		{"negative schema ttl", func(c *Config) { c.Graph.SchemaCacheTTL = -time.Second }, "invalid schema cache ttl"},
		{"negative db", func(c *Config) { c.Redis.Database = -1 }, "invalid redis database"},
		{"negative timeout", func(c *Config) { c.Redis.ReadTimeout = -time.Second }, "timeouts"},
		{"idle over active", func(c *Config) { c.Pool.MaxActive = 2; c.Pool.MaxIdle = 4 }, "exceeds max_active"},
		{"negative pool", func(c *Config) { c.Pool.MaxIdle = -1 }, "invalid pool size"},
		{"schema cache", func(c *Config) { c.Graph.SchemaCacheSize = -5 }, "schema cache"},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "log level"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "log format"},
		{"replay mode", func(c *Config) { c.Replay.Mode = "rewind" }, "replay mode"},
		{"replay dir", func(c *Config) { c.Replay.Mode = ReplayReplay; c.Replay.Dir = "" }, "requires a directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}

func TestString_RedactsPassword(t *testing.T) {
	cfg := Default()
	cfg.Redis.Password = "hunter2"

	s := cfg.String()
	assert.NotContains(t, s, "hunter2")
	assert.Contains(t, s, "Auth: true")
	assert.Contains(t, s, "localhost:6379/0")
}
