package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 20*time.Second, cfg.Cache.CategoryPricingTTL)
	assert.Equal(t, 30*time.Second, cfg.Cache.PriceSummaryTTL)
	assert.Equal(t, 60*time.Second, cfg.Cache.BrandLowestPriceTTL)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
}

func TestLoadAppliesEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9191")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "postgres://catalog@localhost/catalog")
	t.Setenv("DATABASE_SEED", "false")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDRESS", "redis:6380")
	t.Setenv("REDIS_TIMEOUT", "250ms")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://catalog@localhost/catalog", cfg.Database.DSN)
	assert.False(t, cfg.Database.Seed)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6380", cfg.Redis.Address)
	assert.Equal(t, 250*time.Millisecond, cfg.Redis.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFileOverridesEnvironment(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  port: 7070
database:
  driver: sqlite
  dsn: "file::memory:?cache=shared"
  seed: false
redis:
  enabled: true
  client_name: pricing
cache:
  price_summary_ttl: 5s
log:
  format: console
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("SERVER_PORT", "9191")

	cfg, err := load(dir)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "file::memory:?cache=shared", cfg.Database.DSN)
	assert.False(t, cfg.Database.Seed)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "pricing", cfg.Redis.ClientName)
	assert.Equal(t, 5*time.Second, cfg.Cache.PriceSummaryTTL)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"driver": func(c *Config) { c.Database.Driver = "h2" },
		"dsn":    func(c *Config) { c.Database.DSN = "" },
		"port":   func(c *Config) { c.Server.Port = 0 },
		"ttl":    func(c *Config) { c.Cache.PriceSummaryTTL = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
