package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, BackendFile, c.Cache.Backend)
	assert.Equal(t, 5*time.Minute, c.Cache.Expiry)
	assert.Equal(t, "sum", c.OHLCV.VolumeMode)
	assert.True(t, c.CoinGecko.Enabled)
}

// TestLoad_File はYAMLの値がデフォルトを上書きし、未指定の値はデフォルトのままであることを検証します。
func TestLoad_File(t *testing.T) {
	p := writeConfig(t, `
server:
  address: ":9000"
cache:
  backend: Redis
  expiry: 90s
coinmarketcap:
  enabled: false
ohlcv:
  volume_mode: zero
log:
  format: json
`)
	t.Setenv("COINMARKETCAP_API_KEY", "")
	t.Setenv("BTC_CACHE_BACKEND", "")
	t.Setenv("BTC_CACHE_EXPIRY", "")

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, ":9000", c.Server.Address)
	assert.Equal(t, 10*time.Second, c.Server.ReadTimeout)
	assert.Equal(t, BackendRedis, c.Cache.Backend)
	assert.Equal(t, 90*time.Second, c.Cache.Expiry)
	assert.False(t, c.CoinMarketCap.Enabled)
	assert.True(t, c.CoinGecko.Enabled)
	assert.Equal(t, "zero", c.OHLCV.VolumeMode)
	assert.Equal(t, "json", c.Log.Format)
}

// TestLoad_EnvOverrides は環境変数が設定ファイルより優先されることを検証します。
func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("COINMARKETCAP_API_KEY", "cmc-secret")
	t.Setenv("COINGECKO_API_KEY", "cg-secret")
	t.Setenv("BTC_CACHE_DIR", "/var/cache/btc")
	t.Setenv("BTC_CACHE_BACKEND", "")
	t.Setenv("BTC_CACHE_EXPIRY", "2m")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("REDIS_PORT", "6380")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "cmc-secret", c.CoinMarketCap.APIKey)
	assert.Equal(t, "cg-secret", c.CoinGecko.APIKey)
	assert.Equal(t, "/var/cache/btc", c.Cache.Dir)
	assert.Equal(t, BackendFile, c.Cache.Backend)
	assert.Equal(t, 2*time.Minute, c.Cache.Expiry)
	assert.Equal(t, "redis.internal", c.Redis.Host)
	assert.Equal(t, "6380", c.Redis.Port)
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("BTC_CACHE_BACKEND", "")
	t.Setenv("BTC_CACHE_EXPIRY", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")

	_, err = Load(writeConfig(t, "cache: [unclosed"))
	assert.ErrorContains(t, err, "parse yaml")

	t.Setenv("BTC_CACHE_EXPIRY", "soon")
	_, err = Load("")
	assert.ErrorContains(t, err, "BTC_CACHE_EXPIRY")
}

// TestValidate は不正な設定がまとめて報告されることを検証します。
func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "unknown backend", mutate: func(c *Config) { c.Cache.Backend = "memcached" }, wantErr: "cache.backend"},
		{name: "file backend without dir", mutate: func(c *Config) { c.Cache.Dir = "" }, wantErr: "cache.dir"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Cache.Backend = "postgres" }, wantErr: "database.dsn"},
		{name: "zero expiry", mutate: func(c *Config) { c.Cache.Expiry = 0 }, wantErr: "cache.expiry"},
		{name: "bad volume mode", mutate: func(c *Config) { c.OHLCV.VolumeMode = "avg" }, wantErr: "ohlcv.volume_mode"},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "log.format"},
		{name: "negative rate", mutate: func(c *Config) { c.CoinGecko.RequestsPerMinute = -1 }, wantErr: "coingecko.requests_per_minute"},
		{name: "no providers", mutate: func(c *Config) { c.CoinGecko.Enabled = false; c.CoinMarketCap.Enabled = false }, wantErr: "at least one provider"},
		{name: "bad redis port", mutate: func(c *Config) { c.Redis.Port = "six" }, wantErr: "redis.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := Default()
			tt.mutate(c)
			assert.ErrorContains(t, c.Validate(), tt.wantErr)
		})
	}
}

func TestApplyEnv_IgnoresEmpty(t *testing.T) {
	t.Parallel()

	c := Default()
	env := map[string]string{"BTC_CACHE_DIR": "", "COINGECKO_API_KEY": "k"}
	require.NoError(t, c.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))
	assert.Equal(t, "cache", c.Cache.Dir)
	assert.Equal(t, "k", c.CoinGecko.APIKey)
}
