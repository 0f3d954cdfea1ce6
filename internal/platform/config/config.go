// Package config loads the btcdata configuration from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Cache backends.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendNone     = "none"
)

type Server struct {
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORS            bool          `yaml:"cors"` // allow any origin
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

type Cache struct {
	Backend   string        `yaml:"backend"`
	Dir       string        `yaml:"dir"`
	Expiry    time.Duration `yaml:"expiry"`
	Namespace string        `yaml:"namespace"` // redis key prefix
}

type Provider struct {
	Enabled           bool          `yaml:"enabled"`
	APIKey            string        `yaml:"api_key"`
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
}

type OHLCV struct {
	VolumeMode string `yaml:"volume_mode"` // sum or zero
}

type Redis struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Database struct {
	DSN            string        `yaml:"dsn"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

type Config struct {
	Server        Server   `yaml:"server"`
	Log           Log      `yaml:"log"`
	Cache         Cache    `yaml:"cache"`
	CoinGecko     Provider `yaml:"coingecko"`
	CoinMarketCap Provider `yaml:"coinmarketcap"`
	OHLCV         OHLCV    `yaml:"ohlcv"`
	Redis         Redis    `yaml:"redis"`
	Database      Database `yaml:"database"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: Server{
			Address:         ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: Log{Level: "info", Format: "text"},
		Cache: Cache{
			Backend:   BackendFile,
			Dir:       "cache",
			Expiry:    5 * time.Minute,
			Namespace: "btcdata",
		},
		CoinGecko: Provider{
			Enabled:           true,
			BaseURL:           "https://api.coingecko.com/api/v3",
			Timeout:           10 * time.Second,
			RequestsPerMinute: 30,
		},
		CoinMarketCap: Provider{
			Enabled:           true,
			BaseURL:           "https://pro-api.coinmarketcap.com/v1",
			Timeout:           10 * time.Second,
			RequestsPerMinute: 30,
		},
		OHLCV: OHLCV{VolumeMode: "sum"},
		Redis: Redis{Host: "localhost", Port: "6379"},
		Database: Database{
			ConnectTimeout: 30 * time.Second,
		},
	}
}

// Load reads path over the defaults, applies environment overrides and validates.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}
	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"COINMARKETCAP_API_KEY": &c.CoinMarketCap.APIKey,
		"COINGECKO_API_KEY":     &c.CoinGecko.APIKey,
		"BTC_CACHE_DIR":         &c.Cache.Dir,
		"BTC_CACHE_BACKEND":     &c.Cache.Backend,
		"BTC_LOG_LEVEL":         &c.Log.Level,
		"REDIS_HOST":            &c.Redis.Host,
		"REDIS_PORT":            &c.Redis.Port,
		"REDIS_PASSWORD":        &c.Redis.Password,
		"DATABASE_DSN":          &c.Database.DSN,
	}
	for k, dst := range str {
		if v, ok := lookup(k); ok && v != "" {
			*dst = v
		}
	}
	if v, ok := lookup("BTC_CACHE_EXPIRY"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("BTC_CACHE_EXPIRY: %w", err)
		}
		c.Cache.Expiry = d
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	c.Cache.Backend = strings.ToLower(c.Cache.Backend)
	switch c.Cache.Backend {
	case BackendFile:
		if c.Cache.Dir == "" {
			errs = append(errs, errors.New("cache.dir is required for the file backend"))
		}
	case BackendRedis, BackendSQLite, BackendNone:
	case BackendPostgres:
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("database.dsn is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.backend %q is not one of file, redis, sqlite, postgres, none", c.Cache.Backend))
	}
	if c.Cache.Expiry <= 0 {
		errs = append(errs, errors.New("cache.expiry must be positive"))
	}

	switch strings.ToLower(c.OHLCV.VolumeMode) {
	case "", "sum", "zero":
	default:
		errs = append(errs, fmt.Errorf("ohlcv.volume_mode %q is not one of sum, zero", c.OHLCV.VolumeMode))
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of text, json", c.Log.Format))
	}

	for name, p := range map[string]Provider{"coingecko": c.CoinGecko, "coinmarketcap": c.CoinMarketCap} {
		if p.Timeout < 0 {
			errs = append(errs, fmt.Errorf("%s.timeout must not be negative", name))
		}
		if p.RequestsPerMinute < 0 {
			errs = append(errs, fmt.Errorf("%s.requests_per_minute must not be negative", name))
		}
	}
	if !c.CoinGecko.Enabled && !c.CoinMarketCap.Enabled {
		errs = append(errs, errors.New("at least one provider must be enabled"))
	}

	if c.Redis.Port != "" {
		if _, err := strconv.Atoi(c.Redis.Port); err != nil {
			errs = append(errs, fmt.Errorf("redis.port %q is not a number", c.Redis.Port))
		}
	}

	return errors.Join(errs...)
}
