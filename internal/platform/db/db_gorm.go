package db

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultSQLitePath is used when the sqlite driver is selected without a DSN.
const DefaultSQLitePath = "btcdata.db"

const retryInterval = 3 * time.Second

// Config はキャッシュ用データベースの接続設定を保持します。
type Config struct {
	Driver         string        // "sqlite" または "postgres"
	DSN            string        // sqliteならファイルパス、postgresなら接続文字列
	ConnectTimeout time.Duration // 接続リトライを諦めるまでの時間
}

// Opener はDSNからgorm.DBを開く関数です（テストで差し替えるため）。
type Opener func(dsn string) (*gorm.DB, error)

// OpenerFor はドライバ名に対応するOpenerを返します。
func OpenerFor(driver string) (Opener, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	switch strings.ToLower(driver) {
	case DriverSQLite:
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(sqlite.Open(dsn), gcfg)
		}, nil
	case DriverPostgres:
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), gcfg)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// BuildDSN は設定からDSNを決定します。sqliteでDSNが空の場合はDefaultSQLitePathを使います。
func BuildDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if strings.EqualFold(cfg.Driver, DriverSQLite) {
		return DefaultSQLitePath, nil
	}
	return "", fmt.Errorf("database dsn is required for driver %q", cfg.Driver)
}

// Open は設定に従ってデータベースに接続します。
func Open(cfg Config) (*gorm.DB, error) {
	open, err := OpenerFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	dsn, err := BuildDSN(cfg)
	if err != nil {
		return nil, err
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return ConnectWithRetry(dsn, timeout, open)
}

// ConnectWithRetry はtimeoutまでretryIntervalごとに接続を試みます。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %v: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying...", "error", err)
		time.Sleep(retryInterval)
	}
}
