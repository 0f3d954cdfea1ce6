package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"btc_backend/internal/feature/marketdata/usecase"
)

// CacheEntryModel is one cache entry row.
type CacheEntryModel struct {
	ID        string  `gorm:"primaryKey;size:64"`
	CacheKey  string  `gorm:"size:255;not null"`
	Timestamp float64 `gorm:"not null"`
	Data      string  `gorm:"type:text;not null"`
}

func (CacheEntryModel) TableName() string {
	return "cache_entries"
}

// GormStore keeps entries in a SQL table (sqlite or postgres).
type GormStore struct {
	db     *gorm.DB
	expiry time.Duration
	now    func() time.Time
}

var _ usecase.CacheStore = (*GormStore)(nil)

// NewGormStore creates a GormStore. Call Migrate once before use.
func NewGormStore(db *gorm.DB, opts ...Option) *GormStore {
	o := buildOptions(opts)
	return &GormStore{db: db, expiry: o.expiry, now: o.now}
}

// Migrate creates or updates the cache_entries table.
func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&CacheEntryModel{})
}

// Get returns the payload stored under key if it is younger than the expiry.
func (s *GormStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var m CacheEntryModel
	err := s.db.WithContext(ctx).Where("id = ?", storageID(key)).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, usecase.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%w: select %s: %v", usecase.ErrCacheIO, key, err)
	}

	e := entry{Timestamp: m.Timestamp, Data: json.RawMessage(m.Data)}
	if !json.Valid(e.Data) {
		return nil, fmt.Errorf("%w: corrupted entry %s", usecase.ErrCacheIO, key)
	}
	if !e.fresh(s.now(), s.expiry) {
		return nil, usecase.ErrCacheMiss
	}
	return e.Data, nil
}

// Set upserts payload under key.
func (s *GormStore) Set(ctx context.Context, key string, payload json.RawMessage) error {
	if !json.Valid(payload) {
		return fmt.Errorf("%w: payload is not valid JSON", usecase.ErrCacheIO)
	}
	e := newEntry(s.now(), payload)
	m := CacheEntryModel{
		ID:        storageID(key),
		CacheKey:  key,
		Timestamp: e.Timestamp,
		Data:      string(e.Data),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"cache_key", "timestamp", "data"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("%w: upsert %s: %v", usecase.ErrCacheIO, key, err)
	}
	return nil
}

// Clear deletes every row.
func (s *GormStore) Clear(ctx context.Context) error {
	err := s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&CacheEntryModel{}).Error
	if err != nil {
		return fmt.Errorf("%w: delete entries: %v", usecase.ErrCacheIO, err)
	}
	return nil
}
