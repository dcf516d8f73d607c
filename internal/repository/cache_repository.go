package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	appErrors "github.com/noah-isme/course-progress-api/pkg/errors"
)

// KeyValueStore is the byte-level store behind the JSON cache.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheRepository stores JSON encoded record collections.
type CacheRepository struct {
	store KeyValueStore
}

// NewCacheRepository constructs a cache repository.
func NewCacheRepository(store KeyValueStore) *CacheRepository {
	return &CacheRepository{store: store}
}

// Get decodes the cached value into dest, returning appErrors.ErrCacheMiss when absent.
func (r *CacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	if r.store == nil {
		return appErrors.ErrCacheMiss
	}
	raw, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return appErrors.ErrCacheMiss
		}
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}
	return nil
}

// Set encodes value and stores it with the given TTL.
func (r *CacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if r.store == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}
	return r.store.Set(ctx, key, payload, ttl)
}

// DeleteByPattern removes cached entries matching the pattern.
func (r *CacheRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	if r.store == nil {
		return nil
	}
	return r.store.DeleteByPattern(ctx, pattern)
}
