package utils

import (
	"PathVault/internal/dto"
	"PathVault/internal/repo"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis cache client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
	}
}

// Get reads a cached value.
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

// Set writes a cached value.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, string(data), expiration).Err()
}

// Delete removes a cache entry.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// DeleteByPattern deletes cache entries by pattern.
func (c *RedisCache) DeleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return nil
}

type CacheManager struct {
	cache Cache
}

var globalCacheManager *CacheManager
var cacheManagerOnce sync.Once

// InitCacheManager initializes the cache manager.
func InitCacheManager() {
	cacheManagerOnce.Do(func() {
		globalCacheManager = &CacheManager{
			cache: NewRedisCache(repo.Redis),
		}
	})
}

// GetCacheManager returns the cache manager, or nil when Redis is not
// initialized. Without Redis every lookup is a miss and the caller falls
// through to the database.
func GetCacheManager() *CacheManager {
	if repo.Redis == nil {
		return nil
	}
	if globalCacheManager == nil {
		InitCacheManager()
	}
	return globalCacheManager
}

// BuildCacheKey builds a cache key.
func BuildCacheKey(prefix string, params ...interface{}) string {
	key := prefix
	for _, param := range params {
		key += fmt.Sprintf(":%v", param)
	}
	return key
}

const CacheKeyFolderEntries = "vfs:folder:entries"

// GetFolderEntriesFromCache reads a cached folder listing.
func GetFolderEntriesFromCache(ctx context.Context, userID, folderPath string) ([]dto.FolderEntry, bool) {
	manager := GetCacheManager()
	if manager == nil {
		return nil, false
	}
	key := BuildCacheKey(CacheKeyFolderEntries, userID, folderPath)

	var result []dto.FolderEntry
	if err := manager.cache.Get(ctx, key, &result); err != nil {
		return nil, false
	}
	return result, true
}

// SetFolderEntriesToCache writes a cached folder listing.
func SetFolderEntriesToCache(ctx context.Context, userID, folderPath string, entries []dto.FolderEntry, expiration time.Duration) error {
	manager := GetCacheManager()
	if manager == nil {
		return nil
	}
	key := BuildCacheKey(CacheKeyFolderEntries, userID, folderPath)
	return manager.cache.Set(ctx, key, entries, expiration)
}

// InvalidateFolderEntriesCache clears one user's cached folder listings.
func InvalidateFolderEntriesCache(ctx context.Context, userID string) error {
	manager := GetCacheManager()
	if manager == nil {
		return nil
	}
	keyPattern := BuildCacheKey(CacheKeyFolderEntries, userID) + ":*"
	cache, ok := manager.cache.(*RedisCache)
	if !ok {
		return manager.cache.Delete(ctx, keyPattern)
	}
	return cache.DeleteByPattern(ctx, keyPattern)
}

// InvalidateAllFolderEntriesCache clears every cached folder listing.
// Folder moves are not user-scoped, so nothing narrower is safe.
func InvalidateAllFolderEntriesCache(ctx context.Context) error {
	manager := GetCacheManager()
	if manager == nil {
		return nil
	}
	keyPattern := CacheKeyFolderEntries + ":*"
	cache, ok := manager.cache.(*RedisCache)
	if !ok {
		return manager.cache.Delete(ctx, keyPattern)
	}
	return cache.DeleteByPattern(ctx, keyPattern)
}
