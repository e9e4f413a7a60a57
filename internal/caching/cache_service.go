package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"restopos/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "restopos"

type CacheService interface {
	// Customer menu caching
	GetAvailableMenu(ctx context.Context) ([]*models.MenuItem, error)
	SetAvailableMenu(ctx context.Context, items []*models.MenuItem, ttl time.Duration) error
	InvalidateMenu(ctx context.Context) error

	// Report caching; GetReport reports whether dest was filled from the cache
	GetReport(ctx context.Context, name string, dest interface{}) (bool, error)
	SetReport(ctx context.Context, name string, value interface{}, ttl time.Duration) error
	InvalidateReports(ctx context.Context) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int) (bool, error)
	IncrementRateLimit(ctx context.Context, key string, window time.Duration) error
	ResetRateLimit(ctx context.Context, key string) error

	Ping(ctx context.Context) error
	Close() error
}

type redisCacheService struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisCacheService(addr, password string, db int, logger *zap.Logger) CacheService {
	// Accept redis://host:port as well as host:port
	parsedAddr := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		logger.Warn("redis ping failed on initialization", zap.String("addr", parsedAddr), zap.Error(pingErr))
	} else {
		logger.Debug("redis connection established", zap.String("addr", parsedAddr))
	}

	return NewCacheServiceWithClient(client, logger)
}

// NewCacheServiceWithClient wraps an existing client.
func NewCacheServiceWithClient(client *redis.Client, logger *zap.Logger) CacheService {
	return &redisCacheService{client: client, logger: logger}
}

func menuKey() string {
	return keyPrefix + ":menu:available"
}

func reportKey(name string) string {
	return fmt.Sprintf("%s:report:%s", keyPrefix, name)
}

func rateLimitKey(key string) string {
	return fmt.Sprintf("%s:ratelimit:%s", keyPrefix, key)
}

func (r *redisCacheService) GetAvailableMenu(ctx context.Context) ([]*models.MenuItem, error) {
	data, err := r.client.Get(ctx, menuKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var items []*models.MenuItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *redisCacheService) SetAvailableMenu(ctx context.Context, items []*models.MenuItem, ttl time.Duration) error {
	if items == nil {
		items = []*models.MenuItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, menuKey(), data, ttl).Err()
}

func (r *redisCacheService) InvalidateMenu(ctx context.Context) error {
	return r.client.Del(ctx, menuKey()).Err()
}

func (r *redisCacheService) GetReport(ctx context.Context, name string, dest interface{}) (bool, error) {
	data, err := r.client.Get(ctx, reportKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCacheService) SetReport(ctx context.Context, name string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, reportKey(name), data, ttl).Err()
}

func (r *redisCacheService) InvalidateReports(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, reportKey("*"), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int) (bool, error) {
	count, err := r.client.Get(ctx, rateLimitKey(key)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return count >= int64(limit), nil
}

func (r *redisCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) error {
	cacheKey := rateLimitKey(key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return err
	}
	// The window starts with the first failure
	if count == 1 {
		return r.client.Expire(ctx, cacheKey, window).Err()
	}
	return nil
}

func (r *redisCacheService) ResetRateLimit(ctx context.Context, key string) error {
	return r.client.Del(ctx, rateLimitKey(key)).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCacheService) Close() error {
	return r.client.Close()
}
