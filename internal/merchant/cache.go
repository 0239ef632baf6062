package merchant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"paysera-app/internal/logger"
	"paysera-app/internal/metrics"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const defaultCacheTTL = 5 * time.Minute

// RedisClient is the subset of *redis.Client the cache needs.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

var _ Repository = (*cacheDecorator)(nil)

type cacheDecorator struct {
	inner Repository
	cache RedisClient
	ttl   time.Duration
}

// NewCacheDecorator caches Get results in Redis and drops them on writes.
// "not configured" is never cached so a freshly saved config is visible at once.
func NewCacheDecorator(inner Repository, cache RedisClient) Repository {
	return &cacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   defaultCacheTTL,
	}
}

func cacheKey(channelID string) string {
	return fmt.Sprintf("merchant:%s:%s", ConfigKey, channelID)
}

func (d *cacheDecorator) Get(ctx context.Context, channelID string) (*Config, error) {
	key := cacheKey(channelID)

	val, err := d.cache.Get(ctx, key).Result()
	if err == nil {
		var cfg Config
		if json.Unmarshal([]byte(val), &cfg) == nil {
			metrics.IncCacheRequest("merchant_config", "hit")
			return &cfg, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		logger.FromCtx(ctx).Warn("merchant config cache read failed", zap.Error(err))
	}

	metrics.IncCacheRequest("merchant_config", "miss")
	cfg, err := d.inner.Get(ctx, channelID)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(cfg); err == nil {
		if err := d.cache.Set(ctx, key, b, d.ttl).Err(); err != nil {
			logger.FromCtx(ctx).Warn("merchant config cache write failed", zap.Error(err))
		}
	}
	return cfg, nil
}

func (d *cacheDecorator) Save(ctx context.Context, cfg *Config) error {
	if err := d.inner.Save(ctx, cfg); err != nil {
		return err
	}
	d.invalidate(ctx, cfg.ChannelID)
	return nil
}

func (d *cacheDecorator) Delete(ctx context.Context, channelID string) error {
	if err := d.inner.Delete(ctx, channelID); err != nil {
		return err
	}
	d.invalidate(ctx, channelID)
	return nil
}

func (d *cacheDecorator) invalidate(ctx context.Context, channelID string) {
	if err := d.cache.Del(ctx, cacheKey(channelID)).Err(); err != nil {
		logger.FromCtx(ctx).Warn("merchant config cache invalidation failed",
			zap.String("channel_id", channelID), zap.Error(err))
	}
}
