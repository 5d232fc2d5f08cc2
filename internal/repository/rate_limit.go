package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"skill_swap/pkg/logger"
)

const rateLimitKeyPrefix = "ratelimit:"

type RateLimitRepository interface {
	CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

type rateLimitRepository struct {
	redis *redis.Client
	log   logger.Logger
}

func NewRateLimitRepository(redis *redis.Client, log logger.Logger) RateLimitRepository {
	return &rateLimitRepository{redis: redis, log: log}
}

func (r *rateLimitRepository) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.redis.Get(ctx, rateLimitKeyPrefix+key).Int()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		r.log.Error("Failed to check rate limit", "error", err)
		return false, err
	}

	return count < limit, nil
}

// Increment увеличивает счетчик; TTL ставится только при создании ключа
func (r *rateLimitRepository) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	key = rateLimitKeyPrefix + key

	count, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		r.log.Error("Failed to increment rate limit", "error", err)
		return 0, err
	}

	if count == 1 {
		if err := r.redis.Expire(ctx, key, window).Err(); err != nil {
			r.log.Warn("Failed to set rate limit TTL", "error", err, "key", key)
		}
	}

	return count, nil
}
