//go:generate go run go.uber.org/mock/mockgen -source=rate_limit.go -destination=../mocks/mock_rate_limit_repository.go -package=mocks
package repository

import (
	"context"
	"time"

	"direct_messenger/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RateLimitRepository counts hits per key in fixed windows. The window starts
// with the first hit on a key.
type RateLimitRepository interface {
	// Increment records one hit and returns the count within the current
	// window together with the time left until it resets.
	Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

const RateLimitPrefix = "ratelimit:"

type rateLimitRepository struct {
	redis *redis.Client
	log   logger.Logger
}

func NewRateLimitRepository(redis *redis.Client, log logger.Logger) RateLimitRepository {
	return &rateLimitRepository{redis: redis, log: log}
}

func (r *rateLimitRepository) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	key = RateLimitPrefix + key

	var (
		incr *redis.IntCmd
		pttl *redis.DurationCmd
	)
	_, err := r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		// NX: окно не продлевается на каждом запросе
		pipe.ExpireNX(ctx, key, window)
		pttl = pipe.PTTL(ctx, key)
		return nil
	})
	if err != nil {
		r.log.Error("Failed to increment rate limit", "error", err, "key", key)
		return 0, 0, err
	}

	remaining := pttl.Val()
	if remaining < 0 {
		remaining = window
	}
	return incr.Val(), remaining, nil
}
