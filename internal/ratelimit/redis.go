package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type redisLimiter struct {
	client  *redis.Client
	logger  *zerolog.Logger
	prefix  string
	timeout time.Duration
}

// NewRedisLimiter constructs a redis backed limiter shared across
// instances. A redis error fails open so the limiter never takes the API
// down with it.
func NewRedisLimiter(addr, password string, db int, logger *zerolog.Logger) (Limiter, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &redisLimiter{
		client:  client,
		logger:  logger,
		prefix:  "jobboard:ratelimit:",
		timeout: 250 * time.Millisecond,
	}, nil
}

func (l *redisLimiter) Allow(key string, limit int, window time.Duration) Decision {
	if limit <= 0 {
		return Decision{Allowed: true}
	}
	if window <= 0 {
		window = time.Minute
	}

	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	redisKey := l.prefix + key

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		l.logger.Error().Err(err).Str("op", "incr").Msg("redis rate limiter error")
		return Decision{Allowed: true}
	}

	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, window).Err(); err != nil {
			l.logger.Error().Err(err).Str("op", "expire").Msg("redis rate limiter error")
		}
	}

	ttl, err := l.client.TTL(ctx, redisKey).Result()
	if err != nil || ttl <= 0 {
		ttl = window
	}

	return Decision{
		Allowed:    int(count) <= limit,
		Count:      int(count),
		RetryAfter: ttl,
	}
}

func (l *redisLimiter) Close() {
	if l.client != nil {
		_ = l.client.Close()
	}
}
