package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"twitterapi/pkg/circuitbreaker"
	"twitterapi/pkg/logger"
)

const keyPrefix = "twitterapi:ratelimit:"

type RedisLimiter struct {
	client  *redis.Client
	breaker *circuitbreaker.CircuitBreaker
	logger  logger.Logger
	timeout time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisLimiter connects to Redis and verifies the connection before returning.
func NewRedisLimiter(cfg RedisConfig, log logger.Logger) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}

	l := &RedisLimiter{
		client:  client,
		logger:  log,
		timeout: 250 * time.Millisecond,
	}
	l.breaker = circuitbreaker.New(circuitbreaker.Settings{
		Name:    "redis-ratelimit",
		Timeout: 15 * time.Second,
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			if l.logger == nil {
				return
			}
			l.logger.Warn("Circuit breaker state changed", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})

	return l, nil
}

// Allow fails open: a Redis error lets the request through.
func (l *RedisLimiter) Allow(key string, limit int, window time.Duration) Decision {
	d, err := l.TryAllow(key, limit, window)
	if err != nil {
		return Decision{Allowed: true}
	}
	return d
}

// TryAllow is Allow with the Redis error surfaced. While Redis keeps failing
// the circuit breaker opens and calls return circuitbreaker.ErrOpen at once.
func (l *RedisLimiter) TryAllow(key string, limit int, window time.Duration) (Decision, error) {
	if limit <= 0 {
		return Decision{Allowed: true}, nil
	}
	if window <= 0 {
		window = time.Minute
	}

	var d Decision
	err := l.breaker.Execute(func() error {
		var err error
		d, err = l.incr(key, limit, window)
		return err
	})
	return d, err
}

func (l *RedisLimiter) incr(key string, limit int, window time.Duration) (Decision, error) {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	redisKey := keyPrefix + key
	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		l.logError("incr", key, err)
		return Decision{}, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, window).Err(); err != nil {
			l.logError("expire", key, err)
		}
	}

	ttl, err := l.client.TTL(ctx, redisKey).Result()
	switch {
	case err == nil && ttl < 0:
		// a key without expiry would keep its count forever
		if err := l.client.Expire(ctx, redisKey, window).Err(); err != nil {
			l.logError("expire", key, err)
		}
		ttl = window
	case err != nil || ttl == 0:
		ttl = window
	}

	return Decision{
		Allowed:   int(count) <= limit,
		Count:     int(count),
		WindowEnd: time.Now().Add(ttl),
	}, nil
}

func (l *RedisLimiter) BreakerState() circuitbreaker.State {
	return l.breaker.State()
}

func (l *RedisLimiter) PingContext(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}

func (l *RedisLimiter) logError(op, key string, err error) {
	if l.logger == nil {
		return
	}
	l.logger.Error("Redis rate limiter error", map[string]interface{}{
		"op":    op,
		"key":   key,
		"error": err.Error(),
	})
}
