package ratelimit

import (
	"errors"
	"time"

	"twitterapi/pkg/logger"
)

// PrimaryLimiter is a limiter that can report why it could not decide.
type PrimaryLimiter interface {
	TryAllow(key string, limit int, window time.Duration) (Decision, error)
	Close() error
}

// FallbackLimiter asks the primary limiter first and degrades to a
// per-process limiter whenever the primary cannot answer.
type FallbackLimiter struct {
	primary   PrimaryLimiter
	secondary Limiter
	logger    logger.Logger
}

func NewFallbackLimiter(primary PrimaryLimiter, secondary Limiter, log logger.Logger) *FallbackLimiter {
	return &FallbackLimiter{
		primary:   primary,
		secondary: secondary,
		logger:    log,
	}
}

func (f *FallbackLimiter) Allow(key string, limit int, window time.Duration) Decision {
	d, err := f.primary.TryAllow(key, limit, window)
	if err == nil {
		return d
	}

	if f.logger != nil {
		f.logger.Debug("Rate limiter falling back to in-process counts", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	return f.secondary.Allow(key, limit, window)
}

func (f *FallbackLimiter) Close() error {
	return errors.Join(f.primary.Close(), f.secondary.Close())
}
