// Package redis implements Redis-backed adapters, currently the failed
// login attempt limiter.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/qaforge/qaforge/internal/config"
	"github.com/qaforge/qaforge/internal/ports"
)

const loginFailurePrefix = "login:failures:"

// LoginLimiter tracks failed login attempts per account in Redis
type LoginLimiter struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewClient creates a Redis client from configuration and verifies the
// connection before returning it
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewLoginLimiter creates a Redis-backed login limiter
func NewLoginLimiter(client *redis.Client, logger *logrus.Logger) ports.LoginLimiter {
	return &LoginLimiter{
		client: client,
		logger: logger,
	}
}

// RecordFailure registers a failed attempt and returns the current count.
// The expiration is set on the first failure so the window starts at the
// first miss, not the latest one.
func (l *LoginLimiter) RecordFailure(ctx context.Context, email string, window time.Duration) (int, error) {
	key := loginFailurePrefix + email

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment login failures: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, window).Err(); err != nil {
			return int(count), fmt.Errorf("failed to set failure window: %w", err)
		}
	}

	l.logger.WithFields(logrus.Fields{
		"email": email,
		"count": count,
	}).Debug("login failure recorded")

	return int(count), nil
}

// Failures returns the number of failures within the active window
func (l *LoginLimiter) Failures(ctx context.Context, email string) (int, error) {
	count, err := l.client.Get(ctx, loginFailurePrefix+email).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read login failures: %w", err)
	}
	return count, nil
}

// Reset clears the failure count after a successful login
func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	if err := l.client.Del(ctx, loginFailurePrefix+email).Err(); err != nil {
		return fmt.Errorf("failed to reset login failures: %w", err)
	}
	return nil
}
