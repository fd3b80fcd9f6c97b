package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// GuardRepository keeps short-lived counters in Redis for view de-duplication and request throttling.
// Without a client every check passes.
type GuardRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewGuardRepository constructs a guard repository; client may be nil.
func NewGuardRepository(client *redis.Client, logger *zap.Logger) *GuardRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GuardRepository{client: client, logger: logger}
}

// Enabled reports whether a Redis client backs the guard.
func (r *GuardRepository) Enabled() bool {
	return r != nil && r.client != nil
}

// FirstSeen marks key for window and reports whether it was not already marked.
func (r *GuardRepository) FirstSeen(ctx context.Context, key string, window time.Duration) (bool, error) {
	if !r.Enabled() || window <= 0 {
		return true, nil
	}
	ok, err := r.client.SetNX(ctx, key, 1, window).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return ok, nil
}

// Allow counts a hit against key and reports whether the count stays within limit for the window.
func (r *GuardRepository) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !r.Enabled() || limit <= 0 || window <= 0 {
		return true, nil
	}

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis incr %s: %w", key, err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			r.logger.Warn("failed to set guard expiry", zap.String("key", key), zap.Error(err))
		}
	}
	return count <= int64(limit), nil
}

// Close releases the underlying Redis connection if present.
func (r *GuardRepository) Close() error {
	if !r.Enabled() {
		return nil
	}
	return r.client.Close()
}
