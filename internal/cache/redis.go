package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/config"
)

// ErrMiss is returned when a key is not present in the cache.
var ErrMiss = errors.New("cache miss")

// Redis wraps the shared Redis client used for OAuth access-token caching and
// collaboration presence counters. Safe for concurrent use.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to Redis and verifies connectivity.
func NewRedis(cfg config.RedisConfig) (*Redis, error) {
	cli := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Redis{client: cli}, nil
}

// Ping verifies connectivity, used by the health endpoint.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

func tokenKey(tenantID, vendor string) string {
	return fmt.Sprintf("brain:token:%s:%s", tenantID, vendor)
}

func presenceKey(tenantID string) string {
	return fmt.Sprintf("brain:presence:%s", tenantID)
}

// SetAccessToken caches a vendor access token with a TTL derived from the
// token's expiry.
func (r *Redis) SetAccessToken(ctx context.Context, tenantID, vendor, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // never cache an already-expired token
	}
	return r.client.Set(ctx, tokenKey(tenantID, vendor), token, ttl).Err()
}

// AccessToken returns a cached vendor access token, or ErrMiss.
func (r *Redis) AccessToken(ctx context.Context, tenantID, vendor string) (string, error) {
	v, err := r.client.Get(ctx, tokenKey(tenantID, vendor)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrMiss
		}
		return "", err
	}
	return v, nil
}

// InvalidateToken drops a cached token, forcing a refresh on next use.
func (r *Redis) InvalidateToken(ctx context.Context, tenantID, vendor string) error {
	return r.client.Del(ctx, tokenKey(tenantID, vendor)).Err()
}

// IncrPresence bumps the live-session counter for a tenant and returns the new count.
func (r *Redis) IncrPresence(ctx context.Context, tenantID string) (int64, error) {
	return r.client.Incr(ctx, presenceKey(tenantID)).Result()
}

// DecrPresence decrements the live-session counter for a tenant, flooring at zero.
func (r *Redis) DecrPresence(ctx context.Context, tenantID string) (int64, error) {
	n, err := r.client.Decr(ctx, presenceKey(tenantID)).Result()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		_ = r.client.Set(ctx, presenceKey(tenantID), 0, 0).Err()
		return 0, nil
	}
	return n, nil
}

// PresenceCount returns the live-session counter for a tenant.
func (r *Redis) PresenceCount(ctx context.Context, tenantID string) (int64, error) {
	n, err := r.client.Get(ctx, presenceKey(tenantID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}
