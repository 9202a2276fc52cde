package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 10 * time.Minute

// StandingsCache stores computed standings per tournament under a version.
// Callers read the version before loading the data and write under that same
// version, so a result computed before an Invalidate is never served after it.
type StandingsCache interface {
	Version(ctx context.Context, tournamentID int) (int64, error)
	Get(ctx context.Context, tournamentID int, version int64, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, tournamentID int, version int64, key string, value interface{}) error
	Invalidate(ctx context.Context, tournamentID int) error
}

type redisStandingsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisStandingsCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) StandingsCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &redisStandingsCache{client: client, ttl: ttl, logger: logger}
}

// NewRedisClient parses a redis:// URL and verifies the server answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func versionKey(tournamentID int) string {
	return fmt.Sprintf("srr:standings:%d:version", tournamentID)
}

func entryKey(tournamentID int, version int64, key string) string {
	return fmt.Sprintf("srr:standings:%d:v%d:%s", tournamentID, version, key)
}

func (c *redisStandingsCache) Version(ctx context.Context, tournamentID int) (int64, error) {
	version, err := c.client.Get(ctx, versionKey(tournamentID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("failed to read standings version: %w", err)
	}
	return version, nil
}

func (c *redisStandingsCache) Get(ctx context.Context, tournamentID int, version int64, key string, dest interface{}) (bool, error) {
	k := entryKey(tournamentID, version, key)
	raw, err := c.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cached standings: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.WarnContext(ctx, "discarding undecodable cache entry", slog.String("key", k), slog.Any("error", err))
		return false, nil
	}
	return true, nil
}

func (c *redisStandingsCache) Set(ctx context.Context, tournamentID int, version int64, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode standings: %w", err)
	}
	return c.client.Set(ctx, entryKey(tournamentID, version, key), raw, c.ttl).Err()
}

func (c *redisStandingsCache) Invalidate(ctx context.Context, tournamentID int) error {
	if err := c.client.Incr(ctx, versionKey(tournamentID)).Err(); err != nil {
		return fmt.Errorf("failed to bump standings version: %w", err)
	}
	return nil
}

type noopCache struct{}

// NewNoopCache returns a cache that never hits, for deployments without redis.
func NewNoopCache() StandingsCache { return noopCache{} }

func (noopCache) Version(context.Context, int) (int64, error) { return 0, nil }
func (noopCache) Get(context.Context, int, int64, string, interface{}) (bool, error) {
	return false, nil
}
func (noopCache) Set(context.Context, int, int64, string, interface{}) error { return nil }
func (noopCache) Invalidate(context.Context, int) error                      { return nil }
