package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/domain"
)

// RedisSnapshotCache shares the raw record snapshot between server
// instances. Values are JSON arrays under prefix:key.
type RedisSnapshotCache struct {
	redis  *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisSnapshotCache(client *redis.Client, ttl time.Duration) *RedisSnapshotCache {
	return &RedisSnapshotCache{redis: client, prefix: "orgchart:v1", ttl: ttl}
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "invalid REDIS_URL")
	}
	return redis.NewClient(opts), nil
}

func (c *RedisSnapshotCache) key(key string) string {
	return c.prefix + ":" + key
}

func (c *RedisSnapshotCache) Get(ctx context.Context, key string) ([]domain.RawRecord, bool, error) {
	raw, err := c.redis.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "failed to read record snapshot")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var records []domain.RawRecord
	if err := dec.Decode(&records); err != nil {
		return nil, false, errors.Wrap(err, "failed to decode record snapshot")
	}
	return records, true, nil
}

func (c *RedisSnapshotCache) Set(ctx context.Context, key string, records []domain.RawRecord) error {
	if records == nil {
		records = []domain.RawRecord{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return errors.Wrap(err, "failed to encode record snapshot")
	}
	if err := c.redis.Set(ctx, c.key(key), raw, c.ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to store record snapshot")
	}
	return nil
}

func (c *RedisSnapshotCache) Delete(ctx context.Context, key string) error {
	return c.redis.Del(ctx, c.key(key)).Err()
}
