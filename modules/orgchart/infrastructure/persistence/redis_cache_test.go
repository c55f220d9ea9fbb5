package persistence

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/domain"
)

func redisForTest(t *testing.T) *RedisSnapshotCache {
	t.Helper()

	url := strings.TrimSpace(os.Getenv("REDIS_URL"))
	if url == "" {
		url = "redis://localhost:6379/15"
	}
	client, err := NewRedisClient(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("redis is not reachable; skipping snapshot cache test")
	}
	c := NewRedisSnapshotCache(client, time.Minute)
	c.prefix = "orgchart:test:" + t.Name()
	return c
}

func TestRedisSnapshotCache_RoundTrip(t *testing.T) {
	c := redisForTest(t)
	ctx := context.Background()
	t.Cleanup(func() { _ = c.Delete(ctx, "records") })

	_, ok, err := c.Get(ctx, "records")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Set(ctx, "records", []domain.RawRecord{{"id": "1", "Joining Date": 45000}}))
	got, ok, err := c.Get(ctx, "records")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	require.Equal(t, json.Number("45000"), got[0]["Joining Date"])

	require.NoError(t, c.Delete(ctx, "records"))
	_, ok, err = c.Get(ctx, "records")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNewRedisClient_RejectsBadURL(t *testing.T) {
	_, err := NewRedisClient("not-a-url://")
	require.Error(t, err)
}
