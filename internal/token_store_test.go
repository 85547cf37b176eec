package internal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTokenStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTokenStore()

	tok, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, store.SetToken(ctx, "abc"))
	tok, _ = store.Token(ctx)
	assert.Equal(t, "abc", tok)

	require.NoError(t, store.ClearToken(ctx))
	tok, _ = store.Token(ctx)
	assert.Empty(t, tok)
}

func TestFileTokenStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileTokenStore(path, 0)

	tok, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok, "missing file reads as no session")

	require.NoError(t, store.SetToken(ctx, "secret"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	tok, err = NewFileTokenStore(path, 0).Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "secret", tok)

	require.NoError(t, store.ClearToken(ctx))
	require.NoError(t, store.ClearToken(ctx))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileTokenStore_Expiry(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	store := NewFileTokenStore(path, time.Hour)
	store.now = func() time.Time { return now }

	require.NoError(t, store.SetToken(ctx, "short-lived"))
	now = now.Add(59 * time.Minute)
	tok, _ := store.Token(ctx)
	assert.Equal(t, "short-lived", tok)

	now = now.Add(2 * time.Minute)
	tok, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "expired session file is removed")
}

func TestFileTokenStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileTokenStore(path, 0).Token(context.Background())
	assert.Error(t, err)
}

// testRedisClient skips when no Redis server is reachable.
func testRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("FORMWAVE_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: redis not reachable: %v", err)
	}
	t.Cleanup(func() {
		client.Del(ctx, redisTokenKeyPrefix+"test-profile")
		client.Close()
	})
	return client
}

func TestRedisTokenStore(t *testing.T) {
	client := testRedisClient(t)
	ctx := context.Background()
	store := NewRedisTokenStore(client, "test-profile", time.Minute)

	tok, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, store.SetToken(ctx, "shared"))
	tok, err = store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "shared", tok)

	ttl, err := client.TTL(ctx, redisTokenKeyPrefix+"test-profile").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.ClearToken(ctx))
	tok, _ = store.Token(ctx)
	assert.Empty(t, tok)
}
