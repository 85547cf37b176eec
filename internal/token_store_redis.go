package internal

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lychee-technology/formwave"
)

const redisTokenKeyPrefix = "formwave:token:"

// RedisTokenStore keeps the token of one profile in Redis with a TTL, so
// several hosts can share a session.
type RedisTokenStore struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

var _ formwave.TokenStore = (*RedisTokenStore)(nil)

// NewRedisTokenStore stores the token of profile under formwave:token:<profile>.
func NewRedisTokenStore(client redis.Cmdable, profile string, ttl time.Duration) *RedisTokenStore {
	if profile == "" {
		profile = "default"
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &RedisTokenStore{client: client, key: redisTokenKeyPrefix + profile, ttl: ttl}
}

func (s *RedisTokenStore) Token(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", formwave.NewStorageError("redis token get", err)
	}
	return token, nil
}

func (s *RedisTokenStore) SetToken(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, s.ttl).Err(); err != nil {
		return formwave.NewStorageError("redis token set", err)
	}
	return nil
}

func (s *RedisTokenStore) ClearToken(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return formwave.NewStorageError("redis token delete", err)
	}
	return nil
}
