package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisKeyPrefix = "speakerdesk:token:"

// RedisTokenStorage keeps tokens in Redis under prefix+key with a TTL.
type RedisTokenStorage struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisTokenStorage creates a Redis backed storage. An empty prefix uses
// DefaultRedisKeyPrefix; a zero ttl stores tokens without expiry.
func NewRedisTokenStorage(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisTokenStorage {
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &RedisTokenStorage{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisTokenStorage) Load(ctx context.Context, key string) (string, error) {
	token, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", errors.Join(ErrStorageFailed, err)
	}
	return token, nil
}

func (r *RedisTokenStorage) Save(ctx context.Context, key, token string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if err := r.client.Set(ctx, r.prefix+key, token, r.ttl).Err(); err != nil {
		return errors.Join(ErrStorageFailed, err)
	}
	return nil
}

func (r *RedisTokenStorage) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return errors.Join(ErrStorageFailed, err)
	}
	return nil
}
