package otp

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/labourhub/backend/internal/queue/redisclient"
)

const redisKeyPrefix = "otp:"

// RedisStore keeps records in Redis with native TTL expiry, for deployments
// where more than one API process serves OTP traffic.
type RedisStore struct {
	client *redisclient.Client
}

func NewRedisStore(client *redisclient.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, key string, rec Record) error {
	b, err := json.Marshal(rec)

	if err != nil {
		return err
	}

	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}

	return s.client.Raw().Set(ctx, redisKeyPrefix+key, b, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (Record, bool, error) {
	b, err := s.client.Raw().Get(ctx, redisKeyPrefix+key).Bytes()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}

	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return Record{}, false, err
	}

	return rec, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Raw().Del(ctx, redisKeyPrefix+key).Err()
}
