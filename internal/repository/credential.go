package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// CredentialRepository stores the API client's token pair in redis, so that
// several roomctl invocations on different hosts share one session.
type CredentialRepository struct {
	rdb    *redis.Client
	prefix string
}

func NewCredentialRepository(rdb *redis.Client, prefix string) *CredentialRepository {
	return &CredentialRepository{rdb: rdb, prefix: prefix}
}

// Get returns "" for a missing key.
func (r *CredentialRepository) Get(ctx context.Context, key string) (string, error) {
	v, err := r.rdb.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

// Set stores value without expiry; the empty string deletes the key.
func (r *CredentialRepository) Set(ctx context.Context, key, value string) error {
	if value == "" {
		return r.rdb.Del(ctx, r.prefix+key).Err()
	}
	return r.rdb.Set(ctx, r.prefix+key, value, 0).Err()
}
