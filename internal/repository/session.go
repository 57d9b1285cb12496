package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "roombook:auth:session:"

// SessionInterface is the refresh-token allow-list, one live token per user.
type SessionInterface interface {
	Save(ctx context.Context, userID uint64, refreshToken string, ttl time.Duration) error
	Get(ctx context.Context, userID uint64) (string, error)
}

type SessionRepository struct {
	rdb *redis.Client
}

func NewSessionRepository(rdb *redis.Client) *SessionRepository {
	return &SessionRepository{rdb: rdb}
}

func sessionKey(userID uint64) string {
	return fmt.Sprintf("%s%d", sessionKeyPrefix, userID)
}

func (r *SessionRepository) Save(ctx context.Context, userID uint64, refreshToken string, ttl time.Duration) error {
	return r.rdb.Set(ctx, sessionKey(userID), refreshToken, ttl).Err()
}

// Get returns ErrNotFound once the session expired or was deleted.
func (r *SessionRepository) Get(ctx context.Context, userID uint64) (string, error) {
	token, err := r.rdb.Get(ctx, sessionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return token, err
}
