package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type CaptchaInterface interface {
	Save(ctx context.Context, purpose, address, code string, ttl time.Duration) error
	Get(ctx context.Context, purpose, address string) (string, error)
	Delete(ctx context.Context, purpose, address string) error
}

// CaptchaRepository keeps captcha codes in redis under captcha:<purpose>:<address>.
type CaptchaRepository struct {
	rdb *redis.Client
}

func NewCaptchaRepository(rdb *redis.Client) *CaptchaRepository {
	return &CaptchaRepository{rdb: rdb}
}

func captchaKey(purpose, address string) string {
	return "captcha:" + purpose + ":" + address
}

func (r *CaptchaRepository) Save(ctx context.Context, purpose, address, code string, ttl time.Duration) error {
	return r.rdb.Set(ctx, captchaKey(purpose, address), code, ttl).Err()
}

func (r *CaptchaRepository) Get(ctx context.Context, purpose, address string) (string, error) {
	code, err := r.rdb.Get(ctx, captchaKey(purpose, address)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return code, err
}

func (r *CaptchaRepository) Delete(ctx context.Context, purpose, address string) error {
	return r.rdb.Del(ctx, captchaKey(purpose, address)).Err()
}
