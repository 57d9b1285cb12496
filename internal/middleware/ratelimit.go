package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"roombook/internal/dto/resp"
	"roombook/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// tokenBucketScript implements the Token Bucket algorithm.
// Input: ARGV[1]=rate, ARGV[2]=capacity, ARGV[3]=now, ARGV[4]=requested
// Output: { allowed, remaining, reset_after }
var tokenBucketScript = redis.NewScript(`
local tokens_key = KEYS[1]
local ts_key = KEYS[2]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

local ttl = math.ceil((capacity / rate) * 2)

local tokens = tonumber(redis.call("get", tokens_key))
if tokens == nil then tokens = capacity end
local last = tonumber(redis.call("get", ts_key))
if last == nil then last = now end

tokens = math.min(capacity, tokens + math.max(0, now - last) * rate)
if tokens < requested then
    return { 0, tostring(tokens), tostring((requested - tokens) / rate) }
end

tokens = tokens - requested
redis.call("set", tokens_key, tokens, "EX", ttl)
redis.call("set", ts_key, now, "EX", ttl)
return { 1, tostring(tokens), "0" }
`)

const (
	redisLimitTimeout = 100 * time.Millisecond
	localIdleTTL      = 10 * time.Minute
)

// RateLimiter throttles requests per client IP. Buckets live in redis so all
// replicas share them; when redis is absent or failing, each process falls back
// to its own in-memory buckets.
type RateLimiter struct {
	rdb       *redis.Client
	keyPrefix string
	limit     rate.Limit
	burst     int

	mu    sync.Mutex
	local map[string]*localLimiter
}

type localLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows requestsPerSecond with the given burst. rdb may be nil.
func NewRateLimiter(rdb *redis.Client, keyPrefix string, requestsPerSecond, burst int) *RateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	if burst < 1 {
		burst = requestsPerSecond
	}
	return &RateLimiter{
		rdb:       rdb,
		keyPrefix: keyPrefix,
		limit:     rate.Limit(requestsPerSecond),
		burst:     burst,
		local:     make(map[string]*localLimiter),
	}
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		c.Header("X-RateLimit-Limit", strconv.Itoa(int(l.limit)))

		allowed, remaining, resetAfter, err := l.allowRedis(c.Request.Context(), ip)
		if err != nil {
			if l.rdb != nil {
				logger.Warn("redis rate limit failed, switching to local fallback",
					zap.Error(err),
					zap.String("ip", ip))
			}
			allowed, remaining, resetAfter = l.allowLocal(ip)
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(remaining)))
		if !allowed {
			c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(resetAfter).Unix(), 10))
			resp.Fail(c, http.StatusTooManyRequests, "too many requests, try again later")
			return
		}
		c.Next()
	}
}

var errNoRedis = errors.New("rate limiter has no redis client")

func (l *RateLimiter) allowRedis(ctx context.Context, ip string) (bool, float64, time.Duration, error) {
	if l.rdb == nil {
		return false, 0, 0, errNoRedis
	}
	ctx, cancel := context.WithTimeout(ctx, redisLimitTimeout)
	defer cancel()

	key := l.keyPrefix + ip
	now := float64(time.Now().UnixMicro()) / 1e6
	res, err := tokenBucketScript.Run(ctx, l.rdb,
		[]string{key + ":tokens", key + ":ts"},
		float64(l.limit), float64(l.burst), now, 1,
	).Slice()
	if err != nil {
		return false, 0, 0, err
	}
	if len(res) != 3 {
		return false, 0, 0, errors.New("unexpected token bucket reply")
	}

	allowed, _ := res[0].(int64)
	remaining := parseFloat(res[1])
	resetAfter := time.Duration(parseFloat(res[2]) * float64(time.Second))
	return allowed == 1, remaining, resetAfter, nil
}

func (l *RateLimiter) allowLocal(ip string) (bool, float64, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, ll := range l.local {
		if now.Sub(ll.lastSeen) > localIdleTTL {
			delete(l.local, key)
		}
	}

	ll, ok := l.local[ip]
	if !ok {
		ll = &localLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.local[ip] = ll
	}
	ll.lastSeen = now

	if !ll.limiter.AllowN(now, 1) {
		wait := time.Duration(float64(time.Second) / float64(l.limit))
		return false, 0, wait
	}
	return true, ll.limiter.TokensAt(now), 0
}

func parseFloat(v any) float64 {
	switch val := v.(type) {
	case string:
		f, _ := strconv.ParseFloat(val, 64)
		return f
	case int64:
		return float64(val)
	default:
		return 0
	}
}
