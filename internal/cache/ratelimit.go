package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	rateLimitUserPrefix = "ratelimit:user:"
	rateLimitIPPrefix   = "ratelimit:ip:"
)

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// tokenBucketScript refills and consumes a token bucket atomically.
// Time is passed in milliseconds so sub-second bursts refill smoothly.
//
// KEYS[1] bucket key
// ARGV    rate (tokens/ms), burst, now (ms), ttl (ms)
// returns {allowed, retry_after_ms, tokens_left}
var tokenBucketScript = redis.NewScript(`
local rate  = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now   = tonumber(ARGV[3])
local ttl   = tonumber(ARGV[4])

local state  = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(state[1]) or burst
local ts     = tonumber(state[2]) or now

tokens = math.min(burst, tokens + math.max(0, now - ts) * rate)

local allowed = 0
local wait = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
else
	wait = math.ceil((1 - tokens) / rate)
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', now)
redis.call('PEXPIRE', KEYS[1], ttl)

return {allowed, wait, math.floor(tokens)}
`)

// CheckUserRateLimit consumes one token from the user's bucket.
// A zero rate disables limiting.
func (c *Cache) CheckUserRateLimit(ctx context.Context, userID string, ratePerMinute, burst int) (*RateLimitResult, error) {
	if ratePerMinute <= 0 {
		return unlimited(burst), nil
	}
	return c.consume(ctx, rateLimitUserPrefix+userID, float64(ratePerMinute)/60.0, burst)
}

// CheckIPRateLimit consumes one token from the bucket of a client IP.
// IPs are hashed so raw addresses are never stored.
func (c *Cache) CheckIPRateLimit(ctx context.Context, ip string, ratePerSecond, burst int) (*RateLimitResult, error) {
	if ratePerSecond <= 0 {
		return unlimited(burst), nil
	}
	return c.consume(ctx, rateLimitIPPrefix+hashIP(ip), float64(ratePerSecond), burst)
}

// consume runs the token bucket. On Redis failure it returns an allowing
// result together with the error so callers can log and fail open.
func (c *Cache) consume(ctx context.Context, key string, perSecond float64, burst int) (*RateLimitResult, error) {
	now := time.Now()
	perMs := perSecond / 1000.0
	// a full refill plus slack
	ttl := time.Duration(float64(burst)/perSecond*float64(time.Second)) + time.Minute

	res, err := tokenBucketScript.Run(ctx, c.client,
		[]string{key},
		perMs, burst, now.UnixMilli(), ttl.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return unlimited(burst), fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 3 {
		return unlimited(burst), fmt.Errorf("rate limit script: unexpected reply length %d", len(res))
	}

	retryAfter := time.Duration(res[1]) * time.Millisecond
	return &RateLimitResult{
		Allowed:    res[0] == 1,
		Limit:      burst,
		Remaining:  res[2],
		ResetAt:    now.Add(time.Duration(float64(time.Second) / perSecond)),
		RetryAfter: retryAfter,
	}, nil
}

func unlimited(burst int) *RateLimitResult {
	return &RateLimitResult{
		Allowed:   true,
		Limit:     burst,
		Remaining: int64(burst),
		ResetAt:   time.Now().Add(time.Minute),
	}
}

// hashIP creates a truncated SHA256 hash of an IP address.
func hashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(hash[:8])
}
