package api

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"casetracker/config"
	"casetracker/metrics"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Rate limiter backends, used as the metric label
const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

// RateLimiter decides whether a request from key may proceed
type RateLimiter interface {
	Allow(ctx context.Context, key string) bool
	// Limit is the number of requests allowed per window, reported to clients
	Limit() int
	Backend() string
}

// rateLimiterEntry holds a rate limiter with last seen time
type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalRateLimiter keeps a token bucket per key in process memory
type LocalRateLimiter struct {
	rps      rate.Limit
	burst    int
	idleTTL  time.Duration
	limiters map[string]*rateLimiterEntry
	mu       sync.Mutex
	stopCh   chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

// NewLocalRateLimiter creates an in-process limiter. Entries idle for longer
// than idleTTL are evicted by a background sweep.
func NewLocalRateLimiter(requestsPerSecond float64, burst int, idleTTL time.Duration) *LocalRateLimiter {
	rl := &LocalRateLimiter{
		rps:      rate.Limit(requestsPerSecond),
		burst:    burst,
		idleTTL:  idleTTL,
		limiters: make(map[string]*rateLimiterEntry),
		stopCh:   make(chan struct{}),
		now:      time.Now,
	}
	go rl.cleanupLoop()
	return rl
}

// Allow checks if a request from the given key is allowed
func (rl *LocalRateLimiter) Allow(_ context.Context, key string) bool {
	rl.mu.Lock()
	entry, exists := rl.limiters[key]
	if !exists {
		entry = &rateLimiterEntry{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = rl.now()
	// Capture limiter reference while holding lock to prevent race with cleanup
	limiter := entry.limiter
	rl.mu.Unlock()

	return limiter.Allow()
}

// Limit reports the per-second rate rounded up
func (rl *LocalRateLimiter) Limit() int {
	return int(math.Ceil(float64(rl.rps)))
}

// Backend returns the metric label for this limiter
func (rl *LocalRateLimiter) Backend() string {
	return RateLimitBackendMemory
}

func (rl *LocalRateLimiter) cleanupLoop() {
	interval := rl.idleTTL
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.evictIdle()
		case <-rl.stopCh:
			return
		}
	}
}

// evictIdle removes entries not seen within idleTTL
func (rl *LocalRateLimiter) evictIdle() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	removed := 0
	for key, entry := range rl.limiters {
		if rl.now().Sub(entry.lastSeen) > rl.idleTTL {
			delete(rl.limiters, key)
			removed++
		}
	}
	return removed
}

// Close stops the cleanup goroutine
func (rl *LocalRateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Redis limiter failure handling
const (
	// redisCheckTimeout bounds a single Redis round trip on the request path
	redisCheckTimeout = 100 * time.Millisecond
	// redisCooldown is how long Redis is skipped after a failed check
	redisCooldown = 5 * time.Second
)

// RedisRateLimiter enforces a fixed-window limit shared by every replica.
// When Redis is unreachable it falls back to the local limiter and stops
// contacting Redis until the cooldown has elapsed.
type RedisRateLimiter struct {
	client   *redis.Client
	limit    int
	window   time.Duration
	prefix   string
	fallback *LocalRateLimiter
	logger   *zap.SugaredLogger

	timeout   time.Duration
	cooldown  time.Duration
	mu        sync.Mutex
	openUntil time.Time
	now       func() time.Time
}

// NewRedisClient creates the client used by RedisRateLimiter. The limiter
// sits on every request, so retries are off and deadlines follow the context.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:                  cfg.Addr,
		Password:              cfg.Password,
		DB:                    cfg.DB,
		PoolSize:              cfg.PoolSize,
		MaxRetries:            -1,
		DialTimeout:           time.Second,
		ReadTimeout:           250 * time.Millisecond,
		WriteTimeout:          250 * time.Millisecond,
		ContextTimeoutEnabled: true,
	})
}

// NewRedisRateLimiter creates a limiter allowing limit requests per window per key
func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration, fallback *LocalRateLimiter, logger *zap.SugaredLogger) *RedisRateLimiter {
	if window < time.Millisecond {
		window = time.Second
	}
	return &RedisRateLimiter{
		client:   client,
		limit:    limit,
		window:   window,
		prefix:   "casetracker:ratelimit",
		fallback: fallback,
		logger:   logger,
		timeout:  redisCheckTimeout,
		cooldown: redisCooldown,
		now:      time.Now,
	}
}

// Allow increments the counter for the current window and compares it to the limit
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) bool {
	if rl.isOpen() {
		return rl.fallbackAllow(ctx, key)
	}

	windowStart := rl.now().UnixMilli() / rl.window.Milliseconds()
	redisKey := fmt.Sprintf("%s:%s:%s", rl.prefix, key, strconv.FormatInt(windowStart, 10))

	checkCtx, cancel := context.WithTimeout(ctx, rl.timeout)
	defer cancel()

	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(checkCtx, redisKey)
	pipe.PExpire(checkCtx, redisKey, rl.window)
	if _, err := pipe.Exec(checkCtx); err != nil {
		rl.recordFailure(err)
		return rl.fallbackAllow(ctx, key)
	}

	rl.recordSuccess()
	return incr.Val() <= int64(rl.limit)
}

func (rl *RedisRateLimiter) fallbackAllow(ctx context.Context, key string) bool {
	if rl.fallback == nil {
		return true
	}
	return rl.fallback.Allow(ctx, key)
}

func (rl *RedisRateLimiter) isOpen() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.now().Before(rl.openUntil)
}

// recordFailure opens the breaker; only the first failure of an outage is logged
func (rl *RedisRateLimiter) recordFailure(err error) {
	rl.mu.Lock()
	wasOpen := !rl.openUntil.IsZero()
	rl.openUntil = rl.now().Add(rl.cooldown)
	rl.mu.Unlock()

	if !wasOpen {
		rl.logger.Warnw("Redis rate limit check failed, falling back to memory",
			"error", err, "retry_in", rl.cooldown)
	}
}

func (rl *RedisRateLimiter) recordSuccess() {
	rl.mu.Lock()
	wasOpen := !rl.openUntil.IsZero()
	rl.openUntil = time.Time{}
	rl.mu.Unlock()

	if wasOpen {
		rl.logger.Infow("Redis rate limiting recovered")
	}
}

// Limit returns the per-window request allowance
func (rl *RedisRateLimiter) Limit() int {
	return rl.limit
}

// Backend returns the metric label for this limiter
func (rl *RedisRateLimiter) Backend() string {
	return RateLimitBackendRedis
}

// Close stops the fallback limiter
func (rl *RedisRateLimiter) Close() {
	if rl.fallback != nil {
		rl.fallback.Close()
	}
}

// writeRateLimitResponse writes a 429 Too Many Requests response with rate limit headers
func (a *API) writeRateLimitResponse(w http.ResponseWriter) {
	metrics.RateLimitRejections.WithLabelValues(a.limiter.Backend()).Inc()
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(a.limiter.Limit()))
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.Header().Set("Retry-After", "1")
	a.writeProblem(w, http.StatusTooManyRequests, "Too many requests", "", "ratelimited", "", "Too many requests")
}
