package slots

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/lecturelens-backend/internal/platform/ctxutil"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

// Limiter caps how many holders run at once. Acquire blocks until a slot frees up or ctx ends.
type Limiter interface {
	Acquire(ctx context.Context) (release func(), err error)
	Close() error
}

type Config struct {
	RedisAddr string
	Key       string
	Max       int
	// PollInterval is how often a blocked Acquire retries against redis.
	PollInterval time.Duration
}

// New returns a redis-backed limiter when RedisAddr is set, and an in-process one otherwise.
func New(ctx context.Context, log *logger.Logger, cfg Config) (Limiter, error) {
	if cfg.Max <= 0 {
		cfg.Max = 1
	}
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		log.Info("slot limiter running in-process", "max", cfg.Max)
		return NewLocal(cfg.Max), nil
	}
	return NewRedis(ctx, log, cfg)
}

type local struct {
	sem chan struct{}
}

func NewLocal(max int) Limiter {
	if max <= 0 {
		max = 1
	}
	return &local{sem: make(chan struct{}, max)}
}

func (l *local) Acquire(ctx context.Context) (func(), error) {
	ctx = ctxutil.Default(ctx)
	select {
	case l.sem <- struct{}{}:
		return sync.OnceFunc(func() { <-l.sem }), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *local) Close() error { return nil }

// Counter stays at or below ARGV[1]. The TTL clears slots leaked by a crashed holder.
var acquireScript = goredis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current < tonumber(ARGV[1]) then
	redis.call('INCR', KEYS[1])
	redis.call('EXPIRE', KEYS[1], 3600)
	return 1
end
return 0
`)

type redisLimiter struct {
	log  *logger.Logger
	rdb  *goredis.Client
	key  string
	max  int
	poll time.Duration
}

func NewRedis(ctx context.Context, log *logger.Logger, cfg Config) (Limiter, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        strings.TrimSpace(cfg.RedisAddr),
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctxutil.Default(ctx), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	key := strings.TrimSpace(cfg.Key)
	if key == "" {
		key = "lecturelens:analysis_slots"
	}
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = time.Second
	}
	max := cfg.Max
	if max <= 0 {
		max = 1
	}
	return &redisLimiter{
		log:  log.With("service", "RedisSlotLimiter"),
		rdb:  rdb,
		key:  key,
		max:  max,
		poll: poll,
	}, nil
}

func (r *redisLimiter) Acquire(ctx context.Context) (func(), error) {
	ctx = ctxutil.Default(ctx)
	for {
		ok, err := r.tryAcquire(ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			return sync.OnceFunc(r.release), nil
		}
		t := time.NewTimer(r.poll)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func (r *redisLimiter) tryAcquire(ctx context.Context) (bool, error) {
	res, err := acquireScript.Run(ctx, r.rdb, []string{r.key}, r.max).Int64()
	if err != nil {
		return false, fmt.Errorf("acquire slot: %w", err)
	}
	return res == 1, nil
}

func (r *redisLimiter) release() {
	// release must still run after the holder's ctx is canceled
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	n, err := r.rdb.Decr(ctx, r.key).Result()
	if err != nil {
		r.log.Warn("release slot failed", "key", r.key, "error", err)
		return
	}
	if n <= 0 {
		_ = r.rdb.Del(ctx, r.key).Err()
	}
}

func (r *redisLimiter) Close() error {
	return r.rdb.Close()
}
