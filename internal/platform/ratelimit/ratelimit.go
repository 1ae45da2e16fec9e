package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"SIMAPRO-backend/internal/platform/apierr"
	"SIMAPRO-backend/internal/platform/config"
)

// Limiter は Redis の固定ウィンドウカウンタ（INCR + EXPIRE）でクライアントIPごとに制限する。
// 複数インスタンスでも Redis を共有していれば正しく数えられる
type Limiter struct {
	rdb    *redis.Client
	name   string
	limit  int
	window time.Duration
	now    func() time.Time
}

func New(rdb *redis.Client, name string, limit int, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, name: name, limit: limit, window: window, now: time.Now}
}

// NewClient returns nil when no Redis address is configured.
func NewClient(ctx context.Context, c config.RedisConfig) (*redis.Client, error) {
	if c.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: c.Addr, Password: c.Password, DB: c.DB})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func (l *Limiter) key(clientIP string) string {
	bucket := l.now().Unix() / int64(l.window.Seconds())
	return fmt.Sprintf("ratelimit:%s:%s:%d", l.name, clientIP, bucket)
}

// Allow は Redis 障害時には通す（全リクエストを止めない）
func (l *Limiter) Allow(ctx context.Context, clientIP string) bool {
	key := l.key(clientIP)
	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		slog.Warn("rate limiter unavailable", "limiter", l.name, "error", err)
		return true
	}
	if count == 1 {
		l.rdb.Expire(ctx, key, l.window+time.Second)
	}
	return count <= int64(l.limit)
}

// Middleware is a no-op when the limiter has no Redis client or no limit.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.rdb == nil || l.limit <= 0 {
			c.Next()
			return
		}
		if !l.Allow(c.Request.Context(), c.ClientIP()) {
			apierr.Abort(c, apierr.ErrTooMany("rate limit exceeded, please try again later"))
			return
		}
		c.Next()
	}
}
