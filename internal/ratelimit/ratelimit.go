// Package ratelimit 用 Redis 计数限制写请求频率
package ratelimit

import (
	"context"
	"fmt"
	"time"

	apperrors "community-forum/internal/errors"
	"community-forum/internal/middleware"
	"community-forum/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Counter 在窗口内对 key 计数，返回当前计数
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisCounter 用 INCR + EXPIRE 计数，每次请求都会续期窗口
type RedisCounter struct {
	client *redis.Client
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

func (r *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

type Limiter struct {
	counter Counter
	limit   int64
	window  time.Duration
}

func New(counter Counter, limit int64, window time.Duration) *Limiter {
	return &Limiter{counter: counter, limit: limit, window: window}
}

// Allow 返回 key 是否还在限额内
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := l.counter.Incr(ctx, "rl:"+key, l.window)
	if err != nil {
		return false, err
	}
	return n <= l.limit, nil
}

// Middleware 按用户 id（未登录时按客户端 IP）限流。Redis 出错时放行。
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if user := middleware.GetSession(c).CurrentUser; user != nil {
			key = "user:" + user.ID
		}

		ok, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			util.Logger.Warn("限流检查失败，放行请求", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if !ok {
			apperrors.HandleError(c, apperrors.New(apperrors.ErrRateLimited,
				fmt.Sprintf("Too many requests, limit is %d per %s", l.limit, l.window)))
			c.Abort()
			return
		}
		c.Next()
	}
}
