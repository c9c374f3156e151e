package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

type fakeCounter struct {
	counts map[string]int64
	err    error
}

func (f *fakeCounter) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	return f.counts[key], nil
}

func newRouter(l *Limiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(l.Middleware())
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestLimiterRejectsOverLimit(t *testing.T) {
	counter := &fakeCounter{counts: map[string]int64{}}
	r := newRouter(New(counter, 2, time.Minute))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, int64(3), counter.counts["rl:ip:10.0.0.1"])
}

func TestLimiterAllowsOnCounterError(t *testing.T) {
	r := newRouter(New(&fakeCounter{err: errors.New("redis down")}, 1, time.Minute))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

// pipelineHook 拦截事务管道，不连接 Redis，直接给命令填充结果
type pipelineHook struct {
	count int64
	err   error
	seen  [][]interface{}
}

func (h *pipelineHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *pipelineHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook { return next }

func (h *pipelineHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		if h.err != nil {
			return h.err
		}
		for _, cmd := range cmds {
			h.seen = append(h.seen, cmd.Args())
			switch c := cmd.(type) {
			case *redis.IntCmd:
				h.count++
				c.SetVal(h.count)
			case *redis.BoolCmd:
				c.SetVal(true)
			}
		}
		return nil
	}
}

func newHookedClient(t *testing.T, hook *pipelineHook) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	client.AddHook(hook)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisCounterIncrAndExpire(t *testing.T) {
	hook := &pipelineHook{}
	counter := NewRedisCounter(newHookedClient(t, hook))

	n, err := counter.Incr(context.Background(), "rl:user:u1", time.Minute)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = counter.Incr(context.Background(), "rl:user:u1", time.Minute)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var names []string
	for _, args := range hook.seen {
		names = append(names, strings.ToLower(args[0].(string)))
	}
	assert.Contains(t, names, "incr")
	assert.Contains(t, names, "expire")
	for _, args := range hook.seen {
		if strings.ToLower(args[0].(string)) == "expire" {
			assert.Equal(t, "rl:user:u1", args[1])
			assert.Equal(t, int64(60), args[2])
		}
	}
}

func TestRedisCounterPropagatesError(t *testing.T) {
	counter := NewRedisCounter(newHookedClient(t, &pipelineHook{err: errors.New("connection refused")}))

	_, err := counter.Incr(context.Background(), "rl:ip:10.0.0.1", time.Minute)

	assert.EqualError(t, err, "connection refused")
}
