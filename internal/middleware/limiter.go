package middleware

import (
	"sync"
	"time"

	"github.com/haierkeys/watermelon-notes/pkg/app"
	"github.com/haierkeys/watermelon-notes/pkg/code"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// LimiterConfig token bucket per client IP
// LimiterConfig 每个客户端 IP 一个令牌桶
type LimiterConfig struct {
	FillInterval time.Duration
	Capacity     int64
	Quantum      int64
}

// IPLimiter 按客户端 IP 分配令牌桶
type IPLimiter struct {
	config  LimiterConfig
	mu      sync.Mutex
	buckets map[string]*ratelimit.Bucket
}

// NewIPLimiter 创建限流器
func NewIPLimiter(c LimiterConfig) *IPLimiter {
	if c.FillInterval <= 0 {
		c.FillInterval = time.Second
	}
	if c.Quantum <= 0 {
		c.Quantum = c.Capacity
	}
	return &IPLimiter{config: c, buckets: make(map[string]*ratelimit.Bucket)}
}

// Bucket 获取或创建 key 对应的令牌桶
func (l *IPLimiter) Bucket(key string) *ratelimit.Bucket {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		b = ratelimit.NewBucketWithQuantum(l.config.FillInterval, l.config.Capacity, l.config.Quantum)
		l.buckets[key] = b
	}
	return b
}

// RateLimiter creates rate limiting middleware; a nil limiter or zero capacity disables it
// RateLimiter 创建限流中间件；limiter 为 nil 或容量为 0 时不限流
func RateLimiter(l *IPLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.config.Capacity <= 0 {
			c.Next()
			return
		}
		if l.Bucket(app.GetRequestIP(c)).TakeAvailable(1) == 0 {
			response := app.NewResponse(c)
			response.ToResponse(code.ErrorTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}
