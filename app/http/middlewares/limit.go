package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"golang.org/x/time/rate"

	"bloxforge/pkg/app"
	"bloxforge/pkg/limiter"
	"bloxforge/pkg/logger"
	"bloxforge/pkg/response"
)

// 默认允许的突发请求量
const defaultBurst = 100

// limiterEntry 单个限流键的令牌桶和最近访问时间
type limiterEntry struct {
	lim        *rate.Limiter
	lastAccess time.Time
}

var (
	limiterTable sync.Map
	cleanupOnce  sync.Once
)

// LimitIP 按来源 IP 限流
//
// 限流格式与路由常量一致："5-S"、"120-M"、"30000-H"、"2000-D"。
// 限流器不可用时放行请求，限流是保护措施而不是功能开关
func LimitIP(limit string) gin.HandlerFunc {
	return limitBy(limit, limiter.GetKeyIP)
}

// LimitPerRoute 按路由 + IP 限流，用于给单个接口收紧阈值
func LimitPerRoute(limit string) gin.HandlerFunc {
	return limitBy(limit, limiter.GetKeyRouteWithIP)
}

func limitBy(limit string, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	// 测试环境放开阈值，避免集成测试被限流干扰
	if app.IsTesting() {
		limit = "1000000-H"
	}

	cleanupOnce.Do(func() {
		go cleanupLimiters()
	})

	return func(c *gin.Context) {
		lim, err := getLimiter(keyFunc(c), limit)
		if err != nil {
			logger.ErrorString("限流", "解析配置", err.Error())
			c.Next()
			return
		}

		if !lim.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.Response{
				Status:  response.Error,
				Error:   "TooManyRequests",
				Message: "请求太频繁，请稍后再试",
			})
			return
		}

		c.Header("X-RateLimit-Limit", cast.ToString(lim.Limit()))
		c.Header("X-RateLimit-Remaining", cast.ToString(lim.Tokens()))

		c.Next()
	}
}

// getLimiter 取（或建）限流键对应的令牌桶，顺带刷新访问时间
func getLimiter(key, limit string) (*rate.Limiter, error) {
	now := time.Now()

	if v, ok := limiterTable.Load(key); ok {
		entry := v.(*limiterEntry)
		entry.lastAccess = now
		return entry.lim, nil
	}

	r, err := limiter.ParseLimit(limit)
	if err != nil {
		return nil, err
	}

	entry := &limiterEntry{
		lim:        rate.NewLimiter(rate.Limit(r.Rate), defaultBurst),
		lastAccess: now,
	}
	actual, _ := limiterTable.LoadOrStore(key, entry)
	return actual.(*limiterEntry).lim, nil
}

// cleanupLimiters 每小时清一次超过 24 小时未访问的限流键
func cleanupLimiters() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-24 * time.Hour)
		limiterTable.Range(func(key, value interface{}) bool {
			if value.(*limiterEntry).lastAccess.Before(cutoff) {
				limiterTable.Delete(key)
			}
			return true
		})
	}
}
