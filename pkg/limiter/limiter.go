// Package limiter 处理限流逻辑
package limiter

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	limiterlib "github.com/ulule/limiter/v3"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"bloxforge/pkg/config"
	"bloxforge/pkg/logger"
	"bloxforge/pkg/redis"
)

// Rate 每秒速率
type Rate struct {
	Rate float64
}

var (
	storeOnce sync.Once
	store     limiterlib.Store
	storeErr  error
)

// ParseLimit 解析 "次数-单位" 格式的限流配置
// 支持: "5-S"、"10-M"、"1000-H"、"2000-D"
func ParseLimit(limit string) (*Rate, error) {
	// limiterlib 用 "5/S" 格式，先做一次格式校验
	if _, err := limiterlib.NewRateFromFormatted(strings.ReplaceAll(limit, "-", "/")); err != nil {
		return nil, fmt.Errorf("invalid limit format: %w", err)
	}

	parts := strings.Split(limit, "-")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid limit format: %s", limit)
	}

	value, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid rate value: %s", parts[0])
	}

	var perSecond float64
	switch strings.ToUpper(parts[1]) {
	case "S":
		perSecond = value
	case "M":
		perSecond = value / 60.0
	case "H":
		perSecond = value / 3600.0
	case "D":
		perSecond = value / 86400.0
	default:
		return nil, fmt.Errorf("invalid time unit: %s", parts[1])
	}

	return &Rate{Rate: perSecond}, nil
}

// GetKeyIP 以来源 IP 作为限流键
func GetKeyIP(c *gin.Context) string {
	return c.ClientIP()
}

// GetKeyRouteWithIP 以路由+IP 作为限流键，用于单路由限流
func GetKeyRouteWithIP(c *gin.Context) string {
	return routeToKeyString(c.FullPath()) + c.ClientIP()
}

// CheckRate 检测请求是否超额，计数存 Redis 主库
func CheckRate(c *gin.Context, key string, formatted string) (limiterlib.Context, error) {
	var context limiterlib.Context

	rate, err := limiterlib.NewRateFromFormatted(formatted)
	if err != nil {
		logger.LogIf(err)
		return context, err
	}

	s, err := limiterStore()
	if err != nil {
		logger.LogIf(err)
		return context, err
	}

	limiterObj := limiterlib.New(s, rate)

	// 多个路由组叠加限流时只计一次访问
	if c.GetBool("limiter-once") {
		return limiterObj.Peek(c, key)
	}
	c.Set("limiter-once", true)
	return limiterObj.Get(c, key)
}

// limiterStore 懒初始化共享的 Redis 存储
func limiterStore() (limiterlib.Store, error) {
	storeOnce.Do(func() {
		store, storeErr = sredis.NewStoreWithOptions(redis.GetRedis(redis.MainDB).Client, limiterlib.StoreOptions{
			Prefix: config.GetString("app.name") + ":limiter",
		})
	})
	return store, storeErr
}

func routeToKeyString(routeName string) string {
	routeName = strings.ReplaceAll(routeName, "/", "-")
	routeName = strings.ReplaceAll(routeName, ":", "_")
	return routeName
}
