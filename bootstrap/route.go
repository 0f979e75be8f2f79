package bootstrap

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bloxforge/app/http/middlewares"
	"bloxforge/routes"
)

// SetupRoute 路由初始化：全局中间件、API 路由和 404 处理
func SetupRoute(router *gin.Engine) {
	router.Use(
		middlewares.Logger(),
		middlewares.Recovery(),
	)

	routes.RegisterAPIRoutes(router)

	// 插件端只消费 JSON，未匹配路由统一返回 JSON 404
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error_code":    404,
			"error_message": "路由未定义，请确认 url 和请求方法是否正确。",
		})
	})
}
