package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"

	"bloxforge/app/repositories"
	"bloxforge/pkg/response"
)

// AuthPluginToken 插件令牌认证中间件
//
// 从 Authorization: Bearer 头读取不透明令牌（WebSocket 握手时
// 浏览器无法携带自定义头，允许回退到 token 查询参数），
// 校验通过后把用户挂到上下文，失败一律 401
func AuthPluginToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			response.Abort401(c, "缺少登录凭证")
			return
		}

		tokenRepo := repositories.NewTokenRepository()
		valid, userID := tokenRepo.Validate(c.Request.Context(), token)
		if !valid {
			response.Abort401(c)
			return
		}

		userRepo := repositories.NewUserRepository()
		u, err := userRepo.GetByID(c.Request.Context(), userID)
		if err != nil {
			// 令牌有效但用户丢失，按凭证无效处理
			response.Abort401(c)
			return
		}

		c.Set("current_user", u)
		c.Set("current_user_id", u.ID)
		c.Next()
	}
}

// tokenFromRequest 按优先级提取令牌
func tokenFromRequest(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return c.Query("token")
}
