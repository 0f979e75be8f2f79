// Package auth 登录态工具
package auth

import (
	"github.com/gin-gonic/gin"

	"bloxforge/app/models/user"
)

// CurrentUser 从 gin.Context 中获取当前登录用户
// 中间件缺位或类型不符时返回空用户，调用方按未登录处理
func CurrentUser(c *gin.Context) *user.User {
	val, ok := c.Get("current_user")
	if !ok {
		return &user.User{}
	}
	userModel, ok := val.(*user.User)
	if !ok {
		return &user.User{}
	}
	return userModel
}

// CurrentUID 从 gin.Context 中获取当前登录用户 ID
func CurrentUID(c *gin.Context) string {
	return c.GetString("current_user_id")
}
