package requests

import (
	"github.com/gin-gonic/gin"
	"github.com/thedevsaddam/govalidator"
)

// LoginRequest 插件登录请求
type LoginRequest struct {
	Email    string `json:"email" valid:"email"`
	Nickname string `json:"nickname" valid:"nickname"`
}

// ValidateLogin 验证登录请求
func ValidateLogin(c *gin.Context) (LoginRequest, error) {
	rules := govalidator.MapData{
		"email":    []string{"required", "email", "max:255"},
		"nickname": []string{"required", "min:2", "max:50"},
	}
	messages := govalidator.MapData{
		"email": []string{
			"required:邮箱不能为空",
			"email:邮箱格式不正确",
		},
		"nickname": []string{
			"required:昵称不能为空",
			"min:昵称长度不能小于 2 个字符",
			"max:昵称长度不能超过 50 个字符",
		},
	}
	return ValidateRequest[LoginRequest](c, rules, messages)
}

// VerifyIdentityRequest 绑定 Roblox 身份请求
// 发生在签发令牌之前，所以同样带 email 定位账号
type VerifyIdentityRequest struct {
	Email          string `json:"email" valid:"email"`
	Nickname       string `json:"nickname" valid:"nickname"`
	RobloxUsername string `json:"roblox_username" valid:"roblox_username"`
}

// ValidateVerifyIdentity 验证身份绑定请求
func ValidateVerifyIdentity(c *gin.Context) (VerifyIdentityRequest, error) {
	rules := govalidator.MapData{
		"email":           []string{"required", "email", "max:255"},
		"nickname":        []string{"min:2", "max:50"},
		"roblox_username": []string{"required", "min:3", "max:20"},
	}
	messages := govalidator.MapData{
		"email": []string{
			"required:邮箱不能为空",
			"email:邮箱格式不正确",
		},
		"nickname": []string{
			"min:昵称长度不能小于 2 个字符",
			"max:昵称长度不能超过 50 个字符",
		},
		"roblox_username": []string{
			"required:Roblox 用户名不能为空",
			"min:Roblox 用户名长度不能小于 3 个字符",
			"max:Roblox 用户名长度不能超过 20 个字符",
		},
	}
	return ValidateRequest[VerifyIdentityRequest](c, rules, messages)
}
