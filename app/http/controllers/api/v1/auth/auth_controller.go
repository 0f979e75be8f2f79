// Package auth 插件会话与身份绑定
package auth

import (
	"errors"

	"github.com/gin-gonic/gin"

	"bloxforge/app/requests"
	"bloxforge/app/repositories"
	pkgauth "bloxforge/pkg/auth"
	"bloxforge/pkg/logger"
	"bloxforge/pkg/response"
	"bloxforge/pkg/roblox"
)

type AuthController struct {
	userRepo  *repositories.UserRepository
	tokenRepo *repositories.TokenRepository
	roblox    *roblox.Client
}

// NewAuthController 创建认证控制器
func NewAuthController() *AuthController {
	return &AuthController{
		userRepo:  repositories.NewUserRepository(),
		tokenRepo: repositories.NewTokenRepository(),
		roblox:    roblox.NewClient(nil),
	}
}

// Login 插件登录，签发 30 天不透明令牌
//
// 账号以邮箱定位，不存在则创建；未绑定 Roblox 身份的账号
// 不给令牌，引导客户端先走 VerifyIdentity
func (ac *AuthController) Login(c *gin.Context) {
	req, err := requests.ValidateLogin(c)
	if err != nil {
		response.BadRequest(c, err, err.Error())
		return
	}

	u, err := ac.userRepo.FindOrCreateByEmail(c.Request.Context(), req.Email, req.Nickname)
	if err != nil {
		response.ServerError(c, err)
		return
	}

	if !u.IdentityLinked() {
		response.AbortIdentityNotLinked(c)
		return
	}

	t, err := ac.tokenRepo.Issue(c.Request.Context(), u.ID)
	if err != nil {
		response.ServerError(c, err)
		return
	}

	response.Data(c, gin.H{
		"token":      t.Token,
		"expires_at": t.ExpiresAt,
		"user":       u,
	})
}

// VerifySession 校验当前令牌是否有效，同时返回用户信息
func (ac *AuthController) VerifySession(c *gin.Context) {
	u := pkgauth.CurrentUser(c)
	response.Data(c, gin.H{
		"valid": true,
		"user":  u,
	})
}

// Logout 吊销当前令牌，重复调用幂等
func (ac *AuthController) Logout(c *gin.Context) {
	token := c.Query("token")
	if auth := c.GetHeader("Authorization"); len(auth) > 7 && auth[:7] == "Bearer " {
		token = auth[7:]
	}

	if err := ac.tokenRepo.Revoke(c.Request.Context(), token); err != nil {
		response.ServerError(c, err)
		return
	}
	response.Data(c, gin.H{"revoked": true})
}

// VerifyIdentity 通过 Roblox 公开 API 验证用户名并绑定到账号
//
// 绑定前置于签发令牌：请求体带 email 定位账号，验证成功后
// 覆盖写入 roblox_username / roblox_user_id / avatar_url
func (ac *AuthController) VerifyIdentity(c *gin.Context) {
	body, err := requests.ValidateVerifyIdentity(c)
	if err != nil {
		response.BadRequest(c, err, err.Error())
		return
	}

	u, err := ac.userRepo.FindOrCreateByEmail(c.Request.Context(), body.Email, body.Nickname)
	if err != nil {
		response.ServerError(c, err)
		return
	}

	identity, err := ac.roblox.Verify(c.Request.Context(), body.RobloxUsername)
	if err != nil {
		switch {
		case errors.Is(err, roblox.ErrNotFound):
			response.Abort404(c, "Roblox 用户不存在")
		case errors.Is(err, roblox.ErrUpstream):
			response.Abort502(c)
		default:
			response.ServerError(c, err)
		}
		return
	}

	if err := ac.userRepo.BindIdentity(c.Request.Context(), u.ID, identity); err != nil {
		response.ServerError(c, err)
		return
	}

	logger.InfoString("auth", "verify-identity", "user "+u.ID+" linked roblox "+identity.Username)
	response.Data(c, gin.H{
		"linked":   true,
		"identity": identity,
	})
}
