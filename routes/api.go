package routes

import (
	"github.com/gin-gonic/gin"

	authController "bloxforge/app/http/controllers/api/v1/auth"
	"bloxforge/app/http/controllers/api/v1/bonus"
	"bloxforge/app/http/controllers/api/v1/credits"
	"bloxforge/app/http/controllers/api/v1/exports"
	"bloxforge/app/http/controllers/api/v1/market"
	"bloxforge/app/http/controllers/api/v1/payment"
	"bloxforge/app/http/controllers/api/v1/projects"
	"bloxforge/app/http/controllers/api/v1/realtime"
	"bloxforge/app/http/middlewares"
)

// 路由限流配置
const (
	// 全局限流：每小时每 IP 30000 请求
	GlobalRateLimit = "30000-H"
	// 登录与身份验证限流：每小时每 IP 60 请求
	AuthRateLimit = "60-H"
	// 计费类写操作限流：每分钟每 IP 120 请求
	MeteredRateLimit = "120-M"
	// 查询类限流：每分钟每 IP 300 请求
	QueryRateLimit = "300-M"
)

// RegisterAPIRoutes 注册所有 API 路由
func RegisterAPIRoutes(r *gin.Engine) {
	v1 := r.Group("/v1")

	v1.Use(
		middlewares.Recovery(),
		middlewares.SecurityHeaders(),
		middlewares.LimitIP(GlobalRateLimit),
		middlewares.Cors(),
	)

	// 会话与身份
	authGroup := v1.Group("/auth")
	{
		ac := authController.NewAuthController()

		authGroup.POST("/login", middlewares.LimitIP(AuthRateLimit), ac.Login)
		authGroup.POST("/verify-identity", middlewares.LimitIP(AuthRateLimit), ac.VerifyIdentity)
		authGroup.DELETE("/logout", ac.Logout)
		authGroup.GET("/verify-session", middlewares.AuthPluginToken(), ac.VerifySession)
	}

	// 支付回调不走令牌认证，第三方服务器直连
	pc := payment.NewPaymentController()
	v1.POST("/payments/notify/alipay", pc.AlipayNotify)
	v1.POST("/payments/notify/wechat", pc.WechatNotify)

	// 认证后的插件接口
	authed := v1.Group("")
	authed.Use(middlewares.AuthPluginToken())
	{
		cc := credits.NewCreditsController()
		authed.GET("/credits/balance", middlewares.LimitIP(QueryRateLimit), cc.Balance)
		authed.GET("/credits/sufficient", middlewares.LimitIP(QueryRateLimit), cc.Sufficient)
		authed.POST("/credits/deduct", middlewares.LimitIP(MeteredRateLimit), cc.Deduct)
		authed.GET("/credits/transactions", middlewares.LimitIP(QueryRateLimit), cc.Transactions)

		authed.GET("/tasks", middlewares.LimitIP(QueryRateLimit), cc.ListTasks)
		authed.GET("/tasks/:id", middlewares.LimitIP(QueryRateLimit), cc.ShowTask)
		authed.POST("/tasks/:id/complete", cc.CompleteTask)
		authed.POST("/tasks/:id/fail", cc.FailTask)

		bc := bonus.NewBonusController()
		authed.POST("/bonus/daily", bc.ClaimDaily)
		authed.GET("/bonus/status", bc.Status)

		prc := projects.NewProjectsController()
		authed.GET("/projects", prc.Index)
		authed.GET("/projects/:id", prc.Show)
		authed.POST("/projects", prc.Store)
		authed.PUT("/projects/:id", prc.Update)
		authed.DELETE("/projects/:id", prc.Delete)

		ec := exports.NewExportsController()
		authed.POST("/exports", middlewares.LimitIP(MeteredRateLimit), ec.Store)
		authed.GET("/exports/:id/status", middlewares.LimitIP(QueryRateLimit), ec.Status)
		authed.GET("/exports", middlewares.LimitIP(QueryRateLimit), ec.Index)

		mc := market.NewMarketController()
		authed.GET("/market/items", middlewares.LimitIP(QueryRateLimit), mc.Index)
		authed.GET("/market/items/:id", middlewares.LimitIP(QueryRateLimit), mc.Show)
		authed.POST("/market/items/:id/purchase", middlewares.LimitIP(MeteredRateLimit), mc.Purchase)
		authed.POST("/market/items/:id/rate", mc.Rate)

		authed.POST("/payments/topup", middlewares.LimitIP(MeteredRateLimit), pc.CreateTopup)
		authed.GET("/payments/orders/:order_no", pc.ShowOrder)

		rc := realtime.NewRealtimeController()
		authed.GET("/realtime", rc.Serve)
	}
}
