// Package payment 积分充值
package payment

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bloxforge/app/requests"
	"bloxforge/app/repositories"
	appconfig "bloxforge/config"
	"bloxforge/pkg/auth"
	"bloxforge/pkg/config"
	"bloxforge/pkg/logger"
	"bloxforge/pkg/payment"
	"bloxforge/pkg/response"
)

type PaymentController struct {
	paymentRepo *repositories.PaymentRepository
}

// NewPaymentController 创建充值控制器
func NewPaymentController() *PaymentController {
	return &PaymentController{
		paymentRepo: repositories.NewPaymentRepository(),
	}
}

// CreateTopup 创建充值订单
//
// 套餐价格以服务端配置为准，客户端只选套餐名，杜绝改价
func (pc *PaymentController) CreateTopup(c *gin.Context) {
	req, err := requests.ValidateTopup(c)
	if err != nil {
		response.BadRequest(c, err, err.Error())
		return
	}

	credits := config.GetInt64("payment.packs." + req.Pack + ".credits")
	amount := config.GetInt64("payment.packs." + req.Pack + ".amount")
	if credits <= 0 || amount <= 0 {
		response.Abort400(c, "无效的充值套餐")
		return
	}

	service, err := pc.buildService(payment.Provider(req.Provider))
	if err != nil {
		response.ServerError(c, err)
		return
	}

	result, err := service.CreatePayment(c.Request.Context(), &payment.Request{
		UserID:      auth.CurrentUID(c),
		Credits:     credits,
		Amount:      amount,
		Provider:    payment.Provider(req.Provider),
		Description: "BloxForge 积分充值",
	})
	if err != nil {
		logger.ErrorString("充值", "下单失败", err.Error())
		response.Abort502(c, "支付服务暂时不可用")
		return
	}

	response.Created(c, result)
}

// ShowOrder 查询充值订单状态
func (pc *PaymentController) ShowOrder(c *gin.Context) {
	order, err := pc.paymentRepo.GetByOrderNo(c.Request.Context(), c.Param("order_no"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Abort404(c)
			return
		}
		response.ServerError(c, err)
		return
	}
	if order.UserID != auth.CurrentUID(c) {
		response.Abort404(c)
		return
	}
	response.Data(c, order)
}

// AlipayNotify 支付宝异步通知
// 支付宝要求成功时返回纯文本 success
func (pc *PaymentController) AlipayNotify(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(400, "fail")
		return
	}

	service, err := pc.buildService(payment.ProviderAlipay)
	if err != nil {
		logger.ErrorString("充值", "alipay-notify", err.Error())
		c.String(500, "fail")
		return
	}

	if err := service.HandleNotify(c.Request.Context(), body); err != nil {
		logger.ErrorString("充值", "alipay-notify", err.Error())
		c.String(500, "fail")
		return
	}
	c.String(200, "success")
}

// WechatNotify 微信支付异步通知
func (pc *PaymentController) WechatNotify(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(400, gin.H{"code": "FAIL", "message": "invalid body"})
		return
	}

	service, err := pc.buildService(payment.ProviderWechat)
	if err != nil {
		logger.ErrorString("充值", "wechat-notify", err.Error())
		c.JSON(500, gin.H{"code": "FAIL", "message": "internal error"})
		return
	}

	if err := service.HandleNotify(c.Request.Context(), body); err != nil {
		logger.ErrorString("充值", "wechat-notify", err.Error())
		c.JSON(500, gin.H{"code": "FAIL", "message": "handle notify error"})
		return
	}
	c.JSON(200, gin.H{"code": "SUCCESS", "message": "成功"})
}

// buildService 按提供商构造支付服务
func (pc *PaymentController) buildService(provider payment.Provider) (payment.Service, error) {
	switch provider {
	case payment.ProviderAlipay:
		return payment.NewPaymentService(provider, pc.paymentRepo, appconfig.LoadAlipayConfig())
	case payment.ProviderWechat:
		return payment.NewPaymentService(provider, pc.paymentRepo, appconfig.LoadWechatConfig())
	default:
		return nil, errors.New("unsupported payment provider")
	}
}
