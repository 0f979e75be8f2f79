// Package payment 积分充值的支付层
//
// 订单创建走具体提供商，支付结果通过异步通知回到 HandleNotify，
// 确认成功后由仓储统一完成「订单置 paid + 账本入账」
package payment

import (
	"bloxforge/pkg/payment/factory"
	"bloxforge/pkg/payment/types"
)

// 对外暴露的类型别名，调用方无需直接依赖 types 子包
type (
	Provider = types.Provider
	Request  = types.Request
	Result   = types.Result
	Service  = types.Service
)

const (
	ProviderWechat = types.ProviderWechat
	ProviderAlipay = types.ProviderAlipay
)

// NewPaymentService 创建支付服务
var NewPaymentService = factory.NewPaymentService
