package types

import (
	"context"
	"time"

	"bloxforge/app/models/payment"
)

// Provider 支付提供商类型
type Provider string

const (
	ProviderWechat Provider = "wechat"
	ProviderAlipay Provider = "alipay"
)

// Request 充值请求参数
type Request struct {
	UserID      string   `json:"user_id"`
	Credits     int64    `json:"credits"` // 到账积分数
	Amount      int64    `json:"amount"`  // 支付金额，单位分
	Provider    Provider `json:"provider"`
	ReturnURL   string   `json:"return_url"`
	NotifyURL   string   `json:"notify_url"`
	Description string   `json:"description"`
}

// Result 下单结果
type Result struct {
	OrderNo    string                 `json:"order_no"`
	PaymentURL string                 `json:"payment_url,omitempty"`
	PrepayID   string                 `json:"prepay_id,omitempty"`
	ExtraData  map[string]interface{} `json:"extra_data,omitempty"`
	ExpireAt   time.Time              `json:"expire_at"`
}

// Service 支付服务接口
type Service interface {
	CreatePayment(ctx context.Context, req *Request) (*Result, error)
	QueryPayment(ctx context.Context, orderNo string) (*payment.Payment, error)
	HandleNotify(ctx context.Context, data []byte) error
}

// Repository 支付仓储接口
// MarkPaid 负责把订单置为已支付并给账本入账，要求幂等
type Repository interface {
	Create(ctx context.Context, payment *payment.Payment) error
	GetByOrderNo(ctx context.Context, orderNo string) (*payment.Payment, error)
	MarkPaid(ctx context.Context, orderNo, transactionID string) error
}
