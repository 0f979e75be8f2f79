package alipay

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/smartwalle/alipay/v3"

	"bloxforge/app/models/payment"
	"bloxforge/config"
	"bloxforge/pkg/logger"
	"bloxforge/pkg/payment/types"
	"bloxforge/pkg/payment/utils"
)

// AlipayService 支付宝支付服务
type AlipayService struct {
	client     *alipay.Client
	appID      string
	notifyURL  string
	returnURL  string
	repository types.Repository
}

// NewAlipayService 创建支付宝支付服务
func NewAlipayService(config config.AlipayConfig, repo types.Repository) (*AlipayService, error) {
	client, err := alipay.New(config.AppID, config.PrivateKey, config.IsProduction)
	if err != nil {
		return nil, fmt.Errorf("create alipay client error: %w", err)
	}

	if err := client.LoadAliPayPublicKey(config.PublicKey); err != nil {
		return nil, fmt.Errorf("load alipay public key error: %w", err)
	}

	return &AlipayService{
		client:     client,
		appID:      config.AppID,
		notifyURL:  config.NotifyURL,
		returnURL:  config.ReturnURL,
		repository: repo,
	}, nil
}

// CreatePayment 创建充值订单并生成支付页链接
func (s *AlipayService) CreatePayment(ctx context.Context, req *types.Request) (*types.Result, error) {
	orderNo := utils.GenerateOrderNo()
	expireAt := time.Now().Add(30 * time.Minute)

	p := &payment.Payment{
		OrderNo:  orderNo,
		UserID:   req.UserID,
		Credits:  req.Credits,
		Provider: string(types.ProviderAlipay),
		Amount:   req.Amount,
		Status:   string(payment.StatusPending),
		ExpireAt: &expireAt,
	}

	if err := s.repository.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create payment record error: %w", err)
	}

	trade := alipay.TradePagePay{}
	trade.NotifyURL = s.notifyURL
	trade.ReturnURL = req.ReturnURL
	if trade.ReturnURL == "" {
		trade.ReturnURL = s.returnURL
	}
	trade.Subject = req.Description
	trade.OutTradeNo = orderNo
	trade.TotalAmount = fmt.Sprintf("%.2f", float64(req.Amount)/100)
	trade.ProductCode = "FAST_INSTANT_TRADE_PAY"

	payURL, err := s.client.TradePagePay(trade)
	if err != nil {
		return nil, fmt.Errorf("create alipay payment error: %w", err)
	}

	return &types.Result{
		OrderNo:    orderNo,
		PaymentURL: payURL.String(),
		ExpireAt:   expireAt,
	}, nil
}

// QueryPayment 查询订单
func (s *AlipayService) QueryPayment(ctx context.Context, orderNo string) (*payment.Payment, error) {
	return s.repository.GetByOrderNo(ctx, orderNo)
}

// HandleNotify 处理支付宝异步通知
// 验签通过且交易成功时把订单置为已支付并入账
func (s *AlipayService) HandleNotify(ctx context.Context, data []byte) error {
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return fmt.Errorf("parse alipay notification error: %w", err)
	}

	noti, err := s.client.DecodeNotification(values)
	if err != nil {
		return fmt.Errorf("decode alipay notification error: %w", err)
	}

	if noti.TradeStatus != alipay.TradeStatusSuccess {
		logger.InfoString("alipay", "notify", fmt.Sprintf("order %s status %s, skipped", noti.OutTradeNo, noti.TradeStatus))
		return nil
	}

	return s.repository.MarkPaid(ctx, noti.OutTradeNo, noti.TradeNo)
}
