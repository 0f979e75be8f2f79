package wechat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wechatpay-apiv3/wechatpay-go/core"
	"github.com/wechatpay-apiv3/wechatpay-go/core/option"
	"github.com/wechatpay-apiv3/wechatpay-go/services/payments/jsapi"
	wxutils "github.com/wechatpay-apiv3/wechatpay-go/utils"

	"bloxforge/app/models/payment"
	"bloxforge/config"
	"bloxforge/pkg/logger"
	"bloxforge/pkg/payment/types"
	"bloxforge/pkg/payment/utils"
)

// WechatPayService 微信支付服务
type WechatPayService struct {
	client     *core.Client
	appID      string
	mchID      string
	notifyURL  string
	repository types.Repository
}

// NewWechatPayService 创建微信支付服务
func NewWechatPayService(config config.WechatConfig, repo types.Repository) (*WechatPayService, error) {
	mchPrivateKey, err := wxutils.LoadPrivateKey(config.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("load merchant private key error: %w", err)
	}

	opts := []core.ClientOption{
		option.WithWechatPayAutoAuthCipher(
			config.MchID,
			config.SerialNo,
			mchPrivateKey,
			config.APIv3Key,
		),
	}

	client, err := core.NewClient(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("create wechat pay client error: %w", err)
	}

	return &WechatPayService{
		client:     client,
		appID:      config.AppID,
		mchID:      config.MchID,
		notifyURL:  config.NotifyURL,
		repository: repo,
	}, nil
}

// CreatePayment 创建充值订单并发起微信预支付
func (s *WechatPayService) CreatePayment(ctx context.Context, req *types.Request) (*types.Result, error) {
	orderNo := utils.GenerateOrderNo()
	expireAt := time.Now().Add(30 * time.Minute)

	p := &payment.Payment{
		OrderNo:  orderNo,
		UserID:   req.UserID,
		Credits:  req.Credits,
		Provider: string(types.ProviderWechat),
		Amount:   req.Amount,
		Status:   string(payment.StatusPending),
		ExpireAt: &expireAt,
	}

	if err := s.repository.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create payment record error: %w", err)
	}

	svc := jsapi.JsapiApiService{Client: s.client}
	prepayResp, result, err := svc.Prepay(ctx, jsapi.PrepayRequest{
		Appid:       core.String(s.appID),
		Mchid:       core.String(s.mchID),
		Description: core.String(req.Description),
		OutTradeNo:  core.String(orderNo),
		NotifyUrl:   core.String(s.notifyURL),
		Amount: &jsapi.Amount{
			Total:    core.Int64(req.Amount),
			Currency: core.String("CNY"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create wechat payment error: %w", err)
	}
	if result != nil && result.Response.StatusCode != 200 {
		return nil, fmt.Errorf("create wechat payment failed with status code: %d", result.Response.StatusCode)
	}

	timestamp := time.Now().Unix()
	nonceStr := utils.GenerateNonceStr()
	packageStr := fmt.Sprintf("prepay_id=%s", *prepayResp.PrepayId)

	return &types.Result{
		OrderNo:  orderNo,
		PrepayID: *prepayResp.PrepayId,
		ExtraData: map[string]interface{}{
			"appId":     s.appID,
			"timeStamp": timestamp,
			"nonceStr":  nonceStr,
			"package":   packageStr,
			"signType":  "RSA",
		},
		ExpireAt: expireAt,
	}, nil
}

// QueryPayment 查询订单
func (s *WechatPayService) QueryPayment(ctx context.Context, orderNo string) (*payment.Payment, error) {
	return s.repository.GetByOrderNo(ctx, orderNo)
}

// wechatNotify 通知体里我们关心的字段
type wechatNotify struct {
	OutTradeNo string `json:"out_trade_no"`
}

// HandleNotify 处理微信支付结果通知
// 不信任通知内容本身，收到后向微信侧查单确认，成功才入账
func (s *WechatPayService) HandleNotify(ctx context.Context, data []byte) error {
	var noti wechatNotify
	if err := json.Unmarshal(data, &noti); err != nil {
		return fmt.Errorf("parse wechat notification error: %w", err)
	}
	if noti.OutTradeNo == "" {
		return fmt.Errorf("wechat notification missing out_trade_no")
	}

	svc := jsapi.JsapiApiService{Client: s.client}
	resp, _, err := svc.QueryOrderByOutTradeNo(ctx, jsapi.QueryOrderByOutTradeNoRequest{
		OutTradeNo: core.String(noti.OutTradeNo),
		Mchid:      core.String(s.mchID),
	})
	if err != nil {
		return fmt.Errorf("query wechat order error: %w", err)
	}

	if resp.TradeState == nil || *resp.TradeState != "SUCCESS" {
		logger.InfoString("wechat", "notify", fmt.Sprintf("order %s not paid yet, skipped", noti.OutTradeNo))
		return nil
	}

	transactionID := ""
	if resp.TransactionId != nil {
		transactionID = *resp.TransactionId
	}
	return s.repository.MarkPaid(ctx, noti.OutTradeNo, transactionID)
}
