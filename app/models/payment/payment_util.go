package payment

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// Provider 支付提供商
type Provider string

const (
	ProviderWechat Provider = "wechat"
	ProviderAlipay Provider = "alipay"
)

// Status 订单状态
// pending -> paid（通知确认后入账）或 canceled（超时清理）
type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusCanceled Status = "canceled"
)

// JSON 供应商回传的附加数据，整体存 JSON 列
type JSON map[string]interface{}

// Value 实现 driver.Valuer 接口
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan 实现 sql.Scanner 接口
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if str, ok := value.(string); ok {
			bytes = []byte(str)
		} else {
			return errors.New("invalid scan source")
		}
	}
	return json.Unmarshal(bytes, j)
}

// Validate 下单前的基本校验
func (p *Payment) Validate() error {
	switch {
	case p.UserID == "":
		return errors.New("user_id is required")
	case p.Credits <= 0:
		return errors.New("credits must be greater than 0")
	case p.Amount <= 0:
		return errors.New("amount must be greater than 0")
	case p.Provider != string(ProviderWechat) && p.Provider != string(ProviderAlipay):
		return errors.New("invalid payment provider")
	}
	return nil
}

// Paid 订单是否已支付
func (p *Payment) Paid() bool {
	return p.Status == string(StatusPaid)
}
