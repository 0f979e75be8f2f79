package requests

import (
	"github.com/gin-gonic/gin"
	"github.com/thedevsaddam/govalidator"
)

// TopupRequest 积分充值请求
type TopupRequest struct {
	Pack     string `json:"pack" valid:"pack"`
	Provider string `json:"provider" valid:"provider"`
}

// ValidateTopup 验证充值请求
func ValidateTopup(c *gin.Context) (TopupRequest, error) {
	rules := govalidator.MapData{
		"pack":     []string{"required", "in:starter,plus,studio"},
		"provider": []string{"required", "in:wechat,alipay"},
	}
	messages := govalidator.MapData{
		"pack": []string{
			"required:充值套餐不能为空",
			"in:充值套餐必须是 starter、plus 或 studio",
		},
		"provider": []string{
			"required:支付方式不能为空",
			"in:支付方式必须是 wechat 或 alipay",
		},
	}
	return ValidateRequest[TopupRequest](c, rules, messages)
}
