package requests

import (
	"github.com/gin-gonic/gin"
	"github.com/thedevsaddam/govalidator"
)

// RateRequest 商品评分请求
type RateRequest struct {
	Score   int    `json:"score" valid:"score"`
	Comment string `json:"comment" valid:"comment"`
}

// ValidateRate 验证评分请求
func ValidateRate(c *gin.Context) (RateRequest, error) {
	rules := govalidator.MapData{
		"score":   []string{"required", "numeric_between:1,5"},
		"comment": []string{"max:500"},
	}
	messages := govalidator.MapData{
		"score": []string{
			"required:评分不能为空",
			"numeric_between:评分必须在 1 到 5 之间",
		},
		"comment": []string{
			"max:评论长度不能超过 500 个字符",
		},
	}
	return ValidateRequest[RateRequest](c, rules, messages)
}
