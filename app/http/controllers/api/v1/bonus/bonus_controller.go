// Package bonus 每日登录奖励
package bonus

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bloxforge/app/repositories"
	"bloxforge/pkg/auth"
	"bloxforge/pkg/response"
)

type BonusController struct {
	dailyRepo *repositories.DailyRepository
}

// NewBonusController 创建奖励控制器
func NewBonusController() *BonusController {
	return &BonusController{
		dailyRepo: repositories.NewDailyRepository(),
	}
}

// ClaimDaily 领取每日奖励
// 同一日历日重复领取幂等返回 awarded=false
func (bc *BonusController) ClaimDaily(c *gin.Context) {
	result, err := bc.dailyRepo.Claim(c.Request.Context(), auth.CurrentUID(c))
	if err != nil {
		response.ServerError(c, err)
		return
	}
	response.Data(c, result)
}

// Status 查询当前连续登录状态
func (bc *BonusController) Status(c *gin.Context) {
	record, err := bc.dailyRepo.Record(c.Request.Context(), auth.CurrentUID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 从未签到
			response.Data(c, gin.H{"streak": 0})
			return
		}
		response.ServerError(c, err)
		return
	}
	response.Data(c, record)
}
