// Package daily 每日签到记录模型
package daily

import (
	"bloxforge/app/models"
)

// LoginRecord 每日签到记录，每用户一行
// LastLoginDate 存的是日历日（yyyy-mm-dd，应用时区），
// 作为并发签到的单写者屏障：同一天的第二次领取在条件更新处落败
type LoginRecord struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        string `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	LastLoginDate string `gorm:"type:varchar(10);not null" json:"last_login_date"`
	Streak        int    `gorm:"default:0" json:"streak"` // 当前连续签到天数

	models.CommonTimestampsField
}

// TableName 表名
func (LoginRecord) TableName() string {
	return "daily_login_records"
}
