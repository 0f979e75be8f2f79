// Package user 存放用户 Model 相关逻辑
package user

import (
	"bloxforge/app/models"
)

// User 用户模型
// Credits 为当前可用积分余额，只允许通过 LedgerRepository 修改，
// 业务代码不得直接写该字段（对账不变量：余额 == 流水求和）
type User struct {
	ID       string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email    string `gorm:"unique;type:varchar(255)" json:"email"`
	Nickname string `gorm:"type:varchar(50)" json:"nickname"`
	Credits  int64  `gorm:"default:0;index" json:"credits"` // 用户积分余额

	// 绑定的 Roblox 身份，验证成功后写入，可重复验证覆盖
	RobloxUsername string `gorm:"type:varchar(50);index" json:"roblox_username"`
	RobloxUserID   int64  `gorm:"index;default:0" json:"roblox_user_id"`
	AvatarURL      string `gorm:"type:text" json:"avatar_url"`

	models.CommonTimestampsField
}

// TableName 表名
func (User) TableName() string {
	return "users"
}

// IdentityLinked 是否已绑定 Roblox 身份
func (u *User) IdentityLinked() bool {
	return u.RobloxUserID != 0
}
