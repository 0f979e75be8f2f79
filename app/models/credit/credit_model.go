// Package credit 积分流水模型
package credit

import (
	"bloxforge/app/models"
)

// Kind 流水类型
type Kind string

const (
	KindEarned   Kind = "earned"   // 充值获得
	KindSpent    Kind = "spent"    // 任务/购买消耗
	KindAwarded  Kind = "awarded"  // 系统奖励（每日签到等）
	KindRefunded Kind = "refunded" // 退还
)

// Transaction 积分流水记录，只增不改不删
// 任一时刻某用户全部流水的 Amount 之和必须等于其当前余额
type Transaction struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID string `gorm:"type:varchar(36);index;not null" json:"user_id"`
	Amount int64  `gorm:"not null" json:"amount"` // 带符号，消耗为负
	Kind   Kind   `gorm:"type:varchar(16);index" json:"kind"`
	Reason string `gorm:"type:varchar(255)" json:"reason"`
	TaskID string `gorm:"type:varchar(36);index;default:null" json:"task_id,omitempty"` // 关联的计费任务

	models.CommonTimestampsField
}

// TableName 表名
func (Transaction) TableName() string {
	return "credit_transactions"
}
