// Package task 计费任务模型
package task

import (
	"time"

	"bloxforge/app/models"
)

// Status 任务状态
type Status string

const (
	StatusProcessing Status = "processing" // 已创建，等待外部协作方回报结果
	StatusCompleted  Status = "completed"  // 终态
	StatusFailed     Status = "failed"     // 终态
)

// 任务类型标签
const (
	TypeChatMessage Type = "chat_message"
	TypeGenerate    Type = "generate"
	TypeExport      Type = "export"
)

// Type 任务类型
type Type string

// Task 一次计费工作单元
// 状态机：processing -> completed | failed，终态迁移只发生一次。
// 任务记录永不删除，作为审计轨迹保留
type Task struct {
	ID              string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID          string  `gorm:"type:varchar(36);index;not null" json:"user_id"`
	Type            Type    `gorm:"type:varchar(32);index" json:"type"`
	Status          Status  `gorm:"type:varchar(16);index" json:"status"`
	CreditsCost     int64   `gorm:"not null" json:"credits_cost"`
	CreditsDeducted bool    `gorm:"default:false" json:"credits_deducted"`
	Payload         Payload `gorm:"type:json" json:"payload,omitempty"` // 客户端输入
	Result          string  `gorm:"type:text" json:"result,omitempty"`  // 产出（如导出文件 URL）
	ErrorMessage    string  `gorm:"type:varchar(255)" json:"error_message,omitempty"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`

	models.CommonTimestampsField
}

// TableName 表名
func (Task) TableName() string {
	return "tasks"
}

// Terminal 是否已处于终态
func (t *Task) Terminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusFailed
}
