// Package project 用户项目模型
package project

import (
	"bloxforge/app/models"
)

// Project 插件端的设计项目
// 内容整体存为 JSON 文档，结构由客户端维护
type Project struct {
	ID     string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID string `gorm:"type:varchar(36);index;not null" json:"user_id"`
	Name   string `gorm:"type:varchar(100)" json:"name"`
	Data   string `gorm:"type:text" json:"data,omitempty"` // 场景/构建数据

	models.CommonTimestampsField
	models.SoftDeletes
}

// TableName 表名
func (Project) TableName() string {
	return "projects"
}
