// Package token 插件会话令牌模型
package token

import (
	"time"

	"bloxforge/app/models"
)

// 令牌固定 30 天有效期
const Lifetime = 30 * 24 * time.Hour

// PluginToken 插件令牌模型
// Token 为不透明随机串，按值查找。吊销即删除记录，
// 不做缓存，保证吊销后的下一次请求立即失效。
// 同一用户允许持有多个并发令牌（多设备）
type PluginToken struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Token     string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	UserID    string    `gorm:"type:varchar(36);index;not null" json:"user_id"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`

	models.CommonTimestampsField
}

// TableName 表名
func (PluginToken) TableName() string {
	return "plugin_tokens"
}

// Expired 判断令牌是否已过期
func (t *PluginToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
