// Package market 商城物品、购买与评分模型
package market

import (
	"bloxforge/app/models"
)

// Item 商城物品
// DownloadCount 与评分聚合字段只由购买/评分流程更新，
// 上架审核由管理后台维护，不在本服务范围内
type Item struct {
	ID            uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string  `gorm:"type:varchar(100)" json:"name"`
	Description   string  `gorm:"type:text" json:"description"`
	Price         int64   `gorm:"not null" json:"price"` // 积分价格
	Approved      bool    `gorm:"default:false;index" json:"approved"`
	DownloadCount int64   `gorm:"default:0" json:"download_count"`
	Rating        float64 `gorm:"default:0" json:"rating"` // 平均分，保留一位小数
	RatingCount   int64   `gorm:"default:0" json:"rating_count"`

	models.CommonTimestampsField
}

// TableName 表名
func (Item) TableName() string {
	return "marketplace_items"
}

// Purchase 购买记录，(user, item) 唯一
// 记录一旦存在即不可变，是评分资格的唯一凭证
type Purchase struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID string `gorm:"type:varchar(36);uniqueIndex:idx_user_item;not null" json:"user_id"`
	ItemID uint64 `gorm:"uniqueIndex:idx_user_item;not null" json:"item_id"`
	Price  int64  `gorm:"not null" json:"price"` // 成交时的价格

	models.CommonTimestampsField
}

// TableName 表名
func (Purchase) TableName() string {
	return "marketplace_purchases"
}

// Rating 评分记录，(user, item) 唯一，可覆盖更新
type Rating struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID  string `gorm:"type:varchar(36);uniqueIndex:idx_rating_user_item;not null" json:"user_id"`
	ItemID  uint64 `gorm:"uniqueIndex:idx_rating_user_item;not null" json:"item_id"`
	Score   int    `gorm:"not null" json:"score"` // 1-5
	Comment string `gorm:"type:text" json:"comment"`

	models.CommonTimestampsField
}

// TableName 表名
func (Rating) TableName() string {
	return "marketplace_ratings"
}
