package repositories

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bloxforge/app/models/market"
	"bloxforge/pkg/database"
)

var (
	// ErrAlreadyPurchased 重复购买
	ErrAlreadyPurchased = errors.New("item already purchased")
	// ErrNotPurchased 未购买，无评分资格
	ErrNotPurchased = errors.New("item not purchased")
)

// MarketRepository 商城仓库
type MarketRepository struct {
	db *gorm.DB
}

// NewMarketRepository 创建仓库实例
func NewMarketRepository() *MarketRepository {
	return &MarketRepository{
		db: database.DB,
	}
}

// ListItems 分页查询已上架物品
func (r *MarketRepository) ListItems(ctx context.Context, page, pageSize int) ([]market.Item, int64, error) {
	var items []market.Item
	var total int64

	query := r.db.WithContext(ctx).Model(&market.Item{}).Where("approved = ?", true)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("download_count DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// GetItem 查询单个已上架物品
func (r *MarketRepository) GetItem(ctx context.Context, itemID uint64) (*market.Item, error) {
	var item market.Item
	err := r.db.WithContext(ctx).
		Where("id = ? AND approved = ?", itemID, true).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Purchase 购买物品
// 扣费、购买记录、spent 流水、下载数自增在同一事务内完成：
// 要么全部落库，要么整体回滚，不会出现已扣费却无购买记录的状态。
// (user, item) 唯一索引兜底并发下的重复购买
func (r *MarketRepository) Purchase(ctx context.Context, userID string, itemID uint64) (*market.Purchase, error) {
	var purchase *market.Purchase

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item market.Item
		if err := tx.Where("id = ? AND approved = ?", itemID, true).First(&item).Error; err != nil {
			return err
		}

		// 已购检查
		var count int64
		if err := tx.Model(&market.Purchase{}).
			Where("user_id = ? AND item_id = ?", userID, itemID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyPurchased
		}

		// 条件扣费，与任务计费共用同一套串行化约束
		if item.Price > 0 {
			if err := deductTx(tx, userID, item.Price, "", fmt.Sprintf("marketplace:item:%d", itemID)); err != nil {
				return err
			}
		}

		purchase = &market.Purchase{
			UserID: userID,
			ItemID: itemID,
			Price:  item.Price,
		}
		if err := tx.Create(purchase).Error; err != nil {
			return err
		}

		// 下载数自增
		return tx.Model(&market.Item{}).
			Where("id = ?", itemID).
			Update("download_count", gorm.Expr("download_count + 1")).Error
	})

	if err != nil {
		// 并发双写时落败方在唯一索引上失败、事务整体回滚，
		// 以事后已购状态归一为重复购买错误
		if err != ErrAlreadyPurchased && err != ErrInsufficientCredits {
			if purchased, checkErr := r.Purchased(ctx, userID, itemID); checkErr == nil && purchased {
				return nil, ErrAlreadyPurchased
			}
		}
		return nil, err
	}
	return purchase, nil
}

// Rate 评分，仅限已购用户；同一 (user, item) 只保留一条，可覆盖
// 每次写入后全量重算该物品的平均分（一位小数）和评分数，
// 不做增量滑动平均，避免漂移
func (r *MarketRepository) Rate(ctx context.Context, userID string, itemID uint64, score int, comment string) (*market.Item, error) {
	var item market.Item

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 购买记录是评分资格的唯一凭证
		var count int64
		if err := tx.Model(&market.Purchase{}).
			Where("user_id = ? AND item_id = ?", userID, itemID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotPurchased
		}

		// upsert：同用户重复评分走覆盖
		rating := market.Rating{
			UserID:  userID,
			ItemID:  itemID,
			Score:   score,
			Comment: comment,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "item_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "comment", "updated_at"}),
		}).Create(&rating).Error; err != nil {
			return err
		}

		// 全量重算聚合
		var agg struct {
			Avg   float64
			Count int64
		}
		if err := tx.Model(&market.Rating{}).
			Where("item_id = ?", itemID).
			Select("COALESCE(AVG(score), 0) AS avg, COUNT(*) AS count").
			Scan(&agg).Error; err != nil {
			return err
		}

		rounded := math.Round(agg.Avg*10) / 10
		if err := tx.Model(&market.Item{}).
			Where("id = ?", itemID).
			Updates(map[string]interface{}{
				"rating":       rounded,
				"rating_count": agg.Count,
			}).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", itemID).First(&item).Error
	})

	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Purchased 查询用户是否已购买该物品
func (r *MarketRepository) Purchased(ctx context.Context, userID string, itemID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&market.Purchase{}).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Count(&count).Error
	return count > 0, err
}
