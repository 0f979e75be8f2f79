package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bloxforge/app/models/credit"
	"bloxforge/app/models/user"
	"bloxforge/pkg/database"
)

var (
	// ErrInsufficientCredits 余额不足，条件更新未命中
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// LedgerRepository 积分账本仓库
// 余额的唯一修改入口。扣费通过单条条件更新完成
// （credits >= amount 时才减），避免读-改-写下的丢失更新
type LedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository 创建仓库实例
func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{
		db: database.DB,
	}
}

// Balance 查询当前余额
func (r *LedgerRepository) Balance(ctx context.Context, userID string) (int64, error) {
	var u user.User
	err := r.db.WithContext(ctx).Select("credits").Where("id = ?", userID).First(&u).Error
	if err != nil {
		return 0, err
	}
	return u.Credits, nil
}

// SufficientFor 判断余额是否足够
func (r *LedgerRepository) SufficientFor(ctx context.Context, userID string, amount int64) (bool, error) {
	balance, err := r.Balance(ctx, userID)
	if err != nil {
		return false, err
	}
	return balance >= amount, nil
}

// Deduct 扣减积分并记一条 spent 流水，关联到计费任务
// 并发扣费的串行化点在条件更新上：两笔同时扣费之和超过余额时，
// 至多一笔命中，其余返回 ErrInsufficientCredits
func (r *LedgerRepository) Deduct(ctx context.Context, userID string, amount int64, taskID string, reason string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deductTx(tx, userID, amount, taskID, reason)
	})
}

// deductTx 在给定事务内执行条件扣费 + 流水插入
// 供购买流程复用，保证扣费和购买记录同一事务落库
func deductTx(tx *gorm.DB, userID string, amount int64, taskID string, reason string) error {
	if amount <= 0 {
		return errors.New("deduct amount must be positive")
	}

	// 单条条件更新：余额足够时才减
	result := tx.Model(&user.User{}).
		Where("id = ? AND credits >= ?", userID, amount).
		Update("credits", gorm.Expr("credits - ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientCredits
	}

	// 流水为负数表示消耗
	trx := credit.Transaction{
		UserID: userID,
		Amount: -amount,
		Kind:   credit.KindSpent,
		Reason: reason,
		TaskID: taskID,
	}
	return tx.Create(&trx).Error
}

// Credit 增加积分并记流水，用于充值到账、系统奖励和退还
func (r *LedgerRepository) Credit(ctx context.Context, userID string, amount int64, kind credit.Kind, reason string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return creditTx(tx, userID, amount, kind, reason)
	})
}

// creditTx 在给定事务内执行加款 + 流水插入
func creditTx(tx *gorm.DB, userID string, amount int64, kind credit.Kind, reason string) error {
	if amount <= 0 {
		return errors.New("credit amount must be positive")
	}

	result := tx.Model(&user.User{}).
		Where("id = ?", userID).
		Update("credits", gorm.Expr("credits + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	trx := credit.Transaction{
		UserID: userID,
		Amount: amount,
		Kind:   kind,
		Reason: reason,
	}
	return tx.Create(&trx).Error
}

// SumTransactions 全量流水求和，用于对账
// 不变量：任一时刻 SumTransactions(u) == Balance(u)
func (r *LedgerRepository) SumTransactions(ctx context.Context, userID string) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&credit.Transaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}

// Transactions 分页查询流水，按时间倒序
func (r *LedgerRepository) Transactions(ctx context.Context, userID string, page, pageSize int) ([]credit.Transaction, int64, error) {
	var transactions []credit.Transaction
	var total int64

	query := r.db.WithContext(ctx).Model(&credit.Transaction{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&transactions).Error

	return transactions, total, err
}
