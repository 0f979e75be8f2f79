package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"bloxforge/app/models/credit"
	"bloxforge/app/models/payment"
	"bloxforge/pkg/database"
	"bloxforge/pkg/logger"
)

var (
	// ErrOrderNotPending 订单不处于待支付状态，重复通知时出现
	ErrOrderNotPending = errors.New("order is not pending")
)

// PaymentRepository 充值订单仓库
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建仓库实例
func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		db: database.DB,
	}
}

// Create 创建充值订单
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(p).Error
}

// GetByOrderNo 按订单号查询
func (r *PaymentRepository) GetByOrderNo(ctx context.Context, orderNo string) (*payment.Payment, error) {
	var p payment.Payment
	err := r.db.WithContext(ctx).Where("order_no = ?", orderNo).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByTransactionID 按第三方交易号查询
func (r *PaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*payment.Payment, error) {
	var p payment.Payment
	err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByUser 查询用户的充值订单，按时间倒序
func (r *PaymentRepository) ListByUser(ctx context.Context, userID string, limit int) ([]payment.Payment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var list []payment.Payment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// MarkPaid 把待支付订单置为已支付并给账本入账
//
// 状态翻转是一条 pending -> paid 的条件更新，重复通知只会命中一次，
// 入账与翻转在同一事务里，不会出现「已支付但没到账」的订单
func (r *PaymentRepository) MarkPaid(ctx context.Context, orderNo, transactionID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p payment.Payment
		if err := tx.Where("order_no = ?", orderNo).First(&p).Error; err != nil {
			return err
		}

		now := time.Now()
		result := tx.Model(&payment.Payment{}).
			Where("order_no = ? AND status = ?", orderNo, string(payment.StatusPending)).
			Updates(map[string]interface{}{
				"status":         string(payment.StatusPaid),
				"transaction_id": transactionID,
				"pay_at":         now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// 已处理过的通知直接忽略
			logger.InfoString("payment", "mark-paid", fmt.Sprintf("order %s already settled, skipped", orderNo))
			return nil
		}

		return creditTx(tx, p.UserID, p.Credits, credit.KindEarned, "topup:"+orderNo)
	})
}

// CancelExpired 把超时未支付的订单置为已取消，返回处理条数
func (r *PaymentRepository) CancelExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Model(&payment.Payment{}).
		Where("status = ? AND expire_at < ?", string(payment.StatusPending), time.Now()).
		Update("status", string(payment.StatusCanceled))
	return result.RowsAffected, result.Error
}
