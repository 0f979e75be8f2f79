package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bloxforge/app/models/task"
	"bloxforge/app/models/user"
	"bloxforge/app/policies"
	"bloxforge/pkg/database"
	"bloxforge/pkg/logger"
)

var (
	// ErrTaskNotProcessing 任务已处于终态，终态迁移只允许发生一次
	ErrTaskNotProcessing = errors.New("task is not processing")
)

// TaskRepository 计费任务仓库
type TaskRepository struct {
	db     *gorm.DB
	ledger *LedgerRepository
}

// NewTaskRepository 创建仓库实例
func NewTaskRepository() *TaskRepository {
	return &TaskRepository{
		db:     database.DB,
		ledger: NewLedgerRepository(),
	}
}

// BeginMetered 开启一次计费任务：先插任务行，再尝试扣费
//
// 顺序保证「有扣费必有任务行」；反向的孤儿 processing 任务
// （插行成功但扣费时存储出错）是可恢复的不一致，允许存在。
//
// 扣费失败时任务转 failed 并返回 ErrInsufficientCredits，
// 任务指针仍然返回，调用方需把任务 ID 一并告知客户端。
//
// 持有不限积分能力的用户：credits_cost 记 0，任务直接 completed，
// 不经过扣费。该判定只在服务端做，不信任客户端标记
func (r *TaskRepository) BeginMetered(ctx context.Context, u *user.User, taskType task.Type, cost int64, payload task.Payload) (*task.Task, error) {

	// 特权身份旁路
	if policies.CanBypassCredits(u) {
		now := time.Now()
		t := &task.Task{
			ID:              uuid.New().String(),
			UserID:          u.ID,
			Type:            taskType,
			Status:          task.StatusCompleted,
			CreditsCost:     0,
			CreditsDeducted: false,
			Payload:         payload,
			CompletedAt:     &now,
		}
		if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
			return nil, err
		}
		return t, nil
	}

	// 1. 先插入 processing 任务行
	t := &task.Task{
		ID:              uuid.New().String(),
		UserID:          u.ID,
		Type:            taskType,
		Status:          task.StatusProcessing,
		CreditsCost:     cost,
		CreditsDeducted: false,
		Payload:         payload,
	}
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}

	// 2. 尝试扣费
	err := r.ledger.Deduct(ctx, u.ID, cost, t.ID, fmt.Sprintf("task:%s", taskType))
	if err == ErrInsufficientCredits {
		// 扣费失败，任务转 failed，credits_deducted 保持 false
		if failErr := r.Fail(ctx, t.ID, "Insufficient credits"); failErr != nil {
			logger.ErrorString("任务", "标记失败", failErr.Error())
		}
		t.Status = task.StatusFailed
		t.ErrorMessage = "Insufficient credits"
		return t, ErrInsufficientCredits
	}
	if err != nil {
		return t, err
	}

	// 3. 扣费成功，标记已扣
	if err := r.db.WithContext(ctx).Model(t).Update("credits_deducted", true).Error; err != nil {
		return t, err
	}
	t.CreditsDeducted = true
	return t, nil
}

// Complete 任务成功终态，只对 processing 状态生效（终态迁移恰好一次）
func (r *TaskRepository) Complete(ctx context.Context, taskID string, result string) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&task.Task{}).
		Where("id = ? AND status = ?", taskID, task.StatusProcessing).
		Updates(map[string]interface{}{
			"status":       task.StatusCompleted,
			"result":       result,
			"completed_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTaskNotProcessing
	}
	return nil
}

// AttachResult 给已 completed 的任务补写产出
//
// 旁路任务建单即终态，导出产物要等 worker 跑完才有。
// 只填空结果：已有产出或任务不在 completed 态时是幂等空操作
func (r *TaskRepository) AttachResult(ctx context.Context, taskID string, result string) error {
	return r.db.WithContext(ctx).Model(&task.Task{}).
		Where("id = ? AND status = ? AND (result = '' OR result IS NULL)", taskID, task.StatusCompleted).
		Update("result", result).Error
}

// Fail 任务失败终态，只对 processing 状态生效
// 已扣积分不自动退还，退费需协作方显式走账本的 refunded 流水
func (r *TaskRepository) Fail(ctx context.Context, taskID string, reason string) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&task.Task{}).
		Where("id = ? AND status = ?", taskID, task.StatusProcessing).
		Updates(map[string]interface{}{
			"status":        task.StatusFailed,
			"error_message": reason,
			"completed_at":  now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTaskNotProcessing
	}
	return nil
}

// GetByID 按 ID 查询任务，限定属主
func (r *TaskRepository) GetByID(ctx context.Context, userID, taskID string) (*task.Task, error) {
	var t task.Task
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskID, userID).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByUser 分页查询用户任务，可按类型过滤
func (r *TaskRepository) ListByUser(ctx context.Context, userID string, taskType task.Type, page, pageSize int) ([]task.Task, int64, error) {
	var tasks []task.Task
	var total int64

	query := r.db.WithContext(ctx).Model(&task.Task{}).Where("user_id = ?", userID)
	if taskType != "" {
		query = query.Where("type = ?", taskType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&tasks).Error

	return tasks, total, err
}
