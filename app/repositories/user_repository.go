package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bloxforge/app/models/credit"
	"bloxforge/app/models/user"
	"bloxforge/pkg/config"
	"bloxforge/pkg/database"
	"bloxforge/pkg/roblox"
)

// UserRepository 用户仓库
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建仓库实例
func NewUserRepository() *UserRepository {
	return &UserRepository{
		db: database.DB,
	}
}

// GetByID 按 ID 查询用户
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*user.User, error) {
	var u user.User
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindOrCreateByEmail 按邮箱查询用户，不存在时创建
func (r *UserRepository) FindOrCreateByEmail(ctx context.Context, email, nickname string) (*user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err == nil {
		return &u, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	u = user.User{
		ID:       uuid.New().String(),
		Email:    email,
		Nickname: nickname,
	}
	if createErr := r.db.WithContext(ctx).Create(&u).Error; createErr != nil {
		// 并发创建时落败方回读已有记录
		if readErr := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; readErr == nil {
			return &u, nil
		}
		return nil, createErr
	}

	// 新账号的见面礼，同样走账本保证 balance == SUM(流水)
	if initial := config.GetInt64("credits.initial_balance", 0); initial > 0 {
		if err := creditTx(r.db.WithContext(ctx), u.ID, initial, credit.KindAwarded, "initial balance"); err != nil {
			return nil, err
		}
		u.Credits = initial
	}
	return &u, nil
}

// BindIdentity 将验证通过的 Roblox 身份写入用户档案
// 无条件覆盖旧绑定：重复验证始终允许
func (r *UserRepository) BindIdentity(ctx context.Context, userID string, identity *roblox.Identity) error {
	result := r.db.WithContext(ctx).Model(&user.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"roblox_username": identity.Username,
			"roblox_user_id":  identity.UserID,
			"avatar_url":      identity.AvatarURL,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
