package repositories

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"gorm.io/gorm"

	"bloxforge/app/models/token"
	"bloxforge/pkg/database"
	"bloxforge/pkg/logger"
)

// TokenRepository 插件令牌仓库
// 所有操作同步落库、无缓存：吊销后的下一次校验必然失败
type TokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository 创建仓库实例
func NewTokenRepository() *TokenRepository {
	return &TokenRepository{
		db: database.DB,
	}
}

// Issue 为用户签发一个新令牌，固定 30 天有效期
// 同一用户可持有任意数量的并发令牌（多设备场景）
func (r *TokenRepository) Issue(ctx context.Context, userID string) (*token.PluginToken, error) {
	t := &token.PluginToken{
		Token:     generateToken(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(token.Lifetime),
	}
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// Validate 校验令牌，失败即关闭：查不到、已过期、存储出错
// 一律返回无效，不向调用方抛错
func (r *TokenRepository) Validate(ctx context.Context, tokenString string) (valid bool, userID string) {
	if tokenString == "" {
		return false, ""
	}

	var t token.PluginToken
	err := r.db.WithContext(ctx).Where("token = ?", tokenString).First(&t).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.ErrorString("令牌", "校验", err.Error())
		}
		return false, ""
	}

	if t.Expired(time.Now()) {
		return false, ""
	}
	return true, t.UserID
}

// Revoke 吊销令牌，幂等：令牌不存在时静默成功
func (r *TokenRepository) Revoke(ctx context.Context, tokenString string) error {
	return r.db.WithContext(ctx).
		Where("token = ?", tokenString).
		Delete(&token.PluginToken{}).Error
}

// PurgeExpired 清理已过期的令牌记录，返回删除的条数
func (r *TokenRepository) PurgeExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&token.PluginToken{})
	return result.RowsAffected, result.Error
}

// generateToken 生成不透明随机令牌（32 字节，64 位十六进制）
func generateToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}
