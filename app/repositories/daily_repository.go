package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bloxforge/app/models/credit"
	"bloxforge/app/models/daily"
	"bloxforge/pkg/app"
	"bloxforge/pkg/config"
	"bloxforge/pkg/database"
)

// ClaimResult 签到结果
type ClaimResult struct {
	Awarded      int64 `json:"awarded"`       // 本次发放积分，同日重复领取为 0
	NewStreak    int   `json:"new_streak"`    // 当前连续天数
	StreakBroken bool  `json:"streak_broken"` // 连续被中断（或首次签到）
}

// DailyRepository 每日签到仓库
// 以 last_login_date 做单写者屏障：同一天的并发领取
// 在条件更新处只有一个能命中，其余不发奖
type DailyRepository struct {
	db *gorm.DB
}

// NewDailyRepository 创建仓库实例
func NewDailyRepository() *DailyRepository {
	return &DailyRepository{db: database.DB}
}

const dateLayout = "2006-01-02"

// Claim 领取当日登录奖励，每个日历日每用户至多一次
// 规则：昨天领过则连续 +1，间隔超过一天（或首次）重置为 1
func (r *DailyRepository) Claim(ctx context.Context, userID string) (*ClaimResult, error) {
	now := app.TimenowInTimezone()
	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)

	var record daily.LoginRecord
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error

	switch {
	case err == gorm.ErrRecordNotFound:
		res, claimErr := r.claimFirst(ctx, userID, today)
		if errors.Is(claimErr, errClaimLost) {
			return r.alreadyClaimed(ctx, userID)
		}
		return res, claimErr

	case err != nil:
		return nil, err
	}

	// 当日已领取
	if record.LastLoginDate == today {
		return &ClaimResult{Awarded: 0, NewStreak: record.Streak, StreakBroken: false}, nil
	}

	newStreak := 1
	streakBroken := true
	if record.LastLoginDate == yesterday {
		newStreak = record.Streak + 1
		streakBroken = false
	}

	res, claimErr := r.claimAdvance(ctx, userID, record.LastLoginDate, today, newStreak, streakBroken)
	if errors.Is(claimErr, errClaimLost) {
		return r.alreadyClaimed(ctx, userID)
	}
	return res, claimErr
}

// errClaimLost 并发领取落败，日期屏障已被别人推进
var errClaimLost = errors.New("daily claim lost the race")

// claimFirst 首次签到：建行 + 发奖同一事务落库，
// 插入撞 user_id 唯一索引说明并发首领落败
func (r *DailyRepository) claimFirst(ctx context.Context, userID, today string) (*ClaimResult, error) {
	amount := rewardFor(1)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := daily.LoginRecord{
			UserID:        userID,
			LastLoginDate: today,
			Streak:        1,
		}
		if createErr := tx.Create(&record).Error; createErr != nil {
			return errClaimLost
		}
		return creditTx(tx, userID, amount, credit.KindAwarded, "daily login bonus")
	})
	if err != nil {
		return nil, err
	}
	return &ClaimResult{Awarded: amount, NewStreak: 1, StreakBroken: true}, nil
}

// claimAdvance 非首日签到：日期 CAS + 发奖同一事务落库，
// 任一步出错整体回滚，不会推进了日期却没发奖
func (r *DailyRepository) claimAdvance(ctx context.Context, userID, prevDate, today string, newStreak int, streakBroken bool) (*ClaimResult, error) {
	amount := rewardFor(newStreak)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&daily.LoginRecord{}).
			Where("user_id = ? AND last_login_date = ?", userID, prevDate).
			Updates(map[string]interface{}{
				"last_login_date": today,
				"streak":          newStreak,
			})
		if result.Error != nil {
			return result.Error
		}
		// CAS 未命中，同日并发只有一个能推进日期
		if result.RowsAffected == 0 {
			return errClaimLost
		}
		return creditTx(tx, userID, amount, credit.KindAwarded, "daily login bonus")
	})
	if err != nil {
		return nil, err
	}
	return &ClaimResult{Awarded: amount, NewStreak: newStreak, StreakBroken: streakBroken}, nil
}

// alreadyClaimed 并发落败方的返回值：不发奖，回读当前连续天数
func (r *DailyRepository) alreadyClaimed(ctx context.Context, userID string) (*ClaimResult, error) {
	var record daily.LoginRecord
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error; err != nil {
		return nil, err
	}
	return &ClaimResult{Awarded: 0, NewStreak: record.Streak, StreakBroken: false}, nil
}

// rewardFor 奖励 = 基础值 + 连续加成，加成随连续天数单调增长、有上限
func rewardFor(streak int) int64 {
	base := config.GetInt64("credits.daily_base", 5)
	bonus := int64(2 * (streak - 1))
	cap := config.GetInt64("credits.daily_bonus_cap", 25)
	if bonus > cap {
		bonus = cap
	}
	return base + bonus
}

// Record 查询签到记录，用于展示
func (r *DailyRepository) Record(ctx context.Context, userID string) (*daily.LoginRecord, error) {
	var record daily.LoginRecord
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}
