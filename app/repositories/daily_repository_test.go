package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"bloxforge/app/models/daily"
	"bloxforge/pkg/database"
)

// backdateLastLogin 把签到记录的日期拨到 days 天前
func backdateLastLogin(t *testing.T, userID string, days int) {
	t.Helper()
	date := time.Now().AddDate(0, 0, -days).Format("2006-01-02")
	err := database.DB.Model(&daily.LoginRecord{}).
		Where("user_id = ?", userID).
		Update("last_login_date", date).Error
	if err != nil {
		t.Fatalf("backdate login record: %v", err)
	}
}

func TestDailyFirstClaim(t *testing.T) {
	u := createUser(t, 0)
	repo := NewDailyRepository()

	result, err := repo.Claim(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if result.NewStreak != 1 {
		t.Fatalf("streak = %d, want 1", result.NewStreak)
	}
	if !result.StreakBroken {
		t.Fatal("first claim reports a fresh streak")
	}
	if result.Awarded != 5 {
		t.Fatalf("awarded = %d, want base 5", result.Awarded)
	}
	if balance := mustBalance(t, u.ID); balance != 5 {
		t.Fatalf("balance = %d, want 5", balance)
	}
	assertReconciled(t, u.ID)
}

func TestDailySameDayIdempotent(t *testing.T) {
	u := createUser(t, 0)
	repo := NewDailyRepository()
	ctx := context.Background()

	first, err := repo.Claim(ctx, u.ID)
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	second, err := repo.Claim(ctx, u.ID)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}

	if second.Awarded != 0 {
		t.Fatalf("second awarded = %d, want 0", second.Awarded)
	}
	if second.NewStreak != first.NewStreak {
		t.Fatalf("streak changed on same-day claim: %d -> %d", first.NewStreak, second.NewStreak)
	}
	if balance := mustBalance(t, u.ID); balance != first.Awarded {
		t.Fatalf("balance = %d, want %d (single award)", balance, first.Awarded)
	}
}

func TestDailyConcurrentClaim(t *testing.T) {
	u := createUser(t, 0)
	repo := NewDailyRepository()

	// 同日并发领取：日期屏障只放行一个，落败方不发奖
	results := make(chan *ClaimResult, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := repo.Claim(context.Background(), u.ID)
			if err != nil {
				t.Errorf("claim: %v", err)
				return
			}
			results <- res
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	var awarded int64
	for res := range results {
		if res.Awarded > 0 {
			winners++
			awarded = res.Awarded
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}
	if balance := mustBalance(t, u.ID); balance != awarded {
		t.Fatalf("balance = %d, want %d (single award)", balance, awarded)
	}
	assertReconciled(t, u.ID)
}

func TestDailyConsecutiveStreak(t *testing.T) {
	u := createUser(t, 0)
	repo := NewDailyRepository()
	ctx := context.Background()

	if _, err := repo.Claim(ctx, u.ID); err != nil {
		t.Fatalf("day 1 claim: %v", err)
	}

	// 模拟昨天签到过
	backdateLastLogin(t, u.ID, 1)

	result, err := repo.Claim(ctx, u.ID)
	if err != nil {
		t.Fatalf("day 2 claim: %v", err)
	}
	if result.NewStreak != 2 {
		t.Fatalf("streak = %d, want 2", result.NewStreak)
	}
	if result.StreakBroken {
		t.Fatal("consecutive claim must not break the streak")
	}
	// 奖励 = 基础 5 + 加成 2*(streak-1)
	if result.Awarded != 7 {
		t.Fatalf("awarded = %d, want 7", result.Awarded)
	}
	assertReconciled(t, u.ID)
}

func TestDailyGapResetsStreak(t *testing.T) {
	u := createUser(t, 0)
	repo := NewDailyRepository()
	ctx := context.Background()

	if _, err := repo.Claim(ctx, u.ID); err != nil {
		t.Fatalf("initial claim: %v", err)
	}
	backdateLastLogin(t, u.ID, 1)
	if _, err := repo.Claim(ctx, u.ID); err != nil {
		t.Fatalf("streak claim: %v", err)
	}

	// 断两天
	backdateLastLogin(t, u.ID, 3)

	result, err := repo.Claim(ctx, u.ID)
	if err != nil {
		t.Fatalf("claim after gap: %v", err)
	}
	if result.NewStreak != 1 {
		t.Fatalf("streak = %d, want reset to 1", result.NewStreak)
	}
	if !result.StreakBroken {
		t.Fatal("gap claim must report streak_broken")
	}
	if result.Awarded != 5 {
		t.Fatalf("awarded = %d, want base 5", result.Awarded)
	}
}

func TestDailyBonusCap(t *testing.T) {
	u := createUser(t, 0)
	repo := NewDailyRepository()
	ctx := context.Background()

	if _, err := repo.Claim(ctx, u.ID); err != nil {
		t.Fatalf("initial claim: %v", err)
	}

	// 直接把连续天数抬到远超加成上限
	err := database.DB.Model(&daily.LoginRecord{}).
		Where("user_id = ?", u.ID).
		Update("streak", 40).Error
	if err != nil {
		t.Fatalf("raise streak: %v", err)
	}
	backdateLastLogin(t, u.ID, 1)

	result, err := repo.Claim(ctx, u.ID)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	// 奖励封顶：基础 5 + 上限 25
	if result.Awarded != 30 {
		t.Fatalf("awarded = %d, want capped 30", result.Awarded)
	}
	if result.NewStreak != 41 {
		t.Fatalf("streak = %d, want 41", result.NewStreak)
	}
}
