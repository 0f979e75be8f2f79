package repositories

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	gormlogger "gorm.io/gorm/logger"

	"bloxforge/app/models/credit"
	"bloxforge/app/models/user"
	"bloxforge/pkg/database"
	"bloxforge/pkg/database/migrations"
	"bloxforge/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Logger = zap.NewNop()
	database.Connect(sqlite.Open("file::memory:?cache=shared"), gormlogger.Default.LogMode(gormlogger.Silent))
	// sqlite 写并发靠单连接串行化，避免共享缓存下的表锁错误
	database.SQLDB.SetMaxOpenConns(1)
	if err := database.AutoMigrate(migrations.RegisterTables()); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var userSeq int

// createUser 建一个带初始余额的测试用户，余额通过账本入账
func createUser(t *testing.T, credits int64) *user.User {
	t.Helper()

	userSeq++
	u := &user.User{
		ID:       uuid.New().String(),
		Email:    fmt.Sprintf("user%d-%s@example.com", userSeq, uuid.New().String()[:8]),
		Nickname: fmt.Sprintf("Builder%d", userSeq),
	}
	if err := database.DB.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	if credits > 0 {
		ledger := NewLedgerRepository()
		if err := ledger.Credit(context.Background(), u.ID, credits, credit.KindEarned, "test seed"); err != nil {
			t.Fatalf("seed credits: %v", err)
		}
	}
	return u
}

// mustBalance 读余额，失败即终止
func mustBalance(t *testing.T, userID string) int64 {
	t.Helper()
	balance, err := NewLedgerRepository().Balance(context.Background(), userID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	return balance
}

// assertReconciled 校验余额与流水总和一致
func assertReconciled(t *testing.T, userID string) {
	t.Helper()
	ledger := NewLedgerRepository()
	balance, err := ledger.Balance(context.Background(), userID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	sum, err := ledger.SumTransactions(context.Background(), userID)
	if err != nil {
		t.Fatalf("sum transactions: %v", err)
	}
	if balance != sum {
		t.Fatalf("ledger out of balance: balance=%d sum=%d", balance, sum)
	}
}
