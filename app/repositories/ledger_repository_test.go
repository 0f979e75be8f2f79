package repositories

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"bloxforge/app/models/credit"
)

func TestDeductSuccess(t *testing.T) {
	u := createUser(t, 10)
	ledger := NewLedgerRepository()

	if err := ledger.Deduct(context.Background(), u.ID, 5, "task-1", "task:chat_message"); err != nil {
		t.Fatalf("deduct: %v", err)
	}

	if got := mustBalance(t, u.ID); got != 5 {
		t.Fatalf("balance = %d, want 5", got)
	}
	assertReconciled(t, u.ID)
}

func TestDeductInsufficient(t *testing.T) {
	u := createUser(t, 10)
	ledger := NewLedgerRepository()

	err := ledger.Deduct(context.Background(), u.ID, 15, "task-2", "task:generate")
	if err != ErrInsufficientCredits {
		t.Fatalf("err = %v, want ErrInsufficientCredits", err)
	}

	// 失败的扣费不动余额、不记流水
	if got := mustBalance(t, u.ID); got != 10 {
		t.Fatalf("balance = %d, want 10", got)
	}
	assertReconciled(t, u.ID)
}

func TestDeductExactBalance(t *testing.T) {
	u := createUser(t, 7)
	ledger := NewLedgerRepository()

	if err := ledger.Deduct(context.Background(), u.ID, 7, "task-3", "task:export"); err != nil {
		t.Fatalf("deduct: %v", err)
	}
	if got := mustBalance(t, u.ID); got != 0 {
		t.Fatalf("balance = %d, want 0", got)
	}

	// 归零后再扣必须失败
	if err := ledger.Deduct(context.Background(), u.ID, 1, "task-4", "task:export"); err != ErrInsufficientCredits {
		t.Fatalf("err = %v, want ErrInsufficientCredits", err)
	}
	assertReconciled(t, u.ID)
}

func TestDeductConcurrentOverdraw(t *testing.T) {
	u := createUser(t, 10)
	ledger := NewLedgerRepository()

	// 两笔 7 分的并发扣费合计超出余额，条件更新只放行一笔
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs <- ledger.Deduct(context.Background(), u.ID, 7,
				fmt.Sprintf("task-race-%d", n), "task:export")
		}(i)
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		switch err {
		case nil:
			succeeded++
		case ErrInsufficientCredits:
		default:
			t.Fatalf("deduct: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("succeeded = %d, want exactly 1", succeeded)
	}
	if got := mustBalance(t, u.ID); got != 3 {
		t.Fatalf("balance = %d, want 3 and never negative", got)
	}
	assertReconciled(t, u.ID)
}

func TestSufficientFor(t *testing.T) {
	u := createUser(t, 10)
	ledger := NewLedgerRepository()

	ok, err := ledger.SufficientFor(context.Background(), u.ID, 10)
	if err != nil || !ok {
		t.Fatalf("SufficientFor(10) = %v, %v, want true", ok, err)
	}
	ok, err = ledger.SufficientFor(context.Background(), u.ID, 11)
	if err != nil || ok {
		t.Fatalf("SufficientFor(11) = %v, %v, want false", ok, err)
	}
}

func TestSpentJournalCarriesTaskAndSign(t *testing.T) {
	u := createUser(t, 20)
	ledger := NewLedgerRepository()

	if err := ledger.Deduct(context.Background(), u.ID, 8, "task-9", "task:generate"); err != nil {
		t.Fatalf("deduct: %v", err)
	}

	list, total, err := ledger.Transactions(context.Background(), u.ID, 1, 10)
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}

	var spent *credit.Transaction
	for i := range list {
		if list[i].Kind == credit.KindSpent {
			spent = &list[i]
		}
	}
	if spent == nil {
		t.Fatal("no spent transaction recorded")
	}
	if spent.Amount != -8 {
		t.Fatalf("spent amount = %d, want -8", spent.Amount)
	}
	if spent.TaskID != "task-9" {
		t.Fatalf("spent task id = %q, want task-9", spent.TaskID)
	}
}

func TestCreditAndReconcileAcrossKinds(t *testing.T) {
	u := createUser(t, 0)
	ledger := NewLedgerRepository()
	ctx := context.Background()

	if err := ledger.Credit(ctx, u.ID, 100, credit.KindEarned, "topup:ORDER1"); err != nil {
		t.Fatalf("credit earned: %v", err)
	}
	if err := ledger.Credit(ctx, u.ID, 5, credit.KindAwarded, "daily login bonus"); err != nil {
		t.Fatalf("credit awarded: %v", err)
	}
	if err := ledger.Deduct(ctx, u.ID, 30, "task-5", "task:export"); err != nil {
		t.Fatalf("deduct: %v", err)
	}
	if err := ledger.Credit(ctx, u.ID, 30, credit.KindRefunded, "refund task-5"); err != nil {
		t.Fatalf("credit refunded: %v", err)
	}

	if got := mustBalance(t, u.ID); got != 105 {
		t.Fatalf("balance = %d, want 105", got)
	}
	assertReconciled(t, u.ID)
}
