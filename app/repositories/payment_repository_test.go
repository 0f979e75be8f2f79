package repositories

import (
	"context"
	"testing"
	"time"

	"bloxforge/app/models/payment"
)

func createOrder(t *testing.T, userID string, credits, amount int64) *payment.Payment {
	t.Helper()
	expire := time.Now().Add(30 * time.Minute)
	p := &payment.Payment{
		OrderNo:  "TEST" + userID[:8] + time.Now().Format("150405.000000000"),
		UserID:   userID,
		Credits:  credits,
		Provider: string(payment.ProviderAlipay),
		Amount:   amount,
		Status:   string(payment.StatusPending),
		ExpireAt: &expire,
	}
	if err := NewPaymentRepository().Create(context.Background(), p); err != nil {
		t.Fatalf("create order: %v", err)
	}
	return p
}

func TestMarkPaidCreditsLedger(t *testing.T) {
	u := createUser(t, 0)
	repo := NewPaymentRepository()
	ctx := context.Background()

	order := createOrder(t, u.ID, 100, 600)

	if err := repo.MarkPaid(ctx, order.OrderNo, "TXN-1"); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	got, err := repo.GetByOrderNo(ctx, order.OrderNo)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.Status != string(payment.StatusPaid) {
		t.Fatalf("status = %s, want paid", got.Status)
	}
	if got.TransactionID != "TXN-1" {
		t.Fatalf("transaction id = %q", got.TransactionID)
	}
	if got.PayAt == nil {
		t.Fatal("pay_at must be set")
	}

	if balance := mustBalance(t, u.ID); balance != 100 {
		t.Fatalf("balance = %d, want 100", balance)
	}
	assertReconciled(t, u.ID)
}

func TestMarkPaidIdempotent(t *testing.T) {
	u := createUser(t, 0)
	repo := NewPaymentRepository()
	ctx := context.Background()

	order := createOrder(t, u.ID, 50, 300)

	if err := repo.MarkPaid(ctx, order.OrderNo, "TXN-A"); err != nil {
		t.Fatalf("first notify: %v", err)
	}
	// 第三方重发通知
	if err := repo.MarkPaid(ctx, order.OrderNo, "TXN-A"); err != nil {
		t.Fatalf("second notify: %v", err)
	}

	// 只入账一次
	if balance := mustBalance(t, u.ID); balance != 50 {
		t.Fatalf("balance = %d, want 50", balance)
	}
	assertReconciled(t, u.ID)
}

func TestMarkPaidUnknownOrder(t *testing.T) {
	repo := NewPaymentRepository()
	if err := repo.MarkPaid(context.Background(), "NO-SUCH-ORDER", "TXN"); err == nil {
		t.Fatal("unknown order must error")
	}
}

func TestCancelExpiredOrders(t *testing.T) {
	u := createUser(t, 0)
	repo := NewPaymentRepository()
	ctx := context.Background()

	order := createOrder(t, u.ID, 10, 100)

	// 拨过期
	expired := time.Now().Add(-time.Minute)
	if err := NewPaymentRepository().db.Model(&payment.Payment{}).
		Where("order_no = ?", order.OrderNo).
		Update("expire_at", expired).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	n, err := repo.CancelExpired(ctx)
	if err != nil {
		t.Fatalf("cancel expired: %v", err)
	}
	if n < 1 {
		t.Fatalf("canceled = %d, want >= 1", n)
	}

	got, _ := repo.GetByOrderNo(ctx, order.OrderNo)
	if got.Status != string(payment.StatusCanceled) {
		t.Fatalf("status = %s, want canceled", got.Status)
	}

	// 已取消的订单不再接受支付通知入账
	if err := repo.MarkPaid(ctx, order.OrderNo, "TXN-LATE"); err != nil {
		t.Fatalf("late notify: %v", err)
	}
	if balance := mustBalance(t, u.ID); balance != 0 {
		t.Fatalf("balance = %d, want 0", balance)
	}
}
