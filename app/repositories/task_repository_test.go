package repositories

import (
	"context"
	"testing"

	"bloxforge/app/models/task"
	"bloxforge/app/policies"
	"bloxforge/pkg/config"
)

func TestBeginMeteredInsufficient(t *testing.T) {
	u := createUser(t, 10)
	repo := NewTaskRepository()
	ctx := context.Background()

	created, err := repo.BeginMetered(ctx, u, task.TypeChatMessage, 15, nil)
	if err != ErrInsufficientCredits {
		t.Fatalf("err = %v, want ErrInsufficientCredits", err)
	}
	if created == nil || created.ID == "" {
		t.Fatal("failed task row must still be returned with its id")
	}

	// 任务行留作对账记录且为 failed
	got, err := repo.GetByID(ctx, u.ID, created.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Status != task.StatusFailed {
		t.Fatalf("status = %s, want failed", got.Status)
	}
	if got.CreditsDeducted {
		t.Fatal("credits_deducted must stay false on failed deduct")
	}
	if got.ErrorMessage != "Insufficient credits" {
		t.Fatalf("error message = %q", got.ErrorMessage)
	}

	if balance := mustBalance(t, u.ID); balance != 10 {
		t.Fatalf("balance = %d, want 10", balance)
	}
	assertReconciled(t, u.ID)
}

func TestBeginMeteredThenComplete(t *testing.T) {
	u := createUser(t, 10)
	repo := NewTaskRepository()
	ctx := context.Background()

	created, err := repo.BeginMetered(ctx, u, task.TypeChatMessage, 5, task.Payload{"prompt": "hello"})
	if err != nil {
		t.Fatalf("begin metered: %v", err)
	}
	if created.Status != task.StatusProcessing {
		t.Fatalf("status = %s, want processing", created.Status)
	}
	if !created.CreditsDeducted {
		t.Fatal("credits_deducted must be true after successful deduct")
	}
	if balance := mustBalance(t, u.ID); balance != 5 {
		t.Fatalf("balance = %d, want 5", balance)
	}

	if err := repo.Complete(ctx, created.ID, "https://cdn.example.com/result"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	got, err := repo.GetByID(ctx, u.ID, created.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Status != task.StatusCompleted {
		t.Fatalf("status = %s, want completed", got.Status)
	}
	if got.CompletedAt == nil {
		t.Fatal("completed_at must be set")
	}
	assertReconciled(t, u.ID)
}

func TestTerminalTransitionExactlyOnce(t *testing.T) {
	u := createUser(t, 10)
	repo := NewTaskRepository()
	ctx := context.Background()

	created, err := repo.BeginMetered(ctx, u, task.TypeGenerate, 2, nil)
	if err != nil {
		t.Fatalf("begin metered: %v", err)
	}

	if err := repo.Complete(ctx, created.ID, "done"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// 二次终态迁移必须被拒绝
	if err := repo.Complete(ctx, created.ID, "done again"); err != ErrTaskNotProcessing {
		t.Fatalf("second complete err = %v, want ErrTaskNotProcessing", err)
	}
	if err := repo.Fail(ctx, created.ID, "too late"); err != ErrTaskNotProcessing {
		t.Fatalf("fail after complete err = %v, want ErrTaskNotProcessing", err)
	}

	got, _ := repo.GetByID(ctx, u.ID, created.ID)
	if got.Result != "done" {
		t.Fatalf("result = %q, want the first write to stick", got.Result)
	}
}

func TestFailKeepsDeductedCredits(t *testing.T) {
	u := createUser(t, 10)
	repo := NewTaskRepository()
	ctx := context.Background()

	created, err := repo.BeginMetered(ctx, u, task.TypeGenerate, 4, nil)
	if err != nil {
		t.Fatalf("begin metered: %v", err)
	}
	if err := repo.Fail(ctx, created.ID, "upstream timeout"); err != nil {
		t.Fatalf("fail: %v", err)
	}

	// 失败不自动退积分
	if balance := mustBalance(t, u.ID); balance != 6 {
		t.Fatalf("balance = %d, want 6", balance)
	}
	assertReconciled(t, u.ID)
}

func TestBeginMeteredOwnerBypass(t *testing.T) {
	policies.ResetForTesting()
	config.Add("credits", func() map[string]interface{} {
		return map[string]interface{}{
			"unlimited_identities": "owner@bloxforge.dev",
		}
	})
	config.InitConfig("")
	t.Cleanup(policies.ResetForTesting)

	u := createUser(t, 10)
	u.Email = "owner@bloxforge.dev"

	repo := NewTaskRepository()
	created, err := repo.BeginMetered(context.Background(), u, task.TypeGenerate, 3, nil)
	if err != nil {
		t.Fatalf("begin metered: %v", err)
	}
	if created.Status != task.StatusCompleted {
		t.Fatalf("status = %s, want completed", created.Status)
	}
	if created.CreditsCost != 0 {
		t.Fatalf("credits_cost = %d, want 0", created.CreditsCost)
	}
	if balance := mustBalance(t, u.ID); balance != 10 {
		t.Fatalf("balance = %d, want unchanged 10", balance)
	}
}

func TestAttachResultOnBypassExport(t *testing.T) {
	policies.ResetForTesting()
	config.Add("credits", func() map[string]interface{} {
		return map[string]interface{}{
			"unlimited_identities": "owner@bloxforge.dev",
		}
	})
	config.InitConfig("")
	t.Cleanup(policies.ResetForTesting)

	u := createUser(t, 10)
	u.Email = "owner@bloxforge.dev"

	repo := NewTaskRepository()
	ctx := context.Background()
	created, err := repo.BeginMetered(ctx, u, task.TypeExport, 3, nil)
	if err != nil {
		t.Fatalf("begin metered: %v", err)
	}

	// 旁路任务建单即 completed，常规状态迁移被挡住
	if err := repo.Complete(ctx, created.ID, "https://cdn.bloxforge.dev/exports/a.rbxm"); err != ErrTaskNotProcessing {
		t.Fatalf("complete err = %v, want ErrTaskNotProcessing", err)
	}

	// 导出产物走补写通道落到任务行
	if err := repo.AttachResult(ctx, created.ID, "https://cdn.bloxforge.dev/exports/a.rbxm"); err != nil {
		t.Fatalf("attach result: %v", err)
	}
	got, err := repo.GetByID(ctx, u.ID, created.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Result != "https://cdn.bloxforge.dev/exports/a.rbxm" {
		t.Fatalf("result = %q, want export url", got.Result)
	}

	// 已有产出不被覆盖
	if err := repo.AttachResult(ctx, created.ID, "https://cdn.bloxforge.dev/exports/b.rbxm"); err != nil {
		t.Fatalf("second attach: %v", err)
	}
	got, _ = repo.GetByID(ctx, u.ID, created.ID)
	if got.Result != "https://cdn.bloxforge.dev/exports/a.rbxm" {
		t.Fatalf("result overwritten to %q", got.Result)
	}
}

func TestTaskOwnerScoping(t *testing.T) {
	owner := createUser(t, 10)
	other := createUser(t, 10)
	repo := NewTaskRepository()
	ctx := context.Background()

	created, err := repo.BeginMetered(ctx, owner, task.TypeChatMessage, 1, nil)
	if err != nil {
		t.Fatalf("begin metered: %v", err)
	}

	if _, err := repo.GetByID(ctx, other.ID, created.ID); err == nil {
		t.Fatal("other user must not see the task")
	}
}

func TestListByUserFiltersType(t *testing.T) {
	u := createUser(t, 30)
	repo := NewTaskRepository()
	ctx := context.Background()

	if _, err := repo.BeginMetered(ctx, u, task.TypeChatMessage, 1, nil); err != nil {
		t.Fatalf("begin chat: %v", err)
	}
	if _, err := repo.BeginMetered(ctx, u, task.TypeExport, 1, nil); err != nil {
		t.Fatalf("begin export: %v", err)
	}

	exports, total, err := repo.ListByUser(ctx, u.ID, task.TypeExport, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(exports) != 1 || exports[0].Type != task.TypeExport {
		t.Fatalf("filtered list = %d items, total %d", len(exports), total)
	}

	all, total, err := repo.ListByUser(ctx, u.ID, "", 1, 10)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Fatalf("unfiltered list = %d items, total %d", len(all), total)
	}
}
