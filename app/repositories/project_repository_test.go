package repositories

import (
	"context"
	"testing"

	"gorm.io/gorm"
)

func TestProjectCRUD(t *testing.T) {
	u := createUser(t, 0)
	repo := NewProjectRepository()
	ctx := context.Background()

	p, err := repo.Create(ctx, u.ID, "Castle Lobby", `{"parts":[]}`)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == "" {
		t.Fatal("project id must be assigned")
	}

	got, err := repo.GetByID(ctx, u.ID, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Castle Lobby" {
		t.Fatalf("name = %q", got.Name)
	}

	updated, err := repo.Update(ctx, u.ID, p.ID, map[string]interface{}{
		"name": "Castle Lobby v2",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Castle Lobby v2" {
		t.Fatalf("updated name = %q", updated.Name)
	}

	if err := repo.Delete(ctx, u.ID, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, u.ID, p.ID); err != gorm.ErrRecordNotFound {
		t.Fatalf("get after delete err = %v, want ErrRecordNotFound", err)
	}
}

func TestProjectOwnerScoping(t *testing.T) {
	owner := createUser(t, 0)
	other := createUser(t, 0)
	repo := NewProjectRepository()
	ctx := context.Background()

	p, err := repo.Create(ctx, owner.ID, "Private Build", "{}")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// 他人访问与不存在不可区分
	if _, err := repo.GetByID(ctx, other.ID, p.ID); err != gorm.ErrRecordNotFound {
		t.Fatalf("foreign get err = %v, want ErrRecordNotFound", err)
	}
	if _, err := repo.Update(ctx, other.ID, p.ID, map[string]interface{}{"name": "hijacked"}); err != gorm.ErrRecordNotFound {
		t.Fatalf("foreign update err = %v, want ErrRecordNotFound", err)
	}
	if err := repo.Delete(ctx, other.ID, p.ID); err != gorm.ErrRecordNotFound {
		t.Fatalf("foreign delete err = %v, want ErrRecordNotFound", err)
	}

	// 原属主不受影响
	if _, err := repo.GetByID(ctx, owner.ID, p.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}
}

func TestProjectListPagination(t *testing.T) {
	u := createUser(t, 0)
	repo := NewProjectRepository()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := repo.Create(ctx, u.ID, "Scene", "{}"); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	page1, total, err := repo.ListByUser(ctx, u.ID, 1, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 || len(page1) != 2 {
		t.Fatalf("page1 = %d items, total %d, want 2/5", len(page1), total)
	}

	page3, _, err := repo.ListByUser(ctx, u.ID, 3, 2)
	if err != nil {
		t.Fatalf("list page 3: %v", err)
	}
	if len(page3) != 1 {
		t.Fatalf("page3 = %d items, want 1", len(page3))
	}
}
