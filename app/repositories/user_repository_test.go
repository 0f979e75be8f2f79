package repositories

import (
	"context"
	"testing"

	"bloxforge/pkg/roblox"
)

func TestFindOrCreateByEmail(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	email := "creator-findorcreate@example.com"
	first, err := repo.FindOrCreateByEmail(ctx, email, "Creator")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if first.ID == "" {
		t.Fatal("user id must be assigned")
	}

	second, err := repo.FindOrCreateByEmail(ctx, email, "SomeoneElse")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("same email resolved to a different user: %s != %s", second.ID, first.ID)
	}
	// 已存在的账号不改昵称
	if second.Nickname != "Creator" {
		t.Fatalf("nickname = %q, want Creator", second.Nickname)
	}
}

func TestBindIdentityOverwrites(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	u, err := repo.FindOrCreateByEmail(ctx, "binder@example.com", "Binder")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.IdentityLinked() {
		t.Fatal("fresh account must not be linked")
	}

	err = repo.BindIdentity(ctx, u.ID, &roblox.Identity{
		Username:  "BuilderOne",
		UserID:    12345,
		AvatarURL: "https://cdn.example.com/1.png",
	})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}

	got, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.IdentityLinked() || got.RobloxUsername != "BuilderOne" {
		t.Fatalf("identity = (%q, %d)", got.RobloxUsername, got.RobloxUserID)
	}

	// 重复验证允许，直接覆盖旧绑定
	err = repo.BindIdentity(ctx, u.ID, &roblox.Identity{
		Username:  "BuilderTwo",
		UserID:    67890,
		AvatarURL: "https://cdn.example.com/2.png",
	})
	if err != nil {
		t.Fatalf("rebind: %v", err)
	}
	got, _ = repo.GetByID(ctx, u.ID)
	if got.RobloxUsername != "BuilderTwo" || got.RobloxUserID != 67890 {
		t.Fatalf("rebound identity = (%q, %d)", got.RobloxUsername, got.RobloxUserID)
	}
}
