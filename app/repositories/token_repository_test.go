package repositories

import (
	"context"
	"testing"
	"time"

	"bloxforge/app/models/token"
	"bloxforge/pkg/database"
)

func TestTokenIssueAndValidate(t *testing.T) {
	u := createUser(t, 0)
	repo := NewTokenRepository()
	ctx := context.Background()

	issued, err := repo.Issue(ctx, u.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(issued.Token) != 64 {
		t.Fatalf("token length = %d, want 64", len(issued.Token))
	}

	valid, userID := repo.Validate(ctx, issued.Token)
	if !valid || userID != u.ID {
		t.Fatalf("validate = (%v, %q), want (true, %q)", valid, userID, u.ID)
	}
}

func TestTokenValidateUnknown(t *testing.T) {
	repo := NewTokenRepository()

	if valid, _ := repo.Validate(context.Background(), "no-such-token"); valid {
		t.Fatal("unknown token validated")
	}
	if valid, _ := repo.Validate(context.Background(), ""); valid {
		t.Fatal("empty token validated")
	}
}

func TestTokenRevoke(t *testing.T) {
	u := createUser(t, 0)
	repo := NewTokenRepository()
	ctx := context.Background()

	issued, err := repo.Issue(ctx, u.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := repo.Revoke(ctx, issued.Token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if valid, _ := repo.Validate(ctx, issued.Token); valid {
		t.Fatal("revoked token still validates")
	}

	// 吊销是幂等的
	if err := repo.Revoke(ctx, issued.Token); err != nil {
		t.Fatalf("second revoke: %v", err)
	}
}

func TestTokenExpiry(t *testing.T) {
	u := createUser(t, 0)
	repo := NewTokenRepository()
	ctx := context.Background()

	issued, err := repo.Issue(ctx, u.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// 直接把过期时间拨到过去
	err = database.DB.Model(&token.PluginToken{}).
		Where("token = ?", issued.Token).
		Update("expires_at", time.Now().Add(-time.Minute)).Error
	if err != nil {
		t.Fatalf("backdate: %v", err)
	}

	if valid, _ := repo.Validate(ctx, issued.Token); valid {
		t.Fatal("expired token still validates")
	}

	purged, err := repo.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged < 1 {
		t.Fatalf("purged = %d, want >= 1", purged)
	}
}

func TestTokenMultipleDevices(t *testing.T) {
	u := createUser(t, 0)
	repo := NewTokenRepository()
	ctx := context.Background()

	first, err := repo.Issue(ctx, u.ID)
	if err != nil {
		t.Fatalf("issue first: %v", err)
	}
	second, err := repo.Issue(ctx, u.ID)
	if err != nil {
		t.Fatalf("issue second: %v", err)
	}
	if first.Token == second.Token {
		t.Fatal("tokens must be unique per issuance")
	}

	// 吊销其中一个不影响另一个
	if err := repo.Revoke(ctx, first.Token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if valid, _ := repo.Validate(ctx, second.Token); !valid {
		t.Fatal("second device token lost after revoking the first")
	}
}
