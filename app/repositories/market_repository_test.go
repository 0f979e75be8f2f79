package repositories

import (
	"context"
	"testing"

	"bloxforge/app/models/credit"
	"bloxforge/app/models/market"
	"bloxforge/pkg/database"
)

func createItem(t *testing.T, price int64, approved bool) *market.Item {
	t.Helper()
	item := &market.Item{
		Name:     "UI Kit",
		Price:    price,
		Approved: approved,
	}
	if err := database.DB.Create(item).Error; err != nil {
		t.Fatalf("create item: %v", err)
	}
	return item
}

func TestPurchaseHappyPath(t *testing.T) {
	u := createUser(t, 50)
	item := createItem(t, 20, true)
	repo := NewMarketRepository()
	ctx := context.Background()

	p, err := repo.Purchase(ctx, u.ID, item.ID)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if p.Price != 20 {
		t.Fatalf("purchase price = %d, want 20", p.Price)
	}
	if balance := mustBalance(t, u.ID); balance != 30 {
		t.Fatalf("balance = %d, want 30", balance)
	}

	// 流水里有对应的 spent 记录
	list, _, err := NewLedgerRepository().Transactions(ctx, u.ID, 1, 10)
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	var spentCount int
	for _, tx := range list {
		if tx.Kind == credit.KindSpent {
			spentCount++
		}
	}
	if spentCount != 1 {
		t.Fatalf("spent transactions = %d, want 1", spentCount)
	}

	// 下载数自增
	got, err := repo.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got.DownloadCount != 1 {
		t.Fatalf("download_count = %d, want 1", got.DownloadCount)
	}
	assertReconciled(t, u.ID)
}

func TestPurchaseTwiceConflicts(t *testing.T) {
	u := createUser(t, 100)
	item := createItem(t, 10, true)
	repo := NewMarketRepository()
	ctx := context.Background()

	if _, err := repo.Purchase(ctx, u.ID, item.ID); err != nil {
		t.Fatalf("first purchase: %v", err)
	}
	if _, err := repo.Purchase(ctx, u.ID, item.ID); err != ErrAlreadyPurchased {
		t.Fatalf("second purchase err = %v, want ErrAlreadyPurchased", err)
	}

	// 只扣一次钱、只有一条购买记录
	if balance := mustBalance(t, u.ID); balance != 90 {
		t.Fatalf("balance = %d, want 90", balance)
	}
	var purchases int64
	database.DB.Model(&market.Purchase{}).
		Where("user_id = ? AND item_id = ?", u.ID, item.ID).
		Count(&purchases)
	if purchases != 1 {
		t.Fatalf("purchase rows = %d, want 1", purchases)
	}
}

func TestPurchaseInsufficientRollsBack(t *testing.T) {
	u := createUser(t, 5)
	item := createItem(t, 20, true)
	repo := NewMarketRepository()
	ctx := context.Background()

	if _, err := repo.Purchase(ctx, u.ID, item.ID); err != ErrInsufficientCredits {
		t.Fatalf("err = %v, want ErrInsufficientCredits", err)
	}

	// 整体回滚：无购买记录、下载数不动、余额不动
	purchased, err := repo.Purchased(ctx, u.ID, item.ID)
	if err != nil || purchased {
		t.Fatalf("purchased = %v, %v, want false", purchased, err)
	}
	got, _ := repo.GetItem(ctx, item.ID)
	if got.DownloadCount != 0 {
		t.Fatalf("download_count = %d, want 0", got.DownloadCount)
	}
	if balance := mustBalance(t, u.ID); balance != 5 {
		t.Fatalf("balance = %d, want 5", balance)
	}
	assertReconciled(t, u.ID)
}

func TestUnapprovedItemHidden(t *testing.T) {
	u := createUser(t, 50)
	item := createItem(t, 10, false)
	repo := NewMarketRepository()
	ctx := context.Background()

	if _, err := repo.GetItem(ctx, item.ID); err == nil {
		t.Fatal("unapproved item must not be visible")
	}
	if _, err := repo.Purchase(ctx, u.ID, item.ID); err == nil {
		t.Fatal("unapproved item must not be purchasable")
	}
}

func TestRateRequiresPurchase(t *testing.T) {
	u := createUser(t, 50)
	item := createItem(t, 10, true)
	repo := NewMarketRepository()

	if _, err := repo.Rate(context.Background(), u.ID, item.ID, 5, "great"); err != ErrNotPurchased {
		t.Fatalf("err = %v, want ErrNotPurchased", err)
	}
}

func TestRateUpsertAndAggregate(t *testing.T) {
	alice := createUser(t, 50)
	bob := createUser(t, 50)
	item := createItem(t, 10, true)
	repo := NewMarketRepository()
	ctx := context.Background()

	if _, err := repo.Purchase(ctx, alice.ID, item.ID); err != nil {
		t.Fatalf("alice purchase: %v", err)
	}
	if _, err := repo.Purchase(ctx, bob.ID, item.ID); err != nil {
		t.Fatalf("bob purchase: %v", err)
	}

	if _, err := repo.Rate(ctx, alice.ID, item.ID, 5, "great"); err != nil {
		t.Fatalf("alice rate: %v", err)
	}
	got, err := repo.Rate(ctx, bob.ID, item.ID, 2, "meh")
	if err != nil {
		t.Fatalf("bob rate: %v", err)
	}
	// (5+2)/2 = 3.5
	if got.Rating != 3.5 || got.RatingCount != 2 {
		t.Fatalf("aggregate = (%.1f, %d), want (3.5, 2)", got.Rating, got.RatingCount)
	}

	// 重复评分覆盖而不是新增
	got, err = repo.Rate(ctx, bob.ID, item.ID, 4, "better than I thought")
	if err != nil {
		t.Fatalf("bob re-rate: %v", err)
	}
	// (5+4)/2 = 4.5
	if got.Rating != 4.5 || got.RatingCount != 2 {
		t.Fatalf("aggregate after re-rate = (%.1f, %d), want (4.5, 2)", got.Rating, got.RatingCount)
	}

	var ratings int64
	database.DB.Model(&market.Rating{}).Where("item_id = ?", item.ID).Count(&ratings)
	if ratings != 2 {
		t.Fatalf("rating rows = %d, want 2", ratings)
	}
}

func TestRateRoundsToOneDecimal(t *testing.T) {
	users := []string{}
	item := createItem(t, 1, true)
	repo := NewMarketRepository()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		u := createUser(t, 10)
		if _, err := repo.Purchase(ctx, u.ID, item.ID); err != nil {
			t.Fatalf("purchase %d: %v", i, err)
		}
		users = append(users, u.ID)
	}

	scores := []int{5, 5, 4} // 平均 4.666... -> 4.7
	var got *market.Item
	var err error
	for i, uid := range users {
		got, err = repo.Rate(ctx, uid, item.ID, scores[i], "")
		if err != nil {
			t.Fatalf("rate %d: %v", i, err)
		}
	}
	if got.Rating != 4.7 {
		t.Fatalf("rating = %v, want 4.7", got.Rating)
	}
}
