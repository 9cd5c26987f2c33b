package rewards

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/progress-bot/internal/common"
	"serotonyl.ru/progress-bot/internal/db/postgres"
	"serotonyl.ru/progress-bot/internal/features/appdate"
	"serotonyl.ru/progress-bot/internal/features/economy"
)

type fixture struct {
	pool    *pgxpool.Pool
	service *Service
	economy *economy.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pool := postgres.NewTestPool(t, postgres.Migrations)
	resolver := appdate.New(appdate.DefaultCutoffHour)
	resolver.Now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return &fixture{
		pool:    pool,
		service: NewService(NewRepository(pool, 5*time.Second), resolver, nil, 3),
		economy: economy.NewRepository(pool, 5*time.Second),
	}
}

func (f *fixture) addUser(t *testing.T, userID, balance int64) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.pool.Exec(ctx, `INSERT INTO members (user_id) VALUES ($1)`, userID); err != nil {
		t.Fatalf("seed member: %v", err)
	}
	_, err := f.pool.Exec(ctx,
		`INSERT INTO balances (user_id, balance, total_earned) VALUES ($1, $2, $2)`, userID, balance)
	if err != nil {
		t.Fatalf("seed balance: %v", err)
	}
}

func (f *fixture) catalogID(t *testing.T, cost int64) int64 {
	t.Helper()
	var id int64
	err := f.pool.QueryRow(context.Background(),
		`SELECT id FROM catalog_rewards WHERE cost = $1 ORDER BY id LIMIT 1`, cost).Scan(&id)
	if err != nil {
		t.Fatalf("catalog reward %d: %v", cost, err)
	}
	return id
}

func TestRedeemCatalog(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, 100)
	ctx := context.Background()

	p, err := f.service.Redeem(ctx, 1, Ref{Kind: KindCatalog, ID: f.catalogID(t, 60)})
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if p == nil || p.Cost != 60 || p.RewardKind != KindCatalog || p.PurchaseDate != "2024-05-01" {
		t.Fatalf("purchase: %+v", p)
	}

	b, err := f.economy.GetBalance(ctx, 1)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if b.Balance != 40 || b.TotalSpent != 60 || b.TotalEarned != 100 {
		t.Fatalf("balance after purchase: %+v", b)
	}

	list, err := f.service.ListPurchases(ctx, 1)
	if err != nil || len(list) != 1 || list[0].ID != p.ID {
		t.Fatalf("purchases: %+v err %v", list, err)
	}
}

func TestBuyRewardInsufficientBalance(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 2, 50)
	ctx := context.Background()

	ok, err := f.service.BuyReward(ctx, 2, Ref{Kind: KindCatalog, ID: f.catalogID(t, 150)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("purchase must fail with 50 < 150")
	}

	b, _ := f.economy.GetBalance(ctx, 2)
	if b.Balance != 50 || b.TotalSpent != 0 {
		t.Fatalf("failed purchase mutated balance: %+v", b)
	}
	if list, _ := f.service.ListPurchases(ctx, 2); len(list) != 0 {
		t.Fatalf("failed purchase wrote history: %+v", list)
	}
}

func TestRedeemCustomOwnership(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 3, 100)
	f.addUser(t, 4, 100)
	ctx := context.Background()

	rw, err := f.service.CreateCustom(ctx, 3, CustomInput{Name: "Пицца", Cost: 70})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.service.Redeem(ctx, 4, rw.Ref()); !errors.Is(err, common.ErrRewardNotFound) {
		t.Fatalf("foreign custom reward: %v", err)
	}
	if _, err := f.service.UpdateCustom(ctx, 4, rw.ID, CustomInput{Name: "Моё", Cost: 1}); !errors.Is(err, common.ErrRewardNotFound) {
		t.Fatalf("foreign update: %v", err)
	}

	p, err := f.service.Redeem(ctx, 3, rw.Ref())
	if err != nil || p == nil || p.RewardName != "Пицца" {
		t.Fatalf("own reward: %+v err %v", p, err)
	}

	// Удаление награды не трогает историю покупок
	if err := f.service.DeleteCustom(ctx, 3, rw.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.service.DeleteCustom(ctx, 3, rw.ID); !errors.Is(err, common.ErrRewardNotFound) {
		t.Fatalf("second delete: %v", err)
	}
	if list, _ := f.service.ListPurchases(ctx, 3); len(list) != 1 {
		t.Fatalf("history after delete: %+v", list)
	}
}

func TestCreateCustomLimit(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 5, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := f.service.CreateCustom(ctx, 5, CustomInput{Name: "Награда", Cost: 10}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	if _, err := f.service.CreateCustom(ctx, 5, CustomInput{Name: "Лишняя", Cost: 10}); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("limit: %v", err)
	}
}

func TestRedeemConcurrentNoOverspend(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 6, 100)
	ctx := context.Background()
	ref := Ref{Kind: KindCatalog, ID: f.catalogID(t, 30)}

	var wg sync.WaitGroup
	var mu sync.Mutex
	bought := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := f.service.BuyReward(ctx, 6, ref)
			if err != nil {
				t.Errorf("buy: %v", err)
				return
			}
			if ok {
				mu.Lock()
				bought++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if bought != 3 {
		t.Fatalf("bought %d times, want 3", bought)
	}
	b, _ := f.economy.GetBalance(ctx, 6)
	if b.Balance != 10 || b.TotalSpent != 90 {
		t.Fatalf("balance after concurrent purchases: %+v", b)
	}
}
