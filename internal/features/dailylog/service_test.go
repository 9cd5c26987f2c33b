package dailylog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/progress-bot/internal/common"
	"serotonyl.ru/progress-bot/internal/db/postgres"
	"serotonyl.ru/progress-bot/internal/features/economy"
	"serotonyl.ru/progress-bot/internal/features/scoring"
	"serotonyl.ru/progress-bot/internal/features/streak"
)

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (c *countingInvalidator) Invalidate(context.Context) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

type fixture struct {
	pool     *pgxpool.Pool
	service  *Service
	economy  *economy.Repository
	streaks  *streak.Repository
	invalids *countingInvalidator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pool := postgres.NewTestPool(t, postgres.Migrations)
	inv := &countingInvalidator{}
	streakRepo := streak.NewRepository(pool, 5*time.Second)
	return &fixture{
		pool:     pool,
		service:  NewService(NewRepository(pool, 5*time.Second), streak.NewService(streakRepo), inv),
		economy:  economy.NewRepository(pool, 5*time.Second),
		streaks:  streakRepo,
		invalids: inv,
	}
}

func (f *fixture) addUser(t *testing.T, userID int64) {
	t.Helper()
	ctx := context.Background()
	for _, q := range []string{
		`INSERT INTO members (user_id) VALUES ($1)`,
		`INSERT INTO balances (user_id) VALUES ($1)`,
		`INSERT INTO streaks (user_id) VALUES ($1)`,
	} {
		if _, err := f.pool.Exec(ctx, q, userID); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
}

func (f *fixture) balance(t *testing.T, userID int64) *economy.Balance {
	t.Helper()
	b, err := f.economy.GetBalance(context.Background(), userID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	return b
}

func entry(study float64, wake string, assigned, completed int) Entry {
	return Entry{Inputs: scoring.Inputs{
		StudyHours: study, WakeTime: wake, TasksAssigned: assigned, TasksCompleted: completed,
	}}
}

func TestSaveDailyLogNewAndResubmit(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1)
	ctx := context.Background()

	res, err := f.service.SaveDailyLog(ctx, 1, "2024-05-01", entry(6, "06:30", 5, 5))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !res.IsNew || res.Delta != 55 || res.Log.TotalScore != 55 {
		t.Fatalf("first save: %+v", res)
	}
	if res.Streak == nil || *res.Streak != (streak.State{Current: 1, Best: 1}) {
		t.Fatalf("streak: %+v", res.Streak)
	}

	// Та же отправка второй раз: дельта 0, баланс не меняется
	res, err = f.service.SaveDailyLog(ctx, 1, "2024-05-01", entry(6, "06:30", 5, 5))
	if err != nil {
		t.Fatalf("resave: %v", err)
	}
	if res.IsNew || res.Delta != 0 || res.Streak != nil {
		t.Fatalf("resubmit: %+v", res)
	}
	if b := f.balance(t, 1); b.Balance != 55 || b.TotalEarned != 55 {
		t.Fatalf("balance after resubmit: %+v", b)
	}

	got, err := f.service.GetLogForDate(ctx, 1, "2024-05-01")
	if err != nil || got == nil || got.TotalScore != 55 || got.Date != "2024-05-01" {
		t.Fatalf("GetLogForDate: %+v err %v", got, err)
	}
	missing, err := f.service.GetLogForDate(ctx, 1, "2024-05-02")
	if err != nil || missing != nil {
		t.Fatalf("missing day: %+v err %v", missing, err)
	}
}

func TestSaveDailyLogEditDown(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 2)
	ctx := context.Background()

	// 10 часов учёбы = 50, без задач и с поздним подъёмом
	if _, err := f.service.SaveDailyLog(ctx, 2, "2024-05-01", entry(10, "09:00", 0, 0)); err != nil {
		t.Fatalf("save: %v", err)
	}
	// правка: 4 часа = 20
	res, err := f.service.SaveDailyLog(ctx, 2, "2024-05-01", entry(4, "09:00", 0, 0))
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if res.Delta != -30 || res.IsNew {
		t.Fatalf("edit result: %+v", res)
	}
	if b := f.balance(t, 2); b.Balance != 20 || b.TotalEarned != 50 {
		t.Fatalf("balance after edit down: %+v", b)
	}

	// Правка в минус не трогает серию
	if _, err := f.service.SaveDailyLog(ctx, 2, "2024-05-01", entry(0, "09:00", 5, 1)); err != nil {
		t.Fatalf("edit to negative: %v", err)
	}
	s, err := f.streaks.GetByUserID(ctx, 2)
	if err != nil {
		t.Fatalf("streak: %v", err)
	}
	if s.CurrentStreak != 1 || s.BestStreak != 1 {
		t.Fatalf("edit must not touch streak: %+v", s)
	}

	var mirrored int
	if err := f.pool.QueryRow(ctx, `SELECT current_streak FROM members WHERE user_id = 2`).Scan(&mirrored); err != nil {
		t.Fatalf("members mirror: %v", err)
	}
	if mirrored != 1 {
		t.Fatalf("members.current_streak = %d, want 1", mirrored)
	}
}

func TestSaveDailyLogNegativeNewDayResetsStreak(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 3)
	ctx := context.Background()

	for _, d := range []string{"2024-05-01", "2024-05-02"} {
		if _, err := f.service.SaveDailyLog(ctx, 3, d, entry(6, "06:30", 5, 5)); err != nil {
			t.Fatalf("save %s: %v", d, err)
		}
	}
	res, err := f.service.SaveDailyLog(ctx, 3, "2024-05-03", Entry{Inputs: scoring.Inputs{
		WastedHours: 4, WakeTime: "09:00", TasksAssigned: 5, TasksCompleted: 2,
	}})
	if err != nil {
		t.Fatalf("save negative: %v", err)
	}
	if res.Log.TotalScore != -30 {
		t.Fatalf("score: %d", res.Log.TotalScore)
	}
	if *res.Streak != (streak.State{Current: 0, Best: 2}) {
		t.Fatalf("streak: %+v", res.Streak)
	}
	if b := f.balance(t, 3); b.Balance != 80 || b.TotalEarned != 110 {
		t.Fatalf("balance: %+v", b)
	}
}

func TestSaveDailyLogValidation(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 4)
	ctx := context.Background()

	_, err := f.service.SaveDailyLog(ctx, 4, "2024-05-01", entry(-1, "06:30", 1, 1))
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("negative hours: %v", err)
	}
	_, err = f.service.SaveDailyLog(ctx, 4, "01.05.2024", entry(1, "06:30", 1, 1))
	if !errors.Is(err, common.ErrInvalidDate) {
		t.Fatalf("bad date: %v", err)
	}
	_, err = f.service.SaveDailyLog(ctx, 999, "2024-05-01", entry(1, "06:30", 1, 1))
	if !errors.Is(err, common.ErrUserNotFound) {
		t.Fatalf("unknown user: %v", err)
	}
	if b := f.balance(t, 4); b.Balance != 0 {
		t.Fatalf("validation must not mutate: %+v", b)
	}
}

func TestSaveDailyLogConcurrentSameDay(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 5)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.SaveDailyLog(ctx, 5, "2024-05-01", entry(6, "06:30", 5, 5))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent save: %v", err)
		}
	}

	if b := f.balance(t, 5); b.Balance != 55 || b.TotalEarned != 55 {
		t.Fatalf("balance after concurrent saves: %+v", b)
	}
	s, err := f.streaks.GetByUserID(ctx, 5)
	if err != nil || s.CurrentStreak != 1 || s.TotalLogs != 1 {
		t.Fatalf("streak after concurrent saves: %+v err %v", s, err)
	}
	if f.invalids.calls != 1 {
		t.Fatalf("cache must be dropped once, got %d", f.invalids.calls)
	}
}
