package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"serotonyl.ru/progress-bot/internal/auth"
	"serotonyl.ru/progress-bot/internal/common"
	"serotonyl.ru/progress-bot/internal/features/appdate"
	"serotonyl.ru/progress-bot/internal/features/dailylog"
	"serotonyl.ru/progress-bot/internal/features/economy"
	"serotonyl.ru/progress-bot/internal/features/leaderboard"
	"serotonyl.ru/progress-bot/internal/features/members"
	"serotonyl.ru/progress-bot/internal/features/rewards"
	"serotonyl.ru/progress-bot/internal/features/scoring"
)

const testUser int64 = 42

type fakeMembers struct{}

func (fakeMembers) GetByUserID(_ context.Context, userID int64) (*members.Member, error) {
	if userID != testUser {
		return nil, common.ErrUserNotFound
	}
	return &members.Member{UserID: userID, Username: "ivan", Timezone: "UTC"}, nil
}

type fakeLogs struct {
	saved map[string]dailylog.Entry
}

func (f *fakeLogs) SaveDailyLog(_ context.Context, userID int64, date string, e dailylog.Entry) (*dailylog.SaveResult, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	_, existed := f.saved[date]
	f.saved[date] = e
	score := scoring.CalculateScore(e.Inputs)
	return &dailylog.SaveResult{
		Log:   &dailylog.DailyLog{UserID: userID, Date: date, TotalScore: score.Total},
		IsNew: !existed,
		Delta: int64(score.Total),
	}, nil
}

func (f *fakeLogs) GetLogForDate(_ context.Context, userID int64, date string) (*dailylog.DailyLog, error) {
	e, ok := f.saved[date]
	if !ok {
		return nil, nil
	}
	return &dailylog.DailyLog{UserID: userID, Date: date, WakeTime: e.WakeTime, StudyHours: e.StudyHours}, nil
}

type fakeBalances struct{}

func (fakeBalances) GetBalance(_ context.Context, userID int64) (*economy.Balance, error) {
	return &economy.Balance{UserID: userID, Balance: 100, TotalEarned: 150, TotalSpent: 50}, nil
}

type fakeRewards struct {
	balance int64
}

func (f *fakeRewards) ListAvailable(context.Context, int64) ([]*rewards.Reward, error) {
	return []*rewards.Reward{{Kind: rewards.KindCatalog, ID: 1, Name: "Кино", Cost: 60}}, nil
}

func (f *fakeRewards) Redeem(_ context.Context, userID int64, ref rewards.Ref) (*rewards.Purchase, error) {
	if ref.Kind == rewards.KindCustom {
		return nil, common.ErrRewardNotFound
	}
	if f.balance < 60 {
		return nil, nil
	}
	f.balance -= 60
	return &rewards.Purchase{ID: uuid.New(), UserID: userID, RewardKind: ref.Kind, RewardID: ref.ID, Cost: 60}, nil
}

type fakeBoard struct {
	err error
}

func (f fakeBoard) Top(_ context.Context, limit int) ([]*leaderboard.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	all := []*leaderboard.Entry{{Rank: 1, UserID: 1}, {Rank: 2, UserID: 2}, {Rank: 3, UserID: 3}}
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

type testEnv struct {
	handler http.Handler
	token   string
	logs    *fakeLogs
	rewards *fakeRewards
}

func newTestEnv(t *testing.T, board fakeBoard) *testEnv {
	t.Helper()
	tokens := auth.NewManager("0123456789abcdef", time.Hour)
	token, _, err := tokens.Issue(testUser)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	resolver := appdate.New(appdate.DefaultCutoffHour)
	resolver.Now = func() time.Time { return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC) }

	env := &testEnv{
		token:   token,
		logs:    &fakeLogs{saved: map[string]dailylog.Entry{}},
		rewards: &fakeRewards{balance: 100},
	}
	srv := New("", Deps{
		Members:     fakeMembers{},
		Logs:        env.logs,
		Balances:    fakeBalances{},
		Rewards:     env.rewards,
		Leaderboard: board,
		Resolver:    resolver,
	}, tokens)
	env.handler = srv.Handler()
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, fakeBoard{})
	if rec := env.do(t, http.MethodGet, "/healthz", "", false); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t, fakeBoard{})

	rec := env.do(t, http.MethodGet, "/api/me", "", false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status = %d", rec.Code)
	}
}

func TestMe(t *testing.T) {
	env := newTestEnv(t, fakeBoard{})
	rec := env.do(t, http.MethodGet, "/api/me", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body)
	}
	var got struct {
		Member  members.Member  `json:"member"`
		Balance economy.Balance `json:"balance"`
		Today   string          `json:"today"`
	}
	decode(t, rec, &got)
	if got.Member.UserID != testUser || got.Balance.Balance != 100 || got.Today != "2024-05-10" {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestPutLog(t *testing.T) {
	env := newTestEnv(t, fakeBoard{})
	body := `{"study_hours":6,"wasted_hours":0,"wake_time":"06:30","tasks_assigned":5,"tasks_completed":5,"notes":"ok"}`

	rec := env.do(t, http.MethodPut, "/api/logs/today", body, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first save: status = %d body %s", rec.Code, rec.Body)
	}
	saved, ok := env.logs.saved["2024-05-10"]
	if !ok {
		t.Fatalf("log not saved under today's date: %v", env.logs.saved)
	}
	if saved.StudyHours != 6 || saved.Notes != "ok" || saved.TasksCompleted != 5 {
		t.Fatalf("entry not bound: %+v", saved)
	}

	rec = env.do(t, http.MethodPut, "/api/logs/2024-05-10", body, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("overwrite: status = %d", rec.Code)
	}
}

func TestPutLogRejects(t *testing.T) {
	env := newTestEnv(t, fakeBoard{})
	valid := `{"study_hours":1,"wake_time":"07:00"}`

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"future date", "/api/logs/2024-05-11", valid, http.StatusBadRequest},
		{"bad date", "/api/logs/10.05.2024", valid, http.StatusBadRequest},
		{"bad json", "/api/logs/today", `{"study_hours":`, http.StatusBadRequest},
		{"invalid wake", "/api/logs/today", `{"study_hours":1,"wake_time":"25:00"}`, http.StatusBadRequest},
		{"too many hours", "/api/logs/today", `{"study_hours":25,"wake_time":"07:00"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := env.do(t, http.MethodPut, tt.path, tt.body, true); rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body)
			}
		})
	}
	if len(env.logs.saved) != 0 {
		t.Fatalf("rejected requests saved logs: %v", env.logs.saved)
	}
}

func TestGetLog(t *testing.T) {
	env := newTestEnv(t, fakeBoard{})
	if rec := env.do(t, http.MethodGet, "/api/logs/2024-05-09", "", true); rec.Code != http.StatusNotFound {
		t.Fatalf("missing log: status = %d", rec.Code)
	}

	env.logs.saved["2024-05-09"] = dailylog.Entry{Inputs: scoring.Inputs{StudyHours: 3, WakeTime: "08:00"}}
	rec := env.do(t, http.MethodGet, "/api/logs/2024-05-09", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got dailylog.DailyLog
	decode(t, rec, &got)
	if got.Date != "2024-05-09" || got.StudyHours != 3 {
		t.Fatalf("unexpected log: %+v", got)
	}
}

func TestBuyReward(t *testing.T) {
	env := newTestEnv(t, fakeBoard{})
	body := `{"kind":"catalog","id":1}`

	rec := env.do(t, http.MethodPost, "/api/rewards/buy", body, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("first buy: status = %d body %s", rec.Code, rec.Body)
	}
	var ok buyResponse
	decode(t, rec, &ok)
	if !ok.OK || ok.Purchase == nil || ok.Purchase.Cost != 60 {
		t.Fatalf("unexpected response: %+v", ok)
	}

	// 40 очков — на вторую не хватает
	rec = env.do(t, http.MethodPost, "/api/rewards/buy", body, true)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second buy: status = %d", rec.Code)
	}
	var fail buyResponse
	decode(t, rec, &fail)
	if fail.OK || fail.Purchase != nil {
		t.Fatalf("unexpected response: %+v", fail)
	}
	if env.rewards.balance != 40 {
		t.Fatalf("balance = %d, want 40", env.rewards.balance)
	}

	tests := []struct {
		name string
		body string
		want int
	}{
		{"unknown kind", `{"kind":"gift","id":1}`, http.StatusBadRequest},
		{"zero id", `{"kind":"catalog","id":0}`, http.StatusNotFound},
		{"foreign custom", `{"kind":"custom","id":9}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := env.do(t, http.MethodPost, "/api/rewards/buy", tt.body, true); rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestPreviewScore(t *testing.T) {
	env := newTestEnv(t, fakeBoard{})

	in := scoring.Inputs{StudyHours: 6, WakeTime: "06:30", TasksAssigned: 5, TasksCompleted: 5}
	raw, _ := json.Marshal(in)
	rec := env.do(t, http.MethodPost, "/api/score", string(raw), false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body)
	}
	var got scoring.Score
	decode(t, rec, &got)
	if want := scoring.CalculateScore(in); got != want {
		t.Fatalf("score = %+v, want %+v", got, want)
	}

	if rec := env.do(t, http.MethodPost, "/api/score", `{"study_hours":-1,"wake_time":"06:30"}`, false); rec.Code != http.StatusBadRequest {
		t.Fatalf("negative hours: status = %d", rec.Code)
	}
}

func TestLeaderboard(t *testing.T) {
	env := newTestEnv(t, fakeBoard{})
	rec := env.do(t, http.MethodGet, "/api/leaderboard?limit=2", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got []leaderboard.Entry
	decode(t, rec, &got)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	if rec := env.do(t, http.MethodGet, "/api/leaderboard?limit=abc", "", true); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit: status = %d", rec.Code)
	}
}

func TestStorageErrorIsRetryable(t *testing.T) {
	env := newTestEnv(t, fakeBoard{err: errors.New("connection refused")})
	rec := env.do(t, http.MethodGet, "/api/leaderboard", "", true)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Fatalf("storage details leaked: %s", rec.Body)
	}
}
