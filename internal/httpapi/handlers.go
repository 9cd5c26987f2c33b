package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"serotonyl.ru/progress-bot/internal/common"
	"serotonyl.ru/progress-bot/internal/features/appdate"
	"serotonyl.ru/progress-bot/internal/features/dailylog"
	"serotonyl.ru/progress-bot/internal/features/economy"
	"serotonyl.ru/progress-bot/internal/features/leaderboard"
	"serotonyl.ru/progress-bot/internal/features/members"
	"serotonyl.ru/progress-bot/internal/features/rewards"
	"serotonyl.ru/progress-bot/internal/features/scoring"
)

// Сервисы, которые нужны API. Реализуются пакетами features.
type (
	MemberService interface {
		GetByUserID(ctx context.Context, userID int64) (*members.Member, error)
	}
	LogService interface {
		SaveDailyLog(ctx context.Context, userID int64, date string, e dailylog.Entry) (*dailylog.SaveResult, error)
		GetLogForDate(ctx context.Context, userID int64, date string) (*dailylog.DailyLog, error)
	}
	BalanceService interface {
		GetBalance(ctx context.Context, userID int64) (*economy.Balance, error)
	}
	RewardService interface {
		ListAvailable(ctx context.Context, userID int64) ([]*rewards.Reward, error)
		Redeem(ctx context.Context, userID int64, ref rewards.Ref) (*rewards.Purchase, error)
	}
	LeaderboardService interface {
		Top(ctx context.Context, limit int) ([]*leaderboard.Entry, error)
	}
)

// Deps — зависимости обработчиков.
type Deps struct {
	Members     MemberService
	Logs        LogService
	Balances    BalanceService
	Rewards     RewardService
	Leaderboard LeaderboardService
	Resolver    *appdate.Resolver
}

type handlers struct {
	deps Deps
}

type meResponse struct {
	Member  *members.Member  `json:"member"`
	Balance *economy.Balance `json:"balance"`
	Today   string           `json:"today"`
}

// GET /api/me
func (h *handlers) me(c echo.Context) error {
	ctx := c.Request().Context()
	uid := currentUser(c)

	m, err := h.deps.Members.GetByUserID(ctx, uid)
	if err != nil {
		return writeError(c, err)
	}
	bal, err := h.deps.Balances.GetBalance(ctx, uid)
	if err != nil {
		return writeError(c, err)
	}
	today, err := h.deps.Resolver.Today(m.Timezone)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, meResponse{Member: m, Balance: bal, Today: today})
}

// resolveDate превращает :date в дату ГГГГ-ММ-ДД; "today" — текущий день пользователя.
// Дни из будущего не принимаются.
func (h *handlers) resolveDate(ctx context.Context, c echo.Context) (string, error) {
	m, err := h.deps.Members.GetByUserID(ctx, currentUser(c))
	if err != nil {
		return "", err
	}
	today, err := h.deps.Resolver.Today(m.Timezone)
	if err != nil {
		return "", err
	}

	raw := c.Param("date")
	if raw == "today" {
		return today, nil
	}
	date, err := appdate.NormalizeDate(raw)
	if err != nil {
		return "", err
	}
	if date > today {
		return "", fmt.Errorf("день %s ещё не наступил: %w", date, common.ErrValidation)
	}
	return date, nil
}

// GET /api/logs/:date
func (h *handlers) getLog(c echo.Context) error {
	ctx := c.Request().Context()
	date, err := h.resolveDate(ctx, c)
	if err != nil {
		return writeError(c, err)
	}

	l, err := h.deps.Logs.GetLogForDate(ctx, currentUser(c), date)
	if err != nil {
		return writeError(c, err)
	}
	if l == nil {
		return c.JSON(http.StatusNotFound, errorBody("not_found"))
	}
	return c.JSON(http.StatusOK, l)
}

// PUT /api/logs/:date — создать или перезаписать отчёт за день.
func (h *handlers) putLog(c echo.Context) error {
	ctx := c.Request().Context()

	var entry dailylog.Entry
	if err := c.Bind(&entry); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("bad_json"))
	}
	date, err := h.resolveDate(ctx, c)
	if err != nil {
		return writeError(c, err)
	}

	res, err := h.deps.Logs.SaveDailyLog(ctx, currentUser(c), date, entry)
	if err != nil {
		return writeError(c, err)
	}
	status := http.StatusOK
	if res.IsNew {
		status = http.StatusCreated
	}
	return c.JSON(status, res)
}

// POST /api/score — посчитать очки без сохранения.
func (h *handlers) previewScore(c echo.Context) error {
	var in scoring.Inputs
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("bad_json"))
	}
	if err := in.Validate(); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, scoring.CalculateScore(in))
}

// GET /api/rewards
func (h *handlers) listRewards(c echo.Context) error {
	list, err := h.deps.Rewards.ListAvailable(c.Request().Context(), currentUser(c))
	if err != nil {
		return writeError(c, err)
	}
	if list == nil {
		list = []*rewards.Reward{}
	}
	return c.JSON(http.StatusOK, list)
}

type buyResponse struct {
	OK       bool              `json:"ok"`
	Purchase *rewards.Purchase `json:"purchase,omitempty"`
}

// POST /api/rewards/buy {"kind":"catalog","id":3}
// Нехватка очков — 409 с ok=false, баланс при этом не меняется.
func (h *handlers) buyReward(c echo.Context) error {
	var ref rewards.Ref
	if err := c.Bind(&ref); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("bad_json"))
	}
	if err := ref.Validate(); err != nil {
		return writeError(c, err)
	}

	p, err := h.deps.Rewards.Redeem(c.Request().Context(), currentUser(c), ref)
	if err != nil {
		return writeError(c, err)
	}
	if p == nil {
		return c.JSON(http.StatusConflict, buyResponse{OK: false})
	}
	return c.JSON(http.StatusOK, buyResponse{OK: true, Purchase: p})
}

// GET /api/leaderboard?limit=10
func (h *handlers) leaderboard(c echo.Context) error {
	limit := leaderboard.TopSize
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, errorBody("invalid_input"))
		}
		limit = n
	}

	entries, err := h.deps.Leaderboard.Top(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, err)
	}
	if entries == nil {
		entries = []*leaderboard.Entry{}
	}
	return c.JSON(http.StatusOK, entries)
}
