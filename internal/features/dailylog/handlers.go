// Package dailylog — handlers.go обрабатывает команды !лог, !прикинуть, !сегодня, !история.
package dailylog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/progress-bot/internal/common"
	"serotonyl.ru/progress-bot/internal/features/appdate"
	"serotonyl.ru/progress-bot/internal/features/members"
	"serotonyl.ru/progress-bot/internal/features/scoring"
	"serotonyl.ru/progress-bot/internal/features/streak"
)

// historyDays — сколько отчётов показывает !история
const historyDays = 7

const logUsage = "📝 Формат: !лог study=6 waste=0 wake=06:30 tasks=5/5 break=1 [date=2024-05-01] заметка"

// Handler обрабатывает команды отчётов.
type Handler struct {
	service  *Service
	resolver *appdate.Resolver
	bot      common.Sender
}

// NewHandler создаёт новый обработчик команд отчётов.
func NewHandler(service *Service, resolver *appdate.Resolver, bot common.Sender) *Handler {
	return &Handler{service: service, resolver: resolver, bot: bot}
}

// HandleLog обрабатывает !лог — сохраняет отчёт за сегодня (или за date=).
func (h *Handler) HandleLog(ctx context.Context, chatID int64, m *members.Member, args []string) {
	if len(args) == 0 {
		common.Reply(h.bot, chatID, logUsage)
		return
	}

	entry, date, err := ParseEntryArgs(args)
	if err != nil {
		common.Reply(h.bot, chatID, "❌ "+err.Error()+"\n"+logUsage)
		return
	}

	today, err := h.resolver.Today(m.Timezone)
	if err != nil {
		log.WithError(err).WithField("user_id", m.UserID).Error("Ошибка определения дня")
		common.Reply(h.bot, chatID, "❌ Не удалось определить день. Проверь часовой пояс: !tz")
		return
	}
	if date == "" {
		date = today
	}
	if normalized, err := appdate.NormalizeDate(date); err == nil && normalized > today {
		common.Reply(h.bot, chatID, "❌ Нельзя сдать отчёт за день, который ещё не наступил")
		return
	}

	res, err := h.service.SaveDailyLog(ctx, m.UserID, date, entry)
	if err != nil {
		h.replyError(chatID, m.UserID, err)
		return
	}
	common.Reply(h.bot, chatID, FormatSaveResult(res))
}

// HandlePreview обрабатывает !прикинуть — считает очки, ничего не сохраняя.
func (h *Handler) HandlePreview(chatID int64, args []string) {
	entry, _, err := ParseEntryArgs(args)
	if err == nil {
		err = entry.Validate()
	}
	if err != nil {
		common.Reply(h.bot, chatID, "❌ "+err.Error()+"\n"+logUsage)
		return
	}
	l := newLog(0, "", entry, scoring.CalculateScore(entry.Inputs))
	common.Reply(h.bot, chatID, "🧮 Прикидка, не сохранено\n\n"+formatBreakdown(l))
}

// HandleToday обрабатывает !сегодня — отчёт за текущий день.
func (h *Handler) HandleToday(ctx context.Context, chatID int64, m *members.Member) {
	today, err := h.resolver.Today(m.Timezone)
	if err != nil {
		h.replyError(chatID, m.UserID, err)
		return
	}

	l, err := h.service.GetLogForDate(ctx, m.UserID, today)
	if err != nil {
		h.replyError(chatID, m.UserID, err)
		return
	}
	if l == nil {
		common.Reply(h.bot, chatID, fmt.Sprintf("📭 За %s отчёта ещё нет\n%s", today, logUsage))
		return
	}
	common.Reply(h.bot, chatID, FormatLog(l))
}

// HandleHistory обрабатывает !история — последние 7 отчётов.
func (h *Handler) HandleHistory(ctx context.Context, chatID int64, m *members.Member) {
	logs, err := h.service.ListRecent(ctx, m.UserID, historyDays)
	if err != nil {
		h.replyError(chatID, m.UserID, err)
		return
	}
	if len(logs) == 0 {
		common.Reply(h.bot, chatID, "📭 Отчётов пока нет\n"+logUsage)
		return
	}

	var sb strings.Builder
	sb.WriteString("📅 Последние отчёты:\n\n")
	for _, l := range logs {
		fmt.Fprintf(&sb, "%s | %s | подъём %s\n", l.Date, common.FormatSignedPoints(int64(l.TotalScore)), l.WakeTime)
	}
	common.Reply(h.bot, chatID, sb.String())
}

func (h *Handler) replyError(chatID, userID int64, err error) {
	switch {
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrInvalidDate):
		common.Reply(h.bot, chatID, "❌ "+err.Error())
	case errors.Is(err, common.ErrInvalidTimezone):
		common.Reply(h.bot, chatID, "❌ Неизвестный часовой пояс. Поменяй его: !tz Europe/Moscow")
	case errors.Is(err, common.ErrUserNotFound):
		common.Reply(h.bot, chatID, "❌ Сначала напиши /start")
	default:
		log.WithError(err).WithField("user_id", userID).Error("Ошибка работы с отчётом")
		common.Reply(h.bot, chatID, "⚠️ Не получилось сохранить, попробуй ещё раз. Ничего не изменилось")
	}
}

// FormatLog показывает отчёт с раскладкой очков.
func FormatLog(l *DailyLog) string {
	return fmt.Sprintf("📝 Отчёт за %s\n\n", l.Date) + formatBreakdown(l)
}

func formatBreakdown(l *DailyLog) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📚 Учёба: %gч → %s\n", l.StudyHours, common.FormatSignedPoints(int64(l.StudyPoints)))
	fmt.Fprintf(&sb, "✅ Задачи: %d/%d → %s\n", l.TasksCompleted, l.TasksAssigned, common.FormatSignedPoints(int64(l.TaskPoints)))
	fmt.Fprintf(&sb, "⏰ Подъём: %s → %s\n", l.WakeTime, common.FormatSignedPoints(int64(l.WakePoints)))
	fmt.Fprintf(&sb, "🕳 Потеряно: %gч → %s\n", l.WastedHours, common.FormatSignedPoints(int64(l.WastePenalty)))
	if l.BreakHours > 0 {
		fmt.Fprintf(&sb, "☕ Перерывы: %gч\n", l.BreakHours)
	}
	fmt.Fprintf(&sb, "\nИтого: %s", common.FormatSignedPoints(int64(l.TotalScore)))
	if l.Notes != "" {
		fmt.Fprintf(&sb, "\n💬 %s", l.Notes)
	}
	return sb.String()
}

// FormatSaveResult — ответ на !лог: отчёт, изменение баланса и серия.
func FormatSaveResult(res *SaveResult) string {
	var sb strings.Builder
	sb.WriteString(FormatLog(res.Log))

	switch {
	case res.IsNew:
		fmt.Fprintf(&sb, "\n\n💰 Баланс: %s", common.FormatSignedPoints(res.Delta))
	case res.Delta == 0:
		sb.WriteString("\n\n✏️ Отчёт обновлён, счёт не изменился")
	default:
		fmt.Fprintf(&sb, "\n\n✏️ Отчёт обновлён, баланс: %s", common.FormatSignedPoints(res.Delta))
	}

	if res.Streak != nil {
		if res.Streak.Current > 0 {
			fmt.Fprintf(&sb, "\n%s Серия: %d %s", streakIcon(res.Streak), res.Streak.Current, common.PluralizeDays(res.Streak.Current))
		} else {
			sb.WriteString("\n🌑 Серия прервалась")
		}
	}
	return sb.String()
}

func streakIcon(s *streak.State) string {
	if s.Current == s.Best {
		return "🏆"
	}
	return "🔥"
}
