// Package streak — handlers.go обрабатывает команду !огонек.
// Показывает текущую серию, рекорд и последний день с отчётом.
package streak

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/progress-bot/internal/common"
	"serotonyl.ru/progress-bot/internal/features/members"
)

// Handler обрабатывает команды стрик-системы.
type Handler struct {
	service *Service
	bot     common.Sender
}

// NewHandler создаёт новый обработчик стрик-команд.
func NewHandler(service *Service, bot common.Sender) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleOgonek обрабатывает команду !огонек.
//
// Формат ответа:
//
//	🔥🔥 Костёр
//	Текущая серия: 8 дней
//	Лучшая серия: 12 дней
//	Последний отчёт: 2024-05-01
func (h *Handler) HandleOgonek(ctx context.Context, chatID int64, m *members.Member) {
	s, err := h.service.GetStreak(ctx, m.UserID)
	if err != nil {
		log.WithError(err).WithField("user_id", m.UserID).Error("Ошибка получения стрика")
		common.Reply(h.bot, chatID, "❌ Ошибка получения данных стрика")
		return
	}
	common.Reply(h.bot, chatID, formatStreak(s))
}

func formatStreak(s *Streak) string {
	var sb strings.Builder
	if level := FlameLevel(s.CurrentStreak); level != "" {
		sb.WriteString(level + "\n\n")
	} else {
		sb.WriteString("🌑 Огонёк погас. Сдай отчёт с плюсом, чтобы зажечь\n\n")
	}
	fmt.Fprintf(&sb, "Текущая серия: %d %s\n", s.CurrentStreak, common.PluralizeDays(s.CurrentStreak))
	fmt.Fprintf(&sb, "Лучшая серия: %d %s", s.BestStreak, common.PluralizeDays(s.BestStreak))
	if s.LastLogDate != nil {
		fmt.Fprintf(&sb, "\nПоследний отчёт: %s", s.LastLogDate.Format("2006-01-02"))
	}
	return sb.String()
}
