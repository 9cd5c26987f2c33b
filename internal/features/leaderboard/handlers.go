// Package leaderboard — handlers.go обрабатывает команду !топ.
package leaderboard

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/progress-bot/internal/common"
	"serotonyl.ru/progress-bot/internal/features/members"
)

// chatTop — сколько строк показывать в чате
const chatTop = 10

var medals = map[int]string{1: "🥇", 2: "🥈", 3: "🥉"}

// Handler обрабатывает команду рейтинга.
type Handler struct {
	service *Service
	bot     common.Sender
}

// NewHandler создаёт обработчик рейтинга.
func NewHandler(service *Service, bot common.Sender) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleTop — !топ (общий) или !топ друзья.
func (h *Handler) HandleTop(ctx context.Context, chatID int64, m *members.Member, args []string) {
	var (
		entries []*Entry
		title   string
		err     error
	)
	if len(args) > 0 && strings.HasPrefix(strings.ToLower(args[0]), "друз") {
		title = "👥 Рейтинг среди друзей"
		entries, err = h.service.Circle(ctx, m.UserID)
	} else {
		title = "🏆 Общий рейтинг"
		entries, err = h.service.Top(ctx, chatTop)
	}
	if err != nil {
		log.WithError(err).WithField("user_id", m.UserID).Error("Ошибка получения рейтинга")
		common.Reply(h.bot, chatID, "⚠️ Рейтинг сейчас недоступен, попробуй позже")
		return
	}
	common.Reply(h.bot, chatID, FormatBoard(title, entries, m.UserID))
}

// FormatBoard показывает рейтинг. Строка пользователя отмечена стрелкой.
func FormatBoard(title string, entries []*Entry, userID int64) string {
	if len(entries) == 0 {
		return title + "\n\nПока пусто. Сдай первый отчёт: !лог"
	}

	var sb strings.Builder
	sb.WriteString(title + ":\n\n")
	for _, e := range entries {
		place, ok := medals[e.Rank]
		if !ok {
			place = fmt.Sprintf("%d.", e.Rank)
		}
		marker := ""
		if e.UserID == userID {
			marker = " ⬅️"
		}
		fmt.Fprintf(&sb, "%s %s | %s | 🔥 %d%s\n",
			place, e.Name(), common.FormatBalance(e.TotalEarned), e.CurrentStreak, marker)
	}
	return sb.String()
}
