// Package friends — handlers.go обрабатывает команды !друг+, !друг-, !друзья.
package friends

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/progress-bot/internal/common"
	"serotonyl.ru/progress-bot/internal/features/members"
)

// Handler обрабатывает команды друзей.
type Handler struct {
	service *Service
	bot     common.Sender
}

// NewHandler создаёт обработчик друзей.
func NewHandler(service *Service, bot common.Sender) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleAdd — !друг+ @username.
func (h *Handler) HandleAdd(ctx context.Context, chatID int64, m *members.Member, args []string) {
	if len(args) != 1 {
		common.Reply(h.bot, chatID, "📝 Формат: !друг+ @username")
		return
	}
	friend, err := h.service.AddByUsername(ctx, m.UserID, args[0])
	if err != nil {
		h.replyError(chatID, m.UserID, err)
		return
	}
	common.Reply(h.bot, chatID, fmt.Sprintf("🤝 %s теперь в друзьях. Список: !друзья", friend.Name()))
}

// HandleRemove — !друг- @username.
func (h *Handler) HandleRemove(ctx context.Context, chatID int64, m *members.Member, args []string) {
	if len(args) != 1 {
		common.Reply(h.bot, chatID, "📝 Формат: !друг- @username")
		return
	}
	friend, err := h.service.RemoveByUsername(ctx, m.UserID, args[0])
	if err != nil {
		h.replyError(chatID, m.UserID, err)
		return
	}
	common.Reply(h.bot, chatID, fmt.Sprintf("👋 %s больше не в друзьях", friend.Name()))
}

// HandleList — !друзья: прогресс каждого друга.
func (h *Handler) HandleList(ctx context.Context, chatID int64, m *members.Member) {
	list, err := h.service.List(ctx, m.UserID)
	if err != nil {
		h.replyError(chatID, m.UserID, err)
		return
	}
	common.Reply(h.bot, chatID, FormatFriends(list))
}

func (h *Handler) replyError(chatID, userID int64, err error) {
	switch {
	case errors.Is(err, common.ErrSelfFriend),
		errors.Is(err, common.ErrAlreadyFriends),
		errors.Is(err, common.ErrNotFriends):
		common.Reply(h.bot, chatID, "❌ "+err.Error())
	case errors.Is(err, common.ErrUserNotFound):
		common.Reply(h.bot, chatID, "❌ Такого участника нет. Он должен хотя бы раз написать боту")
	default:
		log.WithError(err).WithField("user_id", userID).Error("Ошибка работы с друзьями")
		common.Reply(h.bot, chatID, "⚠️ Не получилось, попробуй ещё раз")
	}
}

// FormatFriends показывает друзей: баланс, серия и отчёт за сегодня.
func FormatFriends(list []*Friend) string {
	if len(list) == 0 {
		return "👥 Друзей пока нет. Добавь: !друг+ @username"
	}

	var sb strings.Builder
	sb.WriteString("👥 Друзья:\n\n")
	for _, f := range list {
		today := "отчёта ещё нет"
		if f.TodayScore != nil {
			today = "сегодня " + common.FormatSignedPoints(int64(*f.TodayScore))
		}
		flame := "▫️"
		if f.CurrentStreak > 0 {
			flame = "🔥"
		}
		fmt.Fprintf(&sb, "%s | 💰 %s | %s %d %s | %s\n",
			f.Name(),
			common.FormatBalance(f.Balance),
			flame, f.CurrentStreak, common.PluralizeDays(f.CurrentStreak),
			today,
		)
	}
	return sb.String()
}
