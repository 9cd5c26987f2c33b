// Package members — handlers.go обрабатывает команды профиля: !tz и !аватар.
package members

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/progress-bot/internal/common"
)

// Handler обрабатывает команды профиля.
type Handler struct {
	service *Service
	bot     common.Sender
}

// NewHandler создаёт новый обработчик команд профиля.
func NewHandler(service *Service, bot common.Sender) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleTimezone обрабатывает !tz Europe/Moscow. Без аргумента показывает текущий пояс.
func (h *Handler) HandleTimezone(ctx context.Context, chatID int64, m *Member, args []string) {
	if len(args) == 0 {
		common.Reply(h.bot, chatID, fmt.Sprintf("🌍 Твой часовой пояс: %s\nСменить: !tz Europe/Moscow", m.Timezone))
		return
	}

	err := h.service.SetTimezone(ctx, m.UserID, args[0])
	switch {
	case err == nil:
		common.Reply(h.bot, chatID, fmt.Sprintf("✅ Часовой пояс: %s", args[0]))
	case errors.Is(err, common.ErrInvalidTimezone):
		common.Reply(h.bot, chatID, "❌ Неизвестный часовой пояс. Пример: Europe/Moscow, Asia/Tokyo")
	default:
		log.WithError(err).WithField("user_id", m.UserID).Error("Ошибка смены часового пояса")
		common.Reply(h.bot, chatID, "❌ Не получилось сохранить, попробуй ещё раз")
	}
}

// HandleAvatar сохраняет самое большое фото из сообщения как аватар.
func (h *Handler) HandleAvatar(ctx context.Context, chatID int64, m *Member, photos []tgbotapi.PhotoSize) {
	if len(photos) == 0 {
		common.Reply(h.bot, chatID, "📷 Пришли фото с подписью !аватар")
		return
	}
	// Telegram присылает размеры по возрастанию
	fileID := photos[len(photos)-1].FileID
	if err := h.service.SetAvatar(ctx, m.UserID, fileID); err != nil {
		log.WithError(err).WithField("user_id", m.UserID).Error("Ошибка сохранения аватара")
		common.Reply(h.bot, chatID, "❌ Не получилось сохранить, попробуй ещё раз")
		return
	}
	common.Reply(h.bot, chatID, "✅ Аватар обновлён")
}
