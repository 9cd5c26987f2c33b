// Package economy — handlers.go обрабатывает команды:
// !баланс (баланс и заработано за всё время), !транзакции (история).
package economy

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/progress-bot/internal/common"
	"serotonyl.ru/progress-bot/internal/features/members"
)

// Handler обрабатывает команды экономики.
type Handler struct {
	service *Service
	bot     common.Sender
}

// NewHandler создаёт новый обработчик экономических команд.
func NewHandler(service *Service, bot common.Sender) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleBalance обрабатывает команду !баланс.
//
// Формат ответа:
//
//	💰 Баланс: 150 очков
//	📈 Заработано всего: 320 очков
//	🛍 Потрачено: 170 очков
func (h *Handler) HandleBalance(ctx context.Context, chatID int64, m *members.Member) {
	b, err := h.service.GetBalance(ctx, m.UserID)
	if err != nil {
		log.WithError(err).WithField("user_id", m.UserID).Error("Ошибка получения баланса")
		common.Reply(h.bot, chatID, "❌ Ошибка получения баланса, попробуй ещё раз")
		return
	}

	text := fmt.Sprintf("💰 Баланс: %s\n📈 Заработано всего: %s\n🛍 Потрачено: %s",
		common.FormatBalance(b.Balance),
		common.FormatBalance(b.TotalEarned),
		common.FormatBalance(b.TotalSpent),
	)
	common.Reply(h.bot, chatID, text)
}

// HandleTransactions обрабатывает команду !транзакции — последние 10 операций.
// Больше пяти строк — хвост прячется под спойлер.
func (h *Handler) HandleTransactions(ctx context.Context, chatID int64, m *members.Member) {
	lines, err := h.service.GetTransactionHistory(ctx, m.UserID, m.Timezone)
	if err != nil {
		log.WithError(err).WithField("user_id", m.UserID).Error("Ошибка получения транзакций")
		common.Reply(h.bot, chatID, "❌ Ошибка получения истории транзакций")
		return
	}
	if len(lines) == 0 {
		common.Reply(h.bot, chatID, "📋 У тебя пока нет транзакций")
		return
	}

	plain, markdown := renderHistory(lines)

	msg := tgbotapi.NewMessage(chatID, markdown)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := h.bot.Send(msg); err != nil {
		// Если MarkdownV2 не сработал — отправляем без форматирования
		common.Reply(h.bot, chatID, plain)
	}
}

// renderHistory собирает историю в двух видах: простой текст и MarkdownV2 со спойлером.
func renderHistory(lines []string) (string, string) {
	header := fmt.Sprintf("📋 Последние %d транзакций:\n\n", len(lines))

	var plain, md strings.Builder
	plain.WriteString(header)
	md.WriteString(tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, header))

	for i, line := range lines {
		plain.WriteString(line + "\n")
		escaped := tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, line)
		if i == 5 {
			md.WriteString("\n||")
		}
		md.WriteString(escaped + "\n")
	}
	if len(lines) > 5 {
		md.WriteString("||")
	}
	return plain.String(), md.String()
}
