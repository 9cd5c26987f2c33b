// Package bot содержит главный модуль бота — запуск polling, разбор и маршрутизацию команд.
package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/progress-bot/internal/auth"
	"serotonyl.ru/progress-bot/internal/bot/filters"
	"serotonyl.ru/progress-bot/internal/bot/middleware"
	"serotonyl.ru/progress-bot/internal/common"
	"serotonyl.ru/progress-bot/internal/config"
	"serotonyl.ru/progress-bot/internal/features/dailylog"
	"serotonyl.ru/progress-bot/internal/features/economy"
	"serotonyl.ru/progress-bot/internal/features/friends"
	"serotonyl.ru/progress-bot/internal/features/leaderboard"
	"serotonyl.ru/progress-bot/internal/features/members"
	"serotonyl.ru/progress-bot/internal/features/rewards"
	"serotonyl.ru/progress-bot/internal/features/streak"
)

const helpText = `📈 Трекер прогресса: сдавай отчёт за день, копи очки и трать их на награды.

📝 Отчёт
!лог study=6 waste=0 wake=06:30 tasks=5/5 break=1 заметка
!прикинуть study=6 wake=06:30 tasks=5/5 — посчитать без сохранения
!сегодня, !история

💰 Очки
!баланс, !транзакции, !огонек

🎁 Награды
!награды, !купить к3, !покупки
!награда+ 50 Пицца, !награда= м5 80 Пицца, !награда- м5

👥 Друзья и рейтинг
!друг+ @username, !друг- @username, !друзья
!топ, !топ друзья

⚙️ Профиль
!tz Europe/Moscow, фото с подписью !аватар, !токен (доступ к API)

День начинается в 05:00 по твоему времени: отчёт в 02:00 идёт во вчерашний день.`

// Handlers — обработчики команд по фичам.
type Handlers struct {
	Members     *members.Handler
	DailyLog    *dailylog.Handler
	Economy     *economy.Handler
	Streak      *streak.Handler
	Rewards     *rewards.Handler
	Friends     *friends.Handler
	Leaderboard *leaderboard.Handler
}

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *tgbotapi.BotAPI
	cfg *config.Config

	chatFilter  *filters.ChatFilter
	rateLimiter *middleware.RateLimiter

	memberService *members.Service
	handlers      Handlers
	tokens        *auth.Manager

	parser *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
// tokens может быть nil — тогда !токен отключён.
func New(
	api *tgbotapi.BotAPI,
	cfg *config.Config,
	memberService *members.Service,
	handlers Handlers,
	tokens *auth.Manager,
	chatFilter *filters.ChatFilter,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:           api,
		cfg:           cfg,
		chatFilter:    chatFilter,
		rateLimiter:   middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		memberService: memberService,
		handlers:      handlers,
		tokens:        tokens,
		parser:        NewCommandParser(),
		inflight:      make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram.
func (b *Bot) Start(ctx context.Context) {
	defer b.rateLimiter.Close()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic(update)

	message := update.Message
	if message == nil {
		return
	}
	text := message.Text
	if text == "" {
		// фото с подписью !аватар
		text = message.Caption
	}
	if text == "" {
		return
	}

	middleware.LogMessage(message)

	if !b.chatFilter.CheckAccess(message) {
		return
	}

	cmd, args, isCommand := b.parser.ParseCommand(text)
	if !isCommand {
		return
	}

	if !b.rateLimiter.Allow(message.From.ID) {
		log.WithField("user_id", message.From.ID).Debug("rate limited")
		return
	}

	// EnsureMember — ошибки нельзя игнорировать, иначе потом будет "оно не работает"
	m, err := b.memberService.EnsureMember(ctx, members.Profile{
		UserID:    message.From.ID,
		Username:  message.From.UserName,
		FirstName: message.From.FirstName,
		LastName:  message.From.LastName,
	})
	if err != nil {
		log.WithError(err).WithField("user_id", message.From.ID).Error("EnsureMember failed")
		b.sendMessage(message.Chat.ID, "⚠️ Сервис временно недоступен, попробуй позже")
		return
	}

	log.WithFields(log.Fields{
		"cmd":     cmd,
		"args":    args,
		"user_id": m.UserID,
	}).Debug("routing command")

	b.routeCommand(ctx, message, m, cmd, args)
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, message *tgbotapi.Message, m *members.Member, cmd string, args []string) {
	chatID := message.Chat.ID
	h := b.handlers

	switch cmd {
	case "start", "help", "помощь":
		b.sendMessage(chatID, helpText)

	// --- отчёты ---
	case "лог", "log":
		h.DailyLog.HandleLog(ctx, chatID, m, args)
	case "прикинуть", "score":
		h.DailyLog.HandlePreview(chatID, args)
	case "сегодня", "today":
		h.DailyLog.HandleToday(ctx, chatID, m)
	case "история", "history":
		h.DailyLog.HandleHistory(ctx, chatID, m)

	// --- очки ---
	case "баланс", "balance":
		h.Economy.HandleBalance(ctx, chatID, m)
	case "транзакции":
		h.Economy.HandleTransactions(ctx, chatID, m)
	case "огонек", "серия", "streak":
		h.Streak.HandleOgonek(ctx, chatID, m)

	// --- награды ---
	case "награды", "rewards":
		h.Rewards.HandleList(ctx, chatID, m)
	case "награда+":
		h.Rewards.HandleCreate(ctx, chatID, m, args)
	case "награда=":
		h.Rewards.HandleUpdate(ctx, chatID, m, args)
	case "награда-":
		h.Rewards.HandleDelete(ctx, chatID, m, args)
	case "купить", "buy":
		h.Rewards.HandleBuy(ctx, chatID, m, args)
	case "покупки":
		h.Rewards.HandlePurchases(ctx, chatID, m)

	// --- друзья ---
	case "друг+", "друзья", "друг-":
		if !b.cfg.FeatureFriendsEnabled {
			b.sendMessage(chatID, "👥 Друзья временно отключены")
			return
		}
		switch cmd {
		case "друг+":
			h.Friends.HandleAdd(ctx, chatID, m, args)
		case "друг-":
			h.Friends.HandleRemove(ctx, chatID, m, args)
		default:
			h.Friends.HandleList(ctx, chatID, m)
		}

	case "топ", "top":
		if b.cfg.FeatureLeaderboardEnabled {
			h.Leaderboard.HandleTop(ctx, chatID, m, args)
		} else {
			b.sendMessage(chatID, "🏆 Рейтинг временно отключён")
		}

	// --- профиль ---
	case "tz", "пояс":
		h.Members.HandleTimezone(ctx, chatID, m, args)
	case "аватар", "avatar":
		h.Members.HandleAvatar(ctx, chatID, m, message.Photo)
	case "токен", "token":
		b.handleToken(chatID, message, m)
	}
}

// handleToken выдаёт JWT для HTTP API. Только в личке, чтобы токен не светился в группе.
func (b *Bot) handleToken(chatID int64, message *tgbotapi.Message, m *members.Member) {
	if b.tokens == nil {
		b.sendMessage(chatID, "🔒 HTTP API выключен")
		return
	}
	if !message.Chat.IsPrivate() {
		b.sendMessage(chatID, "🔒 Токен выдаётся только в личных сообщениях")
		return
	}

	token, expires, err := b.tokens.Issue(m.UserID)
	if err != nil {
		log.WithError(err).WithField("user_id", m.UserID).Error("Ошибка выдачи токена")
		b.sendMessage(chatID, "❌ Не удалось выдать токен")
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("🔑 Токен API (действует до %s):\n\n%s\n\nЗаголовок: Authorization: Bearer <токен>",
		common.FormatDateTime(expires, m.Timezone), strings.TrimSpace(token)))
}

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(chatID int64, text string) {
	common.Reply(b.api, chatID, text)
}

// SendMessageToUser отправляет сообщение пользователю (для напоминаний).
func (b *Bot) SendMessageToUser(userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("user_id", userID).Debug("Не удалось отправить сообщение")
	} else {
		log.WithField("user_id", userID).Debug("message sent")
	}
}
