// Package rewards — handlers.go обрабатывает команды:
// !награды, !награда+, !награда=, !награда-, !купить, !покупки.
package rewards

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/progress-bot/internal/common"
	"serotonyl.ru/progress-bot/internal/features/members"
)

// Handler обрабатывает команды наград.
type Handler struct {
	service *Service
	bot     common.Sender
}

// NewHandler создаёт новый обработчик команд наград.
func NewHandler(service *Service, bot common.Sender) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleList обрабатывает !награды — каталог и личные награды с кодами для !купить.
func (h *Handler) HandleList(ctx context.Context, chatID int64, m *members.Member) {
	list, err := h.service.ListAvailable(ctx, m.UserID)
	if err != nil {
		h.replyError(chatID, m.UserID, err)
		return
	}
	common.Reply(h.bot, chatID, FormatRewards(list))
}

// HandleCreate обрабатывает !награда+ <цена> <название>.
func (h *Handler) HandleCreate(ctx context.Context, chatID int64, m *members.Member, args []string) {
	in, err := parseCustomArgs(args)
	if err != nil {
		common.Reply(h.bot, chatID, "📝 Формат: !награда+ 50 Пицца на ужин")
		return
	}
	rw, err := h.service.CreateCustom(ctx, m.UserID, in)
	if err != nil {
		h.replyError(chatID, m.UserID, err)
		return
	}
	common.Reply(h.bot, chatID, fmt.Sprintf("✅ Награда добавлена: %s %s за %s\nКупить: !купить %s",
		rw.Icon, rw.Name, common.FormatBalance(rw.Cost), rw.Ref()))
}

// HandleUpdate обрабатывает !награда= м5 <цена> <название>.
func (h *Handler) HandleUpdate(ctx context.Context, chatID int64, m *members.Member, args []string) {
	const usage = "📝 Формат: !награда= м5 80 Пицца с друзьями"
	if len(args) < 3 {
		common.Reply(h.bot, chatID, usage)
		return
	}
	ref, err := ParseRef(args[0])
	if err != nil || ref.Kind != KindCustom {
		common.Reply(h.bot, chatID, "❌ Менять можно только свои награды (код на м)\n"+usage)
		return
	}
	in, err := parseCustomArgs(args[1:])
	if err != nil {
		common.Reply(h.bot, chatID, usage)
		return
	}
	rw, err := h.service.UpdateCustom(ctx, m.UserID, ref.ID, in)
	if err != nil {
		h.replyError(chatID, m.UserID, err)
		return
	}
	common.Reply(h.bot, chatID, fmt.Sprintf("✏️ Награда %s: %s %s за %s",
		rw.Ref(), rw.Icon, rw.Name, common.FormatBalance(rw.Cost)))
}

// HandleDelete обрабатывает !награда- м5.
func (h *Handler) HandleDelete(ctx context.Context, chatID int64, m *members.Member, args []string) {
	if len(args) != 1 {
		common.Reply(h.bot, chatID, "📝 Формат: !награда- м5")
		return
	}
	ref, err := ParseRef(args[0])
	if err != nil || ref.Kind != KindCustom {
		common.Reply(h.bot, chatID, "❌ Удалять можно только свои награды (код на м)")
		return
	}
	if err := h.service.DeleteCustom(ctx, m.UserID, ref.ID); err != nil {
		h.replyError(chatID, m.UserID, err)
		return
	}
	common.Reply(h.bot, chatID, "🗑 Награда удалена")
}

// HandleBuy обрабатывает !купить к3.
func (h *Handler) HandleBuy(ctx context.Context, chatID int64, m *members.Member, args []string) {
	if len(args) != 1 {
		common.Reply(h.bot, chatID, "📝 Формат: !купить к3\nКоды наград: !награды")
		return
	}
	ref, err := ParseRef(args[0])
	if err != nil {
		h.replyError(chatID, m.UserID, err)
		return
	}

	p, err := h.service.Redeem(ctx, m.UserID, ref)
	if err != nil {
		h.replyError(chatID, m.UserID, err)
		return
	}
	if p == nil {
		common.Reply(h.bot, chatID, "❌ Недостаточно очков. Баланс: !баланс")
		return
	}
	common.Reply(h.bot, chatID, fmt.Sprintf("🎉 Куплено: %s за %s\nЗаслужено!",
		p.RewardName, common.FormatBalance(p.Cost)))
}

// HandlePurchases обрабатывает !покупки — последние покупки.
func (h *Handler) HandlePurchases(ctx context.Context, chatID int64, m *members.Member) {
	list, err := h.service.ListPurchases(ctx, m.UserID)
	if err != nil {
		h.replyError(chatID, m.UserID, err)
		return
	}
	if len(list) == 0 {
		common.Reply(h.bot, chatID, "🛍 Покупок пока нет. Посмотри !награды")
		return
	}

	var sb strings.Builder
	sb.WriteString("🛍 Последние покупки:\n\n")
	for _, p := range list {
		fmt.Fprintf(&sb, "%s | %s | %s\n", p.PurchaseDate, p.RewardName, common.FormatBalance(p.Cost))
	}
	common.Reply(h.bot, chatID, sb.String())
}

func (h *Handler) replyError(chatID, userID int64, err error) {
	switch {
	case errors.Is(err, common.ErrRewardNotFound):
		common.Reply(h.bot, chatID, "❌ Такой награды нет. Список: !награды")
	case errors.Is(err, common.ErrUnknownRewardKind):
		common.Reply(h.bot, chatID, "❌ Код награды начинается с к (каталог) или м (мои)")
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrInvalidAmount):
		common.Reply(h.bot, chatID, "❌ "+err.Error())
	case errors.Is(err, common.ErrUserNotFound):
		common.Reply(h.bot, chatID, "❌ Сначала напиши /start")
	default:
		log.WithError(err).WithField("user_id", userID).Error("Ошибка работы с наградами")
		common.Reply(h.bot, chatID, "⚠️ Не получилось, попробуй ещё раз. Очки не списаны")
	}
}

// FormatRewards показывает список наград с кодами.
func FormatRewards(list []*Reward) string {
	if len(list) == 0 {
		return "🎁 Наград пока нет. Добавь свою: !награда+ 50 Пицца"
	}

	var sb strings.Builder
	sb.WriteString("🎁 Награды:\n\n")
	custom := false
	for _, rw := range list {
		if rw.Kind == KindCustom && !custom {
			sb.WriteString("\n⭐ Мои:\n")
			custom = true
		}
		fmt.Fprintf(&sb, "%s %s %s — %s\n", rw.Ref(), rw.Icon, rw.Name, common.FormatBalance(rw.Cost))
	}
	sb.WriteString("\nКупить: !купить к1")
	return sb.String()
}

// parseCustomArgs разбирает «<цена> <название...>».
func parseCustomArgs(args []string) (CustomInput, error) {
	if len(args) < 2 {
		return CustomInput{}, common.ErrValidation
	}
	cost, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return CustomInput{}, common.ErrInvalidAmount
	}
	return CustomInput{Name: strings.Join(args[1:], " "), Cost: cost}, nil
}
