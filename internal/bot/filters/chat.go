// Package filters решает, отвечает ли бот в чате.
package filters

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// ChatFilter пропускает личку и один групповой чат (GROUP_CHAT_ID).
type ChatFilter struct {
	groupChatID int64
}

// NewChatFilter создаёт фильтр. groupChatID = 0 — только личка.
func NewChatFilter(groupChatID int64) *ChatFilter {
	return &ChatFilter{groupChatID: groupChatID}
}

// CheckAccess проверяет, обрабатывать ли сообщение.
func (f *ChatFilter) CheckAccess(message *tgbotapi.Message) bool {
	if message == nil || message.Chat == nil {
		log.WithField("component", "ChatFilter").Warn("nil message/chat")
		return false
	}
	if message.From == nil || message.From.IsBot {
		// служебные сообщения, каналы и другие боты
		return false
	}

	if message.Chat.IsPrivate() {
		return true
	}
	if f.groupChatID != 0 && message.Chat.ID == f.groupChatID {
		return true
	}

	log.WithFields(log.Fields{
		"component": "ChatFilter",
		"chat_id":   message.Chat.ID,
		"chat_type": message.Chat.Type,
		"user_id":   message.From.ID,
	}).Debug("deny: not private and not group chat")
	return false
}
