package middleware

import (
	"fmt"
	"runtime/debug"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// RecoverFromPanic вызывается через defer в обработке апдейта.
// Паника гасится и пишется в лог вместе с update_id и отправителем.
func RecoverFromPanic(update tgbotapi.Update) {
	r := recover()
	if r == nil {
		return
	}

	fields := log.Fields{
		"component": "panic_recovery",
		"update_id": update.UpdateID,
		"panic":     fmt.Sprintf("%v", r),
		"stack":     string(debug.Stack()),
	}
	if msg := update.Message; msg != nil {
		fields["chat_id"] = msg.Chat.ID
		if msg.From != nil {
			fields["user_id"] = msg.From.ID
		}
	}
	log.WithFields(fields).Error("Паника при обработке апдейта, бот продолжает работу")
}
