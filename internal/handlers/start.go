package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// StartHandler handles the /start command.
type StartHandler struct {
	logger *logrus.Logger
}

// NewStartHandler creates a new StartHandler.
func NewStartHandler(logger *logrus.Logger) *StartHandler {
	return &StartHandler{logger: logger}
}

// Handle processes the /start command.
func (h *StartHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	text := "👋 *Welcome to Wantly!*\n\n" +
		"Wantly helps you defer impulse purchases: park the thing you want " +
		"with `/want`, then spend a few daily points on whatever you still " +
		"crave. Items that keep collecting points are the ones you really want.\n\n" +
		"Try:\n" +
		"`/want Noise cancelling headphones`\n" +
		"`/list` — see your ranking\n" +
		"`/up 1` — spend a point on item 1\n\n" +
		"Use /help for all commands."

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)

	h.logger.WithField("chat_id", message.Chat.ID).Info("Sent start message")
	return nil
}
