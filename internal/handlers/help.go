package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// HelpHandler handles the /help command.
type HelpHandler struct {
	logger *logrus.Logger
}

// NewHelpHandler creates a new HelpHandler.
func NewHelpHandler(logger *logrus.Logger) *HelpHandler {
	return &HelpHandler{logger: logger}
}

// Handle processes the /help command.
func (h *HelpHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	text := "🛒 *Wantly commands*\n\n" +
		"*Wishlist*\n" +
		"`/want <name or URL>` — add an item (URLs are prefilled from the page)\n" +
		"`/list [points|new|price] [all]` — show the ranking (`all` includes purchased)\n" +
		"`/drop <n>` — delete item n\n" +
		"`/bought <n>` — toggle item n as purchased\n\n" +
		"*Voting*\n" +
		"`/up <n>` — spend 1 point on item n\n" +
		"`/down <n>` — take 1 point back from item n\n" +
		"`/budget` — points left today\n\n" +
		"Your budget refills every day. Spend it on what you still want — " +
		"a 🔥 item has stayed on your mind all week."

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)

	h.logger.WithField("chat_id", message.Chat.ID).Info("Sent help message")
	return nil
}
