package handlers

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"wantly/internal/engine"
)

// BudgetHandler handles the /budget command.
type BudgetHandler struct {
	eng    *engine.Engine
	logger *logrus.Logger
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(eng *engine.Engine, logger *logrus.Logger) *BudgetHandler {
	return &BudgetHandler{eng: eng, logger: logger}
}

// Handle processes the /budget command.
func (h *BudgetHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	remaining, max := h.eng.Budget()

	bar := strings.Repeat("●", remaining) + strings.Repeat("○", max-remaining)
	var text string
	if remaining == 0 {
		text = fmt.Sprintf("💸 *Budget spent:* %s\n\nNo points left today. Back tomorrow!", bar)
	} else {
		text = fmt.Sprintf("💰 *Attention budget:* %s\n\n%d of %d points left today.", bar, remaining, max)
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)

	h.logger.WithFields(logrus.Fields{
		"chat_id":   message.Chat.ID,
		"remaining": remaining,
	}).Info("Sent budget status")

	return nil
}
