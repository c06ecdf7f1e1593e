package handlers

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"wantly/internal/engine"
	"wantly/internal/models"
)

// keyboardLimit caps how many items get inline vote buttons; Telegram
// keyboards get unwieldy past a screenful.
const keyboardLimit = 8

// ListHandler handles the /list command.
//
// `/list` shows the ranking in the current sort mode, hiding purchased
// items. `/list new` or `/list price` switches the ordering, `/list all`
// includes purchased items. The top items get inline 👍/👎 buttons so rapid
// voting doesn't need retyping — the engine's freeze window keeps the
// on-screen order stable while those are mashed.
type ListHandler struct {
	eng    *engine.Engine
	logger *logrus.Logger
}

// NewListHandler creates a new ListHandler.
func NewListHandler(eng *engine.Engine, logger *logrus.Logger) *ListHandler {
	return &ListHandler{eng: eng, logger: logger}
}

// Handle processes the /list command.
func (h *ListHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	hidePurchased := true
	for _, arg := range args {
		switch strings.ToLower(arg) {
		case "points":
			h.eng.SetSortMode(models.SortPointsDesc)
		case "new":
			h.eng.SetSortMode(models.SortDateAddedDesc)
		case "price":
			h.eng.SetSortMode(models.SortPriceDesc)
		case "all":
			hidePurchased = false
		}
	}
	h.eng.SetHidePurchased(hidePurchased)

	items := h.eng.Ranking()
	if len(items) == 0 {
		msg := tgbotapi.NewMessage(message.Chat.ID,
			"🛒 *Nothing on the wishlist yet.*\n\nPark your next impulse buy with `/want <item>`")
		msg.ParseMode = tgbotapi.ModeMarkdown
		bot.Send(msg)
		return nil
	}

	remaining, max := h.eng.Budget()

	var sb strings.Builder
	sb.WriteString("🛒 *Your wishlist*\n\n")
	for i, item := range items {
		sb.WriteString(fmt.Sprintf("%d. *%s*%s — %d pts", i+1, item.Name, trendBadge(item.Trend), item.Points))
		if item.PriceCents > 0 {
			sb.WriteString(fmt.Sprintf(" — _%s_", formatPrice(item.PriceCents)))
		}
		if item.Purchased {
			sb.WriteString(" ✅")
		}
		if item.OptionCount > 0 {
			sb.WriteString(fmt.Sprintf(" (%d options)", item.OptionCount))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("\n_Budget left today: %d/%d_", remaining, max))

	msg := tgbotapi.NewMessage(message.Chat.ID, sb.String())
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = voteKeyboard(items)
	bot.Send(msg)

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"count":   len(items),
	}).Info("Listed wishlist ranking")

	return nil
}

// voteKeyboard builds one 👍/👎 button row per item, up to keyboardLimit.
func voteKeyboard(items []models.DisplayItem) tgbotapi.InlineKeyboardMarkup {
	limit := len(items)
	if limit > keyboardLimit {
		limit = keyboardLimit
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, limit)
	for i := 0; i < limit; i++ {
		item := items[i]
		label := item.Name
		if runes := []rune(label); len(runes) > 24 {
			label = string(runes[:24]) + "…"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("👍 %s", label), "vote:up:"+item.ID),
			tgbotapi.NewInlineKeyboardButtonData("👎", "vote:down:"+item.ID),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
