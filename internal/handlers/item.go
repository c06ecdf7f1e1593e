package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"wantly/internal/engine"
	"wantly/internal/scraper"
)

// ---------------------------------------------------------------------------
// WantHandler – /want <name or URL>
// ---------------------------------------------------------------------------

// WantHandler handles the /want command to park a new impulse purchase on
// the wishlist. When the argument is a URL, the scraper prefills name, price
// and image best-effort; anything it misses stays blank for the user to edit.
type WantHandler struct {
	eng     *engine.Engine
	scraper *scraper.Scraper
	logger  *logrus.Logger
}

// NewWantHandler creates a new WantHandler.
func NewWantHandler(eng *engine.Engine, sc *scraper.Scraper, logger *logrus.Logger) *WantHandler {
	return &WantHandler{eng: eng, scraper: sc, logger: logger}
}

// Handle processes the /want command.
func (h *WantHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		msg := tgbotapi.NewMessage(message.Chat.ID,
			"❌ Tell me what you want.\n"+
				"Usage: `/want Mechanical keyboard` or `/want https://shop.example/item`")
		msg.ParseMode = tgbotapi.ModeMarkdown
		bot.Send(msg)
		return nil
	}

	params := engine.NewItemParams{Name: strings.Join(args, " ")}

	if len(args) == 1 && (strings.HasPrefix(args[0], "http://") || strings.HasPrefix(args[0], "https://")) {
		params.URL = args[0]
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		guess, err := h.scraper.Fetch(ctx, args[0])
		cancel()
		if err != nil {
			h.logger.WithError(err).Debug("Prefill scrape failed, keeping URL as name")
		} else {
			if guess.Name != "" {
				params.Name = guess.Name
			}
			params.PriceCents = guess.PriceCents
			params.ImageURL = guess.ImageURL
		}
	}

	item := h.eng.AddItem(params)

	text := fmt.Sprintf("🛒 *Parked it!*\n\n%s — _%s_\n\nIt starts at 0 points. "+
		"If you still want it tomorrow, give it a point with /up.",
		item.Name, formatPrice(item.PriceCents))
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	bot.Send(msg)

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"item_id": item.ID,
	}).Info("Wish item added")

	return nil
}

// ---------------------------------------------------------------------------
// DropHandler – /drop <n>
// ---------------------------------------------------------------------------

// DropHandler handles the /drop command: immediate, irreversible deletion.
type DropHandler struct {
	eng    *engine.Engine
	logger *logrus.Logger
}

// NewDropHandler creates a new DropHandler.
func NewDropHandler(eng *engine.Engine, logger *logrus.Logger) *DropHandler {
	return &DropHandler{eng: eng, logger: logger}
}

// Handle processes the /drop command.
func (h *DropHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		msg := tgbotapi.NewMessage(message.Chat.ID,
			"❌ Which item? Usage: `/drop 2` (numbers from /list)")
		msg.ParseMode = tgbotapi.ModeMarkdown
		bot.Send(msg)
		return nil
	}

	item, err := resolveIndex(h.eng, args[0])
	if err != nil {
		msg := tgbotapi.NewMessage(message.Chat.ID,
			fmt.Sprintf("❌ No item *#%s* on your list.", args[0]))
		msg.ParseMode = tgbotapi.ModeMarkdown
		bot.Send(msg)
		return nil
	}

	if err := h.eng.DeleteItem(item.ID); err != nil {
		if errors.Is(err, engine.ErrNotFound) {
			return nil // already gone, nothing to report
		}
		return fmt.Errorf("delete item: %w", err)
	}

	text := fmt.Sprintf("🗑 Dropped *%s*. One less thing to want.", item.Name)
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"item_id": item.ID,
	}).Info("Wish item dropped")

	return nil
}

// ---------------------------------------------------------------------------
// BoughtHandler – /bought <n>
// ---------------------------------------------------------------------------

// BoughtHandler handles the /bought command, toggling the purchase flag.
type BoughtHandler struct {
	eng    *engine.Engine
	logger *logrus.Logger
}

// NewBoughtHandler creates a new BoughtHandler.
func NewBoughtHandler(eng *engine.Engine, logger *logrus.Logger) *BoughtHandler {
	return &BoughtHandler{eng: eng, logger: logger}
}

// Handle processes the /bought command.
func (h *BoughtHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		msg := tgbotapi.NewMessage(message.Chat.ID,
			"❌ Which item? Usage: `/bought 2` (numbers from /list)")
		msg.ParseMode = tgbotapi.ModeMarkdown
		bot.Send(msg)
		return nil
	}

	ranked, err := resolveIndex(h.eng, args[0])
	if err != nil {
		msg := tgbotapi.NewMessage(message.Chat.ID,
			fmt.Sprintf("❌ No item *#%s* on your list.", args[0]))
		msg.ParseMode = tgbotapi.ModeMarkdown
		bot.Send(msg)
		return nil
	}

	item, err := h.eng.TogglePurchased(ranked.ID)
	if err != nil {
		return fmt.Errorf("toggle purchased: %w", err)
	}

	var text string
	if item.Purchased {
		text = fmt.Sprintf("✅ Marked *%s* as purchased. Enjoy it!", item.Name)
	} else {
		text = fmt.Sprintf("↩️ *%s* is back on the wishlist.", item.Name)
	}
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)

	h.logger.WithFields(logrus.Fields{
		"chat_id":   message.Chat.ID,
		"item_id":   item.ID,
		"purchased": item.Purchased,
	}).Info("Wish item purchase toggled")

	return nil
}
