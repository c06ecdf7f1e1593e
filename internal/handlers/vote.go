package handlers

import (
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"wantly/internal/engine"
)

// ---------------------------------------------------------------------------
// UpvoteHandler – /up <n>
// ---------------------------------------------------------------------------

// UpvoteHandler handles the /up command, spending one budget point on an
// item. A denied vote (budget exhausted) gets its own distinct reply so it
// never looks like a success.
type UpvoteHandler struct {
	eng    *engine.Engine
	logger *logrus.Logger
}

// NewUpvoteHandler creates a new UpvoteHandler.
func NewUpvoteHandler(eng *engine.Engine, logger *logrus.Logger) *UpvoteHandler {
	return &UpvoteHandler{eng: eng, logger: logger}
}

// Handle processes the /up command.
func (h *UpvoteHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		msg := tgbotapi.NewMessage(message.Chat.ID,
			"❌ Which item? Usage: `/up 1` (numbers from /list)")
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

	item, err := h.eng.Upvote(ranked.ID)
	text := ""
	switch {
	case err == nil:
		remaining, max := h.eng.Budget()
		text = fmt.Sprintf("👍 *%s* → %d points\n\nBudget left today: %d/%d",
			item.Name, item.Points, remaining, max)
	case errors.Is(err, engine.ErrBudgetExhausted):
		text = "🚫 *Out of points for today.*\n\nYour budget refills tomorrow — if you still want it then, that says something."
	case errors.Is(err, engine.ErrNotFound):
		text = "❌ That item is gone."
	default:
		return fmt.Errorf("upvote: %w", err)
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"item_id": ranked.ID,
		"denied":  errors.Is(err, engine.ErrBudgetExhausted),
	}).Info("Upvote handled")

	return nil
}

// ---------------------------------------------------------------------------
// DownvoteHandler – /down <n>
// ---------------------------------------------------------------------------

// DownvoteHandler handles the /down command, taking one point back from an
// item and refunding the budget (capped at the daily maximum).
type DownvoteHandler struct {
	eng    *engine.Engine
	logger *logrus.Logger
}

// NewDownvoteHandler creates a new DownvoteHandler.
func NewDownvoteHandler(eng *engine.Engine, logger *logrus.Logger) *DownvoteHandler {
	return &DownvoteHandler{eng: eng, logger: logger}
}

// Handle processes the /down command.
func (h *DownvoteHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		msg := tgbotapi.NewMessage(message.Chat.ID,
			"❌ Which item? Usage: `/down 1` (numbers from /list)")
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

	item, err := h.eng.Downvote(ranked.ID)
	text := ""
	switch {
	case err == nil:
		remaining, max := h.eng.Budget()
		text = fmt.Sprintf("👎 *%s* → %d points\n\nBudget left today: %d/%d",
			item.Name, item.Points, remaining, max)
	case errors.Is(err, engine.ErrNoPointsToRemove):
		text = fmt.Sprintf("🤷 *%s* has no points to remove.", ranked.Name)
	case errors.Is(err, engine.ErrNotFound):
		text = "❌ That item is gone."
	default:
		return fmt.Errorf("downvote: %w", err)
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"item_id": ranked.ID,
	}).Info("Downvote handled")

	return nil
}

// ---------------------------------------------------------------------------
// VoteCallbackHandler – inline 👍/👎 buttons under /list
// ---------------------------------------------------------------------------

// VoteCallbackHandler handles "vote:up:<id>" / "vote:down:<id>" callback
// queries from the ranking keyboard. Feedback goes into the callback toast,
// keeping the chat clean during rapid voting.
type VoteCallbackHandler struct {
	eng    *engine.Engine
	logger *logrus.Logger
}

// NewVoteCallbackHandler creates a new VoteCallbackHandler.
func NewVoteCallbackHandler(eng *engine.Engine, logger *logrus.Logger) *VoteCallbackHandler {
	return &VoteCallbackHandler{eng: eng, logger: logger}
}

// HandleCallback processes a vote button press.
func (h *VoteCallbackHandler) HandleCallback(bot *tgbotapi.BotAPI, query *tgbotapi.CallbackQuery, data string) error {
	direction, id, ok := strings.Cut(data, ":")
	if !ok {
		bot.Request(tgbotapi.NewCallback(query.ID, ""))
		return fmt.Errorf("malformed vote callback %q", data)
	}

	var err error
	var toast string
	switch direction {
	case "up":
		it, upErr := h.eng.Upvote(id)
		err = upErr
		if err == nil {
			toast = fmt.Sprintf("👍 %s: %d points", it.Name, it.Points)
		}
	case "down":
		it, downErr := h.eng.Downvote(id)
		err = downErr
		if err == nil {
			toast = fmt.Sprintf("👎 %s: %d points", it.Name, it.Points)
		}
	default:
		bot.Request(tgbotapi.NewCallback(query.ID, ""))
		return fmt.Errorf("unknown vote direction %q", direction)
	}

	switch {
	case err == nil:
	case errors.Is(err, engine.ErrBudgetExhausted):
		toast = "🚫 Out of points for today"
	case errors.Is(err, engine.ErrNoPointsToRemove):
		toast = "Nothing to remove"
	case errors.Is(err, engine.ErrNotFound):
		// Deleted while the keyboard was still visible: silent no-op.
		toast = "That item is gone"
	default:
		return fmt.Errorf("vote callback: %w", err)
	}

	bot.Request(tgbotapi.NewCallback(query.ID, toast))

	h.logger.WithFields(logrus.Fields{
		"user_id":   query.From.ID,
		"item_id":   id,
		"direction": direction,
	}).Info("Vote callback handled")

	return nil
}
