package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewClearHandler returns a handler for the /clear command.
func NewClearHandler(deps HandlerDeps) bot.HandlerFunc {
	return clearHandler{deps}.Handle
}

type clearHandler struct {
	deps HandlerDeps
}

func (h clearHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "clear")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	count, err := h.deps.Store.ClearTasks(ctx, chatID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to clear tasks", "error", err, "chat_id", chatID)
		reply(ctx, h.deps, chatID, "❌ Could not clear your tasks. Please try again.")
		return
	}

	if count == 0 {
		reply(ctx, h.deps, chatID, "Nothing to clear.")
		return
	}
	reply(ctx, h.deps, chatID, fmt.Sprintf("🧹 Cleared %d tasks.", count))
}
