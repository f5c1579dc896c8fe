package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"taskmaster/internal/format"
)

// NewSearchHandler returns a handler for the /search command.
func NewSearchHandler(deps HandlerDeps) bot.HandlerFunc {
	return searchHandler{deps}.Handle
}

type searchHandler struct {
	deps HandlerDeps
}

func (h searchHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "search")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	query := commandArgs(update.Message.Text)
	if query == "" {
		reply(ctx, h.deps, chatID, "Usage: /search <text>")
		return
	}

	tasks, err := h.deps.Store.SearchTasks(ctx, chatID, query)
	if err != nil {
		log.ErrorContext(ctx, "Failed to search tasks", "error", err, "chat_id", chatID)
		reply(ctx, h.deps, chatID, "❌ Search failed. Please try again.")
		return
	}

	if len(tasks) == 0 {
		reply(ctx, h.deps, chatID, fmt.Sprintf("🔍 No tasks matching \"%s\".", query))
		return
	}
	reply(ctx, h.deps, chatID, format.TaskList(fmt.Sprintf("🔍 Tasks matching \"%s\":", query), tasks))
}
