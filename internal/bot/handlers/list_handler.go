package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"taskmaster/internal/format"
)

// NewListHandler returns a handler for the /list command.
func NewListHandler(deps HandlerDeps) bot.HandlerFunc {
	return listHandler{deps}.Handle
}

type listHandler struct {
	deps HandlerDeps
}

func (h listHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "list")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	includeDone := commandArgs(update.Message.Text) == "all"

	tasks, err := openTasks(ctx, h.deps, chatID, includeDone)
	if err != nil {
		log.ErrorContext(ctx, "Failed to list tasks", "error", err, "chat_id", chatID)
		reply(ctx, h.deps, chatID, "❌ Could not load your tasks. Please try again.")
		return
	}

	reply(ctx, h.deps, chatID, format.TaskList("📋 Your tasks:", tasks))
}
