package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewDeleteHandler returns a handler for the /delete command.
func NewDeleteHandler(deps HandlerDeps) bot.HandlerFunc {
	return deleteHandler{deps}.Handle
}

type deleteHandler struct {
	deps HandlerDeps
}

func (h deleteHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "delete")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if args == "" {
		reply(ctx, h.deps, chatID, "Usage: /delete <task number>")
		return
	}

	task, hint, err := taskAt(ctx, h.deps, chatID, args)
	if err != nil {
		log.ErrorContext(ctx, "Failed to resolve task", "error", err, "chat_id", chatID)
		reply(ctx, h.deps, chatID, "❌ Could not load your tasks. Please try again.")
		return
	}
	if hint != "" {
		reply(ctx, h.deps, chatID, hint)
		return
	}

	if err := h.deps.Store.DeactivateTask(ctx, task.ID); err != nil {
		log.ErrorContext(ctx, "Failed to delete task", "error", err, "task_id", task.ID)
		reply(ctx, h.deps, chatID, "❌ Could not delete the task. Please try again.")
		return
	}

	reply(ctx, h.deps, chatID, fmt.Sprintf("🗑 Removed: %s", task.Text))
}
