package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewDoneHandler returns a handler for the /done command.
func NewDoneHandler(deps HandlerDeps) bot.HandlerFunc {
	return doneHandler{deps}.Handle
}

type doneHandler struct {
	deps HandlerDeps
}

func (h doneHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "done")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if args == "" {
		reply(ctx, h.deps, chatID, "Usage: /done <task number>")
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

	if err := h.deps.Store.MarkTaskDone(ctx, task.ID); err != nil {
		log.ErrorContext(ctx, "Failed to mark task done", "error", err, "task_id", task.ID)
		reply(ctx, h.deps, chatID, "❌ Could not update the task. Please try again.")
		return
	}

	reply(ctx, h.deps, chatID, fmt.Sprintf("🎉 Done: %s", task.Text))
}
