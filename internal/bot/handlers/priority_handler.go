package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"taskmaster/internal/database"
)

// NewPriorityHandler returns a handler for the /priority command.
func NewPriorityHandler(deps HandlerDeps) bot.HandlerFunc {
	return priorityHandler{deps}.Handle
}

type priorityHandler struct {
	deps HandlerDeps
}

func (h priorityHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "priority")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	posArg, priority := splitFirst(commandArgs(update.Message.Text))
	priority = strings.ToLower(priority)
	if posArg == "" || !database.ValidPriority(priority) {
		reply(ctx, h.deps, chatID, "Usage: /priority <task number> <high|normal|low>")
		return
	}

	task, hint, err := taskAt(ctx, h.deps, chatID, posArg)
	if err != nil {
		log.ErrorContext(ctx, "Failed to resolve task", "error", err, "chat_id", chatID)
		reply(ctx, h.deps, chatID, "❌ Could not load your tasks. Please try again.")
		return
	}
	if hint != "" {
		reply(ctx, h.deps, chatID, hint)
		return
	}

	if err := h.deps.Store.SetTaskPriority(ctx, task.ID, priority); err != nil {
		log.ErrorContext(ctx, "Failed to set priority", "error", err, "task_id", task.ID)
		reply(ctx, h.deps, chatID, "❌ Could not update the task. Please try again.")
		return
	}

	reply(ctx, h.deps, chatID, fmt.Sprintf("📌 \"%s\" is now %s priority.", task.Text, priority))
}
