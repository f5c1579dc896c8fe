package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewTagHandler returns a handler for the /tag command.
func NewTagHandler(deps HandlerDeps) bot.HandlerFunc {
	return tagHandler{deps}.Handle
}

type tagHandler struct {
	deps HandlerDeps
}

func (h tagHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "tag")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	posArg, category := splitFirst(commandArgs(update.Message.Text))
	category = strings.TrimPrefix(category, "#")
	if posArg == "" || category == "" {
		reply(ctx, h.deps, chatID, "Usage: /tag <task number> <category>")
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

	if err := h.deps.Store.SetTaskCategory(ctx, task.ID, category); err != nil {
		log.ErrorContext(ctx, "Failed to tag task", "error", err, "task_id", task.ID)
		reply(ctx, h.deps, chatID, "❌ Could not tag the task. Please try again.")
		return
	}

	reply(ctx, h.deps, chatID, fmt.Sprintf("🏷 Tagged \"%s\" with #%s.", task.Text, category))
}
