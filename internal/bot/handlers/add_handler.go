package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"taskmaster/internal/database"
)

// NewAddHandler returns a handler for the /add command.
func NewAddHandler(deps HandlerDeps) bot.HandlerFunc {
	return addHandler{deps}.Handle
}

type addHandler struct {
	deps HandlerDeps
}

func (h addHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "add")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	text := commandArgs(update.Message.Text)
	if text == "" {
		reply(ctx, h.deps, chatID, "Usage: /add <task text>")
		return
	}

	task := &database.Task{ChatID: chatID, Text: text}
	if err := h.deps.Store.CreateTask(ctx, task); err != nil {
		log.ErrorContext(ctx, "Failed to create task", "error", err, "chat_id", chatID)
		reply(ctx, h.deps, chatID, "❌ Could not save the task. Please try again.")
		return
	}

	log.InfoContext(ctx, "Task added", "chat_id", chatID, "task_id", task.ID)
	reply(ctx, h.deps, chatID, fmt.Sprintf("✅ Added: %s", task.Text))
}
