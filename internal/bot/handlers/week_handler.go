package handlers

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"taskmaster/internal/format"
)

// NewWeekHandler returns a handler for the /week command.
func NewWeekHandler(deps HandlerDeps) bot.HandlerFunc {
	return weekHandler{deps}.Handle
}

type weekHandler struct {
	deps HandlerDeps
}

func (h weekHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "week")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	start := dayStart(time.Now())
	tasks, err := h.deps.Store.ListTasksDueBetween(ctx, chatID, start, start.Add(7*24*time.Hour))
	if err != nil {
		log.ErrorContext(ctx, "Failed to list due tasks", "error", err, "chat_id", chatID)
		reply(ctx, h.deps, chatID, "❌ Could not load your tasks. Please try again.")
		return
	}
	if len(tasks) == 0 {
		reply(ctx, h.deps, chatID, "📅 You don't have any tasks due this week!")
		return
	}

	reply(ctx, h.deps, chatID, format.TaskList("📅 Tasks due this week:", tasks))
}
