package handlers

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"taskmaster/internal/format"
)

// NewTodayHandler returns a handler for the /today command.
func NewTodayHandler(deps HandlerDeps) bot.HandlerFunc {
	return todayHandler{deps}.Handle
}

type todayHandler struct {
	deps HandlerDeps
}

func (h todayHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "today")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	start := dayStart(time.Now())
	tasks, err := h.deps.Store.ListTasksDueBetween(ctx, chatID, start, start.Add(24*time.Hour))
	if err != nil {
		log.ErrorContext(ctx, "Failed to list due tasks", "error", err, "chat_id", chatID)
		reply(ctx, h.deps, chatID, "❌ Could not load your tasks. Please try again.")
		return
	}
	if len(tasks) == 0 {
		reply(ctx, h.deps, chatID, "📅 You don't have any tasks due today!")
		return
	}

	reply(ctx, h.deps, chatID, format.TaskList("📅 Tasks due today:", tasks))
}

// dayStart returns midnight of the day containing t, in t's location.
func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
