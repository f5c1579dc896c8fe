package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"taskmaster/internal/timeparse"
)

// NewRemindHandler returns a handler for the /remind command.
func NewRemindHandler(deps HandlerDeps) bot.HandlerFunc {
	return remindHandler{deps}.Handle
}

type remindHandler struct {
	deps HandlerDeps
}

func (h remindHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "remind")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	posArg, expr := splitFirst(commandArgs(update.Message.Text))
	if posArg == "" || expr == "" {
		reply(ctx, h.deps, chatID, "Usage: /remind <task number> <when>\nExamples: /remind 2 30m, /remind 1 tomorrow 9am, /remind 3 friday 15:00")
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

	remindAt, err := timeparse.Parse(expr, time.Now())
	switch {
	case errors.Is(err, timeparse.ErrInvalidValue):
		reply(ctx, h.deps, chatID, "⏰ That time has a value out of range. Hours go up to 23 and minutes up to 59.")
		return
	case errors.Is(err, timeparse.ErrUnrecognizedFormat):
		reply(ctx, h.deps, chatID, "⏰ I didn't understand that time. Try something like \"30m\", \"2 hours\", \"tomorrow 9am\" or \"dec 25 18:00\".")
		return
	case err != nil:
		log.ErrorContext(ctx, "Failed to parse time expression", "error", err, "expr", expr)
		reply(ctx, h.deps, chatID, "❌ Could not set the reminder. Please try again.")
		return
	}

	if err := h.deps.Store.SetTaskReminder(ctx, task.ID, remindAt); err != nil {
		log.ErrorContext(ctx, "Failed to set reminder", "error", err, "task_id", task.ID)
		reply(ctx, h.deps, chatID, "❌ Could not set the reminder. Please try again.")
		return
	}

	log.InfoContext(ctx, "Reminder set", "task_id", task.ID, "remind_at", remindAt)
	reply(ctx, h.deps, chatID, fmt.Sprintf("⏰ I'll remind you about \"%s\" on %s.",
		task.Text, remindAt.Format("Mon, Jan 2 at 15:04")))
}
