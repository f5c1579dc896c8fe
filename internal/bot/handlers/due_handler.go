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

// NewDueHandler returns a handler for the /due command.
func NewDueHandler(deps HandlerDeps) bot.HandlerFunc {
	return dueHandler{deps}.Handle
}

type dueHandler struct {
	deps HandlerDeps
}

func (h dueHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "due")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	posArg, expr := splitFirst(commandArgs(update.Message.Text))
	if posArg == "" || expr == "" {
		reply(ctx, h.deps, chatID, "Usage: /due <task number> <when>\nExamples: /due 2 tomorrow, /due 1 friday 17:00, /due 3 dec 25")
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

	dueAt, err := timeparse.Parse(expr, time.Now())
	switch {
	case errors.Is(err, timeparse.ErrInvalidValue):
		reply(ctx, h.deps, chatID, "📅 That date has a value out of range. Hours go up to 23 and minutes up to 59.")
		return
	case errors.Is(err, timeparse.ErrUnrecognizedFormat):
		reply(ctx, h.deps, chatID, "📅 I didn't understand that date. Try something like \"tomorrow\", \"friday 17:00\" or \"dec 25\".")
		return
	case err != nil:
		log.ErrorContext(ctx, "Failed to parse time expression", "error", err, "expr", expr)
		reply(ctx, h.deps, chatID, "❌ Could not set the due date. Please try again.")
		return
	}

	if err := h.deps.Store.SetTaskDueDate(ctx, task.ID, dueAt); err != nil {
		log.ErrorContext(ctx, "Failed to set due date", "error", err, "task_id", task.ID)
		reply(ctx, h.deps, chatID, "❌ Could not set the due date. Please try again.")
		return
	}

	log.InfoContext(ctx, "Due date set", "task_id", task.ID, "due_at", dueAt)
	reply(ctx, h.deps, chatID, fmt.Sprintf("📅 \"%s\" is now due on %s.",
		task.Text, dueAt.Format("Mon, Jan 2 at 15:04")))
}
