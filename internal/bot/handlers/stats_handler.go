package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"taskmaster/internal/format"
)

// NewStatsHandler returns a handler for the admin /stats command.
func NewStatsHandler(deps HandlerDeps) bot.HandlerFunc {
	return statsHandler{deps}.Handle
}

type statsHandler struct {
	deps HandlerDeps
}

func (h statsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "stats")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	stats, err := h.deps.Store.Stats(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to aggregate stats", "error", err)
		reply(ctx, h.deps, chatID, "❌ Could not load stats. Please try again.")
		return
	}

	reply(ctx, h.deps, chatID, format.Stats(stats))
}
