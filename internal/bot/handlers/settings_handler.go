package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"taskmaster/internal/database"
	"taskmaster/internal/format"
)

// NewSettingsHandler returns a handler for the /settings command and its
// subcommands (clean, retention, sort).
func NewSettingsHandler(deps HandlerDeps) bot.HandlerFunc {
	return settingsHandler{deps}.Handle
}

type settingsHandler struct {
	deps HandlerDeps
}

func (h settingsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "settings")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	settings, err := h.deps.Store.GetChatSettings(ctx, chatID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load chat settings", "error", err, "chat_id", chatID)
		reply(ctx, h.deps, chatID, "❌ Could not load settings. Please try again.")
		return
	}

	// Keep the stored chat type in sync with what Telegram reports.
	if chatType := string(update.Message.Chat.Type); settings.ChatType != chatType {
		settings.ChatType = chatType
	}

	sub, value := splitFirst(commandArgs(update.Message.Text))
	switch strings.ToLower(sub) {
	case "":
		reply(ctx, h.deps, chatID, format.Settings(settings))
		return

	case "clean":
		switch strings.ToLower(value) {
		case "on":
			settings.AutoCleanEnabled = true
		case "off":
			settings.AutoCleanEnabled = false
		default:
			reply(ctx, h.deps, chatID, "Usage: /settings clean on|off")
			return
		}

	case "retention":
		days, err := strconv.Atoi(value)
		if err != nil || !database.ValidRetentionDays(days) {
			reply(ctx, h.deps, chatID, fmt.Sprintf("Retention must be one of %v days.", database.RetentionChoices))
			return
		}
		settings.RetentionDays = days

	case "sort":
		order := strings.ToLower(value)
		if order != "date" && order != "priority" {
			reply(ctx, h.deps, chatID, "Usage: /settings sort date|priority")
			return
		}
		settings.SortBy = order

	default:
		reply(ctx, h.deps, chatID, "Unknown setting. Use /settings, /settings clean, /settings retention or /settings sort.")
		return
	}

	if err := h.deps.Store.UpdateChatSettings(ctx, settings); err != nil {
		log.ErrorContext(ctx, "Failed to update chat settings", "error", err, "chat_id", chatID)
		reply(ctx, h.deps, chatID, "❌ Could not save settings. Please try again.")
		return
	}

	log.InfoContext(ctx, "Chat settings updated", "chat_id", chatID,
		"auto_clean", settings.AutoCleanEnabled, "retention_days", settings.RetentionDays, "sort_by", settings.SortBy)
	reply(ctx, h.deps, chatID, format.Settings(settings))
}
