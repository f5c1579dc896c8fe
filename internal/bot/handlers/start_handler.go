package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

// startHandler processes the /start command using injected dependencies.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /start command", "chat_id", chatID, "user_id", update.Message.From.ID)

	// Creates the settings row so the chat shows up for broadcasts.
	settings, err := h.deps.Store.GetChatSettings(ctx, chatID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize chat settings", "error", err, "chat_id", chatID)
	} else if chatType := string(update.Message.Chat.Type); settings.ChatType != chatType {
		settings.ChatType = chatType
		if err := h.deps.Store.UpdateChatSettings(ctx, settings); err != nil {
			log.WarnContext(ctx, "Failed to update chat type", "error", err, "chat_id", chatID)
		}
	}

	welcome := "👋 Hi! I keep track of your tasks.\n\n" +
		"Add one with /add <text>, see them with /list, and check /help for everything else."
	if h.deps.Config.Telegram.BotInfo != nil && h.deps.Config.Telegram.BotInfo.Username != "" {
		welcome = fmt.Sprintf("👋 Hi! I'm @%s and I keep track of your tasks.\n\n"+
			"Add one with /add <text>, see them with /list, and check /help for everything else.",
			h.deps.Config.Telegram.BotInfo.Username)
	}

	if err := h.deps.Sender.SendMessage(ctx, chatID, welcome); err != nil {
		log.ErrorContext(ctx, "Failed to send welcome message", "error", err, "chat_id", chatID)
	}
}
