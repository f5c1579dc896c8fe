package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewBroadcastHandler returns a handler for the admin /broadcast command,
// which sends a message to every chat known to the bot.
func NewBroadcastHandler(deps HandlerDeps) bot.HandlerFunc {
	return broadcastHandler{deps}.Handle
}

type broadcastHandler struct {
	deps HandlerDeps
}

func (h broadcastHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "broadcast")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	text := commandArgs(update.Message.Text)
	if text == "" {
		reply(ctx, h.deps, chatID, "Usage: /broadcast <message>")
		return
	}

	chatIDs, err := h.deps.Store.ListChatIDs(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to list chats for broadcast", "error", err)
		reply(ctx, h.deps, chatID, "❌ Could not load the chat list. Please try again.")
		return
	}

	sent := 0
	for _, id := range chatIDs {
		if ctx.Err() != nil {
			return
		}
		if err := h.deps.Sender.SendMessage(ctx, id, fmt.Sprintf("📢 %s", text)); err != nil {
			log.WarnContext(ctx, "Failed to deliver broadcast to chat", "chat_id", id, "error", err)
			continue
		}
		sent++
	}

	log.InfoContext(ctx, "Broadcast delivered", "chats", sent, "total", len(chatIDs))
	reply(ctx, h.deps, chatID, fmt.Sprintf("📢 Broadcast sent to %d of %d chats.", sent, len(chatIDs)))
}
