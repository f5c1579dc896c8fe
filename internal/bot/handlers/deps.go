package handlers

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"taskmaster/internal/config"
	"taskmaster/internal/database"
)

// MessageSender posts messages into chats. Messages sent into group chats
// are recorded for later cleanup.
type MessageSender interface {
	Send(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger *slog.Logger
	Config *config.Config
	Store  database.Store
	Sender MessageSender
}
