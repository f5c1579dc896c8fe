package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"taskmaster/internal/database"
)

// MessageRecorder persists a record of a message the bot sent.
type MessageRecorder interface {
	RecordBotMessage(ctx context.Context, msg *database.BotMessage) error
}

// Sender posts messages through the Telegram API. Every message sent into
// a group chat is recorded so the cleanup job can delete it later.
type Sender struct {
	bot      *bot.Bot
	recorder MessageRecorder
	logger   *slog.Logger
}

// NewSender creates a Sender. The logger may be nil.
func NewSender(b *bot.Bot, recorder MessageRecorder, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Sender{
		bot:      b,
		recorder: recorder,
		logger:   logger.With("component", "sender"),
	}
}

// Send posts a message with full parameter control and records it when the
// destination is a group chat.
func (s *Sender) Send(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	msg, err := s.bot.SendMessage(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	s.record(ctx, msg)
	return msg, nil
}

// SendMessage posts a plain text message into a chat.
func (s *Sender) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := s.Send(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
	return err
}

// record stores a bot message record for group chats. Recording failures
// are logged, not propagated, so sending never fails because of them.
func (s *Sender) record(ctx context.Context, msg *models.Message) {
	if msg == nil || s.recorder == nil {
		return
	}
	if msg.Chat.Type != models.ChatTypeGroup && msg.Chat.Type != models.ChatTypeSupergroup {
		return
	}

	rec := &database.BotMessage{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		SentAt:    time.Unix(int64(msg.Date), 0).UTC(),
	}
	if err := s.recorder.RecordBotMessage(ctx, rec); err != nil {
		s.logger.WarnContext(ctx, "Could not record sent message",
			"chat_id", rec.ChatID, "message_id", rec.MessageID, "error", err)
	}
}

// BotDeleter adapts the Telegram delete API to the shape the cleanup job
// expects.
type BotDeleter struct {
	bot *bot.Bot
}

// NewBotDeleter creates a BotDeleter.
func NewBotDeleter(b *bot.Bot) *BotDeleter {
	return &BotDeleter{bot: b}
}

// DeleteMessage deletes a message on Telegram.
func (d *BotDeleter) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	ok, err := d.bot.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message %d in chat %d: %w", messageID, chatID, err)
	}
	if !ok {
		return fmt.Errorf("telegram refused to delete message %d in chat %d", messageID, chatID)
	}
	return nil
}
