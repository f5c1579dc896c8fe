// Package cleanup removes old bot messages from chats according to each
// chat's retention settings.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"taskmaster/internal/database"
)

// ErrRunInProgress is returned by Run when a previous run has not finished.
var ErrRunInProgress = errors.New("cleanup run already in progress")

// defaultConcurrency bounds how many chats are cleaned at the same time.
const defaultConcurrency = 4

// SettingsSource provides the chats to clean and their retention settings.
type SettingsSource interface {
	ListBotMessageChatIDs(ctx context.Context) ([]int64, error)
	FindChatSettings(ctx context.Context, chatID int64) (*database.ChatSettings, error)
}

// MessageSource provides the recorded bot messages and removes records
// after the corresponding platform messages are gone.
type MessageSource interface {
	ListBotMessagesBefore(ctx context.Context, chatID int64, cutoff time.Time) ([]database.BotMessage, error)
	DeleteBotMessage(ctx context.Context, chatID int64, messageID int) error
}

// MessageDeleter deletes a message on the messaging platform.
type MessageDeleter interface {
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

// Config adjusts how a Runner executes.
type Config struct {
	// Concurrency is the maximum number of chats cleaned in parallel.
	// Zero selects a small default.
	Concurrency int

	// DefaultRetention is the retention period in days for chats without
	// explicit settings. Zero selects the standard default.
	DefaultRetention int

	// RetentionOverride, when positive, replaces DefaultRetention for a
	// single run. A chat's explicitly configured retention always wins;
	// the override never shortens it.
	RetentionOverride int
}

// Summary reports what a single cleanup run did.
type Summary struct {
	// ChatsProcessed counts chats that were examined, including chats
	// that had nothing to delete.
	ChatsProcessed int

	// MessagesDeleted counts messages removed from the platform and
	// from the message records.
	MessagesDeleted int

	// Failures counts messages that could not be deleted on the
	// platform. Their records are kept for the next run.
	Failures int
}

// Runner deletes expired bot messages chat by chat. At most one run is
// active at a time; overlapping invocations fail with ErrRunInProgress.
type Runner struct {
	settings SettingsSource
	messages MessageSource
	deleter  MessageDeleter
	cfg      Config
	logger   *slog.Logger
	running  atomic.Bool
}

// NewRunner creates a cleanup Runner. The logger may be nil.
func NewRunner(settings SettingsSource, messages MessageSource, deleter MessageDeleter, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.DefaultRetention <= 0 {
		cfg.DefaultRetention = database.DefaultRetentionDays
	}
	return &Runner{
		settings: settings,
		messages: messages,
		deleter:  deleter,
		cfg:      cfg,
		logger:   logger.With("component", "cleanup"),
	}
}

// Run executes one cleanup pass over every chat with recorded bot messages,
// using now as the reference instant for retention cutoffs. Platform delete
// failures are tolerated per message; a store failure aborts the run.
func (r *Runner) Run(ctx context.Context, now time.Time) (Summary, error) {
	if !r.running.CompareAndSwap(false, true) {
		return Summary{}, ErrRunInProgress
	}
	defer r.running.Store(false)

	chatIDs, err := r.settings.ListBotMessageChatIDs(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list chats for cleanup: %w", err)
	}

	r.logger.InfoContext(ctx, "Starting cleanup run", "chats", len(chatIDs))

	var processed, deleted, failures atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)

	for _, chatID := range chatIDs {
		g.Go(func() error {
			d, f, err := r.cleanChat(gctx, chatID, now)
			if err != nil {
				return err
			}
			processed.Add(1)
			deleted.Add(int64(d))
			failures.Add(int64(f))
			return nil
		})
	}

	err = g.Wait()
	summary := Summary{
		ChatsProcessed:  int(processed.Load()),
		MessagesDeleted: int(deleted.Load()),
		Failures:        int(failures.Load()),
	}
	if err != nil {
		r.logger.ErrorContext(ctx, "Cleanup run aborted",
			"chats_processed", summary.ChatsProcessed, "error", err)
		return summary, fmt.Errorf("cleanup run failed: %w", err)
	}

	r.logger.InfoContext(ctx, "Cleanup run finished",
		"chats_processed", summary.ChatsProcessed,
		"messages_deleted", summary.MessagesDeleted,
		"failures", summary.Failures)
	return summary, nil
}

// cleanChat removes the expired messages of a single chat, oldest first.
// It returns the number of deleted messages and platform delete failures.
func (r *Runner) cleanChat(ctx context.Context, chatID int64, now time.Time) (deleted, failures int, err error) {
	settings, err := r.settings.FindChatSettings(ctx, chatID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load settings for chat %d: %w", chatID, err)
	}

	// The override only applies to chats without explicit settings; a
	// configured retention is never shortened.
	retention := r.cfg.DefaultRetention
	if r.cfg.RetentionOverride > 0 {
		retention = r.cfg.RetentionOverride
	}
	enabled := true
	if settings != nil {
		retention = settings.RetentionDays
		enabled = settings.AutoCleanEnabled
	}
	if !enabled {
		r.logger.DebugContext(ctx, "Cleanup disabled for chat, skipping", "chat_id", chatID)
		return 0, 0, nil
	}

	cutoff := now.Add(-time.Duration(retention) * 24 * time.Hour)

	msgs, err := r.messages.ListBotMessagesBefore(ctx, chatID, cutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list messages for chat %d: %w", chatID, err)
	}
	if len(msgs) == 0 {
		return 0, 0, nil
	}

	for _, msg := range msgs {
		if ctx.Err() != nil {
			return deleted, failures, ctx.Err()
		}

		if err := r.deleter.DeleteMessage(ctx, msg.ChatID, msg.MessageID); err != nil {
			// The record stays so the message is retried next run.
			failures++
			r.logger.WarnContext(ctx, "Could not delete message on platform",
				"chat_id", msg.ChatID, "message_id", msg.MessageID, "error", err)
			continue
		}

		if err := r.messages.DeleteBotMessage(ctx, msg.ChatID, msg.MessageID); err != nil {
			return deleted, failures, fmt.Errorf("failed to remove record for message %d in chat %d: %w",
				msg.MessageID, msg.ChatID, err)
		}
		deleted++
	}

	r.logger.DebugContext(ctx, "Chat cleaned",
		"chat_id", chatID, "deleted", deleted, "failures", failures, "cutoff", cutoff)
	return deleted, failures, nil
}
