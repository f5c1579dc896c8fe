// Package reminder delivers due task reminders to their chats.
package reminder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"taskmaster/internal/database"
)

// TaskSource provides due reminders and records delivery.
type TaskSource interface {
	DueReminders(ctx context.Context, now time.Time) ([]database.Task, error)
	MarkTaskReminded(ctx context.Context, id uint) error
}

// Sender posts a message into a chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Checker scans for tasks whose reminder has come due and notifies their
// chats. Failures on a single task never block the remaining tasks.
type Checker struct {
	tasks  TaskSource
	sender Sender
	logger *slog.Logger
}

// NewChecker creates a reminder Checker. The logger may be nil.
func NewChecker(tasks TaskSource, sender Sender, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Checker{
		tasks:  tasks,
		sender: sender,
		logger: logger.With("component", "reminder"),
	}
}

// Check delivers every reminder due at now. It returns the number of
// reminders actually sent.
func (c *Checker) Check(ctx context.Context, now time.Time) (int, error) {
	due, err := c.tasks.DueReminders(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch due reminders: %w", err)
	}

	sent := 0
	for _, task := range due {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}

		text := fmt.Sprintf("⏰ Reminder: %s", task.Text)
		if err := c.sender.SendMessage(ctx, task.ChatID, text); err != nil {
			// Left unmarked so delivery is retried on the next pass.
			c.logger.WarnContext(ctx, "Could not deliver reminder",
				"task_id", task.ID, "chat_id", task.ChatID, "error", err)
			continue
		}

		if err := c.tasks.MarkTaskReminded(ctx, task.ID); err != nil {
			c.logger.ErrorContext(ctx, "Could not mark reminder as delivered",
				"task_id", task.ID, "error", err)
			continue
		}
		sent++
	}

	if sent > 0 {
		c.logger.InfoContext(ctx, "Reminders delivered", "count", sent)
	}
	return sent, nil
}
