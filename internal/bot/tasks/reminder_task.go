package tasks

import (
	"context"
	"fmt"
	"time"
)

// newReminderCheckTask creates the scheduled task that delivers due task
// reminders. It runs every minute by default.
func newReminderCheckTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "reminder_check")

	return func(ctx context.Context) error {
		sent, err := deps.ReminderChecker.Check(ctx, time.Now().UTC())
		if err != nil {
			log.ErrorContext(ctx, "Reminder check failed", "error", err)
			return fmt.Errorf("reminder check failed: %w", err)
		}

		if sent > 0 {
			log.InfoContext(ctx, "Reminder check completed", "sent", sent)
		}
		return nil
	}
}
