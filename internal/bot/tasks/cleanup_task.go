package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskmaster/internal/cleanup"
)

// newAutoCleanupTask creates the scheduled task that deletes old bot
// messages according to each chat's retention settings.
func newAutoCleanupTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "auto_cleanup")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting scheduled message cleanup...")
		startTime := time.Now()

		summary, err := deps.CleanupRunner.Run(ctx, time.Now().UTC())
		duration := time.Since(startTime)

		if errors.Is(err, cleanup.ErrRunInProgress) {
			log.WarnContext(ctx, "Previous cleanup run still active, skipping this invocation")
			return nil
		}
		if err != nil {
			log.ErrorContext(ctx, "Message cleanup task failed", "error", err, "duration", duration)
			return fmt.Errorf("message cleanup failed: %w", err)
		}

		log.InfoContext(ctx, "Scheduled message cleanup completed",
			"chats_processed", summary.ChatsProcessed,
			"messages_deleted", summary.MessagesDeleted,
			"failures", summary.Failures,
			"duration", duration)
		return nil
	}
}
