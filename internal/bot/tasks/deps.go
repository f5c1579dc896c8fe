// Package tasks implements the scheduled background tasks of the bot:
// message cleanup, reminder delivery and database maintenance.
package tasks

import (
	"log/slog"

	"taskmaster/internal/cleanup"
	"taskmaster/internal/config"
	"taskmaster/internal/database"
	"taskmaster/internal/reminder"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger          *slog.Logger
	Store           database.Store
	Config          *config.Config
	CleanupRunner   *cleanup.Runner
	ReminderChecker *reminder.Checker
}
