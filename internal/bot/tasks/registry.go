package tasks

import (
	"context"

	"taskmaster/internal/config"
)

// ScheduledTaskFunc defines the signature for all scheduled tasks. The
// context provided by the scheduler must be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks initializes and returns a map of all scheduled tasks.
// The keys match the task names in the scheduler configuration.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := make(map[string]ScheduledTaskFunc)

	tasks[config.TaskAutoCleanup] = newAutoCleanupTask(deps)
	tasks[config.TaskReminderCheck] = newReminderCheckTask(deps)
	tasks[config.TaskSQLMaintenance] = newSQLMaintenanceTask(deps)

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
