package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// CreateTask inserts a new task record and populates its ID.
	CreateTask(ctx context.Context, task *Task) error

	// ListTasks retrieves the active tasks for a chat in creation order.
	// With includeDone, completed (but still active) tasks are included.
	ListTasks(ctx context.Context, chatID int64, includeDone bool) ([]Task, error)

	// SearchTasks retrieves active tasks whose text contains the query substring.
	SearchTasks(ctx context.Context, chatID int64, query string) ([]Task, error)

	// ListTasksByCategory retrieves active tasks tagged with the given category.
	ListTasksByCategory(ctx context.Context, chatID int64, category string) ([]Task, error)

	// ListTasksByPriority retrieves active tasks with the given priority.
	ListTasksByPriority(ctx context.Context, chatID int64, priority string) ([]Task, error)

	// MarkTaskDone marks a task as completed.
	MarkTaskDone(ctx context.Context, id uint) error

	// DeactivateTask hides a task from all listings without erasing it.
	DeactivateTask(ctx context.Context, id uint) error

	// ClearTasks deactivates every active task in a chat and returns the count.
	ClearTasks(ctx context.Context, chatID int64) (int64, error)

	// SetTaskReminder sets the reminder instant on a task and rearms it.
	SetTaskReminder(ctx context.Context, id uint, remindAt time.Time) error

	// SetTaskDueDate sets the due date on a task.
	SetTaskDueDate(ctx context.Context, id uint, dueAt time.Time) error

	// ListTasksDueBetween retrieves active, unfinished tasks with a due date
	// in the half-open interval [start, end), earliest due first.
	ListTasksDueBetween(ctx context.Context, chatID int64, start, end time.Time) ([]Task, error)

	// SetTaskPriority updates a task's priority.
	SetTaskPriority(ctx context.Context, id uint, priority string) error

	// SetTaskCategory updates a task's category tag.
	SetTaskCategory(ctx context.Context, id uint, category string) error

	// DueReminders retrieves active, unfinished tasks whose reminder is due
	// and has not fired yet.
	DueReminders(ctx context.Context, now time.Time) ([]Task, error)

	// MarkTaskReminded records that a task's reminder has fired.
	MarkTaskReminded(ctx context.Context, id uint) error

	// GetChatSettings retrieves the settings for a chat, creating a record
	// with defaults on first access.
	GetChatSettings(ctx context.Context, chatID int64) (*ChatSettings, error)

	// FindChatSettings retrieves the settings for a chat without creating
	// a record. Returns nil, nil if the chat has no settings.
	FindChatSettings(ctx context.Context, chatID int64) (*ChatSettings, error)

	// UpdateChatSettings persists changes to an existing settings record.
	UpdateChatSettings(ctx context.Context, settings *ChatSettings) error

	// ListChatIDs retrieves the IDs of all chats known to the bot.
	ListChatIDs(ctx context.Context) ([]int64, error)

	// RecordBotMessage records a message the bot sent into a chat.
	RecordBotMessage(ctx context.Context, msg *BotMessage) error

	// ListBotMessagesBefore retrieves the recorded bot messages for a chat
	// sent strictly before cutoff, oldest first.
	ListBotMessagesBefore(ctx context.Context, chatID int64, cutoff time.Time) ([]BotMessage, error)

	// ListBotMessageChatIDs retrieves the distinct chat IDs that have
	// recorded bot messages.
	ListBotMessageChatIDs(ctx context.Context) ([]int64, error)

	// DeleteBotMessage removes a recorded bot message.
	DeleteBotMessage(ctx context.Context, chatID int64, messageID int) error

	// Stats aggregates usage counters across all chats.
	Stats(ctx context.Context) (*Stats, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateTask inserts a new task record and populates its ID.
func (s *sqlxStore) CreateTask(ctx context.Context, task *Task) error {
	if task == nil {
		return fmt.Errorf("cannot save nil task")
	}
	if task.ChatID == 0 {
		return fmt.Errorf("task must have a non-zero chat_id")
	}
	if task.Text == "" {
		return fmt.Errorf("task must have non-empty text")
	}
	if task.Priority == "" {
		task.Priority = PriorityNormal
	}
	if !ValidPriority(task.Priority) {
		return fmt.Errorf("invalid task priority %q", task.Priority)
	}

	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	task.Active = true

	query := `
        INSERT INTO tasks (chat_id, text, done, active, priority, category, notes,
                           due_date, remind_at, reminded, created_at, updated_at)
        VALUES (:chat_id, :text, :done, :active, :priority, :category, :notes,
                :due_date, :remind_at, :reminded, :created_at, :updated_at);
    `

	result, err := s.db.NamedExecContext(ctx, query, task)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving task", "chat_id", task.ChatID, "error", err)
		return fmt.Errorf("failed to save task for chat %d: %w", task.ChatID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		task.ID = uint(id)
	} else {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after saving task",
			"chat_id", task.ChatID, "error", err)
	}

	s.logger.DebugContext(ctx, "Task saved successfully", "chat_id", task.ChatID, "task_id", task.ID)
	return nil
}

const taskColumns = `id, chat_id, text, done, active, priority, category, notes,
                     due_date, remind_at, reminded, created_at, updated_at`

// ListTasks retrieves the active tasks for a chat in creation order.
func (s *sqlxStore) ListTasks(ctx context.Context, chatID int64, includeDone bool) ([]Task, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE chat_id = ? AND active = 1`
	if !includeDone {
		query += ` AND done = 0`
	}
	query += ` ORDER BY id;`

	var tasks []Task
	if err := s.selectTasks(ctx, &tasks, query, chatID); err != nil {
		return nil, fmt.Errorf("failed to list tasks for chat %d: %w", chatID, err)
	}
	return tasks, nil
}

// SearchTasks retrieves active tasks whose text contains the query substring,
// matched case-insensitively.
func (s *sqlxStore) SearchTasks(ctx context.Context, chatID int64, query string) ([]Task, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}

	q := `SELECT ` + taskColumns + ` FROM tasks
	      WHERE chat_id = ? AND active = 1 AND done = 0 AND text LIKE ? ESCAPE '\'
	      ORDER BY id;`

	var tasks []Task
	if err := s.selectTasks(ctx, &tasks, q, chatID, "%"+escapeLike(query)+"%"); err != nil {
		return nil, fmt.Errorf("failed to search tasks for chat %d: %w", chatID, err)
	}
	return tasks, nil
}

// ListTasksByCategory retrieves active tasks tagged with the given category.
func (s *sqlxStore) ListTasksByCategory(ctx context.Context, chatID int64, category string) ([]Task, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}

	q := `SELECT ` + taskColumns + ` FROM tasks
	      WHERE chat_id = ? AND active = 1 AND done = 0 AND category = ?
	      ORDER BY id;`

	var tasks []Task
	if err := s.selectTasks(ctx, &tasks, q, chatID, category); err != nil {
		return nil, fmt.Errorf("failed to list tasks by category for chat %d: %w", chatID, err)
	}
	return tasks, nil
}

// ListTasksByPriority retrieves active tasks with the given priority.
func (s *sqlxStore) ListTasksByPriority(ctx context.Context, chatID int64, priority string) ([]Task, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}
	if !ValidPriority(priority) {
		return nil, fmt.Errorf("invalid task priority %q", priority)
	}

	q := `SELECT ` + taskColumns + ` FROM tasks
	      WHERE chat_id = ? AND active = 1 AND done = 0 AND priority = ?
	      ORDER BY id;`

	var tasks []Task
	if err := s.selectTasks(ctx, &tasks, q, chatID, priority); err != nil {
		return nil, fmt.Errorf("failed to list tasks by priority for chat %d: %w", chatID, err)
	}
	return tasks, nil
}

func (s *sqlxStore) selectTasks(ctx context.Context, dest *[]Task, query string, args ...any) error {
	err := s.db.SelectContext(ctx, dest, query, args...)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching tasks", "error", err)
		return err
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error fetching tasks", "error", err)
		return err
	}
	return nil
}

// MarkTaskDone marks a task as completed.
func (s *sqlxStore) MarkTaskDone(ctx context.Context, id uint) error {
	return s.updateTask(ctx, id, `UPDATE tasks SET done = 1, updated_at = ? WHERE id = ? AND active = 1`)
}

// DeactivateTask hides a task from all listings without erasing it.
func (s *sqlxStore) DeactivateTask(ctx context.Context, id uint) error {
	return s.updateTask(ctx, id, `UPDATE tasks SET active = 0, updated_at = ? WHERE id = ? AND active = 1`)
}

// MarkTaskReminded records that a task's reminder has fired.
func (s *sqlxStore) MarkTaskReminded(ctx context.Context, id uint) error {
	return s.updateTask(ctx, id, `UPDATE tasks SET reminded = 1, updated_at = ? WHERE id = ?`)
}

func (s *sqlxStore) updateTask(ctx context.Context, id uint, query string) error {
	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error updating task", "task_id", id, "error", err)
		return fmt.Errorf("failed to update task %d: %w", id, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("task %d not found: %w", id, sql.ErrNoRows)
	}
	return nil
}

// ClearTasks deactivates every active task in a chat and returns the count.
func (s *sqlxStore) ClearTasks(ctx context.Context, chatID int64) (int64, error) {
	if chatID == 0 {
		return 0, fmt.Errorf("chat_id cannot be zero")
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET active = 0, updated_at = ? WHERE chat_id = ? AND active = 1`,
		time.Now().UTC(), chatID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error clearing tasks", "chat_id", chatID, "error", err)
		return 0, fmt.Errorf("failed to clear tasks for chat %d: %w", chatID, err)
	}

	count, _ := result.RowsAffected()
	s.logger.InfoContext(ctx, "Cleared tasks", "chat_id", chatID, "count", count)
	return count, nil
}

// SetTaskReminder sets the reminder instant on a task and rearms it.
func (s *sqlxStore) SetTaskReminder(ctx context.Context, id uint, remindAt time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET remind_at = ?, reminded = 0, updated_at = ? WHERE id = ? AND active = 1`,
		remindAt.UTC(), time.Now().UTC(), id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error setting task reminder", "task_id", id, "error", err)
		return fmt.Errorf("failed to set reminder on task %d: %w", id, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("task %d not found: %w", id, sql.ErrNoRows)
	}

	s.logger.DebugContext(ctx, "Task reminder set", "task_id", id, "remind_at", remindAt)
	return nil
}

// SetTaskDueDate sets the due date on a task.
func (s *sqlxStore) SetTaskDueDate(ctx context.Context, id uint, dueAt time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET due_date = ?, updated_at = ? WHERE id = ? AND active = 1`,
		dueAt.UTC(), time.Now().UTC(), id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error setting task due date", "task_id", id, "error", err)
		return fmt.Errorf("failed to set due date on task %d: %w", id, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("task %d not found: %w", id, sql.ErrNoRows)
	}

	s.logger.DebugContext(ctx, "Task due date set", "task_id", id, "due_date", dueAt)
	return nil
}

// ListTasksDueBetween retrieves active, unfinished tasks with a due date in
// the half-open interval [start, end), earliest due first.
func (s *sqlxStore) ListTasksDueBetween(ctx context.Context, chatID int64, start, end time.Time) ([]Task, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	q := `SELECT ` + taskColumns + ` FROM tasks
	      WHERE chat_id = ? AND active = 1 AND done = 0
	        AND due_date IS NOT NULL AND due_date >= ? AND due_date < ?
	      ORDER BY due_date, id;`

	var tasks []Task
	if err := s.selectTasks(ctx, &tasks, q, chatID, start.UTC(), end.UTC()); err != nil {
		return nil, fmt.Errorf("failed to list due tasks for chat %d: %w", chatID, err)
	}
	return tasks, nil
}

// SetTaskPriority updates a task's priority.
func (s *sqlxStore) SetTaskPriority(ctx context.Context, id uint, priority string) error {
	if !ValidPriority(priority) {
		return fmt.Errorf("invalid task priority %q", priority)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET priority = ?, updated_at = ? WHERE id = ? AND active = 1`,
		priority, time.Now().UTC(), id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error setting task priority", "task_id", id, "error", err)
		return fmt.Errorf("failed to set priority on task %d: %w", id, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("task %d not found: %w", id, sql.ErrNoRows)
	}
	return nil
}

// SetTaskCategory updates a task's category tag.
func (s *sqlxStore) SetTaskCategory(ctx context.Context, id uint, category string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET category = ?, updated_at = ? WHERE id = ? AND active = 1`,
		category, time.Now().UTC(), id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error setting task category", "task_id", id, "error", err)
		return fmt.Errorf("failed to set category on task %d: %w", id, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("task %d not found: %w", id, sql.ErrNoRows)
	}
	return nil
}

// DueReminders retrieves active, unfinished tasks whose reminder is due and
// has not fired yet, oldest reminder first.
func (s *sqlxStore) DueReminders(ctx context.Context, now time.Time) ([]Task, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	q := `SELECT ` + taskColumns + ` FROM tasks
	      WHERE active = 1 AND done = 0 AND reminded = 0
	        AND remind_at IS NOT NULL AND remind_at <= ?
	      ORDER BY remind_at, id;`

	var tasks []Task
	if err := s.selectTasks(ctx, &tasks, q, now.UTC()); err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	return tasks, nil
}

// GetChatSettings retrieves the settings for a chat, creating a record with
// defaults on first access.
func (s *sqlxStore) GetChatSettings(ctx context.Context, chatID int64) (*ChatSettings, error) {
	settings, err := s.FindChatSettings(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		return settings, nil
	}

	now := time.Now().UTC()
	settings = &ChatSettings{
		ChatID:           chatID,
		ChatType:         "private",
		AutoCleanEnabled: true,
		RetentionDays:    DefaultRetentionDays,
		SortBy:           "date",
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	query := `
        INSERT INTO chat_settings (chat_id, chat_type, auto_clean_enabled, retention_days,
                                   sort_by, created_at, updated_at)
        VALUES (:chat_id, :chat_type, :auto_clean_enabled, :retention_days,
                :sort_by, :created_at, :updated_at);
    `
	if _, err := s.db.NamedExecContext(ctx, query, settings); err != nil {
		s.logger.ErrorContext(ctx, "Error creating chat settings", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to create settings for chat %d: %w", chatID, err)
	}

	s.logger.DebugContext(ctx, "Created default chat settings", "chat_id", chatID)
	return settings, nil
}

// FindChatSettings retrieves the settings for a chat without creating a
// record. Returns nil, nil if the chat has no settings.
func (s *sqlxStore) FindChatSettings(ctx context.Context, chatID int64) (*ChatSettings, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var settings ChatSettings
	query := `SELECT chat_id, chat_type, auto_clean_enabled, retention_days, sort_by,
	                 created_at, updated_at
	          FROM chat_settings WHERE chat_id = ?`

	err := s.db.GetContext(ctx, &settings, query, chatID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching chat settings",
			"chat_id", chatID, "error", err)
		return nil, err
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting chat settings", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to get settings for chat %d: %w", chatID, err)
	}

	return &settings, nil
}

// UpdateChatSettings persists changes to an existing settings record.
func (s *sqlxStore) UpdateChatSettings(ctx context.Context, settings *ChatSettings) error {
	if settings == nil {
		return fmt.Errorf("cannot save nil chat settings")
	}
	if !ValidRetentionDays(settings.RetentionDays) {
		return fmt.Errorf("invalid retention days %d, must be one of %v",
			settings.RetentionDays, RetentionChoices)
	}

	settings.UpdatedAt = time.Now().UTC()

	query := `
        UPDATE chat_settings SET
            chat_type = :chat_type,
            auto_clean_enabled = :auto_clean_enabled,
            retention_days = :retention_days,
            sort_by = :sort_by,
            updated_at = :updated_at
        WHERE chat_id = :chat_id;
    `
	result, err := s.db.NamedExecContext(ctx, query, settings)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error updating chat settings", "chat_id", settings.ChatID, "error", err)
		return fmt.Errorf("failed to update settings for chat %d: %w", settings.ChatID, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("settings for chat %d not found: %w", settings.ChatID, sql.ErrNoRows)
	}

	s.logger.DebugContext(ctx, "Chat settings updated", "chat_id", settings.ChatID)
	return nil
}

// ListChatIDs retrieves the IDs of all chats known to the bot.
func (s *sqlxStore) ListChatIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := s.db.SelectContext(ctx, &ids, `SELECT chat_id FROM chat_settings ORDER BY chat_id`); err != nil {
		s.logger.ErrorContext(ctx, "Error listing chat IDs", "error", err)
		return nil, fmt.Errorf("failed to list chat IDs: %w", err)
	}
	return ids, nil
}

// RecordBotMessage records a message the bot sent into a chat.
func (s *sqlxStore) RecordBotMessage(ctx context.Context, msg *BotMessage) error {
	if msg == nil {
		return fmt.Errorf("cannot record nil bot message")
	}
	if msg.ChatID == 0 || msg.MessageID == 0 {
		return fmt.Errorf("bot message must have non-zero chat_id and message_id")
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}

	query := `INSERT INTO bot_messages (chat_id, message_id, sent_at)
	          VALUES (:chat_id, :message_id, :sent_at);`

	result, err := s.db.NamedExecContext(ctx, query, msg)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error recording bot message",
			"chat_id", msg.ChatID, "message_id", msg.MessageID, "error", err)
		return fmt.Errorf("failed to record bot message %d in chat %d: %w", msg.MessageID, msg.ChatID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		msg.ID = uint(id)
	}
	return nil
}

// ListBotMessagesBefore retrieves the recorded bot messages for a chat sent
// strictly before cutoff, oldest first.
func (s *sqlxStore) ListBotMessagesBefore(ctx context.Context, chatID int64, cutoff time.Time) ([]BotMessage, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var msgs []BotMessage
	query := `SELECT id, chat_id, message_id, sent_at FROM bot_messages
	          WHERE chat_id = ? AND sent_at < ?
	          ORDER BY sent_at, id;`

	err := s.db.SelectContext(ctx, &msgs, query, chatID, cutoff.UTC())
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching bot messages",
			"chat_id", chatID, "error", err)
		return nil, err
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error listing bot messages", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to list bot messages for chat %d: %w", chatID, err)
	}
	return msgs, nil
}

// ListBotMessageChatIDs retrieves the distinct chat IDs that have recorded
// bot messages.
func (s *sqlxStore) ListBotMessageChatIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	query := `SELECT DISTINCT chat_id FROM bot_messages ORDER BY chat_id`
	if err := s.db.SelectContext(ctx, &ids, query); err != nil {
		s.logger.ErrorContext(ctx, "Error listing bot message chat IDs", "error", err)
		return nil, fmt.Errorf("failed to list bot message chat IDs: %w", err)
	}
	return ids, nil
}

// DeleteBotMessage removes a recorded bot message.
func (s *sqlxStore) DeleteBotMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM bot_messages WHERE chat_id = ? AND message_id = ?`, chatID, messageID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting bot message record",
			"chat_id", chatID, "message_id", messageID, "error", err)
		return fmt.Errorf("failed to delete bot message %d in chat %d: %w", messageID, chatID, err)
	}
	return nil
}

// Stats aggregates usage counters across all chats.
func (s *sqlxStore) Stats(ctx context.Context) (*Stats, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var stats Stats
	query := `
        SELECT
            (SELECT COUNT(*) FROM chat_settings) AS total_chats,
            (SELECT COUNT(*) FROM tasks) AS total_tasks,
            (SELECT COUNT(*) FROM tasks WHERE active = 1 AND done = 0) AS active_tasks,
            (SELECT COUNT(*) FROM tasks WHERE active = 1 AND done = 1) AS completed_tasks;
    `
	if err := s.db.GetContext(ctx, &stats, query); err != nil {
		s.logger.ErrorContext(ctx, "Error aggregating stats", "error", err)
		return nil, fmt.Errorf("failed to aggregate stats: %w", err)
	}
	return &stats, nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}

// escapeLike escapes LIKE wildcards in a user-supplied search term.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
