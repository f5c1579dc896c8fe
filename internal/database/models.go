package database

import (
	"database/sql"
	"time"
)

// Task priorities, from most to least urgent.
const (
	PriorityHigh   = "high"
	PriorityNormal = "normal"
	PriorityLow    = "low"
)

// ValidPriority reports whether p is a recognized task priority.
func ValidPriority(p string) bool {
	return p == PriorityHigh || p == PriorityNormal || p == PriorityLow
}

// DefaultRetentionDays is the retention window applied to chats that have
// never configured auto-clean.
const DefaultRetentionDays = 7

// RetentionChoices lists the retention windows a chat may select.
var RetentionChoices = []int{3, 7, 14, 30}

// ValidRetentionDays reports whether d is one of the selectable retention windows.
func ValidRetentionDays(d int) bool {
	for _, c := range RetentionChoices {
		if d == c {
			return true
		}
	}
	return false
}

// Task represents a single to-do item belonging to a chat. Tasks are never
// physically deleted by user commands; deletion marks them inactive so that
// completion statistics survive.
type Task struct {
	ID        uint      `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	ChatID   int64  `db:"chat_id"`
	Text     string `db:"text"`
	Done     bool   `db:"done"`
	Active   bool   `db:"active"`
	Priority string `db:"priority"`
	Category string `db:"category"`
	Notes    string `db:"notes"`

	DueAt    sql.NullTime `db:"due_date"`
	RemindAt sql.NullTime `db:"remind_at"`
	Reminded bool         `db:"reminded"`
}

// ChatSettings holds the per-chat configuration record. A row is created
// with defaults on first access and is never deleted afterwards.
type ChatSettings struct {
	ChatID    int64     `db:"chat_id"`
	ChatType  string    `db:"chat_type"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	AutoCleanEnabled bool   `db:"auto_clean_enabled"`
	RetentionDays    int    `db:"retention_days"`
	SortBy           string `db:"sort_by"`
}

// BotMessage records a message the bot posted into a chat, so the cleanup
// job can later delete it once it falls outside the chat's retention window.
type BotMessage struct {
	ID        uint      `db:"id"`
	ChatID    int64     `db:"chat_id"`
	MessageID int       `db:"message_id"`
	SentAt    time.Time `db:"sent_at"`
}

// Stats aggregates bot usage counters across all chats.
type Stats struct {
	TotalChats     int `db:"total_chats"`
	TotalTasks     int `db:"total_tasks"`
	ActiveTasks    int `db:"active_tasks"`
	CompletedTasks int `db:"completed_tasks"`
}
