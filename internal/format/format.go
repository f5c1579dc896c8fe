// Package format renders tasks, settings and stats as chat messages.
package format

import (
	"fmt"
	"strings"

	"taskmaster/internal/database"
)

// priorityMarker returns the emoji prefix for a task priority. Normal
// priority has no marker.
func priorityMarker(priority string) string {
	switch priority {
	case database.PriorityHigh:
		return "🔴 "
	case database.PriorityLow:
		return "🔵 "
	default:
		return ""
	}
}

// TaskLine renders a single task entry with its list position.
func TaskLine(position int, task database.Task) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d. ", position)
	if task.Done {
		b.WriteString("✅ ")
	}
	b.WriteString(priorityMarker(task.Priority))
	b.WriteString(task.Text)

	if task.Category != "" {
		fmt.Fprintf(&b, " #%s", task.Category)
	}
	if task.DueAt.Valid && !task.Done {
		fmt.Fprintf(&b, " 📅 %s", task.DueAt.Time.Format("Jan 2 15:04"))
	}
	if task.RemindAt.Valid && !task.Reminded {
		fmt.Fprintf(&b, " ⏰ %s", task.RemindAt.Time.Format("Jan 2 15:04"))
	}
	return b.String()
}

// TaskList renders a numbered task list under the given title. An empty
// list renders a friendly placeholder instead.
func TaskList(title string, tasks []database.Task) string {
	if len(tasks) == 0 {
		return "📭 No tasks here. Add one with /add <text>."
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	for i, task := range tasks {
		b.WriteString(TaskLine(i+1, task))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Settings renders a chat's settings overview.
func Settings(s *database.ChatSettings) string {
	state := "off"
	if s.AutoCleanEnabled {
		state = "on"
	}
	return fmt.Sprintf("⚙️ Settings\n\nAuto-cleanup: %s\nMessage retention: %d days\nSort order: %s",
		state, s.RetentionDays, s.SortBy)
}

// Stats renders the global usage counters.
func Stats(s *database.Stats) string {
	return fmt.Sprintf("📊 Stats\n\nChats: %d\nTasks total: %d\nOpen: %d\nCompleted: %d",
		s.TotalChats, s.TotalTasks, s.ActiveTasks, s.CompletedTasks)
}
