package handlers

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"taskmaster/internal/database"
)

// reply sends text to a chat and logs delivery failures.
func reply(ctx context.Context, deps HandlerDeps, chatID int64, text string) {
	if err := deps.Sender.SendMessage(ctx, chatID, text); err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
	}
}

// commandArgs returns the text following the command token, trimmed.
// "/add buy milk" yields "buy milk".
func commandArgs(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexAny(text, " \n"); i >= 0 {
		return strings.TrimSpace(text[i+1:])
	}
	return ""
}

// splitFirst splits args into the first whitespace-separated field and the
// trimmed remainder.
func splitFirst(args string) (first, rest string) {
	args = strings.TrimSpace(args)
	if i := strings.IndexAny(args, " \n"); i >= 0 {
		return args[:i], strings.TrimSpace(args[i+1:])
	}
	return args, ""
}

var priorityRank = map[string]int{
	database.PriorityHigh:   0,
	database.PriorityNormal: 1,
	database.PriorityLow:    2,
}

// openTasks lists a chat's tasks in the order /list displays them, so that
// positional commands and the listing always agree.
func openTasks(ctx context.Context, deps HandlerDeps, chatID int64, includeDone bool) ([]database.Task, error) {
	tasks, err := deps.Store.ListTasks(ctx, chatID, includeDone)
	if err != nil {
		return nil, err
	}

	settings, err := deps.Store.GetChatSettings(ctx, chatID)
	if err != nil {
		deps.Logger.WarnContext(ctx, "Failed to load chat settings, using date order",
			"error", err, "chat_id", chatID)
		return tasks, nil
	}
	if settings.SortBy == "priority" {
		sort.SliceStable(tasks, func(i, j int) bool {
			return priorityRank[tasks[i].Priority] < priorityRank[tasks[j].Priority]
		})
	}
	return tasks, nil
}

// taskAt resolves a 1-based position in the chat's open task list. When the
// position is invalid it returns a user-facing message instead of a task.
func taskAt(ctx context.Context, deps HandlerDeps, chatID int64, posArg string) (*database.Task, string, error) {
	pos, err := strconv.Atoi(posArg)
	if err != nil || pos < 1 {
		return nil, "Please give the task number from /list.", nil
	}

	tasks, err := openTasks(ctx, deps, chatID, false)
	if err != nil {
		return nil, "", err
	}
	if pos > len(tasks) {
		return nil, "There is no task with that number. Check /list.", nil
	}
	return &tasks[pos-1], "", nil
}
