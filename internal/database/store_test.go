package database_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"taskmaster/internal/database"
)

func newTestStore(t *testing.T) database.Store {
	t.Helper()

	db, err := database.NewDB(":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		database.CloseDB(db)
	})

	return database.NewStore(db, nil)
}

// ignoreTimestamps drops the columns the store stamps itself so tests can
// compare the fields they actually control.
var ignoreTimestamps = cmpopts.IgnoreFields(database.Task{}, "CreatedAt", "UpdatedAt", "RemindAt")

func TestTaskLifecycle(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	first := &database.Task{ChatID: 100, Text: "buy milk"}
	second := &database.Task{ChatID: 100, Text: "walk the dog", Priority: database.PriorityHigh}

	for _, task := range []*database.Task{first, second} {
		if err := store.CreateTask(ctx, task); err != nil {
			t.Fatalf("CreateTask(%q): %v", task.Text, err)
		}
		if task.ID == 0 {
			t.Fatalf("CreateTask(%q) did not populate ID", task.Text)
		}
	}

	tasks, err := store.ListTasks(ctx, 100, false)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}

	want := []database.Task{
		{ID: first.ID, ChatID: 100, Text: "buy milk", Active: true, Priority: database.PriorityNormal},
		{ID: second.ID, ChatID: 100, Text: "walk the dog", Active: true, Priority: database.PriorityHigh},
	}
	if diff := cmp.Diff(want, tasks, ignoreTimestamps); diff != "" {
		t.Errorf("ListTasks mismatch (-want +got):\n%s", diff)
	}

	if err := store.MarkTaskDone(ctx, first.ID); err != nil {
		t.Fatalf("MarkTaskDone: %v", err)
	}

	tasks, err = store.ListTasks(ctx, 100, false)
	if err != nil {
		t.Fatalf("ListTasks after done: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != second.ID {
		t.Errorf("expected only the open task after MarkTaskDone, got %+v", tasks)
	}

	tasks, err = store.ListTasks(ctx, 100, true)
	if err != nil {
		t.Fatalf("ListTasks includeDone: %v", err)
	}
	if len(tasks) != 2 {
		t.Errorf("expected both tasks with includeDone, got %d", len(tasks))
	}

	if err := store.DeactivateTask(ctx, second.ID); err != nil {
		t.Fatalf("DeactivateTask: %v", err)
	}
	tasks, err = store.ListTasks(ctx, 100, true)
	if err != nil {
		t.Fatalf("ListTasks after deactivate: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != first.ID {
		t.Errorf("deactivated task still listed: %+v", tasks)
	}
}

func TestClearTasks(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		if err := store.CreateTask(ctx, &database.Task{ChatID: 200, Text: text}); err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
	}
	if err := store.CreateTask(ctx, &database.Task{ChatID: 201, Text: "other chat"}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	count, err := store.ClearTasks(ctx, 200)
	if err != nil {
		t.Fatalf("ClearTasks: %v", err)
	}
	if count != 3 {
		t.Errorf("ClearTasks count = %d, want 3", count)
	}

	tasks, err := store.ListTasks(ctx, 200, true)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("tasks remain after ClearTasks: %+v", tasks)
	}

	tasks, err = store.ListTasks(ctx, 201, true)
	if err != nil {
		t.Fatalf("ListTasks other chat: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("ClearTasks touched another chat, got %d tasks", len(tasks))
	}
}

func TestCreateTaskValidation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	cases := []struct {
		name string
		task *database.Task
	}{
		{"nil task", nil},
		{"zero chat", &database.Task{Text: "x"}},
		{"empty text", &database.Task{ChatID: 1}},
		{"bad priority", &database.Task{ChatID: 1, Text: "x", Priority: "urgent"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := store.CreateTask(ctx, tc.task); err == nil {
				t.Errorf("CreateTask accepted invalid input")
			}
		})
	}
}

func TestSearchAndFilters(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	seed := []database.Task{
		{ChatID: 300, Text: "Buy groceries", Category: "errands"},
		{ChatID: 300, Text: "buy stamps", Category: "errands", Priority: database.PriorityLow},
		{ChatID: 300, Text: "file taxes", Category: "finance", Priority: database.PriorityHigh},
	}
	for i := range seed {
		if err := store.CreateTask(ctx, &seed[i]); err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
	}

	got, err := store.SearchTasks(ctx, 300, "buy")
	if err != nil {
		t.Fatalf("SearchTasks: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("SearchTasks(%q) returned %d tasks, want 2", "buy", len(got))
	}

	// Wildcards in the query must be treated literally.
	got, err = store.SearchTasks(ctx, 300, "%")
	if err != nil {
		t.Fatalf("SearchTasks wildcard: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("SearchTasks(%q) matched %d tasks, want 0", "%", len(got))
	}

	got, err = store.ListTasksByCategory(ctx, 300, "finance")
	if err != nil {
		t.Fatalf("ListTasksByCategory: %v", err)
	}
	if len(got) != 1 || got[0].Text != "file taxes" {
		t.Errorf("ListTasksByCategory(finance) = %+v", got)
	}

	got, err = store.ListTasksByPriority(ctx, 300, database.PriorityHigh)
	if err != nil {
		t.Fatalf("ListTasksByPriority: %v", err)
	}
	if len(got) != 1 || got[0].Text != "file taxes" {
		t.Errorf("ListTasksByPriority(high) = %+v", got)
	}

	if _, err := store.ListTasksByPriority(ctx, 300, "urgent"); err == nil {
		t.Errorf("ListTasksByPriority accepted invalid priority")
	}
}

func TestReminders(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	due := &database.Task{ChatID: 400, Text: "due task"}
	future := &database.Task{ChatID: 400, Text: "future task"}
	plain := &database.Task{ChatID: 400, Text: "no reminder"}
	for _, task := range []*database.Task{due, future, plain} {
		if err := store.CreateTask(ctx, task); err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
	}

	if err := store.SetTaskReminder(ctx, due.ID, now.Add(-time.Minute)); err != nil {
		t.Fatalf("SetTaskReminder: %v", err)
	}
	if err := store.SetTaskReminder(ctx, future.ID, now.Add(time.Hour)); err != nil {
		t.Fatalf("SetTaskReminder: %v", err)
	}

	got, err := store.DueReminders(ctx, now)
	if err != nil {
		t.Fatalf("DueReminders: %v", err)
	}
	if len(got) != 1 || got[0].ID != due.ID {
		t.Fatalf("DueReminders = %+v, want only task %d", got, due.ID)
	}

	if err := store.MarkTaskReminded(ctx, due.ID); err != nil {
		t.Fatalf("MarkTaskReminded: %v", err)
	}

	got, err = store.DueReminders(ctx, now)
	if err != nil {
		t.Fatalf("DueReminders after mark: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("reminded task still due: %+v", got)
	}

	// Re-arming a reminder makes the task due again.
	if err := store.SetTaskReminder(ctx, due.ID, now.Add(-time.Second)); err != nil {
		t.Fatalf("SetTaskReminder rearm: %v", err)
	}
	got, err = store.DueReminders(ctx, now)
	if err != nil {
		t.Fatalf("DueReminders after rearm: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("rearmed reminder not due: %+v", got)
	}

	if err := store.SetTaskReminder(ctx, 9999, now); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("SetTaskReminder on missing task = %v, want sql.ErrNoRows", err)
	}
}

func TestDueDates(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	dayStart := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	today := &database.Task{ChatID: 450, Text: "today"}
	atStart := &database.Task{ChatID: 450, Text: "at window start"}
	tomorrow := &database.Task{ChatID: 450, Text: "tomorrow"}
	undated := &database.Task{ChatID: 450, Text: "no due date"}
	finished := &database.Task{ChatID: 450, Text: "already done"}
	for _, task := range []*database.Task{today, atStart, tomorrow, undated, finished} {
		if err := store.CreateTask(ctx, task); err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
	}

	if err := store.SetTaskDueDate(ctx, today.ID, dayStart.Add(15*time.Hour)); err != nil {
		t.Fatalf("SetTaskDueDate: %v", err)
	}
	if err := store.SetTaskDueDate(ctx, atStart.ID, dayStart); err != nil {
		t.Fatalf("SetTaskDueDate: %v", err)
	}
	// Due exactly at the end of the window, so it belongs to the next one.
	if err := store.SetTaskDueDate(ctx, tomorrow.ID, dayEnd); err != nil {
		t.Fatalf("SetTaskDueDate: %v", err)
	}
	if err := store.SetTaskDueDate(ctx, finished.ID, dayStart.Add(time.Hour)); err != nil {
		t.Fatalf("SetTaskDueDate: %v", err)
	}
	if err := store.MarkTaskDone(ctx, finished.ID); err != nil {
		t.Fatalf("MarkTaskDone: %v", err)
	}

	got, err := store.ListTasksDueBetween(ctx, 450, dayStart, dayEnd)
	if err != nil {
		t.Fatalf("ListTasksDueBetween: %v", err)
	}

	// Earliest due first, window start inclusive, window end exclusive.
	var gotIDs []uint
	for _, task := range got {
		gotIDs = append(gotIDs, task.ID)
	}
	if diff := cmp.Diff([]uint{atStart.ID, today.ID}, gotIDs); diff != "" {
		t.Errorf("ListTasksDueBetween mismatch (-want +got):\n%s", diff)
	}

	got, err = store.ListTasksDueBetween(ctx, 450, dayEnd, dayEnd.Add(7*24*time.Hour))
	if err != nil {
		t.Fatalf("ListTasksDueBetween next window: %v", err)
	}
	if len(got) != 1 || got[0].ID != tomorrow.ID {
		t.Errorf("next window = %+v, want only task %d", got, tomorrow.ID)
	}

	if err := store.SetTaskDueDate(ctx, 9999, dayStart); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("SetTaskDueDate on missing task = %v, want sql.ErrNoRows", err)
	}
}

func TestChatSettings(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	settings, err := store.FindChatSettings(ctx, 500)
	if err != nil {
		t.Fatalf("FindChatSettings: %v", err)
	}
	if settings != nil {
		t.Fatalf("FindChatSettings returned %+v for unknown chat, want nil", settings)
	}

	settings, err = store.GetChatSettings(ctx, 500)
	if err != nil {
		t.Fatalf("GetChatSettings: %v", err)
	}
	if !settings.AutoCleanEnabled || settings.RetentionDays != database.DefaultRetentionDays {
		t.Errorf("unexpected defaults: %+v", settings)
	}

	settings.AutoCleanEnabled = false
	settings.RetentionDays = 30
	settings.ChatType = "group"
	if err := store.UpdateChatSettings(ctx, settings); err != nil {
		t.Fatalf("UpdateChatSettings: %v", err)
	}

	reloaded, err := store.FindChatSettings(ctx, 500)
	if err != nil {
		t.Fatalf("FindChatSettings after update: %v", err)
	}
	opts := cmpopts.IgnoreFields(database.ChatSettings{}, "CreatedAt", "UpdatedAt")
	if diff := cmp.Diff(settings, reloaded, opts); diff != "" {
		t.Errorf("settings mismatch after update (-want +got):\n%s", diff)
	}

	settings.RetentionDays = 5
	if err := store.UpdateChatSettings(ctx, settings); err == nil {
		t.Errorf("UpdateChatSettings accepted retention outside %v", database.RetentionChoices)
	}

	if _, err := store.GetChatSettings(ctx, 501); err != nil {
		t.Fatalf("GetChatSettings second chat: %v", err)
	}
	ids, err := store.ListChatIDs(ctx)
	if err != nil {
		t.Fatalf("ListChatIDs: %v", err)
	}
	if diff := cmp.Diff([]int64{500, 501}, ids); diff != "" {
		t.Errorf("ListChatIDs mismatch (-want +got):\n%s", diff)
	}
}

func TestBotMessages(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	cutoff := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	records := []database.BotMessage{
		{ChatID: 600, MessageID: 3, SentAt: cutoff.Add(-time.Hour)},
		{ChatID: 600, MessageID: 1, SentAt: cutoff.Add(-48 * time.Hour)},
		{ChatID: 600, MessageID: 2, SentAt: cutoff},          // exactly at the cutoff
		{ChatID: 600, MessageID: 4, SentAt: cutoff.Add(time.Hour)},
		{ChatID: 601, MessageID: 7, SentAt: cutoff.Add(-time.Hour)},
	}
	for i := range records {
		if err := store.RecordBotMessage(ctx, &records[i]); err != nil {
			t.Fatalf("RecordBotMessage: %v", err)
		}
	}

	got, err := store.ListBotMessagesBefore(ctx, 600, cutoff)
	if err != nil {
		t.Fatalf("ListBotMessagesBefore: %v", err)
	}

	// Strictly-before semantics, oldest first.
	var gotIDs []int
	for _, m := range got {
		gotIDs = append(gotIDs, m.MessageID)
	}
	if diff := cmp.Diff([]int{1, 3}, gotIDs); diff != "" {
		t.Errorf("ListBotMessagesBefore mismatch (-want +got):\n%s", diff)
	}

	chatIDs, err := store.ListBotMessageChatIDs(ctx)
	if err != nil {
		t.Fatalf("ListBotMessageChatIDs: %v", err)
	}
	if diff := cmp.Diff([]int64{600, 601}, chatIDs); diff != "" {
		t.Errorf("ListBotMessageChatIDs mismatch (-want +got):\n%s", diff)
	}

	if err := store.DeleteBotMessage(ctx, 600, 1); err != nil {
		t.Fatalf("DeleteBotMessage: %v", err)
	}
	got, err = store.ListBotMessagesBefore(ctx, 600, cutoff)
	if err != nil {
		t.Fatalf("ListBotMessagesBefore after delete: %v", err)
	}
	if len(got) != 1 || got[0].MessageID != 3 {
		t.Errorf("unexpected records after delete: %+v", got)
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.GetChatSettings(ctx, 700); err != nil {
		t.Fatalf("GetChatSettings: %v", err)
	}

	open := &database.Task{ChatID: 700, Text: "open"}
	done := &database.Task{ChatID: 700, Text: "done"}
	gone := &database.Task{ChatID: 700, Text: "gone"}
	for _, task := range []*database.Task{open, done, gone} {
		if err := store.CreateTask(ctx, task); err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
	}
	if err := store.MarkTaskDone(ctx, done.ID); err != nil {
		t.Fatalf("MarkTaskDone: %v", err)
	}
	if err := store.DeactivateTask(ctx, gone.ID); err != nil {
		t.Fatalf("DeactivateTask: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}

	want := &database.Stats{TotalChats: 1, TotalTasks: 3, ActiveTasks: 1, CompletedTasks: 1}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("Stats mismatch (-want +got):\n%s", diff)
	}
}
