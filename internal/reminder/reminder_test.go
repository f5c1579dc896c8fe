package reminder_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"taskmaster/internal/database"
	"taskmaster/internal/reminder"
)

type fakeTasks struct {
	due      []database.Task
	listErr  error
	markErr  error
	reminded []uint
}

func (f *fakeTasks) DueReminders(_ context.Context, _ time.Time) ([]database.Task, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.due, nil
}

func (f *fakeTasks) MarkTaskReminded(_ context.Context, id uint) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.reminded = append(f.reminded, id)
	return nil
}

type fakeSender struct {
	failChats map[int64]bool
	sent      []string
}

func (f *fakeSender) SendMessage(_ context.Context, chatID int64, text string) error {
	if f.failChats[chatID] {
		return errors.New("chat not found")
	}
	f.sent = append(f.sent, text)
	return nil
}

func TestCheckDeliversDueReminders(t *testing.T) {
	t.Parallel()

	tasks := &fakeTasks{due: []database.Task{
		{ID: 1, ChatID: 10, Text: "call the dentist"},
		{ID: 2, ChatID: 20, Text: "submit report"},
	}}
	sender := &fakeSender{}

	checker := reminder.NewChecker(tasks, sender, nil)
	sent, err := checker.Check(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if sent != 2 {
		t.Errorf("sent = %d, want 2", sent)
	}

	wantMsgs := []string{
		"⏰ Reminder: call the dentist",
		"⏰ Reminder: submit report",
	}
	if diff := cmp.Diff(wantMsgs, sender.sent); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]uint{1, 2}, tasks.reminded); diff != "" {
		t.Errorf("reminded tasks mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckToleratesSendFailure(t *testing.T) {
	t.Parallel()

	tasks := &fakeTasks{due: []database.Task{
		{ID: 1, ChatID: 10, Text: "unreachable chat"},
		{ID: 2, ChatID: 20, Text: "healthy chat"},
	}}
	sender := &fakeSender{failChats: map[int64]bool{10: true}}

	checker := reminder.NewChecker(tasks, sender, nil)
	sent, err := checker.Check(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if sent != 1 {
		t.Errorf("sent = %d, want 1", sent)
	}

	// The failed task stays unmarked and will be retried.
	if diff := cmp.Diff([]uint{2}, tasks.reminded); diff != "" {
		t.Errorf("reminded tasks mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckPropagatesStoreError(t *testing.T) {
	t.Parallel()

	tasks := &fakeTasks{listErr: errors.New("database is locked")}
	checker := reminder.NewChecker(tasks, &fakeSender{}, nil)

	if _, err := checker.Check(context.Background(), time.Now()); err == nil {
		t.Fatal("Check succeeded despite store failure")
	}
}
