package cleanup_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"taskmaster/internal/cleanup"
	"taskmaster/internal/database"
)

type fakeStore struct {
	mu        sync.Mutex
	settings  map[int64]*database.ChatSettings
	msgs      map[int64][]database.BotMessage
	cutoffs   map[int64]time.Time
	recordErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		settings: map[int64]*database.ChatSettings{},
		msgs:     map[int64][]database.BotMessage{},
		cutoffs:  map[int64]time.Time{},
	}
}

func (f *fakeStore) ListBotMessageChatIDs(_ context.Context) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var ids []int64
	for id := range f.msgs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (f *fakeStore) FindChatSettings(_ context.Context, chatID int64) (*database.ChatSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings[chatID], nil
}

func (f *fakeStore) ListBotMessagesBefore(_ context.Context, chatID int64, cutoff time.Time) ([]database.BotMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cutoffs[chatID] = cutoff

	var out []database.BotMessage
	for _, m := range f.msgs[chatID] {
		if m.SentAt.Before(cutoff) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.Before(out[j].SentAt) })
	return out, nil
}

func (f *fakeStore) DeleteBotMessage(_ context.Context, chatID int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.recordErr != nil {
		return f.recordErr
	}
	kept := f.msgs[chatID][:0]
	for _, m := range f.msgs[chatID] {
		if m.MessageID != messageID {
			kept = append(kept, m)
		}
	}
	f.msgs[chatID] = kept
	return nil
}

func (f *fakeStore) remaining(chatID int64) []int {
	f.mu.Lock()
	defer f.mu.Unlock()

	var ids []int
	for _, m := range f.msgs[chatID] {
		ids = append(ids, m.MessageID)
	}
	sort.Ints(ids)
	return ids
}

type fakeDeleter struct {
	mu      sync.Mutex
	failIDs map[int]bool
	deleted []int
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (f *fakeDeleter) DeleteMessage(_ context.Context, _ int64, messageID int) error {
	if f.started != nil {
		// Only the first delete blocks, so later runs can proceed.
		f.once.Do(func() {
			f.started <- struct{}{}
			<-f.release
		})
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIDs[messageID] {
		return errors.New("message can't be deleted")
	}
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeDeleter) deletedIDs() []int {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := append([]int(nil), f.deleted...)
	sort.Ints(ids)
	return ids
}

func TestRunDeletesExpiredMessages(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 10, 3, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.settings[100] = &database.ChatSettings{ChatID: 100, AutoCleanEnabled: true, RetentionDays: 7}
	store.msgs[100] = []database.BotMessage{
		{ChatID: 100, MessageID: 1, SentAt: now.Add(-8 * 24 * time.Hour)},
		{ChatID: 100, MessageID: 2, SentAt: now.Add(-10 * 24 * time.Hour)},
		{ChatID: 100, MessageID: 3, SentAt: now.Add(-time.Hour)},
	}

	deleter := &fakeDeleter{}
	runner := cleanup.NewRunner(store, store, deleter, cleanup.Config{}, nil)

	summary, err := runner.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := cleanup.Summary{ChatsProcessed: 1, MessagesDeleted: 2}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2}, deleter.deletedIDs()); diff != "" {
		t.Errorf("deleted messages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{3}, store.remaining(100)); diff != "" {
		t.Errorf("remaining records mismatch (-want +got):\n%s", diff)
	}

	// A second pass over the same state has nothing left to do.
	summary, err = runner.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if summary.MessagesDeleted != 0 || summary.Failures != 0 {
		t.Errorf("second run was not a no-op: %+v", summary)
	}
}

func TestRunSkipsDisabledChats(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 10, 3, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.settings[100] = &database.ChatSettings{ChatID: 100, AutoCleanEnabled: false, RetentionDays: 7}
	store.settings[200] = &database.ChatSettings{ChatID: 200, AutoCleanEnabled: true, RetentionDays: 7}
	old := now.Add(-30 * 24 * time.Hour)
	store.msgs[100] = []database.BotMessage{{ChatID: 100, MessageID: 1, SentAt: old}}
	store.msgs[200] = []database.BotMessage{{ChatID: 200, MessageID: 2, SentAt: old}}

	deleter := &fakeDeleter{}
	runner := cleanup.NewRunner(store, store, deleter, cleanup.Config{}, nil)

	summary, err := runner.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if diff := cmp.Diff([]int{2}, deleter.deletedIDs()); diff != "" {
		t.Errorf("deleted messages mismatch (-want +got):\n%s", diff)
	}
	if got := store.remaining(100); len(got) != 1 {
		t.Errorf("disabled chat lost records: %v", got)
	}
	if summary.ChatsProcessed != 2 {
		t.Errorf("ChatsProcessed = %d, want 2", summary.ChatsProcessed)
	}
}

func TestRunUsesDefaultsWithoutSettings(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 10, 3, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.msgs[100] = []database.BotMessage{
		{ChatID: 100, MessageID: 1, SentAt: now.Add(-8 * 24 * time.Hour)},
		{ChatID: 100, MessageID: 2, SentAt: now.Add(-6 * 24 * time.Hour)},
	}

	deleter := &fakeDeleter{}
	runner := cleanup.NewRunner(store, store, deleter, cleanup.Config{}, nil)

	if _, err := runner.Run(context.Background(), now); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Default retention is 7 days, cleanup enabled.
	if diff := cmp.Diff([]int{1}, deleter.deletedIDs()); diff != "" {
		t.Errorf("deleted messages mismatch (-want +got):\n%s", diff)
	}
}

func TestRunRetentionOverride(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 10, 3, 0, 0, 0, time.UTC)
	store := newFakeStore()
	// Chat 100 has explicit settings, chat 200 does not.
	store.settings[100] = &database.ChatSettings{ChatID: 100, AutoCleanEnabled: true, RetentionDays: 30}
	store.msgs[100] = []database.BotMessage{
		{ChatID: 100, MessageID: 1, SentAt: now.Add(-5 * 24 * time.Hour)},
	}
	store.msgs[200] = []database.BotMessage{
		{ChatID: 200, MessageID: 2, SentAt: now.Add(-5 * 24 * time.Hour)},
	}

	deleter := &fakeDeleter{}
	runner := cleanup.NewRunner(store, store, deleter, cleanup.Config{RetentionOverride: 3}, nil)

	if _, err := runner.Run(context.Background(), now); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The configured 30-day retention wins over the override.
	if got, want := store.cutoffs[100], now.Add(-30*24*time.Hour); !got.Equal(want) {
		t.Errorf("cutoff for configured chat = %v, want %v", got, want)
	}
	// The chat without settings gets the override instead of the default.
	if got, want := store.cutoffs[200], now.Add(-3*24*time.Hour); !got.Equal(want) {
		t.Errorf("cutoff for unconfigured chat = %v, want %v", got, want)
	}

	if diff := cmp.Diff([]int{2}, deleter.deletedIDs()); diff != "" {
		t.Errorf("deleted messages mismatch (-want +got):\n%s", diff)
	}
	if got := store.remaining(100); len(got) != 1 {
		t.Errorf("message younger than the configured retention was deleted: remaining %v", got)
	}
}

func TestRunDefaultRetentionFromConfig(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 10, 3, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.settings[100] = &database.ChatSettings{ChatID: 100, AutoCleanEnabled: true, RetentionDays: 7}
	store.msgs[100] = []database.BotMessage{
		{ChatID: 100, MessageID: 1, SentAt: now.Add(-5 * 24 * time.Hour)},
	}
	store.msgs[200] = []database.BotMessage{
		{ChatID: 200, MessageID: 2, SentAt: now.Add(-5 * 24 * time.Hour)},
	}

	deleter := &fakeDeleter{}
	runner := cleanup.NewRunner(store, store, deleter, cleanup.Config{DefaultRetention: 3}, nil)

	if _, err := runner.Run(context.Background(), now); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Only the chat without settings uses the configured default.
	if diff := cmp.Diff([]int{2}, deleter.deletedIDs()); diff != "" {
		t.Errorf("deleted messages mismatch (-want +got):\n%s", diff)
	}
	if got, want := store.cutoffs[100], now.Add(-7*24*time.Hour); !got.Equal(want) {
		t.Errorf("cutoff for configured chat = %v, want %v", got, want)
	}
}

func TestRunKeepsRecordOnPlatformFailure(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 10, 3, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.msgs[100] = []database.BotMessage{
		{ChatID: 100, MessageID: 1, SentAt: now.Add(-10 * 24 * time.Hour)},
		{ChatID: 100, MessageID: 2, SentAt: now.Add(-9 * 24 * time.Hour)},
		{ChatID: 100, MessageID: 3, SentAt: now.Add(-8 * 24 * time.Hour)},
	}

	deleter := &fakeDeleter{failIDs: map[int]bool{2: true}}
	runner := cleanup.NewRunner(store, store, deleter, cleanup.Config{}, nil)

	summary, err := runner.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := cleanup.Summary{ChatsProcessed: 1, MessagesDeleted: 2, Failures: 1}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
	// The failed message's record survives for the next run.
	if diff := cmp.Diff([]int{2}, store.remaining(100)); diff != "" {
		t.Errorf("remaining records mismatch (-want +got):\n%s", diff)
	}
}

func TestRunAbortsOnStoreFailure(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 10, 3, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.msgs[100] = []database.BotMessage{
		{ChatID: 100, MessageID: 1, SentAt: now.Add(-10 * 24 * time.Hour)},
	}
	store.recordErr = errors.New("database is locked")

	runner := cleanup.NewRunner(store, store, &fakeDeleter{}, cleanup.Config{}, nil)

	if _, err := runner.Run(context.Background(), now); err == nil {
		t.Fatal("Run succeeded despite store failure")
	}
}

func TestRunRejectsOverlap(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 10, 3, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.msgs[100] = []database.BotMessage{
		{ChatID: 100, MessageID: 1, SentAt: now.Add(-10 * 24 * time.Hour)},
	}

	deleter := &fakeDeleter{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	runner := cleanup.NewRunner(store, store, deleter, cleanup.Config{}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := runner.Run(context.Background(), now)
		done <- err
	}()

	<-deleter.started
	if _, err := runner.Run(context.Background(), now); !errors.Is(err, cleanup.ErrRunInProgress) {
		t.Errorf("overlapping Run = %v, want ErrRunInProgress", err)
	}
	close(deleter.release)

	if err := <-done; err != nil {
		t.Errorf("first Run: %v", err)
	}

	// Once the first run finishes the runner accepts work again.
	if _, err := runner.Run(context.Background(), now); err != nil {
		t.Errorf("Run after completion: %v", err)
	}
}
