package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"taskmaster/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
  admin_id: 42
`)

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Telegram.Token != "123:abc" || cfg.Telegram.AdminID != 42 {
		t.Errorf("telegram config not read: %+v", cfg.Telegram)
	}
	if cfg.Logger.Level != "info" {
		t.Errorf("logger.level default = %q, want info", cfg.Logger.Level)
	}
	if cfg.Database.Path != "taskmaster.db" {
		t.Errorf("database.path default = %q", cfg.Database.Path)
	}
	if cfg.Cleanup.Concurrency != 4 {
		t.Errorf("cleanup.concurrency default = %d, want 4", cfg.Cleanup.Concurrency)
	}

	for _, name := range []string{config.TaskAutoCleanup, config.TaskReminderCheck, config.TaskSQLMaintenance} {
		task, ok := cfg.Scheduler.Tasks[name]
		if !ok {
			t.Errorf("default scheduler task %q missing", name)
			continue
		}
		if !task.Enabled || task.Schedule == "" {
			t.Errorf("default scheduler task %q = %+v", name, task)
		}
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
  admin_id: 42
logger:
  level: debug
  json: true
scheduler:
  tasks:
    auto_cleanup:
      enabled: false
      schedule: "0 30 2 * * *"
`)

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Logger.Level != "debug" || !cfg.Logger.JSON {
		t.Errorf("logger overrides not applied: %+v", cfg.Logger)
	}
	task := cfg.Scheduler.Tasks[config.TaskAutoCleanup]
	if task.Enabled || task.Schedule != "0 30 2 * * *" {
		t.Errorf("scheduler override not applied: %+v", task)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing token", "telegram:\n  admin_id: 42\n"},
		{"missing admin", "telegram:\n  token: \"123:abc\"\n"},
		{"bad log level", "telegram:\n  token: \"123:abc\"\n  admin_id: 42\nlogger:\n  level: loud\n"},
		{"bad retention", "telegram:\n  token: \"123:abc\"\n  admin_id: 42\ncleanup:\n  retention_days: 5\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := config.LoadConfig(writeConfig(t, tc.content)); err == nil {
				t.Errorf("LoadConfig accepted invalid config")
			}
		})
	}
}
