// Package config manages application configuration from default values,
// a YAML config file, and BOT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-telegram/bot/models"
	"github.com/spf13/viper"

	"taskmaster/internal/database"
)

// Task names used in the scheduler configuration and task registry.
const (
	TaskAutoCleanup    = "auto_cleanup"
	TaskReminderCheck  = "reminder_check"
	TaskSQLMaintenance = "sql_maintenance"
)

// Config defines the application configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Cleanup   CleanupConfig   `mapstructure:"cleanup"`
}

// LoggerConfig controls log output.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot credentials.
type TelegramConfig struct {
	Token   string `mapstructure:"token"    validate:"required"`
	AdminID int64  `mapstructure:"admin_id" validate:"required,gt=0"`

	// BotInfo is populated at startup from the Telegram API.
	BotInfo *models.User `mapstructure:"-"`
}

// DatabaseConfig holds the SQLite database location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// TaskConfig describes one scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// CleanupConfig tunes the message cleanup job.
type CleanupConfig struct {
	// Concurrency bounds how many chats are cleaned in parallel.
	Concurrency int `mapstructure:"concurrency" validate:"gt=0"`

	// RetentionDays is the retention for chats that never changed
	// their settings.
	RetentionDays int `mapstructure:"retention_days"`
}

// LoadConfig reads configuration from the given YAML file, layered over
// defaults and under BOT_* environment variables, then validates it.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults and env apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for missing or out-of-range values.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return err
	}
	if c.Cleanup.RetentionDays != 0 && !database.ValidRetentionDays(c.Cleanup.RetentionDays) {
		return fmt.Errorf("cleanup.retention_days must be one of %v", database.RetentionChoices)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", false)

	v.SetDefault("database.path", "taskmaster.db")

	v.SetDefault("cleanup.concurrency", 4)
	v.SetDefault("cleanup.retention_days", database.DefaultRetentionDays)

	// Schedules use 6-field cron expressions with a seconds column.
	v.SetDefault("scheduler.tasks."+TaskAutoCleanup+".enabled", true)
	v.SetDefault("scheduler.tasks."+TaskAutoCleanup+".schedule", "0 0 3 * * *")
	v.SetDefault("scheduler.tasks."+TaskReminderCheck+".enabled", true)
	v.SetDefault("scheduler.tasks."+TaskReminderCheck+".schedule", "0 * * * * *")
	v.SetDefault("scheduler.tasks."+TaskSQLMaintenance+".enabled", true)
	v.SetDefault("scheduler.tasks."+TaskSQLMaintenance+".schedule", "0 0 4 * * 0")
}
