// Package main contains a standalone entrypoint for running one message
// cleanup pass, intended for manual runs and cron-style scheduling outside
// the bot process.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskmaster/internal/cleanup"
	"taskmaster/internal/config"
	"taskmaster/internal/database"
	"taskmaster/internal/logger"
	"taskmaster/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	days := flag.Int("days", 0, "Override the default retention in days for chats without explicit settings (0 uses the configured default)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	level := cfg.Logger.Level
	if *debug {
		level = "debug"
	}
	log := logger.NewLogger(level, cfg.Logger.JSON)
	slog.SetDefault(log)

	if *days < 0 {
		log.Error("Retention override must not be negative", "days", *days)
		return 1
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	runner := cleanup.NewRunner(store, store, telegram.NewBotDeleter(tg), cleanup.Config{
		Concurrency:       cfg.Cleanup.Concurrency,
		DefaultRetention:  cfg.Cleanup.RetentionDays,
		RetentionOverride: *days,
	}, log)

	summary, err := runner.Run(ctx, time.Now().UTC())
	if err != nil {
		log.Error("Cleanup run failed", "error", err,
			"chats_processed", summary.ChatsProcessed,
			"messages_deleted", summary.MessagesDeleted,
			"failures", summary.Failures)
		return 1
	}

	log.Info("Cleanup run finished",
		"chats_processed", summary.ChatsProcessed,
		"messages_deleted", summary.MessagesDeleted,
		"failures", summary.Failures)
	return 0
}
