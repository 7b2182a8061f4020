// Package main contains the entrypoint for the timer bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/timerbot/internal/bot"
	"github.com/edgard/timerbot/internal/bot/handlers"
	"github.com/edgard/timerbot/internal/bot/tasks"
	"github.com/edgard/timerbot/internal/config"
	"github.com/edgard/timerbot/internal/database"
	"github.com/edgard/timerbot/internal/logger"
	"github.com/edgard/timerbot/internal/notify"
	"github.com/edgard/timerbot/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires config, logger, database, schedulers and the Telegram client,
// blocks until ctx is cancelled or a component fails, and returns the exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	cron, err := bot.NewCron(log)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithHTTPClient(cfg.Telegram.PollTimeout, &http.Client{Timeout: cfg.Telegram.PollTimeout + 10*time.Second}),
		tgbot.WithErrorsHandler(func(err error) {
			log.Error("Telegram polling error", "error", err)
		}),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	if cfg.Telegram.DropPending {
		if _, err := tg.DeleteWebhook(ctx, &tgbot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			log.Warn("Failed to drop pending updates", "error", err)
		}
	}

	sender, err := telegram.NewSender(tg)
	if err != nil {
		log.Error("Failed to create message sender", "error", err)
		return 1
	}
	backend, err := notify.NewGocronBackend(cron)
	if err != nil {
		log.Error("Failed to create timer backend", "error", err)
		return 1
	}
	notifier := notify.NewScheduler(log, backend, sender,
		notify.WithMessages(cfg.Messages.Welcome, cfg.Messages.Notification),
		notify.WithFireImmediately(cfg.Notify.FireImmediately),
		notify.WithDeliveryTimeout(cfg.Notify.DeliveryTimeout),
		notify.WithRecorder(store),
	)

	hDeps := handlers.HandlerDeps{
		Logger:   log,
		Config:   cfg,
		Notifier: notifier,
	}
	tDeps := tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Config: cfg,
	}

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if cfg.Telegram.SetMyCommands {
		if err := telegram.SetCommands(ctx, tg, cmdHandlers); err != nil {
			log.Warn("Failed to publish command menu", "error", err)
		}
	}

	sched := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps), cron)
	app := bot.NewBot(log, tg, sched, notifier)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	return 0
}
