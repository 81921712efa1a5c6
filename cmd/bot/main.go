// Package main contains the entrypoint for the channel helper bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/khalsirati/helperbot/internal/bot"
	"github.com/khalsirati/helperbot/internal/bot/handlers"
	"github.com/khalsirati/helperbot/internal/bot/tasks"
	"github.com/khalsirati/helperbot/internal/config"
	"github.com/khalsirati/helperbot/internal/database"
	"github.com/khalsirati/helperbot/internal/inbox"
	"github.com/khalsirati/helperbot/internal/logger"
	"github.com/khalsirati/helperbot/internal/menu"
	"github.com/khalsirati/helperbot/internal/stats"
	"github.com/khalsirati/helperbot/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires config, logger, database, inbox, handlers, transport and
// scheduler, then blocks until ctx is cancelled. It returns the exit code.
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

	catalog := menu.NewCatalog(cfg)
	hDeps := handlers.HandlerDeps{
		Logger:  log,
		Config:  cfg,
		Store:   store,
		Inbox:   inbox.NewManager(store, inbox.NewSessions(), cfg, log),
		Catalog: catalog,
		Stats:   stats.NewAggregator(store, catalog),
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(
			logger.Recover(log),
			logger.Middleware(log),
			handlers.RecordInteractions(hDeps),
		),
		tgbot.WithDefaultHandler(handlers.NewDefaultHandler(hDeps)),
		tgbot.WithErrorsHandler(logger.ErrorsHandler(log)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if err := telegram.SetCommands(ctx, tg, cfg.Bot.Commands); err != nil {
		// The menu is cosmetic; commands still work without it.
		log.Warn("Failed to publish bot commands", "error", err)
	}

	tDeps := tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Sender: tg,
		Config: cfg,
	}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}
	app := bot.NewBot(log, cfg, store, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	return 0
}
