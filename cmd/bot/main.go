// Package main contains the entrypoint for the Sisu Telegram bot.
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

	"github.com/sisubot/sisu/internal/bot"
	"github.com/sisubot/sisu/internal/bot/handlers"
	"github.com/sisubot/sisu/internal/bot/tasks"
	"github.com/sisubot/sisu/internal/config"
	"github.com/sisubot/sisu/internal/database"
	"github.com/sisubot/sisu/internal/engine"
	"github.com/sisubot/sisu/internal/feedback"
	"github.com/sisubot/sisu/internal/gemini"
	"github.com/sisubot/sisu/internal/learned"
	"github.com/sisubot/sisu/internal/lexicon"
	"github.com/sisubot/sisu/internal/logger"
	"github.com/sisubot/sisu/internal/mood"
	"github.com/sisubot/sisu/internal/profile"
	"github.com/sisubot/sisu/internal/telegram"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all components (config, logger, db, engine, telegram,
// scheduler), starts the bot and returns an exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	// Engine components. Ledger and profiles are seeded from the last
	// persisted snapshot; a failing load is not fatal, the engine just
	// starts cold.
	lex := lexicon.Load(cfg.Engine.LexiconPath, log)
	moods := mood.NewTracker(log)
	ledger := feedback.NewLedger(cfg.Engine.MaxLedgerEntries, log)
	learnedStore := learned.NewStore(cfg.Engine.LearnedPath, log)
	profiles := profile.NewTracker(log)

	if entries, err := store.LoadResponseStats(ctx); err != nil {
		log.Warn("Failed to load response stats snapshot, starting cold", "error", err)
	} else if len(entries) > 0 {
		ledger.Seed(entries)
		log.Info("Seeded feedback ledger from snapshot", "responses", len(entries))
	}
	if profs, err := store.LoadUserProfiles(ctx); err != nil {
		log.Warn("Failed to load user profile snapshot, starting cold", "error", err)
	} else if len(profs) > 0 {
		profiles.Seed(profs)
		log.Info("Seeded user profiles from snapshot", "profiles", len(profs))
	}

	eng := engine.New(lex, moods, ledger, learnedStore, profiles, log)

	gemClient, err := gemini.NewClient(ctx, cfg.Gemini, log)
	if err != nil {
		log.Error("Failed to initialize Gemini client", "error", err)
		return 1
	}

	hDeps := handlers.HandlerDeps{
		Logger:       log,
		Config:       cfg,
		Store:        store,
		Engine:       eng,
		Ledger:       ledger,
		Learned:      learnedStore,
		GeminiClient: gemClient,
	}
	tDeps := tasks.TaskDeps{
		Logger:   log,
		Store:    store,
		Ledger:   ledger,
		Profiles: profiles,
		Config:   cfg,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewChatHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}
	app := bot.NewBot(log, cfg, db, store, eng, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
