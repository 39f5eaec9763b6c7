package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lysyi3m/reelbot/app/api"
	"github.com/lysyi3m/reelbot/app/bot"
	"github.com/lysyi3m/reelbot/app/catalog"
	"github.com/lysyi3m/reelbot/app/cfg"
	"github.com/lysyi3m/reelbot/app/database"
	"github.com/lysyi3m/reelbot/app/metadata"
	"github.com/lysyi3m/reelbot/app/request"
	"github.com/lysyi3m/reelbot/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting ReelBot", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	requestRepo := database.NewRequestRepository(db)
	catalogRepo := database.NewCatalogRepository(db)

	lookup, err := metadata.NewClient(appCfg.TMDBAPIKey, appCfg.TMDBBaseURL, appCfg.UserAgent)
	if err != nil {
		slog.Error("Failed to initialize metadata client", "error", err)
		os.Exit(1)
	}

	matcher := catalog.NewMatcher(catalogRepo)
	requestService := request.NewService(requestRepo)

	messages, err := bot.LoadMessages(appCfg.MessagesFile)
	if err != nil {
		slog.Error("Failed to load message templates", "file", appCfg.MessagesFile, "error", err)
		os.Exit(1)
	}

	botAPI, err := tgbotapi.NewBotAPI(appCfg.BotToken)
	if err != nil {
		slog.Error("Failed to connect to Telegram", "error", err)
		os.Exit(1)
	}
	botAPI.Debug = appCfg.Debug

	telegramBot := bot.New(botAPI, lookup, matcher, requestService, messages)

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "check_interval", appCfg.CheckInterval)
	scheduler := tasks.NewScheduler(requestRepo, matcher, requestService, telegramBot)
	scheduler.Start()
	defer scheduler.Stop()

	botCtx, botCancel := context.WithCancel(context.Background())
	defer botCancel()
	go telegramBot.Run(botCtx)

	apiHandler := api.NewHandler(requestRepo, catalogRepo)
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(apiHandler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("ReelBot started successfully")

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	botCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	slog.Info("ReelBot shutdown complete")
}
