package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/gstfolio/src/config"
	"github.com/username/gstfolio/src/database"
	"github.com/username/gstfolio/src/handlers"
	"github.com/username/gstfolio/src/logger"
	"github.com/username/gstfolio/src/parsers"
	"github.com/username/gstfolio/src/processors"
	"github.com/username/gstfolio/src/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("GSTfolio backend server starting...")

	if _, err := parsers.GetBankFormat(config.Cfg.DefaultBank); err != nil {
		logger.L.Error("DEFAULT_BANK configuration invalid", "bank", config.Cfg.DefaultBank, "supported", parsers.BankNames())
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	store, err := database.Open(config.Cfg.DatabasePath)
	if err != nil {
		logger.L.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing caches...")
	settingsCache := cache.New(config.Cfg.SessionTTL, config.Cfg.SessionCleanupInterval)
	sessions := services.NewSessionStore(config.Cfg.SessionTTL, config.Cfg.SessionCleanupInterval)

	logger.L.Info("Initializing services and handlers...")
	settingsService := services.NewSettingsService(store, settingsCache)
	uploadService := services.NewUploadService(
		settingsService, sessions,
		processors.NewClassifier(processors.DefaultKeywordRules),
		config.Cfg.MaxConcurrentDecodes, time.Now,
	)
	transactionService := services.NewTransactionService(settingsService, sessions)
	reportService := services.NewReportService(
		settingsService, sessions,
		processors.NewSummaryProcessor(),
		processors.NewGSTReturnProcessor(),
		processors.NewJournalProcessor(),
	)

	logger.L.Info("Configuring routes...")
	router := handlers.NewRouter(config.Cfg, handlers.Handlers{
		Settings:     settingsService,
		Upload:       handlers.NewUploadHandler(uploadService, config.Cfg),
		Transactions: handlers.NewTransactionHandler(transactionService, settingsService),
		Reports:      handlers.NewReportHandler(reportService, time.Now),
		Accounts:     handlers.NewSettingsHandler(settingsService, config.Cfg.DefaultBank),
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.L.Info("Server starting", "address", serverAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L.Error("Failed to start server", "error", err)
			stdlog.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.L.Info("Shutdown signal received, draining connections...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L.Error("Graceful shutdown failed", "error", err)
		return
	}
	logger.L.Info("Server stopped gracefully.")
}
