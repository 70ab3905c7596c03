package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/jinhajunho/luel-note-sub000/internal/app"
	"github.com/jinhajunho/luel-note-sub000/internal/config"
	httpx "github.com/jinhajunho/luel-note-sub000/internal/controller/http"
	"github.com/jinhajunho/luel-note-sub000/internal/notify"
	"github.com/jinhajunho/luel-note-sub000/internal/repository"
	"github.com/jinhajunho/luel-note-sub000/internal/service"
	"github.com/jinhajunho/luel-note-sub000/internal/timewindow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting attendance server",
		zap.String("environment", cfg.Environment),
		zap.String("addr", cfg.HTTPAddr),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsDir, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	if err := migrator.Close(); err != nil {
		logger.Warn("Failed to close migrator", zap.Error(err))
	}

	dispatcher := app.NewDispatcher(logger, 64)
	if cfg.TelegramToken != "" && cfg.StaffChatID != 0 {
		notifier, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.StaffChatID, logger)
		if err != nil {
			logger.Fatal("Failed to create telegram notifier", zap.Error(err))
		}
		dispatcher.Subscribe(notifier.Handle)
		logger.Info("Telegram staff notifications enabled", zap.Int64("chat_id", cfg.StaffChatID))
	}
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	stores := repository.NewRegistry(pool)

	gate := timewindow.Gate{
		Offset: time.Duration(cfg.CivilOffsetHours) * time.Hour,
		Lead:   time.Duration(cfg.EditWindowLeadMinutes) * time.Minute,
		Trail:  time.Duration(cfg.EditWindowTrailMinutes) * time.Minute,
	}
	policy := service.Policy{
		RefundOnAbsent:   cfg.RefundOnAbsent,
		RechargeOnReturn: cfg.RechargeOnReturn,
	}

	attendance := service.NewAttendanceService(pool, stores, gate, policy, logger, dispatcher)
	booking := service.NewBookingService(pool, stores, logger, dispatcher)
	packages := service.NewPackageService(stores, logger)

	handlers := httpx.NewHandlers(attendance, booking, packages, logger)
	router := httpx.NewRouter(handlers, []byte(cfg.JWTSecret), cfg.MetricsEnabled, logger)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()
	logger.Info("HTTP server started", zap.String("addr", cfg.HTTPAddr))

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}
