package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	mshikotaproot "github.com/hackerloum/mshikotap"
	"github.com/hackerloum/mshikotap/internal/api"
	"github.com/hackerloum/mshikotap/internal/config"
	"github.com/hackerloum/mshikotap/internal/notify"
	"github.com/hackerloum/mshikotap/internal/service"
	"github.com/hackerloum/mshikotap/internal/store"
	"github.com/hackerloum/mshikotap/internal/verify"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(mshikotaproot.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := store.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize services
	st := store.NewPostgres(pool)
	ledgerService := service.NewLedgerService(st)
	accountService := service.NewAccountService(st)
	taskService := service.NewTaskService(st)
	assignmentService := service.NewAssignmentService(st, ledgerService, verify.NewChecker())
	notifier := notify.New(cfg)

	handlers := api.New(api.Deps{
		Accounts:    accountService,
		Ledger:      ledgerService,
		Tasks:       taskService,
		Assignments: assignmentService,
		Notifier:    notifier,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: api.Router(handlers, cfg.JWTSecret),
	}

	go func() {
		slog.Info("starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped gracefully")
}
