package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Estelle64/pluie-app/internal/backup"
	"github.com/Estelle64/pluie-app/internal/config"
	apphttp "github.com/Estelle64/pluie-app/internal/http"
	applog "github.com/Estelle64/pluie-app/internal/log"
	"github.com/Estelle64/pluie-app/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors elsewhere)
	config.LoadEnvFile()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	backend, err := store.NewBackend(cfg.BackendConfig(), logger)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	st := store.Open(backend, logger)
	defer st.Close()

	tracker := backup.NewTracker(st)
	reminder := backup.NewScheduler(tracker, cfg.ReminderInterval, logger)

	srv := apphttp.NewServer(":"+cfg.Port, st, tracker, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting journal server", "port", cfg.Port, applog.FieldBackend, cfg.DataBackend.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := reminder.Start(); err != nil {
			return err
		}
		<-ctx.Done()
		reminder.Stop()
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		// The desktop analog of the page-unload warning: today's records
		// were never exported anywhere else.
		if tracker.ConfirmClose() {
			logger.Warn("Backup reminder", "message", backup.ReminderNeverExported.Message())
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
