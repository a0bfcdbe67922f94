package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"finanzas/internal/backend"
	"finanzas/internal/config"
	"finanzas/internal/core"
	apphttp "finanzas/internal/http"
	applog "finanzas/internal/log"
	"finanzas/internal/prices"
	"finanzas/internal/services"
	"finanzas/internal/storage"
)

func main() {
	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: "finanzas",
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	holdings, err := core.LoadHoldings(cfg.HoldingsFile)
	if err != nil {
		logger.Error("Failed to load holdings table", "error", err, "file", cfg.HoldingsFile)
		os.Exit(1)
	}
	accounts, err := core.LoadSavingsAccounts(cfg.SavingsAccountsFile)
	if err != nil {
		logger.Error("Failed to load savings accounts", "error", err, "file", cfg.SavingsAccountsFile)
		os.Exit(1)
	}

	checkpoints, err := storage.NewCheckpointRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open checkpoint store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer checkpoints.Close()

	client := backend.NewClient(cfg.BackendAPIURL, cfg.BackendTimeout)

	projector := services.NewSavingsProjector(accounts, checkpoints)
	valuator := services.NewPortfolioValuator(holdings)
	poller := prices.NewPoller(client, cfg.PricePollInterval)

	var statusSvc *services.StatusService
	statusSvc = services.NewStatusService(client, cfg.RefetchDelay, func(ctx context.Context) {
		items, err := client.PendingDueDates(ctx)
		if err != nil {
			logger.WarnContext(ctx, "Post-update refetch failed", "error", err)
			return
		}
		statusSvc.ReplaceDueDates(items)
	})
	defer statusSvc.Close()

	srv := apphttp.NewServer(client, poller, statusSvc, projector, valuator)

	httpServer := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        srv.Handler(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16, // 64KB
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return poller.Run(gctx)
	})
	g.Go(func() error {
		return projector.Run(gctx, cfg.SavingsRecomputeInterval)
	})
	g.Go(func() error {
		logger.Info("Starting finanzas server", "port", cfg.Port, "backend", cfg.BackendAPIURL)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}

	logger.Info("Shutdown complete")
}
