// savings-snapshot prints the current savings projection as JSON and
// rewrites the checkpoint, exactly as a scheduled recompute would.
package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/joho/godotenv"

	"finanzas/internal/config"
	"finanzas/internal/core"
	applog "finanzas/internal/log"
	"finanzas/internal/services"
	"finanzas/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: "savings-snapshot",
	})
	applog.SetDefault(logger)

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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	projector := services.NewSavingsProjector(accounts, checkpoints)
	projection, err := projector.Project(ctx)
	if err != nil {
		logger.Error("Projection failed", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(projection); err != nil {
		logger.Error("Failed to encode projection", "error", err)
		os.Exit(1)
	}
}
