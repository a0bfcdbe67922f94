package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"finanzas/internal/core"

	"github.com/shopspring/decimal"
)

const msPerDay = 86_400_000

// CheckpointStore persists the single savings checkpoint timestamp.
type CheckpointStore interface {
	// LastUpdate returns the stored checkpoint and whether one exists.
	LastUpdate(ctx context.Context) (time.Time, bool, error)
	// SetLastUpdate stores the checkpoint. Implementations keep the value
	// monotonically non-decreasing.
	SetLastUpdate(ctx context.Context, t time.Time) error
}

// SavingsProjector projects the configured accounts forward from the
// persisted checkpoint using a daily-compounding approximation:
//
//	value = principal x (1 + rate/365)^(elapsedMs / 86_400_000)
//
// Every projection rewrites the checkpoint to "now" with the principals
// reset to the static configuration, so the baseline rebases on each
// call: two rapid successive projections yield the same total rather
// than compounding the previous result.
type SavingsProjector struct {
	accounts []core.SavingsAccount
	store    CheckpointStore
	now      func() time.Time
}

// NewSavingsProjector creates a projector over the given accounts and
// checkpoint store.
func NewSavingsProjector(accounts []core.SavingsAccount, store CheckpointStore) *SavingsProjector {
	return &SavingsProjector{
		accounts: accounts,
		store:    store,
		now:      time.Now,
	}
}

// Project computes every account's balance at "now" and rewrites the
// checkpoint. A missing checkpoint means zero elapsed time: the total is
// the sum of principals and the checkpoint is created.
func (p *SavingsProjector) Project(ctx context.Context) (core.SavingsProjection, error) {
	now := p.now()

	t0, ok, err := p.store.LastUpdate(ctx)
	if err != nil {
		return core.SavingsProjection{}, fmt.Errorf("load savings checkpoint: %w", err)
	}
	if !ok || t0.After(now) {
		t0 = now
	}

	elapsedMs := now.Sub(t0).Milliseconds()
	days := float64(elapsedMs) / msPerDay

	projection := core.SavingsProjection{
		AsOf:       now,
		Checkpoint: t0,
		Total:      decimal.Zero,
	}
	for _, acc := range p.accounts {
		factor := math.Pow(1+acc.AnnualRate/365, days)
		value := acc.Principal.Mul(decimal.NewFromFloat(factor))
		projection.Accounts = append(projection.Accounts, core.SavingsAccountValue{
			Name:      acc.Name,
			Principal: acc.Principal,
			Value:     value,
		})
		projection.Total = projection.Total.Add(value)
	}

	if err := p.store.SetLastUpdate(ctx, now); err != nil {
		return core.SavingsProjection{}, fmt.Errorf("write savings checkpoint: %w", err)
	}

	return projection, nil
}

// Run recomputes the projection on the given interval until the context
// is cancelled. The first recompute happens immediately.
func (p *SavingsProjector) Run(ctx context.Context, interval time.Duration) error {
	if _, err := p.Project(ctx); err != nil {
		slog.ErrorContext(ctx, "Initial savings projection failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			projection, err := p.Project(ctx)
			if err != nil {
				slog.ErrorContext(ctx, "Scheduled savings projection failed", "error", err)
				continue
			}
			slog.InfoContext(ctx, "Savings projection recomputed",
				"total", projection.Total.StringFixed(2),
				"accounts", len(projection.Accounts))
		}
	}
}
