// Package prices maintains the live quote map used by the portfolio
// valuation: one fetch at startup, then a fixed polling interval. A
// failed poll keeps the previous quotes available and raises a
// non-blocking error flag instead of clearing the valuation.
package prices

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"finanzas/internal/core"
)

// Source is the slice of the upstream client the poller needs.
type Source interface {
	CryptoPrices(ctx context.Context) (map[string]core.PriceQuote, error)
}

// Snapshot is the poller's current view of the feed.
type Snapshot struct {
	Quotes      map[string]core.PriceQuote
	LastUpdated time.Time
	Stale       bool
	Err         error
}

// Poller polls the price source and retains the last successful quote map.
type Poller struct {
	source   Source
	interval time.Duration

	mu          sync.RWMutex
	quotes      map[string]core.PriceQuote
	lastUpdated time.Time
	lastErr     error
}

// NewPoller creates a poller over the given source. A zero interval
// defaults to one minute.
func NewPoller(source Source, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Poller{
		source:   source,
		interval: interval,
	}
}

// Run fetches once immediately, then on every tick, until the context is
// cancelled. It never returns a fetch error: failures are recorded on the
// snapshot and the previous quotes stay available.
func (p *Poller) Run(ctx context.Context) error {
	p.fetch(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.fetch(ctx)
		}
	}
}

// RefreshNow forces a fetch outside the polling schedule.
func (p *Poller) RefreshNow(ctx context.Context) {
	p.fetch(ctx)
}

func (p *Poller) fetch(ctx context.Context) {
	quotes, err := p.source.CryptoPrices(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		// Stale-but-available: keep whatever we had.
		p.lastErr = err
		slog.WarnContext(ctx, "Price poll failed, keeping stale quotes",
			"error", err,
			"quotes", len(p.quotes),
			"last_updated", p.lastUpdated)
		return
	}

	p.quotes = quotes
	p.lastUpdated = time.Now()
	p.lastErr = nil
}

// Current returns a copy of the poller's state. Stale is set when the
// most recent poll failed but older quotes are still being served.
func (p *Poller) Current() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	quotes := make(map[string]core.PriceQuote, len(p.quotes))
	for k, v := range p.quotes {
		quotes[k] = v
	}
	return Snapshot{
		Quotes:      quotes,
		LastUpdated: p.lastUpdated,
		Stale:       p.lastErr != nil && len(p.quotes) > 0,
		Err:         p.lastErr,
	}
}
