// Package http serves the derived dashboard views over a JSON API.
package http

import (
	"context"
	"net/http"

	"finanzas/internal/core"
	"finanzas/internal/middleware/trace"
	"finanzas/internal/prices"
	"finanzas/internal/services"
)

// DashboardBackend is the read side of the upstream client used by the
// overview fan-out.
type DashboardBackend interface {
	Calendar(ctx context.Context, year, month int) ([]core.CalendarDay, error)
	Summary(ctx context.Context, period string) (core.Summary, error)
	Cashflow(ctx context.Context) (core.Cashflow, error)
	PendingDueDates(ctx context.Context) ([]core.DueItem, error)
}

// QuoteProvider supplies the current price snapshot.
type QuoteProvider interface {
	Current() prices.Snapshot
}

// StatusUpdater is the mutation side backed by the optimistic status
// service.
type StatusUpdater interface {
	SetDueDateStatus(ctx context.Context, id string, status core.Status) error
	SetTransactionStatus(ctx context.Context, id string, status core.Status) error
	ReplaceDueDates(items []core.DueItem)
	ReplaceTransactions(txs []core.Transaction)
	DueDates() []core.DueItem
}

// Projector recomputes the savings projection.
type Projector interface {
	Project(ctx context.Context) (core.SavingsProjection, error)
}

// Server wires the derived-state services to HTTP handlers.
type Server struct {
	backend  DashboardBackend
	quotes   QuoteProvider
	status   StatusUpdater
	savings  Projector
	valuator *services.PortfolioValuator
}

// NewServer creates a server over the given collaborators.
func NewServer(backend DashboardBackend, quotes QuoteProvider, status StatusUpdater, savings Projector, valuator *services.PortfolioValuator) *Server {
	return &Server{
		backend:  backend,
		quotes:   quotes,
		status:   status,
		savings:  savings,
		valuator: valuator,
	}
}

// Handler returns the routed handler with tracing middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/recurring-payments", s.handleRecurringPayments)
	mux.HandleFunc("GET /api/due-dates", s.handleDueDates)
	mux.HandleFunc("GET /api/savings", s.handleSavings)
	mux.HandleFunc("POST /api/savings/refresh", s.handleSavings)
	mux.HandleFunc("GET /api/portfolio", s.handlePortfolio)
	mux.HandleFunc("PATCH /api/due-dates/{id}/status", s.handleDueDateStatus)
	mux.HandleFunc("PATCH /api/transactions/{id}/status", s.handleTransactionStatus)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return trace.Middleware(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
