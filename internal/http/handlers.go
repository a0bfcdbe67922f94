package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/services"
)

const handlerTimeout = 7 * time.Second

// dashboardResponse is the overview payload. A slice that failed to fetch
// is null and its failure is listed in Errors; the response itself fails
// only when every slice failed.
type dashboardResponse struct {
	Summary   *core.Summary     `json:"summary"`
	Cashflow  *core.Cashflow    `json:"cashflow"`
	Calendar  *calendarSlice    `json:"calendar"`
	Portfolio *portfolioSlice   `json:"portfolio"`
	Errors    map[string]string `json:"errors,omitempty"`
}

type calendarSlice struct {
	Days              []core.CalendarDay      `json:"days"`
	RecurringPayments []core.RecurringPayment `json:"recurring_payments"`
}

type portfolioSlice struct {
	core.PortfolioView
	PricesStale bool      `json:"prices_stale"`
	PricesAsOf  time.Time `json:"prices_as_of"`
}

// handleDashboard fans out the independent dashboard fetches concurrently
// and assembles whatever succeeded. Failures degrade to a missing slice;
// the global error only fires when all slices fail.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	year, month := parseYearMonth(r)

	var (
		wg          sync.WaitGroup
		summary     core.Summary
		summaryErr  error
		cashflow    core.Cashflow
		cashflowErr error
		days        []core.CalendarDay
		daysErr     error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		summary, summaryErr = s.backend.Summary(ctx, "month")
	}()
	go func() {
		defer wg.Done()
		cashflow, cashflowErr = s.backend.Cashflow(ctx)
	}()
	go func() {
		defer wg.Done()
		days, daysErr = s.backend.Calendar(ctx, year, month)
	}()
	wg.Wait()

	// The price slice comes from the poller: it fails only when there has
	// never been a successful poll.
	snap := s.quotes.Current()
	var pricesErr error
	if len(snap.Quotes) == 0 && snap.Err != nil {
		pricesErr = snap.Err
	}

	resp := dashboardResponse{Errors: map[string]string{}}
	if summaryErr != nil {
		resp.Errors["summary"] = summaryErr.Error()
	} else {
		resp.Summary = &summary
	}
	if cashflowErr != nil {
		resp.Errors["cashflow"] = cashflowErr.Error()
	} else {
		resp.Cashflow = &cashflow
	}
	if daysErr != nil {
		resp.Errors["calendar"] = daysErr.Error()
	} else {
		s.status.ReplaceTransactions(flattenTransactions(days))
		resp.Calendar = &calendarSlice{
			Days:              days,
			RecurringPayments: services.AggregateRecurring(days),
		}
	}
	if pricesErr != nil {
		resp.Errors["prices"] = pricesErr.Error()
	} else {
		resp.Portfolio = &portfolioSlice{
			PortfolioView: s.valuator.Valuate(snap.Quotes),
			PricesStale:   snap.Stale,
			PricesAsOf:    snap.LastUpdated,
		}
	}

	if summaryErr != nil && cashflowErr != nil && daysErr != nil && pricesErr != nil {
		slog.ErrorContext(ctx, "All dashboard fetches failed",
			"summary_err", summaryErr,
			"cashflow_err", cashflowErr,
			"calendar_err", daysErr,
			"prices_err", pricesErr)
		writeError(w, http.StatusBadGateway, "all dashboard sources unavailable")
		return
	}

	if len(resp.Errors) == 0 {
		resp.Errors = nil
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecurringPayments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	year, month := parseYearMonth(r)
	days, err := s.backend.Calendar(ctx, year, month)
	if err != nil {
		slog.ErrorContext(ctx, "Calendar fetch failed", "year", year, "month", month, "error", err)
		writeError(w, http.StatusBadGateway, "calendar unavailable")
		return
	}
	s.status.ReplaceTransactions(flattenTransactions(days))

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  services.AggregateRecurring(days),
		"year":  year,
		"month": month,
	})
}

// handleDueDates refreshes the local due-date list from the backend and
// returns it. The status service owns the list between refreshes.
func (s *Server) handleDueDates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	items, err := s.backend.PendingDueDates(ctx)
	if err != nil {
		// Serve the last local list when the backend is down.
		local := s.status.DueDates()
		if local == nil {
			writeError(w, http.StatusBadGateway, "due dates unavailable")
			return
		}
		slog.WarnContext(ctx, "Serving local due-date list, backend fetch failed", "error", err)
		writeJSON(w, http.StatusOK, map[string]any{"data": local, "stale": true})
		return
	}

	s.status.ReplaceDueDates(items)
	writeJSON(w, http.StatusOK, map[string]any{"data": s.status.DueDates()})
}

func (s *Server) handleSavings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	projection, err := s.savings.Project(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Savings projection failed", "error", err)
		writeError(w, http.StatusInternalServerError, "savings projection unavailable")
		return
	}

	writeJSON(w, http.StatusOK, projection)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	snap := s.quotes.Current()

	resp := portfolioSlice{
		PortfolioView: s.valuator.Valuate(snap.Quotes),
		PricesStale:   snap.Stale,
		PricesAsOf:    snap.LastUpdated,
	}
	writeJSON(w, http.StatusOK, resp)
}

type statusUpdateRequest struct {
	Status        core.Status `json:"status"`
	PaymentStatus core.Status `json:"payment_status"`
}

// status returns whichever field the caller used; due dates say "status",
// transactions say "payment_status".
func (req statusUpdateRequest) status() core.Status {
	if req.Status != "" {
		return req.Status
	}
	return req.PaymentStatus
}

func (s *Server) handleDueDateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req statusUpdateRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.status.SetDueDateStatus(r.Context(), id, req.status())
	if err != nil {
		writeStatusUpdateError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(req.status())})
}

func (s *Server) handleTransactionStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req statusUpdateRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.status.SetTransactionStatus(r.Context(), id, req.status())
	if err != nil {
		writeStatusUpdateError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id, "payment_status": string(req.status())})
}

// flattenTransactions collects the month's transactions so status updates
// can find their records locally.
func flattenTransactions(days []core.CalendarDay) []core.Transaction {
	var txs []core.Transaction
	for _, day := range days {
		txs = append(txs, day.Transactions...)
	}
	return txs
}

func writeStatusUpdateError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidStatus), errors.Is(err, core.ErrEmptyID):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		// The optimistic change was rolled back; report the failure.
		slog.ErrorContext(r.Context(), "Status update failed and was rolled back", "error", err)
		writeError(w, http.StatusBadGateway, "status update rejected, local state restored")
	}
}
