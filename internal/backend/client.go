// Package backend implements the HTTP client for the upstream finance API.
//
// The upstream contract is fixed: the dashboard endpoints under /dashboard,
// the due-dates collection, and PATCH status updates on transactions and
// due dates. All payloads are decoded into core types and normalized at
// this boundary.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"finanzas/internal/core"
)

// Client is a thin, context-aware client for the upstream API.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a client for the given base URL. A zero timeout
// defaults to 10 seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

type calendarEnvelope struct {
	Days []core.CalendarDay `json:"days"`
}

type pricesEnvelope struct {
	Data map[string]core.PriceQuote `json:"data"`
}

type dueDatesEnvelope struct {
	Data []core.DueItem `json:"data"`
}

// Calendar fetches the calendar payload for a month: one CalendarDay per
// day, each carrying its due dates and transactions.
func (c *Client) Calendar(ctx context.Context, year, month int) ([]core.CalendarDay, error) {
	q := url.Values{}
	q.Set("month", strconv.Itoa(month))
	q.Set("year", strconv.Itoa(year))

	var env calendarEnvelope
	if err := c.get(ctx, "/dashboard/calendar", q, &env); err != nil {
		return nil, fmt.Errorf("fetch calendar %d-%02d: %w", year, month, err)
	}
	for i := range env.Days {
		env.Days[i].Normalize()
	}
	return env.Days, nil
}

// CryptoPrices fetches the live quote map, keyed by price-feed id.
func (c *Client) CryptoPrices(ctx context.Context) (map[string]core.PriceQuote, error) {
	var env pricesEnvelope
	if err := c.get(ctx, "/dashboard/crypto-prices", nil, &env); err != nil {
		return nil, fmt.Errorf("fetch crypto prices: %w", err)
	}
	return env.Data, nil
}

// PendingDueDates fetches due items still awaiting payment.
func (c *Client) PendingDueDates(ctx context.Context) ([]core.DueItem, error) {
	q := url.Values{}
	q.Set("status", string(core.StatusPendiente))

	var env dueDatesEnvelope
	if err := c.get(ctx, "/due-dates", q, &env); err != nil {
		return nil, fmt.Errorf("fetch pending due dates: %w", err)
	}
	for i := range env.Data {
		env.Data[i].Normalize()
	}
	return env.Data, nil
}

// Summary fetches the income/expense summary for a period
// (day, week, month, year, all).
func (c *Client) Summary(ctx context.Context, period string) (core.Summary, error) {
	q := url.Values{}
	if period != "" {
		q.Set("period", period)
	}

	var s core.Summary
	if err := c.get(ctx, "/dashboard/summary", q, &s); err != nil {
		return core.Summary{}, fmt.Errorf("fetch summary: %w", err)
	}
	return s, nil
}

// Cashflow fetches the current month's daily cash flow series.
func (c *Client) Cashflow(ctx context.Context) (core.Cashflow, error) {
	var cf core.Cashflow
	if err := c.get(ctx, "/dashboard/cashflow", nil, &cf); err != nil {
		return core.Cashflow{}, fmt.Errorf("fetch cashflow: %w", err)
	}
	return cf, nil
}

// UpdateDueDateStatus PATCHes a due date's status. The response body is
// not needed beyond the acknowledgement.
func (c *Client) UpdateDueDateStatus(ctx context.Context, id string, status core.Status) error {
	body := map[string]string{"status": string(status)}
	if err := c.patch(ctx, "/due-dates/"+url.PathEscape(id), body); err != nil {
		return fmt.Errorf("update due date %s: %w", id, err)
	}
	return nil
}

// UpdateTransactionStatus PATCHes a transaction's payment status. The
// caller's local calendar date is sent alongside so server-side audit
// logs are not skewed by the server's timezone.
func (c *Client) UpdateTransactionStatus(ctx context.Context, id string, status core.Status, localDate core.Date) error {
	body := map[string]string{
		"payment_status": string(status),
		"date":           localDate.String(),
	}
	if err := c.patch(ctx, "/transactions/"+url.PathEscape(id), body); err != nil {
		return fmt.Errorf("update transaction %s: %w", id, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		drain(resp.Body)
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) patch(ctx context.Context, path string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	drain(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.WarnContext(ctx, "Backend rejected status update",
			"path", path,
			"status_code", resp.StatusCode)
		return fmt.Errorf("PATCH %s: unexpected status %d", path, resp.StatusCode)
	}
	return nil
}

// drain empties a response body so the connection can be reused.
func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 1<<16))
}
