// Package services implements the derived-state layer of the dashboard:
// recurring-payment aggregation, optimistic status updates, savings
// projection and portfolio valuation.
package services

import (
	"fmt"
	"sort"
	"strings"

	"finanzas/internal/core"

	"github.com/shopspring/decimal"
)

// Occurrence thresholds and labels for frequency classification.
const (
	weeklyMinOccurrences = 4
	frequencyMonthly     = "MENSUAL"
)

// AggregateRecurring turns a month of calendar days into a deduplicated
// recurring-payment list. Recurring transactions are keyed by description:
// the first occurrence seeds the entry's identity, every occurrence bumps
// its counter. A payment is weekly when its name contains "semanal"
// (case-insensitive) or it occurs four or more times in the month;
// otherwise it is monthly. The result is sorted descending by monthly
// total, ties keeping encounter order.
func AggregateRecurring(days []core.CalendarDay) []core.RecurringPayment {
	byName := make(map[string]int)
	var entries []core.RecurringPayment

	for _, day := range days {
		for _, tx := range day.Transactions {
			if !tx.IsRecurring {
				continue
			}
			idx, seen := byName[tx.Description]
			if !seen {
				byName[tx.Description] = len(entries)
				entries = append(entries, core.RecurringPayment{
					ID:       tx.ID,
					Name:     tx.Description,
					Amount:   tx.Amount,
					Status:   tx.PaymentStatus,
					Date:     tx.Date,
					Category: tx.Category,
				})
				idx = len(entries) - 1
			}
			entries[idx].Count++
		}
	}

	for i := range entries {
		e := &entries[i]
		if isWeekly(e.Name, e.Count) {
			e.Frequency = fmt.Sprintf("SEMANAL (%dx)", e.Count)
			e.MonthlyTotal = e.Amount.Mul(decimal.NewFromInt(int64(e.Count)))
		} else {
			e.Frequency = frequencyMonthly
			e.MonthlyTotal = e.Amount
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].MonthlyTotal.GreaterThan(entries[j].MonthlyTotal)
	})

	return entries
}

func isWeekly(name string, count int) bool {
	return strings.Contains(strings.ToLower(name), "semanal") || count >= weeklyMinOccurrences
}
