package services

import (
	"testing"

	"finanzas/internal/core"

	"github.com/shopspring/decimal"
)

func recurringTx(id, desc, amount string, day int) core.Transaction {
	return core.Transaction{
		ID:            id,
		Description:   desc,
		Amount:        dec(amount),
		Date:          core.NewDate(2025, 3, day),
		Type:          core.TypeGasto,
		IsRecurring:   true,
		PaymentStatus: core.StatusPendiente,
	}
}

func dayWith(day int, txs ...core.Transaction) core.CalendarDay {
	return core.CalendarDay{Date: core.NewDate(2025, 3, day), Transactions: txs}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAggregateRecurring_DeduplicatesByDescription(t *testing.T) {
	days := []core.CalendarDay{
		dayWith(3, recurringTx("t1", "Renta", "8500", 3)),
		dayWith(10, recurringTx("t2", "Renta", "8500", 10)),
		dayWith(12, recurringTx("t3", "Luz", "430", 12)),
	}

	got := AggregateRecurring(days)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (one entry per distinct description)", len(got))
	}

	var renta core.RecurringPayment
	for _, e := range got {
		if e.Name == "Renta" {
			renta = e
		}
	}
	if renta.Count != 2 {
		t.Errorf("Renta count = %d, want 2", renta.Count)
	}
	// The first occurrence's identity wins.
	if renta.ID != "t1" {
		t.Errorf("Renta id = %q, want t1 (first occurrence)", renta.ID)
	}
}

func TestAggregateRecurring_FrequencyClassification(t *testing.T) {
	tests := []struct {
		name          string
		days          []core.CalendarDay
		wantFrequency string
	}{
		{
			name: "four occurrences is weekly",
			days: []core.CalendarDay{
				dayWith(1, recurringTx("t1", "Despensa", "100", 1)),
				dayWith(8, recurringTx("t2", "Despensa", "100", 8)),
				dayWith(15, recurringTx("t3", "Despensa", "100", 15)),
				dayWith(22, recurringTx("t4", "Despensa", "100", 22)),
			},
			wantFrequency: "SEMANAL (4x)",
		},
		{
			name: "semanal in the name is weekly even once",
			days: []core.CalendarDay{
				dayWith(1, recurringTx("t1", "Limpieza Semanal", "250", 1)),
			},
			wantFrequency: "SEMANAL (1x)",
		},
		{
			name: "three occurrences without semanal is monthly",
			days: []core.CalendarDay{
				dayWith(1, recurringTx("t1", "Gimnasio", "100", 1)),
				dayWith(11, recurringTx("t2", "Gimnasio", "100", 11)),
				dayWith(21, recurringTx("t3", "Gimnasio", "100", 21)),
			},
			wantFrequency: "MENSUAL",
		},
		{
			name: "single occurrence is monthly with count one",
			days: []core.CalendarDay{
				dayWith(5, recurringTx("t1", "Netflix", "219", 5)),
			},
			wantFrequency: "MENSUAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AggregateRecurring(tt.days)
			if len(got) != 1 {
				t.Fatalf("len = %d, want 1", len(got))
			}
			if got[0].Frequency != tt.wantFrequency {
				t.Errorf("frequency = %q, want %q", got[0].Frequency, tt.wantFrequency)
			}
		})
	}
}

func TestAggregateRecurring_MonthlyTotal(t *testing.T) {
	days := []core.CalendarDay{
		dayWith(1,
			recurringTx("w1", "Despensa", "100", 1),
			recurringTx("m1", "Netflix", "100", 1),
		),
		dayWith(8, recurringTx("w2", "Despensa", "100", 8)),
		dayWith(15, recurringTx("w3", "Despensa", "100", 15)),
		dayWith(22, recurringTx("w4", "Despensa", "100", 22)),
	}

	got := AggregateRecurring(days)
	totals := map[string]string{}
	for _, e := range got {
		totals[e.Name] = e.MonthlyTotal.String()
	}

	// Weekly amount 100 x 4 = 400; monthly amount 100 x 1 = 100.
	if totals["Despensa"] != "400" {
		t.Errorf("weekly monthly total = %s, want 400", totals["Despensa"])
	}
	if totals["Netflix"] != "100" {
		t.Errorf("monthly total = %s, want 100", totals["Netflix"])
	}
}

func TestAggregateRecurring_SortsByMonthlyTotalDescending(t *testing.T) {
	days := []core.CalendarDay{
		dayWith(1,
			recurringTx("a", "Luz", "430", 1),
			recurringTx("b", "Renta", "8500", 1),
			recurringTx("c", "Internet", "599", 1),
		),
	}

	got := AggregateRecurring(days)
	want := []string{"Renta", "Internet", "Luz"}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("position %d = %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestAggregateRecurring_TiesKeepEncounterOrder(t *testing.T) {
	days := []core.CalendarDay{
		dayWith(1,
			recurringTx("a", "Agua", "300", 1),
			recurringTx("b", "Gas", "300", 1),
		),
	}

	got := AggregateRecurring(days)
	if got[0].Name != "Agua" || got[1].Name != "Gas" {
		t.Errorf("tie order = [%s, %s], want [Agua, Gas]", got[0].Name, got[1].Name)
	}
}

func TestAggregateRecurring_IgnoresNonRecurring(t *testing.T) {
	oneOff := core.Transaction{ID: "x", Description: "Tacos", Amount: dec("120"), IsRecurring: false}
	days := []core.CalendarDay{dayWith(1, oneOff)}

	if got := AggregateRecurring(days); len(got) != 0 {
		t.Errorf("len = %d, want 0 for non-recurring input", len(got))
	}
}

func TestAggregateRecurring_CountsAcrossAllDays(t *testing.T) {
	var days []core.CalendarDay
	raw := 0
	for d := 1; d <= 28; d += 7 {
		days = append(days, dayWith(d, recurringTx("t", "Despensa", "100", d)))
		raw++
	}

	got := AggregateRecurring(days)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Count != raw {
		t.Errorf("count = %d, want raw occurrence count %d", got[0].Count, raw)
	}
}
