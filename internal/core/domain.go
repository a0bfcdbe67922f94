package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Payment status vocabulary shared by transactions and due dates.
const (
	StatusPendiente Status = "pendiente"
	StatusPagado    Status = "pagado"
	StatusVencido   Status = "vencido"
)

// Transaction types as reported by the backend.
const (
	TypeIngreso     TransactionType = "ingreso"
	TypeGasto       TransactionType = "gasto"
	TypeInversion   TransactionType = "inversion"
	TypeSuscripcion TransactionType = "suscripcion"
)

type (
	Status string

	TransactionType string

	Date struct {
		time.Time
	}

	// Transaction is a single ledger movement as returned by the backend.
	// Immutable except PaymentStatus, which changes only through the
	// status service.
	Transaction struct {
		ID            string          `json:"id"`
		Description   string          `json:"description"`
		Amount        decimal.Decimal `json:"amount"`
		Category      string          `json:"category"`
		Date          Date            `json:"date"`
		Type          TransactionType `json:"type"`
		IsRecurring   bool            `json:"is_recurring"`
		PaymentStatus Status          `json:"payment_status"`
	}

	// DueItem is a standalone payable obligation. It shares the status
	// vocabulary with Transaction but is otherwise independent.
	DueItem struct {
		ID          string          `json:"id"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		DueDate     Date            `json:"due_date"`
		Status      Status          `json:"status"`
		Category    string          `json:"category"`
		DaysUntil   int             `json:"days_until"`
		IsOverdue   bool            `json:"is_overdue"`
	}

	// CalendarDay is one day of the month calendar payload.
	CalendarDay struct {
		Date          Date            `json:"date"`
		DueDates      []DueItem       `json:"due_dates"`
		Transactions  []Transaction   `json:"transactions"`
		TotalIncome   decimal.Decimal `json:"total_income"`
		TotalExpenses decimal.Decimal `json:"total_expenses"`
	}

	// RecurringPayment is the deduplicated monthly/weekly view derived
	// from a month of recurring transactions. Keyed by description:
	// at most one entry per distinct description per aggregation pass.
	RecurringPayment struct {
		ID           string          `json:"id"`
		Name         string          `json:"name"`
		Amount       decimal.Decimal `json:"amount"`
		MonthlyTotal decimal.Decimal `json:"monthly_total"`
		Frequency    string          `json:"frequency"`
		Count        int             `json:"count"`
		Status       Status          `json:"status"`
		Date         Date            `json:"date"`
		Category     string          `json:"category"`
	}
)

var (
	ErrInvalidStatus  = errors.New("invalid payment status")
	ErrRecordNotFound = errors.New("record not found")
	ErrEmptyID        = errors.New("empty record id")
	ErrInvalidAmount  = errors.New("invalid amount")
)

// Valid reports whether s is one of the known payment statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPendiente, StatusPagado, StatusVencido:
		return true
	}
	return false
}

// IsIncome reports whether the transaction type counts as income.
func (t TransactionType) IsIncome() bool {
	return t == TypeIngreso
}

const dateLayout = "2006-01-02"

// NewDate creates a new Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current local calendar date.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD", or null when zero.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD", empty string, or null. The backend
// omits or nulls optional dates, so both decode to the zero Date.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Normalize resolves optional backend fields to concrete defaults once at
// the ingestion boundary, so derivations never see missing values.
func (t *Transaction) Normalize() {
	if t.PaymentStatus == "" {
		t.PaymentStatus = StatusPendiente
	}
	if t.Type == "" {
		t.Type = TypeGasto
	}
	t.Description = strings.TrimSpace(t.Description)
}

// Normalize resolves optional backend fields to concrete defaults.
func (d *DueItem) Normalize() {
	if d.Status == "" {
		d.Status = StatusPendiente
	}
	d.Description = strings.TrimSpace(d.Description)
}

// Normalize normalizes the day and every record it contains.
func (c *CalendarDay) Normalize() {
	for i := range c.Transactions {
		c.Transactions[i].Normalize()
	}
	for i := range c.DueDates {
		c.DueDates[i].Normalize()
	}
}
