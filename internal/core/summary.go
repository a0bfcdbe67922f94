package core

import "github.com/shopspring/decimal"

// Summary is the backend's income/expense summary for a period.
type Summary struct {
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	Balance       decimal.Decimal `json:"balance"`
	Period        string          `json:"period"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
}

// CashflowDay is one day of the backend's daily cash flow series.
type CashflowDay struct {
	Date     string          `json:"date"`
	Day      string          `json:"day"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}

// Cashflow is the current month's daily cash flow with cumulative balance.
type Cashflow struct {
	Data      []CashflowDay `json:"data"`
	MonthName string        `json:"month_name"`
	StartDate string        `json:"start_date"`
	EndDate   string        `json:"end_date"`
}
