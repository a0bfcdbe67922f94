package core

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// SavingsAccount is a static interest-bearing account configuration.
	// Each account compounds daily and independently of the others.
	SavingsAccount struct {
		Name       string          `json:"name"`
		Principal  decimal.Decimal `json:"principal"`
		AnnualRate float64         `json:"annual_rate"`
	}

	// SavingsAccountValue is one account's projected balance.
	SavingsAccountValue struct {
		Name      string          `json:"name"`
		Principal decimal.Decimal `json:"principal"`
		Value     decimal.Decimal `json:"value"`
	}

	// SavingsProjection is the result of projecting all accounts forward
	// from the persisted checkpoint.
	SavingsProjection struct {
		Accounts   []SavingsAccountValue `json:"accounts"`
		Total      decimal.Decimal       `json:"total"`
		AsOf       time.Time             `json:"as_of"`
		Checkpoint time.Time             `json:"checkpoint"`
	}
)

// LoadSavingsAccounts reads the accounts table from a JSON file. An empty
// path returns DefaultSavingsAccounts.
func LoadSavingsAccounts(path string) ([]SavingsAccount, error) {
	if path == "" {
		return DefaultSavingsAccounts(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read savings accounts file: %w", err)
	}
	var accounts []SavingsAccount
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, fmt.Errorf("parse savings accounts file %s: %w", path, err)
	}
	return accounts, nil
}

// DefaultSavingsAccounts returns the built-in account table.
func DefaultSavingsAccounts() []SavingsAccount {
	return []SavingsAccount{
		{Name: "CETES Directo", Principal: dec("25000"), AnnualRate: 0.13},
		{Name: "Nu Cajita", Principal: dec("27711.57"), AnnualRate: 0.07},
	}
}
