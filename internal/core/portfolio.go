package core

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

type (
	// Holding is a static portfolio position. FeedID overrides the
	// default symbol-to-price-feed mapping when set.
	Holding struct {
		Symbol         string          `json:"symbol"`
		Amount         decimal.Decimal `json:"amount"`
		AvgBuyPrice    decimal.Decimal `json:"avg_buy_price"`
		RealizedProfit decimal.Decimal `json:"realized_profit"`
		FeedID         string          `json:"feed_id,omitempty"`
	}

	// PriceQuote is a live quote from the price feed, keyed externally
	// by feed id.
	PriceQuote struct {
		USD          decimal.Decimal `json:"usd"`
		USD24hChange decimal.Decimal `json:"usd_24h_change"`
	}

	// PortfolioAsset is a holding joined with its live quote.
	PortfolioAsset struct {
		Holding
		Price         decimal.Decimal `json:"price"`
		PriceChange   decimal.Decimal `json:"price_change_24h"`
		Value         decimal.Decimal `json:"value"`
		Invested      decimal.Decimal `json:"invested"`
		Profit        decimal.Decimal `json:"profit"`
		ProfitPercent decimal.Decimal `json:"profit_percent"`
	}

	// PortfolioView is the full valuation of all holdings.
	PortfolioView struct {
		Assets        []PortfolioAsset `json:"assets"`
		TotalValue    decimal.Decimal  `json:"total_value"`
		TotalInvested decimal.Decimal  `json:"total_invested"`
		TotalProfit   decimal.Decimal  `json:"total_profit"`
		ProfitPercent decimal.Decimal  `json:"profit_percent"`
	}
)

// DefaultFeedIDs maps holding symbols to price-feed identifiers.
var DefaultFeedIDs = map[string]string{
	"LINK":   "chainlink",
	"XRP":    "ripple",
	"PEPE":   "pepe",
	"SUI":    "sui",
	"ONDO":   "ondo-finance",
	"POPCAT": "popcat",
	"UNI":    "uniswap",
	"AERO":   "aerodrome-finance",
	"ARB":    "arbitrum",
}

// FeedKey returns the price-feed identifier for the holding: the explicit
// FeedID when set, otherwise the default mapping for its symbol.
func (h Holding) FeedKey() string {
	if h.FeedID != "" {
		return h.FeedID
	}
	return DefaultFeedIDs[h.Symbol]
}

// LoadHoldings reads the holdings table from a JSON file. An empty path
// returns DefaultHoldings.
func LoadHoldings(path string) ([]Holding, error) {
	if path == "" {
		return DefaultHoldings(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read holdings file: %w", err)
	}
	var holdings []Holding
	if err := json.Unmarshal(raw, &holdings); err != nil {
		return nil, fmt.Errorf("parse holdings file %s: %w", path, err)
	}
	for _, h := range holdings {
		if h.Amount.IsNegative() {
			return nil, fmt.Errorf("holding %s has negative amount: %w", h.Symbol, ErrInvalidAmount)
		}
	}
	return holdings, nil
}

// DefaultHoldings returns the built-in holdings table.
func DefaultHoldings() []Holding {
	return []Holding{
		{Symbol: "LINK", Amount: dec("4.174"), AvgBuyPrice: dec("24.38")},
		{Symbol: "XRP", Amount: dec("31.11"), AvgBuyPrice: dec("2.30")},
		{Symbol: "SUI", Amount: dec("15.74"), AvgBuyPrice: dec("3.77")},
		{Symbol: "ONDO", Amount: dec("61.27"), AvgBuyPrice: dec("1.10")},
		{Symbol: "UNI", Amount: dec("5.68"), AvgBuyPrice: dec("9.15")},
		{Symbol: "ARB", Amount: dec("92.40"), AvgBuyPrice: dec("0.69")},
	}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("core: bad decimal literal %q: %v", s, err))
	}
	return d
}
