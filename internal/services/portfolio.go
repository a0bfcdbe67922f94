package services

import (
	"finanzas/internal/core"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PortfolioValuator joins the static holdings table with a live quote map
// keyed by price-feed id. Valuation is a pure function of its inputs; the
// quote map comes from the price poller and may be stale or empty.
type PortfolioValuator struct {
	holdings []core.Holding
}

// NewPortfolioValuator creates a valuator over the given holdings.
func NewPortfolioValuator(holdings []core.Holding) *PortfolioValuator {
	return &PortfolioValuator{holdings: holdings}
}

// Valuate computes value and profit for every holding. A holding with no
// quote yet values at zero. Realized profit represents gains already
// cashed out and is added unconditionally.
func (v *PortfolioValuator) Valuate(quotes map[string]core.PriceQuote) core.PortfolioView {
	view := core.PortfolioView{
		TotalValue:    decimal.Zero,
		TotalInvested: decimal.Zero,
		TotalProfit:   decimal.Zero,
	}

	for _, h := range v.holdings {
		quote, ok := quotes[h.FeedKey()]
		price := decimal.Zero
		change := decimal.Zero
		if ok {
			price = quote.USD
			change = quote.USD24hChange
		}

		value := h.Amount.Mul(price)
		invested := h.Amount.Mul(h.AvgBuyPrice)
		profit := value.Sub(invested).Add(h.RealizedProfit)

		percent := decimal.Zero
		if invested.IsPositive() {
			percent = profit.Div(invested).Mul(hundred)
		}

		view.Assets = append(view.Assets, core.PortfolioAsset{
			Holding:       h,
			Price:         price,
			PriceChange:   change,
			Value:         value,
			Invested:      invested,
			Profit:        profit,
			ProfitPercent: percent,
		})

		view.TotalValue = view.TotalValue.Add(value)
		view.TotalInvested = view.TotalInvested.Add(invested)
		view.TotalProfit = view.TotalProfit.Add(profit)
	}

	if view.TotalInvested.IsPositive() {
		view.ProfitPercent = view.TotalProfit.Div(view.TotalInvested).Mul(hundred)
	} else {
		view.ProfitPercent = decimal.Zero
	}

	return view
}
