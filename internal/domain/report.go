package domain

import "github.com/shopspring/decimal"

// CategoryMetrics is the derived financial position of one category.
//
// Capital may go negative when withdrawals run ahead of deposits; that is
// meaningful (money taken out before it was put in) and is never clamped.
// ProfitPct is 0 when Capital is 0, by policy rather than error.
type CategoryMetrics struct {
	Category  Category        `json:"category"`
	Deposits  decimal.Decimal `json:"deposits"`
	Withdraws decimal.Decimal `json:"withdraws"`
	Value     decimal.Decimal `json:"value"`
	Capital   decimal.Decimal `json:"capital"`
	Profit    decimal.Decimal `json:"profit"`
	ProfitPct decimal.Decimal `json:"profit_pct"`
}

// Report is the full derived view over the ledger. Computed on demand,
// never persisted.
type Report struct {
	Categories []CategoryMetrics `json:"categories"`

	TotalValue   decimal.Decimal `json:"total_value"`
	TotalCapital decimal.Decimal `json:"total_capital"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
	ProfitPct    decimal.Decimal `json:"profit_pct"`

	Target      decimal.Decimal `json:"target"`
	ProgressPct decimal.Decimal `json:"progress_pct"`
}
