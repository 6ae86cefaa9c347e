// Package metrics derives the financial report from the raw ledger state.
// All numeric edge cases here are policy: zero capital yields 0% profit,
// a non-positive target yields 0% progress, and negative capital is kept.
package metrics

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/portfolio-tracker/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// LedgerReader is the slice of the ledger store the calculator needs.
type LedgerReader interface {
	SumsByCategory(ctx context.Context) (map[domain.Category]domain.CategorySums, error)
	Valuations(ctx context.Context) (map[domain.Category]decimal.Decimal, error)
	Target(ctx context.Context) (decimal.Decimal, error)
}

// Compute is the pure derivation over already-read state. Categories with
// no valuation default to zero value, so profit = -capital for them.
func Compute(sums map[domain.Category]domain.CategorySums, valuations map[domain.Category]decimal.Decimal, target decimal.Decimal) domain.Report {
	report := domain.Report{Target: target}

	for _, cat := range domain.Categories {
		s := sums[cat]
		value := valuations[cat]

		capital := s.Deposits.Sub(s.Withdraws)
		profit := value.Sub(capital)

		m := domain.CategoryMetrics{
			Category:  cat,
			Deposits:  s.Deposits,
			Withdraws: s.Withdraws,
			Value:     value,
			Capital:   capital,
			Profit:    profit,
			ProfitPct: pct(profit, capital),
		}
		report.Categories = append(report.Categories, m)

		report.TotalValue = report.TotalValue.Add(value)
		report.TotalCapital = report.TotalCapital.Add(capital)
	}

	report.TotalProfit = report.TotalValue.Sub(report.TotalCapital)
	report.ProfitPct = pct(report.TotalProfit, report.TotalCapital)
	if target.IsPositive() {
		report.ProgressPct = report.TotalValue.Div(target).Mul(hundred)
	}
	return report
}

// pct returns part/whole*100, saturating to 0 when whole is 0.
func pct(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// Service reads both stores and computes the report. Either every read
// succeeds and the full report is returned, or the error propagates and
// no partial report exists.
type Service struct {
	ledger LedgerReader
}

func NewService(ledger LedgerReader) *Service {
	return &Service{ledger: ledger}
}

func (s *Service) Report(ctx context.Context) (domain.Report, error) {
	sums, err := s.ledger.SumsByCategory(ctx)
	if err != nil {
		return domain.Report{}, fmt.Errorf("reading transaction sums: %w", err)
	}
	valuations, err := s.ledger.Valuations(ctx)
	if err != nil {
		return domain.Report{}, fmt.Errorf("reading valuations: %w", err)
	}
	target, err := s.ledger.Target(ctx)
	if err != nil {
		return domain.Report{}, fmt.Errorf("reading target: %w", err)
	}
	return Compute(sums, valuations, target), nil
}
