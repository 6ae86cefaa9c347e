package metrics

import (
	"fmt"
	"strings"

	"github.com/dvloznov/portfolio-tracker/internal/domain"
)

// Render flattens a report into the compact key/value block injected into
// the advisory prompt. One line per category plus the aggregate lines.
func Render(r domain.Report) string {
	var b strings.Builder

	for _, m := range r.Categories {
		fmt.Fprintf(&b, "%s: value=%s deposits=%s withdraws=%s capital=%s profit=%s profit_pct=%s%%\n",
			m.Category, m.Value, m.Deposits, m.Withdraws, m.Capital, m.Profit, m.ProfitPct.StringFixed(1))
	}

	fmt.Fprintf(&b, "TOTAL: value=%s capital=%s profit=%s profit_pct=%s%%\n",
		r.TotalValue, r.TotalCapital, r.TotalProfit, r.ProfitPct.StringFixed(1))
	fmt.Fprintf(&b, "TARGET: %s progress=%s%%", r.Target, r.ProgressPct.StringFixed(1))

	return b.String()
}
