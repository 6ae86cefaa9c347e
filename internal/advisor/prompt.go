package advisor

import (
	"fmt"

	"github.com/dvloznov/portfolio-tracker/internal/genlang"
)

// systemFraming sets the advisor persona. The metrics block and the user's
// question are appended to it in the final user content.
const systemFraming = `You are a strict financial risk officer reviewing a personal portfolio.
Analyze the detailed asset table you are given: capital, profit/loss and allocation.
Rules:
1. Concentration: if one category holds more than 50% of total value, flag concentration risk.
2. Discipline: if a position is down more than 20% and not cut, criticize it sharply.
3. Liquidity: if cash is very low, warn about solvency risk.
4. Style: keep it short, argue from the actual numbers, no platitudes.`

// buildContents assembles the wire-format conversation: prior window turns
// first, then one user content carrying the framing, the current metrics
// and the new question.
func buildContents(metricsBlock string, turns []Turn, question string) []genlang.Content {
	contents := make([]genlang.Content, 0, len(turns)+1)

	for _, t := range turns {
		role := "user"
		if t.Role == RoleAssistant {
			role = "model"
		}
		contents = append(contents, genlang.Content{
			Role:  role,
			Parts: []genlang.Part{{Text: t.Text}},
		})
	}

	final := fmt.Sprintf("%s\n\nCURRENT PORTFOLIO:\n%s\n\nQUESTION: %s",
		systemFraming, metricsBlock, question)
	contents = append(contents, genlang.Content{
		Role:  "user",
		Parts: []genlang.Part{{Text: final}},
	})

	return contents
}
