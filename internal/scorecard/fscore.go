package scorecard

import (
	"strconv"

	"fraud-dashboard/internal/models"
	"fraud-dashboard/internal/risktier"
)

// FScoreTitle is the title of the Piotroski card.
const FScoreTitle = "Piotroski F-Score"

// FScoreMax is the number of binary signals in the F-Score.
const FScoreMax = 9

var fInterpretations = map[risktier.Tier]string{
	risktier.Success: "Strong fundamentals: most profitability and efficiency signals are positive.",
	risktier.Warning: "Moderate fundamentals with mixed signals.",
	risktier.Danger:  "Weak fundamentals: few of the nine signals are positive.",
	risktier.Neutral: "The financial strength has not been determined.",
}

// FScoreCard builds the Piotroski F-Score card.
func FScoreCard(f *models.FScore) Card {
	if f == nil {
		return unavailable(FScoreTitle)
	}
	tier := risktier.FromStrength(f.FinancialStrength)

	value := missing
	var g *float64
	if f.FScore != nil {
		value = strconv.Itoa(*f.FScore)
		score := float64(*f.FScore)
		g = gauge(&score, FScoreMax)
	}

	return Card{
		Title:          FScoreTitle,
		Subtitle:       "Financial strength",
		Available:      true,
		Value:          value,
		Scale:          "/ " + strconv.Itoa(FScoreMax),
		Badge:          badge(f.FinancialStrength, tier),
		Interpretation: fInterpretations[tier],
		Gauge:          g,
		Components: []Component{
			check("Positive net income", f.PositiveNetIncome),
			check("Positive operating cash flow", f.PositiveOperatingCashFlow),
			check("Increasing return on assets", f.IncreasingROA),
			check("Operating cash flow exceeds net income", f.CashFlowGreaterThanIncome),
			check("Decreasing leverage", f.DecreasingLeverage),
			check("Increasing current ratio", f.IncreasingCurrentRatio),
			check("No new shares issued", f.NoNewShares),
			check("Increasing gross margin", f.IncreasingGrossMargin),
			check("Increasing asset turnover", f.IncreasingAssetTurnover),
		},
	}
}
