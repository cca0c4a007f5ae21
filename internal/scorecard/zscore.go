package scorecard

import (
	"fraud-dashboard/internal/models"
	"fraud-dashboard/internal/risktier"
)

// ZScoreTitle is the title of the Altman card.
const ZScoreTitle = "Altman Z-Score"

var zInterpretations = map[risktier.Tier]string{
	risktier.Success: "Safe zone: the company shows a low probability of financial distress.",
	risktier.Warning: "Grey zone: financial distress cannot be ruled out and should be monitored.",
	risktier.Danger:  "Distress zone: high probability of bankruptcy within the next two years.",
	risktier.Neutral: "The bankruptcy risk category has not been determined.",
}

// ZScoreCard builds the Altman Z-Score card.
func ZScoreCard(z *models.ZScore) Card {
	if z == nil {
		return unavailable(ZScoreTitle)
	}
	tier := risktier.FromRiskCategory(z.RiskCategory)
	return Card{
		Title:          ZScoreTitle,
		Subtitle:       "Bankruptcy risk",
		Available:      true,
		Value:          Fixed(z.ZScore, 2),
		Badge:          badge(z.RiskCategory, tier),
		Interpretation: zInterpretations[tier],
		Components: []Component{
			ratio("X1 Working capital / Total assets", "Liquidity", z.WorkingCapitalToTotalAssets),
			ratio("X2 Retained earnings / Total assets", "Cumulative profitability", z.RetainedEarningsToTotalAssets),
			ratio("X3 EBIT / Total assets", "Operating efficiency", z.EbitToTotalAssets),
			ratio("X4 Market value of equity / Book value of debt", "Solvency", z.MarketValueEquityToBookValueDebt),
			ratio("X5 Sales / Total assets", "Asset turnover", z.SalesToTotalAssets),
		},
	}
}
