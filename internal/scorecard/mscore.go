package scorecard

import (
	"fraud-dashboard/internal/models"
	"fraud-dashboard/internal/risktier"
)

// MScoreTitle is the title of the Beneish card.
const MScoreTitle = "Beneish M-Score"

var mInterpretations = map[risktier.Tier]string{
	risktier.Success: "Low probability that reported earnings have been manipulated.",
	risktier.Warning: "Some indices point to possible earnings manipulation. Review the components below.",
	risktier.Danger:  "High probability of earnings manipulation.",
	risktier.Neutral: "The manipulation probability has not been determined.",
}

// MScoreCard builds the Beneish M-Score card.
func MScoreCard(m *models.MScore) Card {
	if m == nil {
		return unavailable(MScoreTitle)
	}
	tier := risktier.FromManipulation(m.ManipulationProbability)
	return Card{
		Title:          MScoreTitle,
		Subtitle:       "Earnings manipulation",
		Available:      true,
		Value:          Fixed(m.MScore, 2),
		Badge:          badge(m.ManipulationProbability, tier),
		Interpretation: mInterpretations[tier],
		Components: []Component{
			ratio("DSRI", "Days sales in receivables index", m.DSRI),
			ratio("GMI", "Gross margin index", m.GMI),
			ratio("AQI", "Asset quality index", m.AQI),
			ratio("SGI", "Sales growth index", m.SGI),
			ratio("DEPI", "Depreciation index", m.DEPI),
			ratio("SGAI", "SG&A expenses index", m.SGAI),
			ratio("LVGI", "Leverage index", m.LVGI),
			ratio("TATA", "Total accruals to total assets", m.TATA),
		},
	}
}
