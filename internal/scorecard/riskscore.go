package scorecard

import (
	"fraud-dashboard/internal/models"
	"fraud-dashboard/internal/risktier"
)

// RiskScoreTitle is the title of the aggregated risk card.
const RiskScoreTitle = "Overall Risk Score"

// PredictionTitle is the title of the ML prediction card.
const PredictionTitle = "ML Fraud Prediction"

var riskInterpretations = map[risktier.Tier]string{
	risktier.Success: "Low aggregated fraud risk for this statement.",
	risktier.Warning: "Medium aggregated fraud risk. Some indicators warrant a closer look.",
	risktier.Danger:  "High aggregated fraud risk. Investigate the open alerts.",
	risktier.Neutral: "The risk level has not been determined.",
}

func riskPart(label string, v *float64) Component {
	return Component{Label: label, Kind: KindValue, Value: Fixed(v, 1)}
}

// RiskScoreCard builds the aggregated risk card of an assessment.
func RiskScoreCard(a *models.RiskAssessment) Card {
	if a == nil {
		return unavailable(RiskScoreTitle)
	}
	tier := risktier.FromRiskLevel(a.RiskLevel)
	return Card{
		Title:          RiskScoreTitle,
		Subtitle:       "Aggregated fraud risk",
		Available:      true,
		Value:          Fixed(a.OverallRiskScore, 1),
		Scale:          "/ 100",
		Badge:          badge(a.RiskLevel, tier),
		Interpretation: riskInterpretations[tier],
		Gauge:          gauge(a.OverallRiskScore, 100),
		Components: []Component{
			riskPart("Z-Score risk", a.ZScoreRisk),
			riskPart("M-Score risk", a.MScoreRisk),
			riskPart("F-Score risk", a.FScoreRisk),
			riskPart("ML prediction risk", a.MLPredictionRisk),
			riskPart("Financial ratio risk", a.FinancialRatioRisk),
		},
	}
}

// PredictionCard builds the ML prediction card of a statement.
func PredictionCard(p *models.MLPrediction) Card {
	if p == nil {
		return unavailable(PredictionTitle)
	}
	tier := risktier.FromPrediction(p.PredictionResult)

	var pct *float64
	value := missing
	if p.FraudProbability != nil {
		v := *p.FraudProbability * 100
		pct = gauge(&v, 100)
		value = Fixed(&v, 1) + "%"
	}

	var confidence *float64
	if p.ConfidenceScore != nil {
		c := *p.ConfidenceScore * 100
		confidence = &c
	}

	subtitle := "Fraud probability"
	if p.ModelName != "" {
		subtitle = p.ModelName
	}
	return Card{
		Title:          PredictionTitle,
		Subtitle:       subtitle,
		Available:      true,
		Value:          value,
		Badge:          badge(p.PredictionResult, tier),
		Interpretation: "Probability that the statement is fraudulent according to the active model.",
		Gauge:          pct,
		Components: []Component{
			{Label: "Confidence", Kind: KindValue, Value: percent(confidence)},
		},
	}
}

func percent(v *float64) string {
	s := Fixed(v, 1)
	if s == missing {
		return s
	}
	return s + "%"
}
