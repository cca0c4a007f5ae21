package risktier

// Altman Z-Score risk categories.
var zCategories = Mapping{
	"SAFE":     Success,
	"GREY":     Warning,
	"GRAY":     Warning,
	"DISTRESS": Danger,
}

// Beneish M-Score manipulation probabilities.
var manipulation = Mapping{
	"LOW":    Success,
	"MEDIUM": Warning,
	"HIGH":   Danger,
}

// Piotroski F-Score financial strength.
var strength = Mapping{
	"STRONG":   Success,
	"MODERATE": Warning,
	"WEAK":     Danger,
}

// Overall risk levels of an assessment.
var riskLevels = Mapping{
	"LOW":       Success,
	"MEDIUM":    Warning,
	"HIGH":      Danger,
	"VERY_HIGH": Danger,
	"CRITICAL":  Danger,
}

// Alert severities.
var severities = Mapping{
	"LOW":      Success,
	"MEDIUM":   Warning,
	"HIGH":     Danger,
	"CRITICAL": Danger,
}

// Statement processing statuses.
var statuses = Mapping{
	"PENDING":   Warning,
	"PROCESSED": Neutral,
	"ANALYZED":  Success,
}

// ML prediction results.
var predictions = Mapping{
	"NON_FRAUD": Success,
	"UNCERTAIN": Warning,
	"FRAUD":     Danger,
}

// FromRiskCategory maps a Z-Score riskCategory.
func FromRiskCategory(s string) Tier { return zCategories.Of(s) }

// FromManipulation maps an M-Score manipulationProbability.
func FromManipulation(s string) Tier { return manipulation.Of(s) }

// FromStrength maps an F-Score financialStrength.
func FromStrength(s string) Tier { return strength.Of(s) }

// FromRiskLevel maps a risk assessment riskLevel.
func FromRiskLevel(s string) Tier { return riskLevels.Of(s) }

// FromSeverity maps a risk alert severity.
func FromSeverity(s string) Tier { return severities.Of(s) }

// FromStatementStatus maps a financial statement status.
func FromStatementStatus(s string) Tier { return statuses.Of(s) }

// FromPrediction maps an ML predictionResult.
func FromPrediction(s string) Tier { return predictions.Of(s) }

// FromActive maps a model's active flag.
func FromActive(active bool) Tier {
	if active {
		return Success
	}
	return Neutral
}
