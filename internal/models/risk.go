package models

// Risk levels reported by the backend.
const (
	RiskLow      = "LOW"
	RiskMedium   = "MEDIUM"
	RiskHigh     = "HIGH"
	RiskVeryHigh = "VERY_HIGH"
	RiskCritical = "CRITICAL"
)

// RiskAssessment aggregates the score artifacts and ML prediction of a
// statement into one overall score and level.
type RiskAssessment struct {
	ID                 string   `json:"id"`
	CompanyID          string   `json:"companyId"`
	CompanyName        string   `json:"companyName,omitempty"`
	StatementID        string   `json:"statementId"`
	OverallRiskScore   *float64 `json:"overallRiskScore"`
	RiskLevel          string   `json:"riskLevel"`
	ZScoreRisk         *float64 `json:"zScoreRisk"`
	MScoreRisk         *float64 `json:"mScoreRisk"`
	FScoreRisk         *float64 `json:"fScoreRisk"`
	MLPredictionRisk   *float64 `json:"mlPredictionRisk"`
	FinancialRatioRisk *float64 `json:"financialRatioRisk"`
	AssessmentSummary  string   `json:"assessmentSummary,omitempty"` // markdown
	AssessedAt         string   `json:"assessedAt,omitempty"`
}

// RiskAlert is raised by the backend for a risk assessment.
type RiskAlert struct {
	ID              string  `json:"id"`
	AssessmentID    string  `json:"assessmentId"`
	CompanyName     string  `json:"companyName,omitempty"`
	Severity        string  `json:"severity"`  // LOW | MEDIUM | HIGH | CRITICAL
	AlertType       string  `json:"alertType"` // Z_SCORE | M_SCORE | F_SCORE | ML_PREDICTION | FINANCIAL_RATIO
	Message         string  `json:"message"`
	IsResolved      bool    `json:"isResolved"`
	ResolutionNotes *string `json:"resolutionNotes,omitempty"`
	ResolvedAt      *string `json:"resolvedAt,omitempty"`
	CreatedAt       string  `json:"createdAt,omitempty"`
}

// ResolveAlertRequest is the body for resolving an alert.
type ResolveAlertRequest struct {
	ResolutionNotes string `json:"resolutionNotes"`
}

// RiskFilter narrows the risk assessments list.
type RiskFilter struct {
	CompanyID string
	RiskLevel string
	Page      int
	Size      int
}

// AlertFilter narrows the alerts list.
type AlertFilter struct {
	Resolved *bool
	Severity string
	Page     int
	Size     int
}
