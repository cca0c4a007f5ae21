package models

// ── Envelopes ────────────────────────────────────────────────────
// The backend wraps list bodies as a page and detail bodies under "data".

// Page is a server-side paginated list body.
type Page[T any] struct {
	Content       []T `json:"content"`
	TotalPages    int `json:"totalPages"`
	TotalElements int `json:"totalElements"`
	Number        int `json:"number"`
	Size          int `json:"size"`
}

// Detail is a single-record body. Data is nil when the backend
// resolved the request but found nothing.
type Detail[T any] struct {
	Data *T `json:"data"`
}

// ── Company ──────────────────────────────────────────────────────

// Company is a listed company under fraud-risk monitoring.
type Company struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	StockCode   string  `json:"stockCode"`
	Sector      string  `json:"sector"`
	ListingDate *string `json:"listingDate,omitempty"` // YYYY-MM-DD
	Description *string `json:"description,omitempty"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}

// CompanyRequest is the body for company create/update.
type CompanyRequest struct {
	Name        string  `json:"name"`
	StockCode   string  `json:"stockCode"`
	Sector      string  `json:"sector"`
	ListingDate *string `json:"listingDate,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CompanyRisk is the latest risk snapshot of a company.
type CompanyRisk struct {
	CompanyID        string   `json:"companyId"`
	OverallRiskScore *float64 `json:"overallRiskScore"`
	RiskLevel        string   `json:"riskLevel"`
	AssessmentID     string   `json:"assessmentId,omitempty"`
	AssessedAt       string   `json:"assessedAt,omitempty"`
}

// ── Dashboard ────────────────────────────────────────────────────

// DashboardSummary holds the headline counters of the dashboard page.
// Each counter is nil when its query failed.
type DashboardSummary struct {
	TotalCompanies    *int `json:"totalCompanies"`
	TotalStatements   *int `json:"totalStatements"`
	HighRiskCompanies *int `json:"highRiskCompanies"`
	UnresolvedAlerts  *int `json:"unresolvedAlerts"`
}
