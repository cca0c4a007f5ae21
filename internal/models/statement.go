package models

import "strings"

// Statement types accepted by the backend.
const (
	StatementAnnual    = "ANNUAL"
	StatementQuarterly = "QUARTERLY"
	StatementInterim   = "INTERIM"
)

// Statement processing statuses.
const (
	StatusPending   = "PENDING"
	StatusProcessed = "PROCESSED"
	StatusAnalyzed  = "ANALYZED"
)

// FiscalYear groups statements of one company for one financial year.
type FiscalYear struct {
	ID        string `json:"id"`
	CompanyID string `json:"companyId"`
	Year      int    `json:"year"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	IsClosed  bool   `json:"isClosed"`
}

// FiscalYearRequest creates a fiscal year.
type FiscalYearRequest struct {
	CompanyID string `json:"companyId"`
	Year      int    `json:"year"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// FinancialStatement is one reported statement (annual, quarterly, interim).
type FinancialStatement struct {
	ID            string `json:"id"`
	CompanyID     string `json:"companyId"`
	CompanyName   string `json:"companyName,omitempty"`
	FiscalYearID  string `json:"fiscalYearId"`
	FiscalYear    int    `json:"fiscalYear,omitempty"`
	StatementType string `json:"statementType"`
	Period        string `json:"period,omitempty"`
	Status        string `json:"status"`
	UploadDate    string `json:"uploadDate,omitempty"`
}

// HasFinancialData reports whether figures were entered for the statement.
func (s *FinancialStatement) HasFinancialData() bool {
	st := strings.ToUpper(s.Status)
	return st == StatusProcessed || st == StatusAnalyzed
}

// IsAnalyzed reports whether scores have been computed for the statement.
func (s *FinancialStatement) IsAnalyzed() bool {
	return strings.ToUpper(s.Status) == StatusAnalyzed
}

// StatementRequest creates a financial statement.
type StatementRequest struct {
	CompanyID     string `json:"companyId"`
	FiscalYearID  string `json:"fiscalYearId"`
	StatementType string `json:"statementType"`
	Period        string `json:"period,omitempty"`
}

// StatementStatusRequest is the body for a status transition.
type StatementStatusRequest struct {
	Status string `json:"status"`
}

// StatementFilter narrows the statements list.
type StatementFilter struct {
	CompanyID     string
	Status        string
	StatementType string
	Page          int
	Size          int
}
