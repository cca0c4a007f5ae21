package riskapi

import (
	"context"
	"net/http"
	"strconv"

	"fraud-dashboard/internal/models"
)

// ── Risk Assessments ───────────────────────────────────────────

// ListAssessments handles GET /risk-assessments.
func (c *Client) ListAssessments(ctx context.Context, f models.RiskFilter) (*models.Page[models.RiskAssessment], error) {
	q := pageQuery(f.Page, f.Size)
	setIf(q, "companyId", f.CompanyID)
	setIf(q, "riskLevel", f.RiskLevel)
	return getPage[models.RiskAssessment](ctx, c, "/risk-assessments", q)
}

// GetAssessment handles GET /risk-assessments/:id.
func (c *Client) GetAssessment(ctx context.Context, id string) (*models.RiskAssessment, error) {
	return getDetail[models.RiskAssessment](ctx, c, "/risk-assessments/"+seg(id))
}

// ListCompanyAssessments handles GET /risk-assessments/company/:id.
func (c *Client) ListCompanyAssessments(ctx context.Context, companyID string) (*models.Page[models.RiskAssessment], error) {
	return getPage[models.RiskAssessment](ctx, c, "/risk-assessments/company/"+seg(companyID), nil)
}

// Assess handles POST /risk-assessments/assess/:statementId.
func (c *Client) Assess(ctx context.Context, statementID string) (*models.RiskAssessment, error) {
	return mutate[models.RiskAssessment](ctx, c, http.MethodPost, "/risk-assessments/assess/"+seg(statementID), nil)
}

// ── Risk Alerts ────────────────────────────────────────────────

// ListAlerts handles GET /risk-alerts.
func (c *Client) ListAlerts(ctx context.Context, f models.AlertFilter) (*models.Page[models.RiskAlert], error) {
	q := pageQuery(f.Page, f.Size)
	if f.Resolved != nil {
		q.Set("resolved", strconv.FormatBool(*f.Resolved))
	}
	setIf(q, "severity", f.Severity)
	return getPage[models.RiskAlert](ctx, c, "/risk-alerts", q)
}

// ListAssessmentAlerts handles GET /risk-assessments/:id/alerts.
func (c *Client) ListAssessmentAlerts(ctx context.Context, assessmentID string) (*models.Page[models.RiskAlert], error) {
	return getPage[models.RiskAlert](ctx, c, "/risk-assessments/"+seg(assessmentID)+"/alerts", nil)
}

// ResolveAlert handles PUT /risk-alerts/:id/resolve. notes are sent as given.
func (c *Client) ResolveAlert(ctx context.Context, id, notes string) (*models.RiskAlert, error) {
	return mutate[models.RiskAlert](ctx, c, http.MethodPut, "/risk-alerts/"+seg(id)+"/resolve",
		models.ResolveAlertRequest{ResolutionNotes: notes})
}
