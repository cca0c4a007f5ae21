package riskapi

import (
	"context"
	"net/http"

	"fraud-dashboard/internal/models"
)

// ListStatements handles GET /financial-statements.
func (c *Client) ListStatements(ctx context.Context, f models.StatementFilter) (*models.Page[models.FinancialStatement], error) {
	q := pageQuery(f.Page, f.Size)
	setIf(q, "companyId", f.CompanyID)
	setIf(q, "status", f.Status)
	setIf(q, "statementType", f.StatementType)
	return getPage[models.FinancialStatement](ctx, c, "/financial-statements", q)
}

// GetStatement handles GET /financial-statements/:id.
func (c *Client) GetStatement(ctx context.Context, id string) (*models.FinancialStatement, error) {
	return getDetail[models.FinancialStatement](ctx, c, "/financial-statements/"+seg(id))
}

// CreateStatement handles POST /financial-statements.
func (c *Client) CreateStatement(ctx context.Context, req models.StatementRequest) (*models.FinancialStatement, error) {
	return mutate[models.FinancialStatement](ctx, c, http.MethodPost, "/financial-statements", req)
}

// UpdateStatementStatus handles PUT /financial-statements/:id/status.
func (c *Client) UpdateStatementStatus(ctx context.Context, id, status string) (*models.FinancialStatement, error) {
	return mutate[models.FinancialStatement](ctx, c, http.MethodPut,
		"/financial-statements/"+seg(id)+"/status", models.StatementStatusRequest{Status: status})
}

// DeleteStatement handles DELETE /financial-statements/:id.
func (c *Client) DeleteStatement(ctx context.Context, id string) error {
	return c.remove(ctx, "/financial-statements/"+seg(id))
}
