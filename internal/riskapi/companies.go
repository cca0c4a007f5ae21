package riskapi

import (
	"context"
	"net/http"

	"fraud-dashboard/internal/models"
)

// ListCompanies handles GET /companies.
func (c *Client) ListCompanies(ctx context.Context, page, size int) (*models.Page[models.Company], error) {
	return getPage[models.Company](ctx, c, "/companies", pageQuery(page, size))
}

// GetCompany handles GET /companies/:id.
func (c *Client) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	return getDetail[models.Company](ctx, c, "/companies/"+seg(id))
}

// GetCompanyByStockCode handles GET /companies/stock/:code.
func (c *Client) GetCompanyByStockCode(ctx context.Context, code string) (*models.Company, error) {
	return getDetail[models.Company](ctx, c, "/companies/stock/"+seg(code))
}

// GetCompanyRisk handles GET /companies/:id/risk.
func (c *Client) GetCompanyRisk(ctx context.Context, id string) (*models.CompanyRisk, error) {
	return getDetail[models.CompanyRisk](ctx, c, "/companies/"+seg(id)+"/risk")
}

// CreateCompany handles POST /companies.
func (c *Client) CreateCompany(ctx context.Context, req models.CompanyRequest) (*models.Company, error) {
	return mutate[models.Company](ctx, c, http.MethodPost, "/companies", req)
}

// UpdateCompany handles PUT /companies/:id.
func (c *Client) UpdateCompany(ctx context.Context, id string, req models.CompanyRequest) (*models.Company, error) {
	return mutate[models.Company](ctx, c, http.MethodPut, "/companies/"+seg(id), req)
}

// DeleteCompany handles DELETE /companies/:id.
func (c *Client) DeleteCompany(ctx context.Context, id string) error {
	return c.remove(ctx, "/companies/"+seg(id))
}

// ── Fiscal Years ───────────────────────────────────────────────

// ListFiscalYears handles GET /fiscal-years/company/:id.
func (c *Client) ListFiscalYears(ctx context.Context, companyID string) (*models.Page[models.FiscalYear], error) {
	return getPage[models.FiscalYear](ctx, c, "/fiscal-years/company/"+seg(companyID), nil)
}

// CreateFiscalYear handles POST /fiscal-years.
func (c *Client) CreateFiscalYear(ctx context.Context, req models.FiscalYearRequest) (*models.FiscalYear, error) {
	return mutate[models.FiscalYear](ctx, c, http.MethodPost, "/fiscal-years", req)
}
