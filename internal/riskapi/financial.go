package riskapi

import (
	"context"
	"net/http"

	"fraud-dashboard/internal/models"
)

// ── Financial Data ─────────────────────────────────────────────

// GetFinancialData handles GET /financial-data/statement/:id.
func (c *Client) GetFinancialData(ctx context.Context, statementID string) (*models.FinancialData, error) {
	return getDetail[models.FinancialData](ctx, c, "/financial-data/statement/"+seg(statementID))
}

// GetLatestFinancialData handles GET /financial-data/company/:id/latest.
func (c *Client) GetLatestFinancialData(ctx context.Context, companyID string) (*models.FinancialData, error) {
	return getDetail[models.FinancialData](ctx, c, "/financial-data/company/"+seg(companyID)+"/latest")
}

// CreateFinancialData handles POST /financial-data.
func (c *Client) CreateFinancialData(ctx context.Context, data models.FinancialData) (*models.FinancialData, error) {
	return mutate[models.FinancialData](ctx, c, http.MethodPost, "/financial-data", data)
}

// UpdateFinancialData handles PUT /financial-data/:id.
func (c *Client) UpdateFinancialData(ctx context.Context, id string, data models.FinancialData) (*models.FinancialData, error) {
	return mutate[models.FinancialData](ctx, c, http.MethodPut, "/financial-data/"+seg(id), data)
}

// CalculateDerived handles POST /financial-data/:id/calculate-derived.
func (c *Client) CalculateDerived(ctx context.Context, id string) (*models.FinancialData, error) {
	return mutate[models.FinancialData](ctx, c, http.MethodPost, "/financial-data/"+seg(id)+"/calculate-derived", nil)
}

// ── Financial Analysis ─────────────────────────────────────────

// GetRatios handles GET /financial-analysis/ratios/statement/:id.
func (c *Client) GetRatios(ctx context.Context, statementID string) (*models.FinancialRatios, error) {
	return getDetail[models.FinancialRatios](ctx, c, "/financial-analysis/ratios/statement/"+seg(statementID))
}

// GetZScore handles GET /financial-analysis/z-score/statement/:id.
func (c *Client) GetZScore(ctx context.Context, statementID string) (*models.ZScore, error) {
	return getDetail[models.ZScore](ctx, c, "/financial-analysis/z-score/statement/"+seg(statementID))
}

// GetMScore handles GET /financial-analysis/m-score/statement/:id.
func (c *Client) GetMScore(ctx context.Context, statementID string) (*models.MScore, error) {
	return getDetail[models.MScore](ctx, c, "/financial-analysis/m-score/statement/"+seg(statementID))
}

// GetFScore handles GET /financial-analysis/f-score/statement/:id.
func (c *Client) GetFScore(ctx context.Context, statementID string) (*models.FScore, error) {
	return getDetail[models.FScore](ctx, c, "/financial-analysis/f-score/statement/"+seg(statementID))
}

// CalculateAnalysis handles POST /financial-analysis/calculate/:id.
func (c *Client) CalculateAnalysis(ctx context.Context, statementID string) (*models.AnalysisResult, error) {
	return mutate[models.AnalysisResult](ctx, c, http.MethodPost, "/financial-analysis/calculate/"+seg(statementID), nil)
}
