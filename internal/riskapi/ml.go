package riskapi

import (
	"context"
	"net/http"

	"fraud-dashboard/internal/models"
)

// ListModels handles GET /ml/models.
func (c *Client) ListModels(ctx context.Context, page, size int) (*models.Page[models.MLModel], error) {
	return getPage[models.MLModel](ctx, c, "/ml/models", pageQuery(page, size))
}

// GetModel handles GET /ml/models/:id.
func (c *Client) GetModel(ctx context.Context, id string) (*models.MLModel, error) {
	return getDetail[models.MLModel](ctx, c, "/ml/models/"+seg(id))
}

// GetModelPerformance handles GET /ml/models/:id/performance.
func (c *Client) GetModelPerformance(ctx context.Context, id string) (*models.ModelPerformance, error) {
	return getDetail[models.ModelPerformance](ctx, c, "/ml/models/"+seg(id)+"/performance")
}

// ActivateModel handles PUT /ml/models/:id/activate.
func (c *Client) ActivateModel(ctx context.Context, id string) (*models.MLModel, error) {
	return mutate[models.MLModel](ctx, c, http.MethodPut, "/ml/models/"+seg(id)+"/activate", nil)
}

// DeactivateModel handles PUT /ml/models/:id/deactivate.
func (c *Client) DeactivateModel(ctx context.Context, id string) (*models.MLModel, error) {
	return mutate[models.MLModel](ctx, c, http.MethodPut, "/ml/models/"+seg(id)+"/deactivate", nil)
}

// DeleteModel handles DELETE /ml/models/:id.
func (c *Client) DeleteModel(ctx context.Context, id string) error {
	return c.remove(ctx, "/ml/models/"+seg(id))
}

// ListPredictions handles GET /ml/predictions/statement/:id.
func (c *Client) ListPredictions(ctx context.Context, statementID string) (*models.Page[models.MLPrediction], error) {
	return getPage[models.MLPrediction](ctx, c, "/ml/predictions/statement/"+seg(statementID), nil)
}

// Predict handles POST /ml/predict/:statementId.
func (c *Client) Predict(ctx context.Context, statementID string) (*models.MLPrediction, error) {
	return mutate[models.MLPrediction](ctx, c, http.MethodPost, "/ml/predict/"+seg(statementID), nil)
}
