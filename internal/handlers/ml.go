package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"fraud-dashboard/internal/forms"
	"fraud-dashboard/internal/listing"
	"fraud-dashboard/internal/models"
	"fraud-dashboard/internal/scorecard"
)

// MLHandler serves the ML model pages.
type MLHandler struct {
	base
}

// NewMLHandler creates a new MLHandler.
func NewMLHandler(d Deps) *MLHandler {
	return &MLHandler{base{d}}
}

// ── Models ─────────────────────────────────────────────────────

type mlListData struct {
	State      listing.State
	Rows       []models.MLModel
	Total      int
	TotalPages int
	Err        error
}

var modelSorts = map[string]listing.Key[string, models.MLModel]{
	"name":    func(m models.MLModel) (string, bool) { return strings.ToLower(m.ModelName), m.ModelName != "" },
	"type":    func(m models.MLModel) (string, bool) { return m.ModelType, m.ModelType != "" },
	"trained": func(m models.MLModel) (string, bool) { return m.TrainedAt, m.TrainedAt != "" },
}

func modelAccuracy(m models.MLModel) (float64, bool) {
	if m.Accuracy == nil {
		return 0, false
	}
	return *m.Accuracy, true
}

// List handles GET /ml-models.
func (h *MLHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	st := listing.Parse(r.URL.Query())
	data := mlListData{State: st}

	page, err := fetch(ctx, &h.base, listKey(prefixML, pageParams(st.Page, st.Size)), func(ctx context.Context) (*models.Page[models.MLModel], error) {
		return h.API.ListModels(ctx, st.Page, st.Size)
	})
	if err != nil {
		logFetch("ml models", err)
		data.Err = err
	} else {
		data.Total, data.TotalPages = page.TotalElements, page.TotalPages
		data.Rows = listing.FilterPage(page.Content, st.Search, func(m models.MLModel) []string {
			return []string{m.ModelName, m.ModelType, m.ModelVersion}
		})
		if st.SortBy == "accuracy" {
			listing.Sort(data.Rows, modelAccuracy, st.Desc, listing.NilsLast)
		} else if k, ok := modelSorts[st.SortBy]; ok {
			listing.Sort(data.Rows, k, st.Desc, listing.NilsLast)
		}
	}

	h.render(w, http.StatusOK, "ml_models", h.page(r, "ML Models", "ml", data))
}

// ── Performance ────────────────────────────────────────────────

type metric struct {
	Label string
	Value string
}

type confusion struct {
	TP, FP, TN, FN string
}

type performanceData struct {
	ID          string
	Model       *models.MLModel
	NotFound    bool
	Err         error
	Performance *models.ModelPerformance
	PerfErr     error
	Metrics     []metric
	Confusion   *confusion
}

// Performance handles GET /ml-models/{id}/performance. A model without
// evaluation results shows the model card only.
func (h *MLHandler) Performance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	data := performanceData{ID: id}

	m, err := fetch(ctx, &h.base, detailKey(prefixML, id), func(ctx context.Context) (*models.MLModel, error) {
		return h.API.GetModel(ctx, id)
	})
	switch {
	case isNotFound(err):
		data.NotFound = true
		h.render(w, http.StatusNotFound, "ml_performance", h.page(r, "Model not found", "ml", data))
		return
	case err != nil:
		logFetch("ml model", err)
		data.Err = err
		h.render(w, http.StatusOK, "ml_performance", h.page(r, "Model Performance", "ml", data))
		return
	}
	data.Model = m

	perf, err := fetch(ctx, &h.base, detailKey(prefixML, id, "performance"), func(ctx context.Context) (*models.ModelPerformance, error) {
		return h.API.GetModelPerformance(ctx, id)
	})
	switch {
	case isNotFound(err):
	case err != nil:
		logFetch("ml performance", err)
		data.PerfErr = err
	default:
		data.Performance = perf
		data.Metrics = metrics(perf)
		data.Confusion = confusionOf(perf)
	}

	title := "Model Performance"
	if m.ModelName != "" {
		title = m.ModelName + " · " + title
	}
	h.render(w, http.StatusOK, "ml_performance", h.page(r, title, "ml", data))
}

func metrics(p *models.ModelPerformance) []metric {
	return []metric{
		{"Accuracy", scorecard.Fixed(p.Accuracy, 4)},
		{"Precision", scorecard.Fixed(p.Precision, 4)},
		{"Recall", scorecard.Fixed(p.Recall, 4)},
		{"F1 Score", scorecard.Fixed(p.F1Score, 4)},
		{"AUC", scorecard.Fixed(p.AUC, 4)},
	}
}

// confusionOf is nil unless all four counts were reported.
func confusionOf(p *models.ModelPerformance) *confusion {
	if p.TruePositives == nil || p.FalsePositives == nil || p.TrueNegatives == nil || p.FalseNegatives == nil {
		return nil
	}
	return &confusion{
		TP: strconv.Itoa(*p.TruePositives),
		FP: strconv.Itoa(*p.FalsePositives),
		TN: strconv.Itoa(*p.TrueNegatives),
		FN: strconv.Itoa(*p.FalseNegatives),
	}
}

// ── Admin actions ──────────────────────────────────────────────

// Toggle handles POST /ml-models/{id}/toggle. The form states the wanted
// state in "active" so a stale page cannot flip the model twice.
func (h *MLHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	activate := r.PostForm.Get("active") == "true"
	_, out := forms.Submit(ctx, h.Cache, forms.Action[*models.MLModel]{
		Mutate: func(ctx context.Context) (*models.MLModel, error) {
			if activate {
				return h.API.ActivateModel(ctx, id)
			}
			return h.API.DeactivateModel(ctx, id)
		},
		Fallback:   "Failed to update model status. Please try again.",
		Invalidate: []string{prefixML},
	})
	if out.Failed() {
		zap.L().Warn("handlers: toggle ml model", zap.String("id", id), zap.Bool("activate", activate), zap.Error(out.Err))
		h.actionFailed(w, r, "/ml-models", out.Message)
		return
	}
	zap.L().Info("handlers: ml model updated", zap.String("id", id), zap.Bool("active", activate))
	http.Redirect(w, r, withNotice("/ml-models", "model-updated"), http.StatusSeeOther)
}

// Delete handles POST /ml-models/{id}/delete.
func (h *MLHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	_, out := forms.Submit(ctx, h.Cache, forms.Action[struct{}]{
		Mutate: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, h.API.DeleteModel(ctx, id)
		},
		Fallback:   "Failed to delete model. Please try again.",
		Invalidate: []string{prefixML},
	})
	if out.Failed() {
		zap.L().Warn("handlers: delete ml model", zap.String("id", id), zap.Error(out.Err))
		h.actionFailed(w, r, "/ml-models", out.Message)
		return
	}
	http.Redirect(w, r, withNotice("/ml-models", "model-deleted"), http.StatusSeeOther)
}
