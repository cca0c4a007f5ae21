package handlers

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"fraud-dashboard/internal/cron"
	"fraud-dashboard/internal/models"
)

// DashboardHandler serves the landing page and the health endpoint.
type DashboardHandler struct {
	base
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(d Deps) *DashboardHandler {
	return &DashboardHandler{base{d}}
}

// recentSize is the number of rows in each "recent" panel.
const recentSize = 5

type dashboardData struct {
	Summary     models.DashboardSummary
	Assessments []models.RiskAssessment
	Alerts      []models.RiskAlert
	// Errs holds the failed sections by name; other sections still render.
	Errs map[string]error
}

// counter is one headline number, taken from the totalElements of a list.
type counter struct {
	name string
	dst  **int
	fn   func(ctx context.Context) (int, error)
}

// ── Index ──────────────────────────────────────────────────────

// Index handles GET / and loads every section concurrently. A failed
// section shows its own error panel.
func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data := dashboardData{Errs: map[string]error{}}
	errs := make([]error, 6)
	unresolved := false

	counters := []counter{
		{"companies", &data.Summary.TotalCompanies, func(ctx context.Context) (int, error) {
			p, err := fetch(ctx, &h.base, listKey(prefixCompanies, pageParams(0, 1)), func(ctx context.Context) (*models.Page[models.Company], error) {
				return h.API.ListCompanies(ctx, 0, 1)
			})
			return total(p, err)
		}},
		{"statements", &data.Summary.TotalStatements, func(ctx context.Context) (int, error) {
			p, err := fetch(ctx, &h.base, listKey(prefixStatements, pageParams(0, 1)), func(ctx context.Context) (*models.Page[models.FinancialStatement], error) {
				return h.API.ListStatements(ctx, models.StatementFilter{Size: 1})
			})
			return total(p, err)
		}},
		{"highRisk", &data.Summary.HighRiskCompanies, func(ctx context.Context) (int, error) {
			key := listKey(prefixRisk, pageParams(0, 1, "riskLevel", models.RiskHigh))
			p, err := fetch(ctx, &h.base, key, func(ctx context.Context) (*models.Page[models.RiskAssessment], error) {
				return h.API.ListAssessments(ctx, models.RiskFilter{RiskLevel: models.RiskHigh, Size: 1})
			})
			return total(p, err)
		}},
		{"alerts", &data.Summary.UnresolvedAlerts, func(ctx context.Context) (int, error) {
			key := listKey(prefixAlerts, pageParams(0, 1, "resolved", "false"))
			p, err := fetch(ctx, &h.base, key, func(ctx context.Context) (*models.Page[models.RiskAlert], error) {
				return h.API.ListAlerts(ctx, models.AlertFilter{Resolved: &unresolved, Size: 1})
			})
			return total(p, err)
		}},
	}

	var g errgroup.Group
	for i, c := range counters {
		g.Go(func() error {
			n, err := c.fn(ctx)
			if err != nil {
				errs[i] = err
				return nil
			}
			*c.dst = &n
			return nil
		})
	}
	g.Go(func() error {
		p, err := fetch(ctx, &h.base, listKey(prefixRisk, pageParams(0, recentSize)), func(ctx context.Context) (*models.Page[models.RiskAssessment], error) {
			return h.API.ListAssessments(ctx, models.RiskFilter{Size: recentSize})
		})
		if err != nil {
			errs[4] = err
			return nil
		}
		data.Assessments = p.Content
		return nil
	})
	g.Go(func() error {
		alerts, err := h.alertFeed(ctx, recentSize)
		if err != nil {
			errs[5] = err
			return nil
		}
		data.Alerts = alerts
		return nil
	})
	_ = g.Wait()

	names := []string{"companies", "statements", "highRisk", "alerts", "assessments", "recentAlerts"}
	for i, err := range errs {
		if err != nil {
			logFetch(names[i], err)
			data.Errs[names[i]] = err
		}
	}

	h.render(w, http.StatusOK, "dashboard", h.page(r, "Dashboard", "dashboard", data))
}

// alertFeed returns up to limit unresolved alerts. It uses the watcher's
// feed when it is running, else asks the backend. Either way the analyst's preferences filter the result.
func (b *base) alertFeed(ctx context.Context, limit int) ([]models.RiskAlert, error) {
	p := b.preferences(ctx)
	var alerts []models.RiskAlert
	if b.Alerts != nil {
		if last, err := b.Alerts.Status(); !last.IsZero() && err == nil {
			alerts = b.Alerts.Feed(p)
			return alerts[:min(len(alerts), limit)], nil
		}
	}

	page, err := b.unresolvedAlerts(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range page.Content {
		if p.Allows(a.Severity, a.AlertType) {
			alerts = append(alerts, a)
		}
	}
	return alerts[:min(len(alerts), limit)], nil
}

// unresolvedAlerts is the first page of open alerts, shared by the feed and
// the resolve form.
func (b *base) unresolvedAlerts(ctx context.Context) (*models.Page[models.RiskAlert], error) {
	unresolved := false
	key := listKey(prefixAlerts, pageParams(0, cron.FeedSize, "resolved", "false"))
	return fetch(ctx, b, key, func(ctx context.Context) (*models.Page[models.RiskAlert], error) {
		return b.API.ListAlerts(ctx, models.AlertFilter{Resolved: &unresolved, Size: cron.FeedSize})
	})
}

func total[T any](p *models.Page[T], err error) (int, error) {
	if err != nil {
		return 0, err
	}
	return p.TotalElements, nil
}

// ── Health ─────────────────────────────────────────────────────

// Health handles GET /health. It reports whether the backend answers.
func (h *DashboardHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := map[string]interface{}{
		"status":  "ok",
		"backend": "up",
	}
	status := http.StatusOK
	if err := h.API.Ping(ctx); err != nil {
		resp["status"] = "degraded"
		resp["backend"] = "down"
		resp["error"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if h.Alerts != nil {
		if last, err := h.Alerts.Status(); !last.IsZero() {
			resp["alertsPolledAt"] = last.UTC().Format(time.RFC3339)
			if err != nil {
				resp["alertsError"] = err.Error()
			}
		}
	}
	JSON(w, status, resp)
}
