package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fraud-dashboard/internal/export"
	"fraud-dashboard/internal/forms"
	"fraud-dashboard/internal/listing"
	"fraud-dashboard/internal/models"
	"fraud-dashboard/internal/scorecard"
)

// exportTimeout bounds collecting and rendering one report.
const exportTimeout = time.Minute

// exportPageSize is the page size used while collecting a report.
const exportPageSize = 100

// feedSize is the number of alerts returned by the feed endpoint.
const feedSize = 20

var riskLevels = []string{models.RiskLow, models.RiskMedium, models.RiskHigh, models.RiskVeryHigh, models.RiskCritical}

var severities = []string{"CRITICAL", "HIGH", "MEDIUM", "LOW"}

// RiskHandler serves risk assessments and risk alerts.
type RiskHandler struct {
	base
}

// NewRiskHandler creates a new RiskHandler.
func NewRiskHandler(d Deps) *RiskHandler {
	return &RiskHandler{base{d}}
}

// ── Assessments list ───────────────────────────────────────────

type riskListData struct {
	State      listing.State
	Rows       []models.RiskAssessment
	Total      int
	TotalPages int
	Levels     []string
	CanArchive bool
	Err        error
}

// ExportHref is the spreadsheet link for the current filters.
func (d riskListData) ExportHref() string {
	q := url.Values{}
	for _, k := range []string{"companyId", "riskLevel"} {
		if v := d.State.Filter(k); v != "" {
			q.Set(k, v)
		}
	}
	if len(q) == 0 {
		return "/risk-assessments/export.xlsx"
	}
	return "/risk-assessments/export.xlsx?" + q.Encode()
}

func riskFilter(st listing.State) models.RiskFilter {
	return models.RiskFilter{
		CompanyID: st.Filter("companyId"),
		RiskLevel: st.Filter("riskLevel"),
		Page:      st.Page,
		Size:      st.Size,
	}
}

// List handles GET /risk-assessments.
func (h *RiskHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	st := listing.Parse(r.URL.Query(), "companyId", "riskLevel")
	f := riskFilter(st)
	data := riskListData{State: st, Levels: riskLevels, CanArchive: h.Archiver != nil}

	key := listKey(prefixRisk, pageParams(f.Page, f.Size, "companyId", f.CompanyID, "riskLevel", f.RiskLevel))
	page, err := fetch(ctx, &h.base, key, func(ctx context.Context) (*models.Page[models.RiskAssessment], error) {
		return h.API.ListAssessments(ctx, f)
	})
	if err != nil {
		logFetch("risk assessments", err)
		data.Err = err
	} else {
		data.Total, data.TotalPages = page.TotalElements, page.TotalPages
		data.Rows = listing.FilterPage(page.Content, st.Search, func(a models.RiskAssessment) []string {
			return []string{a.CompanyName, a.RiskLevel}
		})
		switch st.SortBy {
		case "score":
			listing.Sort(data.Rows, overallScore, st.Desc, listing.NilsLast)
		case "company":
			listing.Sort(data.Rows, assessedCompany, st.Desc, listing.NilsLast)
		case "assessed":
			listing.Sort(data.Rows, assessedAt, st.Desc, listing.NilsLast)
		}
	}

	h.render(w, http.StatusOK, "risk_assessments", h.page(r, "Risk Assessments", "risk", data))
}

func overallScore(a models.RiskAssessment) (float64, bool) {
	if a.OverallRiskScore == nil {
		return 0, false
	}
	return *a.OverallRiskScore, true
}

func assessedCompany(a models.RiskAssessment) (string, bool) {
	return strings.ToLower(a.CompanyName), a.CompanyName != ""
}

func assessedAt(a models.RiskAssessment) (string, bool) { return a.AssessedAt, a.AssessedAt != "" }

// ── Assessment detail ──────────────────────────────────────────

type riskTab struct {
	Key   string
	Label string
}

var riskTabs = []riskTab{{"overview", "Overview"}, {"alerts", "Alerts"}, {"analysis", "Analysis"}}

type riskDetailData struct {
	ID         string
	Tab        string
	Tabs       []riskTab
	Assessment *models.RiskAssessment
	NotFound   bool
	Err        error
	Risk       scorecard.Card
	Alerts     []models.RiskAlert
	ZScore     scorecard.Card
	MScore     scorecard.Card
	FScore     scorecard.Card
	Errs       map[string]error
	Return     string
}

// Detail handles GET /risk-assessments/{id}. The assessment loads first;
// only then are its alerts and score artifacts requested.
func (h *RiskHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	tab := r.URL.Query().Get("tab")
	switch tab {
	case "alerts", "analysis":
	default:
		tab = "overview"
	}
	data := riskDetailData{ID: id, Tab: tab, Tabs: riskTabs, Errs: map[string]error{}}
	data.Return = "/risk-assessments/" + id + "?tab=alerts"

	a, err := fetch(ctx, &h.base, detailKey(prefixRisk, id), func(ctx context.Context) (*models.RiskAssessment, error) {
		return h.API.GetAssessment(ctx, id)
	})
	switch {
	case isNotFound(err):
		data.NotFound = true
		h.render(w, http.StatusNotFound, "risk_assessment", h.page(r, "Risk assessment not found", "risk", data))
		return
	case err != nil:
		logFetch("risk assessment", err)
		data.Err = err
		h.render(w, http.StatusOK, "risk_assessment", h.page(r, "Risk Assessment", "risk", data))
		return
	}
	data.Assessment = a
	data.Risk = scorecard.RiskScoreCard(a)

	var (
		alerts section[models.Page[models.RiskAlert]]
		z      section[models.ZScore]
		m      section[models.MScore]
		f      section[models.FScore]
	)
	var g errgroup.Group
	g.Go(func() error {
		alerts.Value, alerts.Err = fetch(ctx, &h.base, listKey(prefixAlerts, map[string]string{"assessmentId": id}), func(ctx context.Context) (*models.Page[models.RiskAlert], error) {
			return h.API.ListAssessmentAlerts(ctx, id)
		})
		return nil
	})
	if tab == "analysis" && a.StatementID != "" {
		sid := a.StatementID
		g.Go(func() error {
			z.Value, z.Err = fetch(ctx, &h.base, detailKey(prefixAnalysis, sid, "z-score"), func(ctx context.Context) (*models.ZScore, error) {
				return h.API.GetZScore(ctx, sid)
			})
			return nil
		})
		g.Go(func() error {
			m.Value, m.Err = fetch(ctx, &h.base, detailKey(prefixAnalysis, sid, "m-score"), func(ctx context.Context) (*models.MScore, error) {
				return h.API.GetMScore(ctx, sid)
			})
			return nil
		})
		g.Go(func() error {
			f.Value, f.Err = fetch(ctx, &h.base, detailKey(prefixAnalysis, sid, "f-score"), func(ctx context.Context) (*models.FScore, error) {
				return h.API.GetFScore(ctx, sid)
			})
			return nil
		})
	}
	_ = g.Wait()

	if p := sectionValue(data.Errs, "alerts", alerts); p != nil {
		data.Alerts = p.Content
	}
	data.ZScore = scorecard.ZScoreCard(sectionValue(data.Errs, "zScore", z))
	data.MScore = scorecard.MScoreCard(sectionValue(data.Errs, "mScore", m))
	data.FScore = scorecard.FScoreCard(sectionValue(data.Errs, "fScore", f))

	title := "Risk Assessment"
	if a.CompanyName != "" {
		title = a.CompanyName + " · " + title
	}
	h.render(w, http.StatusOK, "risk_assessment", h.page(r, title, "risk", data))
}

// ── Export ─────────────────────────────────────────────────────

// report collects every assessment matching the list filters together with
// all alerts.
func (h *RiskHandler) report(ctx context.Context, q url.Values) (export.Report, error) {
	st := listing.Parse(q, "companyId", "riskLevel")
	f := riskFilter(st)

	var rep export.Report
	var g errgroup.Group
	g.Go(func() (err error) {
		rep.Assessments, err = export.Collect(ctx, exportPageSize, func(ctx context.Context, page, size int) (*models.Page[models.RiskAssessment], error) {
			pf := f
			pf.Page, pf.Size = page, size
			return h.API.ListAssessments(ctx, pf)
		})
		return err
	})
	g.Go(func() (err error) {
		rep.Alerts, err = export.Collect(ctx, exportPageSize, func(ctx context.Context, page, size int) (*models.Page[models.RiskAlert], error) {
			return h.API.ListAlerts(ctx, models.AlertFilter{Page: page, Size: size})
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return export.Report{}, err
	}
	rep.GeneratedAt = time.Now()
	return rep, nil
}

// Export handles GET /risk-assessments/export.xlsx.
func (h *RiskHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), exportTimeout)
	defer cancel()

	rep, err := h.report(ctx, r.URL.Query())
	if err != nil {
		zap.L().Warn("handlers: collect risk report", zap.Error(err))
		h.actionFailed(w, r, "/risk-assessments", "Failed to export risk assessments. Please try again.")
		return
	}
	body, err := export.Bytes(rep)
	if err != nil {
		zap.L().Error("handlers: render risk report", zap.Error(err))
		h.actionFailed(w, r, "/risk-assessments", "Failed to export risk assessments. Please try again.")
		return
	}

	name := "risk-assessments-" + rep.GeneratedAt.Format("20060102") + ".xlsx"
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// Archive handles POST /risk-assessments/export/archive. The report is
// stored and the list page links to it.
func (h *RiskHandler) Archive(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}
	if h.Archiver == nil {
		h.actionFailed(w, r, "/risk-assessments", "Report archiving is not configured.")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), exportTimeout)
	defer cancel()

	rep, err := h.report(ctx, r.PostForm)
	if err != nil {
		zap.L().Warn("handlers: collect risk report", zap.Error(err))
		h.actionFailed(w, r, "/risk-assessments", "Failed to archive risk report. Please try again.")
		return
	}
	info, err := h.Archiver.Archive(ctx, rep)
	if err != nil {
		zap.L().Error("handlers: archive risk report", zap.Error(err))
		h.actionFailed(w, r, "/risk-assessments", "Failed to archive risk report. Please try again.")
		return
	}
	target := withNotice("/risk-assessments", "report-archived") + "&file=" + url.QueryEscape(info.URL)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// ── Alerts ─────────────────────────────────────────────────────

type alertListData struct {
	State      listing.State
	Rows       []models.RiskAlert
	Total      int
	TotalPages int
	Severities []string
	Resolved   string
	Err        error
}

// AlertList handles GET /alerts. Unresolved alerts are shown unless
// resolved=true or resolved=all is given.
func (h *RiskHandler) AlertList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	st := listing.Parse(r.URL.Query(), "resolved", "severity")
	resolved := st.Filter("resolved")
	if resolved == "" {
		resolved = "false"
	}
	data := alertListData{State: st, Severities: severities, Resolved: resolved}

	f := models.AlertFilter{Severity: st.Filter("severity"), Page: st.Page, Size: st.Size}
	if resolved != "all" {
		b := resolved == "true"
		f.Resolved = &b
	}
	key := listKey(prefixAlerts, pageParams(f.Page, f.Size, "resolved", resolved, "severity", f.Severity))
	page, err := fetch(ctx, &h.base, key, func(ctx context.Context) (*models.Page[models.RiskAlert], error) {
		return h.API.ListAlerts(ctx, f)
	})
	if err != nil {
		logFetch("risk alerts", err)
		data.Err = err
	} else {
		data.Total, data.TotalPages = page.TotalElements, page.TotalPages
		data.Rows = listing.FilterPage(page.Content, st.Search, func(a models.RiskAlert) []string {
			return []string{a.CompanyName, a.Message, a.AlertType}
		})
	}

	h.render(w, http.StatusOK, "alerts", h.page(r, "Risk Alerts", "alerts", data))
}

type resolveData struct {
	ID     string
	Alert  *models.RiskAlert
	Form   forms.AlertResolveForm
	Errors forms.Errors
	Return string
}

// findAlert looks the alert up among the open ones. The backend has no
// single-alert endpoint; nil means it is not open anymore or not known.
func (h *RiskHandler) findAlert(ctx context.Context, id string) *models.RiskAlert {
	page, err := h.unresolvedAlerts(ctx)
	if err != nil {
		logFetch("risk alerts", err)
		return nil
	}
	for i := range page.Content {
		if page.Content[i].ID == id {
			return &page.Content[i]
		}
	}
	return nil
}

// ResolveForm handles GET /alerts/{id}/resolve.
func (h *RiskHandler) ResolveForm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	data := resolveData{
		ID:     id,
		Alert:  h.findAlert(ctx, id),
		Form:   forms.AlertResolveForm{AlertID: id},
		Return: safeReturn(r.URL.Query().Get("return"), "/alerts"),
	}
	h.render(w, http.StatusOK, "alert_resolve", h.page(r, "Resolve Alert", "alerts", data))
}

// Resolve handles POST /alerts/{id}/resolve. Notes shorter than ten
// characters never reach the backend; valid notes are sent as typed.
func (h *RiskHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	form := forms.AlertResolveFormFrom(id, r.PostForm)
	back := safeReturn(r.PostForm.Get("return"), "/alerts")

	_, out := forms.Submit(ctx, h.Cache, forms.Action[*models.RiskAlert]{
		Validate: form.Validate,
		Mutate: func(ctx context.Context) (*models.RiskAlert, error) {
			return h.API.ResolveAlert(ctx, id, form.ResolutionNotes)
		},
		Fallback:   "Failed to resolve alert. Please try again.",
		Success:    "Alert resolved successfully.",
		Invalidate: []string{prefixAlerts, prefixRisk},
	})
	if out.Failed() {
		if out.Err != nil {
			zap.L().Warn("handlers: resolve alert", zap.String("id", id), zap.Error(out.Err))
		}
		data := resolveData{ID: id, Alert: h.findAlert(ctx, id), Form: form, Errors: out.Errors, Return: back}
		p := h.page(r, "Resolve Alert", "alerts", data)
		p.Banner = failure(out.Message)
		h.render(w, statusFor(out), "alert_resolve", p)
		return
	}

	if h.Alerts != nil {
		h.Alerts.Forget(id)
	}
	zap.L().Info("handlers: alert resolved", zap.String("id", id))
	http.Redirect(w, r, withNotice(back, "alert-resolved"), http.StatusSeeOther)
}

// Feed handles GET /api/alerts/feed: the open alerts the caller wants to
// be told about, for the header badge.
func (h *RiskHandler) Feed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	alerts, err := h.alertFeed(ctx, feedSize)
	if err != nil {
		logFetch("alert feed", err)
		JSONError(w, http.StatusBadGateway, "An error occurred while fetching risk alerts. Please try again later.")
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"count":  len(alerts),
		"alerts": alerts,
	})
}
