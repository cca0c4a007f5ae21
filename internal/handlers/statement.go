package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fraud-dashboard/internal/forms"
	"fraud-dashboard/internal/listing"
	"fraud-dashboard/internal/models"
	"fraud-dashboard/internal/scorecard"
	"fraud-dashboard/internal/views"
)

// StatementHandler serves financial statements, their figures and their
// analysis.
type StatementHandler struct {
	base
}

// NewStatementHandler creates a new StatementHandler.
func NewStatementHandler(d Deps) *StatementHandler {
	return &StatementHandler{base{d}}
}

// Statuses offered by the status filter and the status form.
var statementStatuses = []string{models.StatusPending, models.StatusProcessed, models.StatusAnalyzed}

// ── List ───────────────────────────────────────────────────────

type statementListData struct {
	State      listing.State
	Rows       []models.FinancialStatement
	Total      int
	TotalPages int
	Types      []string
	Statuses   []string
	Err        error
}

var statementSorts = map[string]listing.Key[string, models.FinancialStatement]{
	"company": func(s models.FinancialStatement) (string, bool) { return strings.ToLower(s.CompanyName), s.CompanyName != "" },
	"type":    func(s models.FinancialStatement) (string, bool) { return s.StatementType, s.StatementType != "" },
	"status":  func(s models.FinancialStatement) (string, bool) { return s.Status, s.Status != "" },
	"upload":  func(s models.FinancialStatement) (string, bool) { return s.UploadDate, s.UploadDate != "" },
}

// List handles GET /statements. Filters go to the backend, the search box
// only narrows the current page.
func (h *StatementHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	st := listing.Parse(r.URL.Query(), "companyId", "status", "statementType")
	data := statementListData{State: st, Types: forms.StatementTypes, Statuses: statementStatuses}

	f := models.StatementFilter{
		CompanyID:     st.Filter("companyId"),
		Status:        st.Filter("status"),
		StatementType: st.Filter("statementType"),
		Page:          st.Page,
		Size:          st.Size,
	}
	key := listKey(prefixStatements, pageParams(f.Page, f.Size,
		"companyId", f.CompanyID, "status", f.Status, "statementType", f.StatementType))
	page, err := fetch(ctx, &h.base, key, func(ctx context.Context) (*models.Page[models.FinancialStatement], error) {
		return h.API.ListStatements(ctx, f)
	})
	if err != nil {
		logFetch("statements", err)
		data.Err = err
	} else {
		data.Total, data.TotalPages = page.TotalElements, page.TotalPages
		data.Rows = listing.FilterPage(page.Content, st.Search, func(s models.FinancialStatement) []string {
			return []string{s.CompanyName, s.StatementType, s.Period, s.Status}
		})
		if k, ok := statementSorts[st.SortBy]; ok {
			listing.Sort(data.Rows, k, st.Desc, listing.NilsLast)
		}
	}

	h.render(w, http.StatusOK, "statements", h.page(r, "Financial Statements", "statements", data))
}

// ── Detail ─────────────────────────────────────────────────────

type statementDetailData struct {
	ID        string
	Statement *models.FinancialStatement
	NotFound  bool
	Err       error
	Documents []models.Document
	DocErr    error
	Statuses  []string
}

// Detail handles GET /statements/{id}.
func (h *StatementHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	data := statementDetailData{ID: id, Statuses: statementStatuses}

	stmt, err := h.statement(ctx, id)
	switch {
	case isNotFound(err):
		data.NotFound = true
		h.render(w, http.StatusNotFound, "statement", h.page(r, "Statement not found", "statements", data))
		return
	case err != nil:
		logFetch("statement", err)
		data.Err = err
		h.render(w, http.StatusOK, "statement", h.page(r, "Financial Statement", "statements", data))
		return
	}
	data.Statement = stmt

	docs, err := fetch(ctx, &h.base, listKey(prefixDocuments, map[string]string{"statementId": id}), func(ctx context.Context) (*models.Page[models.Document], error) {
		return h.API.ListStatementDocuments(ctx, id)
	})
	if err != nil {
		logFetch("statement documents", err)
		data.DocErr = err
	} else {
		data.Documents = docs.Content
	}

	h.render(w, http.StatusOK, "statement", h.page(r, statementTitle(stmt), "statements", data))
}

func (h *StatementHandler) statement(ctx context.Context, id string) (*models.FinancialStatement, error) {
	return fetch(ctx, &h.base, detailKey(prefixStatements, id), func(ctx context.Context) (*models.FinancialStatement, error) {
		return h.API.GetStatement(ctx, id)
	})
}

func statementTitle(s *models.FinancialStatement) string {
	title := views.Enum(s.StatementType) + " Statement"
	if s.CompanyName != "" {
		title = s.CompanyName + " · " + title
	}
	return title
}

// ── Create wizard ──────────────────────────────────────────────

type wizardData struct {
	Wizard      forms.StatementWizard
	Companies   []models.Company
	CompanyErr  error
	FiscalYears []models.FiscalYear
	YearErr     error
	Errors      forms.Errors
	Types       []string
}

func (d wizardData) StepTwoURL(fiscalYearID string) string {
	return forms.StepTwoURL(d.Wizard.CompanyID, fiscalYearID)
}

// New handles GET /statements/new. Step one picks the company and the
// fiscal year, step two the statement type.
func (h *StatementHandler) New(w http.ResponseWriter, r *http.Request) {
	wiz := forms.WizardFrom(r.URL.Query())
	h.renderWizard(w, r, http.StatusOK, wiz, nil, nil)
}

func (h *StatementHandler) renderWizard(w http.ResponseWriter, r *http.Request, status int, wiz forms.StatementWizard, errs forms.Errors, banner *views.Banner) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data := wizardData{Wizard: wiz, Errors: errs, Types: forms.StatementTypes}
	var g errgroup.Group
	g.Go(func() error {
		key := listKey(prefixCompanies, pageParams(0, listing.MaxSize))
		p, err := fetch(ctx, &h.base, key, func(ctx context.Context) (*models.Page[models.Company], error) {
			return h.API.ListCompanies(ctx, 0, listing.MaxSize)
		})
		if err != nil {
			data.CompanyErr = err
			return nil
		}
		data.Companies = p.Content
		return nil
	})
	if wiz.CompanyID != "" {
		g.Go(func() error {
			key := listKey(prefixFiscalYears, map[string]string{"companyId": wiz.CompanyID})
			p, err := fetch(ctx, &h.base, key, func(ctx context.Context) (*models.Page[models.FiscalYear], error) {
				return h.API.ListFiscalYears(ctx, wiz.CompanyID)
			})
			if err != nil {
				data.YearErr = err
				return nil
			}
			data.FiscalYears = p.Content
			return nil
		})
	}
	_ = g.Wait()
	logFetch("wizard companies", data.CompanyErr)
	logFetch("wizard fiscal years", data.YearErr)

	p := h.page(r, "New Financial Statement", "statements", data)
	if banner != nil {
		p.Banner = banner
	}
	h.render(w, status, "statement_new", p)
}

// CreateFiscalYear handles POST /statements/new/fiscal-year, the first
// wizard step. On success the browser moves to step two.
func (h *StatementHandler) CreateFiscalYear(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	form := forms.FiscalYearFormFrom(r.PostForm)
	fy, out := forms.Submit(ctx, h.Cache, forms.Action[*models.FiscalYear]{
		Validate: form.Validate,
		Mutate: func(ctx context.Context) (*models.FiscalYear, error) {
			return h.API.CreateFiscalYear(ctx, form.Request())
		},
		Fallback:   "Failed to create fiscal year. Please try again.",
		Invalidate: []string{prefixFiscalYears},
		Redirect: func(fy *models.FiscalYear) string {
			if fy == nil {
				return ""
			}
			return forms.StepTwoURL(form.CompanyID, fy.ID)
		},
	})
	if out.Failed() {
		if out.Err != nil {
			zap.L().Warn("handlers: create fiscal year", zap.Error(out.Err))
		}
		wiz := forms.StatementWizard{CompanyID: form.CompanyID, FiscalYear: form}
		h.renderWizard(w, r, statusFor(out), wiz, out.Errors, failure(out.Message))
		return
	}
	if fy == nil {
		h.actionFailed(w, r, "/statements/new?companyId="+form.CompanyID, "The fiscal year was created but the backend returned no id.")
		return
	}
	http.Redirect(w, r, out.Redirect, http.StatusSeeOther)
}

// Create handles POST /statements/new, the second wizard step.
func (h *StatementHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	form := forms.StatementFormFrom(r.PostForm)
	wiz := forms.StatementWizard{CompanyID: form.CompanyID, FiscalYearID: form.FiscalYearID, Statement: form}
	wiz.FiscalYear.CompanyID = form.CompanyID
	if !wiz.ShowStatementStep() {
		h.renderWizard(w, r, http.StatusUnprocessableEntity, wiz, nil, failure("Create or pick a fiscal year first."))
		return
	}

	stmt, out := forms.Submit(ctx, h.Cache, forms.Action[*models.FinancialStatement]{
		Validate: form.Validate,
		Mutate: func(ctx context.Context) (*models.FinancialStatement, error) {
			return h.API.CreateStatement(ctx, form.Request())
		},
		Fallback:   "Failed to create financial statement. Please try again.",
		Success:    "Financial statement created successfully.",
		Invalidate: []string{prefixStatements, prefixCompanies},
		Redirect: func(s *models.FinancialStatement) string {
			if s == nil {
				return "/statements"
			}
			return "/statements/" + s.ID + "/financial-data"
		},
	})
	if out.Failed() {
		if out.Err != nil {
			zap.L().Warn("handlers: create statement", zap.Error(out.Err))
		}
		h.renderWizard(w, r, statusFor(out), wiz, out.Errors, failure(out.Message))
		return
	}
	if stmt != nil {
		zap.L().Info("handlers: statement created", zap.String("id", stmt.ID))
	}
	p := h.page(r, "New Financial Statement", "statements", wizardData{Wizard: wiz})
	h.render(w, http.StatusOK, "statement_new", redirectAfter(p, out.Message, out.Redirect, forms.RedirectDelay))
}

// ── Status / Delete ────────────────────────────────────────────

// UpdateStatus handles POST /statements/{id}/status.
func (h *StatementHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	status := strings.ToUpper(strings.TrimSpace(r.PostForm.Get("status")))
	_, out := forms.Submit(ctx, h.Cache, forms.Action[*models.FinancialStatement]{
		Validate: func() forms.Errors {
			for _, s := range statementStatuses {
				if s == status {
					return nil
				}
			}
			return forms.Errors{"status": "Status must be one of PENDING, PROCESSED, ANALYZED"}
		},
		Mutate: func(ctx context.Context) (*models.FinancialStatement, error) {
			return h.API.UpdateStatementStatus(ctx, id, status)
		},
		Fallback:   "Failed to update statement status. Please try again.",
		Invalidate: []string{prefixStatements},
	})
	if out.Failed() {
		if out.Err != nil {
			zap.L().Warn("handlers: update statement status", zap.String("id", id), zap.Error(out.Err))
		}
		msg := out.Message
		if e := out.Errors.Get("status"); e != "" {
			msg = e
		}
		h.actionFailed(w, r, "/statements/"+id, msg)
		return
	}
	http.Redirect(w, r, withNotice("/statements/"+id, "status-updated"), http.StatusSeeOther)
}

// Delete handles POST /statements/{id}/delete.
func (h *StatementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	_, out := forms.Submit(ctx, h.Cache, forms.Action[struct{}]{
		Mutate: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, h.API.DeleteStatement(ctx, id)
		},
		Fallback:   "Failed to delete financial statement. Please try again.",
		Invalidate: []string{prefixStatements, prefixFinancial, prefixAnalysis, prefixDocuments, prefixRisk, prefixCompanies},
	})
	if out.Failed() {
		zap.L().Warn("handlers: delete statement", zap.String("id", id), zap.Error(out.Err))
		h.actionFailed(w, r, "/statements/"+id, out.Message)
		return
	}
	http.Redirect(w, r, withNotice("/statements", "statement-deleted"), http.StatusSeeOther)
}

// ── Financial data ─────────────────────────────────────────────

type financialData struct {
	ID        string
	Statement *models.FinancialStatement
	NotFound  bool
	Err       error
	Form      forms.FinancialDataForm
	Groups    []forms.FieldGroup
	Errors    forms.Errors
}

// FinancialData handles GET /statements/{id}/financial-data. A statement
// without figures shows an empty form.
func (h *StatementHandler) FinancialData(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	data := financialData{ID: id, Groups: forms.FinancialGroups(), Form: forms.FinancialDataFormOf(id, nil)}

	stmt, err := h.statement(ctx, id)
	switch {
	case isNotFound(err):
		data.NotFound = true
		h.render(w, http.StatusNotFound, "financial_data", h.page(r, "Statement not found", "statements", data))
		return
	case err != nil:
		logFetch("statement", err)
		data.Err = err
		h.render(w, http.StatusOK, "financial_data", h.page(r, "Financial Data", "statements", data))
		return
	}
	data.Statement = stmt

	if stmt.HasFinancialData() {
		fd, err := fetch(ctx, &h.base, detailKey(prefixFinancial, id), func(ctx context.Context) (*models.FinancialData, error) {
			return h.API.GetFinancialData(ctx, id)
		})
		switch {
		case isNotFound(err):
		case err != nil:
			logFetch("financial data", err)
			data.Err = err
		default:
			data.Form = forms.FinancialDataFormOf(id, fd)
		}
	}

	h.render(w, http.StatusOK, "financial_data", h.page(r, "Financial Data", "statements", data))
}

// SaveFinancialData handles POST /statements/{id}/financial-data. Figures
// are created on first save and updated afterwards; derived values are
// recomputed by the backend.
func (h *StatementHandler) SaveFinancialData(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	form := forms.FinancialDataFormFrom(r.PostForm)
	form.StatementID = id
	parsed, errs := form.Parse()

	saved, out := forms.Submit(ctx, h.Cache, forms.Action[*models.FinancialData]{
		Validate: func() forms.Errors { return errs },
		Mutate: func(ctx context.Context) (*models.FinancialData, error) {
			if parsed.ID == "" {
				return h.API.CreateFinancialData(ctx, parsed)
			}
			return h.API.UpdateFinancialData(ctx, parsed.ID, parsed)
		},
		Fallback:   "Failed to save financial data. Please try again.",
		Success:    "Financial data saved successfully.",
		Invalidate: []string{prefixFinancial, prefixStatements, prefixAnalysis},
	})

	data := financialData{ID: id, Form: form, Groups: forms.FinancialGroups(), Errors: out.Errors}
	if stmt, err := h.statement(ctx, id); err == nil {
		data.Statement = stmt
	}
	p := h.page(r, "Financial Data", "statements", data)
	if out.Failed() {
		if out.Err != nil {
			zap.L().Warn("handlers: save financial data", zap.String("statement", id), zap.Error(out.Err))
		}
		p.Banner = failure(out.Message)
		h.render(w, statusFor(out), "financial_data", p)
		return
	}

	if saved != nil && saved.ID != "" {
		if derived, err := h.API.CalculateDerived(ctx, saved.ID); err != nil {
			zap.L().Warn("handlers: calculate derived values", zap.String("id", saved.ID), zap.Error(err))
		} else if derived != nil {
			saved = derived
		}
		data.Form = forms.FinancialDataFormOf(id, saved)
		p.Data = data
	}
	p.Banner = &views.Banner{Kind: "success", Message: out.Message, Link: "/statements/" + id + "/analysis", LinkText: "View analysis"}
	h.render(w, http.StatusOK, "financial_data", p)
}

// ── Analysis ───────────────────────────────────────────────────

type section[T any] struct {
	Value *T
	Err   error
}

type ratioRow struct {
	Label string
	Value string
}

type analysisData struct {
	ID          string
	Statement   *models.FinancialStatement
	NotFound    bool
	Err         error
	NoData      bool // no figures yet: show the call to action only
	ZScore      scorecard.Card
	MScore      scorecard.Card
	FScore      scorecard.Card
	Prediction  scorecard.Card
	Ratios      []ratioRow
	Predictions []models.MLPrediction
	Errs        map[string]error
}

// Analysis handles GET /statements/{id}/analysis. The score artifacts,
// ratios and predictions load in parallel; each card owns its error.
func (h *StatementHandler) Analysis(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	data := analysisData{ID: id, Errs: map[string]error{}}

	stmt, err := h.statement(ctx, id)
	switch {
	case isNotFound(err):
		data.NotFound = true
		h.render(w, http.StatusNotFound, "analysis", h.page(r, "Statement not found", "statements", data))
		return
	case err != nil:
		logFetch("statement", err)
		data.Err = err
		h.render(w, http.StatusOK, "analysis", h.page(r, "Financial Analysis", "statements", data))
		return
	}
	data.Statement = stmt
	if !stmt.HasFinancialData() {
		data.NoData = true
		h.render(w, http.StatusOK, "analysis", h.page(r, "Financial Analysis", "statements", data))
		return
	}

	var (
		z     section[models.ZScore]
		m     section[models.MScore]
		f     section[models.FScore]
		rt    section[models.FinancialRatios]
		preds section[models.Page[models.MLPrediction]]
	)
	var g errgroup.Group
	g.Go(func() error {
		z.Value, z.Err = fetch(ctx, &h.base, detailKey(prefixAnalysis, id, "z-score"), func(ctx context.Context) (*models.ZScore, error) {
			return h.API.GetZScore(ctx, id)
		})
		return nil
	})
	g.Go(func() error {
		m.Value, m.Err = fetch(ctx, &h.base, detailKey(prefixAnalysis, id, "m-score"), func(ctx context.Context) (*models.MScore, error) {
			return h.API.GetMScore(ctx, id)
		})
		return nil
	})
	g.Go(func() error {
		f.Value, f.Err = fetch(ctx, &h.base, detailKey(prefixAnalysis, id, "f-score"), func(ctx context.Context) (*models.FScore, error) {
			return h.API.GetFScore(ctx, id)
		})
		return nil
	})
	g.Go(func() error {
		rt.Value, rt.Err = fetch(ctx, &h.base, detailKey(prefixAnalysis, id, "ratios"), func(ctx context.Context) (*models.FinancialRatios, error) {
			return h.API.GetRatios(ctx, id)
		})
		return nil
	})
	g.Go(func() error {
		preds.Value, preds.Err = fetch(ctx, &h.base, listKey(prefixML, map[string]string{"statementId": id}), func(ctx context.Context) (*models.Page[models.MLPrediction], error) {
			return h.API.ListPredictions(ctx, id)
		})
		return nil
	})
	_ = g.Wait()

	// A missing artifact is not an error: the card shows "Not available".
	data.ZScore = scorecard.ZScoreCard(sectionValue(data.Errs, "zScore", z))
	data.MScore = scorecard.MScoreCard(sectionValue(data.Errs, "mScore", m))
	data.FScore = scorecard.FScoreCard(sectionValue(data.Errs, "fScore", f))
	data.Ratios = ratioRows(sectionValue(data.Errs, "ratios", rt))
	var latest *models.MLPrediction
	if p := sectionValue(data.Errs, "predictions", preds); p != nil && len(p.Content) > 0 {
		data.Predictions = p.Content
		latest = &p.Content[0]
	}
	data.Prediction = scorecard.PredictionCard(latest)

	h.render(w, http.StatusOK, "analysis", h.page(r, "Financial Analysis", "statements", data))
}

// sectionValue records a real failure under name and returns the payload,
// nil when absent.
func sectionValue[T any](errs map[string]error, name string, s section[T]) *T {
	if s.Err != nil {
		if !isNotFound(s.Err) {
			logFetch("analysis "+name, s.Err)
			errs[name] = s.Err
		}
		return nil
	}
	return s.Value
}

func ratioRows(r *models.FinancialRatios) []ratioRow {
	if r == nil {
		return nil
	}
	rows := []struct {
		label string
		v     *float64
	}{
		{"Current Ratio", r.CurrentRatio},
		{"Quick Ratio", r.QuickRatio},
		{"Cash Ratio", r.CashRatio},
		{"Gross Margin", r.GrossMargin},
		{"Operating Margin", r.OperatingMargin},
		{"Net Profit Margin", r.NetProfitMargin},
		{"Return on Assets", r.ReturnOnAssets},
		{"Return on Equity", r.ReturnOnEquity},
		{"Debt to Equity", r.DebtToEquity},
		{"Debt Ratio", r.DebtRatio},
		{"Interest Coverage", r.InterestCoverage},
		{"Asset Turnover", r.AssetTurnover},
		{"Inventory Turnover", r.InventoryTurnover},
		{"Receivables Turnover", r.ReceivablesTurnover},
	}
	out := make([]ratioRow, len(rows))
	for i, row := range rows {
		out[i] = ratioRow{Label: row.label, Value: scorecard.Fixed(row.v, 4)}
	}
	return out
}

// ── Analysis actions ───────────────────────────────────────────

// Calculate handles POST /statements/{id}/calculate.
func (h *StatementHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.runAction(w, r, id, "calculate analysis", "Failed to calculate financial analysis. Please try again.",
		[]string{prefixAnalysis, prefixStatements},
		func(ctx context.Context) (string, error) {
			_, err := h.API.CalculateAnalysis(ctx, id)
			return withNotice("/statements/"+id+"/analysis", "analysis-done"), err
		})
}

// Predict handles POST /statements/{id}/predict.
func (h *StatementHandler) Predict(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.runAction(w, r, id, "run prediction", "Failed to run ML prediction. Please try again.",
		[]string{prefixML},
		func(ctx context.Context) (string, error) {
			_, err := h.API.Predict(ctx, id)
			return withNotice("/statements/"+id+"/analysis", "prediction-done"), err
		})
}

// Assess handles POST /statements/{id}/assess and shows the new assessment.
func (h *StatementHandler) Assess(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.runAction(w, r, id, "run risk assessment", "Failed to run risk assessment. Please try again.",
		[]string{prefixRisk, prefixAlerts, prefixCompanies},
		func(ctx context.Context) (string, error) {
			a, err := h.API.Assess(ctx, id)
			if err != nil || a == nil || a.ID == "" {
				return "/risk-assessments", err
			}
			return withNotice("/risk-assessments/"+a.ID, "assessment-done"), nil
		})
}

func (h *StatementHandler) runAction(w http.ResponseWriter, r *http.Request, id, what, fallback string, invalidate []string, fn func(ctx context.Context) (string, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	target, out := forms.Submit(ctx, h.Cache, forms.Action[string]{
		Mutate:     fn,
		Fallback:   fallback,
		Invalidate: invalidate,
	})
	if out.Failed() {
		zap.L().Warn("handlers: "+what, zap.String("statement", id), zap.Error(out.Err))
		h.actionFailed(w, r, "/statements/"+id+"/analysis", out.Message)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
