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
	"fraud-dashboard/internal/views"
)

// CompanyHandler serves the company pages.
type CompanyHandler struct {
	base
}

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(d Deps) *CompanyHandler {
	return &CompanyHandler{base{d}}
}

// ── List ───────────────────────────────────────────────────────

type companyListData struct {
	State      listing.State
	Rows       []models.Company
	Total      int
	TotalPages int
	Err        error
}

// Whitelist of client-side sort columns.
var companySorts = map[string]listing.Key[string, models.Company]{
	"name":        func(c models.Company) (string, bool) { return strings.ToLower(c.Name), c.Name != "" },
	"stockCode":   func(c models.Company) (string, bool) { return c.StockCode, c.StockCode != "" },
	"sector":      func(c models.Company) (string, bool) { return c.Sector, c.Sector != "" },
	"listingDate": listingDate,
}

func listingDate(c models.Company) (string, bool) {
	if c.ListingDate == nil {
		return "", false
	}
	return *c.ListingDate, true
}

// List handles GET /companies. Search and sorting apply to the current page.
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	st := listing.Parse(r.URL.Query())
	data := companyListData{State: st}

	key := listKey(prefixCompanies, pageParams(st.Page, st.Size))
	page, err := fetch(ctx, &h.base, key, func(ctx context.Context) (*models.Page[models.Company], error) {
		return h.API.ListCompanies(ctx, st.Page, st.Size)
	})
	if err != nil {
		logFetch("companies", err)
		data.Err = err
	} else {
		data.Rows = listing.FilterPage(page.Content, st.Search, func(c models.Company) []string {
			return []string{c.Name, c.StockCode, c.Sector}
		})
		data.Total, data.TotalPages = page.TotalElements, page.TotalPages
		if k, ok := companySorts[st.SortBy]; ok {
			listing.Sort(data.Rows, k, st.Desc, listing.NilsLast)
		}
	}

	h.render(w, http.StatusOK, "companies", h.page(r, "Companies", "companies", data))
}

// ── Detail ─────────────────────────────────────────────────────

type companyDetailData struct {
	ID          string
	Company     *models.Company
	NotFound    bool
	Err         error
	Risk        *models.CompanyRisk
	RiskErr     error
	Statements  []models.FinancialStatement
	StmtErr     error
	Assessments []models.RiskAssessment
	AssessErr   error
}

// Detail handles GET /companies/{id}. The company is loaded first; its
// risk, statements and assessments load in parallel, each with its own
// error.
func (h *CompanyHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	data := companyDetailData{ID: id}

	company, err := h.company(ctx, id)
	switch {
	case isNotFound(err):
		data.NotFound = true
		h.render(w, http.StatusNotFound, "company", h.page(r, "Company not found", "companies", data))
		return
	case err != nil:
		logFetch("company", err)
		data.Err = err
		h.render(w, http.StatusOK, "company", h.page(r, "Company", "companies", data))
		return
	}
	data.Company = company

	var g errgroup.Group
	g.Go(func() error {
		data.Risk, data.RiskErr = fetch(ctx, &h.base, detailKey(prefixCompanies, id, "risk"), func(ctx context.Context) (*models.CompanyRisk, error) {
			return h.API.GetCompanyRisk(ctx, id)
		})
		if isNotFound(data.RiskErr) {
			data.Risk, data.RiskErr = nil, nil
		}
		return nil
	})
	g.Go(func() error {
		key := listKey(prefixStatements, pageParams(0, 50, "companyId", id))
		p, err := fetch(ctx, &h.base, key, func(ctx context.Context) (*models.Page[models.FinancialStatement], error) {
			return h.API.ListStatements(ctx, models.StatementFilter{CompanyID: id, Size: 50})
		})
		if err != nil {
			data.StmtErr = err
			return nil
		}
		data.Statements = p.Content
		return nil
	})
	g.Go(func() error {
		key := listKey(prefixRisk, map[string]string{"companyId": id})
		p, err := fetch(ctx, &h.base, key, func(ctx context.Context) (*models.Page[models.RiskAssessment], error) {
			return h.API.ListCompanyAssessments(ctx, id)
		})
		if err != nil {
			data.AssessErr = err
			return nil
		}
		data.Assessments = p.Content
		return nil
	})
	_ = g.Wait()
	logFetch("company risk", data.RiskErr)
	logFetch("company statements", data.StmtErr)
	logFetch("company assessments", data.AssessErr)

	h.render(w, http.StatusOK, "company", h.page(r, company.Name, "companies", data))
}

func (h *CompanyHandler) company(ctx context.Context, id string) (*models.Company, error) {
	return fetch(ctx, &h.base, detailKey(prefixCompanies, id), func(ctx context.Context) (*models.Company, error) {
		return h.API.GetCompany(ctx, id)
	})
}

// ── Create / Edit ──────────────────────────────────────────────

type companyFormData struct {
	ID       string
	Editing  bool
	Form     forms.CompanyForm
	Errors   forms.Errors
	Sectors  []string
	NotFound bool
	Err      error
}

func (d companyFormData) Action() string {
	if d.Editing {
		return "/companies/" + d.ID + "/edit"
	}
	return "/companies/new"
}

// New handles GET /companies/new.
func (h *CompanyHandler) New(w http.ResponseWriter, r *http.Request) {
	data := companyFormData{Sectors: forms.Sectors}
	h.render(w, http.StatusOK, "company_form", h.page(r, "New Company", "companies", data))
}

// Create handles POST /companies/new. On success the new company is shown
// after a short delay.
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	form := forms.CompanyFormFrom(r.PostForm)
	company, out := forms.Submit(ctx, h.Cache, forms.Action[*models.Company]{
		Validate: form.Validate,
		Mutate: func(ctx context.Context) (*models.Company, error) {
			return h.API.CreateCompany(ctx, form.Request())
		},
		Fallback:   "Failed to create company. Please try again.",
		Success:    "Company created successfully.",
		Invalidate: []string{prefixCompanies},
		Redirect: func(c *models.Company) string {
			if c == nil {
				return "/companies"
			}
			return "/companies/" + c.ID
		},
	})

	data := companyFormData{Form: form, Errors: out.Errors, Sectors: forms.Sectors}
	p := h.page(r, "New Company", "companies", data)
	if out.Failed() {
		if out.Err != nil {
			zap.L().Warn("handlers: create company", zap.Error(out.Err))
		}
		p.Banner = failure(out.Message)
		h.render(w, statusFor(out), "company_form", p)
		return
	}
	if company != nil {
		zap.L().Info("handlers: company created", zap.String("id", company.ID))
	}
	h.render(w, http.StatusOK, "company_form", redirectAfter(p, out.Message, out.Redirect, forms.RedirectDelay))
}

// Edit handles GET /companies/{id}/edit.
func (h *CompanyHandler) Edit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	data := companyFormData{ID: id, Editing: true, Sectors: forms.Sectors}
	company, err := h.company(ctx, id)
	switch {
	case isNotFound(err):
		data.NotFound = true
		h.render(w, http.StatusNotFound, "company_form", h.page(r, "Company not found", "companies", data))
		return
	case err != nil:
		logFetch("company", err)
		data.Err = err
	default:
		data.Form = forms.CompanyFormOf(company)
	}
	h.render(w, http.StatusOK, "company_form", h.page(r, "Edit Company", "companies", data))
}

// Update handles POST /companies/{id}/edit. The form stays on screen with
// a success banner.
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	form := forms.CompanyFormFrom(r.PostForm)
	_, out := forms.Submit(ctx, h.Cache, forms.Action[*models.Company]{
		Validate: form.Validate,
		Mutate: func(ctx context.Context) (*models.Company, error) {
			return h.API.UpdateCompany(ctx, id, form.Request())
		},
		Fallback:   "Failed to update company. Please try again.",
		Success:    "Company updated successfully.",
		Invalidate: []string{prefixCompanies, prefixStatements, prefixRisk},
	})

	data := companyFormData{ID: id, Editing: true, Form: form, Errors: out.Errors, Sectors: forms.Sectors}
	p := h.page(r, "Edit Company", "companies", data)
	if out.Failed() {
		if out.Err != nil {
			zap.L().Warn("handlers: update company", zap.String("id", id), zap.Error(out.Err))
		}
		p.Banner = failure(out.Message)
		h.render(w, statusFor(out), "company_form", p)
		return
	}
	p.Banner = &views.Banner{Kind: "success", Message: out.Message, Link: "/companies/" + id, LinkText: "Back to company"}
	h.render(w, http.StatusOK, "company_form", p)
}

// ── Delete ─────────────────────────────────────────────────────

// Delete handles POST /companies/{id}/delete.
func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	_, out := forms.Submit(ctx, h.Cache, forms.Action[struct{}]{
		Mutate: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, h.API.DeleteCompany(ctx, id)
		},
		Fallback:   "Failed to delete company. Please try again.",
		Invalidate: []string{prefixCompanies, prefixStatements, prefixDocuments, prefixRisk, prefixAlerts},
	})
	if out.Failed() {
		zap.L().Warn("handlers: delete company", zap.String("id", id), zap.Error(out.Err))
		h.actionFailed(w, r, "/companies/"+id, out.Message)
		return
	}
	http.Redirect(w, r, withNotice("/companies", "company-deleted"), http.StatusSeeOther)
}
