package forms

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"fraud-dashboard/internal/models"
)

// ── Fiscal Year ────────────────────────────────────────────────

// FiscalYearForm is step one of the statement wizard.
type FiscalYearForm struct {
	CompanyID string `form:"companyId" validate:"required"`
	Year      string `form:"year" validate:"required,numeric,len=4"`
	StartDate string `form:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `form:"endDate" validate:"required,datetime=2006-01-02"`
}

var fiscalYearLabels = map[string]string{
	"companyId": "Company",
	"year":      "Fiscal year",
	"startDate": "Start date",
	"endDate":   "End date",
}

// FiscalYearFormFrom reads the form from a POST body.
func FiscalYearFormFrom(v url.Values) FiscalYearForm {
	return FiscalYearForm{
		CompanyID: strings.TrimSpace(v.Get("companyId")),
		Year:      strings.TrimSpace(v.Get("year")),
		StartDate: strings.TrimSpace(v.Get("startDate")),
		EndDate:   strings.TrimSpace(v.Get("endDate")),
	}
}

// Validate checks the form, including that the year ends after it starts.
func (f FiscalYearForm) Validate() Errors {
	errs := check(f, fiscalYearLabels)
	if errs.Get("startDate") == "" && errs.Get("endDate") == "" {
		start, _ := time.Parse(time.DateOnly, f.StartDate)
		end, _ := time.Parse(time.DateOnly, f.EndDate)
		if !end.After(start) {
			errs["endDate"] = "End date must be after start date"
		}
	}
	return errs
}

// Request converts a valid form into the backend body.
func (f FiscalYearForm) Request() models.FiscalYearRequest {
	year, _ := strconv.Atoi(f.Year)
	return models.FiscalYearRequest{
		CompanyID: f.CompanyID,
		Year:      year,
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
	}
}

// ── Statement ──────────────────────────────────────────────────

// StatementForm is step two of the statement wizard.
type StatementForm struct {
	CompanyID     string `form:"companyId" validate:"required"`
	FiscalYearID  string `form:"fiscalYearId" validate:"required"`
	StatementType string `form:"statementType" validate:"required,oneof=ANNUAL QUARTERLY INTERIM"`
	Period        string `form:"period" validate:"required_if=StatementType QUARTERLY,max=20"`
}

var statementLabels = map[string]string{
	"companyId":     "Company",
	"fiscalYearId":  "Fiscal year",
	"statementType": "Statement type",
	"period":        "Period",
}

// StatementTypes lists the accepted statement types in display order.
var StatementTypes = []string{models.StatementAnnual, models.StatementQuarterly, models.StatementInterim}

// StatementFormFrom reads the form from a POST body.
func StatementFormFrom(v url.Values) StatementForm {
	return StatementForm{
		CompanyID:     strings.TrimSpace(v.Get("companyId")),
		FiscalYearID:  strings.TrimSpace(v.Get("fiscalYearId")),
		StatementType: strings.ToUpper(strings.TrimSpace(v.Get("statementType"))),
		Period:        strings.TrimSpace(v.Get("period")),
	}
}

// Validate checks the form.
func (f StatementForm) Validate() Errors {
	return check(f, statementLabels)
}

// Request converts a valid form into the backend body.
func (f StatementForm) Request() models.StatementRequest {
	return models.StatementRequest{
		CompanyID:     f.CompanyID,
		FiscalYearID:  f.FiscalYearID,
		StatementType: f.StatementType,
		Period:        f.Period,
	}
}

// StatementWizard is the two-step statement creation flow. The statement
// step is only offered once the fiscal year step produced an id.
type StatementWizard struct {
	CompanyID    string
	FiscalYearID string
	FiscalYear   FiscalYearForm
	Statement    StatementForm
}

// WizardFrom restores the wizard position from the query string.
func WizardFrom(q url.Values) StatementWizard {
	w := StatementWizard{
		CompanyID:    strings.TrimSpace(q.Get("companyId")),
		FiscalYearID: strings.TrimSpace(q.Get("fiscalYearId")),
	}
	w.FiscalYear.CompanyID = w.CompanyID
	w.Statement = StatementForm{
		CompanyID:     w.CompanyID,
		FiscalYearID:  w.FiscalYearID,
		StatementType: models.StatementAnnual,
	}
	return w
}

// Step returns the visible step, 1 or 2.
func (w StatementWizard) Step() int {
	if w.ShowStatementStep() {
		return 2
	}
	return 1
}

// ShowStatementStep reports whether the statement type step is visible.
func (w StatementWizard) ShowStatementStep() bool {
	return w.CompanyID != "" && w.FiscalYearID != ""
}

// StepTwoURL is where step one sends the analyst once the fiscal year exists.
func StepTwoURL(companyID, fiscalYearID string) string {
	q := url.Values{"companyId": {companyID}, "fiscalYearId": {fiscalYearID}}
	return "/statements/new?" + q.Encode()
}
