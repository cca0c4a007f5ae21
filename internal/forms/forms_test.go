package forms

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraud-dashboard/internal/models"
	"fraud-dashboard/internal/riskapi"
)

func validCompany() CompanyForm {
	return CompanyForm{Name: "Acme Holdings", StockCode: "ACME1", Sector: "Finance"}
}

func TestCompanyFormValid(t *testing.T) {
	assert.Empty(t, validCompany().Validate())
}

func TestCompanyFormRejectsNonAlphanumericStockCode(t *testing.T) {
	f := validCompany()
	f.StockCode = "AB-12"
	errs := f.Validate()
	require.Contains(t, errs, "stockCode")
	assert.Equal(t, "Stock code must contain only letters and digits", errs["stockCode"])
}

func TestCompanyFormRules(t *testing.T) {
	f := CompanyForm{
		Name:        "A",
		StockCode:   "ABCDEFGHIJK",
		ListingDate: "12/01/2020",
		Description: strings.Repeat("x", 1001),
	}
	errs := f.Validate()
	assert.Equal(t, "Company name must be at least 2 characters", errs["name"])
	assert.Equal(t, "Stock code must be at most 10 characters", errs["stockCode"])
	assert.Equal(t, "Sector is required", errs["sector"])
	assert.Equal(t, "Listing date must be a date (YYYY-MM-DD)", errs["listingDate"])
	assert.Contains(t, errs, "description")
}

func TestCompanyFormFromNormalizes(t *testing.T) {
	f := CompanyFormFrom(url.Values{"name": {"  Acme "}, "stockCode": {"acm"}, "sector": {"Energy"}})
	assert.Equal(t, "Acme", f.Name)
	assert.Equal(t, "ACM", f.StockCode)

	req := f.Request()
	assert.Nil(t, req.ListingDate)
	assert.Nil(t, req.Description)
}

func TestStatementFormPeriodRequiredForQuarterly(t *testing.T) {
	f := StatementForm{CompanyID: "c", FiscalYearID: "fy", StatementType: models.StatementQuarterly}
	assert.Equal(t, "Period is required", f.Validate()["period"])

	f.Period = "Q2"
	assert.Empty(t, f.Validate())

	f = StatementForm{CompanyID: "c", FiscalYearID: "fy", StatementType: models.StatementAnnual}
	assert.Empty(t, f.Validate())

	f.StatementType = "MONTHLY"
	assert.Equal(t, "Statement type must be one of ANNUAL, QUARTERLY, INTERIM", f.Validate()["statementType"])
}

func TestFiscalYearForm(t *testing.T) {
	f := FiscalYearForm{CompanyID: "c", Year: "2024", StartDate: "2024-01-01", EndDate: "2024-12-31"}
	assert.Empty(t, f.Validate())
	assert.Equal(t, 2024, f.Request().Year)

	f.EndDate = "2023-12-31"
	assert.Equal(t, "End date must be after start date", f.Validate()["endDate"])

	f.Year = "24"
	assert.Contains(t, f.Validate(), "year")
}

func TestWizardGatesStatementStep(t *testing.T) {
	w := WizardFrom(url.Values{"companyId": {"c1"}})
	assert.Equal(t, 1, w.Step())
	assert.False(t, w.ShowStatementStep())

	w = WizardFrom(url.Values{"companyId": {"c1"}, "fiscalYearId": {"fy1"}})
	assert.Equal(t, 2, w.Step())
	assert.Equal(t, "fy1", w.Statement.FiscalYearID)
	assert.Equal(t, "/statements/new?companyId=c1&fiscalYearId=fy1", StepTwoURL("c1", "fy1"))
}

func TestFinancialDataParse(t *testing.T) {
	f := FinancialDataFormFrom(url.Values{
		"statementId": {"s1"},
		"revenue":     {"1,250,000.50"},
		"netIncome":   {"-42"},
		"cash":        {""},
		"marketCap":   {"lots"},
		"unknown":     {"5"},
	})
	data, errs := f.Parse()

	assert.Equal(t, map[string]string{"marketCap": "Market Cap must be a number"}, map[string]string(errs))
	require.NotNil(t, data.Revenue)
	assert.Equal(t, 1250000.5, *data.Revenue)
	require.NotNil(t, data.NetIncome)
	assert.Equal(t, -42.0, *data.NetIncome)
	assert.Nil(t, data.Cash, "empty input is null, never zero")
	assert.Nil(t, data.TotalAssets)
	assert.Equal(t, "s1", data.StatementID)
}

func TestFinancialDataFormOfRoundTrip(t *testing.T) {
	rev := 1000.25
	f := FinancialDataFormOf("s1", &models.FinancialData{ID: "fd1", Revenue: &rev})
	assert.Equal(t, "1000.25", f.Value("revenue"))
	assert.Empty(t, f.Value("cash"))

	data, errs := f.Parse()
	assert.Empty(t, errs)
	assert.Equal(t, "fd1", data.ID)
	assert.Equal(t, rev, *data.Revenue)
}

func TestFinancialGroupsCoverEveryNumericField(t *testing.T) {
	seen := map[string]bool{}
	for _, g := range FinancialGroups() {
		for _, f := range g.Fields {
			_, known := numericFields[f.Name]
			assert.True(t, known, f.Name)
			seen[f.Name] = true
		}
	}
	assert.Len(t, seen, len(numericFields))
	assert.Equal(t, "Property Plant Equipment", label("propertyPlantEquipment"))
}

func TestAlertResolveForm(t *testing.T) {
	short := AlertResolveFormFrom("a1", url.Values{"resolutionNotes": {"short"}})
	assert.Equal(t, "Resolution notes must be at least 10 characters", short.Validate()["resolutionNotes"])

	long := AlertResolveFormFrom("a1", url.Values{"resolutionNotes": {strings.Repeat("n", 1001)}})
	assert.Contains(t, long.Validate(), "resolutionNotes")

	ok := AlertResolveFormFrom("a1", url.Values{"resolutionNotes": {strings.Repeat("n", 500)}})
	assert.Empty(t, ok.Validate())
}

func TestNotificationSettingsForm(t *testing.T) {
	f := NotificationSettingsFormFrom(url.Values{
		"inAppEnabled":      {"on"},
		"severity.critical": {"on"},
		"type.mScore":       {"on"},
		"emailFrequency":    {"weekly"},
	})
	assert.Empty(t, f.Validate())
	assert.True(t, f.Prefs.InAppEnabled)
	assert.False(t, f.Prefs.EmailEnabled)
	assert.True(t, f.Prefs.Severities.Critical)
	assert.False(t, f.Prefs.Severities.High)
	assert.True(t, f.Prefs.AlertTypes.MScore)
	assert.Equal(t, models.FrequencyWeekly, f.Prefs.EmailFrequency)

	f.EmailFrequency = "HOURLY"
	assert.Contains(t, f.Validate(), "emailFrequency")
}

type recordingCache struct{ prefixes []string }

func (c *recordingCache) Invalidate(prefixes ...string) int {
	c.prefixes = append(c.prefixes, prefixes...)
	return len(prefixes)
}

func TestSubmitInvalidNeverCallsBackend(t *testing.T) {
	cache := &recordingCache{}
	calls := 0
	form := AlertResolveForm{AlertID: "a1", ResolutionNotes: "12345"}

	_, out := Submit(context.Background(), cache, Action[*models.RiskAlert]{
		Validate: form.Validate,
		Mutate: func(context.Context) (*models.RiskAlert, error) {
			calls++
			return nil, nil
		},
		Invalidate: []string{"alerts:"},
	})
	assert.Zero(t, calls)
	assert.True(t, out.Failed())
	assert.Contains(t, out.Errors, "resolutionNotes")
	assert.Empty(t, cache.prefixes)
}

func TestSubmitSendsExactNotesAndInvalidates(t *testing.T) {
	cache := &recordingCache{}
	notes := strings.Repeat("Reviewed. ", 50)
	form := AlertResolveForm{AlertID: "a1", ResolutionNotes: notes}
	var sent string

	alert, out := Submit(context.Background(), cache, Action[*models.RiskAlert]{
		Validate: form.Validate,
		Mutate: func(context.Context) (*models.RiskAlert, error) {
			sent = form.ResolutionNotes
			return &models.RiskAlert{ID: "a1", IsResolved: true}, nil
		},
		Success:    "Alert resolved successfully.",
		Invalidate: []string{"alerts:", "assessments:"},
	})
	require.True(t, out.Success)
	assert.Equal(t, notes, sent)
	assert.True(t, alert.IsResolved)
	assert.Equal(t, "Alert resolved successfully.", out.Message)
	assert.Equal(t, []string{"alerts:", "assessments:"}, cache.prefixes)
}

func TestSubmitReportsServerMessageOrFallback(t *testing.T) {
	cache := &recordingCache{}
	_, out := Submit(context.Background(), cache, Action[*models.Company]{
		Mutate: func(context.Context) (*models.Company, error) {
			return nil, &riskapi.APIError{StatusCode: 409, Message: "Stock code already exists"}
		},
		Fallback:   "Failed to create company.",
		Invalidate: []string{"companies:"},
	})
	assert.True(t, out.Failed())
	assert.Equal(t, "Stock code already exists", out.Message)
	assert.Empty(t, cache.prefixes)

	_, out = Submit(context.Background(), cache, Action[*models.Company]{
		Mutate: func(context.Context) (*models.Company, error) {
			return nil, errors.New("dial tcp: connection refused")
		},
		Fallback: "Failed to create company.",
	})
	assert.Equal(t, "Failed to create company.", out.Message)
}

func TestSubmitRedirectForCreateFlows(t *testing.T) {
	_, out := Submit(context.Background(), nil, Action[*models.Company]{
		Mutate: func(context.Context) (*models.Company, error) {
			return &models.Company{ID: "c9"}, nil
		},
		Redirect: func(c *models.Company) string { return "/companies/" + c.ID },
	})
	assert.Equal(t, "/companies/c9", out.Redirect)
}
