package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraud-dashboard/internal/ctxkeys"
	"fraud-dashboard/internal/scorecard"
)

func analyzedStatement(b *backend) {
	b.reply("GET /financial-statements/s1", http.StatusOK,
		`{"data":{"id":"s1","companyId":"c1","companyName":"Acme","statementType":"ANNUAL","fiscalYear":2023,"status":"ANALYZED"}}`)
}

func TestAnalysisMissingArtifactIsNotAvailable(t *testing.T) {
	app := newTestApp(t)
	analyzedStatement(app.backend)
	app.backend.reply("GET /financial-analysis/z-score/statement/s1", http.StatusOK, `{"data":null}`)
	app.backend.reply("GET /financial-analysis/f-score/statement/s1", http.StatusOK,
		`{"data":{"statementId":"s1","fScore":7,"positiveNetIncome":true,"noNewShares":false,"financialStrength":"STRONG"}}`)

	rec := app.do(t, ctxkeys.RoleViewer, http.MethodGet, "/statements/s1/analysis", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)

	z := doc.Find("#z-score")
	assert.Equal(t, scorecard.NotAvailable, strings.TrimSpace(z.Find(".card-subtitle").Text()))
	assert.Zero(t, z.Find("table.components").Length())
	assert.Zero(t, z.Find(".error-panel").Length())

	f := doc.Find("#f-score")
	assert.Contains(t, f.Find(".score-value").Text(), "7")
	assert.Equal(t, 1, f.Find("td.check-pass").Length())
	assert.Equal(t, 1, f.Find("td.check-fail").Length())
	assert.Equal(t, 7, f.Find("td.check-unknown").Length())

	assert.NotContains(t, rec.Body.String(), "NaN")
	// Ratios and predictions are absent too, so no section reports a failure.
	assert.Zero(t, doc.Find(".error-panel").Length())
}

func TestAnalysisCardFailureIsScoped(t *testing.T) {
	app := newTestApp(t)
	analyzedStatement(app.backend)
	app.backend.reply("GET /financial-analysis/m-score/statement/s1", http.StatusBadGateway, `{"message":"upstream"}`)
	app.backend.reply("GET /financial-analysis/z-score/statement/s1", http.StatusOK,
		`{"data":{"statementId":"s1","zScore":1.2,"riskCategory":"DISTRESS"}}`)

	rec := app.do(t, ctxkeys.RoleViewer, http.MethodGet, "/statements/s1/analysis", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)
	assert.Equal(t, 1, doc.Find("#m-score .error-panel").Length())
	assert.Equal(t, 1, doc.Find(".error-panel").Length())
	assert.Equal(t, "1.20", strings.TrimSpace(doc.Find("#z-score .score-value").Text()))
}

func TestAnalysisWithoutFiguresSkipsScores(t *testing.T) {
	app := newTestApp(t)
	app.backend.reply("GET /financial-statements/s1", http.StatusOK,
		`{"data":{"id":"s1","companyId":"c1","statementType":"ANNUAL","status":"PENDING"}}`)

	rec := app.do(t, ctxkeys.RoleAnalyst, http.MethodGet, "/statements/s1/analysis", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)
	cta := doc.Find(".no-financial-data")
	require.Equal(t, 1, cta.Length())
	assert.Equal(t, 1, cta.Find(`a[href="/statements/s1/financial-data"]`).Length())
	assert.Zero(t, doc.Find(".score-card").Length())
	assert.Zero(t, app.backend.count("GET /financial-analysis/z-score/statement/s1"))
}

func TestStatementNotFound(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, ctxkeys.RoleViewer, http.MethodGet, "/statements/missing", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	doc := parseHTML(t, rec)
	assert.Equal(t, 1, doc.Find(".not-found").Length())
	assert.Zero(t, doc.Find(".alert-danger").Length())
}

func TestCalculateRedirectsToAnalysis(t *testing.T) {
	app := newTestApp(t)
	app.backend.reply("POST /financial-analysis/calculate/s1", http.StatusOK, `{"data":{"statementId":"s1"}}`)

	rec := app.do(t, ctxkeys.RoleAnalyst, http.MethodPost, "/statements/s1/calculate", url.Values{})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/statements/s1/analysis?notice=analysis-done", rec.Header().Get("Location"))
	assert.Equal(t, 1, app.backend.count("POST /financial-analysis/calculate/s1"))
}

func TestCalculateFailureShowsServerMessage(t *testing.T) {
	app := newTestApp(t)
	app.backend.reply("POST /financial-analysis/calculate/s1", http.StatusBadRequest, `{"message":"Financial data missing"}`)

	rec := app.do(t, ctxkeys.RoleAnalyst, http.MethodPost, "/statements/s1/calculate", url.Values{})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	doc := parseHTML(t, rec)
	banner := doc.Find(".alert-danger")
	assert.Contains(t, banner.Text(), "Financial data missing")
	link, _ := banner.Find("a").Attr("href")
	assert.Equal(t, "/statements/s1/analysis", link)
}

func TestAssessRedirectsToNewAssessment(t *testing.T) {
	app := newTestApp(t)
	app.backend.reply("POST /risk-assessments/assess/s1", http.StatusOK, `{"data":{"id":"r9","statementId":"s1"}}`)

	rec := app.do(t, ctxkeys.RoleAnalyst, http.MethodPost, "/statements/s1/assess", url.Values{})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/risk-assessments/r9?notice=assessment-done", rec.Header().Get("Location"))
}

func TestUpdateStatusSendsUppercase(t *testing.T) {
	app := newTestApp(t)
	app.backend.reply("PUT /financial-statements/s1/status", http.StatusOK, `{"data":{"id":"s1","status":"PROCESSED"}}`)

	rec := app.do(t, ctxkeys.RoleAnalyst, http.MethodPost, "/statements/s1/status", url.Values{"status": {"processed"}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/statements/s1?notice=status-updated", rec.Header().Get("Location"))

	var sent map[string]string
	require.NoError(t, json.Unmarshal(app.backend.body("PUT /financial-statements/s1/status"), &sent))
	assert.Equal(t, "PROCESSED", sent["status"])
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, ctxkeys.RoleAnalyst, http.MethodPost, "/statements/s1/status", url.Values{"status": {"ARCHIVED"}})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Status must be one of")
	assert.Zero(t, app.backend.count("PUT /financial-statements/s1/status"))
}

func TestCreateFiscalYearWithoutPayload(t *testing.T) {
	app := newTestApp(t)
	app.backend.reply("POST /fiscal-years", http.StatusCreated, `{"data":null}`)

	rec := app.do(t, ctxkeys.RoleAnalyst, http.MethodPost, "/statements/new/fiscal-year", url.Values{
		"companyId": {"c1"},
		"year":      {"2024"},
		"startDate": {"2024-01-01"},
		"endDate":   {"2024-12-31"},
	})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, 1, app.backend.count("POST /fiscal-years"))
	doc := parseHTML(t, rec)
	assert.Contains(t, doc.Find(".alert-danger").Text(), "returned no id")
}
