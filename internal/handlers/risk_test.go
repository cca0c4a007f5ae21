package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"fraud-dashboard/internal/cron"
	"fraud-dashboard/internal/ctxkeys"
	"fraud-dashboard/internal/export"
	"fraud-dashboard/internal/models"
)

const assessmentR1 = `{"data":{"id":"r1","companyId":"c1","companyName":"Acme","statementId":"s1",
	"overallRiskScore":72.5,"riskLevel":"HIGH","zScoreRisk":80,"mScoreRisk":null,
	"assessmentSummary":"**Elevated** risk driven by the Z-Score."}}`

func TestRiskAssessmentNotFound(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, ctxkeys.RoleViewer, http.MethodGet, "/risk-assessments/missing", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	doc := parseHTML(t, rec)
	assert.Equal(t, 1, doc.Find(".not-found").Length())
	assert.Zero(t, doc.Find(".alert-danger").Length())
	assert.Zero(t, app.backend.count("GET /risk-assessments/missing/alerts"))
}

func TestRiskAssessmentOverview(t *testing.T) {
	app := newTestApp(t)
	app.backend.reply("GET /risk-assessments/r1", http.StatusOK, assessmentR1)
	app.backend.reply("GET /risk-assessments/r1/alerts", http.StatusOK,
		`{"content":[{"id":"a1","assessmentId":"r1","severity":"HIGH","alertType":"Z_SCORE","message":"Distress"}],"totalPages":1,"totalElements":1}`)

	rec := app.do(t, ctxkeys.RoleViewer, http.MethodGet, "/risk-assessments/r1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)
	assert.Equal(t, "72.5", strings.TrimSpace(doc.Find("#risk-score .score-value").Contents().First().Text()))
	assert.Equal(t, "Elevated", doc.Find(".markdown strong").Text())
	assert.Contains(t, doc.Find(".nav-link.active").Text(), "Overview")
	assert.Equal(t, "1", doc.Find(".nav-link .badge").Text())
	// The overview never asks for the score artifacts.
	assert.Zero(t, app.backend.count("GET /financial-analysis/z-score/statement/s1"))
}

func TestRiskAssessmentAlertsTabLinksBack(t *testing.T) {
	app := newTestApp(t)
	app.backend.reply("GET /risk-assessments/r1", http.StatusOK, assessmentR1)
	app.backend.reply("GET /risk-assessments/r1/alerts", http.StatusOK,
		`{"content":[{"id":"a1","assessmentId":"r1","severity":"HIGH","alertType":"Z_SCORE","message":"Distress"}],"totalPages":1,"totalElements":1}`)

	rec := app.do(t, ctxkeys.RoleAnalyst, http.MethodGet, "/risk-assessments/r1?tab=alerts", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)
	href, ok := doc.Find(`.tab-pane.alerts tr[data-id="a1"] a`).Attr("href")
	require.True(t, ok)
	u, err := url.Parse(href)
	require.NoError(t, err)
	assert.Equal(t, "/alerts/a1/resolve", u.Path)
	assert.Equal(t, "/risk-assessments/r1?tab=alerts", u.Query().Get("return"))
}

func TestRiskAssessmentAnalysisTab(t *testing.T) {
	app := newTestApp(t)
	app.backend.reply("GET /risk-assessments/r1", http.StatusOK, assessmentR1)
	app.backend.reply("GET /financial-analysis/z-score/statement/s1", http.StatusOK,
		`{"data":{"statementId":"s1","zScore":3.4,"riskCategory":"SAFE"}}`)

	rec := app.do(t, ctxkeys.RoleViewer, http.MethodGet, "/risk-assessments/r1?tab=analysis", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)
	assert.Equal(t, 1, app.backend.count("GET /financial-analysis/z-score/statement/s1"))
	assert.Equal(t, "3.40", strings.TrimSpace(doc.Find("#z-score .score-value").Text()))
	assert.Contains(t, doc.Find("#m-score .card-subtitle").Text(), "Not available")
}

func TestExportWorkbook(t *testing.T) {
	app := newTestApp(t)
	app.backend.on("GET /risk-assessments", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[
			{"id":"r1","companyName":"Acme","statementId":"s1","overallRiskScore":72.5,"riskLevel":"HIGH"},
			{"id":"r2","companyName":"Globex","statementId":"s2","overallRiskScore":81,"riskLevel":"HIGH"}
		],"totalPages":1,"totalElements":2}`))
	})
	app.backend.reply("GET /risk-alerts", http.StatusOK, twoAlerts)

	rec := app.do(t, ctxkeys.RoleViewer, http.MethodGet, "/risk-assessments/export.xlsx?riskLevel=HIGH", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `attachment; filename="risk-assessments-`)
	assert.Equal(t, "HIGH", app.backend.query("GET /risk-assessments").Get("riskLevel"))

	f, err := xlsx.OpenBinary(rec.Body.Bytes())
	require.NoError(t, err)
	assessments := f.Sheet[export.AssessmentsSheet]
	require.NotNil(t, assessments)
	require.Len(t, assessments.Rows, 3)
	assert.Equal(t, "Globex", assessments.Rows[2].Cells[0].String())
	alerts := f.Sheet[export.AlertsSheet]
	require.NotNil(t, alerts)
	assert.Len(t, alerts.Rows, 3)
}

func TestExportFailureRendersActionFailed(t *testing.T) {
	app := newTestApp(t)
	app.backend.reply("GET /risk-assessments", http.StatusInternalServerError, `{}`)

	rec := app.do(t, ctxkeys.RoleViewer, http.MethodGet, "/risk-assessments/export.xlsx", nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to export risk assessments.")
}

func TestArchiveRequiresAdmin(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, ctxkeys.RoleAnalyst, http.MethodPost, "/risk-assessments/export/archive", url.Values{})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, app.backend.count("GET /risk-assessments"))
}

func TestArchiveStoresReport(t *testing.T) {
	app := newTestApp(t)
	app.backend.reply("GET /risk-assessments", http.StatusOK,
		`{"content":[{"id":"r1","companyName":"Acme","riskLevel":"LOW"}],"totalPages":1,"totalElements":1}`)
	app.backend.reply("GET /risk-alerts", http.StatusOK, `{"content":[],"totalPages":0,"totalElements":0}`)

	rec := app.do(t, ctxkeys.RoleAdmin, http.MethodPost, "/risk-assessments/export/archive", url.Values{"riskLevel": {"LOW"}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/risk-assessments", loc.Path)
	assert.Equal(t, "report-archived", loc.Query().Get("notice"))
	assert.True(t, strings.HasPrefix(loc.Query().Get("file"), "/files/exports/"))

	files, err := filepath.Glob(filepath.Join(app.filesDir, "exports", "*", "*.xlsx"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestFeedAppliesPreferences(t *testing.T) {
	app := newTestApp(t)
	app.backend.reply("GET /risk-alerts", http.StatusOK, twoAlerts)

	req := httpRequest(t, http.MethodGet, "/api/alerts/feed")
	req.Header.Set("Accept", "application/json")
	rec := app.send(t, ctxkeys.RoleViewer, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Count  int `json:"count"`
		Alerts []struct {
			ID string `json:"id"`
		} `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Alerts, 1)
	assert.Equal(t, "a1", body.Alerts[0].ID)
}

func TestFeedBackendFailure(t *testing.T) {
	app := newTestApp(t)
	app.backend.reply("GET /risk-alerts", http.StatusInternalServerError, `{}`)

	req := httpRequest(t, http.MethodGet, "/api/alerts/feed")
	req.Header.Set("Accept", "application/json")
	rec := app.send(t, ctxkeys.RoleViewer, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAlertsDefaultToOpen(t *testing.T) {
	app := newTestApp(t)
	var mu sync.Mutex
	var resolved []string
	app.backend.on("GET /risk-alerts", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		resolved = append(resolved, r.URL.Query().Get("resolved"))
		mu.Unlock()
		_, _ = w.Write([]byte(twoAlerts))
	})

	rec := app.do(t, ctxkeys.RoleAnalyst, http.MethodGet, "/alerts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)
	assert.Equal(t, 2, doc.Find("table.alerts tbody tr").Length())

	rec = app.do(t, ctxkeys.RoleAnalyst, http.MethodGet, "/alerts?resolved=all", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"false", ""}, resolved)
}

func TestResolveRejectsShortNotes(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, ctxkeys.RoleAnalyst, http.MethodPost, "/alerts/a1/resolve", url.Values{
		"resolutionNotes": {"short"},
		"return":          {"/risk-assessments/r1?tab=alerts"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Zero(t, app.backend.count("PUT /risk-alerts/a1/resolve"))
	doc := parseHTML(t, rec)
	assert.NotEmpty(t, strings.TrimSpace(doc.Find(".invalid-feedback").Text()))
	assert.Equal(t, "short", doc.Find("textarea#resolutionNotes").Text())
	back, _ := doc.Find(`input[name="return"]`).Attr("value")
	assert.Equal(t, "/risk-assessments/r1?tab=alerts", back)
}

func TestResolveSendsNotesVerbatim(t *testing.T) {
	app := newTestApp(t)
	app.backend.reply("PUT /risk-alerts/a1/resolve", http.StatusOK, `{"data":{"id":"a1","isResolved":true}}`)
	notes := "  " + strings.Repeat("x", 496) + "  "

	rec := app.do(t, ctxkeys.RoleAnalyst, http.MethodPost, "/alerts/a1/resolve", url.Values{
		"resolutionNotes": {notes},
		"return":          {"/risk-assessments/r1?tab=alerts"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/risk-assessments/r1?tab=alerts&notice=alert-resolved", rec.Header().Get("Location"))
	require.Equal(t, 1, app.backend.count("PUT /risk-alerts/a1/resolve"))

	var sent map[string]string
	require.NoError(t, json.Unmarshal(app.backend.body("PUT /risk-alerts/a1/resolve"), &sent))
	assert.Equal(t, notes, sent["resolutionNotes"])
}

func TestResolveDropsAlertFromFeed(t *testing.T) {
	app := newTestApp(t, func(d *Deps) { d.Alerts = cron.NewAlertWatcher(d.API) })
	app.backend.reply("GET /risk-alerts", http.StatusOK, twoAlerts)
	app.backend.reply("PUT /risk-alerts/a1/resolve", http.StatusOK, `{"data":{"id":"a1","isResolved":true}}`)
	require.NoError(t, app.deps.Alerts.Poll(context.Background()))
	defaults := models.DefaultNotificationPreferences()
	require.Len(t, app.deps.Alerts.Feed(defaults), 1)

	rec := app.do(t, ctxkeys.RoleAnalyst, http.MethodPost, "/alerts/a1/resolve", url.Values{
		"resolutionNotes": {"Checked with the auditor."},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, app.deps.Alerts.Feed(defaults))
}

func TestResolveIgnoresExternalReturn(t *testing.T) {
	app := newTestApp(t)
	app.backend.reply("PUT /risk-alerts/a1/resolve", http.StatusOK, `{"data":{"id":"a1","isResolved":true}}`)

	rec := app.do(t, ctxkeys.RoleAnalyst, http.MethodPost, "/alerts/a1/resolve", url.Values{
		"resolutionNotes": {"Checked with the auditor."},
		"return":          {"https://evil.example.com"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/alerts?notice=alert-resolved", rec.Header().Get("Location"))
}

func TestResolveBackendFailureKeepsNotes(t *testing.T) {
	app := newTestApp(t)
	app.backend.reply("PUT /risk-alerts/a1/resolve", http.StatusBadRequest, `{"message":"Alert already resolved"}`)

	rec := app.do(t, ctxkeys.RoleAnalyst, http.MethodPost, "/alerts/a1/resolve", url.Values{
		"resolutionNotes": {"Checked with the auditor."},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	doc := parseHTML(t, rec)
	assert.Contains(t, doc.Find(".alert-danger").Text(), "Alert already resolved")
	assert.Equal(t, "Checked with the auditor.", doc.Find("textarea#resolutionNotes").Text())
}

func TestResolveFormShowsOpenAlert(t *testing.T) {
	app := newTestApp(t)
	app.backend.reply("GET /risk-alerts", http.StatusOK, twoAlerts)

	rec := app.do(t, ctxkeys.RoleAnalyst, http.MethodGet, "/alerts/a1/resolve?return=/alerts", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)
	assert.Contains(t, doc.Find(".alert-summary").Text(), "Z-score in distress zone")
	back, _ := doc.Find(`input[name="return"]`).Attr("value")
	assert.Equal(t, "/alerts", back)
}
