package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraud-dashboard/internal/ctxkeys"
)

const twoAlerts = `{"content":[
	{"id":"a1","assessmentId":"r1","companyName":"Acme","severity":"HIGH","alertType":"Z_SCORE","message":"Z-score in distress zone"},
	{"id":"a2","assessmentId":"r1","companyName":"Acme","severity":"LOW","alertType":"F_SCORE","message":"F-score dropped"}
],"totalPages":1,"totalElements":2}`

func TestDashboardSectionFailsAlone(t *testing.T) {
	app := newTestApp(t)
	app.backend.reply("GET /companies", http.StatusOK, `{"content":[],"totalPages":12,"totalElements":12}`)
	app.backend.reply("GET /financial-statements", http.StatusOK, `{"content":[],"totalPages":30,"totalElements":30}`)
	app.backend.reply("GET /risk-assessments", http.StatusInternalServerError, `{"message":"boom"}`)
	app.backend.reply("GET /risk-alerts", http.StatusOK, twoAlerts)

	rec := app.do(t, ctxkeys.RoleViewer, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)

	values := doc.Find(".counter .counter-value").Map(func(_ int, s *goquery.Selection) string {
		return strings.TrimSpace(s.Text())
	})
	assert.Equal(t, []string{"12", "30", "N/A", "2"}, values)

	panel := doc.Find(".recent-assessments .error-panel")
	require.Equal(t, 1, panel.Length())
	assert.Contains(t, panel.Text(), "An error occurred while fetching risk assessments.")

	// LOW alerts are muted by the default preferences.
	alerts := doc.Find(".recent-alerts .list-group-item")
	require.Equal(t, 1, alerts.Length())
	assert.Contains(t, alerts.Text(), "Z-score in distress zone")
	assert.Zero(t, doc.Find(".recent-alerts .error-panel").Length())
}

func TestDashboardEmptySections(t *testing.T) {
	app := newTestApp(t)
	empty := `{"content":[],"totalPages":0,"totalElements":0}`
	app.backend.reply("GET /companies", http.StatusOK, empty)
	app.backend.reply("GET /financial-statements", http.StatusOK, empty)
	app.backend.reply("GET /risk-assessments", http.StatusOK, empty)
	app.backend.reply("GET /risk-alerts", http.StatusOK, empty)

	rec := app.do(t, ctxkeys.RoleViewer, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)
	assert.Equal(t, 2, doc.Find("p.empty").Length())
	assert.Zero(t, doc.Find(".error-panel").Length())
	assert.Equal(t, "0", strings.TrimSpace(doc.Find(".counter .counter-value").First().Text()))
}

func TestHealthReportsBackendDown(t *testing.T) {
	app := newTestApp(t)
	app.backend.reply("GET /companies", http.StatusServiceUnavailable, `{"message":"down"}`)

	req := httpRequest(t, http.MethodGet, "/health")
	req.Header.Set("Accept", "application/json")
	rec := app.send(t, "", req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"backend":"down"`)
}

func TestHealthOK(t *testing.T) {
	app := newTestApp(t)
	app.backend.reply("GET /companies", http.StatusOK, `{"content":[],"totalElements":0}`)

	req := httpRequest(t, http.MethodGet, "/health")
	req.Header.Set("Accept", "application/json")
	rec := app.send(t, "", req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
