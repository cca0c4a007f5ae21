package handlers

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraud-dashboard/internal/ctxkeys"
	"fraud-dashboard/internal/models"
)

func TestSettingsShowDefaults(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, ctxkeys.RoleViewer, http.MethodGet, "/settings/notifications", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)
	checked := func(name string) bool {
		_, ok := doc.Find(`input[name="` + name + `"]`).Attr("checked")
		return ok
	}
	assert.True(t, checked("emailEnabled"))
	assert.True(t, checked("inAppEnabled"))
	assert.True(t, checked("severity.critical"))
	assert.False(t, checked("severity.low"))
	assert.True(t, checked("type.financialRatio"))
	freq, _ := doc.Find(`#emailFrequency option[selected]`).Attr("value")
	assert.Equal(t, models.FrequencyDaily, freq)
}

func TestSettingsSavePersists(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, ctxkeys.RoleViewer, http.MethodPost, "/settings/notifications", url.Values{
		"inAppEnabled":   {"on"},
		"severity.low":   {"on"},
		"type.zScore":    {"on"},
		"emailFrequency": {"weekly"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, parseHTML(t, rec).Find(".alert-success").Text(), "Notification settings saved.")

	saved, err := app.deps.Prefs.Load(context.Background(), "viewer@example.com")
	require.NoError(t, err)
	assert.False(t, saved.EmailEnabled)
	assert.True(t, saved.InAppEnabled)
	assert.True(t, saved.Severities.Low)
	assert.False(t, saved.Severities.Critical)
	assert.True(t, saved.AlertTypes.ZScore)
	assert.False(t, saved.AlertTypes.MScore)
	assert.Equal(t, models.FrequencyWeekly, saved.EmailFrequency)

	// Other analysts keep the defaults.
	other, err := app.deps.Prefs.Load(context.Background(), "analyst@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultNotificationPreferences(), other)
}

func TestSettingsRejectUnknownFrequency(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, ctxkeys.RoleViewer, http.MethodPost, "/settings/notifications", url.Values{
		"inAppEnabled":   {"on"},
		"emailFrequency": {"HOURLY"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	doc := parseHTML(t, rec)
	assert.True(t, doc.Find("#emailFrequency").HasClass("is-invalid"))

	saved, err := app.deps.Prefs.Load(context.Background(), "viewer@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultNotificationPreferences(), saved)
}

func TestSavedPreferencesDriveFeed(t *testing.T) {
	app := newTestApp(t)
	app.backend.reply("GET /risk-alerts", http.StatusOK, twoAlerts)

	rec := app.do(t, ctxkeys.RoleViewer, http.MethodPost, "/settings/notifications", url.Values{
		"inAppEnabled":   {"on"},
		"severity.low":   {"on"},
		"type.fScore":    {"on"},
		"emailFrequency": {"NEVER"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, ctxkeys.RoleViewer, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := parseHTML(t, rec).Find(".recent-alerts .list-group-item")
	require.Equal(t, 1, items.Length())
	assert.Contains(t, items.Text(), "F-score dropped")
}
