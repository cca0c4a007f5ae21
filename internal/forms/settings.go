package forms

import (
	"net/url"
	"strings"

	"fraud-dashboard/internal/models"
)

// Frequencies lists the email digest options in display order.
var Frequencies = []string{
	models.FrequencyImmediate,
	models.FrequencyDaily,
	models.FrequencyWeekly,
	models.FrequencyNever,
}

// NotificationSettingsForm is the notification preferences page.
type NotificationSettingsForm struct {
	Prefs          models.NotificationPreferences `form:"-"`
	EmailFrequency string                         `form:"emailFrequency" validate:"required,oneof=IMMEDIATE DAILY WEEKLY NEVER"`
}

var settingsLabels = map[string]string{"emailFrequency": "Email frequency"}

// NotificationSettingsFormFrom reads the checkboxes of the settings page.
// An unchecked box is absent from the body and therefore false.
func NotificationSettingsFormFrom(v url.Values) NotificationSettingsForm {
	on := func(name string) bool { return v.Get(name) != "" }
	freq := strings.ToUpper(strings.TrimSpace(v.Get("emailFrequency")))
	return NotificationSettingsForm{
		EmailFrequency: freq,
		Prefs: models.NotificationPreferences{
			EmailEnabled: on("emailEnabled"),
			InAppEnabled: on("inAppEnabled"),
			Severities: models.SeverityToggles{
				Critical: on("severity.critical"),
				High:     on("severity.high"),
				Medium:   on("severity.medium"),
				Low:      on("severity.low"),
			},
			AlertTypes: models.AlertTypeToggles{
				ZScore:         on("type.zScore"),
				MScore:         on("type.mScore"),
				FScore:         on("type.fScore"),
				MLPrediction:   on("type.mlPrediction"),
				FinancialRatio: on("type.financialRatio"),
			},
			EmailFrequency: freq,
		},
	}
}

// Validate checks the form.
func (f NotificationSettingsForm) Validate() Errors {
	return check(f, settingsLabels)
}
