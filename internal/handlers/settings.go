package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"fraud-dashboard/internal/ctxkeys"
	"fraud-dashboard/internal/forms"
	"fraud-dashboard/internal/models"
	"fraud-dashboard/internal/views"
)

// SettingsHandler serves the analyst's notification preferences.
type SettingsHandler struct {
	base
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(d Deps) *SettingsHandler {
	return &SettingsHandler{base{d}}
}

type toggle struct {
	Name  string
	Label string
	On    bool
}

type settingsData struct {
	Form        forms.NotificationSettingsForm
	Errors      forms.Errors
	Severities  []toggle
	AlertTypes  []toggle
	Frequencies []string
}

func newSettingsData(form forms.NotificationSettingsForm, errs forms.Errors) settingsData {
	p := form.Prefs
	return settingsData{
		Form:   form,
		Errors: errs,
		Severities: []toggle{
			{"severity.critical", "Critical", p.Severities.Critical},
			{"severity.high", "High", p.Severities.High},
			{"severity.medium", "Medium", p.Severities.Medium},
			{"severity.low", "Low", p.Severities.Low},
		},
		AlertTypes: []toggle{
			{"type.zScore", "Z-Score", p.AlertTypes.ZScore},
			{"type.mScore", "M-Score", p.AlertTypes.MScore},
			{"type.fScore", "F-Score", p.AlertTypes.FScore},
			{"type.mlPrediction", "ML Prediction", p.AlertTypes.MLPrediction},
			{"type.financialRatio", "Financial Ratio", p.AlertTypes.FinancialRatio},
		},
		Frequencies: forms.Frequencies,
	}
}

// Notifications handles GET /settings/notifications.
func (h *SettingsHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	p := h.preferences(ctx)
	form := forms.NotificationSettingsForm{Prefs: p, EmailFrequency: p.EmailFrequency}
	h.render(w, http.StatusOK, "settings", h.page(r, "Notification Settings", "settings", newSettingsData(form, nil)))
}

// SaveNotifications handles POST /settings/notifications. The form stays
// on the page with a banner either way.
func (h *SettingsHandler) SaveNotifications(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	form := forms.NotificationSettingsFormFrom(r.PostForm)
	user := ctxkeys.Email(ctx)
	_, out := forms.Submit(ctx, nil, forms.Action[models.NotificationPreferences]{
		Validate: form.Validate,
		Mutate: func(ctx context.Context) (models.NotificationPreferences, error) {
			return form.Prefs, h.Prefs.Save(ctx, user, form.Prefs)
		},
		Fallback: "Failed to save notification settings. Please try again.",
		Success:  "Notification settings saved.",
	})

	p := h.page(r, "Notification Settings", "settings", newSettingsData(form, out.Errors))
	if out.Failed() {
		if out.Err != nil {
			zap.L().Error("handlers: save preferences", zap.String("user", user), zap.Error(out.Err))
		}
		p.Banner = failure(out.Message)
		status := http.StatusUnprocessableEntity
		if out.Err != nil {
			status = http.StatusInternalServerError
		}
		h.render(w, status, "settings", p)
		return
	}
	p.Banner = &views.Banner{Kind: "success", Message: out.Message}
	h.render(w, http.StatusOK, "settings", p)
}
