package forms

import "net/url"

// AlertResolveForm collects the notes required to resolve a risk alert.
// Notes are kept exactly as typed and sent verbatim.
type AlertResolveForm struct {
	AlertID         string `form:"-"`
	ResolutionNotes string `form:"resolutionNotes" validate:"required,min=10,max=1000"`
}

var alertLabels = map[string]string{"resolutionNotes": "Resolution notes"}

// AlertResolveFormFrom reads the form from a POST body.
func AlertResolveFormFrom(alertID string, v url.Values) AlertResolveForm {
	return AlertResolveForm{AlertID: alertID, ResolutionNotes: v.Get("resolutionNotes")}
}

// Validate checks the form.
func (f AlertResolveForm) Validate() Errors {
	return check(f, alertLabels)
}
