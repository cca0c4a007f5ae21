package models

import "strings"

// Email digest frequencies.
const (
	FrequencyImmediate = "IMMEDIATE"
	FrequencyDaily     = "DAILY"
	FrequencyWeekly    = "WEEKLY"
	FrequencyNever     = "NEVER"
)

// NotificationPreferences controls which risk alerts an analyst is told about.
type NotificationPreferences struct {
	EmailEnabled   bool             `json:"emailEnabled"`
	InAppEnabled   bool             `json:"inAppEnabled"`
	Severities     SeverityToggles  `json:"severities"`
	AlertTypes     AlertTypeToggles `json:"alertTypes"`
	EmailFrequency string           `json:"emailFrequency"`
}

// SeverityToggles enables notifications per alert severity.
type SeverityToggles struct {
	Critical bool `json:"critical"`
	High     bool `json:"high"`
	Medium   bool `json:"medium"`
	Low      bool `json:"low"`
}

// AlertTypeToggles enables notifications per alert type.
type AlertTypeToggles struct {
	ZScore         bool `json:"zScore"`
	MScore         bool `json:"mScore"`
	FScore         bool `json:"fScore"`
	MLPrediction   bool `json:"mlPrediction"`
	FinancialRatio bool `json:"financialRatio"`
}

// DefaultNotificationPreferences is the shape used when nothing was saved yet.
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{
		EmailEnabled: true,
		InAppEnabled: true,
		Severities: SeverityToggles{
			Critical: true,
			High:     true,
			Medium:   true,
			Low:      false,
		},
		AlertTypes: AlertTypeToggles{
			ZScore:         true,
			MScore:         true,
			FScore:         true,
			MLPrediction:   true,
			FinancialRatio: true,
		},
		EmailFrequency: FrequencyDaily,
	}
}

// Allows reports whether an alert with the given severity and type should be
// surfaced in-app. Unknown severities and types are allowed.
func (p NotificationPreferences) Allows(severity, alertType string) bool {
	if !p.InAppEnabled {
		return false
	}
	switch strings.ToUpper(strings.TrimSpace(severity)) {
	case "CRITICAL":
		if !p.Severities.Critical {
			return false
		}
	case "HIGH":
		if !p.Severities.High {
			return false
		}
	case "MEDIUM":
		if !p.Severities.Medium {
			return false
		}
	case "LOW":
		if !p.Severities.Low {
			return false
		}
	}
	switch strings.ToUpper(strings.TrimSpace(alertType)) {
	case "Z_SCORE":
		return p.AlertTypes.ZScore
	case "M_SCORE":
		return p.AlertTypes.MScore
	case "F_SCORE":
		return p.AlertTypes.FScore
	case "ML_PREDICTION":
		return p.AlertTypes.MLPrediction
	case "FINANCIAL_RATIO":
		return p.AlertTypes.FinancialRatio
	}
	return true
}
