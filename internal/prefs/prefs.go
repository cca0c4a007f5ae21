// Package prefs persists the notification preferences of each analyst.
// Preferences are a JSON blob stored under a fixed key; anything missing or
// unreadable falls back to the default shape.
package prefs

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"fraud-dashboard/internal/models"
)

// Key is the fixed key the preferences blob is stored under.
const Key = "notificationPreferences"

// Repository loads and saves notification preferences per analyst.
type Repository interface {
	Load(ctx context.Context, user string) (models.NotificationPreferences, error)
	Save(ctx context.Context, user string, p models.NotificationPreferences) error
}

// decode overlays a stored blob on the defaults so that fields added later
// keep their default value.
func decode(user string, raw []byte) models.NotificationPreferences {
	p := models.DefaultNotificationPreferences()
	if len(raw) == 0 {
		return p
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		zap.L().Warn("prefs: unreadable preferences, using defaults",
			zap.String("user", user), zap.Error(err))
		return models.DefaultNotificationPreferences()
	}
	if p.EmailFrequency == "" {
		p.EmailFrequency = models.FrequencyDaily
	}
	return p
}
