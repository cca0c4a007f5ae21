// Package risktier maps the categorical labels computed by the fraud backend
// to the four display tiers used across the dashboard. The labels are trusted
// as-is; no score thresholds are recomputed here.
package risktier

import (
	"math"
	"strings"
)

// Tier is the display severity of a server-provided label.
type Tier int

const (
	// Neutral is used for unknown or missing labels.
	Neutral Tier = iota
	Success
	Warning
	Danger
)

// String returns the color token used by templates.
func (t Tier) String() string {
	switch t {
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Danger:
		return "danger"
	default:
		return "secondary"
	}
}

// Label returns a human-readable name of the tier.
func (t Tier) Label() string {
	switch t {
	case Success:
		return "Low risk"
	case Warning:
		return "Elevated risk"
	case Danger:
		return "High risk"
	default:
		return "Unknown"
	}
}

// Mapping is a total function from a server enum to a tier.
type Mapping map[string]Tier

// Of returns the tier for label. Matching ignores case and surrounding
// whitespace; anything not in the mapping is Neutral.
func (m Mapping) Of(label string) Tier {
	key := strings.ToUpper(strings.TrimSpace(label))
	if key == "" {
		return Neutral
	}
	if t, ok := m[key]; ok {
		return t
	}
	return Neutral
}

// Gauge returns score/maxScore as a percentage clamped to [0,100].
// ok is false when either value is missing or maxScore is not positive.
func Gauge(score, maxScore *float64) (pct float64, ok bool) {
	if score == nil || maxScore == nil || *maxScore <= 0 {
		return 0, false
	}
	v := *score / *maxScore * 100
	if math.IsNaN(v) {
		return 0, false
	}
	return math.Max(0, math.Min(100, v)), true
}
