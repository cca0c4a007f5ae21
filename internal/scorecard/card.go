// Package scorecard builds the view models of the score display cards.
// Builders are pure functions of the backend payload: a nil payload yields
// an explicit "Not available" card and never a placeholder zero.
package scorecard

import (
	"math"

	"github.com/shopspring/decimal"

	"fraud-dashboard/internal/risktier"
)

// NotAvailable is the subtitle of a card whose payload is absent.
const NotAvailable = "Not available"

// missing is shown for an individual component the backend did not return.
const missing = "N/A"

// Card is a rendered score card.
type Card struct {
	Title          string
	Subtitle       string
	Available      bool
	Value          string // formatted primary score
	Scale          string // e.g. "/ 9"
	Badge          Badge
	Interpretation string
	Gauge          *float64 // 0-100, nil when not computable
	Components     []Component
}

// Badge is the classification badge of a card.
type Badge struct {
	Text string
	Tier risktier.Tier
}

// Kind distinguishes numeric components from pass/fail signals.
type Kind int

const (
	KindValue Kind = iota
	KindCheck
)

// Check is the state of a binary component.
type Check int

const (
	CheckUnknown Check = iota
	CheckPass
	CheckFail
)

func (c Check) String() string {
	switch c {
	case CheckPass:
		return "pass"
	case CheckFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Component is one line of a card's breakdown.
type Component struct {
	Label string
	Hint  string
	Kind  Kind
	Value string
	Check Check
}

// IsCheck reports whether the component is a pass/fail signal.
func (c Component) IsCheck() bool { return c.Kind == KindCheck }

func unavailable(title string) Card {
	return Card{Title: title, Subtitle: NotAvailable}
}

// Fixed formats v with the given number of decimals, or "N/A" when v is
// missing or not a finite number.
func Fixed(v *float64, places int32) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return missing
	}
	return decimal.NewFromFloat(*v).StringFixed(places)
}

func ratio(label, hint string, v *float64) Component {
	return Component{Label: label, Hint: hint, Kind: KindValue, Value: Fixed(v, 4)}
}

func check(label string, v *bool) Component {
	c := Component{Label: label, Kind: KindCheck, Check: CheckUnknown}
	if v != nil {
		if *v {
			c.Check = CheckPass
		} else {
			c.Check = CheckFail
		}
	}
	return c
}

func badge(label string, tier risktier.Tier) Badge {
	if label == "" {
		label = "UNKNOWN"
	}
	return Badge{Text: label, Tier: tier}
}

func gauge(score *float64, maxScore float64) *float64 {
	pct, ok := risktier.Gauge(score, &maxScore)
	if !ok {
		return nil
	}
	return &pct
}
