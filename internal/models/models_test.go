package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowsFollowsToggles(t *testing.T) {
	p := DefaultNotificationPreferences()

	assert.True(t, p.Allows("HIGH", "Z_SCORE"))
	assert.True(t, p.Allows("critical", "m_score"))
	assert.False(t, p.Allows("LOW", "Z_SCORE"), "low is off by default")
	assert.True(t, p.Allows("SEVERE", "SOMETHING_NEW"), "unknown values pass")

	p.AlertTypes.FScore = false
	assert.False(t, p.Allows("HIGH", "F_SCORE"))

	p.InAppEnabled = false
	assert.False(t, p.Allows("CRITICAL", "Z_SCORE"))
}

func TestStatementStatus(t *testing.T) {
	tests := []struct {
		status   string
		data     bool
		analyzed bool
	}{
		{StatusPending, false, false},
		{StatusProcessed, true, false},
		{"analyzed", true, true},
		{"", false, false},
	}
	for _, tt := range tests {
		s := FinancialStatement{Status: tt.status}
		assert.Equal(t, tt.data, s.HasFinancialData(), tt.status)
		assert.Equal(t, tt.analyzed, s.IsAnalyzed(), tt.status)
	}
}

func TestLoginRequestValidate(t *testing.T) {
	errs := (&LoginRequest{}).Validate()
	assert.Len(t, errs, 2)

	errs = (&LoginRequest{Email: "a@example.com", Password: "x"}).Validate()
	assert.Empty(t, errs)
}
