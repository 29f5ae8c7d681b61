package quality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyExpiration_Boundaries(t *testing.T) {
	asOf := time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		days     int
		category RiskCategory
	}{
		{-1, RiskExpired},
		{0, RiskCritical},
		{29, RiskCritical},
		{30, RiskWarning},
		{89, RiskWarning},
		{90, RiskSafe},
		{-400, RiskExpired},
		{365, RiskSafe},
	}

	for _, tt := range tests {
		expiresAt := asOf.AddDate(0, 0, tt.days)
		risk := ClassifyExpiration(expiresAt, asOf)
		assert.Equal(t, tt.days, risk.DaysUntil, "days offset %d", tt.days)
		assert.Equal(t, tt.category, risk.Category, "days offset %d", tt.days)
	}
}

func TestClassifyExpiration_IgnoresTimeOfDay(t *testing.T) {
	asOf := time.Date(2024, 6, 15, 23, 59, 0, 0, time.UTC)
	expiresAt := time.Date(2024, 6, 16, 0, 1, 0, 0, time.UTC)

	risk := ClassifyExpiration(expiresAt, asOf)
	assert.Equal(t, 1, risk.DaysUntil)
	assert.Equal(t, RiskCritical, risk.Category)
}

func TestClassifyExpiration_SameInstant(t *testing.T) {
	now := time.Now()
	risk := ClassifyExpiration(now, now)
	assert.Equal(t, 0, risk.DaysUntil)
	assert.Equal(t, RiskCritical, risk.Category)
}
