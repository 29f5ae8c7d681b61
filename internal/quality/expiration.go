package quality

import "time"

// RiskCategory classifies how close a lot is to its expiration date.
type RiskCategory string

const (
	RiskExpired  RiskCategory = "EXPIRED"
	RiskCritical RiskCategory = "CRITICAL"
	RiskWarning  RiskCategory = "WARNING"
	RiskSafe     RiskCategory = "SAFE"
)

// Category thresholds in whole days.
const (
	criticalThreshold = 30
	warningThreshold  = 90
)

// ExpirationRisk is the derived classification for a lot. Recomputed on
// demand, never persisted.
type ExpirationRisk struct {
	DaysUntil int          `json:"days_until"`
	Category  RiskCategory `json:"category"`
}

// ClassifyExpiration computes the whole-day distance between asOf and the
// expiration date and maps it onto a risk category. Both instants are
// truncated to calendar dates, so a lot expiring today classifies as
// CRITICAL with zero days left. Pure and total.
func ClassifyExpiration(expiresAt, asOf time.Time) ExpirationRisk {
	days := int(truncateToDay(expiresAt).Sub(truncateToDay(asOf)).Hours() / 24)

	var category RiskCategory
	switch {
	case days < 0:
		category = RiskExpired
	case days < criticalThreshold:
		category = RiskCritical
	case days < warningThreshold:
		category = RiskWarning
	default:
		category = RiskSafe
	}

	return ExpirationRisk{DaysUntil: days, Category: category}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
