package analytics

import "time"

// AnalyzeTrends compares a recent window of revenue against the window
// immediately before it, on two horizons:
//
//   - weekly: last 28 days vs the 28 days before that (fixed day offsets)
//   - monthly: last 3 calendar months vs the 3 months before that
//
// The weekly windows use fixed day counts while the monthly windows use
// calendar-month arithmetic; existing calibration depends on this exact mix.
func AnalyzeTrends(days []HistoricalDay, now time.Time) TrendMetrics {
	recentWeekly, _ := meanSince(days, now.AddDate(0, 0, -28))
	olderWeekly := meanBetween(days, now.AddDate(0, 0, -56), now.AddDate(0, 0, -28))
	weekly := percentChange(recentWeekly, olderWeekly)

	recentMonthly, _ := meanSince(days, now.AddDate(0, -3, 0))
	olderMonthly := meanBetween(days, now.AddDate(0, -6, 0), now.AddDate(0, -3, 0))
	monthly := percentChange(recentMonthly, olderMonthly)

	return TrendMetrics{
		Weekly:  weekly,
		Monthly: monthly,
		Overall: (weekly + monthly) / 2,
	}
}

// percentChange returns the percentage change from older to recent, degrading
// to 0 when the older window mean is 0 rather than dividing by zero.
func percentChange(recent, older float64) float64 {
	if older == 0 {
		return 0
	}
	return (recent - older) / older * 100
}
