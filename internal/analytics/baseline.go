package analytics

import "time"

// RollingBaseline computes the flat daily-revenue reference level: the mean
// over the last 28 days, falling back to the mean over the last 3 calendar
// months, then to 0. The result is always finite; the fallbacks exist so no
// downstream stage ever divides by zero or sees NaN.
func RollingBaseline(days []HistoricalDay, now time.Time) float64 {
	fourWeeksAgo := now.AddDate(0, 0, -28)
	if mean, n := meanSince(days, fourWeeksAgo); n > 0 {
		return mean
	}

	threeMonthsAgo := now.AddDate(0, -3, 0)
	if mean, n := meanSince(days, threeMonthsAgo); n > 0 {
		return mean
	}

	return 0
}

// meanSince averages revenue over days on or after cutoff.
func meanSince(days []HistoricalDay, cutoff time.Time) (float64, int) {
	sum := 0.0
	n := 0
	for _, d := range days {
		if d.Date.Before(cutoff) {
			continue
		}
		sum += d.Revenue
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

// meanBetween averages revenue over days in [from, to).
func meanBetween(days []HistoricalDay, from, to time.Time) float64 {
	sum := 0.0
	n := 0
	for _, d := range days {
		if d.Date.Before(from) || !d.Date.Before(to) {
			continue
		}
		sum += d.Revenue
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
