package analytics

import "time"

// BuildSeasonalProfile computes a per-weekday multiplier relative to the
// all-time daily mean. A weekday with no history inherits the global mean and
// therefore a factor of 1; a zero or negative global mean collapses every
// factor to 1. Factors are ratios and are not constrained to sum to any
// fixed total.
func BuildSeasonalProfile(days []HistoricalDay) SeasonalProfile {
	profile := SeasonalProfile{
		Factors:      make(map[time.Weekday]float64, 7),
		SampleCounts: make(map[time.Weekday]int, 7),
	}

	total := 0.0
	sums := make(map[time.Weekday]float64, 7)
	for _, d := range days {
		total += d.Revenue
		sums[d.Weekday] += d.Revenue
		profile.SampleCounts[d.Weekday]++
	}

	totalAvg := 0.0
	if len(days) > 0 {
		totalAvg = total / float64(len(days))
	}

	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		weekdayAvg := totalAvg
		if n := profile.SampleCounts[wd]; n > 0 {
			weekdayAvg = sums[wd] / float64(n)
		}
		if totalAvg > 0 {
			profile.Factors[wd] = weekdayAvg / totalAvg
		} else {
			profile.Factors[wd] = 1
		}
	}

	return profile
}
