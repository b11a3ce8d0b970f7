package analytics

// SummarizeAccuracy rolls per-day backtest results into one overall score: the
// mean of all accuracy percentages, 0 when no day was backtestable. The rating
// uses the same thresholds as the per-day scoring.
func SummarizeAccuracy(days []ForecastDay) AccuracySummary {
	sum := 0.0
	n := 0
	for _, d := range days {
		if d.Accuracy == nil {
			continue
		}
		sum += d.Accuracy.Percentage
		n++
	}

	overall := 0.0
	if n > 0 {
		overall = round2(sum / float64(n))
	}

	return AccuracySummary{
		Overall:        overall,
		Rating:         ratingFor(overall),
		DataPoints:     n,
		TotalForecasts: len(days),
	}
}
