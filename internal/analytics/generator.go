package analytics

import "time"

const (
	// trendInfluence caps how much of the raw trend percentage feeds the
	// per-day adjustment, to avoid runaway extrapolation.
	trendInfluence = 0.3

	// trendLabelThreshold is the +/- percentage band treated as stable.
	trendLabelThreshold = 5.0

	confidenceFloor   = 50.0
	confidenceCeiling = 95.0
	// confidenceFullSample is the same-weekday history count at which
	// confidence saturates.
	confidenceFullSample = 10.0
)

// Generator combines the upstream pipeline outputs into per-day forecasts. All
// state is per-run and immutable once constructed; nothing here is shared
// across runs.
type Generator struct {
	baseline float64
	trends   TrendMetrics
	seasonal SeasonalProfile
	weather  map[string]WeatherDay
	actuals  map[string]float64
}

// NewGenerator builds a generator for one run. history supplies the actuals
// used for backtest accuracy on dates the window overlaps; weather is keyed by
// 2006-01-02 date and may be sparse or empty.
func NewGenerator(baseline float64, trends TrendMetrics, seasonal SeasonalProfile, weather []WeatherDay, history []HistoricalDay) *Generator {
	weatherByDate := make(map[string]WeatherDay, len(weather))
	for _, w := range weather {
		weatherByDate[w.Date] = w
	}

	actuals := make(map[string]float64, len(history))
	for _, d := range history {
		actuals[d.Date.Format(dateLayout)] = d.Revenue
	}

	return &Generator{
		baseline: baseline,
		trends:   trends,
		seasonal: seasonal,
		weather:  weatherByDate,
		actuals:  actuals,
	}
}

// Generate produces one ForecastDay per date in [start, end] inclusive, in
// ascending order. No day is ever skipped: a missing seasonal sample or
// weather observation falls back to its neutral factor instead of aborting.
func (g *Generator) Generate(start, end time.Time) []ForecastDay {
	var days []ForecastDay
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		days = append(days, g.forecastDay(date))
	}
	return days
}

func (g *Generator) forecastDay(date time.Time) ForecastDay {
	key := date.Format(dateLayout)

	seasonal, ok := g.seasonal.Factors[date.Weekday()]
	if !ok {
		seasonal = 1
	}

	forecast := g.baseline * seasonal
	forecast *= g.trendAdjustment()

	weatherFactor := NeutralWeatherFactor
	var weather *WeatherDay
	if w, ok := g.weather[key]; ok {
		weatherFactor = WeatherImpactFactor(w)
		weather = &w
	}
	forecast *= weatherFactor
	forecast = round2(forecast)

	day := ForecastDay{
		Date:              key,
		ForecastedRevenue: forecast,
		Confidence:        g.confidence(date.Weekday()),
		Trend:             g.trendLabel(),
		Factors: ForecastFactors{
			HistoricalAverage: g.baseline,
			WeeklyTrend:       g.trends.Weekly,
			MonthlyTrend:      g.trends.Monthly,
			SeasonalFactor:    seasonal,
			WeatherFactor:     weatherFactor,
		},
		Weather: weather,
	}

	if actual, ok := g.actuals[key]; ok {
		day.ActualRevenue = &actual
		day.Accuracy = backtestAccuracy(forecast, actual)
	}

	return day
}

// trendAdjustment converts the overall trend percentage into a multiplier,
// with the influence capped at 30% of the raw percentage.
func (g *Generator) trendAdjustment() float64 {
	return 1 + (g.trends.Overall/100)*trendInfluence
}

// confidence scales with the same-weekday sample size and is clamped to
// [50, 95].
func (g *Generator) confidence(weekday time.Weekday) float64 {
	samples := float64(g.seasonal.SampleCounts[weekday])
	confidence := samples / confidenceFullSample * 100
	if confidence < confidenceFloor {
		return confidenceFloor
	}
	if confidence > confidenceCeiling {
		return confidenceCeiling
	}
	return confidence
}

func (g *Generator) trendLabel() TrendLabel {
	switch {
	case g.trends.Overall > trendLabelThreshold:
		return TrendUp
	case g.trends.Overall < -trendLabelThreshold:
		return TrendDown
	default:
		return TrendStable
	}
}

// backtestAccuracy scores a forecast against known actual revenue. A
// non-positive actual yields 0 rather than a division by zero.
func backtestAccuracy(forecast, actual float64) *ForecastAccuracy {
	difference := forecast - actual
	if difference < 0 {
		difference = -difference
	}

	percentage := 0.0
	if actual > 0 {
		percentage = (1 - difference/actual) * 100
	}
	percentage = round2(percentage)

	return &ForecastAccuracy{
		Percentage: percentage,
		Difference: round2(difference),
		Rating:     ratingFor(percentage),
	}
}
