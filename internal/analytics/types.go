package analytics

import (
	"math"
	"time"
)

// TransactionRecord is the minimal view of a successful payment transaction
// the forecast pipeline consumes. Amounts are in major currency units.
type TransactionRecord struct {
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoricalDay is one aggregated day of revenue history. Date is midnight in
// the organization's local timezone. Revenue may be negative when refunds
// outweigh sales for a day; the pipeline accepts that as-is.
type HistoricalDay struct {
	Date    time.Time    `json:"date"`
	Revenue float64      `json:"revenue"`
	Weekday time.Weekday `json:"weekday"`
	ISOWeek int          `json:"iso_week"`
	Month   int          `json:"month"`
	Year    int          `json:"year"`
}

// WeatherDay is a single day's weather observation for the forecast window.
type WeatherDay struct {
	Date          string  `json:"date"` // 2006-01-02
	Temperature   float64 `json:"temperature"`    // degrees C, (max+min)/2
	Precipitation float64 `json:"precipitation"`  // mm
	WeatherCode   int     `json:"weather_code"`   // WMO code
	WindSpeed     float64 `json:"wind_speed"`     // km/h
	Humidity      float64 `json:"humidity"`       // percent
}

// TrendMetrics holds the short- and medium-term revenue trend in percent.
type TrendMetrics struct {
	Weekly  float64 `json:"weekly"`
	Monthly float64 `json:"monthly"`
	Overall float64 `json:"overall"`
}

// SeasonalProfile maps each weekday to a multiplier relative to the all-time
// daily mean, along with how many historical days backed each weekday.
type SeasonalProfile struct {
	Factors      map[time.Weekday]float64 `json:"factors"`
	SampleCounts map[time.Weekday]int     `json:"sample_counts"`
}

// TrendLabel is the qualitative direction attached to each forecast day.
type TrendLabel string

const (
	TrendUp     TrendLabel = "up"
	TrendDown   TrendLabel = "down"
	TrendStable TrendLabel = "stable"
)

// AccuracyRating is the qualitative bucket for a backtest accuracy percentage.
type AccuracyRating string

const (
	RatingExcellent AccuracyRating = "excellent"
	RatingGood      AccuracyRating = "good"
	RatingFair      AccuracyRating = "fair"
	RatingPoor      AccuracyRating = "poor"
)

// ForecastFactors exposes the individual multipliers behind a forecast day so
// callers can see how the number was built.
type ForecastFactors struct {
	HistoricalAverage float64 `json:"historical_average"`
	WeeklyTrend       float64 `json:"weekly_trend"`
	MonthlyTrend      float64 `json:"monthly_trend"`
	SeasonalFactor    float64 `json:"seasonal_factor"`
	WeatherFactor     float64 `json:"weather_factor"`
}

// ForecastAccuracy is the backtest result for a day whose actual revenue is
// already known.
type ForecastAccuracy struct {
	Percentage float64        `json:"percentage"`
	Difference float64        `json:"difference"`
	Rating     AccuracyRating `json:"rating"`
}

// ForecastDay is one day of the generated forecast.
type ForecastDay struct {
	Date              string            `json:"date"` // 2006-01-02
	ForecastedRevenue float64           `json:"forecasted_revenue"`
	ActualRevenue     *float64          `json:"actual_revenue,omitempty"`
	Confidence        float64           `json:"confidence"`
	Trend             TrendLabel        `json:"trend"`
	Accuracy          *ForecastAccuracy `json:"accuracy,omitempty"`
	Factors           ForecastFactors   `json:"factors"`
	Weather           *WeatherDay       `json:"weather,omitempty"`
}

// AccuracySummary rolls all per-day backtest results into one score. DataPoints
// counts the days that had a known actual to compare against; TotalForecasts is
// the full window length, so callers can judge how much of the score is backed
// by real data.
type AccuracySummary struct {
	Overall        float64        `json:"overall"`
	Rating         AccuracyRating `json:"rating"`
	DataPoints     int            `json:"data_points"`
	TotalForecasts int            `json:"total_forecasts"`
}

// ForecastPeriod is the inclusive date window of a run.
type ForecastPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ForecastSummary is the per-run metadata returned alongside the day list.
type ForecastSummary struct {
	RollingBaseline       float64         `json:"rolling_baseline"`
	Trends                TrendMetrics    `json:"trends"`
	DataPoints            int             `json:"data_points"`
	TransactionsRetrieved int             `json:"transactions_retrieved"`
	HistoryTruncated      bool            `json:"history_truncated"`
	Period                ForecastPeriod  `json:"period"`
	Accuracy              AccuracySummary `json:"accuracy"`
}

// ForecastResult is the complete output of one forecast run.
type ForecastResult struct {
	Forecast []ForecastDay   `json:"forecast"`
	Summary  ForecastSummary `json:"metadata"`
}

const dateLayout = "2006-01-02"

// round2 rounds to 2 decimal places, the precision every monetary and
// percentage figure in the forecast is reported at.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func ratingFor(percentage float64) AccuracyRating {
	switch {
	case percentage >= 90:
		return RatingExcellent
	case percentage >= 75:
		return RatingGood
	case percentage >= 60:
		return RatingFair
	default:
		return RatingPoor
	}
}
