package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillpoint/revenue-forecast/internal/analytics"
)

type stubIterator struct {
	records []analytics.TransactionRecord
	served  bool
}

func (s *stubIterator) Next(ctx context.Context) ([]analytics.TransactionRecord, error) {
	if s.served {
		return nil, nil
	}
	s.served = true
	return s.records, nil
}

type stubSource struct {
	records []analytics.TransactionRecord
	orgID   string
	since   time.Time
}

func (s *stubSource) Pages(orgID string, since time.Time, pageSize int) analytics.PageIterator {
	s.orgID = orgID
	s.since = since
	return &stubIterator{records: s.records}
}

type stubWeather struct {
	days  []analytics.WeatherDay
	start time.Time
	end   time.Time
	calls int
}

func (s *stubWeather) GetWeather(ctx context.Context, start, end time.Time) []analytics.WeatherDay {
	s.calls++
	s.start = start
	s.end = end
	return s.days
}

var serviceNow = time.Date(2026, time.August, 28, 15, 30, 0, 0, time.UTC)

func newTestService(source analytics.TransactionSource, weather WeatherProvider) *ForecastService {
	svc := NewForecastService(source, weather, nil, time.UTC, nil)
	svc.now = func() time.Time { return serviceNow }
	return svc
}

func TestGenerateForecastMissingOrganization(t *testing.T) {
	svc := newTestService(&stubSource{}, nil)
	result, err := svc.GenerateForecast(context.Background(), "", nil, nil)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrMissingOrganization)
}

// TestGenerateForecastDefaultWindow tests that omitted dates resolve to today
// through today+30, 31 days inclusive
func TestGenerateForecastDefaultWindow(t *testing.T) {
	weather := &stubWeather{}
	svc := newTestService(&stubSource{}, weather)

	result, err := svc.GenerateForecast(context.Background(), "org_123", nil, nil)
	require.NoError(t, err)

	assert.Len(t, result.Forecast, DefaultForecastDays+1)
	assert.Equal(t, "2026-08-28", result.Summary.Period.Start)
	assert.Equal(t, "2026-09-27", result.Summary.Period.End)
	assert.Equal(t, 1, weather.calls)
	assert.Equal(t, "2026-08-28", weather.start.Format("2006-01-02"))
	assert.Equal(t, "2026-09-27", weather.end.Format("2006-01-02"))
}

// TestGenerateForecastExplicitWindow tests caller-supplied dates
func TestGenerateForecastExplicitWindow(t *testing.T) {
	svc := newTestService(&stubSource{}, nil)

	start := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC)
	result, err := svc.GenerateForecast(context.Background(), "org_123", &start, &end)
	require.NoError(t, err)

	assert.Len(t, result.Forecast, 7)
	assert.Equal(t, "2026-09-01", result.Summary.Period.Start)
	assert.Equal(t, "2026-09-07", result.Summary.Period.End)
}

// TestGenerateForecastWindowInWesternTimezone tests that caller-supplied
// dates, which arrive as UTC midnights, keep their calendar day in an
// organization timezone behind UTC instead of shifting back a day
func TestGenerateForecastWindowInWesternTimezone(t *testing.T) {
	losAngeles, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	svc := NewForecastService(&stubSource{}, nil, nil, losAngeles, nil)
	svc.now = func() time.Time { return serviceNow }

	start, err := time.Parse("2006-01-02", "2026-09-01")
	require.NoError(t, err)
	end, err := time.Parse("2006-01-02", "2026-09-07")
	require.NoError(t, err)

	result, err := svc.GenerateForecast(context.Background(), "org_123", &start, &end)
	require.NoError(t, err)

	assert.Equal(t, "2026-09-01", result.Summary.Period.Start)
	assert.Equal(t, "2026-09-07", result.Summary.Period.End)
	require.Len(t, result.Forecast, 7)
	assert.Equal(t, "2026-09-01", result.Forecast[0].Date)
	assert.Equal(t, "2026-09-07", result.Forecast[6].Date)
}

// TestGenerateForecastEmptyHistory tests that a brand-new organization still
// gets a full window of zero forecasts instead of an error
func TestGenerateForecastEmptyHistory(t *testing.T) {
	svc := newTestService(&stubSource{}, nil)

	result, err := svc.GenerateForecast(context.Background(), "org_new", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Summary.RollingBaseline)
	assert.Equal(t, 0, result.Summary.DataPoints)
	for _, day := range result.Forecast {
		assert.Equal(t, 0.0, day.ForecastedRevenue)
		assert.Equal(t, 50.0, day.Confidence)
	}
}

// TestGenerateForecastPipeline tests the full run against a deterministic
// flat history: two years lookback, baseline from the last 28 days, and the
// summary reflecting what was retrieved
func TestGenerateForecastPipeline(t *testing.T) {
	var records []analytics.TransactionRecord
	for i := 1; i <= 56; i++ {
		records = append(records, analytics.TransactionRecord{
			Amount:    100,
			Timestamp: serviceNow.AddDate(0, 0, -i),
		})
	}
	source := &stubSource{records: records}
	svc := newTestService(source, nil)

	result, err := svc.GenerateForecast(context.Background(), "org_123", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "org_123", source.orgID)
	assert.Equal(t, serviceNow.AddDate(-2, 0, 0), source.since)

	assert.Equal(t, 100.0, result.Summary.RollingBaseline)
	assert.Equal(t, 56, result.Summary.DataPoints)
	assert.Equal(t, 56, result.Summary.TransactionsRetrieved)
	assert.False(t, result.Summary.HistoryTruncated)
	assert.Equal(t, 0.0, result.Summary.Trends.Weekly)

	require.NotEmpty(t, result.Forecast)
	first := result.Forecast[0]
	assert.Equal(t, "2026-08-28", first.Date)
	assert.Equal(t, 100.00, first.ForecastedRevenue)
	assert.Equal(t, analytics.TrendStable, first.Trend)

	// No day in the future window overlaps history, so nothing is backtestable
	assert.Equal(t, 0, result.Summary.Accuracy.DataPoints)
	assert.Equal(t, DefaultForecastDays+1, result.Summary.Accuracy.TotalForecasts)
}

// TestGenerateForecastWeatherApplied tests that provider observations reach
// the per-day output
func TestGenerateForecastWeatherApplied(t *testing.T) {
	var records []analytics.TransactionRecord
	for i := 1; i <= 28; i++ {
		records = append(records, analytics.TransactionRecord{
			Amount:    100,
			Timestamp: serviceNow.AddDate(0, 0, -i),
		})
	}
	weather := &stubWeather{days: []analytics.WeatherDay{
		{Date: "2026-08-29", Temperature: 20, Precipitation: 12, WindSpeed: 5, WeatherCode: 25},
	}}
	svc := newTestService(&stubSource{records: records}, weather)

	result, err := svc.GenerateForecast(context.Background(), "org_123", nil, nil)
	require.NoError(t, err)

	day := result.Forecast[1]
	require.Equal(t, "2026-08-29", day.Date)
	assert.Equal(t, 0.60, day.Factors.WeatherFactor)
	assert.Equal(t, 60.00, day.ForecastedRevenue)
	require.NotNil(t, day.Weather)
}
