package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tillpoint/revenue-forecast/internal/analytics"
	"github.com/tillpoint/revenue-forecast/internal/models"
)

// ErrMissingOrganization is returned when a forecast is requested without an
// organization id. It is the only caller input rejected outright; every other
// degraded condition resolves to a best-effort forecast.
var ErrMissingOrganization = errors.New("organization id is required")

// DefaultForecastDays is the window length when the caller omits dates.
const DefaultForecastDays = 30

// WeatherProvider supplies per-day observations for the forecast window.
// Implementations are best-effort and return only the days they could obtain.
type WeatherProvider interface {
	GetWeather(ctx context.Context, start, end time.Time) []analytics.WeatherDay
}

// ForecastService runs the revenue forecast pipeline end to end: aggregate
// history, derive baseline/trend/seasonality, fetch weather, generate the
// day-by-day forecast, and score it against known actuals. Each run owns its
// intermediate state; concurrent runs for different organizations share
// nothing mutable.
type ForecastService struct {
	source   analytics.TransactionSource
	weather  WeatherProvider
	db       *gorm.DB
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewForecastService creates the forecast orchestrator. db may be nil, in
// which case run summaries are not persisted. loc is the organization-local
// timezone used for calendar bucketing.
func NewForecastService(source analytics.TransactionSource, weather WeatherProvider, db *gorm.DB, loc *time.Location, logger *zap.Logger) *ForecastService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ForecastService{
		source:   source,
		weather:  weather,
		db:       db,
		location: loc,
		logger:   logger.Named("forecast"),
		now:      time.Now,
	}
}

// GenerateForecast produces a forecast for [start, end] inclusive. Nil dates
// default to today through today+30 days in the organization-local timezone.
func (s *ForecastService) GenerateForecast(ctx context.Context, orgID string, start, end *time.Time) (*analytics.ForecastResult, error) {
	if orgID == "" {
		return nil, ErrMissingOrganization
	}

	tracer := otel.Tracer("revenue-forecast")
	ctx, span := tracer.Start(ctx, "forecast.generate")
	defer span.End()

	now := s.now().In(s.location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)

	windowStart := today
	if start != nil {
		windowStart = dateOnly(*start, s.location)
	}
	windowEnd := today.AddDate(0, 0, DefaultForecastDays)
	if end != nil {
		windowEnd = dateOnly(*end, s.location)
	}

	span.SetAttributes(
		attribute.String("org_id", orgID),
		attribute.String("window_start", windowStart.Format("2006-01-02")),
		attribute.String("window_end", windowEnd.Format("2006-01-02")),
	)

	aggregator := analytics.NewHistoricalAggregator(s.source, s.location, s.logger)
	history, stats := aggregator.Aggregate(ctx, orgID, now)

	baseline := analytics.RollingBaseline(history, now)
	trends := analytics.AnalyzeTrends(history, now)
	seasonal := analytics.BuildSeasonalProfile(history)

	var weatherDays []analytics.WeatherDay
	if s.weather != nil {
		weatherDays = s.weather.GetWeather(ctx, windowStart, windowEnd)
	}

	generator := analytics.NewGenerator(baseline, trends, seasonal, weatherDays, history)
	forecast := generator.Generate(windowStart, windowEnd)
	accuracy := analytics.SummarizeAccuracy(forecast)

	result := &analytics.ForecastResult{
		Forecast: forecast,
		Summary: analytics.ForecastSummary{
			RollingBaseline:       baseline,
			Trends:                trends,
			DataPoints:            len(history),
			TransactionsRetrieved: stats.Transactions,
			HistoryTruncated:      stats.Truncated,
			Period: analytics.ForecastPeriod{
				Start: windowStart.Format("2006-01-02"),
				End:   windowEnd.Format("2006-01-02"),
			},
			Accuracy: accuracy,
		},
	}

	s.persistRun(ctx, orgID, windowStart, windowEnd, result)

	s.logger.Info("forecast run completed",
		zap.String("org_id", orgID),
		zap.Int("days", len(forecast)),
		zap.Int("history_days", len(history)),
		zap.Bool("history_truncated", stats.Truncated),
		zap.Float64("baseline", baseline),
		zap.Float64("overall_accuracy", accuracy.Overall))

	return result, nil
}

// persistRun writes the run summary for later inspection. Failures are logged
// and swallowed; the returned result is the source of truth.
func (s *ForecastService) persistRun(ctx context.Context, orgID string, start, end time.Time, result *analytics.ForecastResult) {
	if s.db == nil {
		return
	}

	payload, err := json.Marshal(result.Summary)
	if err != nil {
		s.logger.Warn("failed to serialize run summary", zap.Error(err))
		return
	}

	run := models.ForecastRun{
		ID:               uuid.New(),
		OrganizationID:   orgID,
		PeriodStart:      start,
		PeriodEnd:        end,
		RollingBaseline:  result.Summary.RollingBaseline,
		DataPoints:       result.Summary.DataPoints,
		HistoryTruncated: result.Summary.HistoryTruncated,
		OverallAccuracy:  result.Summary.Accuracy.Overall,
		AccuracyRating:   string(result.Summary.Accuracy.Rating),
		Summary:          payload,
	}

	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		s.logger.Warn("failed to persist forecast run", zap.String("org_id", orgID), zap.Error(err))
	}
}

// dateOnly reinterprets a date-only value as midnight in loc. Callers supply
// calendar dates, not instants, so the year/month/day are taken literally
// rather than converted through the source zone.
func dateOnly(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
