package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/tillpoint/revenue-forecast/internal/analytics"
)

// Cache is the per-day weather cache. The production implementation is Redis;
// tests substitute an in-memory fake.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
}

// RedisCache adapts a redis client to the Cache interface.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps client as a weather cache.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return value, true
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	c.client.Set(ctx, key, value, ttl)
}

// Provider serves per-day weather observations for the forecast window: local
// cache first, one network fallback for the missing days, and an accepted
// shortfall on further failure. A forecast run never errors purely because
// weather is unavailable.
type Provider struct {
	cache     Cache
	client    *OpenMeteoClient
	latitude  float64
	longitude float64
	ttl       time.Duration
	logger    *zap.Logger
}

// NewProvider creates a weather provider for a fixed location.
func NewProvider(cache Cache, client *OpenMeteoClient, latitude, longitude float64, ttl time.Duration, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		cache:     cache,
		client:    client,
		latitude:  latitude,
		longitude: longitude,
		ttl:       ttl,
		logger:    logger.Named("weather"),
	}
}

// GetWeather returns whatever observations are available for [start, end].
// Days missing from both the cache and the network are simply absent from the
// result; the forecast applies a neutral factor for them.
func (p *Provider) GetWeather(ctx context.Context, start, end time.Time) []analytics.WeatherDay {
	var days []analytics.WeatherDay
	var missing []time.Time

	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		if day, ok := p.fromCache(ctx, date); ok {
			days = append(days, day)
		} else {
			missing = append(missing, date)
		}
	}

	if len(missing) == 0 {
		return days
	}

	fetched, err := p.client.FetchDaily(ctx, p.latitude, p.longitude, missing[0], missing[len(missing)-1])
	if err != nil {
		p.logger.Warn("weather fetch failed, forecasting with partial weather",
			zap.Int("cached_days", len(days)),
			zap.Int("missing_days", len(missing)),
			zap.Error(err))
		return days
	}

	wanted := make(map[string]bool, len(missing))
	for _, date := range missing {
		wanted[date.Format("2006-01-02")] = true
	}
	for _, day := range fetched {
		if !wanted[day.Date] {
			continue
		}
		p.toCache(ctx, day)
		days = append(days, day)
	}

	return days
}

func (p *Provider) cacheKey(date time.Time) string {
	return fmt.Sprintf("weather:%.4f:%.4f:%s", p.latitude, p.longitude, date.Format("2006-01-02"))
}

func (p *Provider) fromCache(ctx context.Context, date time.Time) (analytics.WeatherDay, bool) {
	raw, ok := p.cache.Get(ctx, p.cacheKey(date))
	if !ok {
		return analytics.WeatherDay{}, false
	}
	var day analytics.WeatherDay
	if err := json.Unmarshal([]byte(raw), &day); err != nil {
		return analytics.WeatherDay{}, false
	}
	return day, true
}

func (p *Provider) toCache(ctx context.Context, day analytics.WeatherDay) {
	raw, err := json.Marshal(day)
	if err != nil {
		return
	}
	date, err := time.Parse("2006-01-02", day.Date)
	if err != nil {
		return
	}
	p.cache.Set(ctx, p.cacheKey(date), string(raw), p.ttl)
}
