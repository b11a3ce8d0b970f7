package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillpoint/revenue-forecast/internal/analytics"
)

type memoryCache struct {
	mu    sync.Mutex
	store map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{store: make(map[string]string)}
}

func (c *memoryCache) Get(ctx context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.store[key]
	return value, ok
}

func (c *memoryCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = value
}

func openMeteoStub(t *testing.T, hits *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		start := r.URL.Query().Get("start_date")
		end := r.URL.Query().Get("end_date")
		from, err := time.Parse("2006-01-02", start)
		require.NoError(t, err)
		to, err := time.Parse("2006-01-02", end)
		require.NoError(t, err)

		var daily struct {
			Time             []string  `json:"time"`
			TemperatureMax   []float64 `json:"temperature_2m_max"`
			TemperatureMin   []float64 `json:"temperature_2m_min"`
			PrecipitationSum []float64 `json:"precipitation_sum"`
			WeatherCode      []int     `json:"weathercode"`
			WindSpeedMax     []float64 `json:"windspeed_10m_max"`
			HumidityMean     []float64 `json:"relative_humidity_2m_mean"`
		}
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			daily.Time = append(daily.Time, d.Format("2006-01-02"))
			daily.TemperatureMax = append(daily.TemperatureMax, 24)
			daily.TemperatureMin = append(daily.TemperatureMin, 16)
			daily.PrecipitationSum = append(daily.PrecipitationSum, 0.4)
			daily.WeatherCode = append(daily.WeatherCode, 2)
			daily.WindSpeedMax = append(daily.WindSpeedMax, 8)
			daily.HumidityMean = append(daily.HumidityMean, 55)
		}
		json.NewEncoder(w).Encode(map[string]any{"daily": daily})
	}))
}

// TestGetWeatherFetchesAndCaches tests the cold path: one network call covers
// the window and every fetched day lands in the cache
func TestGetWeatherFetchesAndCaches(t *testing.T) {
	hits := 0
	server := openMeteoStub(t, &hits)
	defer server.Close()

	cache := newMemoryCache()
	client := NewOpenMeteoClient(server.URL, 60)
	provider := NewProvider(cache, client, -33.8688, 151.2093, time.Hour, nil)

	start := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 2)

	days := provider.GetWeather(context.Background(), start, end)
	require.Len(t, days, 3)
	assert.Equal(t, 1, hits)
	assert.Equal(t, "2026-09-01", days[0].Date)
	assert.Equal(t, 20.0, days[0].Temperature)
	assert.Equal(t, 0.4, days[0].Precipitation)
	assert.Equal(t, 2, days[0].WeatherCode)
	assert.Len(t, cache.store, 3)
}

// TestGetWeatherCacheHitSkipsNetwork tests the warm path
func TestGetWeatherCacheHitSkipsNetwork(t *testing.T) {
	hits := 0
	server := openMeteoStub(t, &hits)
	defer server.Close()

	cache := newMemoryCache()
	client := NewOpenMeteoClient(server.URL, 60)
	provider := NewProvider(cache, client, -33.8688, 151.2093, time.Hour, nil)

	start := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	provider.GetWeather(context.Background(), start, end)
	require.Equal(t, 1, hits)

	days := provider.GetWeather(context.Background(), start, end)
	assert.Equal(t, 1, hits, "second call must be served from cache")
	require.Len(t, days, 2)
}

// TestGetWeatherPartialCacheFetchesGap tests that only the uncached span is
// requested and the cached day is still returned
func TestGetWeatherPartialCacheFetchesGap(t *testing.T) {
	hits := 0
	server := openMeteoStub(t, &hits)
	defer server.Close()

	cache := newMemoryCache()
	cached := analytics.WeatherDay{Date: "2026-09-01", Temperature: 30}
	raw, err := json.Marshal(cached)
	require.NoError(t, err)
	cache.store[fmt.Sprintf("weather:%.4f:%.4f:%s", -33.8688, 151.2093, "2026-09-01")] = string(raw)

	client := NewOpenMeteoClient(server.URL, 60)
	provider := NewProvider(cache, client, -33.8688, 151.2093, time.Hour, nil)

	start := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 2)

	days := provider.GetWeather(context.Background(), start, end)
	require.Len(t, days, 3)
	assert.Equal(t, 1, hits)

	byDate := make(map[string]analytics.WeatherDay, len(days))
	for _, d := range days {
		byDate[d.Date] = d
	}
	assert.Equal(t, 30.0, byDate["2026-09-01"].Temperature)
	assert.Equal(t, 20.0, byDate["2026-09-02"].Temperature)
}

// TestGetWeatherFetchFailureReturnsCachedOnly tests graceful degradation when
// the upstream API is down
func TestGetWeatherFetchFailureReturnsCachedOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cache := newMemoryCache()
	cached := analytics.WeatherDay{Date: "2026-09-01", Temperature: 22}
	raw, err := json.Marshal(cached)
	require.NoError(t, err)
	cache.store[fmt.Sprintf("weather:%.4f:%.4f:%s", -33.8688, 151.2093, "2026-09-01")] = string(raw)

	client := NewOpenMeteoClient(server.URL, 60)
	provider := NewProvider(cache, client, -33.8688, 151.2093, time.Hour, nil)

	start := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 3)

	days := provider.GetWeather(context.Background(), start, end)
	require.Len(t, days, 1)
	assert.Equal(t, "2026-09-01", days[0].Date)
}

// TestFetchDailyStatusError tests that non-200 responses surface as errors
func TestFetchDailyStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewOpenMeteoClient(server.URL, 60)
	start := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	_, err := client.FetchDaily(context.Background(), -33.8688, 151.2093, start, start)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
