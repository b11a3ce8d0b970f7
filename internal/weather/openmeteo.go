package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/tillpoint/revenue-forecast/internal/analytics"
)

// OpenMeteoClient fetches daily forecasts from an Open-Meteo compatible API.
// Outbound calls are rate limited so a burst of forecast runs cannot hammer
// the public endpoint.
type OpenMeteoClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewOpenMeteoClient creates a client against baseURL, allowing
// requestsPerMinute outbound calls.
func NewOpenMeteoClient(baseURL string, requestsPerMinute int) *OpenMeteoClient {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	return &OpenMeteoClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute),
	}
}

type openMeteoResponse struct {
	Daily struct {
		Time             []string  `json:"time"`
		TemperatureMax   []float64 `json:"temperature_2m_max"`
		TemperatureMin   []float64 `json:"temperature_2m_min"`
		PrecipitationSum []float64 `json:"precipitation_sum"`
		WeatherCode      []int     `json:"weathercode"`
		WindSpeedMax     []float64 `json:"windspeed_10m_max"`
		HumidityMean     []float64 `json:"relative_humidity_2m_mean"`
	} `json:"daily"`
}

// FetchDaily retrieves one WeatherDay per date in [start, end]. The day's
// temperature is the mean of the daily max and min.
func (c *OpenMeteoClient) FetchDaily(ctx context.Context, latitude, longitude float64, start, end time.Time) ([]analytics.WeatherDay, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", latitude))
	params.Set("longitude", fmt.Sprintf("%.4f", longitude))
	params.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum,weathercode,windspeed_10m_max,relative_humidity_2m_mean")
	params.Set("timezone", "auto")
	params.Set("start_date", start.Format("2006-01-02"))
	params.Set("end_date", end.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}

	days := make([]analytics.WeatherDay, 0, len(payload.Daily.Time))
	for i, date := range payload.Daily.Time {
		day := analytics.WeatherDay{Date: date}
		if i < len(payload.Daily.TemperatureMax) && i < len(payload.Daily.TemperatureMin) {
			day.Temperature = (payload.Daily.TemperatureMax[i] + payload.Daily.TemperatureMin[i]) / 2
		}
		if i < len(payload.Daily.PrecipitationSum) {
			day.Precipitation = payload.Daily.PrecipitationSum[i]
		}
		if i < len(payload.Daily.WeatherCode) {
			day.WeatherCode = payload.Daily.WeatherCode[i]
		}
		if i < len(payload.Daily.WindSpeedMax) {
			day.WindSpeed = payload.Daily.WindSpeedMax[i]
		}
		if i < len(payload.Daily.HumidityMean) {
			day.Humidity = payload.Daily.HumidityMean[i]
		}
		days = append(days, day)
	}

	return days, nil
}
