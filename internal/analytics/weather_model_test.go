package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestWeatherImpactFactorNeutral tests that benign weather leaves demand untouched
func TestWeatherImpactFactorNeutral(t *testing.T) {
	day := WeatherDay{
		Date:          "2026-09-01",
		Temperature:   18,
		Precipitation: 0,
		WindSpeed:     5,
		WeatherCode:   21,
	}
	assert.Equal(t, 1.0, WeatherImpactFactor(day))
}

// TestWeatherImpactFactorSevere tests the compounding of the worst tier in
// every dimension
func TestWeatherImpactFactorSevere(t *testing.T) {
	day := WeatherDay{
		Date:          "2026-09-01",
		Temperature:   -2,
		Precipitation: 12,
		WindSpeed:     20,
		WeatherCode:   85,
	}
	// 0.70 * 0.60 * 0.85 * 0.70 = 0.2499, rounded to 0.25
	assert.Equal(t, 0.25, WeatherImpactFactor(day))
}

// TestWeatherImpactFactorClearSkies tests that clear weather lifts demand
func TestWeatherImpactFactorClearSkies(t *testing.T) {
	day := WeatherDay{
		Date:          "2026-09-01",
		Temperature:   22,
		Precipitation: 0,
		WindSpeed:     3,
		WeatherCode:   1,
	}
	assert.Equal(t, 1.10, WeatherImpactFactor(day))
}

func TestTemperatureTiers(t *testing.T) {
	cases := []struct {
		celsius float64
		factor  float64
	}{
		{-5, 0.70},
		{4.9, 0.70},
		{5, 0.85},
		{9.9, 0.85},
		{10, 1.00},
		{20, 1.00},
		{25, 1.00},
		{25.1, 0.90},
		{30, 0.90},
		{30.1, 0.80},
		{40, 0.80},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.factor, temperatureFactor(tc.celsius), "temperature %v", tc.celsius)
	}
}

func TestPrecipitationTiers(t *testing.T) {
	cases := []struct {
		mm     float64
		factor float64
	}{
		{0, 1.00},
		{1, 1.00},
		{1.1, 0.90},
		{5, 0.90},
		{5.1, 0.75},
		{10, 0.75},
		{10.1, 0.60},
		{25, 0.60},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.factor, precipitationFactor(tc.mm), "precipitation %v", tc.mm)
	}
}

func TestWindTiers(t *testing.T) {
	cases := []struct {
		kmh    float64
		factor float64
	}{
		{0, 1.00},
		{10, 1.00},
		{10.1, 0.95},
		{15, 0.95},
		{15.1, 0.85},
		{40, 0.85},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.factor, windFactor(tc.kmh), "wind %v", tc.kmh)
	}
}

func TestWeatherCodeTiers(t *testing.T) {
	cases := []struct {
		code   int
		factor float64
	}{
		{0, 1.10},
		{9, 1.10},
		{10, 1.05},
		{19, 1.05},
		{20, 1.00},
		{39, 1.00},
		{40, 0.95},
		{59, 0.95},
		{60, 0.85},
		{79, 0.85},
		{80, 0.70},
		{99, 0.70},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.factor, weatherCodeFactor(tc.code), "code %v", tc.code)
	}
}
