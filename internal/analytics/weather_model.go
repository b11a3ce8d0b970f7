package analytics

// Weather demand adjustment tiers. This is a flat rule table, not a fitted
// model; the thresholds are the behavioral contract and must stay verifiable
// at a glance.
const (
	tempFreezingFactor  = 0.70 // below 5 C
	tempColdFactor      = 0.85 // 5-10 C
	tempScorchingFactor = 0.80 // above 30 C
	tempHotFactor       = 0.90 // 25-30 C

	rainHeavyFactor    = 0.60 // above 10 mm
	rainModerateFactor = 0.75 // 5-10 mm
	rainLightFactor    = 0.90 // 1-5 mm

	windStrongFactor = 0.85 // above 15 km/h
	windBreezyFactor = 0.95 // 10-15 km/h

	codeSevereFactor   = 0.70 // WMO code >= 80 (showers, thunderstorms)
	codeRainFactor     = 0.85 // 60-79
	codeDrizzleFactor  = 0.95 // 40-59
	codeOvercastFactor = 1.00 // 20-39
	codeCloudyFactor   = 1.05 // 10-19
	codeClearFactor    = 1.10 // below 10

	// NeutralWeatherFactor is applied when no observation exists for a date.
	NeutralWeatherFactor = 1.0
)

// WeatherImpactFactor maps one day's weather to a multiplicative demand
// factor: the product of four independent tiered adjustments (temperature,
// precipitation, wind, coded condition), rounded to 2 decimal places. Each
// dimension contributes exactly one multiplier.
func WeatherImpactFactor(w WeatherDay) float64 {
	factor := 1.0
	factor *= temperatureFactor(w.Temperature)
	factor *= precipitationFactor(w.Precipitation)
	factor *= windFactor(w.WindSpeed)
	factor *= weatherCodeFactor(w.WeatherCode)
	return round2(factor)
}

func temperatureFactor(celsius float64) float64 {
	switch {
	case celsius < 5:
		return tempFreezingFactor
	case celsius < 10:
		return tempColdFactor
	case celsius > 30:
		return tempScorchingFactor
	case celsius > 25:
		return tempHotFactor
	default:
		return 1.0
	}
}

func precipitationFactor(mm float64) float64 {
	switch {
	case mm > 10:
		return rainHeavyFactor
	case mm > 5:
		return rainModerateFactor
	case mm > 1:
		return rainLightFactor
	default:
		return 1.0
	}
}

func windFactor(kmh float64) float64 {
	switch {
	case kmh > 15:
		return windStrongFactor
	case kmh > 10:
		return windBreezyFactor
	default:
		return 1.0
	}
}

func weatherCodeFactor(code int) float64 {
	switch {
	case code >= 80:
		return codeSevereFactor
	case code >= 60:
		return codeRainFactor
	case code >= 40:
		return codeDrizzleFactor
	case code >= 20:
		return codeOvercastFactor
	case code >= 10:
		return codeCloudyFactor
	default:
		return codeClearFactor
	}
}
