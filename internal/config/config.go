package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"

	"github.com/tillpoint/revenue-forecast/internal/secrets"
)

// Config holds all configuration for the service
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Weather  WeatherConfig  `mapstructure:"weather"`
	Stripe   StripeConfig   `mapstructure:"stripe"`
	Forecast ForecastConfig `mapstructure:"forecast"`
	Log      LogConfig      `mapstructure:"log"`
}

// ForecastConfig selects where transaction history comes from: the local
// store ("database") or the payment processor directly ("stripe").
type ForecastConfig struct {
	Source string `mapstructure:"source"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// RedisConfig holds the weather cache connection settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WeatherConfig holds the weather provider settings. Latitude/longitude locate
// the organization's trading area; Timezone is the IANA zone used to bucket
// transactions into local calendar days.
type WeatherConfig struct {
	BaseURL           string  `mapstructure:"base_url"`
	Latitude          float64 `mapstructure:"latitude"`
	Longitude         float64 `mapstructure:"longitude"`
	Timezone          string  `mapstructure:"timezone"`
	CacheTTLHours     int     `mapstructure:"cache_ttl_hours"`
	RequestsPerMinute int     `mapstructure:"requests_per_minute"`
}

// StripeConfig holds the payment processor ingestion settings
type StripeConfig struct {
	SecretKey string `mapstructure:"secret_key"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from defaults, an optional config.yaml, environment
// variables, and (when VAULT_ADDR/VAULT_TOKEN are set) Vault secret overrides.
func Load() (*Config, error) {
	viper.SetDefault("server.port", "8086")
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "revenue_forecast")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("weather.base_url", "https://api.open-meteo.com/v1/forecast")
	viper.SetDefault("weather.latitude", -33.8688)
	viper.SetDefault("weather.longitude", 151.2093)
	viper.SetDefault("weather.timezone", "Australia/Sydney")
	viper.SetDefault("weather.cache_ttl_hours", 6)
	viper.SetDefault("weather.requests_per_minute", 30)
	viper.SetDefault("forecast.source", "database")
	viper.SetDefault("log.level", "info")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/app/config")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.AutomaticEnv()

	bindings := map[string]string{
		"server.port":       "SERVER_PORT",
		"server.host":       "SERVER_HOST",
		"database.host":     "DATABASE_HOST",
		"database.port":     "DATABASE_PORT",
		"database.name":     "DATABASE_NAME",
		"database.user":     "DATABASE_USER",
		"database.password": "DATABASE_PASSWORD",
		"database.ssl_mode": "DATABASE_SSL_MODE",
		"redis.addr":        "REDIS_ADDR",
		"redis.password":    "REDIS_PASSWORD",
		"redis.db":          "REDIS_DB",
		"weather.base_url":  "WEATHER_BASE_URL",
		"weather.latitude":  "WEATHER_LATITUDE",
		"weather.longitude": "WEATHER_LONGITUDE",
		"weather.timezone":  "WEATHER_TIMEZONE",
		"stripe.secret_key": "STRIPE_SECRET_KEY",
		"forecast.source":   "FORECAST_SOURCE",
		"log.level":         "LOG_LEVEL",
	}
	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyVaultOverrides(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// applyVaultOverrides replaces credentials with values from Vault when a Vault
// environment is present. Missing individual secrets fall through to the
// already-loaded values.
func applyVaultOverrides(config *Config) error {
	addr := os.Getenv("VAULT_ADDR")
	token := os.Getenv("VAULT_TOKEN")
	if addr == "" || token == "" {
		return nil
	}

	vault, err := secrets.NewVaultClient(addr, token)
	if err != nil {
		return fmt.Errorf("failed to create vault client: %w", err)
	}

	if creds, err := vault.GetDatabaseCredentials("revenue-forecast"); err == nil {
		if v, ok := creds["user"]; ok {
			config.Database.User = v
		}
		if v, ok := creds["password"]; ok {
			config.Database.Password = v
		}
		if v, ok := creds["host"]; ok {
			config.Database.Host = v
		}
		if v, ok := creds["port"]; ok {
			if port, err := strconv.Atoi(v); err == nil {
				config.Database.Port = port
			}
		}
	}

	if creds, err := vault.GetRedisCredentials("revenue-forecast"); err == nil {
		if v, ok := creds["addr"]; ok {
			config.Redis.Addr = v
		}
		if v, ok := creds["password"]; ok {
			config.Redis.Password = v
		}
	}

	if key, err := vault.GetStripeSecretKey("revenue-forecast"); err == nil && key != "" {
		config.Stripe.SecretKey = key
	}

	return nil
}
