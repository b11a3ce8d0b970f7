package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tillpoint/revenue-forecast/internal/analytics"
	"github.com/tillpoint/revenue-forecast/internal/api"
	"github.com/tillpoint/revenue-forecast/internal/config"
	"github.com/tillpoint/revenue-forecast/internal/database"
	"github.com/tillpoint/revenue-forecast/internal/ingest"
	"github.com/tillpoint/revenue-forecast/internal/services"
	"github.com/tillpoint/revenue-forecast/internal/weather"
)

func main() {
	app := fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
		fx.Provide(
			config.Load,
			initLogger,
			initDatabase,
			initRedis,
			initWeatherProvider,
			initTransactionSource,
			initForecastService,
			func(svc *services.ForecastService) api.ForecastGenerator { return svc },
			api.NewHandlers,
		),
		fx.Invoke(startServer),
		fx.StopTimeout(30*time.Second),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal("Failed to start revenue forecast service", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down revenue forecast service...")
	if err := app.Stop(context.Background()); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Shutdown complete")
}

func initLogger(cfg *config.Config) *zap.Logger {
	var logLevel zap.AtomicLevel
	switch cfg.Log.Level {
	case "debug":
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		logLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		logLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = logLevel
	logger, _ := zapConfig.Build()
	return logger
}

func initDatabase(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func initRedis(cfg *config.Config, logger *zap.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		// Weather falls back to the network path when the cache is down.
		logger.Warn("Redis unavailable, weather cache disabled", zap.Error(err))
	}
	return client
}

func initWeatherProvider(cfg *config.Config, client *redis.Client, logger *zap.Logger) *weather.Provider {
	meteo := weather.NewOpenMeteoClient(cfg.Weather.BaseURL, cfg.Weather.RequestsPerMinute)
	ttl := time.Duration(cfg.Weather.CacheTTLHours) * time.Hour
	return weather.NewProvider(weather.NewRedisCache(client), meteo, cfg.Weather.Latitude, cfg.Weather.Longitude, ttl, logger)
}

func initTransactionSource(cfg *config.Config, db *gorm.DB, logger *zap.Logger) (analytics.TransactionSource, error) {
	switch cfg.Forecast.Source {
	case "stripe":
		if cfg.Stripe.SecretKey == "" {
			return nil, fmt.Errorf("forecast.source is stripe but stripe.secret_key is not set")
		}
		return ingest.NewStripeTransactionSource(cfg.Stripe.SecretKey, logger), nil
	case "database", "":
		return database.NewTransactionStore(db, logger), nil
	default:
		return nil, fmt.Errorf("unknown forecast source %q", cfg.Forecast.Source)
	}
}

func initForecastService(cfg *config.Config, source analytics.TransactionSource, provider *weather.Provider, db *gorm.DB, logger *zap.Logger) (*services.ForecastService, error) {
	loc, err := time.LoadLocation(cfg.Weather.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Weather.Timezone, err)
	}
	return services.NewForecastService(source, provider, db, loc, logger), nil
}

func startServer(lc fx.Lifecycle, cfg *config.Config, handlers *api.Handlers, logger *zap.Logger) {
	router := gin.New()
	router.Use(gin.Recovery())
	handlers.RegisterRoutes(router)

	server := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Starting revenue forecast service", zap.String("addr", server.Addr))
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping revenue forecast service")
			return server.Shutdown(ctx)
		},
	})
}
