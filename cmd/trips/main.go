package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/ridewire/ridewire/internal/pkg/config"
	"github.com/ridewire/ridewire/internal/pkg/database"
	"github.com/ridewire/ridewire/internal/pkg/logger"
	"github.com/ridewire/ridewire/internal/pkg/routing"
	"github.com/ridewire/ridewire/internal/pkg/server"
	"github.com/ridewire/ridewire/services/trips"
	"github.com/ridewire/ridewire/services/trips/handler"
	httpHandler "github.com/ridewire/ridewire/services/trips/handler/http"
	memoryRepo "github.com/ridewire/ridewire/services/trips/repository/memory"
	redisRepo "github.com/ridewire/ridewire/services/trips/repository/redis"
	"github.com/ridewire/ridewire/services/trips/usecase"
	"go.uber.org/zap"
)

func main() {
	appName := "trip-service"
	configPath := config.GetEnv("CONFIG_PATH", "config/trips.env")
	configs := config.InitConfig(configPath)

	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:    configs.Logger.Level,
		FilePath: configs.Logger.FilePath,
		Console:  configs.Logger.Console,
	})
	if err != nil {
		log.Fatalf("Failed to create Zap logger: %v", err)
	}
	defer zapLogger.Close()
	logger.SetGlobalLogger(zapLogger)

	zapLogger.Info("Starting application",
		zap.String("app", appName),
		zap.String("version", configs.App.Version),
		zap.String("environment", configs.App.Environment),
	)

	// Repository: redis when configured, in-memory otherwise
	var tripRepo trips.TripRepo
	if configs.Redis.Host != "" {
		redisClient, err := database.NewRedisClient(configs.Redis)
		if err != nil {
			zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		tripRepo = redisRepo.NewTripRepository(configs, redisClient)
		zapLogger.Info("Using redis trip store",
			zap.String("host", configs.Redis.Host),
			zap.Int("port", configs.Redis.Port))
	} else {
		tripRepo = memoryRepo.NewTripRepository()
		zapLogger.Info("Using in-memory trip store")
	}

	tripUC := usecase.NewTripService(configs, tripRepo, routing.NewHaversineEstimator(), zapLogger)

	tripHandler := httpHandler.NewTripHandler(tripUC)
	h := handler.NewHandler(tripHandler)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	h.RegisterRoutes(e)

	srv := server.NewGracefulServer(e, zapLogger, configs.Server.Port)
	if err := srv.Start(); err != nil {
		zapLogger.Fatal("Server error", zap.Error(err))
	}
}
