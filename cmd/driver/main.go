package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/ridewire/ridewire/internal/pkg/config"
	"github.com/ridewire/ridewire/internal/pkg/logger"
	"github.com/ridewire/ridewire/internal/pkg/routing"
	"github.com/ridewire/ridewire/internal/pkg/server"
	"github.com/ridewire/ridewire/internal/pkg/tripapi"
	"github.com/ridewire/ridewire/services/driver/handler"
	httpHandler "github.com/ridewire/ridewire/services/driver/handler/http"
	wsHandler "github.com/ridewire/ridewire/services/driver/handler/websocket"
	"github.com/ridewire/ridewire/services/driver/usecase"
	"go.uber.org/zap"
)

func main() {
	appName := "driver-app"
	configPath := config.GetEnv("CONFIG_PATH", "config/driver.env")
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

	// Trip service client, acting as the configured driver identity
	tripClient := tripapi.NewClient(tripapi.Config{
		BaseURL:  configs.TripService.URL,
		APIToken: configs.TripService.APIToken,
		UserID:   configs.TripService.UserID,
		Timeout:  configs.TripService.Timeout,
	}, zapLogger)

	// Core engine
	driverUC := usecase.NewDriverEngine(configs, tripClient, routing.NewHaversineEstimator(), zapLogger)
	defer driverUC.Shutdown()

	// Handlers
	driverHandler := httpHandler.NewDriverHandler(driverUC)
	streamHandler := wsHandler.NewStreamHandler(driverUC)
	h := handler.NewHandler(driverHandler, streamHandler)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	h.RegisterRoutes(e)

	srv := server.NewGracefulServer(e, zapLogger, configs.Server.Port)
	if err := srv.Start(); err != nil {
		zapLogger.Fatal("Server error", zap.Error(err))
	}
}
