package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/ridewire/ridewire/internal/pkg/models"
)

// Canonical dispatch timing defaults. The offer deadline is 60 seconds;
// older builds disagreed between 30s and 60s, and 60s is the documented
// choice.
const (
	DefaultAcceptCountdown     = 60 * time.Second
	DefaultMinPollInterval     = 5 * time.Second
	DefaultMaxPollInterval     = 15 * time.Second
	DefaultPollBackoffFactor   = 1.5
	DefaultPollBackoffSteps    = 3
	DefaultReconcileInterval   = 3 * time.Second
	DefaultConfirmWaitInterval = 2 * time.Second
	DefaultMeterTickInterval   = 1 * time.Second
)

// Fixed-rate fare schedule defaults, in currency units
const (
	DefaultApproachRatePerKm = 0.500
	DefaultBaseFare          = 5.000
	DefaultRatePerKm         = 2.500
)

func InitConfig(configPath string) *models.Config {
	local := GetEnv("APP_ENV", "local")
	if local == "local" {
		// Load config from file
		err := godotenv.Load(configPath)
		if err != nil {
			log.Println("error loading config from file", err)
		}
	}
	// Create config from environment variables
	return loadConfigFromEnv()
}

func loadConfigFromEnv() *models.Config {
	configs := &models.Config{}

	// App config
	configs.App.Name = GetEnv("APP_NAME", "")
	configs.App.Environment = GetEnv("APP_ENV", "")
	configs.App.Debug = GetEnvAsBool("APP_DEBUG", true)
	configs.App.Version = GetEnv("APP_VERSION", "")

	// Server config
	configs.Server.Host = GetEnv("SERVER_HOST", "")
	configs.Server.Port = GetEnvAsInt("SERVER_PORT", 0)
	configs.Server.ReadTimeout = GetEnvAsInt("SERVER_READ_TIMEOUT", 0)
	configs.Server.WriteTimeout = GetEnvAsInt("SERVER_WRITE_TIMEOUT", 0)
	configs.Server.ShutdownTimeout = GetEnvAsInt("SERVER_SHUTDOWN_TIMEOUT", 30)

	// Redis config
	configs.Redis.Host = GetEnv("REDIS_HOST", "")
	configs.Redis.Port = GetEnvAsInt("REDIS_PORT", 6379)
	configs.Redis.Password = GetEnv("REDIS_PASSWORD", "")
	configs.Redis.DB = GetEnvAsInt("REDIS_DB", 0)
	configs.Redis.PoolSize = GetEnvAsInt("REDIS_POOL_SIZE", 10)

	// Logger config
	configs.Logger.Level = GetEnv("LOG_LEVEL", "info")
	configs.Logger.FilePath = GetEnv("LOG_FILE_PATH", "")
	configs.Logger.Console = GetEnvAsBool("LOG_CONSOLE", true)

	// Trip service config
	configs.TripService.URL = GetEnv("TRIP_SERVICE_URL", "http://localhost:9990")
	configs.TripService.APIToken = GetEnv("TRIP_SERVICE_API_TOKEN", "")
	configs.TripService.UserID = GetEnv("TRIP_SERVICE_USER_ID", "")
	configs.TripService.Timeout = GetEnvAsDuration("TRIP_SERVICE_TIMEOUT", 10*time.Second)

	// Dispatch config
	configs.Dispatch.AcceptCountdown = GetEnvAsDuration("DISPATCH_ACCEPT_COUNTDOWN", DefaultAcceptCountdown)
	configs.Dispatch.MinPollInterval = GetEnvAsDuration("DISPATCH_MIN_POLL_INTERVAL", DefaultMinPollInterval)
	configs.Dispatch.MaxPollInterval = GetEnvAsDuration("DISPATCH_MAX_POLL_INTERVAL", DefaultMaxPollInterval)
	configs.Dispatch.PollBackoffFactor = GetEnvAsFloat("DISPATCH_POLL_BACKOFF_FACTOR", DefaultPollBackoffFactor)
	configs.Dispatch.PollBackoffSteps = GetEnvAsInt("DISPATCH_POLL_BACKOFF_STEPS", DefaultPollBackoffSteps)
	configs.Dispatch.ReconcileInterval = GetEnvAsDuration("DISPATCH_RECONCILE_INTERVAL", DefaultReconcileInterval)
	configs.Dispatch.ConfirmWaitInterval = GetEnvAsDuration("DISPATCH_CONFIRM_WAIT_INTERVAL", DefaultConfirmWaitInterval)
	configs.Dispatch.MeterTickInterval = GetEnvAsDuration("DISPATCH_METER_TICK_INTERVAL", DefaultMeterTickInterval)

	// Retry config
	configs.Retry.MaxRetries = GetEnvAsInt("RETRY_MAX_RETRIES", 3)
	configs.Retry.BaseDelay = GetEnvAsDuration("RETRY_BASE_DELAY", 500*time.Millisecond)
	configs.Retry.MaxDelay = GetEnvAsDuration("RETRY_MAX_DELAY", 10*time.Second)
	configs.Retry.Multiplier = GetEnvAsFloat("RETRY_MULTIPLIER", 2.0)

	// Pricing config
	configs.Pricing.ApproachRatePerKm = GetEnvAsFloat("PRICING_APPROACH_RATE_PER_KM", DefaultApproachRatePerKm)
	configs.Pricing.BaseFare = GetEnvAsFloat("PRICING_BASE_FARE", DefaultBaseFare)
	configs.Pricing.RatePerKm = GetEnvAsFloat("PRICING_RATE_PER_KM", DefaultRatePerKm)
	configs.Pricing.Currency = GetEnv("PRICING_CURRENCY", "OMR")

	return configs
}

// Helper functions to get environment variables with different types
func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func GetEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default: %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration value for %s, using default: %s", key, defaultValue)
		return defaultValue
	}
	return value
}
