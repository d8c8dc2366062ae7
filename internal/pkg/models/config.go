package models

import "time"

// Config represents application configuration
type Config struct {
	App         AppConfig
	Server      ServerConfig
	Redis       RedisConfig
	Logger      LoggerConfig
	TripService TripServiceConfig
	Dispatch    DispatchConfig
	Retry       RetryConfig
	Pricing     PricingConfig
}

// AppConfig contains application-specific configuration
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Version     string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// LoggerConfig contains logger configuration
type LoggerConfig struct {
	Level    string
	FilePath string
	Console  bool
}

// TripServiceConfig points the clients at the authoritative trip
// service. UserID is the identity the client acts as.
type TripServiceConfig struct {
	URL      string
	APIToken string
	UserID   string
	Timeout  time.Duration
}

// DispatchConfig carries every timer interval the engine runs on.
// AcceptCountdown is the canonical offer deadline: 60s. The 30s figure
// seen in older builds is deliberately not used.
type DispatchConfig struct {
	AcceptCountdown     time.Duration
	MinPollInterval     time.Duration
	MaxPollInterval     time.Duration
	PollBackoffFactor   float64
	PollBackoffSteps    int
	ReconcileInterval   time.Duration
	ConfirmWaitInterval time.Duration
	MeterTickInterval   time.Duration
}

// RetryConfig bounds the accept/cancel/complete retry loops
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
}

// PricingConfig is the fixed-rate fare schedule
type PricingConfig struct {
	ApproachRatePerKm float64
	BaseFare          float64
	RatePerKm         float64
	Currency          string
}
