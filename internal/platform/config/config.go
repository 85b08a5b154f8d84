package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	JWTSecret         string
	JWTExpiryDuration time.Duration

	// Rate gate
	RateMaxAge      time.Duration   // rates older than this are stale for posting
	RateMaxVariance decimal.Decimal // tolerated relative deviation from the stored rate

	// Journal engine
	PostingRetryAttempts int
	PostingRetryBackoff  time.Duration

	// Per-tenant request rate limit, limiter format (e.g. "100-M")
	RequestRateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("RATE_MAX_AGE", "1h")
	viper.SetDefault("RATE_MAX_VARIANCE", "0.05")
	viper.SetDefault("POSTING_RETRY_ATTEMPTS", 3)
	viper.SetDefault("POSTING_RETRY_BACKOFF", "25ms")
	viper.SetDefault("REQUEST_RATE_LIMIT", "300-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}

	var err error
	cfg.JWTExpiryDuration, err = time.ParseDuration(viper.GetString("JWT_EXPIRY_DURATION"))
	if err != nil {
		cfg.JWTExpiryDuration = time.Hour
		log.Printf("Warning: invalid JWT_EXPIRY_DURATION, defaulting to %s\n", cfg.JWTExpiryDuration)
	}

	cfg.RateMaxAge, err = time.ParseDuration(viper.GetString("RATE_MAX_AGE"))
	if err != nil {
		cfg.RateMaxAge = time.Hour
		log.Printf("Warning: invalid RATE_MAX_AGE, defaulting to %s\n", cfg.RateMaxAge)
	}

	cfg.RateMaxVariance, err = decimal.NewFromString(viper.GetString("RATE_MAX_VARIANCE"))
	if err != nil || cfg.RateMaxVariance.IsNegative() {
		cfg.RateMaxVariance = decimal.RequireFromString("0.05")
		log.Printf("Warning: invalid RATE_MAX_VARIANCE, defaulting to %s\n", cfg.RateMaxVariance)
	}

	cfg.PostingRetryAttempts = viper.GetInt("POSTING_RETRY_ATTEMPTS")
	if cfg.PostingRetryAttempts < 1 {
		cfg.PostingRetryAttempts = 3
	}

	cfg.PostingRetryBackoff, err = time.ParseDuration(viper.GetString("POSTING_RETRY_BACKOFF"))
	if err != nil {
		cfg.PostingRetryBackoff = 25 * time.Millisecond
	}

	cfg.RequestRateLimit = viper.GetString("REQUEST_RATE_LIMIT")

	return cfg, nil
}
