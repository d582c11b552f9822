package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// BuildiumConfig holds credentials for the external reconciliation source.
type BuildiumConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	JWTSecret    string

	MigrationsPath string
	RunMigrations  bool

	CORSAllowedOrigins []string

	Buildium BuildiumConfig

	// Rollup and reconciliation tuning
	RollupIncompleteBankRatio decimal.Decimal
	SyncConcurrency           int
	DriftTolerance            decimal.Decimal
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("BUILDIUM_BASE_URL", "https://api.buildium.com/v1")
	v.SetDefault("BUILDIUM_CLIENT_ID", "")
	v.SetDefault("BUILDIUM_CLIENT_SECRET", "")
	v.SetDefault("BUILDIUM_TIMEOUT", "30s")
	v.SetDefault("ROLLUP_INCOMPLETE_BANK_RATIO", "0.1")
	v.SetDefault("SYNC_CONCURRENCY", 4)
	v.SetDefault("DRIFT_TOLERANCE", "0.01")
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabaseURL:    v.GetString("PGSQL_URL"),
		Port:           v.GetString("PORT"),
		IsProduction:   v.GetBool("IS_PRODUCTION"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		MigrationsPath: v.GetString("MIGRATIONS_PATH"),
		RunMigrations:  v.GetBool("RUN_MIGRATIONS"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	if cfg.JWTSecret == "" {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = defaultJWTSecret // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	cfg.Buildium = BuildiumConfig{
		BaseURL:      v.GetString("BUILDIUM_BASE_URL"),
		ClientID:     v.GetString("BUILDIUM_CLIENT_ID"),
		ClientSecret: v.GetString("BUILDIUM_CLIENT_SECRET"),
	}
	timeoutStr := v.GetString("BUILDIUM_TIMEOUT")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil || timeout <= 0 {
		timeout = 30 * time.Second
		log.Printf("Warning: Invalid value for BUILDIUM_TIMEOUT ('%s'). Defaulting to %s.\n", timeoutStr, timeout)
	}
	cfg.Buildium.Timeout = timeout
	if cfg.Buildium.ClientID == "" || cfg.Buildium.ClientSecret == "" {
		log.Println("Warning: BUILDIUM_CLIENT_ID/BUILDIUM_CLIENT_SECRET not set. Reconciliation sync will fail.")
	}

	if cfg.RollupIncompleteBankRatio, err = nonNegativeDecimal(v, "ROLLUP_INCOMPLETE_BANK_RATIO"); err != nil {
		return nil, err
	}
	if cfg.DriftTolerance, err = nonNegativeDecimal(v, "DRIFT_TOLERANCE"); err != nil {
		return nil, err
	}

	cfg.SyncConcurrency = v.GetInt("SYNC_CONCURRENCY")
	if cfg.SyncConcurrency <= 0 {
		return nil, fmt.Errorf("invalid SYNC_CONCURRENCY %q: must be a positive integer", v.GetString("SYNC_CONCURRENCY"))
	}

	return cfg, nil
}

func nonNegativeDecimal(v *viper.Viper, key string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(v.GetString(key))
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid %s %q: must not be negative", key, raw)
	}
	return d, nil
}
