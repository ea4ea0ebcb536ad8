package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/SscSPs/gst_return_app/internal/apperrors"
	"github.com/SscSPs/gst_return_app/internal/utils/accounting"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	MigrationsPath string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	JWTSecret      string
	JWTIssuer      string

	GSTRate         decimal.Decimal
	CatalogFile     string // optional YAML catalog replacing the built-in one
	BankAccountName string

	RateLimit          string // ulule/limiter formatted rate, e.g. "30-M"
	MaxUploadBytes     int64
	CORSAllowedOrigins []string
	PostHogAPIKey      string
	PostHogEndpoint    string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "")
	viper.SetDefault("GST_RATE", accounting.DefaultGSTRate.String())
	viper.SetDefault("CATALOG_FILE", "")
	viper.SetDefault("BANK_ACCOUNT_NAME", "Bank")
	viper.SetDefault("RATE_LIMIT", "30-M")
	viper.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "https://us.i.posthog.com")

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:     viper.GetString("PGSQL_URL"),
		MigrationsPath:  viper.GetString("MIGRATIONS_PATH"),
		Port:            viper.GetString("PORT"),
		IsProduction:    viper.GetBool("IS_PRODUCTION"),
		EnableDBCheck:   viper.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:       viper.GetString("JWT_SECRET"),
		JWTIssuer:       viper.GetString("JWT_ISSUER"),
		CatalogFile:     viper.GetString("CATALOG_FILE"),
		BankAccountName: viper.GetString("BANK_ACCOUNT_NAME"),
		RateLimit:       viper.GetString("RATE_LIMIT"),
		MaxUploadBytes:  viper.GetInt64("MAX_UPLOAD_BYTES"),
		PostHogAPIKey:   viper.GetString("POSTHOG_API_KEY"),
		PostHogEndpoint: viper.GetString("POSTHOG_ENDPOINT"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set. Sessions are kept in memory.")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET must not be empty", apperrors.ErrConfiguration)
	}

	rate, err := decimal.NewFromString(viper.GetString("GST_RATE"))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid GST_RATE %q", apperrors.ErrConfiguration, viper.GetString("GST_RATE"))
	}
	if err := accounting.ValidateRate(rate); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrConfiguration, err)
	}
	cfg.GSTRate = rate

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
		log.Printf("Warning: invalid MAX_UPLOAD_BYTES. Defaulting to %d.\n", cfg.MaxUploadBytes)
	}

	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	return cfg, nil
}
