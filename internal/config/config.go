package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Cfg is the global configuration loaded at startup.
var Cfg Config

// Config holds all engine configuration.
type Config struct {
	// Sentry
	SentryDSN         string
	SentryEnvironment string
	SentryRelease     string

	// Financial comparison
	TassoSconto float64

	// Disbursement
	SogliaRataUnica   float64
	QuotaIntermedia   float64
	MassimaleProgetto float64
}

// Load reads .env (if present) and populates Cfg from environment variables.
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables")
	}

	Cfg = Config{
		SentryDSN:         os.Getenv("SENTRY_DSN"),
		SentryEnvironment: envOr("SENTRY_ENVIRONMENT", "production"),
		SentryRelease:     envOr("SENTRY_RELEASE", "contotermico@1.0.0"),

		TassoSconto: envFloat64("TASSO_SCONTO", 0.03),

		SogliaRataUnica:   envFloat64("SOGLIA_RATA_UNICA", 5000),
		QuotaIntermedia:   envFloat64("QUOTA_INTERMEDIA", 0),
		MassimaleProgetto: envFloat64("MASSIMALE_PROGETTO", 0),
	}

	log.Printf("config: loaded (tasso=%.4f, soglia rata unica=%.0f)",
		Cfg.TassoSconto, Cfg.SogliaRataUnica)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat64(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
