package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	// Provider credentials. An absent key degrades only that adapter.
	OWMAPIKey      string
	WAQIToken      string
	GeocoderAPIKey string

	// DatabaseURL selects the Postgres record store; empty means in-memory.
	DatabaseURL string

	// FetchInterval controls how often the scheduler polls each target.
	FetchInterval time.Duration

	// TargetDelay staggers consecutive outbound fetches within a cycle.
	TargetDelay time.Duration

	// MaxConcurrent caps in-flight fetches per cycle.
	MaxConcurrent int

	// ConfigCooldown is how long a misconfigured adapter is skipped.
	ConfigCooldown time.Duration

	// ProviderMinInterval is the minimum spacing between requests to one
	// external provider (token-bucket rate limit).
	ProviderMinInterval time.Duration

	HTTPTimeout time.Duration

	// Cities polled by the scheduler.
	Cities []string

	// In-memory store retention.
	StoreMaxHistory int           // max records (0 = unlimited)
	StoreMaxAge     time.Duration // max record age (0 = unlimited)

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OWMAPIKey = os.Getenv("OWM_API_KEY")
	cfg.WAQIToken = os.Getenv("AQICN_TOKEN")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	var err error
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	if cfg.TargetDelay, err = getenvDuration("TARGET_DELAY", "2s"); err != nil {
		return nil, err
	}
	if cfg.ConfigCooldown, err = getenvDuration("CONFIG_COOLDOWN", "1h"); err != nil {
		return nil, err
	}
	if cfg.ProviderMinInterval, err = getenvDuration("PROVIDER_MIN_INTERVAL", "1s"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "0s"); err != nil {
		return nil, err
	}

	cfg.MaxConcurrent = getenvInt("SCHEDULER_MAX_CONCURRENT", 4)
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 1000)
	cfg.Port = getenvDefault("PORT", "8080")

	if cities := os.Getenv("AQI_CITIES"); cities != "" {
		for _, c := range strings.Split(cities, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cfg.Cities = append(cfg.Cities, c)
			}
		}
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
