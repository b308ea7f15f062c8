package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/aqstack/air-quality-aggregation/internal/api/http"
	"github.com/aqstack/air-quality-aggregation/internal/aqi"
	"github.com/aqstack/air-quality-aggregation/internal/aqi/providers"
	"github.com/aqstack/air-quality-aggregation/internal/config"
	"github.com/aqstack/air-quality-aggregation/internal/scheduler"
	"github.com/aqstack/air-quality-aggregation/internal/store"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Record store: Postgres when configured, in-memory otherwise.
	var recordStore aqi.Store
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			log.Fatalf("failed to connect record store: %v", err)
		}
		defer pgStore.Close()
		recordStore = pgStore
	} else {
		log.Println("INFO: DATABASE_URL not set; using in-memory record store")
		recordStore = store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)
	}

	// Adapters are constructed even without credentials: a missing key
	// degrades that adapter (ConfigError + scheduler cooldown), never the
	// process.
	if cfg.OWMAPIKey == "" {
		log.Println("WARN: OWM_API_KEY not set; OpenWeatherMap adapter degraded")
	}
	if cfg.WAQIToken == "" {
		log.Println("WARN: AQICN_TOKEN not set; WAQI adapter degraded")
	}

	owm := providers.NewOpenWeatherAdapter(httpClient, cfg.OWMAPIKey, cfg.ProviderMinInterval)
	waqi := providers.NewWAQIAdapter(httpClient, cfg.WAQIToken, cfg.ProviderMinInterval)

	// City resolution: prefer the Google geocoder when a key is present,
	// otherwise OWM's direct-geocoding endpoint.
	var resolver aqi.Resolver = owm
	if cfg.GeocoderAPIKey != "" {
		resolver = providers.NewGoogleResolver(cfg.GeocoderAPIKey)
	}

	registry := aqi.DefaultRegistry()
	service := aqi.NewService(registry, recordStore, resolver, owm)

	// Scheduler polls every (adapter, city) pair.
	var pairs []scheduler.Pair
	for _, city := range cfg.Cities {
		target := aqi.Target{City: city}
		pairs = append(pairs,
			scheduler.Pair{Adapter: owm, Target: target},
			scheduler.Pair{Adapter: waqi, Target: target},
		)
	}

	sched := scheduler.New(service, pairs, scheduler.Options{
		Interval:       cfg.FetchInterval,
		TargetDelay:    cfg.TargetDelay,
		MaxConcurrent:  cfg.MaxConcurrent,
		ConfigCooldown: cfg.ConfigCooldown,
	})
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "air-quality-aggregation",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "air-quality-aggregation",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service)

	// Start server with graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
