package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/beobgrp/sitecontent/pkg/sitecontent"
	"github.com/beobgrp/sitecontent/pkg/sitecontent/api"
	"github.com/beobgrp/sitecontent/pkg/sitecontent/config"
	"github.com/go-chi/chi/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/chi-demo/middleware"
)

// Config is read from the environment, or from the YAML file named by
// CONFIG_FILE with environment overrides.
type Config struct {
	Environment        string `yaml:"environment" env:"ENVIRONMENT" env-default:"development"`
	DatabaseURL        string `yaml:"database_url" env:"DATABASE_URL" env-default:"memory"`
	DBSchema           string `yaml:"db_schema" env:"DB_SCHEMA"`
	AutoMigrate        bool   `yaml:"auto_migrate" env:"AUTO_MIGRATE" env-default:"false"`
	MediaURL           string `yaml:"media_url" env:"MEDIA_URL" env-default:"memory://"`
	ReservationAddress string `yaml:"reservation_address" env:"RESERVATION_ADDRESS" env-default:"reservierung@beobachtergruppe.de"`
	SiteTimezone       string `yaml:"site_timezone" env:"SITE_TIMEZONE" env-default:"Europe/Berlin"`
	UpcomingLimit      int    `yaml:"upcoming_events_limit" env:"UPCOMING_EVENTS_LIMIT" env-default:"2"`
	EventBreaker       bool   `yaml:"event_breaker" env:"EVENT_BREAKER" env-default:"true"`
	ApiKeySHA256       string `yaml:"api_key_sha256" env:"API_KEY_SHA256" env-default:"1"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return cfg, fmt.Errorf("read config file %s: %w", path, err)
		}
		return cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("read environment: %w", err)
	}
	return cfg, nil
}

func (c Config) serverConfig() (*config.ServerConfig, error) {
	return config.Load(
		config.WithEnvironment(c.Environment),
		config.WithDatabaseURL(c.DatabaseURL),
		config.WithDatabaseSchema(c.DBSchema),
		config.WithAutoMigrate(c.AutoMigrate),
		config.WithMediaURL(c.MediaURL),
		config.WithReservationAddress(c.ReservationAddress),
		config.WithSiteTimezone(c.SiteTimezone),
		config.WithUpcomingLimit(c.UpcomingLimit),
		config.WithEventBreaker(c.EventBreaker),
	)
}

// newService builds the service with its metrics registered on reg.
func newService(ctx context.Context, cfg Config, reg *prometheus.Registry, logger *slog.Logger) (sitecontent.Service, error) {
	serverConfig, err := cfg.serverConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	metrics, err := sitecontent.NewMetrics(reg)
	if err != nil {
		return nil, err
	}

	return serverConfig.BuildService(ctx,
		sitecontent.WithLogger(logger),
		sitecontent.WithMetrics(metrics),
	)
}

// registerRoutes mounts the API below /api/v1 and the metrics at /metrics.
func registerRoutes(r chi.Router, svc sitecontent.Service, reg *prometheus.Registry, logger *slog.Logger, writeMiddleware func(http.Handler) http.Handler) {
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	r.Mount("/api/v1", api.NewHandler(svc, logger).Routes(writeMiddleware))
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}
	logger := slog.Default()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc, err := newService(context.Background(), cfg, reg, logger)
	if err != nil {
		slog.Error("Failed to build service", "err", err)
		os.Exit(1)
	}

	apiKeyMiddleware, err := middleware.ApiKeyMiddleware(middleware.ApiKeyConfig{
		APIKeys: map[string]string{
			"editor": cfg.ApiKeySHA256,
		},
	})
	if err != nil {
		slog.Error("Failed initialize API Key middleware", "err", err)
		os.Exit(1)
	}

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)
	registerRoutes(server.R, svc, reg, logger, apiKeyMiddleware)

	slog.Info("Site content server starting", "environment", cfg.Environment, "database", databaseKind(cfg.DatabaseURL))
	server.Run()
}

func databaseKind(url string) string {
	if url == "" || url == "memory" {
		return "memory"
	}
	return "postgres"
}
