package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beobgrp/sitecontent/pkg/sitecontent"
	"github.com/beobgrp/sitecontent/pkg/sitecontent/events"
	memorymedia "github.com/beobgrp/sitecontent/pkg/sitecontent/media/memory"
	s3media "github.com/beobgrp/sitecontent/pkg/sitecontent/media/s3"
	"github.com/beobgrp/sitecontent/pkg/sitecontent/repo/memory"
	repopg "github.com/beobgrp/sitecontent/pkg/sitecontent/repo/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DefaultMediaBaseURL is the URL prefix of images served by the memory media
// resolver.
const DefaultMediaBaseURL = "/media"

func defaults() ServerConfig {
	return ServerConfig{
		Port:               "8080",
		Environment:        "development",
		DatabaseType:       "memory",
		Media:              MediaConfig{Type: "memory", BaseURL: DefaultMediaBaseURL},
		ReservationAddress: events.DefaultReservationAddress,
		SiteTimezone:       "Europe/Berlin",
		UpcomingLimit:      sitecontent.DefaultUpcomingLimit,
	}
}

// ServerConfig represents server configuration for the site content service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"
	DBSchema     string // Postgres schema to use; empty keeps the server default
	AutoMigrate  bool   // create the tables on startup

	// Media configuration
	Media MediaConfig

	// Site options
	ReservationAddress string
	SiteTimezone       string // IANA zone of event dates, e.g. Europe/Berlin
	UpcomingLimit      int    // length of the upcoming events summary
	EventBreaker       bool   // wrap the event store in a circuit breaker
}

// MediaConfig selects the media URL resolver
type MediaConfig struct {
	Type    string // "memory", "s3"
	BaseURL string // URL prefix of the memory resolver
	S3      s3media.Config
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	switch c.Media.Type {
	case "memory":
	case "s3":
		if c.Media.S3.Bucket == "" {
			return errors.New("media bucket is required when using s3")
		}
	default:
		return fmt.Errorf("unsupported media type: %s", c.Media.Type)
	}

	if _, err := time.LoadLocation(c.SiteTimezone); err != nil {
		return fmt.Errorf("invalid site timezone %q: %w", c.SiteTimezone, err)
	}

	if c.UpcomingLimit < 0 {
		return fmt.Errorf("upcoming events limit must not be negative, got %d", c.UpcomingLimit)
	}

	return nil
}

// BuildService creates a Service instance from the server configuration.
// extra options are applied last, e.g. a logger or metrics.
func (c *ServerConfig) BuildService(ctx context.Context, extra ...sitecontent.Option) (sitecontent.Service, error) {
	var options []sitecontent.Option

	repo, err := c.buildRepository(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}
	options = append(options, sitecontent.WithRepository(repo))

	media, err := c.buildMediaResolver()
	if err != nil {
		return nil, fmt.Errorf("failed to build media resolver: %w", err)
	}
	options = append(options, sitecontent.WithMediaResolver(media))

	loc, err := time.LoadLocation(c.SiteTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid site timezone %q: %w", c.SiteTimezone, err)
	}
	options = append(options,
		sitecontent.WithLocation(loc),
		sitecontent.WithReservationAddress(c.ReservationAddress),
		sitecontent.WithUpcomingLimit(c.UpcomingLimit),
	)

	if c.EventBreaker {
		options = append(options, sitecontent.WithEventBreaker(sitecontent.DefaultBreakerSettings("events")))
	}

	return sitecontent.New(append(options, extra...)...)
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository(ctx context.Context) (sitecontent.Repository, error) {
	switch c.DatabaseType {
	case "memory":
		return memory.New(), nil
	case "postgres":
		if c.DatabaseURL == "" {
			return nil, errors.New("database_url is required for postgres")
		}
		cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		schema := c.DBSchema
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			if schema == "" {
				return nil
			}
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", pgx.Identifier{schema}.Sanitize()))
			return err
		}
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		repo := repopg.NewWithPool(pool)
		if c.AutoMigrate {
			if err := repo.Migrate(ctx); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// buildMediaResolver creates a MediaResolver based on the configuration
func (c *ServerConfig) buildMediaResolver() (sitecontent.MediaResolver, error) {
	switch c.Media.Type {
	case "memory":
		return memorymedia.New(c.Media.BaseURL), nil
	case "s3":
		return s3media.New(c.Media.S3)
	default:
		return nil, fmt.Errorf("unsupported media type: %s", c.Media.Type)
	}
}
