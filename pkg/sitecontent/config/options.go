package config

import (
	"fmt"

	s3media "github.com/beobgrp/sitecontent/pkg/sitecontent/media/s3"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabase configures the database backend
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		if dbType != "memory" && dbType != "postgres" {
			return fmt.Errorf("database type must be 'memory' or 'postgres', got: %s", dbType)
		}
		if dbType == "postgres" && url == "" {
			return fmt.Errorf("database URL is required for postgres")
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseURL selects the database from a connection string: "memory"
// or a postgres:// URL
func WithDatabaseURL(url string) Option {
	return func(c *ServerConfig) error {
		return applyDatabaseURL(c, url)
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithAutoMigrate creates the Postgres tables on startup
func WithAutoMigrate(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.AutoMigrate = enabled
		return nil
	}
}

// WithMediaURL selects the media resolver from a URL, see WithEnv
func WithMediaURL(url string) Option {
	return func(c *ServerConfig) error {
		return applyMediaURL(c, url)
	}
}

// WithStaticMedia serves images below baseURL
func WithStaticMedia(baseURL string) Option {
	return func(c *ServerConfig) error {
		if baseURL == "" {
			return fmt.Errorf("media base URL cannot be empty")
		}
		c.Media = MediaConfig{Type: "memory", BaseURL: baseURL}
		return nil
	}
}

// WithS3Media serves images through presigned S3 URLs
func WithS3Media(s3Config s3media.Config) Option {
	return func(c *ServerConfig) error {
		if s3Config.Bucket == "" {
			return fmt.Errorf("S3 bucket name cannot be empty")
		}
		c.Media = MediaConfig{Type: "s3", S3: s3Config}
		return nil
	}
}

// WithReservationAddress sets the recipient of reservation requests
func WithReservationAddress(address string) Option {
	return func(c *ServerConfig) error {
		if address == "" {
			return fmt.Errorf("reservation address cannot be empty")
		}
		c.ReservationAddress = address
		return nil
	}
}

// WithSiteTimezone sets the IANA time zone of event dates
func WithSiteTimezone(zone string) Option {
	return func(c *ServerConfig) error {
		c.SiteTimezone = zone
		return nil
	}
}

// WithUpcomingLimit sets the length of the upcoming events summary
func WithUpcomingLimit(n int) Option {
	return func(c *ServerConfig) error {
		c.UpcomingLimit = n
		return nil
	}
}

// WithEventBreaker enables the circuit breaker around the event store
func WithEventBreaker(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EventBreaker = enabled
		return nil
	}
}
