// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config maps process environment variables onto a typed [Config].

Variables are read with caarlos0/env. During local development a `.env`
file in the working directory is loaded first (joho/godotenv); values that
are already exported in the environment always win.

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

The resulting struct is read-only and passed to constructors explicitly.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Goal window bases accepted by GOAL_WINDOW_BASIS.
const (
	GoalBasisDateAdded   = "date_added"
	GoalBasisSessionDate = "session_date"
)

// # Configuration Schema

// Config holds all runtime configuration for the Readtrack API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// RS256 key pair for access tokens
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH,required"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH,required"`

	// Cross-Origin Resource Sharing allow-list
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`

	// Reading goals
	GoalWindowBasis string        `env:"GOAL_WINDOW_BASIS" envDefault:"date_added"`
	GoalCacheTTL    time.Duration `env:"GOAL_CACHE_TTL"    envDefault:"10m"`

	// Maintenance
	SessionPurgeSchedule string `env:"SESSION_PURGE_SCHEDULE" envDefault:"@hourly"`
}

// # Configuration Loading

// Load parses environment variables (and an optional .env file) into a [Config].
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks cross-field rules that struct tags cannot express.
func (c *Config) validate() error {
	switch c.GoalWindowBasis {
	case GoalBasisDateAdded, GoalBasisSessionDate:
	default:
		return fmt.Errorf("config: GOAL_WINDOW_BASIS must be %q or %q, got %q",
			GoalBasisDateAdded, GoalBasisSessionDate, c.GoalWindowBasis)
	}

	if c.GoalCacheTTL < 0 {
		return fmt.Errorf("config: GOAL_CACHE_TTL must not be negative")
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Origins returns the configured CORS allow-list.
func (c *Config) Origins() []string {
	return c.AllowedOrigins
}
