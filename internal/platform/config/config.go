// Copyright (c) 2026 Userbase. All rights reserved.
// Author: thach.le.ng@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, token services, mailer) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Userbase API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// JWTSecret is the server-wide signing secret for session and reset tokens.
	// Reset tokens additionally concatenate the target account id onto it.
	JWTSecret string `env:"JWT_SECRET_KEY,required"`

	// SessionTokenTTL is how long an issued session token stays valid.
	SessionTokenTTL time.Duration `env:"SESSION_TOKEN_TTL" envDefault:"120h"`

	// ResetTokenTTL is how long a password reset link stays valid.
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL" envDefault:"15m"`

	// Outbound email (SMTP)
	EmailHost string `env:"EMAIL_HOST"`
	EmailPort int    `env:"EMAIL_PORT" envDefault:"587"`
	EmailUser string `env:"EMAIL_USER"`
	EmailPass string `env:"EMAIL_PASS"`
	EmailFrom string `env:"EMAIL_FROM"`

	// FrontendHost is the base URL embedded in password reset links.
	FrontendHost string `env:"FRONTEND_HOST" envDefault:"http://localhost:3000"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
