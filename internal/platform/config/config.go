// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the archive server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Job state (Redis)
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// Token signing keys
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH,required"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH,required"`

	// Single admin account; the password is stored as a bcrypt hash
	AdminUsername     string `env:"ADMIN_USERNAME"      envDefault:"admin"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH,required,notEmpty"`

	// Forum scraper
	Scraper ScraperConfig `envPrefix:"SCRAPER_"`

	// DownloadConcurrency bounds the number of threads fetched in parallel per job.
	DownloadConcurrency int `env:"DOWNLOAD_CONCURRENCY" envDefault:"4"`

	// ConvertToTraditional converts imported chapters to Traditional script.
	ConvertToTraditional bool `env:"CONVERT_TO_TRADITIONAL" envDefault:"true"`

	// Cross-Origin Resource Sharing
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

// ScraperConfig tunes the forum client.
type ScraperConfig struct {
	UserAgent string        `env:"USER_AGENT" envDefault:"Mozilla/5.0 (compatible; novelvault/0.3)"`
	Timeout   time.Duration `env:"TIMEOUT"    envDefault:"30s"`

	// RequestsPerSecond throttles requests to the forum across all workers.
	RequestsPerSecond float64 `env:"RPS"   envDefault:"1"`
	Burst             int     `env:"BURST" envDefault:"2"`

	// Cookie is sent verbatim for forums that hide threads from guests.
	Cookie string `env:"COOKIE"`

	// TitleSelector and PostSelector locate the thread title and the first post.
	TitleSelector string `env:"TITLE_SELECTOR" envDefault:"#thread_subject"`
	PostSelector  string `env:"POST_SELECTOR"  envDefault:"td.t_f"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	cfg := &Config{}

	// Fails when any field marked 'required' is missing
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.DownloadConcurrency < 1 {
		return nil, fmt.Errorf("config: DOWNLOAD_CONCURRENCY must be at least 1, got %d", cfg.DownloadConcurrency)
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

// Origins returns the CORS allow-list.
func (c *Config) Origins() []string {
	return c.AllowedOrigins
}
