// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// Backend REST API the front end consumes for all marketplace state.
	APIBaseURL string `env:"ADBOARD_API_BASE_URL,required"`
	APITimeout int    `env:"ADBOARD_API_TIMEOUT" envDefault:"15"` // Outbound request timeout in seconds

	DBPath        string `env:"ADBOARD_DB_PATH" envDefault:"./data/adboard.db"`
	SessionSecret string `env:"ADBOARD_SESSION_SECRET,required"`
	ServerHost    string `env:"ADBOARD_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"ADBOARD_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"ADBOARD_ENV" envDefault:"development"`
	LogLevel      string `env:"ADBOARD_LOG_LEVEL" envDefault:"info"`
	ContentDir    string `env:"ADBOARD_CONTENT_DIR" envDefault:"./content"`
	SiteURL       string `env:"ADBOARD_SITE_URL" envDefault:"http://localhost:8080"` // Canonical base URL for robots.txt and sitemap.xml
	StagingDir    string `env:"ADBOARD_STAGING_DIR" envDefault:"./data/staging"` // Wizard photo uploads awaiting submit

	// Third-party client-side integrations
	MapsAPIKey     string `env:"ADBOARD_MAPS_API_KEY"` // Maps/places widget and geocoding key
	GeocodeURL     string `env:"ADBOARD_GEOCODE_URL" envDefault:"https://maps.googleapis.com/maps/api/geocode/json"`
	GoogleClientID string `env:"ADBOARD_GOOGLE_CLIENT_ID"` // OAuth identity widget client ID

	// GeoIP configuration
	GeoIPDBPath string `env:"ADBOARD_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	// Audit event retention
	EventRetentionDays int `env:"ADBOARD_EVENT_RETENTION_DAYS" envDefault:"90"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// APIRequestTimeout returns the outbound API timeout as a duration.
func (c Config) APIRequestTimeout() time.Duration {
	return time.Duration(c.APITimeout) * time.Second
}

// GeocodingEnabled returns true if server-side geocoding is configured.
func (c Config) GeocodingEnabled() bool {
	return c.MapsAPIKey != ""
}

// GoogleLoginEnabled returns true if the OAuth identity widget is configured.
func (c Config) GoogleLoginEnabled() bool {
	return c.GoogleClientID != ""
}

// GeoIPEnabled returns true if GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
// AES-256 requires 32 bytes minimum for secure encryption.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// The API base URL must be absolute; everything downstream concatenates paths onto it.
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || !u.IsAbs() {
		return nil, fmt.Errorf("ADBOARD_API_BASE_URL must be an absolute URL, got %q", cfg.APIBaseURL)
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")

	// Validate session secret length
	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("ADBOARD_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("ADBOARD_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("ADBOARD_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if cfg.APITimeout <= 0 {
		cfg.APITimeout = 15
	}
	if cfg.EventRetentionDays <= 0 {
		cfg.EventRetentionDays = 90
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
