// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"strings"
	"testing"
	"time"
)

// validSecret is long enough and mixes character classes.
const validSecret = "Abc123!xyzABC456?mnoDEF789#qrstuv"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ADBOARD_API_BASE_URL", "https://api.example.com")
	t.Setenv("ADBOARD_SESSION_SECRET", validSecret)
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want 8080", cfg.ServerPort)
	}
	if cfg.Env != "development" || !cfg.IsDevelopment() {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.APIRequestTimeout() != 15*time.Second {
		t.Errorf("APIRequestTimeout = %v, want 15s", cfg.APIRequestTimeout())
	}
	if cfg.EventRetentionDays != 90 {
		t.Errorf("EventRetentionDays = %d, want 90", cfg.EventRetentionDays)
	}
}

func TestLoadTrimsBaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ADBOARD_API_BASE_URL", "https://api.example.com/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIBaseURL != "https://api.example.com" {
		t.Errorf("APIBaseURL = %q, want trailing slash trimmed", cfg.APIBaseURL)
	}
}

func TestLoadRejectsRelativeBaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ADBOARD_API_BASE_URL", "/users")

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted relative API base URL")
	}
}

func TestLoadRejectsShortSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ADBOARD_SESSION_SECRET", "short")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() accepted short session secret")
	}
	if !strings.Contains(err.Error(), "at least 32 bytes") {
		t.Errorf("error = %v, want length complaint", err)
	}
}

func TestLoadRejectsKnownWeakSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ADBOARD_SESSION_SECRET", "change-me-to-32-byte-secret-key!")

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted a known weak secret")
	}
}

func TestServerAddr(t *testing.T) {
	cfg := Config{ServerHost: "0.0.0.0", ServerPort: 9000}
	if got := cfg.ServerAddr(); got != "0.0.0.0:9000" {
		t.Errorf("ServerAddr() = %q, want 0.0.0.0:9000", got)
	}
}

func TestIntegrationToggles(t *testing.T) {
	cfg := Config{}
	if cfg.GeocodingEnabled() || cfg.GoogleLoginEnabled() || cfg.GeoIPEnabled() {
		t.Error("integrations should be disabled with empty config")
	}
	cfg.MapsAPIKey = "k"
	cfg.GoogleClientID = "c"
	cfg.GeoIPDBPath = "/tmp/geo.mmdb"
	if !cfg.GeocodingEnabled() || !cfg.GoogleLoginEnabled() || !cfg.GeoIPEnabled() {
		t.Error("integrations should be enabled when configured")
	}
}
