// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package geoip resolves client IP addresses to ISO country codes using a
// local MaxMind database. Lookups are optional: a nil Resolver is valid and
// always returns an empty country.
package geoip

import (
	"fmt"
	"log/slog"
	"net"

	"github.com/oschwald/maxminddb-golang"
)

// Resolver wraps an open MaxMind country database.
type Resolver struct {
	reader *maxminddb.Reader
	logger *slog.Logger
}

// countryRecord matches the GeoLite2-Country document layout.
type countryRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// Open loads the database at path. Returns nil (no error) when path is empty,
// so callers can treat GeoIP as an optional feature.
func Open(path string, logger *slog.Logger) (*Resolver, error) {
	if path == "" {
		return nil, nil
	}
	reader, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening geoip database: %w", err)
	}
	return &Resolver{reader: reader, logger: logger}, nil
}

// Country returns the ISO country code for ip, or "" when unknown.
func (r *Resolver) Country(ip string) string {
	if r == nil || r.reader == nil {
		return ""
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}
	var rec countryRecord
	if err := r.reader.Lookup(parsed, &rec); err != nil {
		r.logger.Debug("geoip lookup failed", "ip", ip, "error", err)
		return ""
	}
	return rec.Country.ISOCode
}

// Close releases the underlying database.
func (r *Resolver) Close() error {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.reader.Close()
}
