// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds small application services shared between handlers.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/mileusna/useragent"

	"github.com/adboardhq/adboard-web/internal/geoip"
	"github.com/adboardhq/adboard-web/internal/store"
)

// EventService records audit events (sign-ins, profile completions, denied
// access) into the local event log, enriched with browser family and an
// optional GeoIP country.
type EventService struct {
	queries *store.Queries
	geo     *geoip.Resolver
}

// NewEventService creates an EventService. The geo resolver may be nil.
func NewEventService(db *sql.DB, geo *geoip.Resolver) *EventService {
	return &EventService{queries: store.New(db), geo: geo}
}

// Log records an event. Errors are logged, not returned: audit logging must
// never break the request that triggered it.
func (s *EventService) Log(ctx context.Context, level, category, message, clientIP, userAgent, url string, metadata map[string]any) {
	var meta string
	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			meta = string(b)
		}
	}

	var browser string
	if userAgent != "" {
		ua := useragent.Parse(userAgent)
		browser = ua.Name
		if ua.Version != "" {
			browser += " " + ua.Version
		}
	}

	err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		IPAddress: clientIP,
		Country:   s.geo.Country(clientIP),
		Browser:   browser,
		URL:       url,
		Metadata:  meta,
	})
	if err != nil {
		slog.Error("failed to write audit event", "error", err, "message", message)
	}
}

// LogAuth records an authentication-related event.
func (s *EventService) LogAuth(ctx context.Context, level, message, clientIP, userAgent, url string, metadata map[string]any) {
	s.Log(ctx, level, store.EventCategoryAuth, message, clientIP, userAgent, url, metadata)
}

// LogBooking records a booking-related event.
func (s *EventService) LogBooking(ctx context.Context, level, message, clientIP, userAgent, url string, metadata map[string]any) {
	s.Log(ctx, level, store.EventCategoryBooking, message, clientIP, userAgent, url, metadata)
}

// LogProfile records a profile-related event.
func (s *EventService) LogProfile(ctx context.Context, level, message, clientIP, userAgent, url string, metadata map[string]any) {
	s.Log(ctx, level, store.EventCategoryProfile, message, clientIP, userAgent, url, metadata)
}
