// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Event levels.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories.
const (
	EventCategoryAuth    = "auth"
	EventCategorySystem  = "system"
	EventCategoryBooking = "booking"
	EventCategoryProfile = "profile"
)

// Queries wraps the database for event log access.
type Queries struct {
	db *sql.DB
}

// New creates a Queries instance.
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// CreateEventParams holds the fields for a new event row.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	IPAddress string
	Country   string
	Browser   string
	URL       string
	Metadata  string
}

// CreateEvent inserts an audit event.
func (q *Queries) CreateEvent(ctx context.Context, p CreateEventParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO events (level, category, message, ip_address, country, browser, url, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Level, p.Category, p.Message, p.IPAddress, p.Country, p.Browser, p.URL, p.Metadata, time.Now().UTC())
	return err
}

// DeleteEventsBefore removes events older than the cutoff and reports how many were deleted.
func (q *Queries) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountEvents returns the total number of stored events.
func (q *Queries) CountEvents(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}
