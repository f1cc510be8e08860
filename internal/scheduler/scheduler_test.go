// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/adboardhq/adboard-web/internal/store"
	"github.com/adboardhq/adboard-web/internal/testutil"
)

func TestNew(t *testing.T) {
	logger := slog.Default()

	s := New(nil, logger, 90)
	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.cron == nil {
		t.Error("New() scheduler has nil cron")
	}
	if s.retentionDays != 90 {
		t.Errorf("retentionDays = %d, want 90", s.retentionDays)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(nil, slog.Default(), 90)

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	s.Stop()
}

func TestPruneEventsDeletesOnlyExpired(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	queries := store.New(db)

	old := time.Now().AddDate(0, 0, -120).UTC()
	recent := time.Now().Add(-time.Hour).UTC()
	for _, created := range []time.Time{old, recent} {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO events (level, category, message, ip_address, country, browser, url, metadata, created_at)
			 VALUES ('info', 'system', 'test event', '', '', '', '', '{}', ?)`, created); err != nil {
			t.Fatalf("seeding event: %v", err)
		}
	}

	s := New(db, slog.Default(), 90)
	if err := s.pruneEvents(); err != nil {
		t.Fatalf("pruneEvents() error = %v", err)
	}

	count, err := queries.CountEvents(ctx)
	if err != nil {
		t.Fatalf("CountEvents() error = %v", err)
	}
	if count != 1 {
		t.Errorf("events after prune = %d, want 1", count)
	}
}
