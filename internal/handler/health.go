// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/adboardhq/adboard-web/internal/api"
	"github.com/adboardhq/adboard-web/internal/version"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	db        *sql.DB
	apiClient *api.Client
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db *sql.DB, apiClient *api.Client) *HealthHandler {
	return &HealthHandler{
		db:        db,
		apiClient: apiClient,
		startTime: time.Now(),
	}
}

// HealthStatus is the health response body.
type HealthStatus struct {
	Status  string           `json:"status"`
	Uptime  string           `json:"uptime"`
	Version string           `json:"version"`
	Checks  map[string]Check `json:"checks,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Health handles GET /health: liveness plus the session store check.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:  "ok",
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
		Version: version.Version,
		Checks:  map[string]Check{"database": h.checkDatabase(r.Context())},
	}

	code := http.StatusOK
	if status.Checks["database"].Status != "ok" {
		status.Status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, status)
}

// Live handles GET /health/live: the process is up.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthStatus{Status: "ok"})
}

// Ready handles GET /health/ready: the session store answers. The backend API
// is deliberately not probed here; this service stays up to show friendly
// errors when the backend is down.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	check := h.checkDatabase(r.Context())
	if check.Status != "ok" {
		writeJSON(w, http.StatusServiceUnavailable, HealthStatus{Status: "not ready", Checks: map[string]Check{"database": check}})
		return
	}
	writeJSON(w, http.StatusOK, HealthStatus{Status: "ready"})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := h.db.PingContext(ctx); err != nil {
		return Check{Status: "error", Message: err.Error()}
	}
	return Check{Status: "ok", Latency: time.Since(start).Round(time.Millisecond).String()}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
