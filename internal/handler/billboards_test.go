// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/adboardhq/adboard-web/internal/session"
)

func TestValidateBookingDates(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		start   string
		end     string
		wantErr string
	}{
		{"valid range", "2026-09-10", "2026-09-20", ""},
		{"same day", "2026-09-10", "2026-09-10", ""},
		{"starts today", "2026-09-01", "2026-09-02", ""},
		{"missing start", "", "2026-09-10", "required"},
		{"missing end", "2026-09-10", "", "required"},
		{"garbage start", "not-a-date", "2026-09-10", "Invalid start date"},
		{"garbage end", "2026-09-10", "10/09/2026", "Invalid end date"},
		{"start in past", "2026-08-31", "2026-09-10", "past"},
		{"end before start", "2026-09-20", "2026-09-10", "before the start"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := validateBookingDates(tt.start, tt.end, now)
			if tt.wantErr == "" {
				assert.Empty(t, got)
			} else {
				assert.Contains(t, got, tt.wantErr)
			}
		})
	}
}

func TestBookRejectsBadDatesWithoutBackendCall(t *testing.T) {
	var backendCalls atomic.Int32
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		backendCalls.Add(1)
		w.WriteHeader(http.StatusOK)
	})

	h := NewBillboardHandler(app.apiClient, app.renderer, app.sessions, app.events, "")

	form := url.Values{"start_date": {"2000-01-01"}, "end_date": {"2000-01-05"}}
	req := httptest.NewRequest(http.MethodPost, "/billboards/bb-1/book", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = withURLParam(req, "id", "bb-1")

	rec := app.serve(app.signIn(session.UserTypeAdvertiser), http.HandlerFunc(h.Book), req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/billboards/bb-1/book", rec.Header().Get("Location"))
	assert.Zero(t, backendCalls.Load(), "invalid dates must not reach the backend")
}

func TestBookForwardsValidRequest(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/advertiser/bookings/create/", r.URL.Path)
		assert.Equal(t, "Bearer test-access-token", r.Header.Get("Authorization"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "bb-1", body["id"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 7, "billboard": "bb-1", "status": "pending"}`))
	})

	h := NewBillboardHandler(app.apiClient, app.renderer, app.sessions, app.events, "")

	start := time.Now().AddDate(0, 0, 7).Format(dateLayout)
	end := time.Now().AddDate(0, 0, 14).Format(dateLayout)
	form := url.Values{"start_date": {start}, "end_date": {end}}
	req := httptest.NewRequest(http.MethodPost, "/billboards/bb-1/book", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = withURLParam(req, "id", "bb-1")

	rec := app.serve(app.signIn(session.UserTypeAdvertiser), http.HandlerFunc(h.Book), req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteBookings, rec.Header().Get("Location"))
}

func TestDetailRendersPublicly(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/advertiser/billboard/detail/", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"), "anonymous detail view must not send a token")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"static_id": "bb-1", "title": "Highway Hoarding", "availability": true}`))
	})

	h := NewBillboardHandler(app.apiClient, app.renderer, app.sessions, app.events, "")

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/billboards/bb-1", nil), "id", "bb-1")
	rec := app.serve(nil, http.HandlerFunc(h.Detail), req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Highway Hoarding")
}

// withURLParam injects a chi URL parameter into the request context.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
