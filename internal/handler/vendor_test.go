// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adboardhq/adboard-web/internal/geo"
	"github.com/adboardhq/adboard-web/internal/session"
)

func newVendorHandler(app *testApp) *VendorHandler {
	geocoder := geo.New("", "") // disabled: no key configured
	return NewVendorHandler(app.apiClient, app.renderer, app.sessions, app.events, app.processor, geocoder)
}

func TestUpdateBookingStatusRejectsUnknownStatus(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("an invalid status must not reach the backend")
	})
	h := newVendorHandler(app)

	for _, status := range []string{"pending", "deleted", "", "CONFIRMED"} {
		form := url.Values{"status": {status}}
		req := httptest.NewRequest(http.MethodPost, "/vendor/bookings/7/status", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req = withURLParam(req, "id", "7")

		rec := app.serve(app.signIn(session.UserTypeVendor), http.HandlerFunc(h.UpdateBookingStatus), req)

		assert.Equal(t, http.StatusSeeOther, rec.Code, "status %q", status)
		assert.Equal(t, "/vendor/bookings/7", rec.Header().Get("Location"), "status %q", status)
	}
}

func TestUpdateBookingStatusForwardsDecision(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/vendor/bookings/update/", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("id"))
		assert.Equal(t, "confirmed", r.URL.Query().Get("status"))
		w.WriteHeader(http.StatusOK)
	})
	h := newVendorHandler(app)

	form := url.Values{"status": {"confirmed"}}
	req := httptest.NewRequest(http.MethodPost, "/vendor/bookings/7/status", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = withURLParam(req, "id", "7")

	rec := app.serve(app.signIn(session.UserTypeVendor), http.HandlerFunc(h.UpdateBookingStatus), req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteVendor+"/bookings", rec.Header().Get("Location"))
}

func listingForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestCreateBillboardRequiresFields(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("an incomplete listing must not reach the backend")
	})
	h := newVendorHandler(app)

	tests := []struct {
		name   string
		fields map[string]string
	}{
		{"missing title", map[string]string{"address": "MG Road", "city": "Bangalore", "price": "50000"}},
		{"missing price", map[string]string{"title": "Hoarding", "address": "MG Road", "city": "Bangalore"}},
		{"price not a number", map[string]string{"title": "Hoarding", "address": "MG Road", "city": "Bangalore", "price": "cheap"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := listingForm(t, tt.fields)
			req := httptest.NewRequest(http.MethodPost, "/vendor/billboards/new", body)
			req.Header.Set("Content-Type", contentType)

			rec := app.serve(app.signIn(session.UserTypeVendor), http.HandlerFunc(h.CreateBillboard), req)

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, RouteVendor+"/billboards/new", rec.Header().Get("Location"))
		})
	}
}

func TestCreateBillboardForwardsListing(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/vendor/billboard/create/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(maxListingFormBytes))
		assert.Equal(t, "Ring Road Hoarding", r.FormValue("title"))
		assert.Equal(t, "Bangalore", r.FormValue("city"))
		assert.Equal(t, "125000", r.FormValue("price"))
		w.WriteHeader(http.StatusCreated)
	})
	h := newVendorHandler(app)

	body, contentType := listingForm(t, map[string]string{
		"title":   "Ring Road Hoarding",
		"address": "Outer Ring Road",
		"city":    "Bangalore",
		"type":    "hoarding",
		"price":   "125000",
		"size":    "40x20",
	})
	req := httptest.NewRequest(http.MethodPost, "/vendor/billboards/new", body)
	req.Header.Set("Content-Type", contentType)

	rec := app.serve(app.signIn(session.UserTypeVendor), http.HandlerFunc(h.CreateBillboard), req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteVendor+"/billboards", rec.Header().Get("Location"))
}

func TestCreateBillboardCanonicalizesWidgetAddress(t *testing.T) {
	geoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "12.971599,77.594566", r.URL.Query().Get("latlng"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "OK", "results": [
			{"formatted_address": "Outer Ring Road, Bengaluru, Karnataka 560037"}
		]}`))
	}))
	defer geoSrv.Close()

	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(maxListingFormBytes))
		assert.Equal(t, "Outer Ring Road, Bengaluru, Karnataka 560037", r.FormValue("address"))
		assert.Equal(t, "12.971599", r.FormValue("lat"))
		w.WriteHeader(http.StatusCreated)
	})
	h := NewVendorHandler(app.apiClient, app.renderer, app.sessions, app.events, app.processor,
		geo.New(geoSrv.URL, "geo-key"))

	body, contentType := listingForm(t, map[string]string{
		"title":   "Ring Road Hoarding",
		"address": "ring rd blr",
		"city":    "Bangalore",
		"price":   "125000",
		"lat":     "12.971599",
		"lng":     "77.594566",
	})
	req := httptest.NewRequest(http.MethodPost, "/vendor/billboards/new", body)
	req.Header.Set("Content-Type", contentType)

	rec := app.serve(app.signIn(session.UserTypeVendor), http.HandlerFunc(h.CreateBillboard), req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteVendor+"/billboards", rec.Header().Get("Location"))
}

func TestVendorDashboardSurvivesPendingFetchFailure(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/vendor/billboard/list/":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"count": 1, "total_pages": 1, "results": [
				{"static_id": "bb-1", "title": "Hoarding"}
			]}`))
		case "/users/vendor/bookings/list/":
			http.Error(w, `{"detail":"boom"}`, http.StatusInternalServerError)
		default:
			t.Errorf("unexpected backend path %s", r.URL.Path)
		}
	})
	h := newVendorHandler(app)

	req := httptest.NewRequest(http.MethodGet, RouteVendor, nil)
	rec := app.serve(app.signIn(session.UserTypeVendor), http.HandlerFunc(h.Dashboard), req)

	// Inventory renders even when the pending bookings panel cannot load.
	assert.Equal(t, http.StatusOK, rec.Code)
}
