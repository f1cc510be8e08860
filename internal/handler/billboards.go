// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/adboardhq/adboard-web/internal/api"
	"github.com/adboardhq/adboard-web/internal/content"
	"github.com/adboardhq/adboard-web/internal/render"
	"github.com/adboardhq/adboard-web/internal/service"
	"github.com/adboardhq/adboard-web/internal/session"
	"github.com/adboardhq/adboard-web/internal/util"
)

// dateLayout is the wire format for booking dates.
const dateLayout = "2006-01-02"

// BillboardHandler handles the public billboard detail page and the
// advertiser booking flow.
type BillboardHandler struct {
	apiClient    *api.Client
	renderer     *render.Renderer
	sessions     *session.Store
	eventService *service.EventService
	mapsAPIKey   string
}

// NewBillboardHandler creates a new BillboardHandler.
func NewBillboardHandler(apiClient *api.Client, renderer *render.Renderer, sessions *session.Store, es *service.EventService, mapsAPIKey string) *BillboardHandler {
	return &BillboardHandler{
		apiClient:    apiClient,
		renderer:     renderer,
		sessions:     sessions,
		eventService: es,
		mapsAPIKey:   mapsAPIKey,
	}
}

// billboardDetailData feeds the billboard detail template. DescriptionHTML is
// the backend's rich-text description, sanitized.
type billboardDetailData struct {
	Billboard       *api.Billboard
	Vendor          *api.VendorProfile
	DescriptionHTML template.HTML
	MapsAPIKey      string
	CanBook         bool
}

// Detail renders a billboard's detail page. The page is public; the vendor
// profile panel appears only for signed-in viewers because the backend
// requires a token for it.
func (h *BillboardHandler) Detail(w http.ResponseWriter, r *http.Request) {
	staticID := chi.URLParam(r, "id")
	token := h.sessions.AccessToken(r.Context())

	billboard, err := h.apiClient.BillboardDetail(r.Context(), token, staticID)
	if err != nil {
		handleAPIError(w, r, h.renderer, h.sessions, RouteCities, err)
		return
	}

	data := billboardDetailData{
		Billboard:       billboard,
		DescriptionHTML: content.Sanitize(billboard.Description),
		MapsAPIKey:      h.mapsAPIKey,
		CanBook: h.sessions.IsAuthenticated(r.Context()) &&
			h.sessions.UserType(r.Context()) == session.UserTypeAdvertiser &&
			billboard.Available,
	}

	// The vendor panel is decoration; losing it does not lose the page.
	if token != "" && billboard.VendorID > 0 {
		vendor, err := h.apiClient.VendorProfileDetail(r.Context(), token, billboard.VendorID)
		if err != nil {
			slog.Warn("vendor profile fetch failed", "error", err, "vendor_id", billboard.VendorID)
		} else {
			data.Vendor = vendor
		}
	}

	if err := h.renderer.Render(w, r, "billboard_detail", render.TemplateData{
		Title:           billboard.Title,
		Data:            data,
		IsAuthenticated: h.sessions.IsAuthenticated(r.Context()),
		UserType:        h.sessions.UserType(r.Context()),
	}); err != nil {
		logAndInternalError(w, "failed to render billboard detail", "error", err)
	}
}

// bookingFormData feeds the booking form template.
type bookingFormData struct {
	Billboard *api.Billboard
	MinDate   string
}

// BookForm renders the booking form for a billboard.
func (h *BillboardHandler) BookForm(w http.ResponseWriter, r *http.Request) {
	staticID := chi.URLParam(r, "id")
	token := h.sessions.AccessToken(r.Context())

	billboard, err := h.apiClient.BillboardDetail(r.Context(), token, staticID)
	if err != nil {
		handleAPIError(w, r, h.renderer, h.sessions, RouteCities, err)
		return
	}
	if !billboard.Available {
		flashError(w, r, h.renderer, RouteBillboards+"/"+staticID, "This billboard is not available for booking")
		return
	}

	data := bookingFormData{
		Billboard: billboard,
		MinDate:   time.Now().Format(dateLayout),
	}
	if err := h.renderer.Render(w, r, "booking_form", render.TemplateData{
		Title:           "Book " + billboard.Title,
		Data:            data,
		IsAuthenticated: true,
		UserType:        h.sessions.UserType(r.Context()),
	}); err != nil {
		logAndInternalError(w, "failed to render booking form", "error", err)
	}
}

// Book handles the booking form submission. Dates are validated locally
// before any backend call: both must parse, the start may not be in the past,
// and the end may not precede the start.
func (h *BillboardHandler) Book(w http.ResponseWriter, r *http.Request) {
	staticID := chi.URLParam(r, "id")
	formURL := RouteBillboards + "/" + staticID + "/book"

	if !parseFormOrRedirect(w, r, h.renderer, formURL) {
		return
	}

	startStr := strings.TrimSpace(r.FormValue("start_date"))
	endStr := strings.TrimSpace(r.FormValue("end_date"))

	if msg := validateBookingDates(startStr, endStr, time.Now()); msg != "" {
		flashError(w, r, h.renderer, formURL, msg)
		return
	}

	token := h.sessions.AccessToken(r.Context())
	booking, err := h.apiClient.CreateBooking(r.Context(), token, api.CreateBookingParams{
		StartDate:   startStr,
		EndDate:     endStr,
		BillboardID: staticID,
	})
	if err != nil {
		handleAPIError(w, r, h.renderer, h.sessions, formURL, err)
		return
	}

	h.eventService.LogBooking(r.Context(), "info", "Booking created",
		util.ClientIP(r), r.UserAgent(), r.URL.Path,
		map[string]any{"booking_id": booking.ID, "billboard": staticID, "start": startStr, "end": endStr})

	flashSuccess(w, r, h.renderer, RouteBookings, "Booking request sent. The vendor will confirm it shortly.")
}

// validateBookingDates returns an empty string when the range is acceptable,
// otherwise the message to show the user. now anchors the past-date check.
func validateBookingDates(startStr, endStr string, now time.Time) string {
	if startStr == "" || endStr == "" {
		return "Both start and end dates are required"
	}

	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		return "Invalid start date"
	}
	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		return "Invalid end date"
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if start.Before(today) {
		return "Start date cannot be in the past"
	}
	if end.Before(start) {
		return "End date cannot be before the start date"
	}
	return ""
}
