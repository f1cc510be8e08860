// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/adboardhq/adboard-web/internal/api"
	"github.com/adboardhq/adboard-web/internal/content"
	"github.com/adboardhq/adboard-web/internal/fetch"
	"github.com/adboardhq/adboard-web/internal/geo"
	"github.com/adboardhq/adboard-web/internal/imaging"
	"github.com/adboardhq/adboard-web/internal/render"
	"github.com/adboardhq/adboard-web/internal/service"
	"github.com/adboardhq/adboard-web/internal/session"
	"github.com/adboardhq/adboard-web/internal/uikit"
	"github.com/adboardhq/adboard-web/internal/util"
)

// maxListingFormBytes bounds the multipart form for new listings.
const maxListingFormBytes = 12 << 20

// VendorHandler handles the vendor dashboard, inventory and booking decisions.
type VendorHandler struct {
	apiClient    *api.Client
	renderer     *render.Renderer
	sessions     *session.Store
	eventService *service.EventService
	processor    *imaging.Processor
	geocoder     *geo.Client
}

// NewVendorHandler creates a new VendorHandler.
func NewVendorHandler(apiClient *api.Client, renderer *render.Renderer, sessions *session.Store, es *service.EventService, processor *imaging.Processor, geocoder *geo.Client) *VendorHandler {
	return &VendorHandler{
		apiClient:    apiClient,
		renderer:     renderer,
		sessions:     sessions,
		eventService: es,
		processor:    processor,
		geocoder:     geocoder,
	}
}

// vendorDashboardData feeds the vendor dashboard template.
type vendorDashboardData struct {
	Billboards      []api.Billboard
	PendingBookings []api.Booking
}

// Dashboard renders the vendor landing page: the first page of inventory
// alongside pending booking requests.
func (h *VendorHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	token := h.sessions.AccessToken(r.Context())

	billboards, err := h.apiClient.ListVendorBillboards(r.Context(), token, 1)
	if err != nil {
		handleAPIError(w, r, h.renderer, h.sessions, RouteRoot, err)
		return
	}

	data := vendorDashboardData{Billboards: billboards.Results}
	if pending, err := h.apiClient.ListVendorBookings(r.Context(), token, api.BookingStatusPending, 1); err == nil {
		data.PendingBookings = pending.Results
	} else {
		slog.Warn("pending bookings fetch failed", "error", err)
	}

	if err := h.renderer.Render(w, r, "vendor_dashboard", render.TemplateData{
		Title:           "Vendor Dashboard",
		Data:            data,
		IsAuthenticated: true,
		UserType:        session.UserTypeVendor,
	}); err != nil {
		logAndInternalError(w, "failed to render vendor dashboard", "error", err)
	}
}

// vendorBillboardsData feeds the inventory listing template.
type vendorBillboardsData struct {
	Billboards []api.Billboard
	Pagination uikit.Pagination
}

// Billboards renders one page of the vendor's inventory.
func (h *VendorHandler) Billboards(w http.ResponseWriter, r *http.Request) {
	token := h.sessions.AccessToken(r.Context())
	page := uikit.ParsePageParam(r)

	result, err := h.apiClient.ListVendorBillboards(r.Context(), token, page)
	if err != nil {
		handleAPIError(w, r, h.renderer, h.sessions, RouteVendor, err)
		return
	}

	data := vendorBillboardsData{
		Billboards: result.Results,
		Pagination: uikit.BuildPagination(page, result.TotalPages, int64(result.Count), RouteVendor+"/billboards", r.URL.Query()),
	}
	if err := h.renderer.Render(w, r, "vendor_billboards", render.TemplateData{
		Title:           "My Billboards",
		Data:            data,
		IsAuthenticated: true,
		UserType:        session.UserTypeVendor,
	}); err != nil {
		logAndInternalError(w, "failed to render vendor billboards", "error", err)
	}
}

// vendorBillboardDetailData is a billboard plus its sanitized description.
type vendorBillboardDetailData struct {
	*api.Billboard
	DescriptionHTML template.HTML
}

// BillboardDetail renders one of the vendor's own billboards.
func (h *VendorHandler) BillboardDetail(w http.ResponseWriter, r *http.Request) {
	token := h.sessions.AccessToken(r.Context())
	staticID := chi.URLParam(r, "id")

	billboard, err := h.apiClient.VendorBillboardDetail(r.Context(), token, staticID)
	if err != nil {
		handleAPIError(w, r, h.renderer, h.sessions, RouteVendor+"/billboards", err)
		return
	}

	if err := h.renderer.Render(w, r, "vendor_billboard_detail", render.TemplateData{
		Title: billboard.Title,
		Data: vendorBillboardDetailData{
			Billboard:       billboard,
			DescriptionHTML: content.Sanitize(billboard.Description),
		},
		IsAuthenticated: true,
		UserType:        session.UserTypeVendor,
	}); err != nil {
		logAndInternalError(w, "failed to render vendor billboard detail", "error", err)
	}
}

// NewBillboardForm renders the listing creation form.
func (h *VendorHandler) NewBillboardForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "vendor_billboard_new", render.TemplateData{
		Title:           "List a Billboard",
		IsAuthenticated: true,
		UserType:        session.UserTypeVendor,
	}); err != nil {
		logAndInternalError(w, "failed to render listing form", "error", err)
	}
}

// CreateBillboard handles the listing form submission. The photo is
// normalized before forwarding, and missing coordinates are backfilled by
// geocoding the address when a key is configured.
func (h *VendorHandler) CreateBillboard(w http.ResponseWriter, r *http.Request) {
	formURL := RouteVendor + "/billboards/new"

	if err := r.ParseMultipartForm(maxListingFormBytes); err != nil {
		flashError(w, r, h.renderer, formURL, "Invalid form data")
		return
	}

	params := api.CreateBillboardParams{
		Title:    strings.TrimSpace(r.FormValue("title")),
		Address:  strings.TrimSpace(r.FormValue("address")),
		CityName: strings.TrimSpace(r.FormValue("city")),
		Type:     strings.TrimSpace(r.FormValue("type")),
		Price:    strings.TrimSpace(r.FormValue("price")),
		Size:     strings.TrimSpace(r.FormValue("size")),
	}

	if params.Title == "" || params.Address == "" || params.CityName == "" || params.Price == "" {
		flashError(w, r, h.renderer, formURL, "Title, address, city and price are required")
		return
	}
	if _, err := strconv.ParseFloat(params.Price, 64); err != nil {
		flashError(w, r, h.renderer, formURL, "Price must be a number")
		return
	}

	params.Latitude, params.Longitude, params.Address = h.resolveLocation(r.Context(), r.FormValue("lat"), r.FormValue("lng"), params.Address)

	if file, header, err := r.FormFile("photo"); err == nil {
		defer func() { _ = file.Close() }()

		normalized, err := h.processor.Normalize(file, header.Filename)
		if err != nil {
			flashError(w, r, h.renderer, formURL, "Could not process the photo: "+err.Error())
			return
		}
		params.PhotoName = normalized.Filename
		params.PhotoData = bytes.NewReader(normalized.Data)
	}

	token := h.sessions.AccessToken(r.Context())
	if err := h.apiClient.CreateBillboard(r.Context(), token, params); err != nil {
		handleAPIError(w, r, h.renderer, h.sessions, formURL, err)
		return
	}

	h.eventService.LogBooking(r.Context(), "info", "Billboard listed",
		util.ClientIP(r), r.UserAgent(), r.URL.Path,
		map[string]any{"title": params.Title, "city": params.CityName})

	flashSuccess(w, r, h.renderer, RouteVendor+"/billboards", "Billboard listed")
}

// resolveLocation prefers the browser widget's coordinates, canonicalizing
// the free-text address from them by reverse geocode; otherwise it
// forward-geocodes the typed address. A zero pair means unknown, and the
// typed address survives every failure.
func (h *VendorHandler) resolveLocation(ctx context.Context, latStr, lngStr, address string) (float64, float64, string) {
	lat, latErr := strconv.ParseFloat(latStr, 64)
	lng, lngErr := strconv.ParseFloat(lngStr, 64)
	if latErr == nil && lngErr == nil && (lat != 0 || lng != 0) {
		formatted, err := h.geocoder.Reverse(ctx, geo.Location{Latitude: lat, Longitude: lng})
		if err != nil {
			if !errors.Is(err, geo.ErrNoResults) {
				slog.Warn("reverse geocode failed", "error", err)
			}
			return lat, lng, address
		}
		return lat, lng, formatted
	}

	if !h.geocoder.Enabled() {
		return 0, 0, address
	}
	loc, err := h.geocoder.Forward(ctx, address)
	if err != nil {
		if !errors.Is(err, geo.ErrNoResults) {
			slog.Warn("geocode backfill failed", "error", err)
		}
		return 0, 0, address
	}
	return loc.Latitude, loc.Longitude, address
}

// vendorBookingsData feeds the vendor bookings template.
type vendorBookingsData struct {
	Rows       []BookingRow
	Status     string
	Pagination uikit.Pagination
}

// Bookings renders one page of booking requests against the vendor's
// inventory, with billboard titles resolved concurrently.
func (h *VendorHandler) Bookings(w http.ResponseWriter, r *http.Request) {
	token := h.sessions.AccessToken(r.Context())
	status := validStatusFilter(r.URL.Query().Get("status"))
	page := uikit.ParsePageParam(r)

	result, err := h.apiClient.ListVendorBookings(r.Context(), token, status, page)
	if err != nil {
		handleAPIError(w, r, h.renderer, h.sessions, RouteVendor, err)
		return
	}

	ids := make([]string, 0, len(result.Results))
	for _, b := range result.Results {
		ids = append(ids, b.BillboardID)
	}
	billboards, err := fetch.Map(r.Context(), ids, 0, func(ctx context.Context, id string) (*api.Billboard, error) {
		return h.apiClient.VendorBillboardDetail(ctx, token, id)
	})
	if err != nil {
		slog.Debug("vendor booking fan-out cancelled", "error", err)
		return
	}

	rows := make([]BookingRow, 0, len(result.Results))
	for _, b := range result.Results {
		rows = append(rows, BookingRow{Booking: b, Billboard: billboards[b.BillboardID]})
	}

	data := vendorBookingsData{
		Rows:       rows,
		Status:     status,
		Pagination: uikit.BuildPagination(page, result.TotalPages, int64(result.Count), RouteVendor+"/bookings", r.URL.Query()),
	}
	if err := h.renderer.Render(w, r, "vendor_bookings", render.TemplateData{
		Title:           "Booking Requests",
		Data:            data,
		IsAuthenticated: true,
		UserType:        session.UserTypeVendor,
	}); err != nil {
		logAndInternalError(w, "failed to render vendor bookings", "error", err)
	}
}

// BookingDetail renders a single booking request.
func (h *VendorHandler) BookingDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return
	}

	token := h.sessions.AccessToken(r.Context())
	booking, err := h.apiClient.VendorBookingDetail(r.Context(), token, id)
	if err != nil {
		handleAPIError(w, r, h.renderer, h.sessions, RouteVendor+"/bookings", err)
		return
	}

	data := bookingDetailData{Booking: booking}
	if billboard, err := h.apiClient.VendorBillboardDetail(r.Context(), token, booking.BillboardID); err == nil {
		data.Billboard = billboard
	}

	if err := h.renderer.Render(w, r, "vendor_booking_detail", render.TemplateData{
		Title:           "Booking Request #" + strconv.FormatInt(booking.ID, 10),
		Data:            data,
		IsAuthenticated: true,
		UserType:        session.UserTypeVendor,
	}); err != nil {
		logAndInternalError(w, "failed to render vendor booking detail", "error", err)
	}
}

// UpdateBookingStatus confirms or cancels a booking request. The only
// statuses this form can set are confirmed and cancelled; everything else is
// rejected before the backend sees it.
func (h *VendorHandler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return
	}
	detailURL := RouteVendor + "/bookings/" + strconv.FormatInt(id, 10)

	if !parseFormOrRedirect(w, r, h.renderer, detailURL) {
		return
	}

	status := r.FormValue("status")
	if status != api.BookingStatusConfirmed && status != api.BookingStatusCancelled {
		flashError(w, r, h.renderer, detailURL, "Invalid booking status")
		return
	}

	token := h.sessions.AccessToken(r.Context())
	if err := h.apiClient.UpdateVendorBookingStatus(r.Context(), token, id, status); err != nil {
		handleAPIError(w, r, h.renderer, h.sessions, detailURL, err)
		return
	}

	h.eventService.LogBooking(r.Context(), "info", "Booking "+status,
		util.ClientIP(r), r.UserAgent(), r.URL.Path, map[string]any{"booking_id": id})

	flashSuccess(w, r, h.renderer, RouteVendor+"/bookings", "Booking "+status)
}
