// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/adboardhq/adboard-web/internal/api"
	"github.com/adboardhq/adboard-web/internal/fetch"
	"github.com/adboardhq/adboard-web/internal/render"
	"github.com/adboardhq/adboard-web/internal/session"
	"github.com/adboardhq/adboard-web/internal/uikit"
)

// BookingsHandler handles the advertiser's booking pages.
type BookingsHandler struct {
	apiClient *api.Client
	renderer  *render.Renderer
	sessions  *session.Store
}

// NewBookingsHandler creates a new BookingsHandler.
func NewBookingsHandler(apiClient *api.Client, renderer *render.Renderer, sessions *session.Store) *BookingsHandler {
	return &BookingsHandler{apiClient: apiClient, renderer: renderer, sessions: sessions}
}

// BookingRow is a booking joined with its billboard's display fields.
type BookingRow struct {
	Booking   api.Booking
	Billboard *api.Billboard
}

// bookingListData feeds the bookings template.
type bookingListData struct {
	Rows       []BookingRow
	Status     string
	Pagination uikit.Pagination
}

// List renders one page of the advertiser's bookings. The booking records
// only carry billboard IDs, so the display titles are resolved with a
// bounded-concurrency fan-out; a failed lookup degrades that row to its raw
// ID instead of failing the page.
func (h *BookingsHandler) List(w http.ResponseWriter, r *http.Request) {
	token := h.sessions.AccessToken(r.Context())
	status := validStatusFilter(r.URL.Query().Get("status"))
	page := uikit.ParsePageParam(r)

	result, err := h.apiClient.ListBookings(r.Context(), token, status, page)
	if err != nil {
		handleAPIError(w, r, h.renderer, h.sessions, RouteRoot, err)
		return
	}

	rows, err := h.resolveBillboards(r, token, result.Results)
	if err != nil {
		// Only context cancellation reaches here; the client is gone.
		slog.Debug("booking fan-out cancelled", "error", err)
		return
	}

	data := bookingListData{
		Rows:       rows,
		Status:     status,
		Pagination: uikit.BuildPagination(page, result.TotalPages, int64(result.Count), RouteBookings, r.URL.Query()),
	}
	if err := h.renderer.Render(w, r, "bookings", render.TemplateData{
		Title:           "My Bookings",
		Data:            data,
		IsAuthenticated: true,
		UserType:        h.sessions.UserType(r.Context()),
	}); err != nil {
		logAndInternalError(w, "failed to render bookings", "error", err)
	}
}

// bookingDetailData feeds the booking detail template.
type bookingDetailData struct {
	Booking   *api.Booking
	Billboard *api.Billboard
}

// Detail renders a single booking with its billboard.
func (h *BookingsHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return
	}

	token := h.sessions.AccessToken(r.Context())
	booking, err := h.apiClient.BookingDetail(r.Context(), token, id)
	if err != nil {
		handleAPIError(w, r, h.renderer, h.sessions, RouteBookings, err)
		return
	}

	data := bookingDetailData{Booking: booking}
	if billboard, err := h.apiClient.BillboardDetail(r.Context(), token, booking.BillboardID); err == nil {
		data.Billboard = billboard
	} else {
		slog.Warn("billboard lookup failed for booking", "error", err, "billboard", booking.BillboardID)
	}

	if err := h.renderer.Render(w, r, "booking_detail", render.TemplateData{
		Title:           "Booking #" + strconv.FormatInt(booking.ID, 10),
		Data:            data,
		IsAuthenticated: true,
		UserType:        h.sessions.UserType(r.Context()),
	}); err != nil {
		logAndInternalError(w, "failed to render booking detail", "error", err)
	}
}

// resolveBillboards joins bookings with their billboards via a keyed
// concurrent fetch. Duplicate billboard IDs are fetched once.
func (h *BookingsHandler) resolveBillboards(r *http.Request, token string, bookings []api.Booking) ([]BookingRow, error) {
	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.BillboardID)
	}

	billboards, err := fetch.Map(r.Context(), ids, 0, func(ctx context.Context, id string) (*api.Billboard, error) {
		return h.apiClient.BillboardDetail(ctx, token, id)
	})
	if err != nil {
		return nil, err
	}

	rows := make([]BookingRow, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, BookingRow{Booking: b, Billboard: billboards[b.BillboardID]})
	}
	return rows, nil
}

// validStatusFilter normalizes the status query parameter to one of the known
// booking statuses or "".
func validStatusFilter(status string) string {
	switch status {
	case api.BookingStatusPending, api.BookingStatusConfirmed, api.BookingStatusCancelled:
		return status
	default:
		return ""
	}
}
