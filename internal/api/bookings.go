// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// CreateBookingParams requests a billboard for a date range. Dates are
// YYYY-MM-DD strings.
type CreateBookingParams struct {
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	BillboardID string `json:"id"`
}

// CreateBooking files a booking request on behalf of the advertiser.
func (c *Client) CreateBooking(ctx context.Context, token string, p CreateBookingParams) (*Booking, error) {
	var booking Booking
	if err := c.postJSON(ctx, "/users/advertiser/bookings/create/", p, token, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListBookings returns one page of the advertiser's bookings, optionally
// filtered by status.
func (c *Client) ListBookings(ctx context.Context, token, status string, page int) (*Page[Booking], error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	q.Set("page", strconv.Itoa(page))

	var result Page[Booking]
	if err := c.getJSON(ctx, "/users/advertiser/bookings/list/", q, token, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// BookingDetail fetches one of the advertiser's bookings.
func (c *Client) BookingDetail(ctx context.Context, token string, id int64) (*Booking, error) {
	q := url.Values{}
	q.Set("id", strconv.FormatInt(id, 10))

	var booking Booking
	if err := c.getJSON(ctx, "/users/advertiser/bookings/detail/", q, token, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListVendorBookings returns one page of booking requests against the
// signed-in vendor's inventory, optionally filtered by status.
func (c *Client) ListVendorBookings(ctx context.Context, token, status string, page int) (*Page[Booking], error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	q.Set("page", strconv.Itoa(page))

	var result Page[Booking]
	if err := c.getJSON(ctx, "/users/vendor/bookings/list/", q, token, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// VendorBookingDetail fetches a booking against the vendor's inventory.
func (c *Client) VendorBookingDetail(ctx context.Context, token string, id int64) (*Booking, error) {
	q := url.Values{}
	q.Set("id", strconv.FormatInt(id, 10))

	var booking Booking
	if err := c.getJSON(ctx, "/users/vendor/bookings/detail/", q, token, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateVendorBookingStatus transitions a booking to confirmed or cancelled.
// The decision itself is owned by the backend; this only relays it.
func (c *Client) UpdateVendorBookingStatus(ctx context.Context, token string, id int64, status string) error {
	if status != BookingStatusConfirmed && status != BookingStatusCancelled {
		return fmt.Errorf("invalid booking status %q", status)
	}
	q := url.Values{}
	q.Set("id", strconv.FormatInt(id, 10))
	q.Set("status", status)

	return c.do(ctx, request{
		method: "POST",
		path:   "/users/vendor/bookings/update/",
		query:  q,
		token:  token,
	}, nil)
}
