// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

// Booking statuses as reported by the backend.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// TokenPair is the credential pair returned by the account endpoints.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// LoginResult is the password-login response; unlike registration it also
// reports the account's marketplace role.
type LoginResult struct {
	Access   string `json:"access"`
	Refresh  string `json:"refresh"`
	UserType string `json:"usertype"`
}

// City is a browsing target with its aggregate billboard count.
type City struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Photo          string `json:"photo"`
	BillboardCount int    `json:"billboard_count"`
}

// Billboard is the read-side view of a listed billboard. StaticID is the
// stable external identifier; the internal database key never crosses the API.
type Billboard struct {
	StaticID    string  `json:"static_id"`
	Title       string  `json:"title"`
	Address     string  `json:"address"`
	CityID      int64   `json:"city"`
	CityName    string  `json:"city_name"`
	Type        string  `json:"type"`
	Price       float64 `json:"price"`
	Available   bool    `json:"availability"`
	Size        string  `json:"size"`
	Description string  `json:"description"`
	Latitude    float64 `json:"lat,omitempty"`
	Longitude   float64 `json:"lng,omitempty"`
	VendorID    int64   `json:"vendor,omitempty"`
	Photo       string  `json:"photo,omitempty"`
}

// Booking links an advertiser to a billboard for a date range. Dates are
// YYYY-MM-DD strings on the wire.
type Booking struct {
	ID          int64  `json:"id"`
	BillboardID string `json:"billboard"`
	Status      string `json:"status"`
	Active      bool   `json:"active"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	CreatedAt   string `json:"created_at"`
}

// VendorProfile is the public profile of a billboard vendor.
type VendorProfile struct {
	ID      int64  `json:"id"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Pincode string `json:"pincode"`
	Photo   string `json:"photo"`
}

// Page is a server-paginated result set. Changing page replaces, never
// appends to, the result slice.
type Page[T any] struct {
	Results    []T `json:"results"`
	Count      int `json:"count"`
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
}
