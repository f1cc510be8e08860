// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package geo is a thin client for the keyed geocoding HTTP endpoint. The
// browser-side places widget remains the primary path; this is the
// server-side fallback that backfills coordinates on billboard creation when
// the widget did not supply them.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const geocodeTimeout = 10 * time.Second

// ErrNoResults means the address (or coordinate pair) resolved to nothing.
var ErrNoResults = errors.New("no geocoding results")

// Location is a WGS84 coordinate pair.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Client calls the geocoding endpoint.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// New creates a geocoding client. Enabled() is false with an empty key and
// all lookups return ErrNoResults, so callers need no nil checks.
func New(endpoint, apiKey string) *Client {
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: geocodeTimeout},
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// geocodeResponse matches the geocoding API document layout.
type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location Location `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Forward resolves a street address to coordinates.
func (c *Client) Forward(ctx context.Context, address string) (*Location, error) {
	if !c.Enabled() {
		return nil, ErrNoResults
	}
	q := url.Values{}
	q.Set("address", address)
	return c.lookup(ctx, q)
}

// Reverse resolves coordinates to a formatted address.
func (c *Client) Reverse(ctx context.Context, loc Location) (string, error) {
	if !c.Enabled() {
		return "", ErrNoResults
	}
	q := url.Values{}
	q.Set("latlng", fmt.Sprintf("%f,%f", loc.Latitude, loc.Longitude))

	resp, err := c.query(ctx, q)
	if err != nil {
		return "", err
	}
	if len(resp.Results) == 0 {
		return "", ErrNoResults
	}
	return resp.Results[0].FormattedAddress, nil
}

func (c *Client) lookup(ctx context.Context, q url.Values) (*Location, error) {
	resp, err := c.query(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, ErrNoResults
	}
	loc := resp.Results[0].Geometry.Location
	return &loc, nil
}

func (c *Client) query(ctx context.Context, q url.Values) (*geocodeResponse, error) {
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building geocode request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode request returned status %d", resp.StatusCode)
	}

	var result geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parsing geocode response: %w", err)
	}
	if result.Status != "OK" && result.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("geocode request rejected: %s", result.Status)
	}
	return &result, nil
}
