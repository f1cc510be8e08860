// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
)

// ListCities returns all cities with their billboard counts. The city list is
// not paginated; filtering happens client-side over the full set.
func (c *Client) ListCities(ctx context.Context) ([]City, error) {
	var cities []City
	if err := c.getJSON(ctx, "/users/city/billboards/list/", nil, "", &cities); err != nil {
		return nil, err
	}
	return cities, nil
}

// ListCityBillboards returns one page of billboards for a city.
func (c *Client) ListCityBillboards(ctx context.Context, cityID int64, page int) (*Page[Billboard], error) {
	q := url.Values{}
	q.Set("id", strconv.FormatInt(cityID, 10))
	q.Set("page", strconv.Itoa(page))

	var result Page[Billboard]
	if err := c.getJSON(ctx, "/users/city/billboard/citylist/", q, "", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// BillboardDetail fetches a single billboard. Token is optional: anonymous
// viewers see the same data, the backend only uses it for personalization.
func (c *Client) BillboardDetail(ctx context.Context, token, staticID string) (*Billboard, error) {
	q := url.Values{}
	q.Set("id", staticID)

	var billboard Billboard
	if err := c.getJSON(ctx, "/users/advertiser/billboard/detail/", q, token, &billboard); err != nil {
		return nil, err
	}
	return &billboard, nil
}

// ListVendorBillboards returns one page of the signed-in vendor's inventory.
func (c *Client) ListVendorBillboards(ctx context.Context, token string, page int) (*Page[Billboard], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))

	var result Page[Billboard]
	if err := c.getJSON(ctx, "/users/vendor/billboard/list/", q, token, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// VendorBillboardDetail fetches one of the signed-in vendor's billboards.
func (c *Client) VendorBillboardDetail(ctx context.Context, token, staticID string) (*Billboard, error) {
	q := url.Values{}
	q.Set("id", staticID)

	var billboard Billboard
	if err := c.getJSON(ctx, "/users/vendor/billboard/detail/", q, token, &billboard); err != nil {
		return nil, err
	}
	return &billboard, nil
}

// CreateBillboardParams describes a new listing. The photo is optional.
type CreateBillboardParams struct {
	Title     string
	Address   string
	CityName  string
	Type      string
	Price     string
	Size      string
	Latitude  float64
	Longitude float64
	PhotoName string
	PhotoData io.Reader
}

// CreateBillboard submits a new listing as a multipart request (the second of
// the two non-JSON request shapes).
func (c *Client) CreateBillboard(ctx context.Context, token string, p CreateBillboardParams) error {
	fields := map[string]string{
		"title":   p.Title,
		"address": p.Address,
		"city":    p.CityName,
		"type":    p.Type,
		"price":   p.Price,
		"size":    p.Size,
	}
	if p.Latitude != 0 || p.Longitude != 0 {
		fields["lat"] = fmt.Sprintf("%f", p.Latitude)
		fields["lng"] = fmt.Sprintf("%f", p.Longitude)
	}

	body, contentType, err := encodeMultipart(fields, "photo", p.PhotoName, p.PhotoData)
	if err != nil {
		return err
	}
	return c.postMultipart(ctx, "/users/vendor/billboard/create/", body, contentType, token, nil)
}
