// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
)

// CreateAccountParams registers a new marketplace account.
type CreateAccountParams struct {
	Username string `json:"username"`
	Password string `json:"password"`
	UserType string `json:"usertype"`
	Email    string `json:"email"`
}

// CreateAccount registers an account and returns the initial token pair.
// The response carries no role; the caller already knows it from the form.
func (c *Client) CreateAccount(ctx context.Context, p CreateAccountParams) (*TokenPair, error) {
	var tokens TokenPair
	if err := c.postJSON(ctx, "/users/create_account/", p, "", &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Login performs a password login. This endpoint takes a URL-encoded body,
// not JSON.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var result LoginResult
	if err := c.postForm(ctx, "/users/vendorLogin/", form, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GoogleLogin exchanges an OAuth identity credential for a token pair.
func (c *Client) GoogleLogin(ctx context.Context, credential string) (*TokenPair, error) {
	var tokens TokenPair
	payload := map[string]string{"token": credential}
	if err := c.postJSON(ctx, "/users/googleLogin/", payload, "", &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// CompleteProfileParams carries the onboarding wizard's collected fields.
// Photo is optional; when PhotoData is nil no file part is written.
type CompleteProfileParams struct {
	UserType  string
	Phone     string
	Address   string
	Company   string
	Pincode   string
	PhotoName string
	PhotoData io.Reader
}

// CompleteProfile submits the onboarding data as one multipart request.
func (c *Client) CompleteProfile(ctx context.Context, token string, p CompleteProfileParams) error {
	body, contentType, err := encodeMultipart(map[string]string{
		"userType": p.UserType,
		"phone":    p.Phone,
		"address":  p.Address,
		"company":  p.Company,
		"pincode":  p.Pincode,
	}, "photo", p.PhotoName, p.PhotoData)
	if err != nil {
		return err
	}
	return c.postMultipart(ctx, "/users/profile/complete/", body, contentType, token, nil)
}

// VendorProfileDetail fetches a vendor's public profile.
func (c *Client) VendorProfileDetail(ctx context.Context, token string, vendorID int64) (*VendorProfile, error) {
	q := url.Values{}
	q.Set("id", fmt.Sprint(vendorID))

	var profile VendorProfile
	if err := c.getJSON(ctx, "/users/vendor/profile/detail/", q, token, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// encodeMultipart builds a multipart body from text fields plus an optional
// single file part. Bodies are buffered in memory; uploads are bounded
// upstream by the image pipeline.
func encodeMultipart(fields map[string]string, fileField, fileName string, fileData io.Reader) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", k, err)
		}
	}

	if fileData != nil {
		part, err := w.CreateFormFile(fileField, fileName)
		if err != nil {
			return nil, "", fmt.Errorf("creating file part: %w", err)
		}
		if _, err := io.Copy(part, fileData); err != nil {
			return nil, "", fmt.Errorf("writing file part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
