// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api is the HTTP client for the marketplace backend. It owns request
// building (JSON by default, with form-encoded login and multipart uploads as
// the two documented exceptions), bearer authentication, and error mapping.
// There are no retries and no response caching: the backend is the single
// source of truth and every page refetches what it shows.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrUnavailable is the fixed error surfaced for transport-level failures.
// Handlers show it verbatim; the real cause is logged, not rendered.
var ErrUnavailable = errors.New("the service is temporarily unavailable, please try again")

// ErrUnauthorized marks a backend 401. Guards treat it as a stale or missing
// token and redirect to sign-in.
var ErrUnauthorized = errors.New("unauthorized")

// Error is a non-2xx backend response with the backend-supplied message when
// one was present.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Client talks to the marketplace backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the given base URL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// request describes a single backend call.
type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	token       string // bearer token, empty for anonymous calls
}

// do executes the request and decodes a JSON response into out (when non-nil).
func (c *Client) do(ctx context.Context, req request, out any) error {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, req.body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Context cancellation is the caller's doing (page teardown); keep it
		// distinguishable from a backend outage.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.mapError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// errorBody covers the message field names the backend uses.
type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// mapError converts a non-2xx response into an *Error (or ErrUnauthorized for 401).
func (c *Client) mapError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var eb errorBody
	message := ""
	if json.Unmarshal(body, &eb) == nil {
		switch {
		case eb.Detail != "":
			message = eb.Detail
		case eb.Message != "":
			message = eb.Message
		case eb.Error != "":
			message = eb.Error
		}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if message != "" {
			return fmt.Errorf("%w: %s", ErrUnauthorized, message)
		}
		return ErrUnauthorized
	}

	return &Error{Status: resp.StatusCode, Message: message}
}

// getJSON issues an authenticated-or-anonymous GET.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, token string, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, query: query, token: token}, out)
}

// postJSON issues a POST with a JSON body.
func (c *Client) postJSON(ctx context.Context, path string, payload any, token string, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	return c.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        bytes.NewReader(body),
		contentType: "application/json",
		token:       token,
	}, out)
}

// postForm issues a POST with a URL-encoded body. Only the password-login
// endpoint uses this shape.
func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	return c.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
		token:       "",
	}, out)
}

// postMultipart issues a POST with a prepared multipart body.
func (c *Client) postMultipart(ctx context.Context, path string, body io.Reader, contentType, token string, out any) error {
	return c.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        body,
		contentType: contentType,
		token:       token,
	}, out)
}
