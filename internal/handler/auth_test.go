// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adboardhq/adboard-web/internal/middleware"
	"github.com/adboardhq/adboard-web/internal/session"
)

func TestSafeNextURL(t *testing.T) {
	tests := []struct {
		name string
		next string
		want string
	}{
		{"empty", "", ""},
		{"relative path", "/bookings", "/bookings"},
		{"path with query", "/bookings?page=2", "/bookings?page=2"},
		{"absolute url", "https://evil.example/phish", ""},
		{"protocol relative", "//evil.example/phish", ""},
		{"missing leading slash", "bookings", ""},
		{"scheme only", "javascript:alert(1)", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, safeNextURL(tt.next))
		})
	}
}

func newAuthHandler(app *testApp) *AuthHandler {
	lp := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	return NewAuthHandler(app.apiClient, app.renderer, app.sessions, app.events, lp, "google-client-id")
}

func signInRequest(username, password, next string) *http.Request {
	form := url.Values{"username": {username}, "password": {password}}
	if next != "" {
		form.Set("next", next)
	}
	req := httptest.NewRequest(http.MethodPost, RouteSignIn, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestSignInEstablishesSessionAndRedirectsHome(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/vendorLogin/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access":"acc-tok","refresh":"ref-tok","usertype":"vendor"}`))
	})
	h := newAuthHandler(app)

	var gotToken, gotType string
	var gotCompleted bool
	rec := app.serve(nil, postInspect(h.SignIn, app, &gotToken, &gotType, &gotCompleted), signInRequest("alice", "secret", ""))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteVendor, rec.Header().Get("Location"))
	assert.Equal(t, "acc-tok", gotToken)
	assert.Equal(t, session.UserTypeVendor, gotType)
	assert.True(t, gotCompleted, "password login implies a completed profile")
}

// postInspect wraps a handler and records session state after it runs, while
// the scs context is still live.
func postInspect(h http.HandlerFunc, app *testApp, token, userType *string, completed *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h(w, r)
		*token = app.sessions.AccessToken(r.Context())
		*userType = app.sessions.UserType(r.Context())
		*completed = app.sessions.ProfileCompleted(r.Context())
	})
}

func TestSignInHonorsNextParam(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access":"a","refresh":"r","usertype":"advertiser"}`))
	})
	h := newAuthHandler(app)

	rec := app.serve(nil, http.HandlerFunc(h.SignIn), signInRequest("alice", "secret", "/bookings?page=2"))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/bookings?page=2", rec.Header().Get("Location"))
}

func TestSignInRejectsInvalidCredentials(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"No active account found with the given credentials"}`))
	})
	h := newAuthHandler(app)

	rec := app.serve(nil, http.HandlerFunc(h.SignIn), signInRequest("alice", "wrong", ""))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteSignIn, rec.Header().Get("Location"))
}

func TestSignInLocksOutAfterRepeatedFailures(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	h := newAuthHandler(app)

	for i := 0; i < 5; i++ {
		app.serve(nil, http.HandlerFunc(h.SignIn), signInRequest("mallory", "wrong", ""))
	}

	locked, remaining := h.loginProtection.IsAccountLocked("mallory")
	assert.True(t, locked)
	assert.Positive(t, remaining)
}

func TestSignUpRoutesIntoWizard(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/create_account/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access":"a","refresh":"r"}`))
	})
	h := newAuthHandler(app)

	form := url.Values{
		"username": {"bob"}, "email": {"bob@example.com"},
		"password": {"longenough"}, "usertype": {"advertiser"},
	}
	req := httptest.NewRequest(http.MethodPost, RouteSignUp, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var completed bool
	rec := app.serve(nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.SignUp(w, r)
		completed = app.sessions.ProfileCompleted(r.Context())
	}), req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteProfileComplete, rec.Header().Get("Location"))
	assert.False(t, completed, "fresh accounts must pass through the wizard")
}

func TestSignUpValidation(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid registrations must not reach the backend")
	})
	h := newAuthHandler(app)

	tests := []struct {
		name string
		form url.Values
	}{
		{"missing fields", url.Values{"username": {"bob"}}},
		{"bad user type", url.Values{"username": {"bob"}, "email": {"b@e.com"}, "password": {"longenough"}, "usertype": {"admin"}}},
		{"short password", url.Values{"username": {"bob"}, "email": {"b@e.com"}, "password": {"short"}, "usertype": {"vendor"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, RouteSignUp, strings.NewReader(tt.form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

			rec := app.serve(nil, http.HandlerFunc(h.SignUp), req)

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, RouteSignUp, rec.Header().Get("Location"))
		})
	}
}

func TestLogoutClearsSession(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {})
	h := newAuthHandler(app)

	var authenticated bool
	req := httptest.NewRequest(http.MethodPost, RouteLogout, nil)
	rec := app.serve(app.signIn(session.UserTypeAdvertiser), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Logout(w, r)
		authenticated = app.sessions.IsAuthenticated(r.Context())
	}), req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteRoot, rec.Header().Get("Location"))
	assert.False(t, authenticated)
}
