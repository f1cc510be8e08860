// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for route guarding, rate
// limiting, and request context handling.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/adboardhq/adboard-web/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyRequestPath holds the request path for error logging.
const ContextKeyRequestPath ContextKey = "request_path"

// Guard declares the access requirements of a route group. The router builds
// its middleware chain from this table; pages never opt into protection
// individually, so a new route is guarded by construction.
type Guard struct {
	// Auth requires a signed-in session.
	Auth bool

	// CompleteProfile additionally requires finished onboarding.
	CompleteProfile bool

	// Role restricts the group to one marketplace role
	// (session.UserTypeVendor or session.UserTypeAdvertiser). Empty allows
	// any signed-in role.
	Role string
}

// Guard presets used by the router.
var (
	GuardPublic     = Guard{}
	GuardSignedIn   = Guard{Auth: true}
	GuardVendor     = Guard{Auth: true, CompleteProfile: true, Role: session.UserTypeVendor}
	GuardAdvertiser = Guard{Auth: true, CompleteProfile: true, Role: session.UserTypeAdvertiser}
)

// Middlewares expands a guard into its middleware chain, outermost first.
func (g Guard) Middlewares(sessions *session.Store) []func(http.Handler) http.Handler {
	var chain []func(http.Handler) http.Handler
	if g.Auth {
		chain = append(chain, RequireAuth(sessions))
	}
	if g.CompleteProfile {
		chain = append(chain, RequireCompletedProfile(sessions))
	}
	if g.Role != "" {
		chain = append(chain, RequireRole(sessions, g.Role))
	}
	return chain
}

// RequireAuth redirects anonymous visitors to the sign-in page, carrying the
// intended destination in the next parameter. No backend call is made before
// the redirect.
func RequireAuth(sessions *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sessions.IsAuthenticated(r.Context()) {
				target := "/signin"
				if r.Method == http.MethodGet && r.URL.Path != "/" {
					target += "?next=" + url.QueryEscape(r.URL.RequestURI())
				}
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCompletedProfile sends signed-in users with unfinished onboarding to
// the profile wizard. Must run after RequireAuth.
func RequireCompletedProfile(sessions *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sessions.ProfileCompleted(r.Context()) {
				http.Redirect(w, r, "/profile/complete", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole rejects signed-in users whose marketplace role does not match.
// Must run after RequireAuth.
func RequireRole(sessions *session.Store, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := sessions.UserType(r.Context())
			if got != role {
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"user_type", got,
					"required_type", role,
					"remote_addr", r.RemoteAddr,
				)
				http.Error(w, "Forbidden: this page is for "+role+" accounts", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RedirectIfAuthenticated keeps signed-in users off the sign-in and sign-up
// pages, sending them to their role home instead.
func RedirectIfAuthenticated(sessions *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sessions.IsAuthenticated(r.Context()) {
				http.Redirect(w, r, HomeFor(sessions.UserType(r.Context())), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HomeFor returns the landing route for a marketplace role.
func HomeFor(userType string) string {
	if userType == session.UserTypeVendor {
		return "/vendor"
	}
	return "/cities"
}

// RequestPath stores the request path in the context so the event log handler
// can attach the URL to error records.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the request path from the context.
func GetRequestPath(ctx context.Context) string {
	path, ok := ctx.Value(ContextKeyRequestPath).(string)
	if !ok {
		return ""
	}
	return path
}
