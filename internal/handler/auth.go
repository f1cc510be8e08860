// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/adboardhq/adboard-web/internal/api"
	"github.com/adboardhq/adboard-web/internal/auth"
	"github.com/adboardhq/adboard-web/internal/middleware"
	"github.com/adboardhq/adboard-web/internal/render"
	"github.com/adboardhq/adboard-web/internal/service"
	"github.com/adboardhq/adboard-web/internal/session"
	"github.com/adboardhq/adboard-web/internal/util"
)

// AuthHandler handles sign-in, sign-up, Google login and logout.
type AuthHandler struct {
	apiClient       *api.Client
	renderer        *render.Renderer
	sessions        *session.Store
	eventService    *service.EventService
	loginProtection *middleware.LoginProtection
	googleClientID  string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(apiClient *api.Client, renderer *render.Renderer, sessions *session.Store, es *service.EventService, lp *middleware.LoginProtection, googleClientID string) *AuthHandler {
	return &AuthHandler{
		apiClient:       apiClient,
		renderer:        renderer,
		sessions:        sessions,
		eventService:    es,
		loginProtection: lp,
		googleClientID:  googleClientID,
	}
}

// signInPageData feeds the sign-in and sign-up templates.
type signInPageData struct {
	Next           string
	GoogleClientID string
}

// SignInForm renders the sign-in page.
func (h *AuthHandler) SignInForm(w http.ResponseWriter, r *http.Request) {
	data := signInPageData{
		Next:           safeNextURL(r.URL.Query().Get("next")),
		GoogleClientID: h.googleClientID,
	}
	if err := h.renderer.Render(w, r, "signin", render.TemplateData{Title: "Sign In", Data: data}); err != nil {
		logAndInternalError(w, "failed to render sign-in page", "error", err)
	}
}

// SignIn handles the sign-in form submission.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteSignIn) {
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	next := safeNextURL(r.FormValue("next"))

	if username == "" || password == "" {
		flashError(w, r, h.renderer, RouteSignIn, "Username and password are required")
		return
	}

	if locked, remaining := h.loginProtection.IsAccountLocked(username); locked {
		flashError(w, r, h.renderer, RouteSignIn,
			fmt.Sprintf("Account temporarily locked. Try again in %d minutes.", int(remaining.Minutes())+1))
		return
	}

	result, err := h.apiClient.Login(r.Context(), username, password)
	if err != nil {
		h.loginProtection.RecordFailedAttempt(username)
		h.eventService.LogAuth(r.Context(), "warning", "Sign-in failed",
			util.ClientIP(r), r.UserAgent(), r.URL.Path, map[string]any{"username": username})

		var apiErr *api.Error
		if errors.As(err, &apiErr) || errors.Is(err, api.ErrUnauthorized) {
			flashError(w, r, h.renderer, RouteSignIn, "Invalid username or password")
			return
		}
		flashError(w, r, h.renderer, RouteSignIn, api.ErrUnavailable.Error())
		return
	}

	h.loginProtection.RecordSuccessfulLogin(username)

	// An account that can password-login has finished onboarding; the wizard
	// only gates accounts created through registration this session.
	if err := h.sessions.SignIn(r.Context(), result.Access, result.Refresh, result.UserType, true); err != nil {
		logAndInternalError(w, "failed to establish session", "error", err)
		return
	}

	h.eventService.LogAuth(r.Context(), "info", "User signed in",
		util.ClientIP(r), r.UserAgent(), r.URL.Path, map[string]any{"username": username, "user_type": result.UserType})

	if next != "" {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, middleware.HomeFor(result.UserType), http.StatusSeeOther)
}

// SignUpForm renders the registration page.
func (h *AuthHandler) SignUpForm(w http.ResponseWriter, r *http.Request) {
	data := signInPageData{GoogleClientID: h.googleClientID}
	if err := h.renderer.Render(w, r, "signup", render.TemplateData{Title: "Create Account", Data: data}); err != nil {
		logAndInternalError(w, "failed to render sign-up page", "error", err)
	}
}

// SignUp handles the registration form submission.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteSignUp) {
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	userType := r.FormValue("usertype")

	if username == "" || email == "" || password == "" {
		flashError(w, r, h.renderer, RouteSignUp, "Username, email and password are required")
		return
	}
	if userType != session.UserTypeVendor && userType != session.UserTypeAdvertiser {
		flashError(w, r, h.renderer, RouteSignUp, "Please choose an account type")
		return
	}
	if len(password) < 8 {
		flashError(w, r, h.renderer, RouteSignUp, "Password must be at least 8 characters")
		return
	}

	tokens, err := h.apiClient.CreateAccount(r.Context(), api.CreateAccountParams{
		Username: username,
		Password: password,
		UserType: userType,
		Email:    email,
	})
	if err != nil {
		handleAPIError(w, r, h.renderer, h.sessions, RouteSignUp, err)
		return
	}

	// Fresh accounts have no profile yet; the onboarding guard routes them
	// into the wizard on their first protected page.
	if err := h.sessions.SignIn(r.Context(), tokens.Access, tokens.Refresh, userType, false); err != nil {
		logAndInternalError(w, "failed to establish session", "error", err)
		return
	}

	h.eventService.LogAuth(r.Context(), "info", "Account created",
		util.ClientIP(r), r.UserAgent(), r.URL.Path, map[string]any{"username": username, "user_type": userType})

	http.Redirect(w, r, RouteProfileComplete, http.StatusSeeOther)
}

// GoogleSignIn receives the credential posted by the Google identity widget.
// The backend verifies the credential; the role claim is read (unverified)
// from the returned access token purely for routing.
func (h *AuthHandler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteSignIn) {
		return
	}

	credential := r.FormValue("credential")
	if credential == "" {
		flashError(w, r, h.renderer, RouteSignIn, "Google sign-in failed. Please try again.")
		return
	}

	tokens, err := h.apiClient.GoogleLogin(r.Context(), credential)
	if err != nil {
		handleAPIError(w, r, h.renderer, h.sessions, RouteSignIn, err)
		return
	}

	userType := auth.UserTypeFromToken(tokens.Access)

	// A Google account may be brand new; without a role claim it still has to
	// pick one in the wizard.
	completed := userType != ""
	if err := h.sessions.SignIn(r.Context(), tokens.Access, tokens.Refresh, userType, completed); err != nil {
		logAndInternalError(w, "failed to establish session", "error", err)
		return
	}

	h.eventService.LogAuth(r.Context(), "info", "User signed in with Google",
		util.ClientIP(r), r.UserAgent(), r.URL.Path, map[string]any{"user_type": userType})

	if !completed {
		http.Redirect(w, r, RouteProfileComplete, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, middleware.HomeFor(userType), http.StatusSeeOther)
}

// Logout destroys the session. Tokens are simply discarded; the backend keeps
// no session state for this client.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.eventService.LogAuth(r.Context(), "info", "User signed out",
		util.ClientIP(r), r.UserAgent(), r.URL.Path, nil)

	if err := h.sessions.Clear(r.Context()); err != nil {
		logAndInternalError(w, "failed to destroy session", "error", err)
		return
	}
	http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
}

// safeNextURL only accepts same-site relative paths, guarding against open
// redirects through the next parameter.
func safeNextURL(next string) string {
	if next == "" {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return ""
	}
	return u.RequestURI()
}
