// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session wraps the scs session manager with typed accessors for the
// four pieces of browser session state this application owns: the backend
// token pair, the marketplace role, and the profile-completion flag. All
// marketplace entities are fetched fresh from the API on every page; the
// session is the only durable client-side state.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Session keys. LegacyKeyToken is an older alias for the access token that is
// still checked on reads for backward compatibility with existing sessions.
const (
	KeyAccessToken      = "access_token"
	KeyRefreshToken     = "refresh_token"
	KeyUserType         = "user_type"
	KeyProfileCompleted = "completed_profile"
	KeyWizardState      = "wizard_state"
	LegacyKeyToken      = "token"
)

// Marketplace roles.
const (
	UserTypeVendor     = "vendor"
	UserTypeAdvertiser = "advertiser"
)

// NewManager creates a new session manager configured with SQLite store.
func NewManager(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()

	// Use SQLite store
	sm.Store = sqlite3store.New(db)

	// Configure session
	sm.Lifetime = 24 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // Secure cookies in production only

	return sm
}

// Store provides typed access to the session fields. Handlers and guards go
// through Store instead of reading raw session keys ad hoc.
type Store struct {
	sm *scs.SessionManager
}

// NewStore wraps a session manager.
func NewStore(sm *scs.SessionManager) *Store {
	return &Store{sm: sm}
}

// Manager exposes the underlying scs manager for middleware wiring.
func (s *Store) Manager() *scs.SessionManager {
	return s.sm
}

// AccessToken returns the stored access token, falling back to the legacy
// "token" key. Empty string means not signed in.
func (s *Store) AccessToken(ctx context.Context) string {
	if token := s.sm.GetString(ctx, KeyAccessToken); token != "" {
		return token
	}
	return s.sm.GetString(ctx, LegacyKeyToken)
}

// RefreshToken returns the stored refresh token, if any.
func (s *Store) RefreshToken(ctx context.Context) string {
	return s.sm.GetString(ctx, KeyRefreshToken)
}

// UserType returns the stored marketplace role, or "".
func (s *Store) UserType(ctx context.Context) string {
	return s.sm.GetString(ctx, KeyUserType)
}

// ProfileCompleted reports whether onboarding has been finished.
func (s *Store) ProfileCompleted(ctx context.Context) bool {
	return s.sm.GetBool(ctx, KeyProfileCompleted)
}

// IsAuthenticated reports whether an access token is present. The token is
// not validated locally; an expired token surfaces as a backend 401.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	return s.AccessToken(ctx) != ""
}

// IsVendor reports whether the signed-in user is a vendor.
func (s *Store) IsVendor(ctx context.Context) bool {
	return s.UserType(ctx) == UserTypeVendor
}

// SignIn stores a fresh token pair and role, renewing the session token to
// prevent session fixation. Also clears the legacy token alias.
func (s *Store) SignIn(ctx context.Context, access, refresh, userType string, profileCompleted bool) error {
	if err := s.sm.RenewToken(ctx); err != nil {
		return err
	}
	s.sm.Put(ctx, KeyAccessToken, access)
	s.sm.Put(ctx, KeyRefreshToken, refresh)
	s.sm.Put(ctx, KeyUserType, userType)
	s.sm.Put(ctx, KeyProfileCompleted, profileCompleted)
	s.sm.Remove(ctx, LegacyKeyToken)
	return nil
}

// SetUserType updates the stored role.
func (s *Store) SetUserType(ctx context.Context, userType string) {
	s.sm.Put(ctx, KeyUserType, userType)
}

// SetProfileCompleted flips the onboarding flag.
func (s *Store) SetProfileCompleted(ctx context.Context, done bool) {
	s.sm.Put(ctx, KeyProfileCompleted, done)
}

// WizardState returns the serialized onboarding wizard, or "".
func (s *Store) WizardState(ctx context.Context) string {
	return s.sm.GetString(ctx, KeyWizardState)
}

// SetWizardState stores the serialized onboarding wizard.
func (s *Store) SetWizardState(ctx context.Context, state string) {
	s.sm.Put(ctx, KeyWizardState, state)
}

// ClearWizardState drops the onboarding wizard.
func (s *Store) ClearWizardState(ctx context.Context) {
	s.sm.Remove(ctx, KeyWizardState)
}

// Clear destroys the whole session (logout).
func (s *Store) Clear(ctx context.Context) error {
	return s.sm.Destroy(ctx)
}
