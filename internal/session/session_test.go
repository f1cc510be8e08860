// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore returns a Store over an in-memory session with a loaded context.
func testStore(t *testing.T) (*Store, context.Context) {
	t.Helper()
	sm := scs.New()
	ctx, err := sm.Load(context.Background(), "")
	require.NoError(t, err)
	return NewStore(sm), ctx
}

func TestEmptySession(t *testing.T) {
	s, ctx := testStore(t)

	assert.Empty(t, s.AccessToken(ctx))
	assert.Empty(t, s.RefreshToken(ctx))
	assert.Empty(t, s.UserType(ctx))
	assert.False(t, s.ProfileCompleted(ctx))
	assert.False(t, s.IsAuthenticated(ctx))
	assert.False(t, s.IsVendor(ctx))
}

func TestSignInStoresFields(t *testing.T) {
	s, ctx := testStore(t)

	require.NoError(t, s.SignIn(ctx, "acc-123", "ref-456", UserTypeVendor, true))

	assert.Equal(t, "acc-123", s.AccessToken(ctx))
	assert.Equal(t, "ref-456", s.RefreshToken(ctx))
	assert.Equal(t, UserTypeVendor, s.UserType(ctx))
	assert.True(t, s.ProfileCompleted(ctx))
	assert.True(t, s.IsAuthenticated(ctx))
	assert.True(t, s.IsVendor(ctx))
}

func TestLegacyTokenFallback(t *testing.T) {
	s, ctx := testStore(t)

	// Older sessions stored the access token under "token".
	s.sm.Put(ctx, LegacyKeyToken, "legacy-token")

	assert.Equal(t, "legacy-token", s.AccessToken(ctx))
	assert.True(t, s.IsAuthenticated(ctx))

	// A fresh sign-in clears the legacy alias.
	require.NoError(t, s.SignIn(ctx, "new-token", "", UserTypeAdvertiser, false))
	assert.Equal(t, "new-token", s.AccessToken(ctx))
	assert.Empty(t, s.sm.GetString(ctx, LegacyKeyToken))
}

func TestClearDestroysSession(t *testing.T) {
	s, ctx := testStore(t)

	require.NoError(t, s.SignIn(ctx, "acc", "ref", UserTypeAdvertiser, true))
	require.NoError(t, s.Clear(ctx))

	assert.Empty(t, s.AccessToken(ctx))
	assert.False(t, s.ProfileCompleted(ctx))
	assert.False(t, s.IsAuthenticated(ctx))
}

func TestSetProfileCompleted(t *testing.T) {
	s, ctx := testStore(t)

	require.NoError(t, s.SignIn(ctx, "acc", "", UserTypeAdvertiser, false))
	assert.False(t, s.ProfileCompleted(ctx))

	s.SetProfileCompleted(ctx, true)
	assert.True(t, s.ProfileCompleted(ctx))
}
