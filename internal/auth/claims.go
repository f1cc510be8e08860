// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth inspects backend-issued access tokens. Signature verification
// belongs to the backend; this package only reads claims to bootstrap the
// session after OAuth sign-in, where the token pair arrives without a role.
package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of the backend's access-token payload this app reads.
type Claims struct {
	UserID   int64  `json:"user_id"`
	UserType string `json:"usertype"`
	jwt.RegisteredClaims
}

// ParseClaims decodes the token payload without verifying its signature.
// The result is advisory only: every authenticated API call still carries the
// raw token and the backend rejects tampered ones.
func ParseClaims(tokenString string) (*Claims, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return nil, fmt.Errorf("parsing access token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// UserTypeFromToken extracts the marketplace role claim, or "" when the token
// is unreadable or carries none.
func UserTypeFromToken(tokenString string) string {
	claims, err := ParseClaims(tokenString)
	if err != nil {
		return ""
	}
	return claims.UserType
}
