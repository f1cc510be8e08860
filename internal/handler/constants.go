// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"
	// RouteParamSlug is the slug parameter pattern.
	RouteParamSlug = "/{slug}"

	// RouteSignIn is the sign-in route.
	RouteSignIn = "/signin"
	// RouteSignUp is the sign-up route.
	RouteSignUp = "/signup"
	// RouteAuthGoogle receives the Google identity credential.
	RouteAuthGoogle = "/auth/google"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"

	// RouteCities is the city browsing route.
	RouteCities = "/cities"
	// RouteBillboards is the billboard detail route prefix.
	RouteBillboards = "/billboards"
	// RouteBookings is the advertiser bookings route.
	RouteBookings = "/bookings"

	// RouteProfileComplete is the onboarding wizard route.
	RouteProfileComplete = "/profile/complete"

	// RouteVendor is the vendor dashboard route prefix.
	RouteVendor = "/vendor"
)

// Flash message types.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)
