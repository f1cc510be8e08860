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
	"github.com/stretchr/testify/require"

	"github.com/adboardhq/adboard-web/internal/session"
	"github.com/adboardhq/adboard-web/internal/wizard"
)

func newProfileHandler(t *testing.T, app *testApp) *ProfileHandler {
	return NewProfileHandler(app.apiClient, app.renderer, app.sessions, app.events, app.processor, t.TempDir())
}

// signInOnboarding puts an authenticated-but-incomplete session into the
// request context, the state fresh registrations land in.
func (a *testApp) signInOnboarding(userType string) func(r *http.Request) {
	return func(r *http.Request) {
		_ = a.sessions.SignIn(r.Context(), "test-access-token", "test-refresh-token", userType, false)
	}
}

func wizardForm(fields url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, RouteProfileComplete, strings.NewReader(fields.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestWizardShowRedirectsCompletedProfiles(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {})
	h := newProfileHandler(t, app)

	req := httptest.NewRequest(http.MethodGet, RouteProfileComplete, nil)
	rec := app.serve(app.signIn(session.UserTypeVendor), http.HandlerFunc(h.Show), req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteVendor, rec.Header().Get("Location"))
}

func TestWizardNextAdvancesAndKeepsData(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {})
	h := newProfileHandler(t, app)

	var state string
	rec := app.serve(app.signInOnboarding(""), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Next(w, r)
		state = app.sessions.WizardState(r.Context())
	}), wizardForm(url.Values{"usertype": {"advertiser"}}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteProfileComplete, rec.Header().Get("Location"))

	wz := wizard.Decode(state)
	assert.Equal(t, wizard.StepContact, wz.Step)
	assert.Equal(t, "advertiser", wz.Data.UserType)
}

func TestWizardNextStaysPutOnMissingFields(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {})
	h := newProfileHandler(t, app)

	var state string
	rec := app.serve(app.signInOnboarding(""), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Next(w, r)
		state = app.sessions.WizardState(r.Context())
	}), wizardForm(url.Values{}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, wizard.StepRole, wizard.Decode(state).Step)
}

func TestWizardBackNeverLosesData(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {})
	h := newProfileHandler(t, app)

	// Stored state: contact step with the role already chosen.
	stored, err := (&wizard.Wizard{
		Step: wizard.StepContact,
		Data: wizard.Data{UserType: "vendor"},
	}).Encode()
	require.NoError(t, err)

	setup := func(r *http.Request) {
		app.signInOnboarding("")(r)
		app.sessions.SetWizardState(r.Context(), stored)
	}

	// Going back submits the contact form half-filled; the typed phone must
	// survive alongside the previously chosen role.
	var state string
	app.serve(setup, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Prev(w, r)
		state = app.sessions.WizardState(r.Context())
	}), wizardForm(url.Values{"phone": {"9876543210"}}))

	wz := wizard.Decode(state)
	assert.Equal(t, wizard.StepRole, wz.Step)
	assert.Equal(t, "vendor", wz.Data.UserType)
	assert.Equal(t, "9876543210", wz.Data.Phone)
}

func TestWizardSubmitRejectedBeforeLastStep(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("a premature submit must not reach the backend")
	})
	h := newProfileHandler(t, app)

	rec := app.serve(app.signInOnboarding(""), http.HandlerFunc(h.Submit),
		wizardForm(url.Values{"usertype": {"advertiser"}}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteProfileComplete, rec.Header().Get("Location"))
}

func TestWizardSubmitCompletesProfile(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/profile/complete/", r.URL.Path)
		assert.Equal(t, "Bearer test-access-token", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(maxProfileFormBytes))
		assert.Equal(t, "advertiser", r.FormValue("userType"))
		assert.Equal(t, "9876543210", r.FormValue("phone"))
		assert.Equal(t, "560001", r.FormValue("pincode"))
		w.WriteHeader(http.StatusOK)
	})
	h := newProfileHandler(t, app)

	stored, err := (&wizard.Wizard{
		Step: wizard.StepAddress,
		Data: wizard.Data{
			UserType: "advertiser",
			Phone:    "9876543210",
			Company:  "Acme Media",
		},
	}).Encode()
	require.NoError(t, err)

	setup := func(r *http.Request) {
		app.signInOnboarding("")(r)
		app.sessions.SetWizardState(r.Context(), stored)
	}

	var completed bool
	var userType, state string
	rec := app.serve(setup, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Submit(w, r)
		completed = app.sessions.ProfileCompleted(r.Context())
		userType = app.sessions.UserType(r.Context())
		state = app.sessions.WizardState(r.Context())
	}), wizardForm(url.Values{"address": {"MG Road"}, "pincode": {"560001"}}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteCities, rec.Header().Get("Location"))
	assert.True(t, completed)
	assert.Equal(t, session.UserTypeAdvertiser, userType)
	assert.Empty(t, state, "wizard state must be cleared after completion")
}

func TestWizardSubmitKeepsStateOnBackendFailure(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"profile service down"}`, http.StatusBadGateway)
	})
	h := newProfileHandler(t, app)

	stored, err := (&wizard.Wizard{
		Step: wizard.StepAddress,
		Data: wizard.Data{
			UserType: "vendor",
			Phone:    "9876543210",
			Company:  "Acme Media",
			Address:  "MG Road",
			Pincode:  "560001",
		},
	}).Encode()
	require.NoError(t, err)

	setup := func(r *http.Request) {
		app.signInOnboarding("")(r)
		app.sessions.SetWizardState(r.Context(), stored)
	}

	var completed bool
	var state string
	rec := app.serve(setup, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Submit(w, r)
		completed = app.sessions.ProfileCompleted(r.Context())
		state = app.sessions.WizardState(r.Context())
	}), wizardForm(url.Values{}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteProfileComplete, rec.Header().Get("Location"))
	assert.False(t, completed)

	wz := wizard.Decode(state)
	assert.Equal(t, wizard.StepAddress, wz.Step, "a backend failure must not lose wizard progress")
	assert.Equal(t, "MG Road", wz.Data.Address)
}
