// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/require"

	"github.com/adboardhq/adboard-web/internal/api"
	"github.com/adboardhq/adboard-web/internal/imaging"
	"github.com/adboardhq/adboard-web/internal/render"
	"github.com/adboardhq/adboard-web/internal/service"
	"github.com/adboardhq/adboard-web/internal/session"
	"github.com/adboardhq/adboard-web/internal/testutil"
)

// testPageNames are all templates the handlers render; each gets a trivial
// body so tests exercise handler logic, not markup.
var testPageNames = []string{
	"home", "page", "signin", "signup",
	"cities", "city_billboards", "billboard_detail", "booking_form",
	"bookings", "booking_detail", "profile_wizard",
	"vendor_dashboard", "vendor_billboards", "vendor_billboard_new",
	"vendor_billboard_detail", "vendor_bookings", "vendor_booking_detail",
}

// newTestRenderer builds a renderer whose pages just echo their name and title.
func newTestRenderer(t *testing.T, sm *scs.SessionManager) *render.Renderer {
	t.Helper()

	fsys := fstest.MapFS{
		"layouts/base.html": &fstest.MapFile{Data: []byte(
			`{{define "base"}}{{if .Flash}}[{{.FlashType}}] {{.Flash}} {{end}}{{template "content" .}}{{end}}`,
		)},
	}
	for _, name := range testPageNames {
		fsys["pages/"+name+".html"] = &fstest.MapFile{Data: []byte(
			`{{define "content"}}` + name + `: {{.Title}}{{end}}`,
		)}
	}

	r, err := render.New(render.Config{TemplatesFS: fsys, SessionManager: sm, IsDev: true})
	require.NoError(t, err)
	return r
}

// testApp bundles everything a handler test needs.
type testApp struct {
	apiClient *api.Client
	renderer  *render.Renderer
	sm        *scs.SessionManager
	sessions  *session.Store
	events    *service.EventService
	processor *imaging.Processor
}

// newTestApp wires a test app against a fake backend handler.
func newTestApp(t *testing.T, backend http.HandlerFunc) *testApp {
	t.Helper()

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	sm := scs.New()
	return &testApp{
		apiClient: api.New(srv.URL, 5*time.Second),
		renderer:  newTestRenderer(t, sm),
		sm:        sm,
		sessions:  session.NewStore(sm),
		events:    service.NewEventService(db, nil),
		processor: imaging.NewProcessor(),
	}
}

// serve runs a request through LoadAndSave with an optional session setup
// hook executed before the handler.
func (a *testApp) serve(setup func(r *http.Request), h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if setup != nil {
			setup(req)
		}
		h.ServeHTTP(w, req)
	})).ServeHTTP(rec, r)
	return rec
}

// signIn puts a signed-in session into the request context.
func (a *testApp) signIn(userType string) func(r *http.Request) {
	return func(r *http.Request) {
		_ = a.sessions.SignIn(r.Context(), "test-access-token", "test-refresh-token", userType, true)
	}
}
