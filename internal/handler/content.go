// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/adboardhq/adboard-web/internal/content"
	"github.com/adboardhq/adboard-web/internal/render"
	"github.com/adboardhq/adboard-web/internal/session"
)

// ContentHandler serves the landing page and the markdown marketing pages.
type ContentHandler struct {
	renderer *render.Renderer
	sessions *session.Store
	pages    *content.Store
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(renderer *render.Renderer, sessions *session.Store, pages *content.Store) *ContentHandler {
	return &ContentHandler{renderer: renderer, sessions: sessions, pages: pages}
}

// Home renders the landing page.
func (h *ContentHandler) Home(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "home", render.TemplateData{
		Title:           "Book billboards across the country",
		IsAuthenticated: h.sessions.IsAuthenticated(r.Context()),
		UserType:        h.sessions.UserType(r.Context()),
	}); err != nil {
		logAndInternalError(w, "failed to render landing page", "error", err)
	}
}

// Page renders a markdown marketing page by slug.
func (h *ContentHandler) Page(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	page, err := h.pages.Get(slug)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		logAndInternalError(w, "failed to render marketing page", "error", err, "slug", slug)
		return
	}

	if err := h.renderer.Render(w, r, "page", render.TemplateData{
		Title:           page.Title,
		Data:            page,
		IsAuthenticated: h.sessions.IsAuthenticated(r.Context()),
		UserType:        h.sessions.UserType(r.Context()),
	}); err != nil {
		logAndInternalError(w, "failed to render marketing page", "error", err, "slug", slug)
	}
}
