// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/adboardhq/adboard-web/internal/api"
	"github.com/adboardhq/adboard-web/internal/content"
	"github.com/adboardhq/adboard-web/internal/seo"
)

// SEOHandler serves robots.txt and sitemap.xml for the public catalog.
type SEOHandler struct {
	apiClient *api.Client
	pages     *content.Store
	siteURL   string
	isDev     bool
}

// NewSEOHandler creates a new SEOHandler.
func NewSEOHandler(apiClient *api.Client, pages *content.Store, siteURL string, isDev bool) *SEOHandler {
	return &SEOHandler{apiClient: apiClient, pages: pages, siteURL: siteURL, isDev: isDev}
}

// Robots serves robots.txt. Development instances block all crawlers.
func (h *SEOHandler) Robots(w http.ResponseWriter, _ *http.Request) {
	out := seo.BuildRobots(seo.RobotsConfig{
		SiteURL:     h.siteURL,
		DisallowAll: h.isDev,
	})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(out))
}

// Sitemap serves sitemap.xml: the landing pages, marketing pages and every
// city listing. Individual billboards are left to crawling from the city
// pages; the catalog is too volatile to enumerate here.
func (h *SEOHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	b := seo.NewSitemapBuilder(h.siteURL)
	b.AddHomepage()
	for _, slug := range h.pages.Slugs() {
		b.AddMarketingPage(slug)
	}

	cities, err := h.apiClient.ListCities(r.Context())
	if err != nil {
		logAndHTTPError(w, "Service Unavailable", http.StatusServiceUnavailable, "failed to build sitemap", "error", err)
		return
	}
	for _, city := range cities {
		b.AddCity(city.ID)
	}

	out, err := b.Build()
	if err != nil {
		logAndInternalError(w, "failed to encode sitemap", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(out)
}
