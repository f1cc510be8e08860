// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/adboardhq/adboard-web/internal/api"
	"github.com/adboardhq/adboard-web/internal/render"
	"github.com/adboardhq/adboard-web/internal/session"
	"github.com/adboardhq/adboard-web/internal/uikit"
	"github.com/adboardhq/adboard-web/internal/util"
)

// citiesPerPage bounds the city grid; the full list is fetched once and
// paginated locally.
const citiesPerPage = 24

// CitiesHandler handles city browsing: the searchable city grid and the
// per-city billboard listing.
type CitiesHandler struct {
	apiClient *api.Client
	renderer  *render.Renderer
	sessions  *session.Store
}

// NewCitiesHandler creates a new CitiesHandler.
func NewCitiesHandler(apiClient *api.Client, renderer *render.Renderer, sessions *session.Store) *CitiesHandler {
	return &CitiesHandler{apiClient: apiClient, renderer: renderer, sessions: sessions}
}

// cityCard is a city plus its slugged listing URL.
type cityCard struct {
	api.City
	URL string
}

// cityListData feeds the cities template.
type cityListData struct {
	Cities     []cityCard
	Query      string
	Pagination uikit.Pagination
}

// List renders the city grid. The q parameter filters the fetched list by
// case-insensitive substring; neither it nor paging triggers a new backend
// call.
func (h *CitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	cities, err := h.apiClient.ListCities(r.Context())
	if err != nil {
		handleAPIError(w, r, h.renderer, h.sessions, RouteRoot, err)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	filtered := uikit.FilterByName(cities, query, func(c api.City) string { return c.Name })
	cards, pagination := pageOfCities(filtered, uikit.ParsePageParam(r), r.URL.Query())

	data := cityListData{Cities: cards, Query: query, Pagination: pagination}
	if err := h.renderer.Render(w, r, "cities", render.TemplateData{
		Title:           "Browse Cities",
		Data:            data,
		IsAuthenticated: h.sessions.IsAuthenticated(r.Context()),
		UserType:        h.sessions.UserType(r.Context()),
	}); err != nil {
		logAndInternalError(w, "failed to render city list", "error", err)
	}
}

// pageOfCities slices one page out of the filtered city list and builds its
// pagination model. query keeps the search filter in the page links.
func pageOfCities(filtered []api.City, page int, query url.Values) ([]cityCard, uikit.Pagination) {
	page, totalPages := uikit.NormalizePagination(page, len(filtered), citiesPerPage)

	start := (page - 1) * citiesPerPage
	end := start + citiesPerPage
	if end > len(filtered) {
		end = len(filtered)
	}

	cards := make([]cityCard, 0, end-start)
	for _, c := range filtered[start:end] {
		cards = append(cards, cityCard{City: c, URL: cityPath(c)})
	}
	return cards, uikit.BuildPagination(page, totalPages, int64(len(filtered)), RouteCities, query)
}

// cityPath builds the listing URL for a city, "/cities/mumbai-3". The numeric
// ID stays as the trailing segment so parseCityID can recover it; a name that
// slugifies to nothing falls back to the bare ID.
func cityPath(c api.City) string {
	id := strconv.FormatInt(c.ID, 10)
	if slug := util.Slugify(c.Name); slug != "" {
		return RouteCities + "/" + slug + "-" + id
	}
	return RouteCities + "/" + id
}

// parseCityID extracts the city ID from a path segment: either the bare
// number or the slugged form produced by cityPath. Returns 0 for anything
// else.
func parseCityID(param string) int64 {
	idStr := param
	if i := strings.LastIndex(param, "-"); i >= 0 {
		if !util.IsValidSlug(param[:i]) {
			return 0
		}
		idStr = param[i+1:]
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// cityBillboardsData feeds the per-city billboard listing template.
type cityBillboardsData struct {
	CityID     int64
	Billboards []api.Billboard
	Pagination uikit.Pagination
}

// Billboards renders one page of a city's billboards. Page numbers come from
// the URL so listings stay shareable and the back button works.
func (h *CitiesHandler) Billboards(w http.ResponseWriter, r *http.Request) {
	cityID := parseCityID(chi.URLParam(r, "id"))
	if cityID == 0 {
		http.NotFound(w, r)
		return
	}

	page := uikit.ParsePageParam(r)

	result, err := h.apiClient.ListCityBillboards(r.Context(), cityID, page)
	if err != nil {
		handleAPIError(w, r, h.renderer, h.sessions, RouteCities, err)
		return
	}

	data := cityBillboardsData{
		CityID:     cityID,
		Billboards: result.Results,
		Pagination: uikit.BuildPagination(page, result.TotalPages, int64(result.Count),
			r.URL.Path, r.URL.Query()),
	}

	title := "Billboards"
	if len(result.Results) > 0 && result.Results[0].CityName != "" {
		title = "Billboards in " + result.Results[0].CityName
	}

	if err := h.renderer.Render(w, r, "city_billboards", render.TemplateData{
		Title:           title,
		Data:            data,
		IsAuthenticated: h.sessions.IsAuthenticated(r.Context()),
		UserType:        h.sessions.UserType(r.Context()),
	}); err != nil {
		logAndInternalError(w, "failed to render city billboards", "error", err)
	}
}
