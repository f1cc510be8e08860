// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content serves the static marketing pages (about, how-it-works,
// landing copy) from markdown files. Pages are parsed on demand in
// development and cached after first render in production.
package content

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/adboardhq/adboard-web/internal/util"
)

// ugcPolicy cleans rendered markdown and backend-supplied rich text alike.
// bluemonday policies are safe for concurrent use.
var ugcPolicy = bluemonday.UGCPolicy()

// Sanitize cleans backend-supplied rich text (billboard descriptions) before
// it is rendered into a page.
func Sanitize(html string) template.HTML {
	return template.HTML(ugcPolicy.Sanitize(html))
}

// Page is a rendered marketing page.
type Page struct {
	Slug  string
	Title string
	HTML  template.HTML
}

// Store loads and renders markdown marketing pages from a directory.
type Store struct {
	dir      string
	cache    bool
	mu       sync.RWMutex
	rendered map[string]*Page
}

// NewStore creates a content store. When cache is true (production) each page
// is rendered once; marketing copy never changes without a redeploy there.
func NewStore(dir string, cache bool) *Store {
	return &Store{
		dir:      dir,
		cache:    cache,
		rendered: make(map[string]*Page),
	}
}

// Get renders the page for slug. Returns os.ErrNotExist for unknown slugs,
// which handlers translate into a 404.
func (s *Store) Get(slug string) (*Page, error) {
	if !util.IsValidSlug(slug) {
		return nil, os.ErrNotExist
	}

	if s.cache {
		s.mu.RLock()
		page, ok := s.rendered[slug]
		s.mu.RUnlock()
		if ok {
			return page, nil
		}
	}

	raw, err := os.ReadFile(filepath.Join(s.dir, slug+".md"))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := goldmark.Convert(raw, &buf); err != nil {
		return nil, fmt.Errorf("rendering page %s: %w", slug, err)
	}

	page := &Page{
		Slug:  slug,
		Title: extractTitle(raw, slug),
		HTML:  template.HTML(ugcPolicy.SanitizeBytes(buf.Bytes())),
	}

	if s.cache {
		s.mu.Lock()
		s.rendered[slug] = page
		s.mu.Unlock()
	}
	return page, nil
}

// Slugs lists the available page slugs, for the sitemap.
func (s *Store) Slugs() []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}

	var slugs []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		slug := strings.TrimSuffix(name, ".md")
		if util.IsValidSlug(slug) {
			slugs = append(slugs, slug)
		}
	}
	return slugs
}

// extractTitle takes the first markdown H1, falling back to the slug.
func extractTitle(raw []byte, slug string) string {
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return strings.ReplaceAll(slug, "-", " ")
}
