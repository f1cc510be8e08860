// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"encoding/xml"
	"fmt"
)

// XMLNamespace is the sitemap XML namespace.
const XMLNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ChangeFreq represents the change frequency of a URL.
type ChangeFreq string

// Valid change frequency values.
const (
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
)

// SitemapURL represents a single URL entry in the sitemap.
type SitemapURL struct {
	Loc        string     `xml:"loc"`
	ChangeFreq ChangeFreq `xml:"changefreq,omitempty"`
	Priority   string     `xml:"priority,omitempty"`
}

// Sitemap represents the complete sitemap document.
type Sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapBuilder collects catalog URLs and renders the sitemap document.
type SitemapBuilder struct {
	siteURL string
	urls    []SitemapURL
}

// NewSitemapBuilder creates a new sitemap builder.
func NewSitemapBuilder(siteURL string) *SitemapBuilder {
	return &SitemapBuilder{siteURL: siteURL}
}

// AddHomepage adds the landing page to the sitemap.
func (b *SitemapBuilder) AddHomepage() {
	b.urls = append(b.urls, SitemapURL{
		Loc:        b.siteURL,
		ChangeFreq: ChangeFreqDaily,
		Priority:   "1.0",
	})
	b.urls = append(b.urls, SitemapURL{
		Loc:        b.siteURL + "/cities",
		ChangeFreq: ChangeFreqDaily,
		Priority:   "0.9",
	})
}

// AddMarketingPage adds a markdown marketing page by slug.
func (b *SitemapBuilder) AddMarketingPage(slug string) {
	b.urls = append(b.urls, SitemapURL{
		Loc:        b.siteURL + "/pages/" + slug,
		ChangeFreq: ChangeFreqMonthly,
		Priority:   "0.4",
	})
}

// AddCity adds a city's billboard listing page.
func (b *SitemapBuilder) AddCity(id int64) {
	b.urls = append(b.urls, SitemapURL{
		Loc:        fmt.Sprintf("%s/cities/%d", b.siteURL, id),
		ChangeFreq: ChangeFreqDaily,
		Priority:   "0.8",
	})
}

// AddBillboard adds a billboard detail page.
func (b *SitemapBuilder) AddBillboard(staticID string) {
	b.urls = append(b.urls, SitemapURL{
		Loc:        b.siteURL + "/billboards/" + staticID,
		ChangeFreq: ChangeFreqWeekly,
		Priority:   "0.7",
	})
}

// Build generates the sitemap XML.
func (b *SitemapBuilder) Build() ([]byte, error) {
	sitemap := Sitemap{
		XMLNS: XMLNamespace,
		URLs:  b.urls,
	}

	output := []byte(xml.Header)
	xmlBytes, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(output, xmlBytes...), nil
}
