// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose utility functions including
// URL slug generation and validation with Unicode transliteration support.
package util

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

var (
	// slugRegex matches non-alphanumeric characters (except hyphens)
	slugRegex = regexp.MustCompile(`[^a-z0-9-]+`)
	// multipleHyphens matches multiple consecutive hyphens
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// validSlug matches a well-formed slug
	validSlug = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Slugify converts a string to a URL-friendly slug. City names like
// "São Paulo" become "sao-paulo": non-ASCII characters are transliterated,
// the result is lowercased, and everything but alphanumerics and single
// hyphens is stripped.
func Slugify(s string) string {
	// Transliterate to ASCII (accents, non-Latin scripts)
	result := unidecode.Unidecode(s)

	// Convert to lowercase
	result = strings.ToLower(result)

	// Replace spaces with hyphens
	result = strings.ReplaceAll(result, " ", "-")

	// Remove all non-alphanumeric characters except hyphens
	result = slugRegex.ReplaceAllString(result, "")

	// Replace multiple hyphens with single hyphen
	result = multipleHyphens.ReplaceAllString(result, "-")

	// Trim hyphens from start and end
	result = strings.Trim(result, "-")

	return result
}

// IsValidSlug reports whether s is a well-formed slug. Used to validate
// user-influenced path segments before they end up in redirects (CWE-601).
func IsValidSlug(s string) bool {
	if s == "" || len(s) > 128 {
		return false
	}
	return validSlug.MatchString(s)
}
