// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package uikit

import "strings"

// FilterByName filters a list by case-insensitive substring match on the
// value extracted by name. An empty query returns the list unchanged. The
// search runs over the already-fetched page; it never triggers a new fetch.
func FilterByName[T any](items []T, query string, name func(T) string) []T {
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}
	needle := strings.ToLower(query)

	filtered := make([]T, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(name(item)), needle) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
