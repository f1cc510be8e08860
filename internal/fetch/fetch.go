// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package fetch provides a bounded-parallel keyed fetch helper for resolving
// related entities (for example billboard titles for a page of bookings).
// Results land in a key-indexed map, so any completion order is fine; a
// failed key is simply absent from the result rather than failing the page.
package fetch

import (
	"context"
	"sync"
)

// DefaultConcurrency bounds parallel requests when callers pass 0.
const DefaultConcurrency = 4

// Map fetches a value for every key with at most limit in-flight calls.
// Duplicate keys are fetched once. When ctx is cancelled, remaining keys are
// skipped and the partial result is returned with ctx.Err().
func Map[K comparable, V any](ctx context.Context, keys []K, limit int, fn func(context.Context, K) (V, error)) (map[K]V, error) {
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	// Deduplicate; the map output makes ordering irrelevant.
	seen := make(map[K]struct{}, len(keys))
	unique := make([]K, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, k)
	}

	var (
		mu      sync.Mutex
		results = make(map[K]V, len(unique))
		wg      sync.WaitGroup
		sem     = make(chan struct{}, limit)
	)

	for _, key := range unique {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(k K) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			v, err := fn(ctx, k)
			if err != nil {
				return
			}
			mu.Lock()
			results[k] = v
			mu.Unlock()
		}(key)
	}

	wg.Wait()
	return results, ctx.Err()
}
