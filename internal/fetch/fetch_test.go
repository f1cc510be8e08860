// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapResolvesAllKeys(t *testing.T) {
	keys := []string{"a", "b", "c", "d"}

	got, err := Map(context.Background(), keys, 2, func(_ context.Context, k string) (string, error) {
		return "title-" + k, nil
	})
	require.NoError(t, err)

	assert.Len(t, got, 4)
	assert.Equal(t, "title-c", got["c"])
}

func TestMapDeduplicatesKeys(t *testing.T) {
	var calls atomic.Int32

	got, err := Map(context.Background(), []string{"x", "x", "x", "y"}, 0, func(_ context.Context, k string) (string, error) {
		calls.Add(1)
		return k, nil
	})
	require.NoError(t, err)

	assert.Len(t, got, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestMapSkipsFailedKeys(t *testing.T) {
	got, err := Map(context.Background(), []int{1, 2, 3}, 2, func(_ context.Context, k int) (string, error) {
		if k == 2 {
			return "", errors.New("not found")
		}
		return fmt.Sprint(k), nil
	})
	require.NoError(t, err)

	assert.Len(t, got, 2)
	_, ok := got[2]
	assert.False(t, ok)
}

func TestMapBoundsConcurrency(t *testing.T) {
	var (
		mu      sync.Mutex
		active  int
		maxSeen int
	)

	_, err := Map(context.Background(), []int{1, 2, 3, 4, 5, 6, 7, 8}, 3, func(_ context.Context, k int) (int, error) {
		mu.Lock()
		active++
		if active > maxSeen {
			maxSeen = active
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		active--
		mu.Unlock()
		return k, nil
	})
	require.NoError(t, err)

	assert.LessOrEqual(t, maxSeen, 3)
}

func TestMapStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := Map(ctx, []int{1, 2, 3}, 1, func(_ context.Context, k int) (int, error) {
		return k, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, got)
}

func TestMapToleratesArbitraryCompletionOrder(t *testing.T) {
	// Later keys finish first; the keyed map must still be correct.
	got, err := Map(context.Background(), []int{1, 2, 3}, 3, func(_ context.Context, k int) (int, error) {
		time.Sleep(time.Duration(4-k) * 5 * time.Millisecond)
		return k * 10, nil
	})
	require.NoError(t, err)

	assert.Equal(t, map[int]int{1: 10, 2: 20, 3: 30}, got)
}
