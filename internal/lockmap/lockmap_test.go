/*
 * ImKitchen - Self-Hosted Meal Planning Application
 * Copyright (C) 2025 RGH Software
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published
 * by the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package lockmap_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkitchen/imkitchen/internal/lockmap"
)

// TestTryLock_SecondCallerBlockedUntilReleased: two
// simultaneous generation attempts for the same user — one succeeds, the
// other is told to back off; after release a third call succeeds.
func TestTryLock_SecondCallerBlockedUntilReleased(t *testing.T) {
	m := lockmap.New()

	release1, ok1 := m.TryLock("user-1")
	require.True(t, ok1)

	_, ok2 := m.TryLock("user-1")
	assert.False(t, ok2, "a second concurrent generation for the same user must be rejected")

	release1()

	release3, ok3 := m.TryLock("user-1")
	assert.True(t, ok3, "the lock must be released on every exit path so a later call succeeds")
	release3()
}

func TestTryLock_DifferentUsersDoNotBlock(t *testing.T) {
	m := lockmap.New()

	release1, ok1 := m.TryLock("user-1")
	require.True(t, ok1)
	defer release1()

	release2, ok2 := m.TryLock("user-2")
	require.True(t, ok2, "locks for distinct users must be independent")
	release2()
}

func TestTryLock_ReleaseIsIdempotent(t *testing.T) {
	m := lockmap.New()
	release, ok := m.TryLock("user-1")
	require.True(t, ok)

	release()
	assert.NotPanics(t, func() { release() })

	_, ok2 := m.TryLock("user-1")
	assert.True(t, ok2)
}

func TestLock_SerializesConcurrentAcquirers(t *testing.T) {
	m := lockmap.New()
	var mu sync.Mutex
	counter := 0
	maxObserved := 0

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := m.Lock("shared-key")
			defer release()

			mu.Lock()
			counter++
			if counter > maxObserved {
				maxObserved = counter
			}
			mu.Unlock()

			mu.Lock()
			counter--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxObserved, "Lock must serialize all acquirers of the same key")
}
