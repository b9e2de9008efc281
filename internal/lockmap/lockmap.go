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

// Package lockmap provides the process-wide keyed mutex used to
// serialize meal-plan generation per user: two concurrent generate
// requests for the same user must not interleave, but requests for
// different users must not block each other.
package lockmap

import "sync"

// Map is a set of independent mutexes keyed by an arbitrary string, with
// reference counting so idle keys don't leak memory forever.
type Map struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu       sync.Mutex
	refCount int
}

// New builds an empty keyed lock map.
func New() *Map {
	return &Map{locks: map[string]*entry{}}
}

// Lock acquires the mutex for key, creating it if necessary, and returns
// a release function. Callers must defer the release on every exit path,
// including panics, to avoid deadlocking the key permanently.
func (m *Map) Lock(key string) (release func()) {
	e := m.reserve(key)
	e.mu.Lock()
	return m.releaseFunc(key, e)
}

// TryLock acquires the mutex for key without blocking. ok is false if
// another caller already holds it — the command layer surfaces this as
// ConcurrentGenerationInProgress instead of queueing.
func (m *Map) TryLock(key string) (release func(), ok bool) {
	e := m.reserve(key)
	if !e.mu.TryLock() {
		m.unreserve(key, e)
		return nil, false
	}
	return m.releaseFunc(key, e), true
}

func (m *Map) reserve(key string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.locks[key]
	if !ok {
		e = &entry{}
		m.locks[key] = e
	}
	e.refCount++
	return e
}

func (m *Map) unreserve(key string, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.refCount--
	if e.refCount == 0 {
		delete(m.locks, key)
	}
}

func (m *Map) releaseFunc(key string, e *entry) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			m.unreserve(key, e)
		})
	}
}
