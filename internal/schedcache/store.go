// Package schedcache provides an ephemeral, thread-safe, in-memory
// implementation of the schedule.Cache interface, keyed by kernel content
// fingerprint.
//
// The store uses sync.Map: the key space is stable (one key per distinct
// kernel) and values are written once and read many times, which is the
// access pattern sync.Map is optimized for. Because a fingerprint fully
// determines its schedule, concurrent writers of the same key are redundant
// but never unsafe; the last writer silently wins with an identical value.
//
// For a compiler driver that must survive process restarts, a persistent
// implementation backed by a directory of fingerprint-named files would
// satisfy the same interface.
package schedcache

import (
	"context"
	"sync"

	"github.com/polysched/polysched/internal/schedule"
)

// Store is an in-memory schedule cache.
type Store struct {
	entries sync.Map // key: fingerprint string, value: *schedule.Result
}

// New creates a new, empty schedule cache.
func New() *Store {
	return &Store{}
}

// Get retrieves the cached result for a kernel fingerprint.
func (s *Store) Get(ctx context.Context, key string) (*schedule.Result, bool) {
	value, ok := s.entries.Load(key)
	if !ok {
		return nil, false
	}
	return value.(*schedule.Result), true
}

// Put records the result for a kernel fingerprint, replacing any previous
// entry under the same key.
func (s *Store) Put(ctx context.Context, key string, result *schedule.Result) {
	s.entries.Store(key, result)
}
