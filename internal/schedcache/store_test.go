package schedcache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polysched/polysched/internal/schedule"
)

func TestStoreGetMiss(t *testing.T) {
	s := New()
	_, ok := s.Get(context.Background(), "nope")
	assert.False(t, ok)
}

func TestStorePutGet(t *testing.T) {
	s := New()
	ctx := context.Background()

	want := &schedule.Result{
		Schedule: []schedule.Item{schedule.RunInstruction{InsnID: "a"}},
	}
	s.Put(ctx, "key", want)

	got, ok := s.Get(ctx, "key")
	require.True(t, ok)
	assert.Same(t, want, got)

	replacement := &schedule.Result{Ambiguous: true}
	s.Put(ctx, "key", replacement)
	got, ok = s.Get(ctx, "key")
	require.True(t, ok)
	assert.Same(t, replacement, got)
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := New()
	ctx := context.Background()
	result := &schedule.Result{}

	done := make(chan struct{})
	for range 8 {
		go func() {
			defer func() { done <- struct{}{} }()
			for range 100 {
				s.Put(ctx, "shared", result)
				s.Get(ctx, "shared")
			}
		}()
	}
	for range 8 {
		<-done
	}

	got, ok := s.Get(ctx, "shared")
	require.True(t, ok)
	assert.Same(t, result, got)
}
