package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestTrackerSupersedes(t *testing.T) {
	tracker := NewRequestTracker()

	first, firstCtx := tracker.Begin(context.Background(), "s1:summary")
	assert.True(t, first.Current())

	second, secondCtx := tracker.Begin(context.Background(), "s1:summary")
	assert.False(t, first.Current())
	assert.True(t, second.Current())
	assert.ErrorIs(t, firstCtx.Err(), context.Canceled)
	assert.NoError(t, secondCtx.Err())

	first.Done()
	assert.True(t, second.Current())

	second.Done()
	assert.False(t, second.Current())
	assert.ErrorIs(t, secondCtx.Err(), context.Canceled)
}

func TestRequestTrackerKeysAreIndependent(t *testing.T) {
	tracker := NewRequestTracker()
	a, aCtx := tracker.Begin(context.Background(), "s1:weekly")
	b, _ := tracker.Begin(context.Background(), "s2:weekly")
	defer b.Done()

	assert.True(t, a.Current())
	assert.True(t, b.Current())
	assert.NoError(t, aCtx.Err())
	a.Done()
}

func TestInFlightGuard(t *testing.T) {
	guard := NewInFlightGuard()
	assert.True(t, guard.TryAcquire("u1"))
	assert.False(t, guard.TryAcquire("u1"))
	assert.True(t, guard.TryAcquire("u2"))

	guard.Release("u1")
	assert.True(t, guard.TryAcquire("u1"))
}

func TestInFlightGuardConcurrentAcquire(t *testing.T) {
	guard := NewInFlightGuard()
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		acquired int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if guard.TryAcquire("u1") {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, acquired)
}
