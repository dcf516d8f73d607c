package service

import (
	"context"
	"sync"
)

// RequestTracker keeps one generation per key. Starting a request cancels the previous
// in-flight request for the same key so late results can be recognised and discarded.
type RequestTracker struct {
	mu      sync.Mutex
	next    uint64
	current map[string]trackedRequest
}

type trackedRequest struct {
	generation uint64
	cancel     context.CancelFunc
}

// Ticket identifies one tracked request.
type Ticket struct {
	tracker    *RequestTracker
	key        string
	generation uint64
	cancel     context.CancelFunc
}

// NewRequestTracker constructs an empty tracker.
func NewRequestTracker() *RequestTracker {
	return &RequestTracker{current: make(map[string]trackedRequest)}
}

// Begin registers a new request for key, cancelling any older one still running.
func (t *RequestTracker) Begin(ctx context.Context, key string) (*Ticket, context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	t.mu.Lock()
	if prev, ok := t.current[key]; ok {
		prev.cancel()
	}
	t.next++
	generation := t.next
	t.current[key] = trackedRequest{generation: generation, cancel: cancel}
	t.mu.Unlock()

	return &Ticket{tracker: t, key: key, generation: generation, cancel: cancel}, ctx
}

// Current reports whether no newer request for the same key has started.
func (tk *Ticket) Current() bool {
	tk.tracker.mu.Lock()
	defer tk.tracker.mu.Unlock()
	active, ok := tk.tracker.current[tk.key]
	return ok && active.generation == tk.generation
}

// Done releases the request's context and forgets it if still current.
func (tk *Ticket) Done() {
	tk.cancel()
	tk.tracker.mu.Lock()
	defer tk.tracker.mu.Unlock()
	if active, ok := tk.tracker.current[tk.key]; ok && active.generation == tk.generation {
		delete(tk.tracker.current, tk.key)
	}
}

// InFlightGuard admits at most one in-flight operation per key without blocking.
type InFlightGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewInFlightGuard constructs an empty guard.
func NewInFlightGuard() *InFlightGuard {
	return &InFlightGuard{active: make(map[string]struct{})}
}

// TryAcquire claims key, returning false if it is already held.
func (g *InFlightGuard) TryAcquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[key]; busy {
		return false
	}
	g.active[key] = struct{}{}
	return true
}

// Release frees key.
func (g *InFlightGuard) Release(key string) {
	g.mu.Lock()
	delete(g.active, key)
	g.mu.Unlock()
}
