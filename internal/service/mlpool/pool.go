// Package mlpool bounds the concurrency of CPU/IO-heavy analysis work.
//
// Extraction, embedding, indexing, and similarity scoring all run through a
// small fixed pool so request dispatch is never blocked by more than the
// configured number of in-flight analyses. Shared read-only resources
// (embedder, vocabularies) are loaded once at process start and injected
// into the components; the pool adds no shared mutable state of its own.
package mlpool

import (
	"context"
	"fmt"
)

// Pool is a counting semaphore over analysis slots.
type Pool struct {
	slots chan struct{}
}

// New constructs a Pool with the given number of worker slots (minimum 1).
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// Size returns the pool capacity.
func (p *Pool) Size() int { return cap(p.slots) }

// Do runs fn once a slot is free, blocking until then or until ctx is done.
// The function's error is returned unchanged.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("op=mlpool.Do: %w", ctx.Err())
	}
	defer func() { <-p.slots }()
	return fn(ctx)
}
