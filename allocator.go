package main

import (
	"context"
	"fmt"
)

// Allocator reserves unique slugs by bounded retry against the store. The
// store offers no atomic create-if-absent, so there is a residual window
// between the existence probe and the eventual write in which a concurrent
// writer could claim the same slug; with 10 base-36 characters (~51 bits of
// entropy) that collision is negligible and the design accepts it rather than
// paying for a distributed lock. A store with conditional writes can implement
// Store.Set accordingly and close the window without changing callers.
type Allocator struct {
	store       Store
	slugLength  int
	maxAttempts int
}

// NewAllocator creates an Allocator probing store for free keys with prefix
// applied by the caller. slugLength and maxAttempts fall back to 10 and 5 when
// non-positive.
func NewAllocator(store Store, slugLength, maxAttempts int) *Allocator {
	if slugLength <= 0 {
		slugLength = 10
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Allocator{store: store, slugLength: slugLength, maxAttempts: maxAttempts}
}

// Allocate returns a slug whose key (keyPrefix+slug) was free at probe time.
// Probes run sequentially and stop at the first free candidate. When every
// attempt collides it returns ErrSlugExhausted; store errors abort the search
// immediately.
func (a *Allocator) Allocate(ctx context.Context, keyPrefix string) (string, error) {
	for i := 0; i < a.maxAttempts; i++ {
		candidate, err := newSlug(a.slugLength)
		if err != nil {
			return "", fmt.Errorf("generating slug: %w", err)
		}
		taken, err := a.store.Exists(ctx, keyPrefix+candidate)
		if err != nil {
			return "", fmt.Errorf("probing slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrSlugExhausted
}
