package routing

import (
	"context"
	"sync"
)

// InitFunc builds the provider. Swapped out in tests.
type InitFunc func(ctx context.Context) (*Provider, error)

// Loader memoizes provider initialization. Concurrent callers before
// completion share a single in-flight load; callers after completion
// get the cached provider. A failed load is not cached, so a later
// call retries.
type Loader struct {
	init InitFunc

	mu       sync.Mutex
	provider *Provider
	current  *attempt
}

type attempt struct {
	done     chan struct{}
	provider *Provider
	err      error
}

// NewLoader returns a loader around init. A nil init uses NewProvider.
func NewLoader(init InitFunc) *Loader {
	if init == nil {
		init = NewProvider
	}
	return &Loader{init: init}
}

// Load returns the shared provider, initializing it on first use.
func (l *Loader) Load(ctx context.Context) (*Provider, error) {
	l.mu.Lock()

	if l.provider != nil {
		p := l.provider
		l.mu.Unlock()
		return p, nil
	}

	if l.current != nil {
		// another caller is already loading; wait for its result
		a := l.current
		l.mu.Unlock()

		select {
		case <-a.done:
			return a.provider, a.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	a := &attempt{done: make(chan struct{})}
	l.current = a
	l.mu.Unlock()

	a.provider, a.err = l.init(ctx)

	l.mu.Lock()
	if a.err == nil {
		l.provider = a.provider
	}
	l.current = nil
	l.mu.Unlock()

	close(a.done)
	return a.provider, a.err
}
