package routing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoadConcurrentCallersShareOneInit(t *testing.T) {
	var initCalls int32
	started := make(chan struct{})

	loader := NewLoader(func(ctx context.Context) (*Provider, error) {
		atomic.AddInt32(&initCalls, 1)
		<-started // hold every caller in flight until all have called Load
		return &Provider{}, nil
	})

	const callers = 10
	var wg sync.WaitGroup
	providers := make([]*Provider, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			providers[i], errs[i] = loader.Load(context.Background())
		}(i)
	}

	// give the goroutines a moment to pile up on the same attempt
	time.Sleep(50 * time.Millisecond)
	close(started)
	wg.Wait()

	if got := atomic.LoadInt32(&initCalls); got != 1 {
		t.Fatalf("expected exactly 1 init call, got %d", got)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d got error: %v", i, errs[i])
		}
		if providers[i] != providers[0] {
			t.Fatalf("caller %d got a different provider instance", i)
		}
	}
}

func TestLoadAfterCompletionReturnsCached(t *testing.T) {
	var initCalls int32
	loader := NewLoader(func(ctx context.Context) (*Provider, error) {
		atomic.AddInt32(&initCalls, 1)
		return &Provider{}, nil
	})

	first, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	second, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("second load: %v", err)
	}

	if first != second {
		t.Fatal("expected the cached provider on the second load")
	}
	if got := atomic.LoadInt32(&initCalls); got != 1 {
		t.Fatalf("expected 1 init call, got %d", got)
	}
}

func TestLoadFailureIsNotCached(t *testing.T) {
	var initCalls int32
	failFirst := errors.New("provider down")

	loader := NewLoader(func(ctx context.Context) (*Provider, error) {
		if atomic.AddInt32(&initCalls, 1) == 1 {
			return nil, failFirst
		}
		return &Provider{}, nil
	})

	if _, err := loader.Load(context.Background()); !errors.Is(err, failFirst) {
		t.Fatalf("expected first load to fail with %v, got %v", failFirst, err)
	}

	provider, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if provider == nil {
		t.Fatal("expected a provider from the retry")
	}
	if got := atomic.LoadInt32(&initCalls); got != 2 {
		t.Fatalf("expected 2 init calls, got %d", got)
	}
}

func TestLoadRespectsContextCancellation(t *testing.T) {
	block := make(chan struct{})
	loader := NewLoader(func(ctx context.Context) (*Provider, error) {
		<-block
		return &Provider{}, nil
	})

	// leader blocks inside init
	go loader.Load(context.Background())
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loader.Load(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled for waiting caller, got %v", err)
	}

	close(block)
}
