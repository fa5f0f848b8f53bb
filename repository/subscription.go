package repository

import (
	"context"
	"log"
	"sync"
	"time"
)

// Failed reloads are retried with doubling delays between these bounds
const (
	reloadRetryMin = 100 * time.Millisecond
	reloadRetryMax = 5 * time.Second
)

// Subscription streams full snapshots of a query. Only the latest undelivered snapshot is kept,
// so a slow reader never sees stale intermediate states.
type Subscription[T any] struct {
	ch     chan []*T
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.RWMutex
	err error

	closeOnce sync.Once
}

type snapshotLoader[T any] func(ctx context.Context) ([]*T, error)

// newSubscription loads once, then reloads on every signal until ctx ends or Close is called.
// A failed load is retried with backoff until one succeeds.
func newSubscription[T any](parent context.Context, load snapshotLoader[T], signals <-chan struct{}, stop func()) *Subscription[T] {
	ctx, cancel := context.WithCancel(parent)
	s := &Subscription[T]{
		ch:     make(chan []*T, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		defer close(s.ch)
		defer stop()

		var retry <-chan time.Time
		backoff := time.Duration(0)
		attempt := func() {
			if s.reload(ctx, load) {
				backoff, retry = 0, nil
				return
			}
			backoff = nextBackoff(backoff)
			retry = time.After(backoff)
		}

		attempt()
		for {
			select {
			case <-ctx.Done():
				return
			case <-retry:
				attempt()
			case _, ok := <-signals:
				if !ok {
					return
				}
				attempt()
			}
		}
	}()

	return s
}

func nextBackoff(d time.Duration) time.Duration {
	if d < reloadRetryMin {
		return reloadRetryMin
	}
	if d*2 > reloadRetryMax {
		return reloadRetryMax
	}
	return d * 2
}

// reload delivers a fresh snapshot and reports whether the load succeeded
func (s *Subscription[T]) reload(ctx context.Context, load snapshotLoader[T]) bool {
	rows, err := load(ctx)
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("repository: subscription reload failed, retrying: %v", err)
		}
		return false
	}
	if rows == nil {
		rows = []*T{}
	}

	// drop the undelivered snapshot, if any; this goroutine is the only sender
	select {
	case <-s.ch:
	default:
	}
	s.ch <- rows
	return true
}

// C returns the snapshot channel. It is closed when the subscription ends.
func (s *Subscription[T]) C() <-chan []*T {
	return s.ch
}

// Err returns the error of the most recent reload, nil after a successful one
func (s *Subscription[T]) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Close stops the subscription and waits for its goroutine to exit
func (s *Subscription[T]) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		<-s.done
	})
}

// Done is closed once the subscription has stopped
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}
