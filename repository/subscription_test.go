package repository

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct{ name string }

func TestSubscriptionRetriesFailedLoad(t *testing.T) {
	var calls atomic.Int32
	load := func(ctx context.Context) ([]*row, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("connection reset")
		}
		return []*row{{name: "a"}}, nil
	}

	// no change signal ever arrives
	signals := make(chan struct{})
	sub := newSubscription[row](context.Background(), load, signals, func() {})
	defer sub.Close()

	select {
	case rows := <-sub.C():
		require.Len(t, rows, 1)
		assert.Equal(t, "a", rows[0].name)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot after a failed first load")
	}
	assert.NoError(t, sub.Err())
	assert.Equal(t, int32(2), calls.Load())
}

func TestSubscriptionStopsRetryingOnClose(t *testing.T) {
	var calls atomic.Int32
	load := func(ctx context.Context) ([]*row, error) {
		calls.Add(1)
		return nil, errors.New("down")
	}

	sub := newSubscription[row](context.Background(), load, make(chan struct{}), func() {})
	require.Eventually(t, func() bool { return sub.Err() != nil }, time.Second, 5*time.Millisecond)
	sub.Close()

	after := calls.Load()
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, after, calls.Load())

	_, open := <-sub.C()
	assert.False(t, open)
}

func TestNextBackoff(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want time.Duration
	}{
		{"FirstRetry", 0, reloadRetryMin},
		{"Doubles", 200 * time.Millisecond, 400 * time.Millisecond},
		{"Capped", 4 * time.Second, reloadRetryMax},
		{"StaysCapped", reloadRetryMax, reloadRetryMax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextBackoff(tt.in))
		})
	}
}
