package scheduler

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/amirphl/sdr-power-queue/app/dto"
	"github.com/amirphl/sdr-power-queue/app/services"
	businessflow "github.com/amirphl/sdr-power-queue/business_flow"
	"github.com/amirphl/sdr-power-queue/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	scopes []string
	blocks map[string]businessflow.BlockStatus
}

func (s staticSource) ActiveScopes() []string { return s.scopes }

func (s staticSource) RunningBlocks() map[string]businessflow.BlockStatus { return s.blocks }

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func waitFor(t *testing.T, ch <-chan services.Notification, event string) services.Notification {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case n := <-ch:
			if n.Event == event {
				return n
			}
		case <-deadline:
			t.Fatalf("no %s notification", event)
			return services.Notification{}
		}
	}
}

func TestQueueSchedulerRefreshesActiveScopes(t *testing.T) {
	notifier := services.NewNotificationService(nil)
	alice, cancelAlice := notifier.Subscribe("alice")
	defer cancelAlice()

	source := staticSource{scopes: []string{"alice"}}
	s := NewQueueScheduler(source, notifier, quietLogger(), 10*time.Millisecond, time.Hour)
	stop := s.Start(context.Background())
	defer stop()

	n := waitFor(t, alice, services.EventQueueRefresh)
	assert.Equal(t, services.KindInfo, n.Kind)
	assert.False(t, n.At.IsZero())
}

func TestQueueSchedulerTicksRunningBlocks(t *testing.T) {
	notifier := services.NewNotificationService(nil)
	alice, cancelAlice := notifier.Subscribe("alice")
	defer cancelAlice()

	started := time.Date(2024, time.January, 15, 17, 0, 0, 0, time.UTC)
	source := staticSource{blocks: map[string]businessflow.BlockStatus{
		"alice": {Running: true, StartedAt: utils.ToPtr(started), CallsLogged: 3, ElapsedMs: 30 * 60 * 1000, Elapsed: "00:30:00", CallsPerHour: 6},
	}}
	s := NewQueueScheduler(source, notifier, quietLogger(), time.Hour, 10*time.Millisecond)
	stop := s.Start(context.Background())
	defer stop()

	n := waitFor(t, alice, services.EventBlockTick)
	status, ok := n.Data.(*dto.BlockStatusResponse)
	require.True(t, ok)
	assert.True(t, status.Running)
	assert.Equal(t, "00:30:00", status.Elapsed)
	assert.Equal(t, 6, status.CallsPerHour)
	require.NotNil(t, status.StartedAt)
	assert.Equal(t, "2024-01-15T17:00:00Z", *status.StartedAt)
}

func TestQueueSchedulerStopsOnCancel(t *testing.T) {
	notifier := services.NewNotificationService(nil)
	bob, cancelBob := notifier.Subscribe("bob")
	defer cancelBob()

	s := NewQueueScheduler(staticSource{scopes: []string{"bob"}}, notifier, quietLogger(), 20*time.Millisecond, time.Hour)
	stop := s.Start(context.Background())
	waitFor(t, bob, services.EventQueueRefresh)
	stop()

	// drain what was in flight, then nothing more arrives
	time.Sleep(50 * time.Millisecond)
	for len(bob) > 0 {
		<-bob
	}
	select {
	case n := <-bob:
		t.Fatalf("unexpected %s after stop", n.Event)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNewQueueSchedulerDefaults(t *testing.T) {
	s := NewQueueScheduler(staticSource{}, services.NewNotificationService(nil), nil, 0, -1)
	assert.Equal(t, time.Minute, s.refreshInterval)
	assert.Equal(t, time.Second, s.blockTick)
	assert.NotNil(t, s.logger)
}
