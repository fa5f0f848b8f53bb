// Package scheduler runs the background tickers that keep operator screens current
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/amirphl/sdr-power-queue/app/services"
	businessflow "github.com/amirphl/sdr-power-queue/business_flow"
)

// ScopeSource reports which operators currently need background updates
type ScopeSource interface {
	ActiveScopes() []string
	RunningBlocks() map[string]businessflow.BlockStatus
}

// QueueScheduler periodically nudges open queues to re-render and streams block timers.
// Local times and in-window flags drift with the wall clock even when no data changes.
type QueueScheduler struct {
	source          ScopeSource
	notifier        services.NotificationService
	logger          *log.Logger
	refreshInterval time.Duration
	blockTick       time.Duration
}

func NewQueueScheduler(
	source ScopeSource,
	notifier services.NotificationService,
	logger *log.Logger,
	refreshInterval time.Duration,
	blockTick time.Duration,
) *QueueScheduler {
	if refreshInterval <= 0 {
		refreshInterval = time.Minute
	}
	if blockTick <= 0 {
		blockTick = time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &QueueScheduler{
		source:          source,
		notifier:        notifier,
		logger:          logger,
		refreshInterval: refreshInterval,
		blockTick:       blockTick,
	}
}

// Start launches both loops in background goroutines and returns a stop function
func (s *QueueScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go s.loop(ctx, s.refreshInterval, s.refreshQueues)
	go s.loop(ctx, s.blockTick, s.tickBlocks)

	s.logger.Printf("scheduler: started (refresh every %s, block tick every %s)", s.refreshInterval, s.blockTick)
	return cancel
}

func (s *QueueScheduler) loop(ctx context.Context, every time.Duration, run func()) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}

// refreshQueues tells every active scope to re-read its queue
func (s *QueueScheduler) refreshQueues() {
	now := time.Now().UTC()
	for _, scope := range s.source.ActiveScopes() {
		s.notifier.Publish(scope, services.Notification{
			Event: services.EventQueueRefresh,
			Kind:  services.KindInfo,
			At:    now,
		})
	}
}

// tickBlocks publishes the elapsed time and running rate of every running block
func (s *QueueScheduler) tickBlocks() {
	now := time.Now().UTC()
	for scope, status := range s.source.RunningBlocks() {
		if !status.Running {
			continue
		}
		s.notifier.Publish(scope, services.Notification{
			Event: services.EventBlockTick,
			Kind:  services.KindInfo,
			Data:  businessflow.ToBlockStatusResponse(status),
			At:    now,
		})
	}
}
