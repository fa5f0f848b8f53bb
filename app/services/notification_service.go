// Package services provides technical concerns used by the flows and handlers: operator notifications and tokens
package services

import (
	"log"
	"sync"
	"time"
)

// Notification kinds
const (
	KindSuccess = "success"
	KindInfo    = "info"
	KindError   = "error"
)

// Notification events
const (
	EventToast        = "toast"
	EventQueueRefresh = "queue.refresh"
	EventBlockTick    = "block.tick"
)

// Notification is a short message for one operator's UI
type Notification struct {
	Event   string    `json:"event"`
	Kind    string    `json:"kind"`
	Message string    `json:"message,omitempty"`
	Data    any       `json:"data,omitempty"`
	At      time.Time `json:"at"`
}

// NotificationService is an explicit per-operator channel of transient messages
type NotificationService interface {
	Publish(scope string, n Notification)
	// Subscribe returns a buffered stream and a cancel function; slow readers lose messages
	Subscribe(scope string) (<-chan Notification, func())
}

// NotificationSink receives every published notification in addition to subscribers
type NotificationSink interface {
	Deliver(scope string, n Notification) error
}

const subscriberBuffer = 32

// NotificationServiceImpl implements NotificationService
type NotificationServiceImpl struct {
	sink NotificationSink

	mu          sync.RWMutex
	nextID      int
	subscribers map[string]map[int]chan Notification
}

// NewNotificationService creates a new notification service; sink may be nil
func NewNotificationService(sink NotificationSink) NotificationService {
	return &NotificationServiceImpl{
		sink:        sink,
		subscribers: make(map[string]map[int]chan Notification),
	}
}

// Publish fans n out to the scope's subscribers
func (s *NotificationServiceImpl) Publish(scope string, n Notification) {
	if n.At.IsZero() {
		n.At = time.Now().UTC()
	}
	if n.Event == "" {
		n.Event = EventToast
	}

	if s.sink != nil {
		if err := s.sink.Deliver(scope, n); err != nil {
			log.Printf("notification sink failed for scope %s: %v", scope, err)
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subscribers[scope] {
		select {
		case ch <- n:
		default:
			// drop for a reader that is not keeping up
		}
	}
}

// Subscribe registers a reader for scope
func (s *NotificationServiceImpl) Subscribe(scope string) (<-chan Notification, func()) {
	ch := make(chan Notification, subscriberBuffer)

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	if s.subscribers[scope] == nil {
		s.subscribers[scope] = make(map[int]chan Notification)
	}
	s.subscribers[scope][id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers[scope], id)
			if len(s.subscribers[scope]) == 0 {
				delete(s.subscribers, scope)
			}
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// LogNotificationSink writes toasts and errors to a logger; ticks are skipped
type LogNotificationSink struct {
	logger *log.Logger
}

func NewLogNotificationSink(logger *log.Logger) NotificationSink {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotificationSink{logger: logger}
}

func (p *LogNotificationSink) Deliver(scope string, n Notification) error {
	if n.Event != EventToast {
		return nil
	}
	p.logger.Printf("notify scope=%s kind=%s: %s", scope, n.Kind, n.Message)
	return nil
}
