package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// LocalChangeFeed fans signals out to listeners inside this process
type LocalChangeFeed struct {
	mu        sync.Mutex
	nextID    int
	listeners map[string]map[int]chan struct{}
}

// NewLocalChangeFeed creates an in-process change feed
func NewLocalChangeFeed() *LocalChangeFeed {
	return &LocalChangeFeed{listeners: make(map[string]map[int]chan struct{})}
}

func feedKey(scope, topic string) string {
	return scope + ":" + topic
}

// Publish wakes every listener of scope/topic. Pending signals coalesce.
func (f *LocalChangeFeed) Publish(_ context.Context, scope, topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.listeners[feedKey(scope, topic)] {
		signal(ch)
	}
	return nil
}

// Listen registers a listener; the stop function unregisters and closes the channel
func (f *LocalChangeFeed) Listen(_ context.Context, scope, topic string) (<-chan struct{}, func(), error) {
	key := feedKey(scope, topic)
	ch := make(chan struct{}, 1)

	f.mu.Lock()
	f.nextID++
	id := f.nextID
	if f.listeners[key] == nil {
		f.listeners[key] = make(map[int]chan struct{})
	}
	f.listeners[key][id] = ch
	f.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.listeners[key], id)
			if len(f.listeners[key]) == 0 {
				delete(f.listeners, key)
			}
			f.mu.Unlock()
			close(ch)
		})
	}
	return ch, stop, nil
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// changeMessage is the payload published on redis
type changeMessage struct {
	Scope string    `json:"scope"`
	Topic string    `json:"topic"`
	At    time.Time `json:"at"`
}

// RedisChangeFeed relays change signals through redis pub/sub so that several API instances
// sharing one database see each other's writes
type RedisChangeFeed struct {
	client *redis.Client
	prefix string
}

// NewRedisChangeFeed creates a change feed on top of an existing redis client
func NewRedisChangeFeed(client *redis.Client, prefix string) *RedisChangeFeed {
	return &RedisChangeFeed{client: client, prefix: prefix}
}

func (f *RedisChangeFeed) channel(scope, topic string) string {
	return fmt.Sprintf("%schanges:%s:%s", f.prefix, scope, topic)
}

// Publish announces a committed change
func (f *RedisChangeFeed) Publish(ctx context.Context, scope, topic string) error {
	payload, err := json.Marshal(changeMessage{Scope: scope, Topic: topic, At: time.Now().UTC()})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := f.client.Publish(ctx, f.channel(scope, topic), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish change: %w", err)
	}
	return nil
}

// Listen subscribes to the scope/topic channel. The subscription is confirmed before returning.
func (f *RedisChangeFeed) Listen(ctx context.Context, scope, topic string) (<-chan struct{}, func(), error) {
	pubsub := f.client.Subscribe(ctx, f.channel(scope, topic))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to changes: %w", err)
	}

	out := make(chan struct{}, 1)
	quit := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case <-quit:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var cm changeMessage
				if err := json.Unmarshal([]byte(msg.Payload), &cm); err != nil {
					log.Printf("repository: ignoring malformed change message on %s: %v", msg.Channel, err)
					continue
				}
				signal(out)
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(quit)
			_ = pubsub.Close()
			<-exited
		})
	}
	return out, stop, nil
}
