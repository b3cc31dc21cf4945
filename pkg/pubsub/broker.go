package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/ritzau/codewarn/pkg/logging"
)

var log = logging.New("pubsub")

// TopicConfig configures buffering behavior for a topic
type TopicConfig struct {
	BufferSize int  // Number of events to buffer (0 = no buffering)
	ReplayAll  bool // If true, replay all buffered events; if false, only replay last event
}

// Broker implements Publisher with buffered channels. Slow subscribers
// drop events instead of blocking publishers.
type Broker struct {
	mu            sync.RWMutex
	subscriptions map[string]map[*subscription]bool // topic -> set of subscriptions
	version       map[string]int                    // topic -> version counter
	eventBuffer   map[string][]Event                // topic -> ring buffer of events
	topicConfig   map[string]TopicConfig            // topic -> configuration
	closed        bool
}

var _ Publisher = (*Broker)(nil)

// NewBroker creates a new broker
func NewBroker() *Broker {
	return &Broker{
		subscriptions: make(map[string]map[*subscription]bool),
		version:       make(map[string]int),
		eventBuffer:   make(map[string][]Event),
		topicConfig:   make(map[string]TopicConfig),
	}
}

// ConfigureTopic sets buffering configuration for a topic
func (b *Broker) ConfigureTopic(topic string, config TopicConfig) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topicConfig[topic] = config
}

// Subscribe creates a new subscription to a topic. Buffered events are
// replayed first.
func (b *Broker) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("broker is closed")
	}

	sub := &subscription{
		topic:  topic,
		events: make(chan Event, 100),
		broker: b,
	}
	if b.subscriptions[topic] == nil {
		b.subscriptions[topic] = make(map[*subscription]bool)
	}
	b.subscriptions[topic][sub] = true

	replay := b.eventBuffer[topic]
	if !b.topicConfig[topic].ReplayAll && len(replay) > 0 {
		replay = replay[len(replay)-1:]
	}
	for _, event := range replay {
		select {
		case sub.events <- event:
		default:
			log.Warn("could not replay event to new subscriber", "topic", topic)
		}
	}
	if len(replay) > 0 {
		log.Debug("replayed events to new subscriber", "topic", topic, "count", len(replay))
	}

	// Handle context cancellation
	go func() {
		<-ctx.Done()
		sub.Close()
	}()

	return sub, nil
}

// Publish sends an event to all subscribers of a topic
func (b *Broker) Publish(topic string, eventType string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("broker is closed")
	}

	b.version[topic]++
	event := Event{
		Topic:   topic,
		Type:    eventType,
		Data:    jsonData,
		Version: b.version[topic],
	}

	if config := b.topicConfig[topic]; config.BufferSize > 0 {
		buffer := append(b.eventBuffer[topic], event)
		// Keep the most recent events
		if len(buffer) > config.BufferSize {
			buffer = buffer[len(buffer)-config.BufferSize:]
		}
		b.eventBuffer[topic] = buffer
	}

	for sub := range b.subscriptions[topic] {
		select {
		case sub.events <- event:
		default:
			log.Warn("subscription channel full, dropping event", "topic", topic, "type", eventType)
		}
	}
	return nil
}

// Close shuts down the broker and closes every subscription channel
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for _, subs := range b.subscriptions {
		for sub := range subs {
			sub.closeEvents()
		}
	}
	b.subscriptions = make(map[string]map[*subscription]bool)
	return nil
}

// unsubscribe removes a subscription and closes its channel
func (b *Broker) unsubscribe(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subs := b.subscriptions[sub.topic]; subs != nil && subs[sub] {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(b.subscriptions, sub.topic)
		}
		sub.closeEvents()
	}
}

type subscription struct {
	topic  string
	events chan Event
	broker *Broker
	once   sync.Once
	closed sync.Once
}

func (s *subscription) Topic() string {
	return s.topic
}

func (s *subscription) Events() <-chan Event {
	return s.events
}

func (s *subscription) Close() error {
	s.once.Do(func() { s.broker.unsubscribe(s) })
	return nil
}

// closeEvents must be called with the broker lock held.
func (s *subscription) closeEvents() {
	s.closed.Do(func() { close(s.events) })
}

// WriteJSONLine writes an event as one line of JSON, for streaming
// consumers of watch mode.
func WriteJSONLine(w io.Writer, event Event) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", jsonData)
	return err
}
