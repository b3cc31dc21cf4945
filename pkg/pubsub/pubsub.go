// Package pubsub fans analysis run events out to in-process subscribers.
package pubsub

import (
	"context"
	"encoding/json"
)

// Topics
const (
	TopicRuns = "runs"
)

// Event types on TopicRuns
const (
	RunStarted  = "run_started"
	RunFinished = "run_finished"
	RunFailed   = "run_failed"
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic (e.g., "runs")
	Type    string          `json:"type"`    // Event type (e.g., "run_started", "run_finished")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// RunStatus is the payload of run_started and run_failed events.
type RunStatus struct {
	Reason  string `json:"reason"`
	Message string `json:"message,omitempty"`
}
