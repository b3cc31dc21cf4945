package watcher

import (
	"context"
	"time"
)

// Batch is every change seen during one debounce window, one event per type
// in ChangeType order.
type Batch struct {
	Events    []ChangeEvent
	Timestamp time.Time
}

// Debouncer batches rapid file system events to avoid excessive re-analysis
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan Batch
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan Batch, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

// run flushes once no event arrived for quietPeriod, or maxWait after the
// first event of a batch, whichever comes first.
func (d *Debouncer) run(ctx context.Context) {
	defer close(d.output)

	var (
		quiet       <-chan time.Time
		deadline    <-chan time.Time
		accumulated = make(map[ChangeType][]string)
		seen        = make(map[string]bool)
		eventCount  int
	)

	flush := func() {
		quiet, deadline = nil, nil
		if eventCount == 0 {
			return
		}

		log.Debug("flushing accumulated events", "count", eventCount)

		batch := Batch{Timestamp: time.Now()}
		for _, t := range []ChangeType{ChangeTypeConfig, ChangeTypeGraph, ChangeTypeSource} {
			if paths := accumulated[t]; len(paths) > 0 {
				batch.Events = append(batch.Events, ChangeEvent{Type: t, Paths: paths, Timestamp: batch.Timestamp})
			}
		}

		// Reset accumulators
		accumulated = make(map[ChangeType][]string)
		seen = make(map[string]bool)
		eventCount = 0

		select {
		case d.output <- batch:
		case <-ctx.Done():
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}

			for _, path := range event.Paths {
				if !seen[path] {
					seen[path] = true
					accumulated[event.Type] = append(accumulated[event.Type], path)
				}
			}
			eventCount++

			// Reset quiet period timer
			quiet = time.After(d.quietPeriod)
			// Start max wait timer on first event
			if deadline == nil {
				deadline = time.After(d.maxWait)
			}

		case <-quiet:
			flush()

		case <-deadline:
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan Batch {
	return d.output
}
