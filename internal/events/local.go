package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// NoopPublisher is a Publisher that does nothing (used when no event bus is configured).
type NoopPublisher struct{}

func (n *NoopPublisher) Publish(ctx context.Context, topic string, event any) error {
	return nil
}

func (n *NoopPublisher) Close() error {
	return nil
}

// LogPublisher writes each event to a logger at debug level instead of a bus.
type LogPublisher struct {
	Logger *slog.Logger
}

func (p *LogPublisher) Publish(ctx context.Context, topic string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	p.Logger.DebugContext(ctx, "event", "topic", topic, "payload", string(data))
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}

// Published is one event captured by a Recorder.
type Published struct {
	Topic string
	Event any
}

// Recorder keeps every published event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Published
}

func (r *Recorder) Publish(ctx context.Context, topic string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Published{Topic: topic, Event: event})
	return nil
}

func (r *Recorder) Close() error {
	return nil
}

// Events returns a copy of the recorded events in publish order.
func (r *Recorder) Events() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Published(nil), r.events...)
}

// Topics returns the topics of recorded events in publish order.
func (r *Recorder) Topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Topic
	}
	return out
}
