package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	// clientName identifies chemnet connections in NATS monitoring.
	clientName = "chemnet"

	// subscriptionBuffer is how many undelivered messages a subscription
	// holds before it starts dropping.
	subscriptionBuffer = 64
)

// NATSPublisher publishes JSON-encoded events on NATS subjects named after
// their topic.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to the NATS server at url.
func NewNATSPublisher(url string, opts ...nats.Option) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, append([]nats.Option{nats.Name(clientName)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSPublisher{conn: nc}, nil
}

// Publish encodes event and publishes it on topic. Core NATS publish does
// not block, so ctx is only checked up front.
func (p *NATSPublisher) Publish(ctx context.Context, topic string, event any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling %s event: %w", topic, err)
	}
	msg := &nats.Msg{Subject: topic, Data: data, Header: nats.Header{}}
	msg.Header.Set("Content-Type", "application/json")
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

// Close flushes buffered events and closes the connection.
func (p *NATSPublisher) Close() error {
	defer p.conn.Close()
	if err := p.conn.FlushTimeout(2 * time.Second); err != nil && p.conn.IsConnected() {
		return fmt.Errorf("flushing NATS connection: %w", err)
	}
	return nil
}

// NATSSubscriber receives events from NATS and reconnects forever.
type NATSSubscriber struct {
	conn *nats.Conn
}

// NewNATSSubscriber connects to NATS. Extra options such as disconnect and
// reconnect handlers are applied after the defaults.
func NewNATSSubscriber(url string, opts ...nats.Option) (*NATSSubscriber, error) {
	defaults := []nats.Option{
		nats.Name(clientName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSSubscriber{conn: nc}, nil
}

// subscription bridges a NATS callback to a channel. mu orders deliveries
// against close so nothing is sent on a closed channel.
type subscription struct {
	mu     sync.Mutex
	ch     chan Message
	sub    *nats.Subscription
	closed bool
}

// deliver never blocks the NATS client; a full buffer drops the message.
func (s *subscription) deliver(msg *nats.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- Message{Topic: msg.Subject, Data: msg.Data}:
	default:
	}
}

// cancel unsubscribes, discards undelivered messages and closes the channel.
// It is safe to call more than once.
func (s *subscription) cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.sub != nil {
		_ = s.sub.Unsubscribe()
	}
	for len(s.ch) > 0 {
		<-s.ch
	}
	close(s.ch)
}

// Subscribe delivers messages for topic, which may use NATS wildcards such
// as "chemnet.>".
func (s *NATSSubscriber) Subscribe(topic string) (<-chan Message, func(), error) {
	sub := &subscription{ch: make(chan Message, subscriptionBuffer)}

	ns, err := s.conn.Subscribe(topic, sub.deliver)
	if err != nil {
		sub.cancel()
		return nil, nil, fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	sub.mu.Lock()
	sub.sub = ns
	sub.mu.Unlock()

	// The subscription must reach the server before events published on
	// other connections are routed to it.
	if err := s.conn.Flush(); err != nil {
		sub.cancel()
		return nil, nil, fmt.Errorf("flushing subscription: %w", err)
	}
	return sub.ch, sub.cancel, nil
}

// Close closes the subscriber's connection.
func (s *NATSSubscriber) Close() error {
	s.conn.Close()
	return nil
}
