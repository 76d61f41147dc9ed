package bus

import (
	"context"
	"sync"
)

// Bus is the publish/subscribe fabric connecting sessions to named groups.
// A group is one room's or one user's logical topic. Every subscriber in a
// group at publish time receives exactly one copy of the payload, in
// publish order for that group. There is no backlog: late subscribers never
// see earlier payloads.
type Bus interface {
	Subscribe(group string, sub *Subscriber)
	Unsubscribe(group string, sub *Subscriber)
	Publish(ctx context.Context, group string, payload []byte) error
}

// Subscriber is one connection's inbox on the bus. Payloads are buffered so
// a stalled connection never blocks fan-out to the rest of the group; when
// the buffer overflows the subscriber is dropped and its channel closed.
type Subscriber struct {
	ID   string
	ch   chan []byte
	once sync.Once
}

// NewSubscriber creates a subscriber with the given buffer size.
func NewSubscriber(id string, buffer int) *Subscriber {
	return &Subscriber{ID: id, ch: make(chan []byte, buffer)}
}

// C is the channel the owning connection drains. It is closed when the
// subscriber is dropped for falling behind.
func (s *Subscriber) C() <-chan []byte {
	return s.ch
}

// Close shuts the inbox. Safe to call more than once; the bus calls it when
// dropping or unsubscribing, and owners call it for subscribers that were
// never attached to a group.
func (s *Subscriber) Close() {
	s.once.Do(func() { close(s.ch) })
}
