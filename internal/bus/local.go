package bus

import (
	"context"
	"log"
	"sync"
)

// LocalBus fans payloads out to subscribers within this process.
type LocalBus struct {
	groups map[string]map[*Subscriber]bool
	mu     sync.RWMutex
}

// NewLocalBus creates an empty bus.
func NewLocalBus() *LocalBus {
	return &LocalBus{groups: make(map[string]map[*Subscriber]bool)}
}

// Subscribe registers a subscriber to a group.
func (b *LocalBus) Subscribe(group string, sub *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.groups[group]; !ok {
		b.groups[group] = make(map[*Subscriber]bool)
	}
	b.groups[group][sub] = true
}

// Unsubscribe removes a subscriber from a group and closes its channel.
func (b *LocalBus) Unsubscribe(group string, sub *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(group, sub)
}

func (b *LocalBus) removeLocked(group string, sub *Subscriber) {
	if subs, ok := b.groups[group]; ok {
		if subs[sub] {
			delete(subs, sub)
			sub.Close()
		}
		if len(subs) == 0 {
			delete(b.groups, group)
		}
	}
}

// Publish delivers the payload to every current subscriber of the group.
// Subscribers whose buffers are full are dropped so they cannot stall the
// rest of the group.
func (b *LocalBus) Publish(ctx context.Context, group string, payload []byte) error {
	b.mu.RLock()
	var stalled []*Subscriber
	for sub := range b.groups[group] {
		select {
		case sub.ch <- payload:
		default:
			stalled = append(stalled, sub)
		}
	}
	b.mu.RUnlock()

	for _, sub := range stalled {
		log.Printf("bus: dropping stalled subscriber %s from group %s", sub.ID, group)
		b.Unsubscribe(group, sub)
	}
	return nil
}

// GroupSize reports the current subscriber count of a group.
func (b *LocalBus) GroupSize(group string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.groups[group])
}
